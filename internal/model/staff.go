package model

type StaffRole string

const (
	StaffTrainer  StaffRole = "trainer"
	StaffExaminer StaffRole = "examiner"
)

// Staff is a trainer or examiner eligible for workload assignment.
// Eligibility requires Active and CurrentAssignments < MaxAssignments.
//
// swagger:model Staff
type Staff struct {
	BaseModel
	UserID             uint      `gorm:"index;type:bigint unsigned" json:"userId"`
	JalID              string    `gorm:"size:20;index" json:"jalId"`
	Name               string    `gorm:"size:100;not null" json:"name"`
	Role               StaffRole `gorm:"size:20;index" json:"role"`
	Active             bool      `gorm:"default:true" json:"active"`
	CurrentAssignments int       `gorm:"default:0" json:"currentAssignments"`
	MaxAssignments     int       `gorm:"default:5" json:"maxAssignments"`
}

func (Staff) TableName() string {
	return "staff"
}

func (s *Staff) Eligible() bool {
	return s.Active && s.CurrentAssignments < s.MaxAssignments
}
