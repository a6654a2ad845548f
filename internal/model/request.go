package model

import "time"

type RequestStatus string

const (
	RequestPending    RequestStatus = "pending"
	RequestAssigned   RequestStatus = "assigned"
	RequestInProgress RequestStatus = "in-progress"
	RequestCompleted  RequestStatus = "completed"
	RequestCancelled  RequestStatus = "cancelled"
)

// swagger:model ExamRequest
type ExamRequest struct {
	UUIDBase
	StudentID         uint          `gorm:"index;type:bigint unsigned" json:"studentId"`
	StudentName       string        `gorm:"size:100" json:"studentName"`
	RequestedDate     time.Time     `json:"requestedDate"`
	Notes             string        `gorm:"type:text" json:"notes,omitempty"`
	Status            RequestStatus `gorm:"size:20;default:'pending';index" json:"status"`
	AssignedStaffID   *uint         `gorm:"type:bigint unsigned" json:"assignedStaffId,omitempty"`
	AssignedStaffName string        `gorm:"size:100" json:"assignedStaffName,omitempty"`
}

func (ExamRequest) TableName() string {
	return "exam_requests"
}

// swagger:model TrainingRequest
type TrainingRequest struct {
	UUIDBase
	PilotID           uint          `gorm:"index;type:bigint unsigned" json:"pilotId"`
	PilotName         string        `gorm:"size:100" json:"pilotName"`
	RequestedDate     time.Time     `json:"requestedDate"`
	Notes             string        `gorm:"type:text" json:"notes,omitempty"`
	Status            RequestStatus `gorm:"size:20;default:'pending';index" json:"status"`
	AssignedStaffID   *uint         `gorm:"type:bigint unsigned" json:"assignedStaffId,omitempty"`
	AssignedStaffName string        `gorm:"size:100" json:"assignedStaffName,omitempty"`
}

func (TrainingRequest) TableName() string {
	return "training_requests"
}
