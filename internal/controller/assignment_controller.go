package controller

import (
	"aerocrew_training_backend/internal/service"
	"aerocrew_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssignmentController struct {
	Service *service.AssignmentService
}

func NewAssignmentController(svc *service.AssignmentService) *AssignmentController {
	return &AssignmentController{Service: svc}
}

// @Summary Distribute pending exam requests across examiners
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /examiner/assignments/exams [post]
func (c *AssignmentController) AssignExams(ctx *gin.Context) {
	result, err := c.Service.AssignExamRequests()
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary Distribute pending training requests across trainers
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /trainer/assignments/trainings [post]
func (c *AssignmentController) AssignTrainings(ctx *gin.Context) {
	result, err := c.Service.AssignTrainingRequests()
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary Self-claim a pending exam request
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} util.Response
// @Router /staff/exam-requests/{id}/pickup [post]
func (c *AssignmentController) PickupExam(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	req, err := c.Service.PickupExamRequest(user.UserID, ctx.Param("id"))
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, req)
}

// @Summary Self-claim a pending training request
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} util.Response
// @Router /staff/training-requests/{id}/pickup [post]
func (c *AssignmentController) PickupTraining(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	req, err := c.Service.PickupTrainingRequest(user.UserID, ctx.Param("id"))
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, req)
}

type reassignReq struct {
	StaffID uint `json:"staffId" binding:"required"`
}

// @Summary Reassign an exam request to another examiner
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param body body reassignReq true "New staff member"
// @Success 200 {object} util.Response
// @Router /admin/exam-requests/{id}/reassign [post]
func (c *AssignmentController) ReassignExam(ctx *gin.Context) {
	var req reassignReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	out, err := c.Service.ReassignExamRequest(ctx.Param("id"), req.StaffID)
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, out)
}

// @Summary Reassign a training request to another trainer
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param body body reassignReq true "New staff member"
// @Success 200 {object} util.Response
// @Router /admin/training-requests/{id}/reassign [post]
func (c *AssignmentController) ReassignTraining(ctx *gin.Context) {
	var req reassignReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	out, err := c.Service.ReassignTrainingRequest(ctx.Param("id"), req.StaffID)
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, out)
}
