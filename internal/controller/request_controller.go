package controller

import (
	"aerocrew_training_backend/internal/model"
	"aerocrew_training_backend/internal/service"
	"aerocrew_training_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type RequestController struct {
	Service *service.RequestService
}

func NewRequestController(svc *service.RequestService) *RequestController {
	return &RequestController{Service: svc}
}

// @Summary Request a checkride exam
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateRequestInput true "Requested date and notes"
// @Success 201 {object} util.Response
// @Router /exam-requests [post]
func (c *RequestController) CreateExamRequest(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var in service.CreateRequestInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	req, err := c.Service.CreateExamRequest(user.UserID, user.Name, in)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, req)
}

// @Summary Request a training session
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateRequestInput true "Requested date and notes"
// @Success 201 {object} util.Response
// @Router /training-requests [post]
func (c *RequestController) CreateTrainingRequest(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var in service.CreateRequestInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	req, err := c.Service.CreateTrainingRequest(user.UserID, user.Name, in)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, req)
}

func listParams(ctx *gin.Context) (model.RequestStatus, uint, int, int) {
	status := model.RequestStatus(ctx.Query("status"))
	staffID, _ := strconv.Atoi(ctx.Query("staffId"))
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	return status, uint(staffID), page, limit
}

// @Summary List exam requests
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param staffId query int false "Filter by assigned staff"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response
// @Router /exam-requests [get]
func (c *RequestController) ListExamRequests(ctx *gin.Context) {
	status, staffID, page, limit := listParams(ctx)
	reqs, total, err := c.Service.ListExamRequests(status, staffID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: reqs, Total: total, Page: page, Limit: limit})
}

// @Summary List training requests
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param staffId query int false "Filter by assigned staff"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response
// @Router /training-requests [get]
func (c *RequestController) ListTrainingRequests(ctx *gin.Context) {
	status, staffID, page, limit := listParams(ctx)
	reqs, total, err := c.Service.ListTrainingRequests(status, staffID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: reqs, Total: total, Page: page, Limit: limit})
}

type advanceRequestReq struct {
	Status model.RequestStatus `json:"status" binding:"required,oneof=in-progress completed cancelled"`
}

// @Summary Advance an exam request's status
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param body body advanceRequestReq true "Target status"
// @Success 200 {object} util.Response
// @Router /staff/exam-requests/{id}/status [put]
func (c *RequestController) AdvanceExamRequest(ctx *gin.Context) {
	var req advanceRequestReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	out, err := c.Service.AdvanceExamRequest(ctx.Param("id"), req.Status)
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, out)
}

// @Summary Advance a training request's status
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param body body advanceRequestReq true "Target status"
// @Success 200 {object} util.Response
// @Router /staff/training-requests/{id}/status [put]
func (c *RequestController) AdvanceTrainingRequest(ctx *gin.Context) {
	var req advanceRequestReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	out, err := c.Service.AdvanceTrainingRequest(ctx.Param("id"), req.Status)
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, out)
}
