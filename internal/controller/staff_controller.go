package controller

import (
	"aerocrew_training_backend/internal/model"
	"aerocrew_training_backend/internal/service"
	"aerocrew_training_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type StaffController struct {
	Service *service.StaffService
}

func NewStaffController(svc *service.StaffService) *StaffController {
	return &StaffController{Service: svc}
}

// @Summary Add a trainer or examiner to the roster
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.StaffReq true "Staff member"
// @Success 201 {object} util.Response
// @Router /admin/staff [post]
func (c *StaffController) Create(ctx *gin.Context) {
	var req service.StaffReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	staff, err := c.Service.Create(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, staff)
}

// @Summary List roster by role
// @Tags staff
// @Produce json
// @Security BearerAuth
// @Param role query string true "trainer or examiner"
// @Success 200 {object} util.Response
// @Router /admin/staff [get]
func (c *StaffController) List(ctx *gin.Context) {
	role := model.StaffRole(ctx.Query("role"))

	staff, err := c.Service.List(role)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, staff)
}

type staffActiveReq struct {
	Active *bool `json:"active" binding:"required"`
}

// @Summary Activate or deactivate a staff member
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Param body body staffActiveReq true "Active flag"
// @Success 200 {object} util.Response
// @Router /admin/staff/{id}/active [put]
func (c *StaffController) SetActive(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid staff id")
		return
	}

	var req staffActiveReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	staff, err := c.Service.SetActive(uint(id), *req.Active)
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, staff)
}

type staffCapacityReq struct {
	MaxAssignments int `json:"maxAssignments" binding:"required,min=1"`
}

// @Summary Change a staff member's assignment capacity
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Param body body staffCapacityReq true "Capacity"
// @Success 200 {object} util.Response
// @Router /admin/staff/{id}/capacity [put]
func (c *StaffController) SetCapacity(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid staff id")
		return
	}

	var req staffCapacityReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	staff, err := c.Service.SetCapacity(uint(id), req.MaxAssignments)
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, staff)
}
