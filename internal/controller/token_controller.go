package controller

import (
	"aerocrew_training_backend/internal/service"
	"aerocrew_training_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type TokenController struct {
	Service *service.TokenService
}

func NewTokenController(svc *service.TokenService) *TokenController {
	return &TokenController{Service: svc}
}

// @Summary Issue a test token for a published quiz
// @Tags tokens
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.IssueTokenRequest true "Token parameters"
// @Success 201 {object} util.Response
// @Router /trainer/tokens [post]
func (c *TokenController) Issue(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.IssueTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, err := c.Service.Issue(user.UserID, user.Name, req)
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Created(ctx, token)
}

// @Summary List tokens issued by the current trainer
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response
// @Router /trainer/tokens [get]
func (c *TokenController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	tokens, total, err := c.Service.ListByTrainer(user.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: tokens, Total: total, Page: page, Limit: limit})
}

type assignTokenReq struct {
	StudentID   uint   `json:"studentId" binding:"required"`
	StudentName string `json:"studentName" binding:"required"`
}

// @Summary Assign a token to one student
// @Tags tokens
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Token ID"
// @Param body body assignTokenReq true "Student"
// @Success 200 {object} util.Response
// @Router /trainer/tokens/{id}/assign [post]
func (c *TokenController) Assign(ctx *gin.Context) {
	var req assignTokenReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, err := c.Service.Assign(ctx.Param("id"), req.StudentID, req.StudentName)
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, token)
}

// @Summary Cancel an unconsumed token
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Param id path string true "Token ID"
// @Success 200 {object} util.Response
// @Router /trainer/tokens/{id}/cancel [post]
func (c *TokenController) Cancel(ctx *gin.Context) {
	token, err := c.Service.Cancel(ctx.Param("id"))
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, token)
}

type redeemTokenReq struct {
	Token string `json:"token" binding:"required"`
}

// @Summary Redeem a token string and load its quiz
// @Tags tokens
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body redeemTokenReq true "Token string"
// @Success 200 {object} util.Response
// @Router /tokens/redeem [post]
func (c *TokenController) Redeem(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req redeemTokenReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.Redeem(req.Token, user.UserID, user.Name)
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
