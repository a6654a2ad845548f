package controller

import (
	"aerocrew_training_backend/internal/service"
	"aerocrew_training_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	Service *service.AttemptService
}

func NewAttemptController(svc *service.AttemptService) *AttemptController {
	return &AttemptController{Service: svc}
}

type startAttemptReq struct {
	QuizID  string `json:"quizId" binding:"required"`
	TokenID string `json:"tokenId"`
}

// @Summary Start (or resume) a quiz attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body startAttemptReq true "Quiz and optional token"
// @Success 201 {object} util.Response
// @Router /attempts [post]
func (c *AttemptController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req startAttemptReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.Service.Start(user.UserID, user.Name, req.QuizID, req.TokenID)
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Created(ctx, attempt)
}

type saveAnswerReq struct {
	QuestionID string `json:"questionId" binding:"required"`
	Answer     string `json:"answer"`
}

// @Summary Autosave one answer on an open attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attempt ID"
// @Param body body saveAnswerReq true "Answer"
// @Success 200 {object} util.Response
// @Router /attempts/{id}/answers [put]
func (c *AttemptController) SaveAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req saveAnswerReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	answer, err := c.Service.SaveAnswer(user.UserID, ctx.Param("id"), req.QuestionID, req.Answer)
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, answer)
}

// @Summary Submit an attempt for grading
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attempt ID"
// @Success 200 {object} util.Response
// @Router /attempts/{id}/submit [post]
func (c *AttemptController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attempt, err := c.Service.Submit(user.UserID, ctx.Param("id"))
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// @Summary Get attempt detail with countdown
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attempt ID"
// @Success 200 {object} util.Response
// @Router /attempts/{id} [get]
func (c *AttemptController) Get(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	detail, err := c.Service.Get(user.UserID, ctx.Param("id"))
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary List my attempts on a quiz
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param quizId query string true "Quiz ID"
// @Success 200 {object} util.Response
// @Router /attempts [get]
func (c *AttemptController) ListMine(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attempts, err := c.Service.ListByStudent(user.UserID, ctx.Query("quizId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// @Summary List submissions awaiting manual review on my quizzes
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /trainer/reviews [get]
func (c *AttemptController) PendingReview(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	attempts, total, err := c.Service.ListPendingReview(user.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: attempts, Total: total, Page: page, Limit: limit})
}

type amendAnswerReq struct {
	IsCorrect *bool `json:"isCorrect" binding:"required"`
	Points    *int  `json:"points" binding:"required,min=0"`
}

// @Summary Grade one answer on a submitted attempt
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attempt ID"
// @Param answerId path string true "Answer ID"
// @Param body body amendAnswerReq true "Grading verdict"
// @Success 200 {object} util.Response
// @Router /trainer/attempts/{id}/answers/{answerId} [put]
func (c *AttemptController) AmendAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req amendAnswerReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.Service.AmendAnswer(user.UserID, ctx.Param("id"), ctx.Param("answerId"), *req.IsCorrect, *req.Points)
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// @Summary Get my effective result on a quiz
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param quizId path string true "Quiz ID"
// @Success 200 {object} util.Response
// @Router /quizzes/{quizId}/result [get]
func (c *AttemptController) Result(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Service.Result(user.UserID, ctx.Param("quizId"))
	if err != nil {
		util.EngineError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
