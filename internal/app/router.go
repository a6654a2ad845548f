package app

import (
	"aerocrew_training_backend/docs"
	"aerocrew_training_backend/internal/config"
	"aerocrew_training_backend/internal/middleware"
	"aerocrew_training_backend/internal/model"
	"aerocrew_training_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		a.registerPilotRoutes(authGroup, c)
		a.registerStaffRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

// registerPilotRoutes covers the exam-taking side: redeeming tokens,
// running attempts, and filing exam/training requests.
func (a *App) registerPilotRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/tokens/redeem", c.token.Redeem)

	rg.POST("/attempts", c.attempt.Start)
	rg.GET("/attempts", c.attempt.ListMine)
	rg.GET("/attempts/:id", c.attempt.Get)
	rg.PUT("/attempts/:id/answers", c.attempt.SaveAnswer)
	rg.POST("/attempts/:id/submit", c.attempt.Submit)
	rg.GET("/quizzes/:quizId/result", c.attempt.Result)

	rg.POST("/exam-requests", c.request.CreateExamRequest)
	rg.GET("/exam-requests", c.request.ListExamRequests)
	rg.POST("/training-requests", c.request.CreateTrainingRequest)
	rg.GET("/training-requests", c.request.ListTrainingRequests)
}

func (a *App) registerStaffRoutes(rg *gin.RouterGroup, c *controllers) {
	trainer := rg.Group("/trainer")
	trainer.Use(middleware.RoleMiddleware(model.Trainer, model.Examiner))
	{
		trainer.POST("/quizzes", c.quiz.CreateQuiz)
		trainer.GET("/quizzes", c.quiz.ListQuizzes)
		trainer.GET("/quizzes/:id", c.quiz.GetQuiz)
		trainer.PUT("/quizzes/:id", c.quiz.UpdateQuiz)
		trainer.PUT("/quizzes/:id/status", c.quiz.SetStatus)
		trainer.DELETE("/quizzes/:id", c.quiz.DeleteQuiz)

		trainer.POST("/tokens", c.token.Issue)
		trainer.GET("/tokens", c.token.List)
		trainer.POST("/tokens/:id/assign", c.token.Assign)
		trainer.POST("/tokens/:id/cancel", c.token.Cancel)

		trainer.GET("/reviews", c.attempt.PendingReview)
		trainer.PUT("/attempts/:id/answers/:answerId", c.attempt.AmendAnswer)

		trainer.POST("/assignments/trainings", c.assignment.AssignTrainings)
	}

	examiner := rg.Group("/examiner")
	examiner.Use(middleware.RoleMiddleware(model.Examiner))
	{
		examiner.POST("/assignments/exams", c.assignment.AssignExams)
	}

	staff := rg.Group("/staff")
	staff.Use(middleware.RoleMiddleware(model.Trainer, model.Examiner))
	{
		staff.POST("/exam-requests/:id/pickup", c.assignment.PickupExam)
		staff.POST("/training-requests/:id/pickup", c.assignment.PickupTraining)
		staff.PUT("/exam-requests/:id/status", c.request.AdvanceExamRequest)
		staff.PUT("/training-requests/:id/status", c.request.AdvanceTrainingRequest)
	}
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/staff", c.staff.Create)
		admin.GET("/staff", c.staff.List)
		admin.PUT("/staff/:id/active", c.staff.SetActive)
		admin.PUT("/staff/:id/capacity", c.staff.SetCapacity)

		admin.POST("/exam-requests/:id/reassign", c.assignment.ReassignExam)
		admin.POST("/training-requests/:id/reassign", c.assignment.ReassignTraining)
	}
}
