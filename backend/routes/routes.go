package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"socdocs/backend/config"
	"socdocs/backend/controllers"
	"socdocs/backend/middleware"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *log.Logger) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg, logger)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	staffMiddleware := middleware.StaffMiddleware(db, cfg)

	// Profile and team routes
	teamsController := controllers.NewTeamsController(db, cfg, logger)
	app.Get("/api/profile", authMiddleware, teamsController.GetProfile)
	app.Put("/api/profile", authMiddleware, teamsController.UpdateProfile)
	app.Post("/api/teams", authMiddleware, teamsController.CreateTeam)
	app.Post("/api/teams/join", authMiddleware, teamsController.JoinTeam)

	// Docs routes (viewing is open; drafts hide themselves)
	docsController := controllers.NewDocsController(db, cfg)
	docs := app.Group("/api/docs")
	docs.Get("/", docsController.Index)
	docs.Get("/:slug", docsController.View)
	docs.Post("/", authMiddleware, docsController.Create)
	docs.Put("/:slug", authMiddleware, docsController.Edit)
	docs.Post("/:slug/publish", authMiddleware, docsController.Publish)

	// Policies routes
	policiesController := controllers.NewPoliciesController(db, cfg)
	policies := app.Group("/api/policies")
	policies.Get("/", policiesController.List)
	policies.Get("/:slug", policiesController.View)
	policies.Post("/", authMiddleware, policiesController.Create)
	policies.Put("/:slug", authMiddleware, policiesController.Edit)
	policies.Post("/:slug/publish", authMiddleware, policiesController.Publish)

	// Diagrams routes
	diagramsController := controllers.NewDiagramsController(db, cfg)
	diagrams := app.Group("/api/diagrams")
	diagrams.Get("/", diagramsController.List)
	diagrams.Get("/:slug", diagramsController.View)
	diagrams.Post("/", authMiddleware, diagramsController.Create)
	diagrams.Put("/:slug", authMiddleware, diagramsController.Edit)
	diagrams.Post("/:slug/publish", authMiddleware, diagramsController.Publish)

	// Grading routes
	gradingController := controllers.NewGradingController(db, cfg)
	app.Get("/api/milestones", authMiddleware, gradingController.ListMilestones)
	app.Post("/api/milestones/:id/submit", authMiddleware, gradingController.Submit)
	app.Post("/api/docs/:slug/submit", authMiddleware, gradingController.SubmitFromDoc)
	app.Get("/api/scores", authMiddleware, gradingController.MyScores)

	// Staff-only routes
	admin := app.Group("/api/admin", authMiddleware, staffMiddleware)
	admin.Post("/milestones", gradingController.CreateMilestone)
	admin.Get("/milestones/:id/submissions", gradingController.MilestoneSubmissions)
	admin.Get("/submissions/:id/grade", gradingController.OpenGrading)
	admin.Post("/submissions/:id/grade", gradingController.Grade)
	admin.Get("/team-matrix", gradingController.TeamMatrix)
	admin.Put("/class-config", teamsController.UpdateClassConfig)

	moderationController := controllers.NewModerationController(db, cfg)
	admin.Get("/moderation", moderationController.Queue)
	admin.Post("/moderation/docs/:id/approve", moderationController.ApproveDoc)
	admin.Post("/moderation/policies/:id/approve", moderationController.ApprovePolicy)
}
