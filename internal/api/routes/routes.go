package routes

import (
	"github.com/Varial17/studyfin-jobboard-sub000/internal/api/handlers"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

type Deps struct {
	JWT middleware.JWTConfig

	Health      *handlers.HealthHandler
	Profile     *handlers.ProfileHandler
	Resume      *handlers.ResumeHandler
	Job         *handlers.JobHandler
	Application *handlers.ApplicationHandler
	Billing     *handlers.BillingHandler
	Zoho        *handlers.ZohoHandler
	WS          *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Public
	r.GET("/ping", d.Health.Ping)
	r.GET("/health", d.Health.Health)
	r.GET("/jobs", d.Job.List)
	r.GET("/jobs/:id", d.Job.Get)

	// Stripe authenticates with the signature header, not a JWT
	r.POST("/billing/webhook", d.Billing.Webhook)

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth(d.JWT))

	auth.POST("/jobs", d.Job.Create)
	auth.PATCH("/jobs/:id", d.Job.Update)
	auth.POST("/jobs/:id/apply", d.Application.Apply)
	auth.GET("/employer/jobs", d.Job.ListMine)
	auth.GET("/employer/jobs/:id/applications", d.Job.ListApplications)

	auth.GET("/applications", d.Application.ListMine)
	auth.PATCH("/applications/:id/status", d.Application.ChangeStatus)
	auth.GET("/applicants/:id", d.Application.ApplicantDetail)

	auth.GET("/profile/me", d.Profile.Me)
	auth.PATCH("/profile/details", d.Profile.UpdateDetails)
	auth.PATCH("/profile/education", d.Profile.UpdateEducation)
	auth.POST("/profile/cv", d.Profile.UploadCV)
	auth.PUT("/settings/role", d.Profile.ChangeRole)

	auth.GET("/profile/education-entries", d.Resume.ListEducation)
	auth.POST("/profile/education-entries", d.Resume.AddEducation)
	auth.PUT("/profile/education-entries/:id", d.Resume.UpdateEducation)
	auth.DELETE("/profile/education-entries/:id", d.Resume.DeleteEducation)
	auth.GET("/profile/experiences", d.Resume.ListExperiences)
	auth.POST("/profile/experiences", d.Resume.AddExperience)
	auth.PUT("/profile/experiences/:id", d.Resume.UpdateExperience)
	auth.DELETE("/profile/experiences/:id", d.Resume.DeleteExperience)
	auth.GET("/profile/skills", d.Resume.ListSkills)
	auth.POST("/profile/skills", d.Resume.AddSkill)
	auth.PUT("/profile/skills/:id", d.Resume.UpdateSkill)
	auth.DELETE("/profile/skills/:id", d.Resume.DeleteSkill)

	auth.POST("/billing/checkout", d.Billing.Checkout)
	auth.POST("/billing/checkout/verify", d.Billing.VerifyCheckout)
	auth.POST("/billing/portal", d.Billing.Portal)
	auth.GET("/billing/status", d.Billing.Status)

	auth.POST("/zoho/auth", d.Zoho.Auth)
	auth.POST("/zoho/callback", d.Zoho.Callback)
	auth.POST("/zoho/disconnect", d.Zoho.Disconnect)
	auth.GET("/zoho/status", d.Zoho.Status)
	auth.POST("/zoho/sync/application/:id", d.Zoho.SyncApplication)
	auth.POST("/zoho/sync/all", d.Zoho.SyncAll)

	admin := auth.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.POST("/zoho/sync/:employer_id", d.Zoho.SyncAllFor)

	// WebSocket
	auth.GET("/ws/subscription", d.WS.Subscription)
}
