package app

import (
	"github.com/gin-gonic/gin"

	"github.com/jobhive/jobhive/internal/config"
	"github.com/jobhive/jobhive/internal/handler"
	"github.com/jobhive/jobhive/internal/middleware"
)

func buildRouter(cfg *config.Config, mw *middleware.Middleware,
	auth *handler.AuthHandler,
	jobs *handler.JobHandler,
	applications *handler.ApplicationHandler,
	payments *handler.PaymentHandler,
	profiles *handler.ProfileHandler,
	prefs *handler.PreferenceHandler,
) *gin.Engine {
	if cfg.RunMode != "" {
		gin.SetMode(cfg.RunMode)
	}

	r := gin.New()
	r.Use(mw.Trace(), mw.RequestLog(), mw.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	// Public surface: signup, session exchange, published postings, and the
	// payment provider webhook.
	v1.POST("/auth/signup", auth.Signup)
	v1.POST("/auth/session", auth.Session)
	v1.GET("/jobs", jobs.ListPublic)
	v1.GET("/jobs/:slug", jobs.GetPublic)
	v1.POST("/webhooks/stripe", payments.Webhook)

	// Everything below requires a session.
	s := v1.Group("", mw.Auth())

	s.GET("/me", auth.Me)
	s.GET("/me/preferences", prefs.Get)
	s.PUT("/me/preferences", prefs.Update)
	s.GET("/me/seeker-profile", profiles.GetSeekerProfile)
	s.PUT("/me/seeker-profile", profiles.UpdateSeekerProfile)
	s.POST("/me/cv", profiles.UploadCV)
	s.GET("/me/cv/url", profiles.CVDownloadURL)
	s.GET("/me/employer-profile", profiles.GetEmployerProfile)
	s.PUT("/me/employer-profile", profiles.UpdateEmployerProfile)

	s.POST("/postings", jobs.Create)
	s.GET("/postings", jobs.List)
	s.GET("/postings/:id", jobs.Get)
	s.PUT("/postings/:id", jobs.Update)
	s.DELETE("/postings/:id", jobs.Delete)
	s.POST("/postings/:id/publish", jobs.PublishFree)
	s.POST("/postings/:id/status", jobs.SetStatus)
	s.POST("/postings/:id/payment", jobs.RequestPaidPublish)
	s.GET("/postings/:id/applications", applications.ListForJob)
	s.GET("/postings/:id/applications/counts", applications.StatusCounts)

	s.POST("/payments/confirm", payments.Confirm)

	s.POST("/applications", applications.Submit)
	s.GET("/applications", applications.ListMine)
	s.GET("/applications/:id", applications.View)
	s.POST("/applications/:id/status", applications.UpdateStatus)
	s.POST("/applications/bulk-status", applications.BulkUpdateStatus)

	return r
}
