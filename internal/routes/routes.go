package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/medspa-api/internal/audit"
	"github.com/BruksfildServices01/medspa-api/internal/config"
	domainPayment "github.com/BruksfildServices01/medspa-api/internal/domain/payment"
	"github.com/BruksfildServices01/medspa-api/internal/handlers"
	"github.com/BruksfildServices01/medspa-api/internal/infra/lock"
	infraRepo "github.com/BruksfildServices01/medspa-api/internal/infra/repository"
	"github.com/BruksfildServices01/medspa-api/internal/infra/storage"
	"github.com/BruksfildServices01/medspa-api/internal/middleware"
	"github.com/BruksfildServices01/medspa-api/internal/models"
	ucAppointment "github.com/BruksfildServices01/medspa-api/internal/usecase/appointment"
	ucInventory "github.com/BruksfildServices01/medspa-api/internal/usecase/inventory"
	ucPayment "github.com/BruksfildServices01/medspa-api/internal/usecase/payment"
	ucReport "github.com/BruksfildServices01/medspa-api/internal/usecase/report"
)

// Deps are the process-wide singletons built in main.
type Deps struct {
	DB         *gorm.DB
	Config     *config.Config
	Store      storage.Storage
	Locker     lock.Locker
	Gateway    domainPayment.Gateway
	Dispatcher *audit.Dispatcher
	Sweep      *ucInventory.SweepLowStock
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	db, cfg := d.DB, d.Config

	// ======================================================
	// INFRA
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)
	paymentRepo := infraRepo.NewPaymentGormRepository(db)
	inventoryRepo := infraRepo.NewInventoryGormRepository(db)
	reportRepo := infraRepo.NewReportGormRepository(db)

	// ======================================================
	// USE CASES
	// ======================================================
	createAppointmentUC := ucAppointment.NewCreateAppointment(appointmentRepo, d.Dispatcher)
	updateAppointmentUC := ucAppointment.NewUpdateAppointment(appointmentRepo, d.Dispatcher)
	cancelAppointmentUC := ucAppointment.NewCancelAppointment(appointmentRepo, d.Dispatcher)
	completeAppointmentUC := ucAppointment.NewCompleteAppointment(appointmentRepo, d.Dispatcher)
	listAppointmentsUC := ucAppointment.NewListAppointments(appointmentRepo, cfg.Timezone)
	availabilityUC := ucAppointment.NewGetAvailability(
		appointmentRepo,
		cfg.Timezone,
		cfg.BusinessOpen,
		cfg.BusinessClose,
	)

	createPaymentUC := ucPayment.NewCreatePayment(
		paymentRepo,
		d.Gateway,
		d.Locker,
		cfg.CommissionRate,
		cfg.Currency,
	)
	updatePaymentUC := ucPayment.NewUpdatePayment(paymentRepo)
	confirmPaymentUC := ucPayment.NewConfirmPayment(paymentRepo, d.Gateway)
	webhookUC := ucPayment.NewHandleWebhook(paymentRepo, d.Gateway)

	adjustStockUC := ucInventory.NewAdjustStock(inventoryRepo)

	revenueReportUC := ucReport.NewRevenueReport(reportRepo, cfg.Timezone)
	staffReportUC := ucReport.NewStaffReport(reportRepo, cfg.Timezone)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)
	userHandler := handlers.NewUserHandler(db)
	clientHandler := handlers.NewClientHandler(db, cfg)
	locationHandler := handlers.NewLocationHandler(db)
	serviceHandler := handlers.NewServiceHandler(db)
	packageHandler := handlers.NewPackageHandler(db)

	appointmentHandler := handlers.NewAppointmentHandler(
		db,
		appointmentRepo,
		cfg,
		createAppointmentUC,
		updateAppointmentUC,
		cancelAppointmentUC,
		completeAppointmentUC,
		listAppointmentsUC,
		availabilityUC,
	)

	paymentHandler := handlers.NewPaymentHandler(
		paymentRepo,
		cfg,
		createPaymentUC,
		updatePaymentUC,
		confirmPaymentUC,
	)
	webhookHandler := handlers.NewWebhookHandler(webhookUC)

	productHandler := handlers.NewProductHandler(db, adjustStockUC)
	stockHandler := handlers.NewStockHandler(db, cfg, d.Sweep)

	consentFormHandler := handlers.NewConsentFormHandler(db, d.Store)
	treatmentHandler := handlers.NewTreatmentHandler(db, d.Store, cfg)
	fileHandler := handlers.NewFileHandler(db, d.Store)

	reportHandler := handlers.NewReportHandler(cfg, revenueReportUC, staffReportUC)
	auditLogsHandler := handlers.NewAuditLogsHandler(db, cfg)

	// ======================================================
	// UNAUTHENTICATED
	// ======================================================
	r.POST("/stripe/webhook", webhookHandler.Stripe)
	r.GET("/files/signed", fileHandler.ServeSigned)

	api := r.Group("/api")

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// ======================================================
	// AUTHENTICATED (any role; handlers scope client data)
	// ======================================================
	secured := api.Group("")
	secured.Use(middleware.AuthMiddleware(cfg))

	staffOnly := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff, models.RoleReceptionist)
	clinicalOnly := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	secured.GET("/me", meHandler.GetMe)

	// ------------------------------
	// CATALOG
	// ------------------------------
	for _, res := range []struct {
		path string
		h    crudHandler
	}{
		{"/locations", locationHandler},
		{"/services", serviceHandler},
		{"/packages", packageHandler},
	} {
		g := secured.Group(res.path)
		g.GET("", res.h.List)
		g.GET("/:id", res.h.Get)
		g.POST("", adminOnly, res.h.Create)
		g.PATCH("/:id", adminOnly, res.h.Update)
		g.DELETE("/:id", adminOnly, res.h.Delete)
	}

	// ------------------------------
	// USERS
	// ------------------------------
	users := secured.Group("/users", adminOnly)
	{
		users.GET("", userHandler.List)
		users.GET("/:id", userHandler.Get)
		users.POST("", userHandler.Create)
		users.PATCH("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)
	}

	// ------------------------------
	// CLIENTS
	// ------------------------------
	clients := secured.Group("/clients")
	{
		clients.GET("", clientHandler.List)
		clients.GET("/:id", clientHandler.Get)
		clients.POST("", staffOnly, clientHandler.Create)
		clients.PATCH("/:id", staffOnly, clientHandler.Update)
		clients.DELETE("/:id", adminOnly, clientHandler.Delete)
	}

	// ------------------------------
	// APPOINTMENTS
	// ------------------------------
	appointments := secured.Group("/appointments")
	{
		appointments.GET("", appointmentHandler.List)
		appointments.GET("/availability", appointmentHandler.Availability)
		appointments.GET("/:id", appointmentHandler.Get)
		appointments.POST("", appointmentHandler.Create)
		appointments.PATCH("/:id", staffOnly, appointmentHandler.Update)
		appointments.PATCH("/:id/cancel", appointmentHandler.Cancel)
		appointments.PATCH("/:id/complete", staffOnly, appointmentHandler.Complete)
		appointments.DELETE("/:id", staffOnly, appointmentHandler.Delete)
	}

	// ------------------------------
	// PAYMENTS
	// ------------------------------
	payments := secured.Group("/payments")
	{
		payments.GET("", paymentHandler.List)
		payments.GET("/:id", paymentHandler.Get)
		payments.POST("", paymentHandler.Create)
		payments.PATCH("/:id", staffOnly, paymentHandler.Update)
		payments.POST("/:id/confirm", paymentHandler.Confirm)
	}

	// ------------------------------
	// INVENTORY
	// ------------------------------
	products := secured.Group("/products", staffOnly)
	{
		products.GET("", productHandler.List)
		products.GET("/:id", productHandler.Get)
		products.POST("", productHandler.Create)
		products.PATCH("/:id", productHandler.Update)
		products.DELETE("/:id", adminOnly, productHandler.Delete)
		products.POST("/:id/adjust-stock", productHandler.AdjustStock)
		products.GET("/:id/adjustments", productHandler.Adjustments)
	}

	secured.GET("/stock-adjustments", staffOnly, stockHandler.ListAdjustments)

	notifications := secured.Group("/stock-notifications", staffOnly)
	{
		notifications.GET("", stockHandler.ListNotifications)
		notifications.PATCH("/:id/acknowledge", stockHandler.Acknowledge)
		notifications.POST("/sweep", stockHandler.Sweep)
	}

	// ------------------------------
	// CLINICAL RECORDS
	// ------------------------------
	consent := secured.Group("/consent-forms")
	{
		consent.GET("", consentFormHandler.List)
		consent.GET("/:id", consentFormHandler.Get)
		consent.POST("", staffOnly, consentFormHandler.Create)
		consent.PATCH("/:id", staffOnly, consentFormHandler.Update)
		consent.DELETE("/:id", staffOnly, consentFormHandler.Delete)
		consent.POST("/:id/sign", consentFormHandler.Sign)
		consent.POST("/:id/file", staffOnly, consentFormHandler.UploadFile)
		consent.GET("/:id/file", consentFormHandler.File)
	}

	treatments := secured.Group("/treatments")
	{
		treatments.GET("", treatmentHandler.List)
		treatments.GET("/:id", treatmentHandler.Get)
		treatments.POST("", clinicalOnly, treatmentHandler.Create)
		treatments.PATCH("/:id", clinicalOnly, treatmentHandler.Update)
		treatments.DELETE("/:id", clinicalOnly, treatmentHandler.Delete)
		treatments.POST("/:id/photos", clinicalOnly, treatmentHandler.UploadPhoto)
		treatments.GET("/:id/photos/:photoId", treatmentHandler.Photo)
		treatments.DELETE("/:id/photos/:photoId", clinicalOnly, treatmentHandler.DeletePhoto)
	}

	secured.GET("/files/signed-url", fileHandler.SignedURL)

	// ------------------------------
	// REPORTS / AUDIT
	// ------------------------------
	reports := secured.Group("/reports", clinicalOnly)
	{
		reports.GET("/revenue", reportHandler.Revenue)
		reports.GET("/staff", reportHandler.Staff)
	}

	secured.GET("/audit-logs", adminOnly, auditLogsHandler.List)
}

// crudHandler is the shape shared by the catalog handlers.
type crudHandler interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}
