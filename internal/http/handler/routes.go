package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"hisapi/internal/model"
	"hisapi/internal/service"
)

// Services bundles the use cases exposed over HTTP.
type Services struct {
	Auth                 service.AuthService
	Messages             service.MessageService
	Notifications        service.NotificationService
	Complaints           service.ComplaintService
	InsuranceConventions service.InsuranceConventionService
	InterventionTypes    service.InterventionTypeService
	Exports              service.ExportService
	IntegrationRecords   service.IntegrationRecordService
	CustomReports        service.CustomReportService
}

// Dependencies is everything RegisterRoutes needs. Authenticate guards the record routes and
// may be nil in tests.
type Dependencies struct {
	DB           *sql.DB
	Services     Services
	Authenticate fiber.Handler
	LoginMetrics *LoginMetrics
	Log          *zap.Logger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	svc := deps.Services

	app.Get("/health", HealthCheck(deps.DB))
	app.Get("/healthz", LivenessProbe())

	g := app.Group("/api/auth/google")
	g.Post("/login", GoogleLogin(svc.Auth, deps.LoginMetrics, log))
	g.Post("/login-access-token", GoogleLoginAccessToken(svc.Auth, deps.LoginMetrics, log))
	g.Get("/auth-url", GoogleAuthURL(svc.Auth, log))
	g.Post("/exchange-code", GoogleExchangeCode(svc.Auth, deps.LoginMetrics, log))

	group := func(prefix string) fiber.Router {
		if deps.Authenticate == nil {
			return app.Group(prefix)
		}
		return app.Group(prefix, deps.Authenticate)
	}

	me := group("/api/auth/me")
	me.Get("/", CurrentUser(svc.Auth, log))

	// Fixed paths are registered ahead of /:id.
	r := group("/api/messages")
	r.Get("/unread-count", UnreadMessages(svc.Messages, log))
	r.Post("/:id/read", MarkMessageRead(svc.Messages, log))
	registerCRUD[model.Message](r, svc.Messages, log)

	r = group("/api/notifications")
	r.Get("/unread-count", UnreadNotifications(svc.Notifications, log))
	r.Post("/read-all", MarkAllNotificationsRead(svc.Notifications, log))
	r.Post("/:id/read", MarkNotificationRead(svc.Notifications, log))
	registerCRUD[model.Notification](r, svc.Notifications, log)

	r = group("/api/complaints")
	r.Post("/:id/status", ChangeComplaintStatus(svc.Complaints, log))
	registerCRUD[model.Complaint](r, svc.Complaints, log)

	r = group("/api/insurance-conventions")
	r.Get("/active", ActiveConventions(svc.InsuranceConventions, log))
	registerCRUD[model.InsuranceConvention](r, svc.InsuranceConventions, log)

	r = group("/api/intervention-types")
	r.Post("/:id/toggle", ToggleInterventionType(svc.InterventionTypes, log))
	registerCRUD[model.InterventionType](r, svc.InterventionTypes, log)

	r = group("/api/export-records")
	r.Get("/:id/download", ExportDownloadURL(svc.Exports, log))
	r.Get("/:id/file", ExportFile(svc.Exports, log))
	registerCRUD[model.ExportRecord](r, svc.Exports, log)

	r = group("/api/integration-records")
	r.Post("/:id/retry", RetryIntegrationRecord(svc.IntegrationRecords, log))
	r.Post("/:id/ack", AcknowledgeIntegrationRecord(svc.IntegrationRecords, log))
	registerCRUD[model.IntegrationRecord](r, svc.IntegrationRecords, log)

	r = group("/api/custom-reports")
	r.Post("/:id/run", RunCustomReport(svc.CustomReports, log))
	registerCRUD[model.CustomReport](r, svc.CustomReports, log)
}
