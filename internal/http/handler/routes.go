package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"signdesk/internal/service"
)

// Services bundles the use cases the HTTP layer exposes.
type Services struct {
	Documents  service.DocumentService
	Signatures service.SignatureService
	Finalize   service.FinalizeService
	Links      service.LinkService
	Audit      service.AuditService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Routes under /api run behind authn; /public routes are reachable by link holders.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services, authn fiber.Handler) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api", authn)

	api.Get("/documents", ListDocuments(svc.Documents))
	api.Post("/documents", UploadDocument(svc.Documents))
	api.Get("/documents/:id", GetDocument(svc.Documents))
	api.Delete("/documents/:id", DeleteDocument(svc.Documents))
	api.Get("/documents/:id/signatures", ListSignatures(svc.Signatures))
	api.Post("/documents/:id/link", IssueLink(svc.Links))
	api.Post("/documents/:id/finalize", FinalizeDocument(svc.Finalize))
	api.Get("/documents/:id/audit", ListAudit(svc.Audit))

	api.Post("/signatures", PlaceSignature(svc.Signatures))
	api.Patch("/signatures/:id/status", UpdateSignatureStatus(svc.Signatures))
	api.Delete("/signatures/:id", DeleteSignature(svc.Signatures))

	public := app.Group("/public")
	public.Get("/sign/:token", ViewPublicDocument(svc.Links))
	public.Post("/sign/:token", PlacePublicSignature(svc.Signatures))
}

// HealthCheck checks DB connectivity only.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if db == nil || db.PingContext(ctx) != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
