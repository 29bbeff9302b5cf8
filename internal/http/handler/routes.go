package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "casedocs/docs"
	"casedocs/internal/http/middleware"
	"casedocs/internal/policy"
	"casedocs/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Every document route carries Authorize in its own chain so the policy sees the
// matched route pattern. gatherer may be nil, then /metrics is not exposed.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService, pol *policy.Policy, gatherer prometheus.Gatherer) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// host is left empty so the UI calls back to whatever host served it
	app.Get("/swagger/*", swagger.HandlerDefault)

	authz := middleware.Authorize(pol)
	api := app.Group(pol.Resource(), middleware.Identify())

	api.Get("/", authz, ListDocuments(docSvc))
	api.Post("/", authz, AddDocument(docSvc))
	api.Get("/:docId", authz, GetDocument(docSvc))
	api.Put("/:docId", authz, UpdateDocument(docSvc))
	api.Delete("/:docId", authz, DeleteDocument(docSvc))
	api.Get("/:docId/data", authz, GetDocumentData(docSvc))
	api.Put("/:docId/data", authz, UpdateDocumentData(docSvc))
	api.Get("/:docId/dataraw", authz, GetDocumentDataRaw(docSvc))
	api.Get("/:docId/odoc", authz, GetOriginalDocument(docSvc))
	api.Post("/:docId/resubmit", authz, ResubmitDocument(docSvc))
}
