package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"verifyapi/internal/catalog"
	"verifyapi/internal/service"
)

// Services groups the workflow services the HTTP layer exposes.
type Services struct {
	Documents    service.DocumentService
	Farms        service.FarmService
	Roles        service.RoleService
	Completeness service.CompletenessService
	Catalog      catalog.Provider
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Probes stay
// public; everything else goes through auth. auth is attached per route
// rather than as group middleware so unknown paths still answer 404.
func RegisterRoutes(app *fiber.App, db *sql.DB, svcs Services, auth fiber.Handler) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	api := protected{app: app, auth: auth}

	api.Get("/document-types", ListDocumentTypes(svcs.Catalog))

	api.Post("/farms", CreateFarm(svcs.Farms))
	api.Get("/farms", ListFarms(svcs.Farms))
	api.Get("/farms/:id", GetFarm(svcs.Farms))
	api.Patch("/farms/:id", UpdateFarm(svcs.Farms))
	api.Put("/farms/:id/active", SetFarmActive(svcs.Farms))
	api.Get("/farms/:id/completeness", FarmCompleteness(svcs.Completeness))
	api.Post("/farms/:id/documents", SubmitDocument(svcs.Documents))
	api.Get("/farms/:id/documents", ListFarmDocuments(svcs.Documents))

	// Static segments before :id so "pending" is not parsed as an id.
	api.Get("/documents/pending", ListPendingDocuments(svcs.Documents))
	api.Get("/documents/:id", GetDocument(svcs.Documents))
	api.Get("/documents/:id/download", DownloadDocument(svcs.Documents))
	api.Get("/documents/:id/download-url", DocumentDownloadURL(svcs.Documents))
	api.Post("/documents/:id/review", ReviewDocument(svcs.Documents))

	api.Post("/role-grants", RequestRole(svcs.Roles))
	api.Get("/role-grants/pending", ListPendingRoleGrants(svcs.Roles))
	api.Get("/role-grants/:id", GetRoleGrant(svcs.Roles))
	api.Post("/role-grants/:id/approve", ApproveRoleGrant(svcs.Roles))
	api.Post("/role-grants/:id/reject", RejectRoleGrant(svcs.Roles))
	api.Get("/users/:id/role-grants", ListUserRoleGrants(svcs.Roles))
}

type protected struct {
	app  *fiber.App
	auth fiber.Handler
}

func (p protected) Get(path string, h fiber.Handler) { p.app.Get(path, p.auth, h) }
func (p protected) Post(path string, h fiber.Handler) { p.app.Post(path, p.auth, h) }
func (p protected) Put(path string, h fiber.Handler) { p.app.Put(path, p.auth, h) }
func (p protected) Patch(path string, h fiber.Handler) { p.app.Patch(path, p.auth, h) }
