package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/http/middleware"
	"docvault/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal; business rules live in the service layer.
func RegisterRoutes(
	app *fiber.App,
	db *sql.DB,
	docSvc service.DocumentService,
	catSvc service.CategoryService,
	userSvc service.UserService,
	webhookSecret string,
) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	// Identity events are signed by the provider; no session identity here.
	app.Post("/webhooks/identity", IdentityWebhook(webhookSecret, userSvc))

	authed := app.Group("", middleware.Identity(userSvc))

	authed.Get("/documents", ListDocuments(docSvc))
	authed.Get("/documents/:id", DownloadDocument(docSvc, false))
	authed.Get("/documents/:id/view", DownloadDocument(docSvc, true))
	authed.Get("/categories", ListCategories(catSvc))

	authed.Get("/me/favorites", ListFavorites(userSvc))
	authed.Post("/me/favorites", ToggleFavorite(userSvc))
	authed.Get("/me/recent", ListRecent(userSvc))
	authed.Post("/me/recent", AddRecent(userSvc))

	admin := authed.Group("", middleware.RequireAdmin())

	admin.Post("/documents", UploadDocument(docSvc))
	admin.Delete("/documents/:id", DeleteDocument(docSvc))
	admin.Patch("/documents/:id/toggle", ToggleDocumentStatus(docSvc))
	admin.Patch("/documents/:id/toggle-download", ToggleDocumentDownload(docSvc))

	admin.Post("/categories", CreateCategory(catSvc))
	admin.Patch("/categories/:id", UpdateCategory(catSvc))
	admin.Delete("/categories/:id", DeleteCategory(catSvc))

	admin.Get("/users", ListUsers(userSvc))
	admin.Patch("/users/:id/role", UpdateUserRole(userSvc))
}
