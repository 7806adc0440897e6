package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/http/middleware"
	"docvault/internal/model"
	"docvault/internal/service"
)

// ListUsers returns paginated users, newest first.
func ListUsers(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		skip, err := strconv.Atoi(c.Query("skip", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SKIP", "invalid skip")
		}

		res, err := svc.List(c.UserContext(), limit, skip)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// UpdateUserRole changes a user's role. The acting admin cannot demote
// their own account.
func UpdateUserRole(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Role string `json:"role"`
		}
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		actorID := ""
		if u := middleware.UserFromCtx(c); u != nil {
			actorID = u.ID
		}

		user, err := svc.UpdateRole(c.UserContext(), actorID, c.Params("id"), model.Role(req.Role))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(user)
	}
}

type documentRefRequest struct {
	DocumentID string `json:"document_id"`
}

// ToggleFavorite flips the favorite mark on a document for the current user.
func ToggleFavorite(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req documentRefRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		u := middleware.UserFromCtx(c)
		if u == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		favorited, err := svc.ToggleFavorite(c.UserContext(), u.ID, req.DocumentID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"document_id": req.DocumentID, "favorited": favorited})
	}
}

// ListFavorites returns the current user's favorite document ids.
func ListFavorites(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := middleware.UserFromCtx(c)
		if u == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		favs, err := svc.Favorites(c.UserContext(), u.ID)
		if err != nil {
			return writeServiceError(c, err)
		}
		if favs == nil {
			favs = []string{}
		}
		return c.JSON(fiber.Map{"favorites": favs})
	}
}

// AddRecent records a document view at the front of the current user's
// recently-viewed list.
func AddRecent(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req documentRefRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		u := middleware.UserFromCtx(c)
		if u == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		if err := svc.AddRecent(c.UserContext(), u.ID, req.DocumentID); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListRecent returns the current user's recently-viewed list, newest first.
func ListRecent(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := middleware.UserFromCtx(c)
		if u == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		recent, err := svc.Recent(c.UserContext(), u.ID)
		if err != nil {
			return writeServiceError(c, err)
		}
		if recent == nil {
			recent = []model.RecentDoc{}
		}
		return c.JSON(fiber.Map{"recent": recent})
	}
}
