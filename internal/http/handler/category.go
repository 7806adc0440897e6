package handler

import (
	"github.com/gofiber/fiber/v2"

	"docvault/internal/service"
)

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListCategories returns all categories ordered by name.
func ListCategories(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cats, err := svc.List(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"categories": cats})
	}
}

// CreateCategory adds a category with a slug derived from its name.
func CreateCategory(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req categoryRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		cat, err := svc.Create(c.UserContext(), service.CategoryInput{
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(cat)
	}
}

// UpdateCategory renames a category, re-deriving its slug.
func UpdateCategory(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req categoryRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		cat, err := svc.Update(c.UserContext(), c.Params("id"), service.CategoryInput{
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(cat)
	}
}

// DeleteCategory removes a category.
func DeleteCategory(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deleted, err := svc.Delete(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		if !deleted {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "category not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
