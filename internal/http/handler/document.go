package handler

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docvault/internal/http/middleware"
	"docvault/internal/model"
	"docvault/internal/service"
)

// requesterRole returns the role of the authenticated user, defaulting to
// the regular role when Identity did not run.
func requesterRole(c *fiber.Ctx) model.Role {
	if u := middleware.UserFromCtx(c); u != nil {
		return u.Role
	}
	return model.RoleUser
}

// ListDocuments returns paginated document metadata. The status query
// parameter only takes effect for admins.
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		skip, err := strconv.Atoi(c.Query("skip", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SKIP", "invalid skip")
		}

		opts := service.ListOptions{Limit: limit, Skip: skip}
		if s := c.Query("status"); s != "" {
			status := model.DocumentStatus(s)
			if !status.Valid() {
				return writeError(c, fiber.StatusBadRequest, "INVALID_STATUS", "invalid status")
			}
			opts.Status = &status
		}

		res, err := svc.List(c.UserContext(), requesterRole(c), opts)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// UploadDocument accepts a multipart form with a file field plus title,
// description and category fields, and stores the document.
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_READ_ERROR", "cannot read uploaded file")
		}

		in := service.UploadInput{
			Title:       c.FormValue("title"),
			Description: c.FormValue("description"),
			Category:    c.FormValue("category"),
			FileName:    fh.Filename,
			MimeType:    fh.Header.Get(fiber.HeaderContentType),
		}
		if u := middleware.UserFromCtx(c); u != nil {
			in.UploadedBy = u.ID
		}

		doc, err := svc.Upload(c.UserContext(), data, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// DownloadDocument streams the decompressed document body. With inline set
// the response renders in the browser and the download gate does not apply.
func DownloadDocument(svc service.DocumentService, inline bool) fiber.Handler {
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}

	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		res, err := svc.Download(c.UserContext(), id, requesterRole(c), inline)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Set(fiber.HeaderContentType, res.ContentType)
		c.Set(fiber.HeaderContentDisposition,
			fmt.Sprintf("%s; filename=\"%s\"", disposition, url.PathEscape(res.FileName)))
		// SendStream closes the body when it implements io.Closer.
		return c.SendStream(res.Stream, int(res.Size))
	}
}

// DeleteDocument removes a document's metadata and blob.
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		deleted, err := svc.Delete(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		if !deleted {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ToggleDocumentStatus flips a document between enabled and disabled.
func ToggleDocumentStatus(svc service.DocumentService) fiber.Handler {
	return toggleDocument(svc.ToggleStatus)
}

// ToggleDocumentDownload flips a document's download gate.
func ToggleDocumentDownload(svc service.DocumentService) fiber.Handler {
	return toggleDocument(svc.ToggleDownloadEnabled)
}

func toggleDocument(flip func(ctx context.Context, id string) (*model.Document, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := flip(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}
