package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	svix "github.com/svix/svix-webhooks/go"

	"docvault/internal/service"
)

// identityEvent is the envelope pushed by the identity provider.
type identityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		ImageURL  string `json:"image_url"`
	} `json:"data"`
}

// IdentityWebhook handles signed user lifecycle events from the identity
// provider. The signature is verified before the payload is trusted; the
// route carries no session identity of its own.
func IdentityWebhook(secret string, users service.UserService) fiber.Handler {
	wh, whErr := svix.NewWebhook(secret)

	return func(c *fiber.Ctx) error {
		if whErr != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		headers := http.Header{}
		for _, k := range []string{"svix-id", "svix-timestamp", "svix-signature"} {
			headers.Set(k, c.Get(k))
		}
		payload := c.Body()
		if err := wh.Verify(payload, headers); err != nil {
			return writeError(c, fiber.StatusUnauthorized, "INVALID_SIGNATURE", "webhook signature verification failed")
		}

		var evt identityEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		in := service.UserInput{
			ID:        evt.Data.ID,
			FirstName: evt.Data.FirstName,
			LastName:  evt.Data.LastName,
			ImageURL:  evt.Data.ImageURL,
		}
		if len(evt.Data.EmailAddresses) > 0 {
			in.Email = evt.Data.EmailAddresses[0].EmailAddress
		}

		switch evt.Type {
		case "user.created":
			if _, err := users.Create(c.UserContext(), in); err != nil {
				// A replayed create for a known user is not a failure.
				if errors.Is(err, service.ErrConflict) {
					return c.SendStatus(fiber.StatusOK)
				}
				return writeServiceError(c, err)
			}
		case "user.updated":
			if _, err := users.Sync(c.UserContext(), in); err != nil {
				return writeServiceError(c, err)
			}
		case "user.deleted":
			if _, err := users.Delete(c.UserContext(), evt.Data.ID); err != nil {
				return writeServiceError(c, err)
			}
		default:
			// Unknown event types are acknowledged so the provider stops retrying.
		}

		return c.SendStatus(fiber.StatusOK)
	}
}
