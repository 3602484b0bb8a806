package access

import (
	"strconv"

	"github.com/vgridasov/WebRegLog/internal/database"
	"github.com/vgridasov/WebRegLog/internal/models"
	"github.com/vgridasov/WebRegLog/internal/response"
	"github.com/gofiber/fiber/v2"
)

// JournalProtected gates a journal-scoped route on the given capability.
// The journal id comes from the :journal_id route param, or from the request
// body for routes like record creation. On Allow the loaded journal is stored
// in ctx locals under "journal" so handlers don't fetch it twice.
func JournalProtected(capability Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(uint)

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil || !user.IsActive {
			return response.Unauthorized(c, "User not found")
		}

		caller := Caller{ID: user.ID, Role: user.Role}

		journalID, ok := journalIDFromRequest(c)
		if !ok {
			return response.BadRequest(c, "Journal ID is required", nil)
		}

		// A journal that does not exist at all is a 404 for everyone,
		// including admins. The gate only decides over journals we found.
		journal := lookupJournal(journalID)
		if journal == nil {
			return response.NotFound(c, "Journal")
		}

		return Respond(c, Authorize(caller, journal, capability), func() error {
			c.Locals("journal", journal)
			return c.Next()
		})
	}
}

// Respond translates a gate verdict into the standard response envelope,
// invoking onAllow only for an Allow outcome.
func Respond(c *fiber.Ctx, verdict Verdict, onAllow func() error) error {
	switch verdict.Outcome {
	case Allow:
		return onAllow()
	case NotFound:
		return response.NotFound(c, "Journal")
	case BadRequest:
		return response.BadRequest(c, "Journal ID is required", nil)
	default:
		return response.Forbidden(c, verdict.Reason)
	}
}

// LoadCaller fetches the authenticated user for handlers that call Authorize
// directly (record-scoped routes where the journal comes off the record).
func LoadCaller(c *fiber.Ctx) (Caller, error) {
	userID := c.Locals("user_id").(uint)

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil || !user.IsActive {
		return Caller{}, fiber.ErrUnauthorized
	}
	return Caller{ID: user.ID, Role: user.Role}, nil
}

func journalIDFromRequest(c *fiber.Ctx) (uint, bool) {
	if param := c.Params("journal_id"); param != "" {
		id, err := strconv.ParseUint(param, 10, 32)
		if err != nil {
			return 0, false
		}
		return uint(id), true
	}

	var body struct {
		JournalID uint `json:"journal_id"`
	}
	if err := c.BodyParser(&body); err == nil && body.JournalID != 0 {
		return body.JournalID, true
	}

	return 0, false
}

func lookupJournal(journalID uint) *models.Journal {
	var journal models.Journal
	err := database.DB.Preload("Fields").Preload("Access").First(&journal, journalID).Error
	if err != nil {
		return nil
	}
	return &journal
}
