package journal

import (
	"strings"

	"github.com/vgridasov/WebRegLog/internal/access"
	"github.com/vgridasov/WebRegLog/internal/database"
	"github.com/vgridasov/WebRegLog/internal/models"
	"github.com/vgridasov/WebRegLog/internal/response"
	"github.com/google/uuid"
	"github.com/gofiber/fiber/v2"
)

type journalRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	UniqueID    string                 `json:"unique_id"`
	Fields      []models.JournalField  `json:"fields"`
	Access      []models.JournalAccess `json:"access"`
}

type journalWithCount struct {
	models.Journal
	RecordCount int64 `json:"record_count"`
}

func CreateJournalHandler(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var body journalRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if body.Name == "" {
		return response.ValidationError(c, map[string]string{
			"name": "name is required",
		})
	}

	if errs := ValidateFields(body.Fields); errs != nil {
		return response.ValidationError(c, errs)
	}
	if errs := ValidateAccess(body.Access); errs != nil {
		return response.ValidationError(c, errs)
	}

	if body.UniqueID == "" {
		body.UniqueID = "jr-" + strings.Split(uuid.New().String(), "-")[0]
	}

	var existing models.Journal
	if err := database.DB.Where("unique_id = ?", body.UniqueID).First(&existing).Error; err == nil {
		return response.Conflict(c, "Journal with this unique ID already exists")
	}

	journal := models.Journal{
		Name:        body.Name,
		Description: body.Description,
		UniqueID:    body.UniqueID,
		Fields:      body.Fields,
		Access:      body.Access,
		CreatedBy:   userID,
		IsActive:    true,
	}

	if err := CreateJournal(&journal); err != nil {
		return response.InternalError(c, "Failed to create journal")
	}

	database.DB.Preload("Fields").Preload("Access.User").Preload("Creator").First(&journal, journal.ID)

	return response.Created(c, journal, "Journal created successfully")
}

// ListJournalsHandler shows admins every active journal; everyone else only
// sees journals where they hold an access grant.
func ListJournalsHandler(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		return response.Unauthorized(c, "User not found")
	}

	query := database.DB.Model(&models.Journal{}).
		Where("journals.is_active = ?", true).
		Preload("Fields").Preload("Access.User").Preload("Creator").
		Order("journals.created_at desc")

	if user.Role != models.RoleAdmin {
		query = query.
			Joins("JOIN journal_accesses ON journal_accesses.journal_id = journals.id").
			Where("journal_accesses.user_id = ?", userID).
			Distinct()
	}

	var journals []models.Journal
	if err := query.Find(&journals).Error; err != nil {
		return response.InternalError(c, "Failed to fetch journals")
	}

	result := make([]journalWithCount, 0, len(journals))
	for _, j := range journals {
		j.Fields = (&j).SortedFields()
		result = append(result, journalWithCount{Journal: j, RecordCount: RecordCount(j.ID)})
	}

	return response.Success(c, result, "Journals retrieved successfully")
}

func GetJournalHandler(c *fiber.Ctx) error {
	journalID, err := c.ParamsInt("journal_id")
	if err != nil {
		return response.BadRequest(c, "Invalid journal ID", nil)
	}

	caller, callerErr := access.LoadCaller(c)
	if callerErr != nil {
		return response.Unauthorized(c, "User not found")
	}

	var journal models.Journal
	if err := database.DB.Preload("Fields").Preload("Access.User").Preload("Creator").
		First(&journal, journalID).Error; err != nil {
		return response.NotFound(c, "Journal")
	}

	return access.Respond(c, access.Authorize(caller, &journal, access.CapabilityRead), func() error {
		journal.Fields = journal.SortedFields()
		return response.Success(c, journalWithCount{
			Journal:     journal,
			RecordCount: RecordCount(journal.ID),
		}, "Journal retrieved successfully")
	})
}

func UpdateJournalHandler(c *fiber.Ctx) error {
	journalID, err := c.ParamsInt("journal_id")
	if err != nil {
		return response.BadRequest(c, "Invalid journal ID", nil)
	}

	var body journalRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	var journal models.Journal
	if err := database.DB.First(&journal, journalID).Error; err != nil {
		return response.NotFound(c, "Journal")
	}

	if body.Fields != nil {
		if errs := ValidateFields(body.Fields); errs != nil {
			return response.ValidationError(c, errs)
		}
	}
	if body.Access != nil {
		if errs := ValidateAccess(body.Access); errs != nil {
			return response.ValidationError(c, errs)
		}
	}

	if body.Name != "" {
		journal.Name = body.Name
	}
	if body.Description != "" {
		journal.Description = body.Description
	}

	if err := ReplaceSchema(&journal, body.Fields, body.Access); err != nil {
		return response.InternalError(c, "Failed to update journal")
	}

	database.DB.Preload("Fields").Preload("Access.User").Preload("Creator").First(&journal, journal.ID)
	journal.Fields = journal.SortedFields()

	return response.Success(c, journal, "Journal updated successfully")
}

// DeleteJournalHandler soft-deletes: journals are never physically removed so
// historical records keep a resolvable owner.
func DeleteJournalHandler(c *fiber.Ctx) error {
	journalID, err := c.ParamsInt("journal_id")
	if err != nil {
		return response.BadRequest(c, "Invalid journal ID", nil)
	}

	var journal models.Journal
	if err := database.DB.First(&journal, journalID).Error; err != nil {
		return response.NotFound(c, "Journal")
	}

	journal.IsActive = false
	if err := database.DB.Save(&journal).Error; err != nil {
		return response.InternalError(c, "Failed to delete journal")
	}

	return response.Success(c, nil, "Journal deleted successfully")
}
