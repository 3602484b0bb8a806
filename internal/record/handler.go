package record

import (
	"encoding/json"

	"github.com/vgridasov/WebRegLog/internal/access"
	"github.com/vgridasov/WebRegLog/internal/database"
	"github.com/vgridasov/WebRegLog/internal/models"
	"github.com/vgridasov/WebRegLog/internal/response"
	"github.com/gofiber/fiber/v2"
)

type createRecordRequest struct {
	JournalID uint                   `json:"journal_id"`
	Data      map[string]interface{} `json:"data"`
}

type updateRecordRequest struct {
	Data map[string]interface{} `json:"data"`
}

// CreateRecordHandler expects the write-capability gate to have run and
// stashed the target journal in ctx locals.
func CreateRecordHandler(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	journal := c.Locals("journal").(*models.Journal)

	var body createRecordRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if body.Data == nil {
		return response.ValidationError(c, map[string]string{
			"data": "data is required",
		})
	}

	rec, validationErrs, err := CreateRecord(journal, userID, body.Data)
	if err != nil {
		return response.InternalError(c, "Failed to create record")
	}
	if len(validationErrs) > 0 {
		return response.ValidationError(c, validationErrs)
	}

	return response.Created(c, rec, "Record created successfully")
}

func ListRecordsHandler(c *fiber.Ctx) error {
	journal := c.Locals("journal").(*models.Journal)

	params := ListParams{
		JournalID: journal.ID,
		Search:    c.Query("search", ""),
		Filters:   parseFilters(c.Query("filters", "")),
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", 50),
	}

	result, err := ListRecords(params)
	if err != nil {
		return response.InternalError(c, "Failed to fetch records")
	}

	meta := response.CalculateMeta(result.Page, result.Limit, result.Total)
	return response.SuccessWithMeta(c, result.Records, meta, "Records retrieved successfully")
}

func GetRecordHandler(c *fiber.Ctx) error {
	rec, journal, errResp := loadRecordWithJournal(c)
	if errResp != nil {
		return errResp(c)
	}

	caller, err := access.LoadCaller(c)
	if err != nil {
		return response.Unauthorized(c, "User not found")
	}

	return access.Respond(c, access.Authorize(caller, journal, access.CapabilityRead), func() error {
		return response.Success(c, rec, "Record retrieved successfully")
	})
}

// UpdateRecordHandler revalidates the full payload against the journal's
// current schema; if the schema changed since the record was created, the
// newer schema wins.
func UpdateRecordHandler(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	rec, journal, errResp := loadRecordWithJournal(c)
	if errResp != nil {
		return errResp(c)
	}

	caller, err := access.LoadCaller(c)
	if err != nil {
		return response.Unauthorized(c, "User not found")
	}

	return access.Respond(c, access.Authorize(caller, journal, access.CapabilityWrite), func() error {
		var body updateRecordRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadRequest(c, "Invalid request body", err.Error())
		}
		if body.Data == nil {
			return response.ValidationError(c, map[string]string{
				"data": "data is required",
			})
		}

		validationErrs, err := UpdateRecord(rec, journal, userID, body.Data)
		if err != nil {
			return response.InternalError(c, "Failed to update record")
		}
		if len(validationErrs) > 0 {
			return response.ValidationError(c, validationErrs)
		}

		return response.Success(c, rec, "Record updated successfully")
	})
}

// DeleteRecordHandler hard-deletes; the route is admin-only.
func DeleteRecordHandler(c *fiber.Ctx) error {
	recordID, err := c.ParamsInt("record_id")
	if err != nil {
		return response.BadRequest(c, "Invalid record ID", nil)
	}

	var rec models.Record
	if err := database.DB.First(&rec, recordID).Error; err != nil {
		return response.NotFound(c, "Record")
	}

	if err := database.DB.Delete(&rec).Error; err != nil {
		return response.InternalError(c, "Failed to delete record")
	}

	return response.Success(c, nil, "Record deleted successfully")
}

// ExportRecordsHandler streams the journal's records as XLSX (default) or
// CSV. The analyze-capability gate runs before this handler.
func ExportRecordsHandler(c *fiber.Ctx) error {
	journal := c.Locals("journal").(*models.Journal)

	format := c.Query("format", "xlsx")
	if format != "xlsx" && format != "csv" {
		return response.BadRequest(c, "Format must be xlsx or csv", nil)
	}

	records, err := FetchForExport(journal.ID, parseFilters(c.Query("filters", "")))
	if err != nil {
		return response.InternalError(c, "Failed to fetch records")
	}

	filename := ExportFilename(journal, format)

	if format == "csv" {
		payload, err := BuildCSV(journal, records)
		if err != nil {
			return response.InternalError(c, "Export failed")
		}
		c.Set("Content-Type", "text/csv; charset=utf-8")
		c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		return c.Send(payload)
	}

	payload, err := BuildXLSX(journal, records)
	if err != nil {
		return response.InternalError(c, "Export failed")
	}
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(payload)
}

func loadRecordWithJournal(c *fiber.Ctx) (*models.Record, *models.Journal, func(*fiber.Ctx) error) {
	recordID, err := c.ParamsInt("record_id")
	if err != nil {
		return nil, nil, func(c *fiber.Ctx) error {
			return response.BadRequest(c, "Invalid record ID", nil)
		}
	}

	var rec models.Record
	if err := database.DB.Preload("Creator").Preload("Updater").First(&rec, recordID).Error; err != nil {
		return nil, nil, func(c *fiber.Ctx) error {
			return response.NotFound(c, "Record")
		}
	}

	var journal models.Journal
	if err := database.DB.Preload("Fields").Preload("Access").First(&journal, rec.JournalID).Error; err != nil {
		return nil, nil, func(c *fiber.Ctx) error {
			return response.NotFound(c, "Journal")
		}
	}

	return &rec, &journal, nil
}

func parseFilters(raw string) map[string]interface{} {
	if raw == "" {
		return nil
	}
	var filters map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &filters); err != nil {
		return nil
	}
	return filters
}
