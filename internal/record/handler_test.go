package record_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/vgridasov/WebRegLog/internal/database"
	"github.com/vgridasov/WebRegLog/internal/models"
	"github.com/vgridasov/WebRegLog/internal/testutils"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func visitorFields() []models.JournalField {
	min := float64(0)
	max := float64(120)
	return []models.JournalField{
		{FieldID: "name", Type: models.FieldText, Label: "Full Name", Required: true, Order: 0},
		{FieldID: "age", Type: models.FieldNumber, Label: "Age", Required: false, Min: &min, Max: &max, Order: 1},
		{FieldID: "category", Type: models.FieldSelect, Label: "Category", Required: false, Options: datatypes.JSON(`["guest","staff"]`), Order: 2},
	}
}

func TestCreateRecordHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)

	registrar := testutils.CreateTestUser(t, database.DB, "registrar@test.com", "password", models.RoleRegistrar)
	analyst := testutils.CreateTestUser(t, database.DB, "analyst@test.com", "password", models.RoleAnalyst)
	admin := testutils.CreateTestUser(t, database.DB, "admin@test.com", "password", models.RoleAdmin)

	journal := testutils.CreateTestJournal(t, database.DB, admin.ID, visitorFields(), []models.JournalAccess{
		{UserID: registrar.ID, Role: models.JournalRoleRegistrar},
		{UserID: analyst.ID, Role: models.JournalRoleAnalyst},
	})

	registrarToken := testutils.GetAuthToken(t, registrar.ID, registrar.Role)
	analystToken := testutils.GetAuthToken(t, analyst.ID, analyst.Role)
	adminToken := testutils.GetAuthToken(t, admin.ID, admin.Role)

	t.Run("Success - Registrar creates record", func(t *testing.T) {
		body := map[string]interface{}{
			"journal_id": journal.ID,
			"data": map[string]interface{}{
				"name":     "Ivan Petrov",
				"age":      42,
				"category": "guest",
			},
		}

		resp, err := testutils.MakeRequest(app, "POST", "/records/", body, registrarToken)
		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Code)

		testutils.AssertSuccess(t, resp)
	})

	t.Run("Success - Admin bypasses the access list", func(t *testing.T) {
		body := map[string]interface{}{
			"journal_id": journal.ID,
			"data":       map[string]interface{}{"name": "Admin Entry"},
		}

		resp, err := testutils.MakeRequest(app, "POST", "/records/", body, adminToken)
		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Code)
	})

	t.Run("Error - Analyst cannot write", func(t *testing.T) {
		body := map[string]interface{}{
			"journal_id": journal.ID,
			"data":       map[string]interface{}{"name": "Should Fail"},
		}

		resp, err := testutils.MakeRequest(app, "POST", "/records/", body, analystToken)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)

		testutils.AssertError(t, resp, "FORBIDDEN")
	})

	t.Run("Error - Validation failure returns every error", func(t *testing.T) {
		body := map[string]interface{}{
			"journal_id": journal.ID,
			"data": map[string]interface{}{
				"age":      150,
				"category": "visitor",
			},
		}

		resp, err := testutils.MakeRequest(app, "POST", "/records/", body, registrarToken)
		assert.NoError(t, err)
		assert.Equal(t, 422, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		assert.False(t, result.Success)
		assert.Equal(t, "VALIDATION_ERROR", result.Error.Code)

		details := result.Error.Details.([]interface{})
		assert.Len(t, details, 3)

		first := details[0].(map[string]interface{})
		assert.Equal(t, "Full Name", first["field"])
		assert.Equal(t, "Full Name is required", first["message"])
	})

	t.Run("Error - Rejected record is not stored", func(t *testing.T) {
		var before int64
		database.DB.Model(&models.Record{}).Where("journal_id = ?", journal.ID).Count(&before)

		body := map[string]interface{}{
			"journal_id": journal.ID,
			"data":       map[string]interface{}{"age": "not a number"},
		}
		resp, _ := testutils.MakeRequest(app, "POST", "/records/", body, registrarToken)
		assert.Equal(t, 422, resp.Code)

		var after int64
		database.DB.Model(&models.Record{}).Where("journal_id = ?", journal.ID).Count(&after)
		assert.Equal(t, before, after)
	})

	t.Run("Error - Missing journal ID", func(t *testing.T) {
		body := map[string]interface{}{
			"data": map[string]interface{}{"name": "No Journal"},
		}

		resp, err := testutils.MakeRequest(app, "POST", "/records/", body, registrarToken)
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.Code)

		testutils.AssertError(t, resp, "BAD_REQUEST")
	})

	t.Run("Error - Nonexistent journal", func(t *testing.T) {
		body := map[string]interface{}{
			"journal_id": 9999,
			"data":       map[string]interface{}{"name": "Ghost"},
		}

		resp, err := testutils.MakeRequest(app, "POST", "/records/", body, registrarToken)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	})

	t.Run("Error - Inactive journal looks missing", func(t *testing.T) {
		inactive := testutils.CreateTestJournal(t, database.DB, admin.ID, visitorFields(), []models.JournalAccess{
			{UserID: registrar.ID, Role: models.JournalRoleRegistrar},
		})
		database.DB.Model(inactive).Update("is_active", false)

		body := map[string]interface{}{
			"journal_id": inactive.ID,
			"data":       map[string]interface{}{"name": "Hidden"},
		}

		resp, err := testutils.MakeRequest(app, "POST", "/records/", body, registrarToken)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	})

	t.Run("Error - Unauthorized", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "POST", "/records/", map[string]interface{}{}, "")
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)
	})
}

func TestListRecordsHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)

	registrar := testutils.CreateTestUser(t, database.DB, "registrar@test.com", "password", models.RoleRegistrar)
	analyst := testutils.CreateTestUser(t, database.DB, "analyst@test.com", "password", models.RoleAnalyst)
	outsider := testutils.CreateTestUser(t, database.DB, "outsider@test.com", "password", models.RoleRegistrar)

	journal := testutils.CreateTestJournal(t, database.DB, registrar.ID, visitorFields(), []models.JournalAccess{
		{UserID: registrar.ID, Role: models.JournalRoleRegistrar},
		{UserID: analyst.ID, Role: models.JournalRoleAnalyst},
	})

	for i := 0; i < 5; i++ {
		data, _ := json.Marshal(map[string]interface{}{
			"name":     fmt.Sprintf("Visitor %d", i),
			"category": "guest",
		})
		database.DB.Create(&models.Record{
			JournalID: journal.ID,
			Data:      datatypes.JSON(data),
			CreatedBy: registrar.ID,
		})
	}
	special, _ := json.Marshal(map[string]interface{}{"name": "Anna Sidorova", "category": "staff"})
	database.DB.Create(&models.Record{JournalID: journal.ID, Data: datatypes.JSON(special), CreatedBy: registrar.ID})

	registrarToken := testutils.GetAuthToken(t, registrar.ID, registrar.Role)
	analystToken := testutils.GetAuthToken(t, analyst.ID, analyst.Role)
	outsiderToken := testutils.GetAuthToken(t, outsider.ID, outsider.Role)

	url := fmt.Sprintf("/records/journal/%d", journal.ID)

	t.Run("Success - Registrar lists records", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", url, nil, registrarToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		assert.True(t, result.Success)
		assert.NotNil(t, result.Meta)
		assert.Equal(t, int64(6), result.Meta.Total)
	})

	t.Run("Success - Analyst can read too", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", url, nil, analystToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)
	})

	t.Run("Success - Pagination", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", url+"?page=2&limit=4", nil, registrarToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		assert.Equal(t, 2, result.Meta.Page)
		assert.Equal(t, int64(2), result.Meta.TotalPages)

		records := result.Data.([]interface{})
		assert.Len(t, records, 2)
	})

	t.Run("Success - Field filter", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", url+`?filters={"category":"staff"}`, nil, registrarToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		assert.Equal(t, int64(1), result.Meta.Total)
	})

	t.Run("Success - Substring search", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", url+"?search=Sidorova", nil, registrarToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		assert.Equal(t, int64(1), result.Meta.Total)
	})

	t.Run("Error - No grant on the journal", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", url, nil, outsiderToken)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)
	})
}

func TestGetAndUpdateRecordHandlers(t *testing.T) {
	app := testutils.SetupTestApp(t)

	registrar := testutils.CreateTestUser(t, database.DB, "registrar@test.com", "password", models.RoleRegistrar)
	analyst := testutils.CreateTestUser(t, database.DB, "analyst@test.com", "password", models.RoleAnalyst)

	journal := testutils.CreateTestJournal(t, database.DB, registrar.ID, visitorFields(), []models.JournalAccess{
		{UserID: registrar.ID, Role: models.JournalRoleRegistrar},
		{UserID: analyst.ID, Role: models.JournalRoleAnalyst},
	})

	data, _ := json.Marshal(map[string]interface{}{"name": "Ivan Petrov", "age": 30})
	rec := &models.Record{JournalID: journal.ID, Data: datatypes.JSON(data), CreatedBy: registrar.ID}
	database.DB.Create(rec)

	registrarToken := testutils.GetAuthToken(t, registrar.ID, registrar.Role)
	analystToken := testutils.GetAuthToken(t, analyst.ID, analyst.Role)

	url := fmt.Sprintf("/records/%d", rec.ID)

	t.Run("Success - Get record", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", url, nil, analystToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		testutils.AssertSuccess(t, resp)
	})

	t.Run("Error - Get missing record", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/records/9999", nil, registrarToken)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	})

	t.Run("Success - Registrar updates record", func(t *testing.T) {
		body := map[string]interface{}{
			"data": map[string]interface{}{"name": "Ivan Petrov", "age": 31},
		}

		resp, err := testutils.MakeRequest(app, "PUT", url, body, registrarToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var stored models.Record
		database.DB.First(&stored, rec.ID)
		var payload map[string]interface{}
		json.Unmarshal(stored.Data, &payload)
		assert.Equal(t, float64(31), payload["age"])
		assert.Equal(t, registrar.ID, stored.UpdatedBy)
	})

	t.Run("Error - Update revalidates against the schema", func(t *testing.T) {
		body := map[string]interface{}{
			"data": map[string]interface{}{"age": 31},
		}

		resp, err := testutils.MakeRequest(app, "PUT", url, body, registrarToken)
		assert.NoError(t, err)
		assert.Equal(t, 422, resp.Code)

		testutils.AssertError(t, resp, "VALIDATION_ERROR")
	})

	t.Run("Error - Analyst cannot update", func(t *testing.T) {
		body := map[string]interface{}{
			"data": map[string]interface{}{"name": "Changed"},
		}

		resp, err := testutils.MakeRequest(app, "PUT", url, body, analystToken)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)
	})
}

func TestDeleteRecordHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)

	registrar := testutils.CreateTestUser(t, database.DB, "registrar@test.com", "password", models.RoleRegistrar)
	admin := testutils.CreateTestUser(t, database.DB, "admin@test.com", "password", models.RoleAdmin)

	journal := testutils.CreateTestJournal(t, database.DB, admin.ID, visitorFields(), []models.JournalAccess{
		{UserID: registrar.ID, Role: models.JournalRoleRegistrar},
	})

	data, _ := json.Marshal(map[string]interface{}{"name": "To Delete"})
	rec := &models.Record{JournalID: journal.ID, Data: datatypes.JSON(data), CreatedBy: registrar.ID}
	database.DB.Create(rec)

	registrarToken := testutils.GetAuthToken(t, registrar.ID, registrar.Role)
	adminToken := testutils.GetAuthToken(t, admin.ID, admin.Role)

	url := fmt.Sprintf("/records/%d", rec.ID)

	t.Run("Error - Registrar cannot delete", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "DELETE", url, nil, registrarToken)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)
	})

	t.Run("Success - Admin deletes for real", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "DELETE", url, nil, adminToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var count int64
		database.DB.Model(&models.Record{}).Where("id = ?", rec.ID).Count(&count)
		assert.Equal(t, int64(0), count)
	})
}

func TestExportRecordsHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)

	registrar := testutils.CreateTestUser(t, database.DB, "registrar@test.com", "password", models.RoleRegistrar)
	analyst := testutils.CreateTestUser(t, database.DB, "analyst@test.com", "password", models.RoleAnalyst)

	journal := testutils.CreateTestJournal(t, database.DB, analyst.ID, visitorFields(), []models.JournalAccess{
		{UserID: registrar.ID, Role: models.JournalRoleRegistrar},
		{UserID: analyst.ID, Role: models.JournalRoleAnalyst},
	})

	data, _ := json.Marshal(map[string]interface{}{"name": "Ivan Petrov", "age": 42, "category": "guest"})
	database.DB.Create(&models.Record{JournalID: journal.ID, Data: datatypes.JSON(data), CreatedBy: registrar.ID})

	registrarToken := testutils.GetAuthToken(t, registrar.ID, registrar.Role)
	analystToken := testutils.GetAuthToken(t, analyst.ID, analyst.Role)

	url := fmt.Sprintf("/records/export/%d", journal.ID)

	t.Run("Success - CSV export with BOM", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", url+"?format=csv", nil, analystToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		assert.Contains(t, resp.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, resp.Header().Get("Content-Disposition"), journal.UniqueID)
		assert.Contains(t, resp.Header().Get("Content-Disposition"), ".csv")

		payload := resp.Body.Bytes()
		assert.True(t, bytes.HasPrefix(payload, []byte{0xEF, 0xBB, 0xBF}), "CSV should start with a UTF-8 BOM")
		assert.Contains(t, string(payload), "Full Name,Age,Category,Created At,Created By")
		assert.Contains(t, string(payload), "Ivan Petrov")
	})

	t.Run("Success - XLSX export is the default", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", url, nil, analystToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		assert.Contains(t, resp.Header().Get("Content-Type"), "spreadsheetml")
		assert.Contains(t, resp.Header().Get("Content-Disposition"), ".xlsx")

		// XLSX files are ZIP archives.
		assert.True(t, bytes.HasPrefix(resp.Body.Bytes(), []byte("PK")))
	})

	t.Run("Error - Unknown format", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", url+"?format=pdf", nil, analystToken)
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
	})

	t.Run("Error - Registrar cannot export", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", url, nil, registrarToken)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)

		testutils.AssertError(t, resp, "FORBIDDEN")
	})
}
