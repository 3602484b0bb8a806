package record

import (
	"encoding/json"
	"fmt"

	"github.com/vgridasov/WebRegLog/internal/database"
	"github.com/vgridasov/WebRegLog/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ListParams struct {
	JournalID uint
	Search    string
	Filters   map[string]interface{}
	Page      int
	Limit     int
}

type ListResult struct {
	Records    []models.Record `json:"records"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int64           `json:"total_pages"`
}

// CreateRecord validates the payload against the journal's current schema and
// stores it. A non-empty error slice means the record was rejected and
// nothing was written.
func CreateRecord(journal *models.Journal, createdBy uint, data map[string]interface{}) (*models.Record, []ValidationError, error) {
	if errs := ValidateRecordData(data, journal.Fields); len(errs) > 0 {
		return nil, errs, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, nil, err
	}

	rec := models.Record{
		JournalID: journal.ID,
		Data:      datatypes.JSON(jsonData),
		CreatedBy: createdBy,
	}

	if err := database.DB.Create(&rec).Error; err != nil {
		return nil, nil, err
	}

	database.DB.Preload("Creator").First(&rec, rec.ID)
	return &rec, nil, nil
}

// UpdateRecord replaces the record's data wholesale after revalidating
// against the journal's current schema. Last writer wins; there is no
// optimistic concurrency token.
func UpdateRecord(rec *models.Record, journal *models.Journal, updatedBy uint, data map[string]interface{}) ([]ValidationError, error) {
	if errs := ValidateRecordData(data, journal.Fields); len(errs) > 0 {
		return errs, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	rec.Data = datatypes.JSON(jsonData)
	rec.UpdatedBy = updatedBy

	if err := database.DB.Save(rec).Error; err != nil {
		return nil, err
	}

	database.DB.Preload("Creator").Preload("Updater").First(rec, rec.ID)
	return nil, nil
}

func ListRecords(params ListParams) (*ListResult, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Limit <= 0 {
		params.Limit = 50
	}
	if params.Limit > 500 {
		params.Limit = 500
	}

	query := database.DB.Model(&models.Record{}).
		Where("journal_id = ?", params.JournalID)

	query = applySearch(query, params.Search)
	query = applyFieldFilters(query, params.Filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	offset := (params.Page - 1) * params.Limit

	var records []models.Record
	err := query.Order("created_at desc").
		Offset(offset).Limit(params.Limit).
		Preload("Creator").Preload("Updater").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	totalPages := total / int64(params.Limit)
	if total%int64(params.Limit) > 0 {
		totalPages++
	}

	return &ListResult{
		Records:    records,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
	}, nil
}

// FetchForExport returns every matching record, newest first, with authorship
// loaded for the exported "Created By" column.
func FetchForExport(journalID uint, filters map[string]interface{}) ([]models.Record, error) {
	query := database.DB.Model(&models.Record{}).
		Where("journal_id = ?", journalID)

	query = applyFieldFilters(query, filters)

	var records []models.Record
	err := query.Order("created_at desc").Preload("Creator").Find(&records).Error
	return records, err
}

func applySearch(query *gorm.DB, search string) *gorm.DB {
	if search == "" {
		return query
	}

	pattern := "%" + search + "%"
	if database.DB.Dialector.Name() == "postgres" {
		return query.Where("data::text ILIKE ?", pattern)
	}
	return query.Where("data LIKE ?", pattern)
}

// applyFieldFilters narrows by exact value per field id, using the JSON
// operators of whichever dialect is connected (postgres in production,
// sqlite in tests).
func applyFieldFilters(query *gorm.DB, filters map[string]interface{}) *gorm.DB {
	if len(filters) == 0 {
		return query
	}

	postgres := database.DB.Dialector.Name() == "postgres"

	for fieldID, value := range filters {
		if value == nil || value == "" {
			continue
		}
		if postgres {
			query = query.Where("data->>? = ?", fieldID, fmt.Sprint(value))
		} else {
			query = query.Where("json_extract(data, ?) = ?", "$."+fieldID, value)
		}
	}

	return query
}
