package journal

import (
	"fmt"
	"sort"

	"github.com/vgridasov/WebRegLog/internal/database"
	"github.com/vgridasov/WebRegLog/internal/models"
	"gorm.io/gorm"
)

// ValidateFields checks a journal schema definition: valid field types,
// unique payload keys, and options present for choice fields. Returns a
// field-id keyed error map for the validation envelope.
func ValidateFields(fields []models.JournalField) map[string]string {
	errs := make(map[string]string)
	seen := make(map[string]bool)

	if len(fields) == 0 {
		errs["fields"] = "at least one field is required"
		return errs
	}

	for i, field := range fields {
		key := field.FieldID
		if key == "" {
			errs[fmt.Sprintf("fields[%d]", i)] = "field id is required"
			continue
		}
		if seen[key] {
			errs[key] = "field id must be unique within the journal"
			continue
		}
		seen[key] = true

		if field.Label == "" {
			errs[key] = "label is required"
			continue
		}
		if !models.ValidFieldType(field.Type) {
			errs[key] = fmt.Sprintf("unknown field type '%s'", field.Type)
			continue
		}
		if field.Type == models.FieldSelect || field.Type == models.FieldRadio {
			if len(field.OptionValues()) == 0 {
				errs[key] = "options are required for select and radio fields"
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateAccess checks ACL entries: known journal roles and existing,
// active, non-admin users.
func ValidateAccess(access []models.JournalAccess) map[string]string {
	errs := make(map[string]string)

	for i, grant := range access {
		key := fmt.Sprintf("access[%d]", i)
		if !models.ValidJournalRole(grant.Role) {
			errs[key] = "role must be registrar or analyst"
			continue
		}

		var user models.User
		if err := database.DB.First(&user, grant.UserID).Error; err != nil {
			errs[key] = "user not found"
			continue
		}
		if !user.IsActive {
			errs[key] = "user is deactivated"
			continue
		}
		if user.Role == models.RoleAdmin {
			errs[key] = "administrators don't need journal access grants"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func sortFields(fields []models.JournalField) []models.JournalField {
	sorted := make([]models.JournalField, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Order < sorted[b].Order
	})
	return sorted
}

func CreateJournal(journal *models.Journal) error {
	journal.Fields = sortFields(journal.Fields)
	return database.DB.Create(journal).Error
}

// ReplaceSchema swaps the journal's field list and ACL wholesale inside one
// transaction, mirroring how journal updates replace both lists.
func ReplaceSchema(journal *models.Journal, fields []models.JournalField, access []models.JournalAccess) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		if fields != nil {
			if err := tx.Where("journal_id = ?", journal.ID).Delete(&models.JournalField{}).Error; err != nil {
				return err
			}
			sorted := sortFields(fields)
			for i := range sorted {
				sorted[i].ID = 0
				sorted[i].JournalID = journal.ID
			}
			if len(sorted) > 0 {
				if err := tx.Create(&sorted).Error; err != nil {
					return err
				}
			}
			journal.Fields = sorted
		}

		if access != nil {
			if err := tx.Where("journal_id = ?", journal.ID).Delete(&models.JournalAccess{}).Error; err != nil {
				return err
			}
			for i := range access {
				access[i].ID = 0
				access[i].JournalID = journal.ID
				access[i].User = nil
			}
			if len(access) > 0 {
				if err := tx.Create(&access).Error; err != nil {
					return err
				}
			}
			journal.Access = access
		}

		return tx.Save(journal).Error
	})
}

func RecordCount(journalID uint) int64 {
	var count int64
	database.DB.Model(&models.Record{}).Where("journal_id = ?", journalID).Count(&count)
	return count
}
