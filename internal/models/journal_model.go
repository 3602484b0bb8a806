package models

import (
	"encoding/json"
	"sort"
	"time"

	"gorm.io/datatypes"
)

const (
	FieldText     = "text"
	FieldNumber   = "number"
	FieldDate     = "date"
	FieldSelect   = "select"
	FieldCheckbox = "checkbox"
	FieldRadio    = "radio"
	FieldFile     = "file"
)

const (
	JournalRoleRegistrar = "registrar"
	JournalRoleAnalyst   = "analyst"
)

type Journal struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:200" json:"name"`
	Description string          `gorm:"size:1000" json:"description"`
	UniqueID    string          `gorm:"size:100;uniqueIndex" json:"unique_id"`
	Fields      []JournalField  `gorm:"foreignKey:JournalID" json:"fields"`
	Access      []JournalAccess `gorm:"foreignKey:JournalID" json:"access"`
	CreatedBy   uint            `gorm:"index" json:"created_by"`
	Creator     *User           `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	IsActive    bool            `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// JournalField describes one field of a journal's form schema. FieldID is the
// key used in record payloads; Order defines the display and export column
// order (ascending, ties keep their original position).
type JournalField struct {
	ID          uint           `gorm:"primaryKey" json:"-"`
	JournalID   uint           `gorm:"index" json:"-"`
	FieldID     string         `gorm:"size:100" json:"id"`
	Type        string         `gorm:"size:20" json:"type"`
	Label       string         `gorm:"size:200" json:"label"`
	Placeholder string         `gorm:"size:200" json:"placeholder,omitempty"`
	Required    bool           `json:"required"`
	Options     datatypes.JSON `json:"options,omitempty"`
	Min         *float64       `json:"min,omitempty"`
	Max         *float64       `json:"max,omitempty"`
	Pattern     string         `gorm:"size:255" json:"pattern,omitempty"`
	Order       int            `gorm:"column:display_order" json:"order"`
	CreatedAt   time.Time      `json:"-"`
	UpdatedAt   time.Time      `json:"-"`
}

type JournalAccess struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	JournalID uint      `gorm:"index" json:"-"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Role      string    `gorm:"size:20" json:"role"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `json:"-"`
}

func ValidFieldType(fieldType string) bool {
	switch fieldType {
	case FieldText, FieldNumber, FieldDate, FieldSelect, FieldCheckbox, FieldRadio, FieldFile:
		return true
	}
	return false
}

func ValidJournalRole(role string) bool {
	return role == JournalRoleRegistrar || role == JournalRoleAnalyst
}

// OptionValues decodes the Options JSON column into a string slice.
// Returns nil when no options are stored.
func (f *JournalField) OptionValues() []string {
	if len(f.Options) == 0 {
		return nil
	}
	var options []string
	if err := json.Unmarshal(f.Options, &options); err != nil {
		return nil
	}
	return options
}

// SortedFields returns the schema ordered by display order, ties stable.
func (j *Journal) SortedFields() []JournalField {
	fields := make([]JournalField, len(j.Fields))
	copy(fields, j.Fields)
	sort.SliceStable(fields, func(a, b int) bool {
		return fields[a].Order < fields[b].Order
	})
	return fields
}
