package models

import (
	"time"

	"gorm.io/datatypes"
)

// Record is one data row of a journal. Data maps field ids to values; its
// shape is checked against the owning journal's current schema on every
// create and update, never by storage. Records are hard-deleted, unlike
// journals which only flip IsActive.
type Record struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	JournalID uint           `gorm:"index:idx_records_journal_created,priority:1" json:"journal_id"`
	Data      datatypes.JSON `json:"data"`
	CreatedBy uint           `gorm:"index" json:"created_by"`
	UpdatedBy uint           `json:"updated_by,omitempty"`
	Creator   *User          `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Updater   *User          `gorm:"foreignKey:UpdatedBy" json:"updater,omitempty"`
	CreatedAt time.Time      `gorm:"index:idx_records_journal_created,priority:2" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
