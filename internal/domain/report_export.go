package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReportExport is one completion-rate report written to a spreadsheet.
type ReportExport struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SpreadsheetID string         `gorm:"column:spreadsheet_id;not null" json:"spreadsheet_id"`
	URL           string         `gorm:"column:url;not null" json:"url"`
	ProjectCount  int            `gorm:"column:project_count;not null" json:"project_count"`
	Rows          datatypes.JSON `gorm:"column:rows;type:json" json:"rows"`
	CreatedAt     time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (ReportExport) TableName() string {
	return "report_exports"
}

func (r *ReportExport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
