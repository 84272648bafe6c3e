package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Allocation records how much of a donation went to a project in one investing pass.
type Allocation struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProjectID  uuid.UUID `gorm:"column:project_id;type:uuid;not null;index" json:"project_id"`
	DonationID uuid.UUID `gorm:"column:donation_id;type:uuid;not null;index" json:"donation_id"`
	Amount     int64     `gorm:"column:amount;not null;check:amount > 0" json:"amount"`
	CreatedAt  time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Allocation) TableName() string {
	return "allocations"
}

func (a *Allocation) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
