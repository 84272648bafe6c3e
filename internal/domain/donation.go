package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Donation is money a user gave to the fund; it is spread over open projects.
type Donation struct {
	ID      uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID  *uuid.UUID `gorm:"column:user_id;type:uuid;index" json:"user_id,omitempty"`
	Comment *string    `gorm:"column:comment;type:text" json:"comment,omitempty"`
	Funding
}

func (Donation) TableName() string {
	return "donations"
}

func (d *Donation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// DonationView is the shape a donor sees: no allocation state.
type DonationView struct {
	ID         uuid.UUID `json:"id"`
	Comment    *string   `json:"comment,omitempty"`
	FullAmount int64     `json:"full_amount"`
	CreateDate time.Time `json:"create_date"`
}

// View strips the fields only superusers may see.
func (d *Donation) View() DonationView {
	return DonationView{
		ID:         d.ID,
		Comment:    d.Comment,
		FullAmount: d.FullAmount,
		CreateDate: d.CreateDate,
	}
}
