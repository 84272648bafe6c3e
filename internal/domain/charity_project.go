package domain

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const MaxProjectNameLength = 100

// CharityProject is a fundraising target created by a superuser.
type CharityProject struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;type:varchar(100);not null;uniqueIndex" json:"name"`
	Description string    `gorm:"column:description;type:text;not null" json:"description"`
	Funding
}

func (CharityProject) TableName() string {
	return "charity_projects"
}

// BeforeCreate sets id if not already set (DBs without default uuid).
func (p *CharityProject) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
