package investing

import (
	"charity-fund/internal/domain"

	"gorm.io/gorm"
)

// Backlog is a persisted kind of funding record.
type Backlog interface {
	domain.CharityProject | domain.Donation
}

// OpenBacklog loads open records of kind T, oldest first. Run it on the same
// transaction that will commit the allocation.
func OpenBacklog[T Backlog](tx *gorm.DB) ([]*T, error) {
	var backlog []*T
	err := tx.Where("fully_invested = ?", false).
		Order("create_date ASC").
		Find(&backlog).Error
	if err != nil {
		return nil, err
	}
	return backlog, nil
}

// SaveSources persists every source touched by an allocation pass.
func SaveSources[S domain.Investable](tx *gorm.DB, transfers []Transfer[S]) error {
	for _, t := range transfers {
		if err := tx.Save(t.Source).Error; err != nil {
			return err
		}
	}
	return nil
}
