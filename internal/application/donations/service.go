package donations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"charity-fund/internal/application/investing"
	"charity-fund/internal/domain"
	"charity-fund/internal/infrastructure/lock"
	"charity-fund/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrInvalidFullAmount = errors.New("Donation amount must be a positive integer")
	ErrInvalidSeed       = errors.New("Invested amount must be between 0 and the donation amount")
	ErrEmptyField        = errors.New("Fields cannot be null or empty!")
)

type Service struct {
	DB          *gorm.DB
	Locker      lock.Locker
	LockTimeout time.Duration
	Now         func() time.Time
}

type CreateInput struct {
	FullAmount *int64
	Comment    *string
	// InvestedAmount seeds the donation as partly spent; nil means 0.
	InvestedAmount *int64
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Create stores a donation for userID and spends it on open projects, oldest first.
func (s *Service) Create(ctx context.Context, userID *uuid.UUID, in CreateInput) (*domain.Donation, error) {
	if in.FullAmount == nil {
		return nil, ErrEmptyField
	}
	if *in.FullAmount <= 0 {
		return nil, ErrInvalidFullAmount
	}
	var seed int64
	if in.InvestedAmount != nil {
		seed = *in.InvestedAmount
	}
	if seed < 0 || seed > *in.FullAmount {
		return nil, ErrInvalidSeed
	}

	unlock, err := lock.WithTimeout(ctx, s.Locker, s.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := s.now()
	funding, err := domain.NewFunding(*in.FullAmount, seed, now)
	if err != nil {
		return nil, err
	}
	donation := &domain.Donation{UserID: userID, Comment: in.Comment, Funding: funding}

	var transfers []investing.Transfer[*domain.CharityProject]
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		backlog, err := investing.OpenBacklog[domain.CharityProject](tx)
		if err != nil {
			return fmt.Errorf("load project backlog: %w", err)
		}
		transfers, err = investing.Distribute(donation, backlog, now)
		if err != nil {
			return err
		}
		if err := tx.Create(donation).Error; err != nil {
			return err
		}
		if err := investing.SaveSources(tx, transfers); err != nil {
			return err
		}
		for _, t := range transfers {
			row := &domain.Allocation{ProjectID: t.Source.ID, DonationID: donation.ID, Amount: t.Amount, CreatedAt: now}
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	moved := investing.Moved(transfers)
	closed := map[string]int{}
	if donation.IsClosed() {
		closed[metrics.KindDonation]++
	}
	for _, t := range transfers {
		if t.Source.IsClosed() {
			closed[metrics.KindProject]++
		}
	}
	metrics.ObservePass(metrics.KindDonation, moved, closed)
	log.Info().
		Str("donation_id", donation.ID.String()).
		Int("projects_funded", len(transfers)).
		Int64("moved", moved).
		Msg("donation created")
	return donation, nil
}

// List returns every donation with its allocation state.
func (s *Service) List(ctx context.Context) ([]domain.Donation, error) {
	var out []domain.Donation
	if err := s.DB.WithContext(ctx).Order("create_date ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("Failed to fetch donations: %v", err)
	}
	return out, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Donation, error) {
	var out []domain.Donation
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("create_date ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch donations: %v", err)
	}
	return out, nil
}
