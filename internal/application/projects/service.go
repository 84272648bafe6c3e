package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charity-fund/internal/application/investing"
	"charity-fund/internal/domain"
	"charity-fund/internal/infrastructure/lock"
	"charity-fund/internal/infrastructure/metrics"
	"charity-fund/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
	// Locker guards every pass that moves money; nil uses lock.Local.
	Locker      lock.Locker
	LockTimeout time.Duration
	Now         func() time.Time
}

type CreateInput struct {
	Name        *string
	Description *string
	FullAmount  *int64
}

// UpdateInput carries only the fields present in the request.
type UpdateInput struct {
	Name        *string
	Description *string
	FullAmount  *int64
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func validateName(name *string) error {
	if name == nil {
		return ErrEmptyField
	}
	if !validation.IsValidProjectName(*name) {
		return ErrInvalidName
	}
	return nil
}

func validateDescription(desc *string) error {
	if desc == nil {
		return ErrEmptyField
	}
	if strings.TrimSpace(*desc) == "" {
		return ErrInvalidDescription
	}
	return nil
}

func validateFullAmount(amount *int64) error {
	if amount == nil {
		return ErrEmptyField
	}
	if *amount <= 0 {
		return ErrInvalidFullAmount
	}
	return nil
}

func nameTaken(tx *gorm.DB, name string, except uuid.UUID) (bool, error) {
	var n int64
	q := tx.Model(&domain.CharityProject{}).Where("name = ?", name)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create opens a project and spends the open donations on it, oldest first.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.CharityProject, error) {
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}
	if err := validateFullAmount(in.FullAmount); err != nil {
		return nil, err
	}

	unlock, err := lock.WithTimeout(ctx, s.Locker, s.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := s.now()
	funding, err := domain.NewFunding(*in.FullAmount, 0, now)
	if err != nil {
		return nil, err
	}
	project := &domain.CharityProject{
		Name:        *in.Name,
		Description: *in.Description,
		Funding:     funding,
	}

	var transfers []investing.Transfer[*domain.Donation]
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := nameTaken(tx, project.Name, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateName
		}
		backlog, err := investing.OpenBacklog[domain.Donation](tx)
		if err != nil {
			return fmt.Errorf("load donation backlog: %w", err)
		}
		transfers, err = investing.Distribute(project, backlog, now)
		if err != nil {
			return err
		}
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		if err := investing.SaveSources(tx, transfers); err != nil {
			return err
		}
		for _, t := range transfers {
			row := &domain.Allocation{ProjectID: project.ID, DonationID: t.Source.ID, Amount: t.Amount, CreatedAt: now}
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
	if project.IsClosed() {
		closed[metrics.KindProject]++
	}
	for _, t := range transfers {
		if t.Source.IsClosed() {
			closed[metrics.KindDonation]++
		}
	}
	metrics.ObservePass(metrics.KindProject, moved, closed)
	log.Info().
		Str("project_id", project.ID.String()).
		Int("donations_used", len(transfers)).
		Int64("moved", moved).
		Bool("fully_invested", project.FullyInvested).
		Msg("charity project created")
	return project, nil
}

// List returns every project, oldest first.
func (s *Service) List(ctx context.Context) ([]domain.CharityProject, error) {
	var projects []domain.CharityProject
	if err := s.DB.WithContext(ctx).Order("create_date ASC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("Failed to fetch projects: %v", err)
	}
	return projects, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.CharityProject, error) {
	return find(s.DB.WithContext(ctx), id)
}

func find(tx *gorm.DB, id uuid.UUID) (*domain.CharityProject, error) {
	var p domain.CharityProject
	if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Update changes the fields present in in. Closed projects are frozen, and
// lowering full_amount to the invested amount closes the project.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*domain.CharityProject, error) {
	if in.Name != nil {
		if err := validateName(in.Name); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		if err := validateDescription(in.Description); err != nil {
			return nil, err
		}
	}
	if in.FullAmount != nil {
		if err := validateFullAmount(in.FullAmount); err != nil {
			return nil, err
		}
	}

	unlock, err := lock.WithTimeout(ctx, s.Locker, s.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var project *domain.CharityProject
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := find(tx, id)
		if err != nil {
			return err
		}
		if p.IsClosed() {
			return ErrProjectClosed
		}
		if in.Name != nil && *in.Name != p.Name {
			taken, err := nameTaken(tx, *in.Name, p.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateName
			}
			p.Name = *in.Name
		}
		if in.Description != nil {
			p.Description = *in.Description
		}
		if in.FullAmount != nil {
			if err := p.Resize(*in.FullAmount, s.now()); err != nil {
				if errors.Is(err, domain.ErrFullBelowInvested) {
					return ErrFullBelowInvested
				}
				return err
			}
		}
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		project = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("project_id", project.ID.String()).
		Bool("fully_invested", project.FullyInvested).
		Msg("charity project updated")
	return project, nil
}

// Delete removes a project nobody has invested in yet.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*domain.CharityProject, error) {
	unlock, err := lock.WithTimeout(ctx, s.Locker, s.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var project *domain.CharityProject
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := find(tx, id)
		if err != nil {
			return err
		}
		if p.InvestedAmount > 0 {
			return ErrProjectHasFunds
		}
		if p.IsClosed() {
			return ErrProjectClosed
		}
		if err := tx.Delete(p).Error; err != nil {
			return err
		}
		project = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("project_id", project.ID.String()).Msg("charity project deleted")
	return project, nil
}

// Allocations lists the ledger rows of a project, in the order they were written.
func (s *Service) Allocations(ctx context.Context, projectID uuid.UUID) ([]domain.Allocation, error) {
	db := s.DB.WithContext(ctx)
	if _, err := find(db, projectID); err != nil {
		return nil, err
	}
	var rows []domain.Allocation
	if err := db.Where("project_id = ?", projectID).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
