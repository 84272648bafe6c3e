// Package scheduler runs the completion-rate report export on a cron schedule.
package scheduler

import (
	"context"
	"fmt"

	"charity-fund/internal/domain"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Exporter is satisfied by reports.Service.
type Exporter interface {
	Export(ctx context.Context) (*domain.ReportExport, error)
}

type Scheduler struct {
	Cron     *cron.Cron
	Exporter Exporter
	Ctx      context.Context
}

func New(ctx context.Context, exp Exporter) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(),
		Exporter: exp,
		Ctx:      ctx,
	}
}

// Register adds the export job. spec is a five-field cron expression or a
// descriptor such as "@daily".
func (s *Scheduler) Register(spec string) (cron.EntryID, error) {
	id, err := s.Cron.AddFunc(spec, s.RunExport)
	if err != nil {
		return 0, fmt.Errorf("register report export: %w", err)
	}
	return id, nil
}

func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop waits for a running export to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunExport performs one export; errors are logged, the next tick retries.
func (s *Scheduler) RunExport() {
	rec, err := s.Exporter.Export(s.Ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduled report export failed")
		return
	}
	log.Info().Str("url", rec.URL).Msg("scheduled report export done")
}
