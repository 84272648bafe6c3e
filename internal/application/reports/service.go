package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"charity-fund/internal/domain"
	"charity-fund/internal/infrastructure/metrics"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Size of the grid every report spreadsheet is created with.
const (
	RowCount    = 100
	ColumnCount = 11
)

const DateTimeFormat = "2006/01/02 15:04:05"

var (
	ErrCapacityExceeded = errors.New("The created spreadsheet has fewer rows or columns than required!")
	ErrNotConfigured    = errors.New("Spreadsheet export is not configured")
	// ErrSink wraps every failure returned by the Spreadsheets client.
	ErrSink = errors.New("spreadsheet service failed")
)

// Spreadsheets is the external sink reports are written to.
type Spreadsheets interface {
	Create(ctx context.Context, title string, rows, cols int) (string, error)
	Share(ctx context.Context, spreadsheetID, email string) error
	Write(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error
	URL(spreadsheetID string) string
}

type Service struct {
	DB *gorm.DB
	// Sheets is nil when no Google credentials are configured.
	Sheets     Spreadsheets
	ShareEmail string
	Now        func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ClosedProjects returns fully invested projects, fastest to close first.
func (s *Service) ClosedProjects(ctx context.Context) ([]domain.CharityProject, error) {
	var projects []domain.CharityProject
	err := s.DB.WithContext(ctx).
		Where("fully_invested = ?", true).
		Order("create_date ASC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch closed projects: %v", err)
	}
	SortByCompletion(projects)
	return projects, nil
}

// SortByCompletion orders projects by close_date - create_date, ascending.
// Ties keep their incoming order.
func SortByCompletion(projects []domain.CharityProject) {
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].CompletionTime() < projects[j].CompletionTime()
	})
}

// Table is the grid written to the spreadsheet.
type Table struct {
	Values [][]interface{}
	Rows   int
	Cols   int
}

// Range is the R1C1 range the table occupies.
func (t Table) Range() string {
	return fmt.Sprintf("R1C1:R%dC%d", t.Rows, t.Cols)
}

// BuildTable lays out the header and one row per project. It fails with
// ErrCapacityExceeded instead of truncating.
func BuildTable(projects []domain.CharityProject, now time.Time) (Table, error) {
	header := [][]interface{}{
		{"Report from", now.Format(DateTimeFormat)},
		{"Top projects by funding speed"},
		{"Project name", "Funding time", "Description"},
	}
	cols := 0
	for _, row := range header {
		cols = max(cols, len(row))
	}
	rows := len(header) + len(projects)
	if rows > RowCount || cols > ColumnCount {
		return Table{}, ErrCapacityExceeded
	}
	values := make([][]interface{}, 0, rows)
	values = append(values, header...)
	for i := range projects {
		p := &projects[i]
		values = append(values, []interface{}{p.Name, FormatDuration(p.CompletionTime()), p.Description})
	}
	return Table{Values: values, Rows: rows, Cols: cols}, nil
}

// FormatDuration renders d as "H:MM:SS", prefixed with "N day(s), " when it
// spans whole days.
func FormatDuration(d time.Duration) string {
	neg := d < 0
	if neg {
		d = -d
	}
	days := int64(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	h := int64(d / time.Hour)
	d -= time.Duration(h) * time.Hour
	m := int64(d / time.Minute)
	d -= time.Duration(m) * time.Minute
	sec := int64(d / time.Second)
	d -= time.Duration(sec) * time.Second
	micros := int64(d / time.Microsecond)

	out := fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	if micros > 0 {
		out += fmt.Sprintf(".%06d", micros)
	}
	switch {
	case days == 1:
		out = "1 day, " + out
	case days > 1:
		out = fmt.Sprintf("%d days, %s", days, out)
	}
	if neg {
		out = "-" + out
	}
	return out
}

// Export writes the completion-rate report to a new spreadsheet shared with
// ShareEmail and returns its URL.
func (s *Service) Export(ctx context.Context) (*domain.ReportExport, error) {
	rec, err := s.export(ctx)
	metrics.ObserveExport(err)
	if err != nil {
		log.Error().Err(err).Msg("report export failed")
		return nil, err
	}
	log.Info().
		Str("spreadsheet_id", rec.SpreadsheetID).
		Int("projects", rec.ProjectCount).
		Msg("report exported")
	return rec, nil
}

func (s *Service) export(ctx context.Context) (*domain.ReportExport, error) {
	if s.Sheets == nil {
		return nil, ErrNotConfigured
	}
	projects, err := s.ClosedProjects(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	table, err := BuildTable(projects, now)
	if err != nil {
		return nil, err
	}

	id, err := s.Sheets.Create(ctx, "Report from "+now.Format(DateTimeFormat), RowCount, ColumnCount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSink, err)
	}
	if s.ShareEmail != "" {
		if err := s.Sheets.Share(ctx, id, s.ShareEmail); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSink, err)
		}
	}
	if err := s.Sheets.Write(ctx, id, table.Range(), table.Values); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSink, err)
	}

	raw, err := json.Marshal(table.Values)
	if err != nil {
		return nil, err
	}
	rec := &domain.ReportExport{
		SpreadsheetID: id,
		URL:           s.Sheets.URL(id),
		ProjectCount:  len(projects),
		Rows:          datatypes.JSON(raw),
		CreatedAt:     now,
	}
	if err := s.DB.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("record export: %w", err)
	}
	return rec, nil
}

// History lists past exports, newest first.
func (s *Service) History(ctx context.Context) ([]domain.ReportExport, error) {
	var out []domain.ReportExport
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
