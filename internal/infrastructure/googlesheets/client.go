// Package googlesheets writes completion-rate reports to Google Sheets and shares
// them through Google Drive, authenticated as a service account.
package googlesheets

import (
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	locale     = "ru_RU"
	sheetTitle = "Sheet1"
	URLPrefix  = "https://docs.google.com/spreadsheets/d/"
)

// Client implements the report sink on top of the Sheets v4 and Drive v3 APIs.
type Client struct {
	sheets *sheets.Service
	drive  *drive.Service
}

// New builds a client from a service account JSON key. Extra options are
// appended after the credentials; a nil key leaves authentication to them.
func New(ctx context.Context, credentialsJSON []byte, extra ...option.ClientOption) (*Client, error) {
	var opts []option.ClientOption
	if credentialsJSON != nil {
		opts = append(opts,
			option.WithCredentialsJSON(credentialsJSON),
			option.WithScopes(sheets.SpreadsheetsScope, drive.DriveScope),
		)
	}
	opts = append(opts, extra...)
	ss, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	ds, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return &Client{sheets: ss, drive: ds}, nil
}

// Create makes a spreadsheet with a single grid of rows x cols and returns its id.
func (c *Client) Create(ctx context.Context, title string, rows, cols int) (string, error) {
	resp, err := c.sheets.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:  title,
			Locale: locale,
		},
		Sheets: []*sheets.Sheet{{
			Properties: &sheets.SheetProperties{
				SheetType: "GRID",
				SheetId:   0,
				Title:     sheetTitle,
				GridProperties: &sheets.GridProperties{
					RowCount:    int64(rows),
					ColumnCount: int64(cols),
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create spreadsheet: %w", err)
	}
	return resp.SpreadsheetId, nil
}

// Share gives email writer access to the spreadsheet.
func (c *Client) Share(ctx context.Context, spreadsheetID, email string) error {
	_, err := c.drive.Permissions.Create(spreadsheetID, &drive.Permission{
		Type:         "user",
		Role:         "writer",
		EmailAddress: email,
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("share spreadsheet: %w", err)
	}
	return nil
}

// Write puts values into rng (R1C1 notation), row-major, parsed as if typed by a user.
func (c *Client) Write(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error {
	_, err := c.sheets.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{
		MajorDimension: "ROWS",
		Values:         values,
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update spreadsheet values: %w", err)
	}
	return nil
}

// URL returns the browser link of a spreadsheet.
func (c *Client) URL(spreadsheetID string) string {
	return URLPrefix + spreadsheetID
}
