package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/shoushou-fitness/clubbot/internal/domain"
	"github.com/shoushou-fitness/clubbot/pkg/logging"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// SheetsConfig selects the spreadsheet to open. ID wins over Name.
type SheetsConfig struct {
	CredentialsJSON string
	SpreadsheetID   string
	SpreadsheetName string
	// ClientOptions are appended after the credentials, e.g. a test endpoint.
	ClientOptions []option.ClientOption
}

// SheetsGateway reads whole worksheets of one Google spreadsheet.
type SheetsGateway struct {
	svc           *sheets.Service
	spreadsheetID string
	title         string
	logger        *logging.Logger
}

// NewSheetsGateway opens the spreadsheet once. Any failure here means the
// credentials or the dataset are unusable.
func NewSheetsGateway(ctx context.Context, cfg SheetsConfig, logger *logging.Logger) (*SheetsGateway, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var opts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		opts = append(opts,
			option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)),
			option.WithScopes(sheets.SpreadsheetsReadonlyScope, drive.DriveMetadataReadonlyScope),
		)
	}
	opts = append(opts, cfg.ClientOptions...)

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	id := cfg.SpreadsheetID
	if id == "" {
		if cfg.SpreadsheetName == "" {
			return nil, fmt.Errorf("spreadsheet id or name is required")
		}
		id, err = findSpreadsheetByName(ctx, cfg.SpreadsheetName, opts)
		if err != nil {
			return nil, err
		}
	}

	meta, err := svc.Spreadsheets.Get(id).Fields("spreadsheetId", "properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", id, err)
	}

	title := ""
	if meta.Properties != nil {
		title = meta.Properties.Title
	}
	logger.Info("spreadsheet opened", "spreadsheet_id", id, "title", title)

	return &SheetsGateway{svc: svc, spreadsheetID: id, title: title, logger: logger}, nil
}

func findSpreadsheetByName(ctx context.Context, name string, opts []option.ClientOption) (string, error) {
	dsvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create drive client: %w", err)
	}

	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`), spreadsheetMimeType)
	list, err := dsvc.Files.List().Q(q).Fields("files(id, name)").PageSize(10).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to search spreadsheet %q: %w", name, err)
	}
	if len(list.Files) == 0 {
		return "", fmt.Errorf("spreadsheet %q not found or not shared with the service account", name)
	}
	return list.Files[0].Id, nil
}

// SpreadsheetID returns the resolved spreadsheet id.
func (g *SheetsGateway) SpreadsheetID() string {
	return g.spreadsheetID
}

// AllRecords reads the worksheet named sheet. The first row is the header;
// blank rows are skipped and short rows padded with "".
func (g *SheetsGateway) AllRecords(ctx context.Context, sheet string) ([]domain.Record, error) {
	rng := "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rowsToRecords(resp.Values), nil
}

func rowsToRecords(values [][]interface{}) []domain.Record {
	if len(values) == 0 {
		return nil
	}

	header := make([]string, len(values[0]))
	for i, cell := range values[0] {
		header[i] = strings.TrimSpace(fmt.Sprint(cell))
	}

	records := make([]domain.Record, 0, len(values)-1)
	for _, row := range values[1:] {
		if blankRow(row) {
			continue
		}
		rec := make(domain.Record, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}

func blankRow(row []interface{}) bool {
	for _, cell := range row {
		if s, ok := cell.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		if cell == nil {
			continue
		}
		return false
	}
	return true
}
