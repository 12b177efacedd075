// Package google reads the dashboard tables from a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"previaje/internal/core"
	"previaje/internal/dataset"
)

// Config names the spreadsheet, its sheets and the service account.
type Config struct {
	SpreadsheetID      string
	PopulationsSheet   string
	TravelSheet        string
	BeneficiariesSheet string
	// CredentialsJSON takes precedence over CredentialsFile.
	CredentialsJSON string
	CredentialsFile string
}

// Validate reports missing settings.
func (c Config) Validate() error {
	if strings.TrimSpace(c.SpreadsheetID) == "" {
		return errors.New("missing spreadsheet id")
	}
	if c.PopulationsSheet == "" || c.TravelSheet == "" || c.BeneficiariesSheet == "" {
		return errors.New("missing sheet name")
	}
	if c.CredentialsJSON == "" && c.CredentialsFile == "" {
		return errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	return nil
}

type Client struct {
	svc                *gsheet.Service
	spreadsheetID      string
	populationsSheet   string
	travelSheet        string
	beneficiariesSheet string
}

var _ dataset.Tables = (*Client)(nil)

// New creates a read-only Sheets client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{
		svc:                svc,
		spreadsheetID:      cfg.SpreadsheetID,
		populationsSheet:   cfg.PopulationsSheet,
		travelSheet:        cfg.TravelSheet,
		beneficiariesSheet: cfg.BeneficiariesSheet,
	}, nil
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case cfg.CredentialsJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(cfg.CredentialsJSON)
	default:
		slog.InfoContext(ctx, "Reading credentials from file", "path", cfg.CredentialsFile)
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) Populations(ctx context.Context) ([]core.Population, error) {
	values, err := c.readSheet(ctx, c.populationsSheet)
	if err != nil {
		return nil, err
	}
	return dataset.ParsePopulations(values)
}

func (c *Client) Travel(ctx context.Context) ([]core.Travel, error) {
	values, err := c.readSheet(ctx, c.travelSheet)
	if err != nil {
		return nil, err
	}
	return dataset.ParseTravel(values)
}

func (c *Client) Beneficiaries(ctx context.Context) ([]core.BeneficiaryRow, error) {
	values, err := c.readSheet(ctx, c.beneficiariesSheet)
	if err != nil {
		return nil, err
	}
	return dataset.ParseBeneficiaries(values)
}

// readSheet returns every used cell of sheet, header row first.
func (c *Client) readSheet(ctx context.Context, sheet string) ([][]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := quoteSheet(sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	slog.DebugContext(ctx, "Sheet read", "range", rng, "rows", len(resp.Values))
	return toMatrix(resp.Values), nil
}

// quoteSheet builds an A1 range covering a whole sheet.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func toMatrix(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = toStrings(row)
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch n := v.(type) {
		case float64:
			// UNFORMATTED_VALUE numbers arrive as float64; avoid "1e+06"
			if n == float64(int64(n)) {
				out[i] = fmt.Sprintf("%d", int64(n))
			} else {
				out[i] = fmt.Sprintf("%g", n)
			}
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return out
}
