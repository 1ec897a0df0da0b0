package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"tally/internal/core"
	"tally/internal/source"
)

var (
	_ source.TransactionLister = (*Client)(nil)
	_ source.Pinger            = (*Client)(nil)
)

// ValuesGetter is the slice of the Sheets API the client needs.
type ValuesGetter interface {
	Get(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error)
}

// Client reads transactions from one sheet whose first row holds column headers.
type Client struct {
	values        ValuesGetter
	spreadsheetID string
	sheetName     string
}

// Options configures a Client built by New.
type Options struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		sheetName = "Transactions"
	}

	credentialsJSON, err := readCredentials(opts)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created",
		"spreadsheet_id", opts.SpreadsheetID,
		"sheet", sheetName)

	return NewWithGetter(serviceGetter{svc: svc}, opts.SpreadsheetID, sheetName), nil
}

// NewWithGetter creates a client over any ValuesGetter.
func NewWithGetter(values ValuesGetter, spreadsheetID, sheetName string) *Client {
	return &Client{values: values, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

func readCredentials(opts Options) ([]byte, error) {
	switch {
	case strings.TrimSpace(opts.ServiceAccountJSON) != "":
		return []byte(opts.ServiceAccountJSON), nil
	case strings.TrimSpace(opts.ServiceAccountFile) != "":
		b, err := os.ReadFile(opts.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// ListTransactions reads the whole sheet in one range request.
func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rng := fmt.Sprintf("%s!A:I", c.sheetName)
	values, err := c.values.Get(ctx, c.spreadsheetID, rng)
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", rng, err)
	}
	txns, err := parseTransactions(values)
	if err != nil {
		return nil, fmt.Errorf("parse sheet %s: %w", c.sheetName, err)
	}
	return txns, nil
}

// Ping reads the header row only.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.values.Get(ctx, c.spreadsheetID, fmt.Sprintf("%s!A1:I1", c.sheetName))
	return err
}

type serviceGetter struct {
	svc *gsheet.Service
}

func (g serviceGetter) Get(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}
