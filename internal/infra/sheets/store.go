package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/landingkit/seminar-signups/internal/entity"
)

// Header row style applied once, when the tab is created.
var (
	headerBackground = &sheets.Color{Red: 0x42 / 255.0, Green: 0x85 / 255.0, Blue: 0xf4 / 255.0}
	headerForeground = &sheets.Color{Red: 1, Green: 1, Blue: 1}
)

// Store keeps registrations in one tab of a Google Sheets spreadsheet.
// It has no atomic append: duplicate checks against it are a scan followed by an append.
type Store struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	logger        *zap.Logger
}

func NewService(ctx context.Context, credentialsFile string) (*sheets.Service, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

func NewStore(svc *sheets.Service, spreadsheetID, sheetName string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName, logger: logger}
}

func (s *Store) EnsureTable(ctx context.Context, schema entity.Schema) (bool, error) {
	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("open spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == s.sheetName {
			return false, nil
		}
	}

	resp, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: s.sheetName}},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("add sheet %q: %w", s.sheetName, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return false, fmt.Errorf("add sheet %q: empty reply", s.sheetName)
	}
	sheetID := resp.Replies[0].AddSheet.Properties.SheetId

	header := toCells(schema.Header())
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.a1("A1"), &sheets.ValueRange{
		Values: [][]interface{}{header},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("write header: %w", err)
	}

	if err := s.styleHeader(ctx, sheetID, len(header)); err != nil {
		// the tab and header exist; a missing style is cosmetic
		s.logger.Warn("style header row", zap.Error(err))
	}

	s.logger.Info("sheet created", zap.String("sheet", s.sheetName), zap.Int("columns", len(header)))
	return true, nil
}

func (s *Store) styleHeader(ctx context.Context, sheetID int64, columns int) error {
	_, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   int64(columns),
					ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						BackgroundColor: headerBackground,
						TextFormat:      &sheets.TextFormat{Bold: true, ForegroundColor: headerForeground},
					},
				},
				Fields: "userEnteredFormat(backgroundColor,textFormat)",
			},
		}},
	}).Context(ctx).Do()
	return err
}

// Registrations returns every data row; the header row is skipped.
func (s *Store) Registrations(ctx context.Context, schema entity.Schema) ([]entity.Registration, error) {
	rng := s.a1("A:" + columnLetter(len(schema.Columns)))
	vr, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	var regs []entity.Registration
	for i, row := range vr.Values {
		if i == 0 {
			continue
		}
		regs = append(regs, schema.FromRow(fromCells(row)))
	}
	return regs, nil
}

func (s *Store) Append(ctx context.Context, schema entity.Schema, reg *entity.Registration) error {
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.a1("A1"), &sheets.ValueRange{
		Values: [][]interface{}{toCells(schema.Row(reg))},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	return err
}

func (s *Store) a1(cells string) string {
	return "'" + strings.ReplaceAll(s.sheetName, "'", "''") + "'!" + cells
}

// columnLetter converts a 1-based column count to its A1 letter (1 → A, 27 → AA).
func columnLetter(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

func fromCells(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v != nil {
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}
