package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/landingkit/seminar-signups/internal/entity"
)

// Sheet is an in-process spreadsheet: one header row plus appended data rows.
type Sheet struct {
	mu           sync.Mutex
	created      bool
	header       []string
	rows         [][]string
	headerWrites int
}

func NewSheet() *Sheet {
	return &Sheet{}
}

func (s *Sheet) EnsureTable(ctx context.Context, schema entity.Schema) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.created {
		return false, nil
	}
	s.created = true
	s.header = schema.Header()
	s.headerWrites++
	return true, nil
}

func (s *Sheet) Registrations(ctx context.Context, schema entity.Schema) ([]entity.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	regs := make([]entity.Registration, 0, len(s.rows))
	for _, row := range s.rows {
		regs = append(regs, schema.FromRow(row))
	}
	return regs, nil
}

func (s *Sheet) Append(ctx context.Context, schema entity.Schema, reg *entity.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = append(s.rows, schema.Row(reg))
	return nil
}

// AppendIfAbsent holds the lock across scan and append, so concurrent submissions of one email yield one row.
func (s *Sheet) AppendIfAbsent(ctx context.Context, schema entity.Schema, reg *entity.Registration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col := schema.EmailColumn()
	want := strings.TrimSpace(reg.Email)
	for _, row := range s.rows {
		if col >= 0 && col < len(row) && strings.EqualFold(strings.TrimSpace(row[col]), want) {
			return false, nil
		}
	}
	s.rows = append(s.rows, schema.Row(reg))
	return true, nil
}

func (s *Sheet) Header() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.header...)
}

func (s *Sheet) HeaderWrites() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headerWrites
}

func (s *Sheet) Rows() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([][]string, len(s.rows))
	for i, r := range s.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// Ping always succeeds; it lets the sheet stand in wherever a store health check is expected.
func (s *Sheet) Ping(ctx context.Context) error {
	return nil
}
