package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/landingkit/seminar-signups/internal/entity"
)

const (
	testSpreadsheetID = "sheet-123"
	testSheetName     = "Seminar Registrations"
)

// fakeSheetsAPI serves the subset of the Sheets v4 REST API the store uses.
type fakeSheetsAPI struct {
	mu          sync.Mutex
	tabs        []string
	values      [][]interface{}
	headerPuts  int
	repeatCells []*sheets.RepeatCellRequest
	appendRange string
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := "/v4/spreadsheets/" + testSpreadsheetID
	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && path == prefix:
		var tabs []map[string]interface{}
		for i, title := range f.tabs {
			tabs = append(tabs, map[string]interface{}{
				"properties": map[string]interface{}{"sheetId": i, "title": title},
			})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"spreadsheetId": testSpreadsheetID, "sheets": tabs})

	case r.Method == http.MethodPost && path == prefix+":batchUpdate":
		var req sheets.BatchUpdateSpreadsheetRequest
		json.NewDecoder(r.Body).Decode(&req)
		var replies []map[string]interface{}
		for _, rq := range req.Requests {
			switch {
			case rq.AddSheet != nil:
				f.tabs = append(f.tabs, rq.AddSheet.Properties.Title)
				replies = append(replies, map[string]interface{}{
					"addSheet": map[string]interface{}{
						"properties": map[string]interface{}{"sheetId": 42, "title": rq.AddSheet.Properties.Title},
					},
				})
			case rq.RepeatCell != nil:
				f.repeatCells = append(f.repeatCells, rq.RepeatCell)
				replies = append(replies, map[string]interface{}{})
			}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"spreadsheetId": testSpreadsheetID, "replies": replies})

	case r.Method == http.MethodPut && strings.HasPrefix(path, prefix+"/values/"):
		var vr sheets.ValueRange
		json.NewDecoder(r.Body).Decode(&vr)
		f.headerPuts++
		f.values = append(vr.Values, f.values...)
		json.NewEncoder(w).Encode(map[string]interface{}{"spreadsheetId": testSpreadsheetID})

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		var vr sheets.ValueRange
		json.NewDecoder(r.Body).Decode(&vr)
		f.appendRange = strings.TrimSuffix(strings.TrimPrefix(path, prefix+"/values/"), ":append")
		f.values = append(f.values, vr.Values...)
		json.NewEncoder(w).Encode(map[string]interface{}{"spreadsheetId": testSpreadsheetID})

	case r.Method == http.MethodGet && strings.HasPrefix(path, prefix+"/values/"):
		json.NewEncoder(w).Encode(map[string]interface{}{"values": f.values})

	default:
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
	}
}

func newTestStore(t *testing.T, api *fakeSheetsAPI) *Store {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	return NewStore(svc, testSpreadsheetID, testSheetName, nil)
}

func TestEnsureTableCreatesStyledHeaderOnce(t *testing.T) {
	api := &fakeSheetsAPI{tabs: []string{"Sheet1"}}
	store := newTestStore(t, api)
	ctx := context.Background()
	schema := entity.ExtendedSchema()

	created, err := store.EnsureTable(ctx, schema)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.EnsureTable(ctx, schema)
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, []string{"Sheet1", testSheetName}, api.tabs)
	assert.Equal(t, 1, api.headerPuts)
	require.Len(t, api.values, 1)
	assert.Len(t, api.values[0], 11)
	assert.Equal(t, "Timestamp", api.values[0][0])
	assert.Equal(t, "Notes", api.values[0][10])

	require.Len(t, api.repeatCells, 1)
	rc := api.repeatCells[0]
	assert.Equal(t, int64(42), rc.Range.SheetId)
	assert.Equal(t, int64(11), rc.Range.EndColumnIndex)
	assert.True(t, rc.Cell.UserEnteredFormat.TextFormat.Bold)
}

func TestAppendAndReadRegistrations(t *testing.T) {
	api := &fakeSheetsAPI{}
	store := newTestStore(t, api)
	ctx := context.Background()
	schema := entity.CompactSchema()

	_, err := store.EnsureTable(ctx, schema)
	require.NoError(t, err)

	ts := time.Date(2025, 1, 14, 19, 0, 0, 0, time.UTC)
	reg := entity.NewRegistration("Test", "User", "test@example.com", "(555) 123-4567", "Tuesday, Jan 14 at 7:00 PM EST", "6-12 months", ts)
	require.NoError(t, store.Append(ctx, schema, reg))

	assert.Equal(t, "'Seminar Registrations'!A1", api.appendRange)
	require.Len(t, api.values, 2)
	assert.Len(t, api.values[1], 9)

	regs, err := store.Registrations(ctx, schema)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, "test@example.com", regs[0].Email)
	assert.Equal(t, entity.StatusRegistered, regs[0].Status)
	assert.True(t, regs[0].Timestamp.Equal(ts))
}

func TestEnsureTableReportsAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission"}}`))
	}))
	defer srv.Close()

	svc, err := sheets.NewService(context.Background(), option.WithHTTPClient(srv.Client()), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	_, err = NewStore(svc, testSpreadsheetID, testSheetName, nil).EnsureTable(context.Background(), entity.ExtendedSchema())
	assert.ErrorContains(t, err, "open spreadsheet")
}

func TestColumnLetter(t *testing.T) {
	assert.Equal(t, "A", columnLetter(1))
	assert.Equal(t, "I", columnLetter(9))
	assert.Equal(t, "K", columnLetter(11))
	assert.Equal(t, "Z", columnLetter(26))
	assert.Equal(t, "AA", columnLetter(27))
}
