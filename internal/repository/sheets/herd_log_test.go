package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

type memoryRepo struct {
	rows    [][]interface{}
	readErr error
}

func (m *memoryRepo) WriteRow(_ context.Context, _ string, values []interface{}) error {
	m.rows = append(m.rows, values)
	return nil
}

func (m *memoryRepo) ReadRange(context.Context, string) ([][]interface{}, error) {
	return m.rows, m.readErr
}

func report(day string, head int) models.HerdReport {
	return models.HerdReport{
		FarmID:         "farm-1",
		Date:           models.MustParseDate(day),
		HeadCount:      head,
		Expecting:      2,
		Overdue:        1,
		Season:         "Autumn",
		MoonPhase:      "Full Moon",
		StockBySpecies: map[string]int{"Sheep": 3, "Cattle": head - 3},
	}
}

func TestReportRowRoundTrip(t *testing.T) {
	row := ReportRow(report("2024-10-15", 12))
	require.Len(t, row, len(HerdLogHeader))
	assert.Equal(t, "Cattle=9; Sheep=3", row[11])

	back, err := ParseReportRow(row)
	require.NoError(t, err)
	assert.Equal(t, 12, back.HeadCount)
	assert.Equal(t, map[string]int{"Cattle": 9, "Sheep": 3}, back.StockBySpecies)
	assert.Equal(t, "Full Moon", back.MoonPhase)

	// Sheets returns formatted strings; floats show up for numeric cells.
	_, err = ParseReportRow([]interface{}{"2024-10-15", "farm-1", "12", 2.0, "0", "1", "0", "0", "0"})
	assert.NoError(t, err)
	_, err = ParseReportRow([]interface{}{"2024-10-15", "farm-1"})
	assert.Error(t, err)
	_, err = ParseReportRow([]interface{}{"yesterday", "farm-1", "1", "1", "1", "1", "1", "1", "1"})
	assert.Error(t, err)
}

func TestHerdLogLatest(t *testing.T) {
	ctx := context.Background()
	repo := &memoryRepo{}
	log := NewHerdLog(repo)

	require.NoError(t, log.Append(ctx, report("2024-10-13", 10)))
	require.NoError(t, log.Append(ctx, report("2024-10-14", 11)))
	require.NoError(t, log.Append(ctx, report("2024-10-15", 12)))
	other := report("2024-10-14", 99)
	other.FarmID = "farm-2"
	require.NoError(t, log.Append(ctx, other))
	repo.rows = append(repo.rows, []interface{}{"garbage"})

	latest, ok, err := log.Latest(ctx, "farm-1", models.MustParseDate("2024-10-15"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 11, latest.HeadCount)

	_, ok, err = log.Latest(ctx, "farm-1", models.MustParseDate("2024-10-13"))
	require.NoError(t, err)
	assert.False(t, ok)

	repo.readErr = errors.New("quota exceeded")
	_, _, err = log.Latest(ctx, "farm-1", models.MustParseDate("2024-10-15"))
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestGoogleSheetRepositoryAgainstFakeAPI(t *testing.T) {
	var (
		mu       sync.Mutex
		appended [][]interface{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
			var body struct {
				Values [][]interface{} `json:"values"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			mu.Lock()
			appended = append(appended, body.Values...)
			mu.Unlock()
			_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"range":"Herd!A2:L","values":[["2024-10-14","farm-1","11","2","0","1","0","0","0","Autumn","Waxing Gibbous","Cattle=8; Sheep=3"]]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	repo, err := NewWithOptions(ctx, "sheet-1", nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)

	log := NewHerdLog(repo)
	require.NoError(t, log.Append(ctx, report("2024-10-15", 12)))
	mu.Lock()
	require.Len(t, appended, 1)
	assert.Equal(t, "2024-10-15", appended[0][0])
	mu.Unlock()

	latest, ok, err := log.Latest(ctx, "farm-1", models.MustParseDate("2024-10-15"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 11, latest.HeadCount)
	assert.Equal(t, 8, latest.StockBySpecies["Cattle"])

	assert.Error(t, repo.WriteRow(ctx, "", nil))
	_, err = repo.ReadRange(ctx, "")
	assert.Error(t, err)

	_, err = NewWithOptions(ctx, "", nil, option.WithoutAuthentication())
	assert.Error(t, err)
}
