package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/shoushou-fitness/clubbot/pkg/logging"
)

type fakeSheetsAPI struct {
	values      map[string][][]interface{}
	driveQuery  string
	valueCalls  int
	failValues  bool
	driveResult []map[string]string
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/files":
		f.driveQuery = r.URL.Query().Get("q")
		json.NewEncoder(w).Encode(map[string]any{"files": f.driveResult})

	case strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/sheet-123/values/"):
		f.valueCalls++
		if f.failValues {
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": 429, "message": "quota exceeded"}})
			return
		}
		name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/sheet-123/values/"), "'")
		json.NewEncoder(w).Encode(map[string]any{"range": name, "majorDimension": "ROWS", "values": f.values[name]})

	case r.URL.Path == "/v4/spreadsheets/sheet-123":
		json.NewEncoder(w).Encode(map[string]any{
			"spreadsheetId": "sheet-123",
			"properties":    map[string]any{"title": "Shoushou Fitness Club"},
		})

	default:
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": 404, "message": "not found"}})
	}
}

func newFakeSheetsServer(t *testing.T) (*fakeSheetsAPI, []option.ClientOption) {
	t.Helper()
	api := &fakeSheetsAPI{
		values: map[string][][]interface{}{
			"Members": {
				{"Member ID", "Name", "Phone", "Points"},
				{"A00012", "王小明", 912345678, 1200},
				{},
				{"", "", ""},
				{"B00013", "Chen Wei"},
			},
		},
		driveResult: []map[string]string{{"id": "sheet-123", "name": "Shoushou Fitness Club"}},
	}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return api, []option.ClientOption{
		option.WithEndpoint(srv.URL + "/"),
		option.WithHTTPClient(srv.Client()),
	}
}

func TestSheetsGatewayOpenByIDAndRead(t *testing.T) {
	api, opts := newFakeSheetsServer(t)

	gw, err := NewSheetsGateway(context.Background(), SheetsConfig{SpreadsheetID: "sheet-123", ClientOptions: opts}, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, "sheet-123", gw.SpreadsheetID())

	records, err := gw.AllRecords(context.Background(), "Members")
	require.NoError(t, err)
	require.Len(t, records, 2, "blank rows are skipped")

	assert.Equal(t, "A00012", records[0].String("Member ID"))
	assert.Equal(t, "912345678", records[0].String("Phone"))
	assert.Equal(t, "1200", records[0].String("Points"))
	assert.Equal(t, "Chen Wei", records[1].String("Name"))
	assert.Equal(t, "", records[1].String("Points"), "short rows are padded")

	_, err = gw.AllRecords(context.Background(), "Members")
	require.NoError(t, err)
	assert.Equal(t, 2, api.valueCalls, "no caching between calls")
}

func TestSheetsGatewayOpenByName(t *testing.T) {
	api, opts := newFakeSheetsServer(t)

	gw, err := NewSheetsGateway(context.Background(), SheetsConfig{SpreadsheetName: "Shoushou Fitness Club", ClientOptions: opts}, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, "sheet-123", gw.SpreadsheetID())
	assert.Contains(t, api.driveQuery, "name = 'Shoushou Fitness Club'")
	assert.Contains(t, api.driveQuery, spreadsheetMimeType)
}

func TestSheetsGatewayNameNotFound(t *testing.T) {
	api, opts := newFakeSheetsServer(t)
	api.driveResult = nil

	_, err := NewSheetsGateway(context.Background(), SheetsConfig{SpreadsheetName: "Missing", ClientOptions: opts}, logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSheetsGatewayOpenFailsForUnknownID(t *testing.T) {
	_, opts := newFakeSheetsServer(t)

	_, err := NewSheetsGateway(context.Background(), SheetsConfig{SpreadsheetID: "nope", ClientOptions: opts}, logging.Discard())
	require.Error(t, err)
}

func TestSheetsGatewayReadError(t *testing.T) {
	api, opts := newFakeSheetsServer(t)
	gw, err := NewSheetsGateway(context.Background(), SheetsConfig{SpreadsheetID: "sheet-123", ClientOptions: opts}, logging.Discard())
	require.NoError(t, err)

	api.failValues = true
	_, err = gw.AllRecords(context.Background(), "Members")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Members")
}

func TestRowsToRecords(t *testing.T) {
	assert.Nil(t, rowsToRecords(nil))

	records := rowsToRecords([][]interface{}{
		{"Name", "", "Category"},
		{"Lap Pool", "ignored", "Pool"},
	})
	require.Len(t, records, 1)
	assert.Equal(t, "Pool", records[0].String("Category"))
	_, hasBlank := records[0][""]
	assert.False(t, hasBlank)
}
