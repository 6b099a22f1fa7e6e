package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hodaren2022/aitravel-backend/internal/domain"
	"github.com/Hodaren2022/aitravel-backend/internal/handler"
	"github.com/Hodaren2022/aitravel-backend/internal/service"
)

// mockExporter is a test double for handler.Exporter.
type mockExporter struct {
	export func(ctx context.Context) (*domain.GroupedExport, error)
	imp    func(ctx context.Context, doc *domain.GroupedExport) (*service.ImportResult, error)
}

func (m *mockExporter) Export(ctx context.Context) (*domain.GroupedExport, error) {
	return m.export(ctx)
}
func (m *mockExporter) Import(ctx context.Context, doc *domain.GroupedExport) (*service.ImportResult, error) {
	return m.imp(ctx, doc)
}

var _ handler.Exporter = (*mockExporter)(nil)

func TestGetExport(t *testing.T) {
	exp := &mockExporter{
		export: func(context.Context) (*domain.GroupedExport, error) {
			return &domain.GroupedExport{
				Meta:  domain.ExportMeta{Version: 2, AppVersion: "test"},
				Trips: []domain.Trip{{ID: "trip_a"}},
			}, nil
		},
	}
	h := newRouter(handler.NewServer(nil, nil, nil, nil, nil, nil, exp))

	rec := doJSON(t, h, http.MethodGet, "/api/export", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	var doc domain.GroupedExport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, 2, doc.Meta.Version)
	require.Len(t, doc.Trips, 1)
}

func TestPostImport(t *testing.T) {
	exp := &mockExporter{
		imp: func(_ context.Context, doc *domain.GroupedExport) (*service.ImportResult, error) {
			require.Len(t, doc.Trips, 1)
			return &service.ImportResult{Trips: 1}, nil
		},
	}
	h := newRouter(handler.NewServer(nil, nil, nil, nil, nil, nil, exp))

	rec := doJSON(t, h, http.MethodPost, "/api/import", domain.GroupedExport{
		Trips: []domain.Trip{{ID: "trip_a"}},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var result service.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Trips)
}

func TestPostImport_MalformedBody(t *testing.T) {
	h := newRouter(handler.NewServer(nil, nil, nil, nil, nil, nil, &mockExporter{}))

	req := doJSONRaw(t, h, http.MethodPost, "/api/import", "{not json")

	assert.Equal(t, http.StatusBadRequest, req.Code)
}
