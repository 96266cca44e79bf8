package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/dorindex/internal/builder"
	"github.com/Aman-CERP/dorindex/internal/errors"
	"github.com/Aman-CERP/dorindex/internal/model"
	"github.com/Aman-CERP/dorindex/internal/notify"
	"github.com/Aman-CERP/dorindex/internal/repository"
	"github.com/Aman-CERP/dorindex/internal/store"
	"github.com/Aman-CERP/dorindex/pkg/indexer"
)

const (
	itemID = "druid:bc123df4567"
	apoID  = "druid:bd999bd9999"
)

func record(typ, id, title string) *model.Record {
	return &model.Record{
		Type:               typ,
		ExternalIdentifier: id,
		Version:            1,
		Administrative:     model.Administrative{HasAdminPolicy: apoID},
		Description:        &model.Description{Title: []model.DescriptiveValue{{Value: title}}},
	}
}

type fixture struct {
	index   *store.DocumentIndex
	builder *builder.Builder
	handler http.Handler
}

func newFixture(t *testing.T, withIndex bool) *fixture {
	t.Helper()

	repo := repository.NewMemory()
	repo.PutRecord(record(model.TypeAdminPolicy, apoID, "Test APO"))
	repo.PutRecord(record(model.TypeObject, itemID, "Poems"))

	b, err := builder.New(builder.Options{Repository: repo, Reporter: &notify.Recorder{}})
	require.NoError(t, err)

	f := &fixture{builder: b}
	opts := Options{Builder: b, Gatherer: prometheus.NewRegistry()}
	if withIndex {
		f.index, err = store.Open("")
		require.NoError(t, err)
		t.Cleanup(func() { _ = f.index.Close() })
		opts.Index = f.index
	}

	s, err := New(opts)
	require.NoError(t, err)
	f.handler = s.Handler()
	return f
}

func (f *fixture) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestNew_RequiresBuilder(t *testing.T) {
	_, err := New(Options{})
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
}

// =============================================================================
// Infrastructure
// =============================================================================

func TestHealth(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
}

func TestRequestID_Propagated(t *testing.T) {
	f := newFixture(t, false)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(headerRequestID, "abc-123")
	rec := httptest.NewRecorder()

	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(headerRequestID))
}

func TestMetrics(t *testing.T) {
	// Given: a registry with one counter
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "dorindex_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	f := newFixture(t, false)
	s, err := New(Options{Builder: f.builder, Gatherer: reg})
	require.NoError(t, err)

	// When
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// Then
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dorindex_test_total 1")
}

// =============================================================================
// Documents
// =============================================================================

func TestGetDocument_BuildsFromRepository(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodGet, "/v1/documents/"+itemID)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, itemID, body["id"])
	assert.Equal(t, "Poems", body["display_title_ss"])
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestGetDocument_NotFound(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodGet, "/v1/documents/druid:zz000zz0000")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, errors.ErrCodeRecordNotFound, body["code"])
}

func TestGetDocument_FromIndex(t *testing.T) {
	t.Run("no index configured", func(t *testing.T) {
		f := newFixture(t, false)
		rec := f.do(t, http.MethodGet, "/v1/documents/"+itemID+"?from=index")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, errors.ErrCodeConfigNotFound, decode(t, rec)["code"])
	})

	t.Run("stored document", func(t *testing.T) {
		// Given: a document in the index that differs from a fresh build
		f := newFixture(t, true)
		require.NoError(t, f.index.Put(context.Background(), indexer.Document{
			"id":               itemID,
			"display_title_ss": "Stored title",
		}))

		// When
		rec := f.do(t, http.MethodGet, "/v1/documents/"+itemID+"?from=index")

		// Then: the stored copy is returned
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Stored title", decode(t, rec)["display_title_ss"])
	})

	t.Run("unknown source", func(t *testing.T) {
		f := newFixture(t, false)
		rec := f.do(t, http.MethodGet, "/v1/documents/"+itemID+"?from=elsewhere")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, errors.ErrCodeInvalidInput, decode(t, rec)["code"])
	})
}

// =============================================================================
// Search
// =============================================================================

func TestSearch(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	doc, err := f.builder.BuildID(ctx, itemID)
	require.NoError(t, err)
	require.NoError(t, f.index.Put(ctx, doc))

	rec := f.do(t, http.MethodGet, "/v1/search?q=poems&limit=5")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Hits []store.Hit `json:"hits"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Hits, 1)
	assert.Equal(t, itemID, body.Hits[0].ID)
}

func TestSearch_Errors(t *testing.T) {
	t.Run("no index", func(t *testing.T) {
		f := newFixture(t, false)
		assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/v1/search?q=x").Code)
	})

	t.Run("bad limit", func(t *testing.T) {
		f := newFixture(t, true)
		for _, limit := range []string{"0", "-1", "lots"} {
			rec := f.do(t, http.MethodGet, "/v1/search?q=x&limit="+limit)
			assert.Equal(t, http.StatusBadRequest, rec.Code, limit)
		}
	})
}

// =============================================================================
// Cache
// =============================================================================

func TestCache_StatsAndReset(t *testing.T) {
	// Given: one build populated the policy cache
	f := newFixture(t, false)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/v1/documents/"+itemID).Code)

	stats := f.do(t, http.MethodGet, "/v1/cache/stats")
	require.Equal(t, http.StatusOK, stats.Code)
	assert.True(t, strings.Contains(stats.Body.String(), `"admin_policies"`))
	assert.Equal(t, 1, f.builder.Cache().AdminPolicies.Len())

	// When
	rec := f.do(t, http.MethodPost, "/v1/cache/reset")

	// Then
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, f.builder.Cache().AdminPolicies.Len())
}

func TestCache_ResetRequiresPost(t *testing.T) {
	f := newFixture(t, false)
	assert.Equal(t, http.StatusMethodNotAllowed, f.do(t, http.MethodGet, "/v1/cache/reset").Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, statusFor(errors.ErrCodeRetrievalFailed))
	assert.Equal(t, http.StatusBadRequest, statusFor(errors.ErrCodeInvalidRecord))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.ErrCodeIndexFailed))
}
