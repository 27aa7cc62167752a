//go:build !integration

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/parcelops/pickup-cli/internal/address"
	"github.com/parcelops/pickup-cli/internal/model"
	"github.com/parcelops/pickup-cli/internal/pipeline"
	"github.com/parcelops/pickup-cli/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func testMux(t *testing.T) *http.ServeMux {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	p := pipeline.New(address.DefaultRules(), nil)
	return newServeMux(p, st)
}

func TestServe_Health(t *testing.T) {
	mux := testMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestServe_Parse(t *testing.T) {
	mux := testMux(t)

	body := `{"address":"서울 관악구 인헌21길 5, 대림빌라 302호 (정화정님과 한 가구)"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/parse", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var parsed model.ParsedAddress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	assert.Equal(t, "서울 관악구 인헌21길 5", parsed.RoadAddress)
	assert.Equal(t, "대림빌라 302호", parsed.DetailAddress)
	assert.Equal(t, model.ConfidenceHigh, parsed.Confidence)
}

func TestServe_ParseValidation(t *testing.T) {
	mux := testMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/parse", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/parse", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServe_Resolve(t *testing.T) {
	mux := testMux(t)

	body := `{
		"row": {"name":"육지연","phone":"010-1234-5678"},
		"candidates": [
			{"display_name":"육지연","phone_suffix":"5678"},
			{"display_name":"육지연","phone_suffix":"0000"}
		]
	}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/resolve", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var res model.Resolution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, model.ResolutionResolved, res.State)
	assert.Equal(t, "tie broken by phone_suffix", res.Reason)
}

func TestServe_Process(t *testing.T) {
	mux := testMux(t)

	body := `{
		"row": {"row_index":1,"management_no":"2024-0153","name":"김민수",
			"raw_address":"서울 관악구 인헌21길 5, 302호"},
		"candidates": [{"display_name":"김민수"}]
	}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/process", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var result model.RowResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.AutoSafe)
}

func TestServe_ProcessInputError(t *testing.T) {
	mux := testMux(t)

	body := `{"row": {"row_index":1,"name":"김민수","raw_address":""}}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/process", strings.NewReader(body)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServe_Runs(t *testing.T) {
	mux := testMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/runs", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	handler := rateLimit(rate.NewLimiter(rate.Limit(1), 1), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Burst exhausted: the second immediate request is rejected.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
