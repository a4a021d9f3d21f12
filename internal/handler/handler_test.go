package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/formforge/internal/dbc"
	"github.com/matthewbaird/formforge/internal/er"
	"github.com/matthewbaird/formforge/internal/field"
	"github.com/matthewbaird/formforge/internal/pipeline"
)

const projectBody = `{
  "metadata": {"id": "ZZWO", "mainObject": "WORKORDER", "isStandardObject": true},
  "fields": [
    {"fieldName": "WONUM", "area": "header", "tabName": "Main"},
    {"fieldName": "RISK", "area": "header", "tabName": "Main", "maxType": "ALN", "length": "20"}
  ]
}`

func newHandler() *Handler {
	return New(Options{Pipeline: pipeline.Options{Naming: field.DefaultNaming()}})
}

func orders(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "fmb", "testdata", "orders.xml"))
	require.NoError(t, err)
	return string(b)
}

func do(h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	rec := do(newHandler().Health, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGenerate(t *testing.T) {
	rec := do(newHandler().Generate, http.MethodPost, "/v1/generate", projectBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var art pipeline.Artifacts
	decode(t, rec, &art)
	assert.Contains(t, art.Presentation, `dataattribute="ZZ_RISK"`)
	assert.Contains(t, art.Migration, "ALTER TABLE WORKORDER ADD ZZ_RISK VARCHAR2(20);")
	assert.True(t, art.Coverage.OK())
	assert.NotEmpty(t, art.Specification)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"empty", "", http.StatusBadRequest, "EMPTY_BODY"},
		{"malformed", `{"metadata":`, http.StatusBadRequest, "MALFORMED_JSON"},
		{"schema", `{"metadata": {"mainObject": "A"}, "fields": [{"fieldName": "X", "area": "header", "colour": 1}]}`, http.StatusUnprocessableEntity, "SCHEMA_VIOLATION"},
		{"no fields", `{"metadata": {"mainObject": "A"}, "fields": []}`, http.StatusUnprocessableEntity, "NO_FIELDS"},
		{"main object", `{"metadata": {"mainObject": ""}, "fields": [{"fieldName": "X", "area": "header"}]}`, http.StatusUnprocessableEntity, "MISSING_MAIN_OBJECT"},
		{"invalid field", `{"metadata": {"mainObject": "A"}, "fields": [{"fieldName": "X", "area": "detail"}]}`, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(newHandler().Generate, http.MethodPost, "/v1/generate", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			var body errorBody
			decode(t, rec, &body)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestGenerate_ValidationDiagnostics(t *testing.T) {
	rec := do(newHandler().Generate, http.MethodPost, "/v1/generate",
		`{"metadata": {"mainObject": "A"}, "fields": [{"fieldName": "X", "area": "header", "type": "chekbox"}]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body errorBody
	decode(t, rec, &body)
	require.NotNil(t, body.Diagnostics)
	require.Len(t, body.Diagnostics.Errors, 1)
	assert.Contains(t, body.Diagnostics.Errors[0].Message, "did you mean 'checkbox'?")
}

func TestGenerate_BodyTooLarge(t *testing.T) {
	big := `{"metadata": {"mainObject": "` + strings.Repeat("A", MaxBodyBytes) + `"}}`
	rec := do(newHandler().Generate, http.MethodPost, "/v1/generate", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestFMBEndpoints(t *testing.T) {
	h := newHandler()
	doc := orders(t)

	rec := do(h.ParseFMB, http.MethodPost, "/v1/fmb/parse", doc)
	require.Equal(t, http.StatusOK, rec.Code)
	var m struct {
		Name   string `json:"Name"`
		Blocks []struct {
			Name string `json:"Name"`
		} `json:"Blocks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, "ORDERS", m.Name)
	assert.Len(t, m.Blocks, 2)

	rec = do(h.FMBSpec, http.MethodPost, "/v1/fmb/spec", doc)
	require.Equal(t, http.StatusOK, rec.Code)
	var spec SpecResponse
	decode(t, rec, &spec)
	assert.NotEmpty(t, spec.Records)
	assert.NotEmpty(t, spec.Diagnostics.Warnings)

	rec = do(h.FMBFields, http.MethodPost, "/v1/fmb/fields", doc)
	require.Equal(t, http.StatusOK, rec.Code)
	var fields FieldsResponse
	decode(t, rec, &fields)
	assert.Equal(t, "ORDERS", fields.Project.Metadata.MainObject)
	assert.NotEmpty(t, fields.Project.Fields)

	// The converted project is accepted by the generate endpoint.
	b, err := json.Marshal(fields.Project)
	require.NoError(t, err)
	rec = do(h.Generate, http.MethodPost, "/v1/generate", string(b))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestDiagram(t *testing.T) {
	h := newHandler()
	doc := orders(t)

	rec := do(h.Diagram, http.MethodPost, "/v1/er?external=true", doc)
	require.Equal(t, http.StatusOK, rec.Code)
	var with er.Diagram
	decode(t, rec, &with)
	assert.True(t, with.Graph.ShowExternal)

	rec = do(h.Diagram, http.MethodPost, "/v1/er", doc)
	require.Equal(t, http.StatusOK, rec.Code)
	var without er.Diagram
	decode(t, rec, &without)
	assert.Less(t, len(without.Nodes), len(with.Nodes))

	rec = do(h.Diagram, http.MethodPost, "/v1/er?external=maybe", doc)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type slowLayout struct{}

func (slowLayout) Layout(ctx context.Context, _ []er.Node, _ []er.Edge) ([]er.Node, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestDiagram_Timeout(t *testing.T) {
	h := New(Options{Layouter: slowLayout{}, LayoutTimeout: 1})
	rec := do(h.Diagram, http.MethodPost, "/v1/er", orders(t))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body errorBody
	decode(t, rec, &body)
	assert.Equal(t, "LAYOUT_TIMEOUT", body.Code)
}

func TestCoverage(t *testing.T) {
	h := newHandler()
	gen := do(h.Generate, http.MethodPost, "/v1/generate", projectBody)
	require.Equal(t, http.StatusOK, gen.Code)
	var art pipeline.Artifacts
	decode(t, gen, &art)

	req, err := json.Marshal(CoverageRequest{Bindings: art.Bindings, Script: art.Script})
	require.NoError(t, err)
	rec := do(h.Coverage, http.MethodPost, "/v1/coverage", string(req))
	require.Equal(t, http.StatusOK, rec.Code)
	var cov dbc.Coverage
	decode(t, rec, &cov)
	assert.True(t, cov.OK())

	dropped := strings.Replace(art.Script, `attribute="ZZ_RISK"`, `attribute="ZZ_OTHER"`, 1)
	req, err = json.Marshal(CoverageRequest{Bindings: art.Bindings, Script: dropped})
	require.NoError(t, err)
	rec = do(h.Coverage, http.MethodPost, "/v1/coverage", string(req))
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &cov)
	assert.Equal(t, []string{"WORKORDER.ZZ_RISK"}, cov.Missing)

	rec = do(h.Coverage, http.MethodPost, "/v1/coverage", `{"script": "<script"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = do(h.Coverage, http.MethodPost, "/v1/coverage", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = do(h.Coverage, http.MethodPost, "/v1/coverage", `[`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCoverage_BodyTooLarge(t *testing.T) {
	big := `{"script": "` + strings.Repeat("x", MaxBodyBytes) + `"}`
	rec := do(newHandler().Coverage, http.MethodPost, "/v1/coverage", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	var body errorBody
	decode(t, rec, &body)
	assert.Equal(t, "BODY_TOO_LARGE", body.Code)
}

func chain(l zerolog.Logger, h http.Handler) http.Handler {
	return RequestID(Logging(l)(Recovery(h)))
}

func TestMiddleware_RequestIDAndLogging(t *testing.T) {
	var logs bytes.Buffer
	l := zerolog.New(&logs)

	var seen string
	h := chain(l, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
		zerolog.Ctx(r.Context()).Info().Msg("inside")
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Len(t, seen, 36, "a uuid is assigned")
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	require.Len(t, lines, 2)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, seen, entry["request_id"])
	assert.Equal(t, "/x", entry["path"])
	assert.Equal(t, float64(http.StatusAccepted), entry["status"])
	assert.Contains(t, lines[0], `"message":"inside"`)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "caller-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "caller-id", seen)
	assert.Equal(t, "caller-id", rec.Header().Get(RequestIDHeader))
}

func TestMiddleware_Recovery(t *testing.T) {
	var logs bytes.Buffer
	h := chain(zerolog.New(&logs), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(errors.New("boom"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error","code":"INTERNAL_ERROR"}`, rec.Body.String())
	assert.Contains(t, logs.String(), "recovered from panic")
	assert.Contains(t, logs.String(), `"status":500`)
}
