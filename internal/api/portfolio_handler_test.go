package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"goportfolio/adapters/excel"
	"goportfolio/adapters/memory"
	"goportfolio/app"
	"goportfolio/domain/evaluation"
	"goportfolio/domain/portfolio"
	"goportfolio/internal/geometry"
	"goportfolio/internal/testkit"
	"goportfolio/internal/translator"
	"goportfolio/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := app.ServiceConfig{Geometry: geometry.DefaultConfig(), DetectCycles: true}
	cfg.Geometry.Workers = 2
	svc := app.NewPortfolioService(memory.NewPortfolioRepository(), cfg, nil)
	hub := NewSSEHub()
	t.Cleanup(hub.Close)
	svc.SetEventPublisher(hub)
	return NewRouter(NewPortfolioHandler(svc, excel.DefaultWorkbookConfig()), hub, RouterConfig{Metrics: true})
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createSquare(t *testing.T, r http.Handler) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/portfolios", app.CreatePortfolioRequest{Name: "square", Projects: []string{"P1", "P2"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p portfolio.Portfolio
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))

	_, box := testkit.UnitBox(2)
	specs := make([]evaluation.Spec, len(box))
	for i, rec := range box {
		specs[i] = rec.Spec()
	}
	w = do(t, r, http.MethodPost, "/api/v1/portfolios/"+p.ID.String()+"/evaluations", specs)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return p.ID.String()
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPortfolioHandler_Lifecycle(t *testing.T) {
	r := newTestRouter(t)
	id := createSquare(t, r)
	base := "/api/v1/portfolios/" + id

	w := do(t, r, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/portfolios", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w = do(t, r, http.MethodGet, base+"/vertices", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var vs geometry.VertexSet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &vs))
	assert.Equal(t, 4, vs.Len())

	w = do(t, r, http.MethodGet, base+"/properties", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var props geometry.Properties
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &props))
	assert.InDelta(t, 1.0, props.Volume.Value, 1e-9)

	w = do(t, r, http.MethodGet, base+"/projection?dims=0,1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, base+"/geometry", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, r, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPortfolioHandler_ErrorStatuses(t *testing.T) {
	r := newTestRouter(t)
	id := createSquare(t, r)
	base := "/api/v1/portfolios/" + id

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"malformed json", http.MethodPost, base + "/evaluations", "{", http.StatusBadRequest},
		{"empty body", http.MethodPost, base + "/evaluations", "", http.StatusBadRequest},
		{"unknown project", http.MethodPost, base + "/evaluations",
			evaluation.Spec{EvaluatorID: "x", Type: evaluation.TypeThreshold, Projects: []string{"Z"}, Operator: evaluation.OpGreater, Values: []float64{0.5}},
			http.StatusBadRequest},
		{"bad format", http.MethodGet, base + "/constraints?format=yaml", nil, http.StatusBadRequest},
		{"bad dims", http.MethodGet, base + "/projection?dims=0,x", nil, http.StatusBadRequest},
		{"projection out of range", http.MethodGet, base + "/projection?dims=0,5", nil, http.StatusBadRequest},
		{"missing portfolio", http.MethodGet, "/api/v1/portfolios/none/vertices", nil, http.StatusNotFound},
		{"missing record", http.MethodDelete, base + "/evaluations/none", nil, http.StatusNotFound},
		{"bad report format", http.MethodGet, base + "/report?format=pdf", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestPortfolioHandler_Exports(t *testing.T) {
	r := newTestRouter(t)
	id := createSquare(t, r)
	base := "/api/v1/portfolios/" + id

	w := do(t, r, http.MethodPost, base+"/evaluations", testkit.Comparison("alice", "P1", evaluation.OpGreater, "P2").Spec())
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodGet, base+"/constraints?format=table", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tbl translator.Table
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tbl))
	assert.Len(t, tbl.Rows, 5)

	w = do(t, r, http.MethodGet, base+"/constraints", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var doc translator.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Len(t, doc.Constraints, 5)

	w = do(t, r, http.MethodGet, base+"/validation", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rep validator.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	assert.Empty(t, rep.Warnings)

	w = do(t, r, http.MethodGet, base+"/optimization", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, base+"/report", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, w.Body.String(), "<h1")

	w = do(t, r, http.MethodGet, base+"/report?format=markdown", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# square")

	w = do(t, r, http.MethodGet, base+"/workbook", nil)
	require.Equal(t, http.StatusOK, w.Code)
	specs, err := excel.ReadWorkbook(bytes.NewReader(w.Body.Bytes()), excel.DefaultWorkbookConfig().EvaluationsSheet)
	require.NoError(t, err)
	assert.Len(t, specs, 3)
}

func TestPortfolioHandler_ImportCSV(t *testing.T) {
	r := newTestRouter(t)
	id := createSquare(t, r)

	tbl, err := translator.EvaluationTable([]evaluation.Spec{testkit.Comparison("alice", "P1", evaluation.OpLess, "P2").Spec()})
	require.NoError(t, err)

	var csv strings.Builder
	for _, row := range append([][]string{tbl.Header}, tbl.Rows...) {
		quoted := make([]string, len(row))
		for i, c := range row {
			quoted[i] = `"` + strings.ReplaceAll(c, `"`, `""`) + `"`
		}
		csv.WriteString(strings.Join(quoted, ",") + "\n")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "evaluations.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv.String()))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/portfolios/"+id+"/evaluations/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res app.AddResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Len(t, res.Accepted, 1)
	assert.Equal(t, 3, res.Total)
}
