package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/directory-service/internal/handler"
	"github.com/maxviazov/directory-service/internal/metrics"
	"github.com/maxviazov/directory-service/internal/model"
	"github.com/maxviazov/directory-service/internal/repository/sqlite"
	"github.com/maxviazov/directory-service/internal/service"
	"github.com/maxviazov/directory-service/migrations"
	"github.com/maxviazov/directory-service/pkg/paginate"
	"github.com/maxviazov/directory-service/pkg/response"
)

// newAPI wires the full stack on a throwaway SQLite database.
func newAPI(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Up(db, "sqlite"))

	logger := zerolog.New(io.Discard)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, reg)
	opts := service.ListOptions{MaxLimit: 50, Observer: m}

	companies := sqlite.NewCompanyRepository(db)
	contacts := sqlite.NewContactRepository(db)
	companySvc := service.NewCompanyService(companies, opts, logger)
	contactSvc := service.NewContactService(contacts, companies, sqlite.NewTxManager(db), opts, logger)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.Register(r, []handler.Check{{Name: "database", Pinger: sqlite.NewPinger(db)}}, companySvc, contactSvc, m)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestAPI_CompanyContactsFlow(t *testing.T) {
	r := newAPI(t)
	v1 := handler.APIV1Prefix

	w := do(t, r, http.MethodPost, v1+"/companies", map[string]string{"name": "Acme", "industry": "retail"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	acme := decode[model.Company](t, w)

	w = do(t, r, http.MethodPost, v1+"/companies", map[string]string{"name": "Acme"})
	require.Equal(t, http.StatusConflict, w.Code)

	for _, c := range []map[string]string{
		{"first_name": "Ann", "last_name": "Lee", "email": "ann@acme.test", "company_id": acme.ID.String()},
		{"first_name": "Bob", "last_name": "Ray", "phone": "+1555", "company_id": acme.ID.String()},
		{"first_name": "Cid", "last_name": "Moe", "status": "invited"},
	} {
		w = do(t, r, http.MethodPost, v1+"/contacts", c)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, v1+"/companies/"+acme.ID.String()+"/contacts?include=company&Sort_first_name=asc", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decode[paginate.Envelope[model.Contact]](t, w)
	assert.Equal(t, 2, env.TotalDocs)
	require.Len(t, env.Docs, 2)
	assert.Equal(t, "Ann", env.Docs[0].FirstName)
	require.NotNil(t, env.Docs[0].Company)
	assert.Equal(t, "Acme", env.Docs[0].Company.Name)

	w = do(t, r, http.MethodGet, v1+"/contacts/reachable?search=bob%20cid", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env = decode[paginate.Envelope[model.Contact]](t, w)
	assert.Equal(t, 1, env.TotalDocs)

	w = do(t, r, http.MethodGet, v1+"/contacts?limit=2&page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env = decode[paginate.Envelope[model.Contact]](t, w)
	assert.Equal(t, 2, env.Page)
	assert.Equal(t, 2, env.LastPage)
	assert.Equal(t, 2, env.Offset)
	assert.Len(t, env.Docs, 1)

	w = do(t, r, http.MethodGet, v1+"/contacts?status=invited", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env = decode[paginate.Envelope[model.Contact]](t, w)
	require.Len(t, env.Docs, 1)
	assert.Equal(t, "Cid", env.Docs[0].FirstName)
	assert.Nil(t, env.Docs[0].Company)
}

func TestAPI_EmptyListHasEmptyDocsArray(t *testing.T) {
	r := newAPI(t)
	w := do(t, r, http.MethodGet, handler.APIV1Prefix+"/contacts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"docs":[]`)
	assert.Contains(t, w.Body.String(), `"totalDocs":0`)
}

func TestAPI_Errors(t *testing.T) {
	r := newAPI(t)
	v1 := handler.APIV1Prefix

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		code   int
		errKey string
	}{
		{"bad json", http.MethodPost, v1 + "/companies", "not an object", http.StatusBadRequest, "invalid_input"},
		{"bad contact", http.MethodPost, v1 + "/contacts", map[string]string{"email": "x"}, http.StatusBadRequest, "invalid_input"},
		{"missing company", http.MethodGet, v1 + "/companies/00000000-0000-0000-0000-000000000001", nil, http.StatusNotFound, "not_found"},
		{"missing company contacts", http.MethodGet, v1 + "/companies/00000000-0000-0000-0000-000000000001/contacts", nil, http.StatusNotFound, "not_found"},
		{"bad id", http.MethodGet, v1 + "/contacts/abc", nil, http.StatusBadRequest, "invalid_input"},
		{"bad sort", http.MethodGet, v1 + "/contacts?Sort_last_name=up", nil, http.StatusBadRequest, "invalid_input"},
		{"bad date", http.MethodGet, v1 + "/contacts?startDate=yesterday", nil, http.StatusBadRequest, "invalid_input"},
		{"bad include", http.MethodGet, v1 + "/contacts?include=owner", nil, http.StatusBadRequest, "invalid_input"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, tc.method, tc.path, tc.body)
			require.Equal(t, tc.code, w.Code, w.Body.String())
			p := decode[response.ErrorPayload](t, w)
			assert.Equal(t, tc.errKey, p.Error)
		})
	}
}

func TestAPI_MetricsEndpoint(t *testing.T) {
	r := newAPI(t)
	w := do(t, r, http.MethodGet, handler.APIV1Prefix+"/companies", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `directory_list_queries_total{outcome="ok",resource="companies"} 1`), body)
	assert.Contains(t, body, `route="/api/v1/companies"`)
}
