package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/clock"
	"github.com/mrlokans/library/internal/database"
	auditRepo "github.com/mrlokans/library/internal/database/audit"
	"github.com/mrlokans/library/internal/database/catalog"
	"github.com/mrlokans/library/internal/database/inventory"
	"github.com/mrlokans/library/internal/lending"
	"github.com/mrlokans/library/internal/recommend"
	"github.com/mrlokans/library/internal/stats"
)

type rawEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func (a apiClient) do(method, path, body string) (int, rawEnvelope) {
	a.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env rawEnvelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func setupAPI(t *testing.T) (apiClient, *audit.Service) {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)

	auditService := audit.NewService(auditRepo.NewRepository(db.DB))
	t.Cleanup(func() {
		auditService.Wait()
		db.Close()
	})

	clk := clock.Fixed(time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))
	ledger := inventory.NewRepository(db.DB)
	books := catalog.NewRepository(db.DB)

	router := NewRouter(RouterConfig{
		Database:     db,
		Version:      "test",
		Lender:       lending.NewService(db.DB, ledger, clk, 30, auditService),
		Ledger:       ledger,
		Catalog:      books,
		Readers:      books,
		Statistics:   stats.NewAggregator(db.DB, clk),
		Recommender:  recommend.NewScorer(db.DB, db.Dialect()),
		AuditLog:     auditService,
		AuditRecords: auditService,
	})
	return apiClient{t: t, router: router}, auditService
}

func TestAPI_LendingFlow(t *testing.T) {
	api, auditService := setupAPI(t)

	code, env := api.do("POST", "/api/register_reader", `{"name": "Alice", "gender": "F", "phone": "555-0100"}`)
	require.Equal(t, http.StatusOK, code)
	require.True(t, env.Success)

	code, _ = api.do("POST", "/api/add_book", `{"book_name": "Dune", "author": "Herbert", "category_name": "SF", "total_count": 1}`)
	require.Equal(t, http.StatusOK, code)

	code, env = api.do("POST", "/api/borrow_book", `{"reader_id": 1, "book_id": 1}`)
	require.Equal(t, http.StatusOK, code)
	var loan struct {
		BorrowID   uint   `json:"borrow_id"`
		Status     string `json:"status"`
		BorrowDate string `json:"borrow_date"`
		DueDate    string `json:"due_date"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &loan))
	assert.Equal(t, "OPEN", loan.Status)
	assert.True(t, strings.HasPrefix(loan.BorrowDate, "2026-04-01"))
	assert.True(t, strings.HasPrefix(loan.DueDate, "2026-05-01"))

	code, env = api.do("POST", "/api/borrow_book", `{"reader_id": 1, "book_id": 1}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)

	code, env = api.do("GET", "/api/statistics/book_popularity", "")
	require.Equal(t, http.StatusOK, code)
	var popularity []stats.PopularityRow
	require.NoError(t, json.Unmarshal(env.Data, &popularity))
	require.Len(t, popularity, 1)
	assert.Equal(t, int64(1), popularity[0].BorrowCount)

	code, _ = api.do("DELETE", "/api/delete_book/1", "")
	assert.Equal(t, http.StatusConflict, code)

	code, env = api.do("POST", "/api/return_book", `{"borrow_id": 1}`)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, _ = api.do("POST", "/api/return_book", `{"borrow_id": 1}`)
	assert.Equal(t, http.StatusConflict, code)

	code, env = api.do("GET", "/api/list_books", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"available_count":1`)

	code, env = api.do("GET", "/api/statistics/library_overview", "")
	require.Equal(t, http.StatusOK, code)
	var overview stats.Overview
	require.NoError(t, json.Unmarshal(env.Data, &overview))
	assert.Equal(t, stats.BorrowTotals{TotalBorrows: 1, ReturnedBorrows: 1}, overview.Borrows)

	code, env = api.do("GET", "/api/borrow_records", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"reader_name":"Alice"`)
	assert.Contains(t, string(env.Data), `"status":"RETURNED"`)

	auditService.Wait()
	code, env = api.do("GET", "/api/audit?type=lending", "")
	require.Equal(t, http.StatusOK, code)
	var page struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(4), page.Total, "two borrows and two returns")
}

func TestAPI_StatisticsEmpty(t *testing.T) {
	api, _ := setupAPI(t)

	for _, path := range []string{
		"/api/statistics/book_popularity",
		"/api/statistics/reader_activity",
		"/api/statistics/category_distribution",
		"/api/statistics/overdue_books",
	} {
		code, env := api.do("GET", path, "")
		assert.Equal(t, http.StatusOK, code, path)
		assert.True(t, env.Success, path)
		assert.JSONEq(t, `[]`, string(env.Data), path)
	}

	code, env := api.do("GET", "/api/statistics/borrow_trend", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"daily":[],"monthly":[]}`, string(env.Data))
}

func TestAPI_Recommendations(t *testing.T) {
	api, _ := setupAPI(t)

	code, env := api.do("GET", "/api/recommend/books", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)

	code, _ = api.do("GET", "/api/recommend/similar_books?book_id=99", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = api.do("GET", "/api/recommend/similar_books?book_id=x", "")
	assert.Equal(t, http.StatusBadRequest, code)

	api.do("POST", "/api/add_book", `{"book_name": "Dune", "author": "Herbert", "category_name": "SF"}`)
	api.do("POST", "/api/add_book", `{"book_name": "Emma", "author": "Austen", "category_name": "Classics"}`)

	code, env = api.do("GET", "/api/recommend/books?reader_id=5", "")
	require.Equal(t, http.StatusOK, code)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	assert.Len(t, rows, 2)

	code, env = api.do("GET", "/api/recommend/similar_books?book_id=1", "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Emma", rows[0]["book_name"])
}
