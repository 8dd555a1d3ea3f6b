// tests/integration/api_test.go
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kulibrary/internal/config"
	"kulibrary/internal/domain"
	"kulibrary/internal/server"
	"kulibrary/internal/store/memory"
)

type testAPI struct {
	ts *httptest.Server
}

func setup(t *testing.T) *testAPI {
	t.Helper()

	cfg := config.Config{
		StoreDriver:        "memory",
		AllowedOrigins:     []string{"http://localhost:3000"},
		SessionTTL:         24 * time.Hour,
		LoanPeriod:         14 * 24 * time.Hour,
		MaxRenewals:        3,
		AuthAttemptsPerMin: 1000,
	}
	srv := server.New(cfg, zerolog.Nop(), memory.New())
	require.NoError(t, srv.Seed(context.Background()))

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testAPI{ts: ts}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.ts.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func (a *testAPI) login(t *testing.T, email, password string) (string, map[string]interface{}) {
	t.Helper()

	resp, body := a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "login body: %s", body)

	var result struct {
		Success bool                   `json:"success"`
		Token   string                 `json:"token"`
		User    map[string]interface{} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	require.True(t, result.Success)
	require.NotEmpty(t, result.Token)
	return result.Token, result.User
}

func TestHealth(t *testing.T) {
	api := setup(t)

	resp, body := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestLoginScenarios(t *testing.T) {
	api := setup(t)

	token, user := api.login(t, "john.smith@kulibrary.edu.np", "student-demo-pass")
	assert.NotEmpty(t, token)
	assert.Equal(t, domain.RoleStudent, user["role"])

	resp, body := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "john.smith@kulibrary.edu.np", "password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var errBody struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(body, &errBody))
	assert.False(t, errBody.Success)
	assert.Equal(t, "invalid_credentials", errBody.Error)
	assert.NotContains(t, errBody.Message, "not found")
}

func TestCatalogSearch(t *testing.T) {
	api := setup(t)

	resp, body := api.do(t, http.MethodGet, "/api/books?q=graph", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var books []domain.Book
	require.NoError(t, json.Unmarshal(body, &books))
	require.Len(t, books, 1)
	assert.Equal(t, "Graph Databases", books[0].Title)

	// Unfiltered catalog comes back ordered by title.
	_, body = api.do(t, http.MethodGet, "/api/books", "", nil)
	require.NoError(t, json.Unmarshal(body, &books))
	require.NotEmpty(t, books)
	for i := 1; i < len(books); i++ {
		assert.LessOrEqual(t, books[i-1].Title, books[i].Title)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := setup(t)

	for _, path := range []string{"/api/books/borrow", "/api/books/return", "/api/books/renew"} {
		resp, _ := api.do(t, http.MethodPost, path, "", map[string]string{})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
	resp, _ := api.do(t, http.MethodGet, "/api/loans", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoanLifecycle(t *testing.T) {
	api := setup(t)
	token, _ := api.login(t, "john.smith@kulibrary.edu.np", "student-demo-pass")

	// Find a book and note its availability.
	_, body := api.do(t, http.MethodGet, "/api/books?q=graph", "", nil)
	var books []domain.Book
	require.NoError(t, json.Unmarshal(body, &books))
	require.Len(t, books, 1)
	book := books[0]
	require.Equal(t, 3, book.Available)

	// Borrow: one copy leaves the shelf, due date is loan date + 14 days.
	resp, body := api.do(t, http.MethodPost, "/api/books/borrow", token, map[string]string{
		"book_id": book.ID.String(),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "borrow body: %s", body)

	var borrowResp struct {
		Success bool            `json:"success"`
		Loan    domain.LoanView `json:"loan"`
	}
	require.NoError(t, json.Unmarshal(body, &borrowResp))
	loan := borrowResp.Loan
	assert.Equal(t, domain.LoanActive, loan.Status)
	assert.Equal(t, 0, loan.RenewalCount)
	assert.WithinDuration(t, loan.LoanDate.Add(14*24*time.Hour), loan.DueDate, time.Second)

	_, body = api.do(t, http.MethodGet, fmt.Sprintf("/api/books/%s", book.ID), "", nil)
	var after domain.Book
	require.NoError(t, json.Unmarshal(body, &after))
	assert.Equal(t, 2, after.Available)

	// The loan shows up on the dashboard list.
	_, body = api.do(t, http.MethodGet, "/api/loans", token, nil)
	var loans []domain.LoanView
	require.NoError(t, json.Unmarshal(body, &loans))
	require.Len(t, loans, 1)
	assert.Equal(t, loan.ID, loans[0].ID)

	// Three renewals extend the due date; the fourth is refused.
	due := loan.DueDate
	for i := 1; i <= 3; i++ {
		resp, body = api.do(t, http.MethodPost, "/api/books/renew", token, map[string]string{
			"loan_id": loan.ID.String(),
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, "renew %d body: %s", i, body)
		require.NoError(t, json.Unmarshal(body, &borrowResp))
		assert.Equal(t, i, borrowResp.Loan.RenewalCount)
		assert.WithinDuration(t, due.Add(time.Duration(i)*14*24*time.Hour), borrowResp.Loan.DueDate, time.Second)
	}
	resp, body = api.do(t, http.MethodPost, "/api/books/renew", token, map[string]string{
		"loan_id": loan.ID.String(),
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "renewal_limit_exceeded")

	// Return once: copy comes back. Return twice: conflict.
	resp, _ = api.do(t, http.MethodPost, "/api/books/return", token, map[string]string{
		"loan_id": loan.ID.String(),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = api.do(t, http.MethodGet, fmt.Sprintf("/api/books/%s", book.ID), "", nil)
	require.NoError(t, json.Unmarshal(body, &after))
	assert.Equal(t, 3, after.Available)

	resp, body = api.do(t, http.MethodPost, "/api/books/return", token, map[string]string{
		"loan_id": loan.ID.String(),
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "conflict")
}

func TestStaffOnlyRoutes(t *testing.T) {
	api := setup(t)

	student, _ := api.login(t, "john.smith@kulibrary.edu.np", "student-demo-pass")
	staff, _ := api.login(t, "staff@kulibrary.edu.np", "staff-demo-pass")

	resp, _ := api.do(t, http.MethodGet, "/api/members", student, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := api.do(t, http.MethodGet, "/api/members", staff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var members []domain.User
	require.NoError(t, json.Unmarshal(body, &members))
	assert.Len(t, members, 4)

	resp, _ = api.do(t, http.MethodPost, "/api/books", staff, map[string]interface{}{
		"isbn": "978-1", "title": "New Arrival", "author": "Someone", "total_copies": 2,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestStats(t *testing.T) {
	api := setup(t)
	token, _ := api.login(t, "staff@kulibrary.edu.np", "staff-demo-pass")

	resp, body := api.do(t, http.MethodGet, "/api/stats", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats struct {
		TotalBooks   int `json:"total_books"`
		TotalMembers int `json:"total_members"`
		ActiveLoans  int `json:"active_loans"`
		OverdueLoans int `json:"overdue_loans"`
	}
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, 6, stats.TotalBooks)
	assert.Equal(t, 4, stats.TotalMembers)
	assert.Equal(t, 0, stats.ActiveLoans)
}

func TestLogoutIsIdempotent(t *testing.T) {
	api := setup(t)
	token, _ := api.login(t, "john.smith@kulibrary.edu.np", "student-demo-pass")

	resp, _ := api.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The token no longer works for protected routes.
	resp, _ = api.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// A second logout with the dead token is not an error.
	resp, body := api.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true}`, string(body))
}

func TestCORSPreflight(t *testing.T) {
	api := setup(t)

	req, err := http.NewRequest(http.MethodOptions, api.ts.URL+"/api/books", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}
