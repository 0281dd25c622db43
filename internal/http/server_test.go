package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/core"
	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/services"
	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := memory.New()
	svc := services.NewChallengeService(st, nil)
	s := NewServer(":0", svc, st, 24*time.Hour, 10000)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, s *Server) string {
	t.Helper()
	creds := map[string]string{"email": "test@example.com", "password": "m4t-khau-manh"}

	rec := doJSON(t, s, http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodPost, "/auth/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp loginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func setupChallenge(t *testing.T, s *Server, token string) {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/v1/challenge", token, map[string]int{"duration_days": 7})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodPost, "/api/v1/challenge/setup", token, setupRequest{
		TotalBudget: "300000",
		Jars: []jarPayload{
			{Name: "Ăn uống", Amount: "200000"},
			{Name: "Khác", Amount: "100000"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, s, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/v1/challenge", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/challenge", "no-such-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/auth/register", "", map[string]string{"email": "not-an-email", "password": "m4t-khau-manh"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/auth/register", "", map[string]string{"email": "a@example.com", "password": "short"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRegisterDuplicate(t *testing.T) {
	s := newTestServer(t)
	creds := map[string]string{"email": "dup@example.com", "password": "m4t-khau-manh"}

	rec := doJSON(t, s, http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/auth/register", "", creds)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/auth/register", "", map[string]string{"email": "a@example.com", "password": "m4t-khau-manh"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/auth/login", "", map[string]string{"email": "a@example.com", "password": "sai-roi-nhe"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChallengeFlow(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)
	setupChallenge(t, s, token)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/challenge", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var ov overviewPayload
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ov))
	assert.Equal(t, "active", ov.Phase)
	assert.Equal(t, 7, ov.TotalDays)
	assert.Equal(t, int64(300000), ov.Totals.Balance)
	assert.Equal(t, "300.000 ₫", ov.Totals.BalanceDisplay)
	require.Len(t, ov.Jars, 2)
}

func TestSelectInvalidDuration(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/challenge", token, map[string]int{"duration_days": 10})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSetupMismatchedAllocation(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/challenge", token, map[string]int{"duration_days": 7})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/v1/challenge/setup", token, setupRequest{
		TotalBudget: "300000",
		Jars:        []jarPayload{{Name: "Ăn uống", Amount: "100000"}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "allocation_mismatch", resp.Code)
}

func TestRecordExpenseOverJarLimit(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)
	setupChallenge(t, s, token)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/transactions/expense", token, expenseRequest{
		Amount:   "150000",
		Category: "Khác",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "limit_exceeded", resp.Code)
	assert.Equal(t, []string{"jar"}, resp.Causes)
}

func TestRecordAndDeleteExpense(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)
	setupChallenge(t, s, token)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/transactions/expense", token, expenseRequest{
		Amount:   "45000",
		Category: "Ăn uống",
		Notes:    "bữa trưa",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var tx transactionPayload
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tx))
	assert.Equal(t, int64(45000), tx.Amount)
	assert.Equal(t, "45.000 ₫", tx.AmountDisplay)

	// Overview reflects the expense; the cached entry was invalidated.
	rec = doJSON(t, s, http.MethodGet, "/api/v1/challenge", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ov overviewPayload
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ov))
	assert.Equal(t, int64(255000), ov.Totals.Balance)

	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/v1/transactions/%s", tx.ID), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/v1/transactions/%s", tx.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSeedTransactionIsProtected(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)
	setupChallenge(t, s, token)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/transactions", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Transactions []transactionPayload `json:"transactions"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Transactions, 1)
	seed := resp.Transactions[0]
	assert.True(t, seed.Seed)
	assert.Equal(t, "Ngân sách ban đầu", seed.Label)

	rec = doJSON(t, s, http.MethodDelete, "/api/v1/transactions/"+seed.ID, token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestExpenseWithoutChallenge(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/transactions/expense", token, expenseRequest{
		Amount:   "10000",
		Category: "Khác",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStatisticsEndpoint(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)
	setupChallenge(t, s, token)

	for _, e := range []expenseRequest{
		{Amount: "30000", Category: "Ăn uống"},
		{Amount: "10000", Category: "Khác"},
	} {
		rec := doJSON(t, s, http.MethodPost, "/api/v1/transactions/expense", token, e)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, s, http.MethodGet, "/api/v1/statistics", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ByCategory []struct {
			Name    string `json:"name"`
			Amount  int64  `json:"amount"`
			Percent int    `json:"percent"`
		} `json:"by_category"`
		ByDay []struct {
			Date   string `json:"date"`
			Amount int64  `json:"amount"`
		} `json:"by_day"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.ByCategory, 2)
	assert.Equal(t, "Ăn uống", resp.ByCategory[0].Name)
	assert.Equal(t, 75, resp.ByCategory[0].Percent)
	require.Len(t, resp.ByDay, 1)
	assert.Equal(t, int64(40000), resp.ByDay[0].Amount)
}

func TestOverviewCacheRollsOverAtDayBoundary(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)
	setupChallenge(t, s, token)

	day := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return day }

	rec := doJSON(t, s, http.MethodGet, "/api/v1/challenge", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Change state behind the handlers so no cache invalidation runs.
	_, err := s.service.RecordExpense(context.Background(), "test@example.com", core.ExpenseInput{
		Amount:   "45000",
		Category: "Ăn uống",
	})
	require.NoError(t, err)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/challenge", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ov overviewPayload
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ov))
	assert.Equal(t, int64(300000), ov.Totals.Balance, "same-day reads come from cache")

	s.now = func() time.Time { return day.Add(24 * time.Hour) }
	rec = doJSON(t, s, http.MethodGet, "/api/v1/challenge", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ov))
	assert.Equal(t, int64(255000), ov.Totals.Balance, "next-day reads are recomputed")
}

func TestResetChallenge(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)
	setupChallenge(t, s, token)

	rec := doJSON(t, s, http.MethodDelete, "/api/v1/challenge", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/challenge", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ov overviewPayload
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ov))
	assert.Equal(t, "none", ov.Phase)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)

	rec := doJSON(t, s, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/challenge", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/v1/challenge", "", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRateLimiting(t *testing.T) {
	st := memory.New()
	svc := services.NewChallengeService(st, nil)
	s := NewServer(":0", svc, st, 24*time.Hour, 2)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := doJSON(t, s, http.MethodPost, "/auth/login", "", map[string]string{"email": "a@example.com", "password": "x"})
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}
