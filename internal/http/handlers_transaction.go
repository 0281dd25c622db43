package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/core"
	applog "github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/log"
)

type incomeRequest struct {
	Amount string `json:"amount"`
	Source string `json:"source"`
	Date   string `json:"date"`
	Notes  string `json:"notes"`
}

type expenseRequest struct {
	Amount   string `json:"amount"`
	Category string `json:"category"`
	Date     string `json:"date"`
	Notes    string `json:"notes"`
}

type transactionPayload struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	Amount        int64  `json:"amount"`
	AmountDisplay string `json:"amount_display"`
	Label         string `json:"label"`
	Date          string `json:"date"`
	Notes         string `json:"notes,omitempty"`
	Seed          bool   `json:"seed,omitempty"`
}

func transactionToPayload(tx core.Transaction) transactionPayload {
	return transactionPayload{
		ID:            tx.ID,
		Kind:          string(tx.Kind),
		Amount:        tx.Amount,
		AmountDisplay: core.FormatCurrency(tx.Amount),
		Label:         tx.Label,
		Date:          tx.Date.String(),
		Notes:         tx.Notes,
		Seed:          tx.Seed,
	}
}

// parseOptionalDate falls back to the zero date when the field is absent;
// the service fills in today.
func parseOptionalDate(raw string) core.Date {
	return core.ParseDate(raw, core.Date{})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, userKey string) {
	txs, err := s.service.Transactions(r.Context(), userKey)
	if err != nil {
		writeError(w, r, err)
		return
	}

	payload := make([]transactionPayload, 0, len(txs))
	for _, tx := range txs {
		payload = append(payload, transactionToPayload(tx))
	}
	writeJSON(w, http.StatusOK, map[string][]transactionPayload{"transactions": payload})
}

func (s *Server) handleRecordIncome(w http.ResponseWriter, r *http.Request, userKey string) {
	var req incomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: "invalid JSON body"})
		return
	}

	tx, err := s.service.RecordIncome(r.Context(), userKey, core.IncomeInput{
		Amount: req.Amount,
		Source: req.Source,
		Date:   parseOptionalDate(req.Date),
		Notes:  req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.overviewCache.Delete(s.overviewKey(userKey))

	slog.InfoContext(r.Context(), "Income recorded",
		applog.FieldUserKey, userKey, applog.FieldTransactionID, tx.ID, applog.FieldAmount, tx.Amount)
	writeJSON(w, http.StatusCreated, transactionToPayload(tx))
}

func (s *Server) handleRecordExpense(w http.ResponseWriter, r *http.Request, userKey string) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: "invalid JSON body"})
		return
	}

	tx, err := s.service.RecordExpense(r.Context(), userKey, core.ExpenseInput{
		Amount:   req.Amount,
		Category: req.Category,
		Date:     parseOptionalDate(req.Date),
		Notes:    req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.overviewCache.Delete(s.overviewKey(userKey))

	slog.InfoContext(r.Context(), "Expense recorded",
		applog.FieldUserKey, userKey, applog.FieldTransactionID, tx.ID, applog.FieldAmount, tx.Amount, applog.FieldJar, tx.Label)
	writeJSON(w, http.StatusCreated, transactionToPayload(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, userKey string) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: "missing transaction id"})
		return
	}

	if err := s.service.DeleteTransaction(r.Context(), userKey, id); err != nil {
		writeError(w, r, err)
		return
	}
	s.overviewCache.Delete(s.overviewKey(userKey))

	slog.InfoContext(r.Context(), "Transaction deleted",
		applog.FieldUserKey, userKey, applog.FieldTransactionID, id)
	writeJSON(w, http.StatusNoContent, nil)
}
