package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/core"
	applog "github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/log"
)

type selectChallengeRequest struct {
	DurationDays int `json:"duration_days"`
}

type jarPayload struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type setupRequest struct {
	TotalBudget string       `json:"total_budget"`
	Jars        []jarPayload `json:"jars"`
}

type totalsPayload struct {
	TotalIncome    int64  `json:"total_income"`
	TotalExpense   int64  `json:"total_expense"`
	Balance        int64  `json:"balance"`
	BalanceDisplay string `json:"balance_display"`
}

type jarProgressPayload struct {
	Name    string `json:"name"`
	Limit   int64  `json:"limit"`
	Spent   int64  `json:"spent"`
	Percent int    `json:"percent"`
}

type overviewPayload struct {
	Phase      string               `json:"phase"`
	CurrentDay int                  `json:"current_day"`
	TotalDays  int                  `json:"total_days"`
	Totals     totalsPayload        `json:"totals"`
	Jars       []jarProgressPayload `json:"jars"`
}

func overviewToPayload(ov core.Overview) overviewPayload {
	jars := make([]jarProgressPayload, 0, len(ov.Jars))
	for _, j := range ov.Jars {
		jars = append(jars, jarProgressPayload{
			Name:    j.Name,
			Limit:   j.Limit,
			Spent:   j.Spent,
			Percent: j.Percent,
		})
	}
	return overviewPayload{
		Phase:      string(ov.Phase),
		CurrentDay: ov.CurrentDay,
		TotalDays:  ov.TotalDays,
		Totals: totalsPayload{
			TotalIncome:    ov.Totals.TotalIncome,
			TotalExpense:   ov.Totals.TotalExpense,
			Balance:        ov.Totals.Balance,
			BalanceDisplay: core.FormatCurrency(ov.Totals.Balance),
		},
		Jars: jars,
	}
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request, userKey string) {
	if ov, ok := s.overviewCache.Get(s.overviewKey(userKey)); ok {
		writeJSON(w, http.StatusOK, overviewToPayload(ov))
		return
	}

	ov, err := s.service.Overview(r.Context(), userKey)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.overviewCache.Set(s.overviewKey(userKey), ov)

	writeJSON(w, http.StatusOK, overviewToPayload(ov))
}

func (s *Server) handleSelectChallenge(w http.ResponseWriter, r *http.Request, userKey string) {
	var req selectChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: "invalid JSON body"})
		return
	}

	if err := s.service.StartChallenge(r.Context(), userKey, req.DurationDays); err != nil {
		writeError(w, r, err)
		return
	}
	s.overviewCache.Delete(s.overviewKey(userKey))

	slog.InfoContext(r.Context(), "Challenge selected",
		applog.FieldUserKey, userKey, applog.FieldDurationDays, req.DurationDays)
	writeJSON(w, http.StatusCreated, map[string]int{"duration_days": req.DurationDays})
}

func (s *Server) handleCompleteSetup(w http.ResponseWriter, r *http.Request, userKey string) {
	var req setupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: "invalid JSON body"})
		return
	}

	in := core.AllocationInput{TotalBudget: req.TotalBudget}
	for _, j := range req.Jars {
		in.Jars = append(in.Jars, core.JarInput{Name: j.Name, Amount: j.Amount})
	}

	if err := s.service.CompleteSetup(r.Context(), userKey, in); err != nil {
		writeError(w, r, err)
		return
	}
	s.overviewCache.Delete(s.overviewKey(userKey))

	ov, err := s.service.Overview(r.Context(), userKey)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Challenge configured", applog.FieldUserKey, userKey)
	writeJSON(w, http.StatusCreated, overviewToPayload(ov))
}

func (s *Server) handleResetChallenge(w http.ResponseWriter, r *http.Request, userKey string) {
	if err := s.service.ResetChallenge(r.Context(), userKey); err != nil {
		writeError(w, r, err)
		return
	}
	s.overviewCache.Delete(s.overviewKey(userKey))

	slog.InfoContext(r.Context(), "Challenge reset", applog.FieldUserKey, userKey)
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request, userKey string) {
	stats, err := s.service.Statistics(r.Context(), userKey)
	if err != nil {
		writeError(w, r, err)
		return
	}

	type categoryPayload struct {
		Name    string `json:"name"`
		Amount  int64  `json:"amount"`
		Percent int    `json:"percent"`
	}
	type dayPayload struct {
		Date   string `json:"date"`
		Amount int64  `json:"amount"`
	}

	resp := struct {
		ByCategory []categoryPayload `json:"by_category"`
		ByDay      []dayPayload      `json:"by_day"`
	}{
		ByCategory: make([]categoryPayload, 0, len(stats.ByCategory)),
		ByDay:      make([]dayPayload, 0, len(stats.ByDay)),
	}
	for _, c := range stats.ByCategory {
		resp.ByCategory = append(resp.ByCategory, categoryPayload{Name: c.Name, Amount: c.Amount, Percent: c.Percent})
	}
	for _, d := range stats.ByDay {
		resp.ByDay = append(resp.ByDay, dayPayload{Date: d.Date.String(), Amount: d.Amount})
	}

	writeJSON(w, http.StatusOK, resp)
}
