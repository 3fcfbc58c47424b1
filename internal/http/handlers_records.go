package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"daara/internal/core"
	"daara/internal/report"
	"daara/internal/services"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type recordResponse struct {
	Key    string             `json:"key"`
	Record core.MonthlyRecord `json:"record"`
	Totals core.Totals        `json:"totals"`
	Exists bool               `json:"exists"`
}

// entryRequest carries the fields of any of the three entry lists; each
// list reads only its own.
type entryRequest struct {
	GivenName  string     `json:"givenName"`
	FamilyName string     `json:"familyName"`
	Source     string     `json:"source"`
	Label      string     `json:"label"`
	Amount     core.Money `json:"amount"`
}

type fieldRequest struct {
	Field core.EntryField `json:"field"`
	Value fieldValue      `json:"value"`
}

// fieldValue is the new value of an edited field. Amounts may arrive as JSON
// numbers or strings; numbers are kept as their literal text.
type fieldValue string

func (v *fieldValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = fieldValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("value must be a string or a number: %w", err)
	}
	*v = fieldValue(n)
	return nil
}

type priorBalanceRequest struct {
	PriorBalance core.Money `json:"priorBalance"`
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Browse(filterFromQuery(r)))
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	year, month, err := recordKey(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := s.ledger.Record(year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse{
		Key:    rec.Key(),
		Record: rec,
		Totals: rec.Totals(),
		Exists: s.ledger.RecordExists(year, month),
	})
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	year, month, err := recordKey(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	existed, err := s.ledger.DeleteRecord(r.Context(), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": existed})
}

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	year, month, err := recordKey(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := entryList(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req entryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var res services.MutationResult
	switch list {
	case core.ListContributions:
		res, err = s.ledger.AddContribution(r.Context(), year, month, req.GivenName, req.FamilyName, req.Amount)
	case core.ListOtherIncome:
		res, err = s.ledger.AddOtherIncome(r.Context(), year, month, req.Source, req.Amount)
	case core.ListExpenses:
		res, err = s.ledger.AddExpense(r.Context(), year, month, req.Label, req.Amount)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	year, month, err := recordKey(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := entryList(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req fieldRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	var res services.MutationResult
	switch list {
	case core.ListContributions:
		res, err = s.ledger.UpdateContribution(r.Context(), year, month, id, req.Field, string(req.Value))
	case core.ListOtherIncome:
		res, err = s.ledger.UpdateOtherIncome(r.Context(), year, month, id, req.Field, string(req.Value))
	case core.ListExpenses:
		res, err = s.ledger.UpdateExpense(r.Context(), year, month, id, req.Field, string(req.Value))
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	year, month, err := recordKey(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := entryList(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	var res services.MutationResult
	switch list {
	case core.ListContributions:
		res, err = s.ledger.RemoveContribution(r.Context(), year, month, id)
	case core.ListOtherIncome:
		res, err = s.ledger.RemoveOtherIncome(r.Context(), year, month, id)
	case core.ListExpenses:
		res, err = s.ledger.RemoveExpense(r.Context(), year, month, id)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSetPriorBalance(w http.ResponseWriter, r *http.Request) {
	year, month, err := recordKey(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	fund, err := core.ParseFund(chi.URLParam(r, "fund"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req priorBalanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.ledger.SetPriorBalance(r.Context(), year, month, fund, req.PriorBalance)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCarryForward(w http.ResponseWriter, r *http.Request) {
	year, month, err := recordKey(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.ledger.CarryForward(r.Context(), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	year, month, err := recordKey(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := s.ledger.Record(year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteMonthCSV(&buf, rec, s.ledger.Config()); err != nil {
		writeError(w, r, fmt.Errorf("render csv: %w", err))
		return
	}
	attachment(w, contentTypeCSV, fmt.Sprintf("rapport_%s_%d.csv", month, year))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	year, month, err := recordKey(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := s.ledger.Record(year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	b, err := report.MonthXLSX(rec, s.ledger.Config())
	if err != nil {
		writeError(w, r, fmt.Errorf("render xlsx: %w", err))
		return
	}
	attachment(w, contentTypeXLSX, fmt.Sprintf("rapport_%s_%d.xlsx", month, year))
	_, _ = w.Write(b)
}
