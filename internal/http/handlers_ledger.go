package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"daara/internal/core"
	"daara/internal/query"
	"daara/internal/report"
)

type configResponse struct {
	Config       core.Configuration `json:"config"`
	PercentTotal core.Percent       `json:"percentTotal"`
	Balanced     bool               `json:"balanced"`
}

func newConfigResponse(cfg core.Configuration) configResponse {
	return configResponse{Config: cfg, PercentTotal: cfg.PercentTotal(), Balanced: cfg.Balanced()}
}

func (s *Server) handlePeriodReport(w http.ResponseWriter, r *http.Request) {
	f := filterFromQuery(r)
	records := s.ledger.Records(f)
	b, err := report.PeriodXLSX(records, query.SelectionTotals(records), s.ledger.Config(), f.Caption())
	if err != nil {
		writeError(w, r, fmt.Errorf("render period report: %w", err))
		return
	}
	attachment(w, contentTypeXLSX, "rapport_detaille.xlsx")
	_, _ = w.Write(b)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Balances())
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Years())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	year := s.now().Year()
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: %q", core.ErrInvalidYear, v))
			return
		}
		year = y
	}
	writeJSON(w, http.StatusOK, s.ledger.Dashboard(year))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Search(r.URL.Query().Get("q")))
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newConfigResponse(s.ledger.Config()))
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg core.Configuration
	if err := decodeJSON(w, r, &cfg); err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := s.ledger.UpdateConfig(r.Context(), cfg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newConfigResponse(saved))
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var m core.Member
	if err := decodeJSON(w, r, &m); err != nil {
		writeError(w, r, err)
		return
	}
	cfg, err := s.ledger.AddMember(r.Context(), m)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newConfigResponse(cfg))
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: member index %q", errBadRequest, chi.URLParam(r, "index")))
		return
	}
	cfg, err := s.ledger.RemoveMember(r.Context(), index)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newConfigResponse(cfg))
}

func (s *Server) handleGetFilters(w http.ResponseWriter, r *http.Request) {
	f, err := s.ledger.LoadFilters(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleSaveFilters(w http.ResponseWriter, r *http.Request) {
	var f query.Filter
	if err := decodeJSON(w, r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := s.ledger.SaveFilters(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	data := s.ledger.ExportData(r.Context())
	w.Header().Set("Content-Disposition", `attachment; filename="daara_backup.json"`)
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleImportBackup(w http.ResponseWriter, r *http.Request) {
	var data core.AppData
	if err := decodeJSON(w, r, &data); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.ImportData(r.Context(), data); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"records": len(s.ledger.Snapshot().Data.Records)})
}
