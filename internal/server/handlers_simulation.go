package server

import (
	"net/http"
	"strings"

	"github.com/mbarros/simvest/internal/models"
)

type createAutomaticRequest struct {
	Name                string  `json:"name"`
	StartDate           string  `json:"start_date"`
	EndDate             string  `json:"end_date"`
	InitialContribution float64 `json:"initial_contribution"`
	MonthlyContribution float64 `json:"monthly_contribution"`
	BaseCurrency        string  `json:"base_currency,omitempty"`
}

type createManualRequest struct {
	Name         string `json:"name"`
	StartDate    string `json:"start_date"`
	BaseCurrency string `json:"base_currency,omitempty"`
}

type populateRequest struct {
	Assets []models.AssetWeight `json:"assets"`
}

type tradeRequest struct {
	Side   models.TradeSide `json:"side"`
	Ticker string           `json:"ticker"`
	Amount float64          `json:"amount"`
	Price  float64          `json:"price"`
}

type cashRequest struct {
	Amount          float64 `json:"amount"`
	AdjustInflation bool    `json:"adjust_inflation"`
}

// handleAutomaticCreate handles POST /api/simulations/automatic.
func (s *Server) handleAutomaticCreate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req createAutomaticRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	start, ok := ParseDate(w, "start_date", req.StartDate)
	if !ok {
		return
	}
	end, ok := ParseDate(w, "end_date", req.EndDate)
	if !ok {
		return
	}

	sim, err := s.app.Simulations.CreateAutomatic(r.Context(), req.Name, start, end, req.InitialContribution, req.MonthlyContribution, req.BaseCurrency)
	if err != nil {
		WriteFault(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, sim)
}

// routeAutomatic dispatches /api/simulations/automatic/{id}[/assets|/result].
func (s *Server) routeAutomatic(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/simulations/automatic/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		WriteError(w, http.StatusBadRequest, "Simulation ID is required")
		return
	}
	id := parts[0]

	switch {
	case len(parts) == 1:
		if !RequireMethod(w, r, http.MethodGet) {
			return
		}
		result, err := s.app.Simulations.OpenAutomatic(r.Context(), id)
		if err != nil {
			WriteFault(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, result)

	case len(parts) == 2 && parts[1] == "assets":
		if !RequireMethod(w, r, http.MethodPost) {
			return
		}
		var req populateRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		sim, err := s.app.Simulations.PopulateAutomatic(r.Context(), id, req.Assets)
		if err != nil {
			WriteFault(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, sim)

	case len(parts) == 2 && parts[1] == "result":
		if !RequireMethod(w, r, http.MethodGet) {
			return
		}
		result, err := s.app.Simulations.ComputeAutomatic(r.Context(), id)
		if err != nil {
			WriteFault(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, result)

	default:
		WriteError(w, http.StatusNotFound, "Unknown automatic simulation endpoint")
	}
}

// handleManualCreate handles POST /api/simulations/manual.
func (s *Server) handleManualCreate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req createManualRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	start, ok := ParseDate(w, "start_date", req.StartDate)
	if !ok {
		return
	}

	sim, err := s.app.Simulations.CreateManual(r.Context(), req.Name, start, req.BaseCurrency)
	if err != nil {
		WriteFault(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, sim)
}

// routeManual dispatches /api/simulations/manual/{id}[/advance|/trade|/cash|/quote/{t}|/search/{t}].
func (s *Server) routeManual(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/simulations/manual/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		WriteError(w, http.StatusBadRequest, "Simulation ID is required")
		return
	}
	id := parts[0]

	switch {
	case len(parts) == 1:
		if !RequireMethod(w, r, http.MethodGet) {
			return
		}
		report, err := s.app.Simulations.Report(r.Context(), id)
		if err != nil {
			WriteFault(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, report)

	case len(parts) == 2 && parts[1] == "advance":
		if !RequireMethod(w, r, http.MethodPost) {
			return
		}
		sim, err := s.app.Simulations.AdvanceMonth(r.Context(), id)
		if err != nil {
			WriteFault(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, sim)

	case len(parts) == 2 && parts[1] == "trade":
		if !RequireMethod(w, r, http.MethodPost) {
			return
		}
		var req tradeRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		result, err := s.app.Simulations.Trade(r.Context(), id, req.Side, req.Ticker, req.Amount, req.Price)
		if err != nil {
			WriteFault(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, result)

	case len(parts) == 2 && parts[1] == "cash":
		if !RequireMethod(w, r, http.MethodPost) {
			return
		}
		var req cashRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		balance, err := s.app.Simulations.AdjustCash(r.Context(), id, req.Amount, req.AdjustInflation)
		if err != nil {
			WriteFault(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]float64{"cash": balance})

	case len(parts) == 3 && parts[1] == "quote":
		if !RequireMethod(w, r, http.MethodGet) {
			return
		}
		view, err := s.app.Simulations.Quote(r.Context(), id, parts[2])
		if err != nil {
			WriteFault(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, view)

	case len(parts) == 3 && parts[1] == "search":
		if !RequireMethod(w, r, http.MethodGet) {
			return
		}
		check, err := s.app.Simulations.CheckTicker(r.Context(), id, parts[2])
		if err != nil {
			WriteFault(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, check)

	default:
		WriteError(w, http.StatusNotFound, "Unknown manual simulation endpoint")
	}
}

// routeSimulations dispatches /api/simulations/{id}[/chart] for operations
// common to both kinds.
func (s *Server) routeSimulations(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/simulations/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		WriteError(w, http.StatusBadRequest, "Simulation ID is required")
		return
	}
	id := parts[0]

	switch {
	case len(parts) == 1:
		if !RequireMethod(w, r, http.MethodDelete) {
			return
		}
		if err := s.app.Simulations.Delete(r.Context(), id); err != nil {
			WriteFault(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"deleted": id})

	case len(parts) == 2 && parts[1] == "chart":
		if !RequireMethod(w, r, http.MethodGet) {
			return
		}
		png, err := s.app.Simulations.RenderChart(r.Context(), id)
		if err != nil {
			WriteFault(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(png)

	default:
		WriteError(w, http.StatusNotFound, "Unknown simulation endpoint")
	}
}

// handleHistory handles GET /api/history.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	summaries, err := s.app.Simulations.History(r.Context())
	if err != nil {
		WriteFault(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, summaries)
}

// handleTickerSearch handles GET /api/tickers/{ticker}.
func (s *Server) handleTickerSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ticker := PathParam(r, "/api/tickers/", "")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}
	check, err := s.app.Simulations.SearchTicker(r.Context(), ticker)
	if err != nil {
		WriteFault(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, check)
}
