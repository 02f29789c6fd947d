package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"forecast-go/internal/analysis"
	"forecast-go/internal/archive"
	"forecast-go/internal/export"
	"forecast-go/internal/forecast"
	"forecast-go/internal/llm"
	"forecast-go/internal/models"
	"forecast-go/internal/service"
	"forecast-go/internal/state"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	MaxFileSize  = 20 * 1024 * 1024 // 20MB
	xlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// RunArchive stores and lists outlook runs
type RunArchive interface {
	SaveOutlook(ctx context.Context, o *service.Outlook) error
	ListOutlooks(ctx context.Context, limit int) ([]archive.RunSummary, error)
}

type Handler struct {
	Resolver *forecast.Resolver
	Outlook  *service.OutlookService
	Personal *service.PersonalService
	Advisors *service.AdvisorHolder
	State    *state.AppState
	Archive  RunArchive // nil when no archive is configured
	DataDir  string     // empty when datasets come from a database
	APIKey   string
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)

	r.Get("/api/indicators", h.ListIndicators)
	r.Get("/api/forecast", h.Forecast)
	r.Get("/api/inspect", h.Inspect)
	r.Post("/api/datasets", h.UploadDataset)

	r.Post("/api/outlook", h.RunOutlook)
	r.Post("/api/outlook/xlsx", h.ExportOutlook)
	r.Get("/api/outlook/runs", h.ListRuns)

	r.Post("/api/personal", h.AssessPersonal)

	r.Get("/config/advisor", h.GetAdvisorConfig)
	r.Post("/config/advisor", h.SaveAdvisorConfig)
}

// ============================================================================
// Health
// ============================================================================

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:  "ok",
		DataDir: h.DataDir,
		Archive: h.Archive != nil,
		Advisor: h.State.Advisor().Provider,
	})
}

// ============================================================================
// Forecasts
// ============================================================================

func (h *Handler) ListIndicators(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"indicators": h.Outlook.Indicators(),
	})
}

// Forecast projects one dataset column
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	file := q.Get("file")
	column := q.Get("column")
	if file == "" || column == "" {
		http.Error(w, "file and column are required", http.StatusBadRequest)
		return
	}
	years, err := intParam(q.Get("years"), service.DefaultOutlookYears)
	if err != nil {
		http.Error(w, "years must be an integer", http.StatusBadRequest)
		return
	}

	res, err := h.Resolver.Forecast(r.Context(), file, column, years)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Inspect describes a dataset's columns
func (h *Handler) Inspect(w http.ResponseWriter, r *http.Request) {
	file := r.URL.Query().Get("file")
	if file == "" {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}

	df, err := h.Resolver.Load(r.Context(), file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis.Inspect(df))
}

// UploadDataset stores a CSV or XLSX file in the data directory
func (h *Handler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	if h.DataDir == "" {
		http.Error(w, "Uploads require a file data directory", http.StatusConflict)
		return
	}
	if err := r.ParseMultipartForm(MaxFileSize); err != nil {
		http.Error(w, "File too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx", ".xlsm":
	default:
		http.Error(w, "Only CSV and XLSX files are allowed", http.StatusBadRequest)
		return
	}

	if err := os.MkdirAll(h.DataDir, 0o755); err != nil {
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}
	path := filepath.Join(h.DataDir, name)
	dst, err := os.Create(path)
	if err != nil {
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}
	dst.Close()

	df, err := h.Resolver.Load(r.Context(), name)
	if err != nil {
		os.Remove(path)
		http.Error(w, fmt.Sprintf("Failed to parse dataset: %v", err), http.StatusBadRequest)
		return
	}

	log.Info().Str("file", name).Int("rows", len(df.Rows)).Msg("Dataset uploaded")
	writeJSON(w, http.StatusCreated, analysis.Inspect(df))
}

// ============================================================================
// Outlook
// ============================================================================

func (h *Handler) runOutlook(w http.ResponseWriter, r *http.Request) (*service.Outlook, bool) {
	req := models.OutlookRequest{Years: service.DefaultOutlookYears}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return nil, false
		}
	}

	out, err := h.Outlook.Run(r.Context(), service.OutlookRequest{Years: req.Years, Country: req.Country})
	if errors.Is(err, service.ErrNoUsableIndicators) {
		writeJSON(w, http.StatusUnprocessableEntity, out)
		return nil, false
	}
	if err != nil {
		writeError(w, err)
		return nil, false
	}

	if h.Archive != nil {
		if err := h.Archive.SaveOutlook(r.Context(), out); err != nil {
			log.Error().Err(err).Str("run_id", out.ID.String()).Msg("Failed to archive outlook")
		}
	}
	return out, true
}

// RunOutlook forecasts every catalogue indicator
func (h *Handler) RunOutlook(w http.ResponseWriter, r *http.Request) {
	out, ok := h.runOutlook(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ExportOutlook runs the outlook and returns it as a workbook
func (h *Handler) ExportOutlook(w http.ResponseWriter, r *http.Request) {
	out, ok := h.runOutlook(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", xlsxMimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="outlook-%s.xlsx"`, out.ID))
	if err := export.WriteOutlookXLSX(w, out); err != nil {
		log.Error().Err(err).Msg("Failed to write outlook workbook")
	}
}

// ListRuns returns archived outlook runs
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.Archive == nil {
		http.Error(w, "Run archive is not configured", http.StatusNotFound)
		return
	}
	limit, err := intParam(r.URL.Query().Get("limit"), archive.DefaultListLimit)
	if err != nil {
		http.Error(w, "limit must be an integer", http.StatusBadRequest)
		return
	}

	runs, err := h.Archive.ListOutlooks(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list outlook runs")
		http.Error(w, "Failed to list runs", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// ============================================================================
// Personal
// ============================================================================

func (h *Handler) AssessPersonal(w http.ResponseWriter, r *http.Request) {
	var profile service.PersonalProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	a, err := h.Personal.Assess(r.Context(), profile)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ============================================================================
// Advisor config
// ============================================================================

func (h *Handler) GetAdvisorConfig(w http.ResponseWriter, r *http.Request) {
	s := h.State.Advisor()
	writeJSON(w, http.StatusOK, models.AdvisorConfig{Provider: s.Provider, BaseURL: s.BaseURL, Model: s.Model})
}

func (h *Handler) SaveAdvisorConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.AdvisorConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	settings := h.State.Advisor()
	if p := strings.ToLower(strings.TrimSpace(cfg.Provider)); p != "" && p != settings.Provider {
		// endpoint and model belong to the previous provider
		settings = state.AdvisorSettings{Provider: p}
	}
	if cfg.BaseURL != "" {
		if settings.Provider == llm.ProviderGemini {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "baseUrl cannot be changed for the gemini advisor"})
			return
		}
		settings.BaseURL = cfg.BaseURL
	}
	if cfg.Model != "" {
		settings.Model = cfg.Model
	}

	advisor, err := llm.New(settings, h.APIKey)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	h.State.SetAdvisor(settings)
	h.Advisors.Set(advisor)

	log.Info().Str("provider", settings.Provider).Str("model", settings.Model).Msg("Advisor updated")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"config":  models.AdvisorConfig{Provider: settings.Provider, BaseURL: settings.BaseURL, Model: settings.Model},
	})
}

// ============================================================================
// Helpers
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	var fe *forecast.Error
	switch {
	case errors.As(err, &fe):
		writeJSON(w, statusForKind(fe.Kind), models.ErrorResponse{
			Error:   fe.Error(),
			Code:    fe.Kind.String(),
			Dataset: fe.Dataset,
			Column:  fe.Column,
		})
	case errors.Is(err, service.ErrInvalidProfile):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error(), Code: "INVALID_PROFILE"})
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, models.ErrorResponse{Error: "request timed out", Code: "TIMEOUT"})
	default:
		log.Error().Err(err).Msg("Request failed")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
	}
}

func statusForKind(k forecast.Kind) int {
	switch k {
	case forecast.KindDatasetNotFound:
		return http.StatusNotFound
	case forecast.KindNoValidSeriesData, forecast.KindUnresolvableColumns:
		return http.StatusUnprocessableEntity
	case forecast.KindInvalidHorizon:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
