package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"emotional-diary/internal/auth"
	"emotional-diary/internal/models"
	"emotional-diary/internal/services"
	"emotional-diary/internal/stats"
	"emotional-diary/pkg/logging"
	"emotional-diary/pkg/metrics"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// DiaryHandler handles the diary API endpoints
type DiaryHandler struct {
	entryService *services.EntryService
	statsService *services.StatisticsService
	userService  *services.UserService
	health       HealthChecker
	auth         auth.Authenticator
	logger       *logging.StructuredLogger
	metrics      *metrics.Collector
}

// NewDiaryHandler creates a new diary handler
func NewDiaryHandler(
	entryService *services.EntryService,
	statsService *services.StatisticsService,
	userService *services.UserService,
	health HealthChecker,
	authenticator auth.Authenticator,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *DiaryHandler {
	return &DiaryHandler{
		entryService: entryService,
		statsService: statsService,
		userService:  userService,
		health:       health,
		auth:         authenticator,
		logger:       logger,
		metrics:      metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// RegisterUser handles POST /api/users
func (h *DiaryHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if !h.decodeJSON(w, r, &input) {
		return
	}

	user, err := h.userService.Register(r.Context(), input)
	if err != nil {
		h.handleError(w, r, err, "failed to register user")
		return
	}

	h.sendJSON(w, map[string]interface{}{"user": user}, http.StatusCreated)
}

// CurrentUser handles GET /api/users/me
func (h *DiaryHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.userService.Get(ctx, currentUser(ctx))
	if err != nil {
		h.handleError(w, r, err, "failed to load user")
		return
	}

	h.sendJSON(w, map[string]interface{}{"user": user}, http.StatusOK)
}

// CreateEntry handles POST /api/entries
func (h *DiaryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input services.CreateEntryInput
	if !h.decodeJSON(w, r, &input) {
		return
	}

	result, err := h.entryService.Create(ctx, currentUser(ctx), input)
	if err != nil {
		h.handleError(w, r, err, "failed to create entry")
		return
	}

	h.sendJSON(w, result, http.StatusCreated)
}

// ListEntries handles GET /api/entries?month&year
func (h *DiaryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	monthStr := r.URL.Query().Get("month")
	yearStr := r.URL.Query().Get("year")
	if strings.TrimSpace(monthStr) == "" || strings.TrimSpace(yearStr) == "" {
		h.sendError(w, r, "month and year are required", http.StatusBadRequest)
		return
	}

	month, year, err := stats.ParseMonthPeriod(monthStr, yearStr)
	if err != nil {
		h.handleError(w, r, err, "")
		return
	}

	entries, err := h.entryService.ListMonth(ctx, currentUser(ctx), month, year)
	if err != nil {
		h.handleError(w, r, err, "failed to retrieve entries")
		return
	}

	h.sendJSON(w, entries, http.StatusOK)
}

// MonthlySummary handles GET /api/stats/summary?month&year
func (h *DiaryHandler) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	month, year, err := stats.ParseMonthPeriod(r.URL.Query().Get("month"), r.URL.Query().Get("year"))
	if err != nil {
		h.handleError(w, r, err, "")
		return
	}

	report, err := h.statsService.MonthlySummary(ctx, currentUser(ctx), month, year)
	if err != nil {
		h.handleError(w, r, err, "failed to build monthly summary")
		return
	}

	h.sendJSON(w, report, http.StatusOK)
}

// YearlySummary handles GET /api/stats/yearly?year
func (h *DiaryHandler) YearlySummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, err := stats.ParseYear(r.URL.Query().Get("year"))
	if err != nil {
		h.handleError(w, r, err, "")
		return
	}

	report, err := h.statsService.YearlySummary(ctx, currentUser(ctx), year)
	if err != nil {
		h.handleError(w, r, err, "failed to build yearly summary")
		return
	}

	h.sendJSON(w, report, http.StatusOK)
}

// MoodTrends handles GET /api/stats/trends?days
func (h *DiaryHandler) MoodTrends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	days, err := stats.ParseDays(r.URL.Query().Get("days"))
	if err != nil {
		h.handleError(w, r, err, "")
		return
	}

	report, err := h.statsService.MoodTrends(ctx, currentUser(ctx), days)
	if err != nil {
		h.handleError(w, r, err, "failed to build mood trends")
		return
	}

	h.sendJSON(w, report, http.StatusOK)
}

// MoodState handles GET /api/stats/mood?days
func (h *DiaryHandler) MoodState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	days, err := stats.ParseDays(r.URL.Query().Get("days"))
	if err != nil {
		h.handleError(w, r, err, "")
		return
	}

	summary, err := h.statsService.MoodState(ctx, currentUser(ctx), days)
	if err != nil {
		h.handleError(w, r, err, "failed to analyze mood")
		return
	}

	h.sendJSON(w, summary, http.StatusOK)
}

// Distribution handles GET /api/stats/distribution?days
func (h *DiaryHandler) Distribution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	days, err := stats.ParseDays(r.URL.Query().Get("days"))
	if err != nil {
		h.handleError(w, r, err, "")
		return
	}

	distribution, err := h.statsService.Distribution(ctx, currentUser(ctx), days)
	if err != nil {
		h.handleError(w, r, err, "failed to build entry distribution")
		return
	}

	h.sendJSON(w, distribution, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *DiaryHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.health.HealthCheck(ctx); err != nil {
		h.logger.Warn(ctx, "[HEALTH_CHECK_FAILED] Database unreachable", logging.Fields{
			"error": err.Error(),
		})
		status["status"] = "unhealthy"
		h.sendJSON(w, status, http.StatusServiceUnavailable)
		return
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// handleError maps service errors onto status codes. fallback is the client message
// for unexpected errors; internals are only logged.
func (h *DiaryHandler) handleError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var validation *models.ValidationError
	var notFound *models.NotFoundError
	var conflict *models.ConflictError

	switch {
	case errors.As(err, &validation):
		h.metrics.RecordAPIError("validation_error", routeName(r))
		h.sendError(w, r, validation.Message, http.StatusBadRequest)
	case errors.Is(err, auth.ErrUnauthenticated):
		h.metrics.RecordAPIError("auth_error", routeName(r))
		h.sendError(w, r, auth.ErrUnauthenticated.Error(), http.StatusUnauthorized)
	case errors.As(err, &notFound):
		h.metrics.RecordAPIError("not_found", routeName(r))
		h.sendError(w, r, notFound.Error(), http.StatusNotFound)
	case errors.As(err, &conflict):
		h.metrics.RecordAPIError("conflict", routeName(r))
		h.sendError(w, r, conflict.Error(), http.StatusConflict)
	default:
		h.logger.Error(r.Context(), "[API_ERROR] Request failed", logging.Fields{
			"path":   r.URL.Path,
			"method": r.Method,
		}, err)
		h.metrics.RecordAPIError("internal_error", routeName(r))
		if fallback == "" {
			fallback = "internal error"
		}
		h.sendError(w, r, fallback, http.StatusInternalServerError)
	}
}

// decodeJSON reads the request body into dst, answering 400 on malformed input
func (h *DiaryHandler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		h.metrics.RecordAPIError("decode_error", routeName(r))
		h.sendError(w, r, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// sendJSON sends a JSON response
func (h *DiaryHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *DiaryHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all diary API routes
func (h *DiaryHandler) RegisterRoutes(router *mux.Router) {
	router.Use(h.requestID, h.recoverPanic, h.instrument)

	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/api/docs", SwaggerUI).Methods("GET")
	router.HandleFunc(OpenAPIPath, OpenAPISpec).Methods("GET")
	router.HandleFunc("/api/users", h.RegisterUser).Methods("POST")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(h.requireUser)

	api.HandleFunc("/users/me", h.CurrentUser).Methods("GET")
	api.HandleFunc("/entries", h.CreateEntry).Methods("POST")
	api.HandleFunc("/entries", h.ListEntries).Methods("GET")
	api.HandleFunc("/stats/summary", h.MonthlySummary).Methods("GET")
	api.HandleFunc("/stats/yearly", h.YearlySummary).Methods("GET")
	api.HandleFunc("/stats/trends", h.MoodTrends).Methods("GET")
	api.HandleFunc("/stats/mood", h.MoodState).Methods("GET")
	api.HandleFunc("/stats/distribution", h.Distribution).Methods("GET")
}
