// Package server exposes the planner over a small JSON HTTP API.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/premium-forecast/internal/config"
	"github.com/iwvelando/premium-forecast/internal/planner"
	"github.com/iwvelando/premium-forecast/pkg/constants"
	"github.com/iwvelando/premium-forecast/pkg/output"
	"github.com/iwvelando/premium-forecast/pkg/strategy"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	metrics       *Metrics
}

// NewHandler constructs the HTTP handler that serves the plan API and metrics.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		metrics:       NewMetrics(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/plan", h.metrics.instrument("plan", h.handlePlan))
	mux.HandleFunc("/api/projection", h.metrics.instrument("projection", h.handleProjection))
	mux.HandleFunc("/api/daily-check", h.metrics.instrument("daily-check", h.handleDailyCheck))
	mux.HandleFunc("/api/version", h.metrics.instrument("version", h.handleVersion))
	mux.Handle("/metrics", h.metrics.Handler())

	return mux
}

type planResponse struct {
	Scenarios []string               `json:"scenarios"`
	Forecasts []planner.Forecast     `json:"forecasts"`
	CSV       string                 `json:"csv"`
	Warnings  []string               `json:"warnings,omitempty"`
	Duration  string                 `json:"duration"`
	Config    map[string]interface{} `json:"config,omitempty"`
}

type projectionResponse struct {
	Months int                      `json:"months"`
	Rows   []strategy.ProjectionRow `json:"rows"`
}

type positionRequest struct {
	Symbol   string  `json:"symbol"`
	Kind     string  `json:"kind"`
	Strike   float64 `json:"strike"`
	Quantity int     `json:"quantity"`
	Value    float64 `json:"value"`
}

type dailyCheckRequest struct {
	Positions []positionRequest `json:"positions"`
}

// handlePlan runs every active scenario of the posted YAML configuration. The
// configuration is accepted either as a multipart "file" upload or as the raw
// request body.
func (h *handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePlan"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	configBytes, err := h.readConfig(r)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("error reading config data, %v", err), op)
		return
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	if err := cfg.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid configuration: %v", err), op)
		return
	}
	warnings := cfg.ValidateConfiguration()

	results, err := planner.GetForecasts(h.logger, *cfg)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, strategy.ErrInvalidParameter) || errors.Is(err, strategy.ErrDegenerateDivision) {
			status = http.StatusBadRequest
		}
		h.respondError(w, status, fmt.Sprintf("failed to compute plans: %v", err), op)
		return
	}
	h.metrics.ObserveForecasts(results)

	elapsed := time.Since(start)
	response := planResponse{
		Scenarios: extractScenarioNames(results),
		Forecasts: results,
		CSV:       output.CsvString(results),
		Warnings:  warnings,
		Duration:  elapsed.String(),
		Config:    configMap,
	}

	h.logger.Info("plans computed",
		zap.String("op", op),
		zap.Int("scenarios", len(response.Scenarios)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) readConfig(r *http.Request) ([]byte, error) {
	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
			return nil, fmt.Errorf("failed to parse upload: %w", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, errors.New("missing configuration file")
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				h.logger.Warn("failed to close uploaded file",
					zap.String("op", "server.readConfig"),
					zap.Error(closeErr),
				)
			}
		}()
		src = file
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, src); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// handleProjection returns the premium growth projection for the default
// parameters, optionally overriding price and monthly capital.
func (h *handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleProjection"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	months := constants.DefaultProjectionMonths
	if raw := q.Get("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid months %q", raw), op)
			return
		}
		months = n
	}

	params := strategy.DefaultParameters()
	for key, target := range map[string]*float64{"price": &params.CurrentPrice, "capital": &params.MonthlyCapital} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s %q", key, raw), op)
			return
		}
		*target = v
	}

	compounder, err := strategy.NewPremiumCompounder(h.logger, params, strategy.DefaultPolicy())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	rows, err := compounder.ProjectGrowth(months)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, projectionResponse{Months: months, Rows: rows})
}

// handleDailyCheck runs the daily risk check over posted positions.
func (h *handler) handleDailyCheck(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDailyCheck"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	var req dailyCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode positions: %v", err), op)
		return
	}

	positions := make([]strategy.Position, 0, len(req.Positions))
	for _, p := range req.Positions {
		positions = append(positions, strategy.Position{
			Symbol:   p.Symbol,
			Kind:     strategy.PositionKind(strings.ToLower(p.Kind)),
			Strike:   p.Strike,
			Quantity: p.Quantity,
			Value:    p.Value,
		})
	}

	evaluator, err := strategy.NewRiskEvaluator(h.logger, strategy.DefaultParameters(), strategy.DefaultPolicy())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	report, err := evaluator.DailyCheck(positions)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	h.metrics.ObserveDailyCheck(report)

	h.writeJSON(w, http.StatusOK, report)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(map[string]interface{})
	}
	return result, nil
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON encodes payload before writing the header so that an encoding
// failure still reaches the client as a 500.
func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		h.logger.Error("failed to encode JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(map[string]string{"error": "failed to encode response"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}

func extractScenarioNames(results []planner.Forecast) []string {
	names := make([]string, 0, len(results))
	for _, scenario := range results {
		names = append(names, scenario.Name)
	}
	return names
}

// Run serves handler on cfg.Address until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func Run(ctx context.Context, logger *zap.Logger, cfg *Config, handler http.Handler) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("op", "server.Run"),
			zap.String("address", cfg.Address),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown)
	defer cancel()
	logger.Info("server shutting down",
		zap.String("op", "server.Run"),
	)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
