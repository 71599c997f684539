package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/argo-strategy/internal/backtest/engine"
	"github.com/rxtech-lab/argo-strategy/internal/codegen"
	"github.com/rxtech-lab/argo-strategy/internal/graph"
	"github.com/rxtech-lab/argo-strategy/internal/types"
	"github.com/rxtech-lab/argo-strategy/internal/validator"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
	"github.com/rxtech-lab/argo-strategy/pkg/utils"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Code   errors.ErrorCode  `json:"code"`
	Issues []validator.Issue `json:"issues,omitempty"`
}

type backtestRequest struct {
	Strategy json.RawMessage `json:"strategy"`
	Bars     []types.Bar     `json:"bars"`
	Config   map[string]any  `json:"config,omitempty"`
}

type compileRequest struct {
	Strategy     json.RawMessage `json:"strategy"`
	StrategyName string          `json:"strategyName,omitempty"`
	MagicNumber  int             `json:"magicNumber,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf maps an error code onto the HTTP status reported for it.
func statusOf(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidParameter,
		errors.ErrCodeInvalidConfiguration,
		errors.ErrCodeInvalidPeriod,
		errors.ErrCodeMissingParameter,
		errors.ErrCodeInvalidVersion,
		errors.ErrCodeInvalidDialect,
		errors.ErrCodeStrategyParseFailed,
		errors.ErrCodeVersionMismatch,
		errors.ErrCodeUnknownCategory,
		errors.ErrCodeBacktestConfigError,
		errors.ErrCodeBacktestNoData:
		return http.StatusBadRequest
	case errors.ErrCodeStrategyInvalid,
		errors.ErrCodeUnresolvableNode:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeBacktestCancelled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{
		Error: err.Error(),
		Code:  errors.GetCode(err),
	}

	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		resp.Code = errors.ErrCodeStrategyInvalid
		resp.Issues = verr.Issues
	}

	status := statusOf(err)
	if verr != nil {
		status = http.StatusUnprocessableEntity
	}

	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	} else {
		s.log.Debug("Request rejected",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}

	writeJSON(w, status, resp)
}

// readBody reads the whole request body, bounded by maxBodyBytes.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParameter, "failed to read request body", err)
	}

	return body, nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := s.readBody(w, r)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request body", err)
	}

	return nil
}

func parseStrategy(raw json.RawMessage) (*graph.Strategy, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "strategy is required")
	}

	return graph.Parse(raw, graph.FormatJSON)
}

// handleValidate reports every issue of the posted strategy. An invalid
// strategy is still a successful request.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	strategy, err := parseStrategy(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result := s.validator.Validate(strategy)
	for _, issue := range result.Issues {
		s.metrics.issues.WithLabelValues(string(issue.Severity), string(issue.Category)).Inc()
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var req backtestRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	strategy, err := parseStrategy(req.Strategy)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	config := ""
	if len(req.Config) > 0 {
		out, err := yaml.Marshal(req.Config)
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to encode backtest config", err))
			return
		}

		config = string(out)
	}

	eng := s.newEngine()
	if err := eng.Initialize(config); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := eng.Run(r.Context(), strategy, req.Bars, engine.LifecycleCallbacks{})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.metrics.backtestTrades.Observe(float64(len(result.Trades)))
	s.metrics.backtestBars.Add(float64(result.Bars))

	s.log.Info("Backtest completed",
		zap.String("runId", result.RunID),
		zap.String("strategy", result.Strategy),
		zap.Int("bars", result.Bars),
		zap.Int("trades", len(result.Trades)),
	)

	writeJSON(w, http.StatusOK, result)
}

// handleCompile answers with the generated source as a file download.
func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(mux.Vars(r)["dialect"])

	dialect, err := codegen.ParseDialect(name)
	if err != nil {
		s.metrics.compilations.WithLabelValues(name, "rejected").Inc()
		s.writeError(w, r, err)
		return
	}

	var req compileRequest
	if err := s.decode(w, r, &req); err != nil {
		s.metrics.compilations.WithLabelValues(string(dialect), "rejected").Inc()
		s.writeError(w, r, err)
		return
	}

	strategy, err := parseStrategy(req.Strategy)
	if err != nil {
		s.metrics.compilations.WithLabelValues(string(dialect), "rejected").Inc()
		s.writeError(w, r, err)
		return
	}

	source, err := s.generator.Compile(strategy, codegen.Options{
		Dialect:      dialect,
		StrategyName: req.StrategyName,
		MagicNumber:  req.MagicNumber,
	})
	if err != nil {
		s.metrics.compilations.WithLabelValues(string(dialect), "failed").Inc()
		s.writeError(w, r, err)
		return
	}

	s.metrics.compilations.WithLabelValues(string(dialect), "ok").Inc()

	file := codegen.FileName(firstNonEmpty(req.StrategyName, strategy.Name, strategy.ID)) + dialect.Extension()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, source)
}

func (s *Server) handleConfigSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := s.newEngine().GetConfigSchema()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, schema)
}

func (s *Server) handleStrategySchema(w http.ResponseWriter, r *http.Request) {
	schema, err := utils.StrategySchema()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, schema)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
