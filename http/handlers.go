package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"fraudscore/db"
	"fraudscore/features"
	"fraudscore/ml"
	"fraudscore/monitoring"
	"fraudscore/scoring"
)

const (
	defaultScoresLimit = 50
	maxScoresLimit     = 500
)

// AuditStore persists scoring decisions. *db.Store implements it.
type AuditStore interface {
	SaveScore(ctx context.Context, rec db.ScoreRecord) (db.ScoreRecord, error)
	ListScores(ctx context.Context, limit int) ([]db.ScoreRecord, error)
	CountByBand(ctx context.Context) (map[scoring.RiskBand]int, error)
	ListModelLoads(ctx context.Context) ([]db.ModelLoad, error)
}

// Publisher pushes events to live feed clients. *monitoring.Hub implements it.
type Publisher interface {
	Publish(t monitoring.MessageType, data any) error
}

// Deps are the collaborators the handlers need. Only Scorer and Logger are
// required; the audit, metrics, feed and /metrics routes are skipped when
// their dependency is nil.
type Deps struct {
	Scorer    scoring.Scorer
	Model     ml.Info
	Store     AuditStore
	Metrics   *monitoring.Metrics
	Publisher Publisher
	Hub       *monitoring.Hub
	Gatherer  prometheus.Gatherer
	Logger    *zap.Logger
}

type handlers struct {
	Deps
}

// RegisterHandlers mounts the API on mux.
func RegisterHandlers(mux *http.ServeMux, deps Deps) {
	h := &handlers{Deps: deps}

	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/score", h.handleScore)
	mux.HandleFunc("GET /api/schema", h.handleSchema)
	mux.HandleFunc("GET /api/model", h.handleModel)
	mux.HandleFunc("GET /api/scores", h.handleScores)

	if deps.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}
	if deps.Hub != nil {
		mux.HandleFunc("GET /api/ws/scores", deps.Hub.HandleWebSocket)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type scoreRequest struct {
	Features map[string]any `json:"features"`
}

type scoreResponse struct {
	ID           string           `json:"id"`
	RequestID    string           `json:"request_id,omitempty"`
	Probability  float64          `json:"probability"`
	Band         scoring.RiskBand `json:"band"`
	Label        string           `json:"label"`
	Percentage   string           `json:"percentage"`
	Display      string           `json:"display"`
	Level        string           `json:"level"`
	Message      string           `json:"message"`
	ModelVersion string           `json:"model_version"`
}

type errorBody struct {
	Error     string   `json:"error"`
	Reason    string   `json:"reason,omitempty"`
	Feature   string   `json:"feature,omitempty"`
	Value     any      `json:"value,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Expected  string   `json:"expected,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

func (h *handlers) handleScore(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	var req scoreRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, errorBody{Error: "request body too large", RequestID: requestID})
			return
		}
		writeError(w, http.StatusBadRequest, errorBody{Error: "malformed JSON body: " + err.Error(), RequestID: requestID})
		return
	}
	if dec.More() {
		writeError(w, http.StatusBadRequest, errorBody{Error: "unexpected data after JSON body", RequestID: requestID})
		return
	}
	if req.Features == nil {
		writeError(w, http.StatusBadRequest, errorBody{Error: `"features" object is required`, RequestID: requestID})
		return
	}

	raw, err := normalizeKeys(req.Features)
	if err != nil {
		writeError(w, http.StatusBadRequest, errorBody{Error: err.Error(), RequestID: requestID})
		return
	}

	start := time.Now()
	res, err := h.Scorer.Score(raw)
	if h.Metrics != nil {
		h.Metrics.ObserveScore(res, err, time.Since(start))
	}
	if err != nil {
		h.writeScoreError(w, err, requestID)
		return
	}

	resp := newScoreResponse(uuid.NewString(), requestID, res, h.Model.Version)
	h.audit(r.Context(), raw, resp)
	if h.Publisher != nil {
		if err := h.Publisher.Publish(monitoring.ScoreEvent, resp); err != nil {
			h.Logger.Warn("publish score event", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func newScoreResponse(id, requestID string, res scoring.Result, modelVersion string) scoreResponse {
	pct := res.Percentage().StringFixed(3)
	return scoreResponse{
		ID:           id,
		RequestID:    requestID,
		Probability:  res.Probability,
		Band:         res.Band,
		Label:        res.Band.Label(),
		Percentage:   pct,
		Display:      fmt.Sprintf("Probability of Fraud: %s %%", pct),
		Level:        res.Band.Level(),
		Message:      res.Band.Message(),
		ModelVersion: modelVersion,
	}
}

// audit records the decision. A failed write is logged and does not fail the
// request: the score has already been computed and is returned either way.
func (h *handlers) audit(ctx context.Context, raw map[string]any, resp scoreResponse) {
	if h.Store == nil {
		return
	}
	v, err := h.Scorer.Schema().Validate(raw)
	if err != nil {
		h.Logger.Error("re-validate audited record", zap.Error(err))
		return
	}
	_, err = h.Store.SaveScore(ctx, db.ScoreRecord{
		ID:           resp.ID,
		RequestID:    resp.RequestID,
		Probability:  resp.Probability,
		Band:         resp.Band,
		ModelVersion: resp.ModelVersion,
		Features:     v.Map(),
	})
	if err != nil {
		h.Logger.Error("audit score", zap.String("score_id", resp.ID), zap.Error(err))
	}
}

func (h *handlers) writeScoreError(w http.ResponseWriter, err error, requestID string) {
	if errors.Is(err, features.ErrValidation) {
		body := validationBody(err)
		body.RequestID = requestID
		writeError(w, http.StatusUnprocessableEntity, body)
		return
	}

	if scoring.IsDefect(err) {
		h.Logger.Error("scoring defect", zap.String("request_id", requestID), zap.Error(err))
	} else {
		h.Logger.Error("scoring failed", zap.String("request_id", requestID), zap.Error(err))
	}
	writeError(w, http.StatusInternalServerError, errorBody{Error: "internal scoring error", RequestID: requestID})
}

func validationBody(err error) errorBody {
	body := errorBody{Error: err.Error(), Reason: monitoring.ValidationReason(err)}

	var (
		missing  *features.MissingFeatureError
		unknown  *features.UnknownFeatureError
		rng      *features.OutOfRangeError
		mismatch *features.TypeMismatchError
	)
	switch {
	case errors.As(err, &missing):
		body.Feature = missing.Name
	case errors.As(err, &unknown):
		body.Feature = unknown.Name
	case errors.As(err, &rng):
		body.Feature = rng.Name
		body.Value = rng.Value
		body.Min = &rng.Min
		body.Max = &rng.Max
	case errors.As(err, &mismatch):
		body.Feature = mismatch.Name
		body.Value = mismatch.Value
		body.Expected = mismatch.Want.String()
	}
	return body
}

// normalizeKeys NFC-normalizes feature names so visually identical names
// written with different Unicode compositions resolve to the same feature.
// Nothing else is rewritten: a padded or misspelled name stays unknown.
func normalizeKeys(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for k, v := range in {
		name := norm.NFC.String(k)
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("feature %q given more than once", name)
		}
		out[name] = v
	}
	return out, nil
}

func (h *handlers) handleSchema(w http.ResponseWriter, r *http.Request) {
	schema := h.Scorer.Schema()
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    schema.Len(),
		"features": schema.All(),
	})
}

func (h *handlers) handleModel(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"model":           h.Model,
		"low_threshold":   scoring.LowThreshold,
		"high_threshold":  scoring.HighThreshold,
		"schema_features": h.Scorer.Schema().Len(),
	}
	if h.Store != nil {
		loads, err := h.Store.ListModelLoads(r.Context())
		if err != nil {
			h.Logger.Error("list model loads", zap.Error(err))
			writeError(w, http.StatusInternalServerError, errorBody{Error: "failed to list model loads"})
			return
		}
		body["history"] = loads
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *handlers) handleScores(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeError(w, http.StatusServiceUnavailable, errorBody{Error: "audit log is disabled"})
		return
	}

	limit := defaultScoresLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		l, err := strconv.Atoi(s)
		if err != nil || l <= 0 {
			writeError(w, http.StatusBadRequest, errorBody{Error: "limit must be a positive integer"})
			return
		}
		limit = min(l, maxScoresLimit)
	}

	records, err := h.Store.ListScores(r.Context(), limit)
	if err != nil {
		h.Logger.Error("list scores", zap.Error(err))
		writeError(w, http.StatusInternalServerError, errorBody{Error: "failed to list scores"})
		return
	}
	bands, err := h.Store.CountByBand(r.Context())
	if err != nil {
		h.Logger.Error("count scores by band", zap.Error(err))
		writeError(w, http.StatusInternalServerError, errorBody{Error: "failed to list scores"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(records), "data": records, "bands": bands})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, body errorBody) {
	writeJSON(w, status, body)
}
