package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voltcast/forecast-api/internal/report"
	"github.com/voltcast/forecast-api/internal/simulation"
	"github.com/voltcast/forecast-api/internal/types"
)

// heartbeatInterval is the longest the stream may stay silent before a
// heartbeat is emitted, so intermediate proxies keep the connection
// open.
const heartbeatInterval = 15 * time.Second

// StreamHandler serves the forecast endpoint as a server-sent-event
// stream: progress events through provider resolution and the
// simulation loop, narrative chunks as they arrive, and a terminal
// complete (or error) event.
type StreamHandler struct {
	deps   *Dependencies
	logger *slog.Logger
}

// NewStreamHandler creates the handler with its dependencies.
func NewStreamHandler(deps *Dependencies) *StreamHandler {
	return &StreamHandler{deps: deps, logger: deps.Logger}
}

// eventStream serializes SSE writes. All pipeline events are sent from
// the request goroutine; the mutex exists for the heartbeat goroutine,
// which only fires while the pipeline is silent.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher

	mu   sync.Mutex
	last time.Time
	dead bool
}

func newEventStream(w http.ResponseWriter) (*eventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}
	return &eventStream{w: w, flusher: flusher, last: time.Now()}, nil
}

// send writes one `data: <json>\n\n` frame and flushes. A write error
// marks the stream dead; subsequent sends are no-ops reporting the
// client is gone.
func (s *eventStream) send(payload interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dead {
		return errors.New("client gone")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		s.dead = true
		return err
	}
	s.flusher.Flush()
	s.last = time.Now()
	return nil
}

// sendIfIdle emits a heartbeat only when nothing else has been written
// for the given duration.
func (s *eventStream) sendIfIdle(idle time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dead || time.Since(s.last) < idle {
		return
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", `{"status":"heartbeat"}`); err != nil {
		s.dead = true
		return
	}
	s.flusher.Flush()
	s.last = time.Now()
}

// HandleForecastStream runs the pipeline while emitting SSE events.
// Malformed input fails before the stream opens (plain 400); once the
// stream is open every failure is a terminal error event, and client
// disconnects end the run silently at the next safe point.
func (h *StreamHandler) HandleForecastStream(c *gin.Context) {
	const operation = "forecast_stream"

	var req types.ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid request body", "invalid_json")
		return
	}
	if err := req.Validate(); err != nil {
		RespondWithError(c, http.StatusBadRequest, err.Error(), "invalid_input")
		return
	}

	LogRequest(h.logger, c, operation, map[string]interface{}{
		"latitude": *req.Latitude, "longitude": *req.Longitude,
		"size": req.Size, "custom": req.Custom, "hours": req.Hours(),
	})

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)

	stream, err := newEventStream(c.Writer)
	if err != nil {
		h.logger.Error("streaming unsupported", "error", err)
		return
	}

	ctx := c.Request.Context()

	// Keep proxies alive through silent stretches (slow providers, the
	// narrative producer thinking).
	heartbeatDone := make(chan struct{})
	defer close(heartbeatDone)
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-heartbeatDone:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				stream.sendIfIdle(heartbeatInterval)
			}
		}
	}()

	p := newPipeline(h.deps, &req)

	if stream.send(gin.H{"status": "started", "step": "initializing"}) != nil {
		return
	}

	if stream.send(gin.H{"status": "progress", "step": "fetching_location_data"}) != nil {
		return
	}
	p.fetchLocation(ctx)

	if stream.send(gin.H{"status": "progress", "step": "fetching_energy_data"}) != nil {
		return
	}
	if stream.send(gin.H{"status": "progress", "step": "fetching_climate_data"}) != nil {
		return
	}
	p.fetchEnvironment(ctx)

	if stream.send(gin.H{"status": "progress", "step": "preparing_simulation", "hours": p.hours}) != nil {
		return
	}
	if stream.send(gin.H{"status": "simulating", "hours_total": p.hours}) != nil {
		return
	}

	var sinkErr error
	sink := simulation.SinkFunc(func(prog simulation.Progress) {
		if sinkErr != nil {
			return
		}
		sinkErr = stream.send(gin.H{
			"status":                  "simulation_progress",
			"hours_completed":         prog.HoursCompleted,
			"percent_complete":        round(prog.PercentComplete, 1),
			"current_avg_power_kw":    round(prog.AvgPowerKW, 2),
			"current_avg_utilization": round(prog.AvgUtilization, 2),
			"current_avg_pue":         round(prog.AvgPUE, 3),
		})
	})

	result, err := p.simulate(ctx, nil, sink)
	if err != nil {
		if errors.Is(err, simulation.ErrCanceled) || ctx.Err() != nil {
			return // client gone, no report
		}
		h.logger.Error("simulation failed", "error", types.NewSimulationError(err))
		stream.send(gin.H{"status": "error", "message": "simulation failed"})
		return
	}
	if sinkErr != nil {
		return // progress write failed mid-loop, client gone
	}

	if stream.send(gin.H{"status": "progress", "step": "calculating_costs"}) != nil {
		return
	}
	doc := p.buildReport(result, "")

	if stream.send(gin.H{"status": "progress", "step": "generating_analysis"}) != nil {
		return
	}
	doc.Analysis = h.streamAnalysis(c, stream, doc)

	if ctx.Err() != nil {
		return
	}

	if stream.send(gin.H{"status": "complete", "report": doc}) != nil {
		return
	}

	p.persistReport(doc)
	LogResponse(h.logger, operation, http.StatusOK, map[string]interface{}{
		"annual_mwh": doc.Simulation.AnnualMWh,
		"region":     doc.Location.GridRegion,
	})
}

// streamAnalysis forwards narrative chunks to the client as they
// arrive and returns the accumulated text. A producer failure emits an
// analysis_error event and becomes the narrative text; the stream
// continues to completion either way.
func (h *StreamHandler) streamAnalysis(c *gin.Context, stream *eventStream, doc *report.Report) string {
	var chunks []byte
	err := h.deps.Narrative.Stream(c.Request.Context(), report.NarrativePrompt(doc), func(chunk string) error {
		chunks = append(chunks, chunk...)
		return stream.send(gin.H{"status": "analysis_chunk", "text": chunk})
	})
	if err != nil {
		if c.Request.Context().Err() != nil {
			return string(chunks)
		}
		h.logger.Warn("narrative generation failed", "error", err)
		stream.send(gin.H{"status": "analysis_error", "message": err.Error()})
		return "Error generating analysis: " + err.Error()
	}
	return string(chunks)
}

func round(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}
