package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/google/uuid"

	"taskagent/internal/application/port/output"
	"taskagent/internal/domain/entity"
	"taskagent/internal/usecase/worker"
)

// taskRequest is the submit payload. Field names mirror the stored task
// invocation contract.
type taskRequest struct {
	TaskID           string            `json:"task_id,omitempty"`
	TaskInstructions string            `json:"task_instructions"`
	LLM              entity.LLMConfig  `json:"llm"`
	BrowserConfig    *browserConfigDTO `json:"browser_config,omitempty"`
	SensitiveData    map[string]string `json:"sensitive_data,omitempty"`
	Force            bool              `json:"force,omitempty"`
}

// browserConfigDTO overlays the caller's overrides onto the defaults, so a
// request may set only the fields it cares about.
type browserConfigDTO struct {
	Headless           *bool    `json:"headless,omitempty"`
	DisableSecurity    *bool    `json:"disable_security,omitempty"`
	WindowWidth        *int     `json:"window_width,omitempty"`
	WindowHeight       *int     `json:"window_height,omitempty"`
	HighlightElements  *bool    `json:"highlight_elements,omitempty"`
	MaxSteps           *int     `json:"max_steps,omitempty"`
	FullPageScreenshot *bool    `json:"full_page_screenshot,omitempty"`
	UseVision          *bool    `json:"use_vision,omitempty"`
	SaveRecording      *bool    `json:"save_recording,omitempty"`
	RecordingPath      *string  `json:"recording_path,omitempty"`
	AllowedDomains     []string `json:"allowed_domains,omitempty"`
}

func (d *browserConfigDTO) apply(cfg *entity.BrowserConfig) {
	if d == nil {
		return
	}
	if d.Headless != nil {
		cfg.Headless = *d.Headless
	}
	if d.DisableSecurity != nil {
		cfg.DisableSecurity = *d.DisableSecurity
	}
	if d.WindowWidth != nil {
		cfg.WindowWidth = *d.WindowWidth
	}
	if d.WindowHeight != nil {
		cfg.WindowHeight = *d.WindowHeight
	}
	if d.HighlightElements != nil {
		cfg.HighlightElements = *d.HighlightElements
	}
	if d.MaxSteps != nil {
		cfg.MaxSteps = *d.MaxSteps
	}
	if d.FullPageScreenshot != nil {
		cfg.FullPageScreenshot = *d.FullPageScreenshot
	}
	if d.UseVision != nil {
		cfg.UseVision = *d.UseVision
	}
	if d.SaveRecording != nil {
		cfg.SaveRecording = *d.SaveRecording
	}
	if d.RecordingPath != nil {
		cfg.RecordingPath = *d.RecordingPath
	}
	if len(d.AllowedDomains) > 0 {
		cfg.AllowedDomains = d.AllowedDomains
	}
}

type taskResponse struct {
	TaskID string            `json:"task_id"`
	Status entity.TaskStatus `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server exposes the task runner over HTTP: submit, status, health.
type Server struct {
	pool   *worker.Pool
	store  output.TaskStorePort
	logger output.LoggerPort
}

func NewServer(pool *worker.Pool, store output.TaskStorePort, logger output.LoggerPort) *Server {
	return &Server{pool: pool, store: store, logger: logger}
}

// Router builds the chi handler with request logging attached.
func (s *Server) Router(serviceName string) http.Handler {
	requestLogger := httplog.NewLogger(serviceName, httplog.Options{
		JSON:    true,
		Concise: true,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(httplog.RequestLogger(requestLogger))

	r.Post("/tasks", s.handleSubmit)
	r.Get("/tasks/{id}", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}
	if req.TaskInstructions == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "task_instructions is required"})
		return
	}

	if req.TaskID == "" {
		req.TaskID = uuid.NewString()
	}
	browserCfg := entity.DefaultBrowserConfig()
	req.BrowserConfig.apply(&browserCfg)

	inv := entity.TaskInvocation{
		TaskID:        req.TaskID,
		Instructions:  req.TaskInstructions,
		LLM:           req.LLM,
		Browser:       browserCfg,
		SensitiveData: req.SensitiveData,
		Force:         req.Force,
	}

	if _, err := s.pool.Submit(inv); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, taskResponse{TaskID: req.TaskID, Status: entity.TaskStatusCreated})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.store.Get(r.Context(), id)
	if errors.Is(err, output.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "task not found"})
		return
	}
	if err != nil {
		s.logger.Error("task lookup failed", "task_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	resp := struct {
		TaskID string                  `json:"task_id"`
		Status entity.TaskStatus       `json:"status"`
		Result *entity.ExecutionResult `json:"result,omitempty"`
	}{TaskID: rec.ID, Status: rec.Status, Result: rec.Result}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
