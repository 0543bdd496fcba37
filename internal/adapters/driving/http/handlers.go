package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/swaggo/swag"

	_ "github.com/custodia-labs/sercha-papers/docs"
	"github.com/custodia-labs/sercha-papers/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"failed to download pdf"`
}

// HealthResponse reports liveness and the configured capabilities
// @Description Health status with capability flags
type HealthResponse struct {
	Status          string `json:"status" example:"ok"`
	Store           string `json:"store,omitempty" example:"postgres"`
	Lock            string `json:"lock,omitempty" example:"redis"`
	CanIngest       bool   `json:"can_ingest"`
	CanRetrieve     bool   `json:"can_retrieve"`
	HiResExtraction bool   `json:"hi_res_extraction"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// ReadyResponse reports each dependency check
// @Description Readiness status with per-dependency results
type ReadyResponse struct {
	Status string            `json:"status" example:"ready"`
	Checks map[string]string `json:"checks"`
}

// TakeNotesRequest asks for a paper to be ingested
// @Description Paper to ingest. pagesToDelete is a comma separated list such as "3,5".
type TakeNotesRequest struct {
	Name          string   `json:"name" example:"Attention Is All You Need"`
	PaperURL      string   `json:"paperUrl" example:"https://arxiv.org/pdf/1706.03762"`
	PagesToDelete pageList `json:"pagesToDelete,omitempty" swaggertype:"string" example:"3,5"`
}

// QARequest asks a question about an ingested paper
// @Description Question about an ingested paper
type QARequest struct {
	Question string `json:"question" example:"What is multi-head attention?"`
	PaperURL string `json:"paperUrl" example:"https://arxiv.org/pdf/1706.03762"`
}

// PaperResponse is a stored paper without its full text
// @Description Stored paper with its notes
type PaperResponse struct {
	URL       string        `json:"url"`
	Name      string        `json:"name"`
	Notes     []domain.Note `json:"notes"`
	CreatedAt time.Time     `json:"createdAt"`
}

// pageList accepts "3,5" or [3, 5]. Non-integers and non-positive values
// are dropped either way.
type pageList []int

func (p *pageList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = domain.ParsePageList(s)
		return nil
	}

	var raw []json.Number
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	pages := make([]int, 0, len(raw))
	for _, n := range raw {
		if v, err := strconv.Atoi(n.String()); err == nil && v > 0 {
			pages = append(pages, v)
		}
	}
	if len(pages) == 0 {
		pages = nil
	}
	*p = pages
	return nil
}

// Health endpoints

// handleRoot godoc
// @Summary      Liveness probe
// @Tags         Health
// @Produce      plain
// @Success      200  {string}  string  "ok"
// @Router       / [get]
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API and which capabilities are configured
// @Tags         Health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if c := s.capabilities; c != nil {
		resp.Store = c.StoreBackend
		resp.Lock = c.LockBackend
		resp.CanIngest = c.CanIngest()
		resp.CanRetrieve = c.CanRetrieve()
		resp.HiResExtraction = c.HiResExtractionAvailable()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Pings the configured store and lock backends
// @Tags         Health
// @Produce      json
// @Success      200  {object}  ReadyResponse
// @Failure      503  {object}  ReadyResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := ReadyResponse{Status: "ready", Checks: make(map[string]string)}
	status := http.StatusOK

	for name, dep := range s.dependencies {
		if dep == nil {
			continue
		}
		if err := dep.Ping(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", "dependency", name, "error", err)
			resp.Checks[name] = "unavailable"
			resp.Status = "not ready"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	writeJSON(w, status, resp)
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version})
}

func (s *Server) handleSwaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusNotFound, "api documentation not available")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// Paper endpoints

// handleTakeNotes godoc
// @Summary      Ingest a paper and generate notes
// @Description  Fetches the PDF, deletes the requested pages, extracts its text and returns the generated notes. A paper that is already stored returns its notes without re-running anything.
// @Tags         Papers
// @Accept       json
// @Produce      json
// @Param        request  body      TakeNotesRequest  true  "Paper to ingest"
// @Success      200      {array}   domain.Note
// @Failure      400      {object}  ErrorResponse  "Invalid request body or missing fields"
// @Failure      500      {object}  ErrorResponse  "Pipeline failure"
// @Router       /take_notes [post]
func (s *Server) handleTakeNotes(w http.ResponseWriter, r *http.Request) {
	var req TakeNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.PaperURL) == "" {
		writeError(w, http.StatusBadRequest, "name and paperUrl are required")
		return
	}

	result, err := s.ingestionService.Ingest(r.Context(), domain.IngestRequest{
		Name:          req.Name,
		PaperURL:      req.PaperURL,
		PagesToDelete: req.PagesToDelete,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result.Notes)
}

// handleQA godoc
// @Summary      Ask a question about a paper
// @Description  Answers from the paper's most relevant passages, falling back to its full text when no passages are indexed.
// @Tags         Papers
// @Accept       json
// @Produce      json
// @Param        request  body      QARequest  true  "Question"
// @Success      200      {array}   domain.Answer
// @Failure      400      {object}  ErrorResponse  "Invalid request body or missing fields"
// @Failure      500      {object}  ErrorResponse  "Paper not found or generation failure"
// @Router       /qa [post]
func (s *Server) handleQA(w http.ResponseWriter, r *http.Request) {
	var req QARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" || strings.TrimSpace(req.PaperURL) == "" {
		writeError(w, http.StatusBadRequest, "question and paperUrl are required")
		return
	}

	answers, err := s.qaService.Answer(r.Context(), req.Question, req.PaperURL)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, answers)
}

// handleGetPaper godoc
// @Summary      Get a stored paper
// @Description  Returns the paper's name and notes so a client can reload them
// @Tags         Papers
// @Produce      json
// @Param        url  query     string  true  "Paper URL"
// @Success      200  {object}  PaperResponse
// @Failure      400  {object}  ErrorResponse  "Missing url"
// @Failure      404  {object}  ErrorResponse  "Paper not found"
// @Router       /papers [get]
func (s *Server) handleGetPaper(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if strings.TrimSpace(url) == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	paper, err := s.paperService.Get(r.Context(), url)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, PaperResponse{
		URL:       paper.URL,
		Name:      paper.Name,
		Notes:     paper.Notes,
		CreatedAt: paper.CreatedAt,
	})
}

// handleHistory godoc
// @Summary      List questions asked about a paper
// @Tags         Papers
// @Produce      json
// @Param        url    query     string  true   "Paper URL"
// @Param        limit  query     int     false  "Maximum records (default 50)"
// @Success      200    {array}   domain.QARecord
// @Failure      400    {object}  ErrorResponse  "Missing url"
// @Failure      500    {object}  ErrorResponse  "Store failure"
// @Router       /papers/history [get]
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if strings.TrimSpace(url) == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = v
	}

	records, err := s.paperService.History(r.Context(), url, limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// writeServiceError maps a service error to a status code. Only the
// error's kind is returned to the caller; the cause is logged.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch domain.Kind(err) {
	case domain.ErrInvalidInput:
		status = http.StatusBadRequest
	case domain.ErrPaperNotFound:
		if r.Method == http.MethodGet {
			status = http.StatusNotFound
		}
	}

	s.logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"error", err,
	)
	writeError(w, status, domain.PublicMessage(err))
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
