package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"finrag/internal/display"
	"finrag/internal/domain"
	"finrag/internal/usecase"
)

// maxUploadBytes bounds the multipart body of a document upload.
const maxUploadBytes = 50 << 20

// defaultQueries drive the role-specific landing views.
var defaultQueries = map[string]string{
	"ceo":               "summary",
	"inventory_manager": "inventory",
	"owner":             "segment",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, StandardResponse{Success: true, Data: map[string]string{"status": "ok"}})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, err := s.creds.Authenticate(req.Username, req.Password)
	if err != nil {
		s.logger.Printf("login failed for %q", req.Username)
		errorResponse(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	sess := s.sessions.Create(user)
	http.SetCookie(w, s.signer.Issue(sess.ID))

	jsonResponse(w, http.StatusOK, StandardResponse{Success: true, Data: LoginResponse{
		Username: user.Username,
		Name:     user.Name,
		Role:     user.Role,
		Company:  user.Company,
	}})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	s.sessions.Delete(sess.ID)
	http.SetCookie(w, s.signer.Expire())
	jsonResponse(w, http.StatusOK, StandardResponse{Success: true})
}

// handleDashboard answers the role's default query and parses any tables out
// of the answer for charting.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	query, ok := defaultQueries[sess.Role]
	if !ok {
		query = "summary"
	}

	answer, cached := s.answers.Get(query, sess.Role, sess.Company)
	if !cached {
		var err error
		answer, _, err = s.answerer.Answer(query, sess.Role, sess.Company)
		if err != nil {
			s.logger.Printf("dashboard answer failed for %s: %v", sess.Username, err)
		} else {
			s.answers.Put(query, sess.Role, sess.Company, answer)
		}
	}

	resp := DashboardResponse{
		Role:    sess.Role,
		Company: sess.Company,
		Query:   query,
		Answer:  answer,
	}
	for _, t := range display.ParseMarkdownTables(answer) {
		td := TableData{Headers: t.Headers, Rows: t.Rows}
		labels, series := t.ChartData()
		if len(series) > 0 {
			td.Labels = labels
			for _, sr := range series {
				td.Series = append(td.Series, ChartLine{Label: sr.Label, Values: sr.Values})
			}
		}
		resp.Tables = append(resp.Tables, td)
	}

	jsonResponse(w, http.StatusOK, StandardResponse{Success: true, Data: resp})
}

// handleQuery runs raw retrieval scoped to the caller's role and company.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		errorResponse(w, http.StatusBadRequest, "query is required")
		return
	}

	results, err := s.retriever.Retrieve(req.Query, sess.Role, sess.Company, req.TopK)
	if err != nil {
		s.logger.Printf("retrieval failed for %s: %v", sess.Username, err)
		errorResponse(w, http.StatusInternalServerError, "retrieval failed")
		return
	}

	resp := QueryResponse{Results: make([]QueryResult, len(results))}
	for i, res := range results {
		resp.Results[i] = QueryResult{
			Content:  res.Chunk.Content,
			Distance: res.Distance,
			Metadata: res.Chunk.Metadata,
		}
	}
	jsonResponse(w, http.StatusOK, StandardResponse{Success: true, Data: resp})
}

// handleChat answers a question with role-scoped context and records the turn
// on the session transcript.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		errorResponse(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, _, err := s.answerer.Answer(req.Question, sess.Role, sess.Company)
	if err != nil {
		s.logger.Printf("chat answer failed for %s: %v", sess.Username, err)
	}

	s.sessions.AppendHistory(sess.ID,
		domain.ChatMessage{Role: "user", Message: req.Question},
		domain.ChatMessage{Role: "assistant", Message: answer},
	)

	jsonResponse(w, http.StatusOK, StandardResponse{Success: true, Data: ChatResponse{
		Answer:  answer,
		History: s.sessions.History(sess.ID),
	}})
}

// handleUpload accepts a document, extracts its text, validates the word
// bounds and ingests the chunks under the uploader's role.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	staged, err := s.stageFile(file, header.Filename)
	if err != nil {
		s.logger.Printf("staging failed: %v", err)
		errorResponse(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer os.Remove(staged)

	text, err := s.extractor.Extract(staged)
	if err != nil {
		s.logger.Printf("extraction failed for %s: %v", header.Filename, err)
		errorResponse(w, http.StatusUnprocessableEntity, "failed to extract document text")
		return
	}

	if err := usecase.ValidateExtractedText(text, s.cfg.Ingest.MinWords, s.cfg.Ingest.MaxWords); err != nil {
		errorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	company := r.FormValue("company")
	if company == "" {
		company = sess.Company
	}
	meta := domain.Metadata{
		Roles:      []string{sess.Role},
		Company:    company,
		Statement:  r.FormValue("statement"),
		FiscalYear: r.FormValue("fiscal_year"),
		Source:     filepath.Base(header.Filename),
		User:       sess.Username,
	}

	result, err := s.ingestor.IngestText(text, meta)
	if err != nil {
		s.logger.Printf("ingestion failed for %s: %v", header.Filename, err)
		errorResponse(w, http.StatusInternalServerError, "failed to ingest document")
		return
	}

	s.answers.Invalidate()

	s.logger.Printf("ingested %s: %d new chunks, %d total", header.Filename, result.ChunksAdded, result.TotalChunks)
	jsonResponse(w, http.StatusOK, StandardResponse{Success: true, Data: UploadResponse{
		Filename:    header.Filename,
		ChunksAdded: result.ChunksAdded,
		TotalChunks: result.TotalChunks,
	}})
}

// stageFile writes an upload to the staging directory under a collision-free
// name and returns the path.
func (s *Server) stageFile(file io.Reader, filename string) (string, error) {
	dir := s.cfg.Server.StagingDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create staging dir: %w", err)
	}

	name := uuid.NewString() + "_" + filepath.Base(filename)
	path := filepath.Join(dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}
	return path, nil
}
