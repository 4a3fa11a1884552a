package server

import "finrag/internal/domain"

// StandardResponse wraps every API response. Clients check "success" first
// and display "error" when it is false.
type StandardResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Company  string `json:"company,omitempty"`
}

type QueryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

type QueryResult struct {
	Content  string          `json:"content"`
	Distance float64         `json:"distance"`
	Metadata domain.Metadata `json:"metadata"`
}

type QueryResponse struct {
	Results []QueryResult `json:"results"`
}

type ChatRequest struct {
	Question string `json:"question"`
}

type ChatResponse struct {
	Answer  string               `json:"answer"`
	History []domain.ChatMessage `json:"history"`
}

// TableData is a chart-ready table extracted from an answer.
type TableData struct {
	Headers []string    `json:"headers"`
	Rows    [][]string  `json:"rows"`
	Labels  []string    `json:"labels,omitempty"`
	Series  []ChartLine `json:"series,omitempty"`
}

type ChartLine struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// DashboardResponse is the role-specific landing view: the answer to the
// role's default query plus any tables parsed out of it.
type DashboardResponse struct {
	Role    string      `json:"role"`
	Company string      `json:"company,omitempty"`
	Query   string      `json:"query"`
	Answer  string      `json:"answer"`
	Tables  []TableData `json:"tables,omitempty"`
}

type UploadResponse struct {
	Filename    string `json:"filename"`
	ChunksAdded int    `json:"chunks_added"`
	TotalChunks int    `json:"total_chunks"`
}
