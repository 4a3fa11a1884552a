package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.mistral.ai/v1"

// extractionPrompt asks the model for chart-ready markdown; the ingestion
// pipeline splits its output on blank lines.
const extractionPrompt = "Extract all financial tables (Balance Sheet, P&L, Cash Flow) and KPIs " +
	"in clean markdown format suitable for dashboards and charting."

// Mistral extracts markdown from a PDF via the Mistral OCR flow: upload the
// file, fetch a signed URL, then ask a chat model to read the document at
// that URL.
type Mistral struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewMistral creates the remote extractor. A missing API key fails fast.
func NewMistral(apiKeyEnv, model, baseURL string) (*Mistral, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("extractor unavailable: API key not found in environment variable %s", apiKeyEnv)
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Mistral{
		client:  &http.Client{Timeout: 300 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
	}, nil
}

type fileUploadResponse struct {
	ID string `json:"id"`
}

type signedURLResponse struct {
	URL string `json:"url"`
}

type documentChatRequest struct {
	Model    string            `json:"model"`
	Messages []documentMessage `json:"messages"`
}

type documentMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	DocumentURL string `json:"document_url,omitempty"`
}

type documentChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Extract uploads the PDF at path and returns the extracted markdown text.
func (m *Mistral) Extract(path string) (string, error) {
	fileID, err := m.uploadFile(path)
	if err != nil {
		return "", err
	}

	signedURL, err := m.signedURL(fileID)
	if err != nil {
		return "", err
	}

	return m.extractFromURL(signedURL)
}

func (m *Mistral) uploadFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("purpose", "ocr"); err != nil {
		return "", err
	}
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("failed to buffer upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", m.baseURL+"/files", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	var uploadResp fileUploadResponse
	if err := m.do(req, &uploadResp); err != nil {
		return "", fmt.Errorf("file upload failed: %w", err)
	}
	if uploadResp.ID == "" {
		return "", fmt.Errorf("file upload returned no file ID")
	}
	return uploadResp.ID, nil
}

func (m *Mistral) signedURL(fileID string) (string, error) {
	req, err := http.NewRequest("GET", m.baseURL+"/files/"+fileID+"/url", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	var urlResp signedURLResponse
	if err := m.do(req, &urlResp); err != nil {
		return "", fmt.Errorf("signed URL request failed: %w", err)
	}
	if urlResp.URL == "" {
		return "", fmt.Errorf("signed URL response was empty")
	}
	return urlResp.URL, nil
}

func (m *Mistral) extractFromURL(signedURL string) (string, error) {
	chatReq := documentChatRequest{
		Model: m.model,
		Messages: []documentMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: extractionPrompt},
				{Type: "document_url", DocumentURL: signedURL},
			},
		}},
	}

	jsonData, err := json.Marshal(chatReq)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", m.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	var chatResp documentChatResponse
	if err := m.do(req, &chatResp); err != nil {
		return "", fmt.Errorf("document extraction failed: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("extraction API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("extraction API returned no choices")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

func (m *Mistral) do(req *http.Request, out any) error {
	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}
