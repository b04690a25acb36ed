// Package backend wraps the remote legal-analysis service. It owns transport
// concerns only: request shaping, pacing, status handling, and top-level JSON
// decoding. Payload shapes are left to the report package.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const defaultHTTPTimeout = 2 * time.Minute

// ChatMessage is one turn of the follow-up conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UploadResult is the only upload response field set the client depends on:
// DocID must be present and non-empty, the rest is descriptive.
type UploadResult struct {
	DocID      string `json:"doc_id"`
	GSPath     string `json:"gs_path,omitempty"`
	Message    string `json:"message,omitempty"`
	CorpusName string `json:"corpus_name,omitempty"`
}

// ChatReply carries the assistant's answer. The payload is passed through,
// not normalized.
type ChatReply struct {
	Response string `json:"response"`
}

// Client is the surface the rest of the application talks to.
type Client interface {
	Upload(ctx context.Context, name string, data []byte) (UploadResult, error)
	Summarize(ctx context.Context, docID, displayName string) (json.RawMessage, error)
	ExtractRisks(ctx context.Context, docID string) (json.RawMessage, error)
	Chat(ctx context.Context, docID, sessionID string, messages []ChatMessage) (ChatReply, error)
	Name() string
}

// Config describes how to build an HTTP client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Pacer      *Pacer
}

type httpClient struct {
	base   string
	client *http.Client
	pacer  *Pacer
}

// New returns a Client for the service at cfg.BaseURL.
func New(cfg Config) Client {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &httpClient{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		client: client,
		pacer:  cfg.Pacer,
	}
}

func (c *httpClient) Name() string {
	return fmt.Sprintf("LegalLens backend (%s)", c.base)
}

func (c *httpClient) Upload(ctx context.Context, name string, data []byte) (UploadResult, error) {
	if len(data) == 0 {
		return UploadResult{}, fmt.Errorf("document is empty; nothing to upload")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return UploadResult{}, err
	}
	if _, err := part.Write(data); err != nil {
		return UploadResult{}, err
	}
	if err := writer.Close(); err != nil {
		return UploadResult{}, err
	}

	raw, err := c.do(ctx, "/upload", writer.FormDataContentType(), &body)
	if err != nil {
		return UploadResult{}, err
	}
	var result UploadResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return UploadResult{}, fmt.Errorf("decoding upload response: %w", err)
	}
	if strings.TrimSpace(result.DocID) == "" {
		return UploadResult{}, fmt.Errorf("upload succeeded but the response carried no doc_id")
	}
	return result, nil
}

func (c *httpClient) Summarize(ctx context.Context, docID, displayName string) (json.RawMessage, error) {
	payload := map[string]any{"doc_id": docID}
	if displayName != "" {
		payload["display_name"] = displayName
	}
	return c.postJSON(ctx, "/summarize", payload)
}

func (c *httpClient) ExtractRisks(ctx context.Context, docID string) (json.RawMessage, error) {
	return c.postJSON(ctx, "/risks", map[string]any{"doc_id": docID})
}

func (c *httpClient) Chat(ctx context.Context, docID, sessionID string, messages []ChatMessage) (ChatReply, error) {
	raw, err := c.postJSON(ctx, "/chat", map[string]any{
		"doc_id":     docID,
		"session_id": sessionID,
		"messages":   messages,
	})
	if err != nil {
		return ChatReply{}, err
	}
	var reply ChatReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return ChatReply{}, fmt.Errorf("decoding chat response: %w", err)
	}
	return reply, nil
}

// postJSON sends one JSON request and returns the raw, validated response
// body. Shape interpretation happens upstream.
func (c *httpClient) postJSON(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, path, "application/json", bytes.NewReader(buf))
}

func (c *httpClient) do(ctx context.Context, path, contentType string, body io.Reader) (json.RawMessage, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		excerpt := data
		if len(excerpt) > 512 {
			excerpt = excerpt[:512]
		}
		return nil, fmt.Errorf("backend error on %s: %s (%s)", path, resp.Status, string(excerpt))
	}

	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("backend returned non-JSON on %s: %w", path, err)
	}
	return raw, nil
}
