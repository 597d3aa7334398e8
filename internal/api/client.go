// Package api is the client for the AREPAS inference and review
// backend. Every operation maps to one endpoint; non-2xx responses are
// normalized into *Error carrying the HTTP status and the server's
// error message. Retry policy, if any, belongs to the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

// Error is a failed backend call.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: status %d", e.Status)
	}
	return fmt.Sprintf("backend: %s (status %d)", e.Message, e.Status)
}

// Client provides typed access to the backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		log: slog.Default(),
	}
}

// WithLogger sets the logger used for local diagnostics.
func (c *Client) WithLogger(log *slog.Logger) *Client {
	c.log = log
	return c
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// decodeError turns a non-2xx response into *Error, pulling the
// message out of the standard {error: "..."} body when present.
func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	}
	return apiErr
}

func (c *Client) getJSON(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) postMultipart(ctx context.Context, path string, build func(*multipart.Writer) error, result any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := build(mw); err != nil {
		return fmt.Errorf("build form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Predict submits the whole batch in a single multipart request and
// returns one result per file, in input order.
func (c *Client) Predict(ctx context.Context, files []File) ([]PredictionResult, error) {
	var results []PredictionResult
	err := c.postMultipart(ctx, "/api/predict", func(mw *multipart.Writer) error {
		for _, f := range files {
			part, err := mw.CreateFormFile("files", f.Name)
			if err != nil {
				return err
			}
			if _, err := part.Write(f.Data); err != nil {
				return err
			}
		}
		return nil
	}, &results)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ModelStatus fetches the current model readiness.
func (c *Client) ModelStatus(ctx context.Context) (ModelStatus, error) {
	var status ModelStatus
	if err := c.getJSON(ctx, "/api/model-status", &status); err != nil {
		return ModelStatus{}, err
	}
	return status, nil
}

// ReloadModel uploads a replacement model. Completion is asynchronous;
// readiness arrives via the notification channel or ModelStatus.
func (c *Client) ReloadModel(ctx context.Context, filename string, data []byte) error {
	return c.postMultipart(ctx, "/api/model-reload", func(mw *multipart.Writer) error {
		part, err := mw.CreateFormFile("model_data", filename)
		if err != nil {
			return err
		}
		if _, err := part.Write(data); err != nil {
			return err
		}
		return mw.WriteField("filename", filename)
	}, nil)
}

// LoadDatabase fetches all persisted review rows.
func (c *Client) LoadDatabase(ctx context.Context) ([]Record, error) {
	var rows []Record
	if err := c.getJSON(ctx, "/api/load-database", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SaveRecord inserts or updates a review row.
func (c *Client) SaveRecord(ctx context.Context, payload SavePayload) error {
	return c.postJSON(ctx, "/api/save-to-database", payload, nil)
}

// DeleteRecord removes a review row by id.
func (c *Client) DeleteRecord(ctx context.Context, id int64) error {
	return c.postJSON(ctx, "/api/delete-from-database", map[string]int64{"id": id}, nil)
}

// LogError reports a client-side error to the backend log. Best
// effort: its own failures are logged locally and never surfaced, so
// it is safe to call from any error path.
func (c *Client) LogError(ctx context.Context, msg string) {
	err := c.postJSON(ctx, "/api/log-error", map[string]string{"error_msg": msg}, nil)
	if err != nil {
		c.log.Debug("error report not delivered", "error", err)
	}
}
