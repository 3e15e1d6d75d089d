// Package reportportal implements the slice of the ReportPortal REST API this
// tool needs: launch lifecycle, test/step items and log entries with optional
// attachments. Requests are retried with exponential backoff on transient
// failures.
package reportportal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"time"
)

// Client is an HTTP client for a ReportPortal project.
type Client struct {
	httpClient  *http.Client
	config      *Config
	retryConfig *RetryConfig
	verbose     bool
}

// NewClient creates a new ReportPortal client
func NewClient(config *Config, retryConfig *RetryConfig, verbose bool) *Client {
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if retryConfig == nil {
		retryConfig = DefaultRetryConfig()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second, // Per-request timeout
		},
		config:      config,
		retryConfig: retryConfig,
		verbose:     verbose,
	}
}

// StartLaunch starts a launch and returns its id.
func (c *Client) StartLaunch(ctx context.Context, req StartLaunchRequest) (string, error) {
	var resp startedResponse
	if err := c.doJSON(ctx, http.MethodPost, c.url("launch"), req, &resp); err != nil {
		return "", fmt.Errorf("failed to start launch: %w", err)
	}
	return resp.ID, nil
}

// FinishLaunch finishes a launch; the backend derives the launch status from
// its items.
func (c *Client) FinishLaunch(ctx context.Context, launchID string, endTime int64) error {
	body := struct {
		EndTime int64 `json:"endTime"`
	}{EndTime: endTime}

	if err := c.doJSON(ctx, http.MethodPut, c.url("launch/"+launchID+"/finish"), body, nil); err != nil {
		return fmt.Errorf("failed to finish launch %s: %w", launchID, err)
	}
	return nil
}

// StartTestItem starts a test item and returns its id. When req.Parent is set
// the item is created as a child (e.g. a STEP under a TEST).
func (c *Client) StartTestItem(ctx context.Context, req StartItemRequest) (string, error) {
	path := "item"
	if req.Parent != "" {
		path = "item/" + req.Parent
	}

	var resp startedResponse
	if err := c.doJSON(ctx, http.MethodPost, c.url(path), req, &resp); err != nil {
		return "", fmt.Errorf("failed to start %s item %q: %w", req.Type, req.Name, err)
	}
	return resp.ID, nil
}

// FinishTestItem finishes a test item with a terminal status.
func (c *Client) FinishTestItem(ctx context.Context, itemID string, req FinishItemRequest) error {
	if err := c.doJSON(ctx, http.MethodPut, c.url("item/"+itemID), req, nil); err != nil {
		return fmt.Errorf("failed to finish item %s: %w", itemID, err)
	}
	return nil
}

// Log sends a single log entry.
func (c *Client) Log(ctx context.Context, entry LogEntry) error {
	if err := c.doJSON(ctx, http.MethodPost, c.url("log"), entry, nil); err != nil {
		return fmt.Errorf("failed to send log entry: %w", err)
	}
	return nil
}

// LogAttachment sends a log entry with an attached file. The backend expects a
// multipart request with a json_request_part listing the entries and one file
// part per referenced attachment name.
func (c *Client) LogAttachment(ctx context.Context, entry LogEntry, att Attachment) error {
	type fileRef struct {
		Name string `json:"name"`
	}
	type attachedEntry struct {
		LogEntry
		File fileRef `json:"file"`
	}

	jsonPart, err := json.Marshal([]attachedEntry{{LogEntry: entry, File: fileRef{Name: att.Name}}})
	if err != nil {
		return fmt.Errorf("failed to marshal log request: %w", err)
	}

	mimeType := att.Mime
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	jsonHeader := textproto.MIMEHeader{}
	jsonHeader.Set("Content-Disposition", `form-data; name="json_request_part"`)
	jsonHeader.Set("Content-Type", "application/json")
	part, err := writer.CreatePart(jsonHeader)
	if err != nil {
		return fmt.Errorf("failed to create json request part: %w", err)
	}
	if _, err := part.Write(jsonPart); err != nil {
		return fmt.Errorf("failed to write json request part: %w", err)
	}

	fileHeader := textproto.MIMEHeader{}
	fileHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, att.Name))
	fileHeader.Set("Content-Type", mimeType)
	filePart, err := writer.CreatePart(fileHeader)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := filePart.Write(att.Data); err != nil {
		return fmt.Errorf("failed to write attachment %s: %w", att.Name, err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart request: %w", err)
	}

	if err := c.do(ctx, http.MethodPost, c.url("log"), buf.Bytes(), writer.FormDataContentType(), nil); err != nil {
		return fmt.Errorf("failed to send attachment %s: %w", att.Name, err)
	}
	return nil
}

func (c *Client) url(path string) string {
	return fmt.Sprintf("%s/api/v1/%s/%s", strings.TrimRight(c.config.Endpoint, "/"), c.config.Project, path)
}

func (c *Client) doJSON(ctx context.Context, method, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request payload: %w", err)
	}
	return c.do(ctx, method, url, body, "application/json", out)
}

// do sends the request with retry logic, decoding a 2xx response body into out
// when out is non-nil.
func (c *Client) do(ctx context.Context, method, url string, body []byte, contentType string, out any) error {
	// Create context with overall timeout
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var lastErr error

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		// Add backoff delay (skip on first attempt)
		if attempt > 0 {
			delay := calculateBackoff(attempt, c.retryConfig)

			if c.verbose {
				fmt.Fprintf(os.Stderr, "[RP] Retry %d/%d after %v\n",
					attempt, c.retryConfig.MaxRetries, delay)
			}

			select {
			case <-time.After(delay):
				// Continue after delay
			case <-ctx.Done():
				return fmt.Errorf("request timeout after %d attempts: %w", attempt, ctx.Err())
			}
		}

		statusCode, respBody, err := c.sendRequest(ctx, method, url, body, contentType)

		if err == nil && statusCode >= 200 && statusCode < 300 {
			if out != nil {
				if err := json.Unmarshal(respBody, out); err != nil {
					return fmt.Errorf("failed to decode response: %w", err)
				}
			}
			return nil
		}

		// Record the error
		if err != nil {
			lastErr = fmt.Errorf("attempt %d failed: %w", attempt+1, err)
		} else {
			lastErr = fmt.Errorf("attempt %d failed with status %d: %s", attempt+1, statusCode, truncate(respBody, 200))
		}

		// Check if we should retry this status code
		if statusCode > 0 && !isRetryableStatus(statusCode) {
			if c.verbose {
				fmt.Fprintf(os.Stderr, "[RP] Non-retryable status %d, giving up\n", statusCode)
			}
			return lastErr
		}
	}

	return fmt.Errorf("request failed after %d attempts: %w", c.retryConfig.MaxRetries+1, lastErr)
}

func (c *Client) sendRequest(ctx context.Context, method, url string, body []byte, contentType string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("Content-Type", contentType)
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}

	return resp.StatusCode, respBody, nil
}

func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
