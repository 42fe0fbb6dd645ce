package client

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

	"github.com/tidwall/gjson"

	"injaaz-backend/utils/logger"
)

// Config holds the settings of the submission client.
type Config struct {
	// BaseURL is the API root including the base path, e.g.
	// "http://localhost:8081/api/v1".
	BaseURL string

	// UploadBaseURL is the direct-upload host. The cloud name and "/image/upload"
	// are appended per request.
	UploadBaseURL string

	HTTPTimeout  time.Duration
	PollInterval time.Duration
	PollTimeout  time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = 30 * time.Second
	}
	if out.PollInterval <= 0 {
		out.PollInterval = 3 * time.Second
	}
	if out.PollTimeout <= 0 {
		out.PollTimeout = 5 * time.Minute
	}
	if out.UploadBaseURL == "" {
		out.UploadBaseURL = "https://api.cloudinary.com/v1_1"
	}
	out.BaseURL = strings.TrimSuffix(out.BaseURL, "/")
	out.UploadBaseURL = strings.TrimSuffix(out.UploadBaseURL, "/")
	return out
}

// Client talks to the site-visit API and to the photo storage host.
type Client struct {
	config Config
	http   *http.Client
	logger logger.Logger
}

func NewClient(cfg Config, log logger.Logger) *Client {
	resolved := cfg.withDefaults()
	return &Client{
		config: resolved,
		http:   &http.Client{Timeout: resolved.HTTPTimeout},
		logger: log,
	}
}

func (c *Client) url(path string) string {
	return c.config.BaseURL + path
}

// postJSON sends body as JSON and returns the status code and raw response
// body. A nil error means the request produced an HTTP response; the status
// code still has to be checked.
func (c *Client) postJSON(ctx context.Context, url string, body interface{}) (int, []byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) getJSON(ctx context.Context, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Op: req.Method + " " + req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &TransportError{Op: "read response", Err: err}
	}
	return resp.StatusCode, raw, nil
}

// uploadPhoto performs one unsigned direct upload to the image host and
// returns the stored photo's public URL.
func (c *Client) uploadPhoto(ctx context.Context, cloudName, uploadPreset string, f NormalizedFile) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", f.Name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(f.Data); err != nil {
		return "", err
	}
	if err := mw.WriteField("upload_preset", uploadPreset); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	uploadURL := fmt.Sprintf("%s/%s/image/upload", c.config.UploadBaseURL, cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	status, raw, err := c.do(req)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", &ServerError{StatusCode: status, Message: serverMessage(raw, status)}
	}

	secureURL := gjson.GetBytes(raw, "secure_url").String()
	if secureURL == "" {
		return "", fmt.Errorf("upload response missing secure_url")
	}
	return secureURL, nil
}

// serverMessage digs a human-readable error message out of a response body,
// trying the common envelope fields before falling back to the status text.
func serverMessage(raw []byte, statusCode int) string {
	for _, path := range []string{"error.details", "error.message", "message", "error"} {
		if v := gjson.GetBytes(raw, path); v.Exists() && v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return http.StatusText(statusCode)
}
