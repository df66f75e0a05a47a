// Package api turns templated requests into calls against the HKI REST
// service and normalizes what comes back.
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
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/whookdev/hki/internal/models"
	"github.com/whookdev/hki/internal/navigation"
	"github.com/whookdev/hki/internal/notify"
	"github.com/whookdev/hki/internal/payload"
	"github.com/whookdev/hki/internal/session"
)

// flashDuration is how long error flashes stay visible, in milliseconds.
const flashDuration = 1000

type Request struct {
	Method string
	// URL is a resolved path relative to the client's base URL, or an
	// absolute URL.
	URL    string
	Header http.Header
	Body   []byte

	// Fallback is returned instead of an error when the request never
	// reached the service.
	Fallback *Response
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// StatusError is returned for every non-2xx response once the user has been
// notified.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	return e.Status
}

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Notifier   notify.Channel
	Sessions   session.Store
	Router     navigation.Navigator
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	notifier   notify.Channel
	sessions   session.Store
	router     navigation.Navigator
	logger     *slog.Logger
}

func New(opts Options, logger *slog.Logger) (*Client, error) {
	if opts.Notifier == nil {
		return nil, fmt.Errorf("notifier cannot be nil")
	}
	if opts.Sessions == nil {
		return nil, fmt.Errorf("session store cannot be nil")
	}
	if opts.Router == nil {
		return nil, fmt.Errorf("router cannot be nil")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		notifier:   opts.Notifier,
		sessions:   opts.Sessions,
		router:     opts.Router,
		logger:     logger.With("component", "api"),
	}, nil
}

// Do sends req and returns the response when the service answered 2xx.
// Any other status is reported to the user before a *StatusError is
// returned.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	target := strings.TrimRight(c.absolute(req.URL), "/")
	requestID := generateRequestID()

	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	c.logger.Debug("sending request",
		"request_id", requestID,
		"method", method,
		"url", target)

	res, err := c.roundTrip(httpReq)
	if err != nil {
		c.logger.Warn("request failed",
			"request_id", requestID,
			"method", method,
			"url", target,
			"error", err)
		if req.Fallback != nil {
			return req.Fallback, nil
		}
		return nil, err
	}

	c.logger.Debug("received response",
		"request_id", requestID,
		"status", res.StatusCode)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, c.handleStatus(ctx, res)
	}

	return res, nil
}

func (c *Client) roundTrip(req *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// SendJSON sends body as JSON, POST unless req says otherwise. Object-like
// bodies are passed through PrepareBody first.
func (c *Client) SendJSON(ctx context.Context, req *Request, body any) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodPost
	}

	if fields, ok := payload.From(body); ok {
		body = PrepareBody(fields)
	}

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		req.Body = encoded
	}

	if req.Header == nil {
		req.Header = http.Header{}
	}
	req.Header.Set("Content-Type", "application/json")

	return c.Do(ctx, req)
}

// File is one part of a multipart upload.
type File struct {
	Field    string
	Filename string
	Content  io.Reader
}

// SendMultipart POSTs fields and files as multipart/form-data.
func (c *Client) SendMultipart(ctx context.Context, req *Request, fields map[string]string, files []File) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodPost
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("writing form field %s: %w", k, err)
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, fmt.Errorf("creating form file %s: %w", f.Filename, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("copying form file %s: %w", f.Filename, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	req.Body = buf.Bytes()
	if req.Header == nil {
		req.Header = http.Header{}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.Do(ctx, req)
}

// Sessions exposes the store the client clears on 401.
func (c *Client) Sessions() session.Store {
	return c.sessions
}

func (c *Client) absolute(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + path
}

func (c *Client) handleStatus(ctx context.Context, res *Response) error {
	status := http.StatusText(res.StatusCode)
	if status == "" {
		status = fmt.Sprintf("HTTP %d", res.StatusCode)
	}

	message := status
	var body struct {
		ErrorType string `json:"error_type"`
	}
	if err := json.Unmarshal(res.Body, &body); err == nil && body.ErrorType != "" {
		message = HumanizeErrorType(body.ErrorType)
	}

	c.logger.Info("request rejected",
		"status", res.StatusCode,
		"message", message)

	flash := models.Flash{
		Type:  "error",
		Title: fmt.Sprintf("Error %d", res.StatusCode),
		Text:  message,
		Time:  flashDuration,
	}
	if err := c.notifier.Show(ctx, flash); err != nil {
		c.logger.Warn("failed to show flash", "error", err)
	}

	switch res.StatusCode {
	case http.StatusUnauthorized:
		if err := c.sessions.SetUser(ctx, nil); err != nil {
			c.logger.Error("failed to clear session", "error", err)
		}
		current := c.router.Current()
		if current.Name != navigation.RouteLogin {
			c.navigate(ctx, models.Route{
				Name:  navigation.RouteLogin,
				Query: map[string]string{"redirect": current.FullPath},
			})
		}
	case http.StatusInternalServerError:
		c.navigate(ctx, models.Route{
			Name: navigation.RouteError,
			Params: map[string]string{
				"title":   "Error 500",
				"message": message,
			},
		})
	}

	return &StatusError{
		Code:    res.StatusCode,
		Status:  status,
		Message: message,
	}
}

func (c *Client) navigate(ctx context.Context, route models.Route) {
	if err := c.router.Push(ctx, route); err != nil {
		c.logger.Warn("navigation failed", "route", route.Name, "error", err)
	}
}

func generateRequestID() string {
	return fmt.Sprintf("req_%s", uuid.New().String())
}
