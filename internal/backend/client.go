package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-widget/internal/quiz"
)

// SavePath is the library endpoint that stores a quiz.
const SavePath = "/library/v1/quizzes"

var (
	// ErrRejected is returned when the backend answers with a non-zero code.
	ErrRejected = errors.New("backend rejected request")
	// ErrForeignURL is returned for a path that resolves outside the backend.
	ErrForeignURL = errors.New("path must stay on the backend host")
)

// Config holds connection details for the quiz backend API.
type Config struct {
	BaseURL string
	AppName string
	Timeout time.Duration
}

// Request is a proxied backend call.
type Request struct {
	Path        string
	Method      string
	Token       string
	QueryParams map[string]string
	Headers     map[string]string
	Payload     any
}

// Response carries the decoded body: JSON bodies are decoded into Body,
// anything else is returned as a string.
type Response struct {
	Status int
	Body   any
}

// Client talks to the quiz backend over HTTP.
type Client struct {
	httpClient *http.Client
	config     Config
	baseURL    *url.URL
	logger     zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	base := cfg.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
		baseURL:    u,
		logger:     logger.With().Str("component", "backend_client").Logger(),
	}, nil
}

// Do performs req. The body is only sent for POST and PUT.
func (c *Client) Do(ctx context.Context, req Request) (Response, error) {
	target, err := c.resolve(req.Path, req.QueryParams)
	if err != nil {
		return Response{}, err
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if method == http.MethodPost || method == http.MethodPut {
		raw, err := json.Marshal(req.Payload)
		if err != nil {
			return Response{}, fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.AppName != "" {
		httpReq.Header.Set("X-App-Name", c.config.AppName)
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", req.Token)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read backend response: %w", err)
	}

	out := Response{Status: resp.StatusCode, Body: string(raw)}
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return Response{}, fmt.Errorf("decode backend payload: %w", err)
		}
		out.Body = decoded
	}

	c.logger.Debug().Str("method", method).Str("path", req.Path).Int("status", resp.StatusCode).Msg("backend call")
	return out, nil
}

// SaveResult is the library answer to a save.
type SaveResult struct {
	Code    Code   `json:"code"`
	Message string `json:"message,omitempty"`
	Data    struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Code is a response status code sent either as a number or as a string.
type Code int

func (c *Code) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*c = Code(n)
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("response code: %w", err)
	}
	n, err := strconv.Atoi(str)
	if err != nil {
		return fmt.Errorf("response code %q: %w", str, err)
	}
	*c = Code(n)
	return nil
}

// SaveQuiz stores data in the library on behalf of token.
func (c *Client) SaveQuiz(ctx context.Context, token string, data quiz.QuizData) (SaveResult, error) {
	resp, err := c.Do(ctx, Request{
		Path:    SavePath,
		Method:  http.MethodPost,
		Token:   token,
		Payload: quiz.SavePayload{Data: data},
	})
	if err != nil {
		return SaveResult{}, err
	}

	raw, err := json.Marshal(resp.Body)
	if err != nil {
		return SaveResult{}, err
	}
	var result SaveResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return SaveResult{}, fmt.Errorf("decode save response (status %d): %w", resp.Status, err)
	}
	if result.Code != 0 || resp.Status >= 300 {
		return result, fmt.Errorf("%w: code %d status %d: %s", ErrRejected, result.Code, resp.Status, result.Message)
	}
	return result, nil
}

func (c *Client) resolve(path string, query map[string]string) (string, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("parse path %q: %w", path, err)
	}
	if ref.IsAbs() || ref.Host != "" || ref.User != nil {
		return "", fmt.Errorf("%q: %w", path, ErrForeignURL)
	}
	u := c.baseURL.ResolveReference(ref)
	if u.Scheme != c.baseURL.Scheme || u.Host != c.baseURL.Host {
		return "", fmt.Errorf("%q: %w", path, ErrForeignURL)
	}
	if len(query) > 0 {
		q := url.Values{}
		for k, v := range query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
