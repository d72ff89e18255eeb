package toolclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

// ErrToolFailed is returned when a tool reports IsError.
var ErrToolFailed = errors.New("tool call failed")

// Result is the host-facing view of a tool call result.
type Result struct {
	StructuredContent json.RawMessage
	Text              string
	IsError           bool
}

// Decode unmarshals the structured content into v.
func (r *Result) Decode(v any) error {
	if len(r.StructuredContent) == 0 {
		return fmt.Errorf("decode tool result: empty structured content")
	}
	if err := json.Unmarshal(r.StructuredContent, v); err != nil {
		return fmt.Errorf("decode tool result: %w", err)
	}
	return nil
}

// Caller is the tool bridge the host gives to a widget.
type Caller interface {
	CallTool(ctx context.Context, name string, args any) (*Result, error)
}

// Config holds connection details for the MCP endpoint.
type Config struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
	Name     string
	Version  string
}

// Client implements Caller over an MCP client session.
type Client struct {
	session *mcp.ClientSession
	logger  zerolog.Logger
	timeout time.Duration
}

var _ Caller = (*Client)(nil)

// Dial connects to a streamable HTTP MCP endpoint.
func Dial(ctx context.Context, cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("mcp endpoint not configured")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	name := cfg.Name
	if name == "" {
		name = "quiz-widget-host"
	}

	// no client timeout: the session keeps a long-lived event stream open
	httpClient := &http.Client{
		Transport: authTransport{token: cfg.Token, base: http.DefaultTransport},
	}
	transport := &mcp.StreamableClientTransport{
		Endpoint:   cfg.Endpoint,
		HTTPClient: httpClient,
	}
	client, err := Connect(ctx, transport, name, cfg.Version, logger)
	if err != nil {
		return nil, err
	}
	client.timeout = timeout
	return client, nil
}

// Connect opens a client session over any MCP transport.
func Connect(ctx context.Context, transport mcp.Transport, name, version string, logger zerolog.Logger) (*Client, error) {
	if version == "" {
		version = "v1.0.0"
	}
	client := mcp.NewClient(&mcp.Implementation{Name: name, Version: version}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect mcp: %w", err)
	}
	return &Client{
		session: session,
		logger:  logger.With().Str("component", "tool_client").Logger(),
	}, nil
}

// CallTool invokes name with args and flattens the MCP result.
func (c *Client) CallTool(ctx context.Context, name string, args any) (*Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	start := time.Now()
	res, err := c.session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		c.logger.Error().Err(err).Str("tool", name).Msg("tool call failed")
		return nil, fmt.Errorf("call %s: %w", name, err)
	}

	out := &Result{IsError: res.IsError, Text: textOf(res.Content)}
	if res.StructuredContent != nil {
		raw, err := json.Marshal(res.StructuredContent)
		if err != nil {
			return nil, fmt.Errorf("encode %s structured content: %w", name, err)
		}
		out.StructuredContent = raw
	}
	c.logger.Debug().Str("tool", name).Bool("is_error", res.IsError).Dur("took", time.Since(start)).Msg("tool call done")
	return out, nil
}

// Close ends the session.
func (c *Client) Close() error {
	return c.session.Close()
}

func textOf(content []mcp.Content) string {
	var parts []string
	for _, c := range content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

type authTransport struct {
	token string
	base  http.RoundTripper
}

func (t authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token == "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(clone)
}
