package mcpserver

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-widget/internal/backend"
	"github.com/gokatarajesh/quiz-widget/internal/quiz"
)

// Backend is the slice of the quiz backend the tools need.
type Backend interface {
	Do(ctx context.Context, req backend.Request) (backend.Response, error)
	SaveQuiz(ctx context.Context, token string, data quiz.QuizData) (backend.SaveResult, error)
}

// Options configures the MCP server.
type Options struct {
	Name         string
	Version      string
	WidgetHTML   string
	WidgetDomain string
}

// Server exposes the quiz tools and widget templates over MCP.
type Server struct {
	mcp     *mcp.Server
	backend Backend
	logger  zerolog.Logger
	now     func() string

	// tokenOf extracts the caller's backend token from a tool request.
	tokenOf func(req *mcp.CallToolRequest) string
}

// New registers every tool and widget resource.
func New(opts Options, be Backend, logger zerolog.Logger) *Server {
	if opts.Name == "" {
		opts.Name = "quiz-widget"
	}
	if opts.Version == "" {
		opts.Version = "v1.0.0"
	}
	if opts.WidgetHTML == "" {
		opts.WidgetHTML = placeholderHTML
	}

	s := &Server{
		mcp:     mcp.NewServer(&mcp.Implementation{Name: opts.Name, Version: opts.Version}, nil),
		backend: be,
		logger:  logger.With().Str("component", "mcp_server").Logger(),
		now:     timestamp,
		tokenOf: authorizationHeader,
	}

	generator := quizWidget(opts.WidgetHTML, opts.WidgetDomain)
	list := quizListWidget(opts.WidgetHTML, opts.WidgetDomain)
	s.registerWidget(generator)
	s.registerWidget(list)
	s.registerTools(generator, list)
	return s
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Handler serves the MCP streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)
}

func authorizationHeader(req *mcp.CallToolRequest) string {
	if req == nil || req.Extra == nil || req.Extra.Header == nil {
		return ""
	}
	return req.Extra.Header.Get("Authorization")
}
