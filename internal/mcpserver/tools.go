package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gokatarajesh/quiz-widget/internal/backend"
	"github.com/gokatarajesh/quiz-widget/internal/quiz"
)

// FetchInput proxies a request to the quiz backend.
type FetchInput struct {
	ID          string            `json:"id" jsonschema:"backend path to call, e.g. /library/v1/quizzes"`
	Method      string            `json:"method,omitempty" jsonschema:"HTTP method: GET, POST, PUT or DELETE; defaults to GET"`
	Payload     any               `json:"payload,omitempty" jsonschema:"request payload for POST and PUT requests"`
	QueryParams map[string]string `json:"queryParams,omitempty" jsonschema:"query parameters for the request"`
	Headers     map[string]string `json:"headers,omitempty" jsonschema:"additional request headers"`
}

// SaveQuizInput wraps the projected quiz.
type SaveQuizInput struct {
	Data quiz.QuizData `json:"data" jsonschema:"user quiz related data"`
}

// GeneratedOption is an option as produced by the model; selection is not part of it.
type GeneratedOption struct {
	Text        string `json:"text" jsonschema:"option text, KaTeX allowed ($...$ inline, $$...$$ display)"`
	IsCorrect   bool   `json:"isCorrect" jsonschema:"whether this option is the correct answer"`
	Explanation string `json:"explanation" jsonschema:"why this option is correct or wrong"`
}

type GeneratedQuestion struct {
	ID       string            `json:"id" jsonschema:"unique question id, e.g. q1"`
	Question string            `json:"question" jsonschema:"question text, KaTeX allowed"`
	Hint     string            `json:"hint" jsonschema:"helpful hint for the question"`
	Options  []GeneratedOption `json:"options" jsonschema:"exactly 4 options with exactly one correct"`
}

// GenerateQuizInput is the quiz the model generated for the user.
type GenerateQuizInput struct {
	Title       string              `json:"title" jsonschema:"quiz title, e.g. Python Programming Quiz"`
	Description string              `json:"description" jsonschema:"brief description of the quiz"`
	Language    string              `json:"language,omitempty" jsonschema:"language of the quiz, e.g. en"`
	Questions   []GeneratedQuestion `json:"questions" jsonschema:"quiz questions"`
}

// ListQuizzesInput takes no arguments.
type ListQuizzesInput struct{}

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}

func (s *Server) registerTools(generator, list ContentWidget) {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        generator.ID,
		Title:       generator.Title,
		Description: "Display an interactive multiple-choice quiz. Generate the quiz yourself: every question needs exactly 4 options and exactly one correct option, each with an explanation.",
		Meta:        generator.toolMeta(),
	}, s.generateQuiz)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:  list.ID,
		Title: list.Title,
		Description: `When to use:
- User asks: "Show me my saved quiz"
- User asks: "Display my quiz"
- User asks: "Load the quiz I saved"
- User asks: "Show my quiz history"`,
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
		Meta:        list.toolMeta(),
	}, s.listQuizzes)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "fetch",
		Title:       "App Fetch",
		Description: "Internal app fetch tool for accessing the quiz backend APIs",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
		Meta: mcp.Meta{
			"openai/internalOnly":     true,
			"openai/widgetAccessible": true,
		},
	}, s.fetch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "save-quiz",
		Title:       "Save Quiz",
		Description: "Save the quiz and the user's answers to the backend library",
		Meta:        mcp.Meta{"openai/widgetAccessible": true},
	}, s.saveQuiz)
}

func (s *Server) generateQuiz(_ context.Context, _ *mcp.CallToolRequest, in GenerateQuizInput) (*mcp.CallToolResult, any, error) {
	start := time.Now()
	data := in.toQuizData()
	if err := data.Validate(); err != nil {
		observeTool("quiz-generator", start, true)
		return nil, nil, fmt.Errorf("invalid quiz: %w", err)
	}

	structured := map[string]any{
		"type":      "quiz",
		"language":  in.Language,
		"data":      data,
		"timestamp": s.now(),
	}
	observeTool("quiz-generator", start, false)
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Quiz %q with %d questions is ready", data.Title, len(data.Questions))},
		},
		StructuredContent: structured,
	}, structured, nil
}

func (s *Server) listQuizzes(_ context.Context, _ *mcp.CallToolRequest, _ ListQuizzesInput) (*mcp.CallToolResult, any, error) {
	start := time.Now()
	structured := map[string]any{"type": "quiz-list"}
	observeTool("quiz-list", start, false)
	return &mcp.CallToolResult{
		Content:           []mcp.Content{},
		StructuredContent: structured,
	}, structured, nil
}

func (s *Server) fetch(ctx context.Context, req *mcp.CallToolRequest, in FetchInput) (*mcp.CallToolResult, any, error) {
	start := time.Now()
	method := strings.ToUpper(in.Method)
	if method == "" {
		method = http.MethodGet
	}
	if !allowedMethods[method] {
		observeTool("fetch", start, true)
		return errorResult(fmt.Sprintf("Error fetching data from the API %s: unsupported method %s", in.ID, in.Method)), nil, nil
	}

	resp, err := s.backend.Do(ctx, backendRequest(in, method, s.tokenOf(req)))
	if err != nil {
		s.logger.Warn().Err(err).Str("path", in.ID).Str("method", method).Msg("fetch tool failed")
		observeTool("fetch", start, true)
		return errorResult(fmt.Sprintf("Error fetching data from the API %s: %v", in.ID, err)), nil, nil
	}

	structured := map[string]any{
		"response":  resp.Body,
		"timestamp": s.now(),
	}
	observeTool("fetch", start, false)
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Successfully fetched data from the API " + in.ID},
		},
		StructuredContent: structured,
	}, structured, nil
}

func (s *Server) saveQuiz(ctx context.Context, req *mcp.CallToolRequest, in SaveQuizInput) (*mcp.CallToolResult, any, error) {
	start := time.Now()
	failed := func(text string) (*mcp.CallToolResult, any, error) {
		observeTool("save-quiz", start, true)
		structured := map[string]any{"message": "error"}
		return &mcp.CallToolResult{
			IsError:           true,
			Content:           []mcp.Content{&mcp.TextContent{Text: text}},
			StructuredContent: structured,
		}, structured, nil
	}

	token := s.tokenOf(req)
	if token == "" {
		return failed("save error: not authenticated")
	}
	if err := in.Data.ValidateSaved(); err != nil {
		return failed("save error: " + err.Error())
	}
	if in.Data.Type != "" && !quiz.ValidSaveType(in.Data.Type) {
		return failed("save error: " + quiz.ErrInvalidSaveType.Error())
	}

	res, err := s.backend.SaveQuiz(ctx, token, in.Data)
	if err != nil {
		s.logger.Warn().Err(err).Str("title", in.Data.Title).Msg("save quiz failed")
		return failed("save error")
	}

	s.logger.Info().Str("id", res.Data.ID).Str("type", in.Data.Type).Int("questions", len(in.Data.Questions)).Msg("quiz saved")
	structured := map[string]any{"message": "success", "id": res.Data.ID}
	observeTool("save-quiz", start, false)
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: "save success"}},
		StructuredContent: structured,
	}, structured, nil
}

func (in GenerateQuizInput) toQuizData() quiz.QuizData {
	questions := make([]quiz.Question, 0, len(in.Questions))
	for _, q := range in.Questions {
		opts := make([]quiz.QuestionOption, 0, len(q.Options))
		for _, o := range q.Options {
			opts = append(opts, quiz.QuestionOption{Text: o.Text, IsCorrect: o.IsCorrect, Explanation: o.Explanation})
		}
		questions = append(questions, quiz.Question{ID: q.ID, Question: q.Question, Hint: q.Hint, Options: opts})
	}
	return quiz.QuizData{
		Title:       in.Title,
		Description: in.Description,
		Language:    in.Language,
		Questions:   questions,
		Error:       []int{},
	}
}

func backendRequest(in FetchInput, method, token string) backend.Request {
	return backend.Request{
		Path:        in.ID,
		Method:      method,
		Token:       token,
		QueryParams: in.QueryParams,
		Headers:     in.Headers,
		Payload:     in.Payload,
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
