package toolclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gokatarajesh/quiz-widget/internal/quiz"
)

// Tool names exposed by the quiz MCP server.
const (
	ToolFetch         = "fetch"
	ToolSaveQuiz      = "save-quiz"
	ToolQuizList      = "quiz-list"
	ToolQuizGenerator = "quiz-generator"
)

// ErrSaveFailed is returned when the save-quiz tool does not report success.
var ErrSaveFailed = errors.New("save quiz failed")

// FetchRequest is the argument object of the fetch tool.
type FetchRequest struct {
	ID          string            `json:"id"`
	Method      string            `json:"method,omitempty"`
	Payload     any               `json:"payload,omitempty"`
	QueryParams map[string]string `json:"queryParams,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}

type fetchResult struct {
	Response  json.RawMessage `json:"response"`
	Timestamp string          `json:"timestamp"`
}

// Fetch proxies a backend request through the fetch tool and returns the raw
// backend response body.
func Fetch(ctx context.Context, caller Caller, req FetchRequest) (json.RawMessage, error) {
	res, err := caller.CallTool(ctx, ToolFetch, req)
	if err != nil {
		return nil, err
	}
	if res.IsError {
		return nil, fmt.Errorf("fetch %s: %w: %s", req.ID, ErrToolFailed, res.Text)
	}
	var out fetchResult
	if err := res.Decode(&out); err != nil {
		return nil, err
	}
	return out.Response, nil
}

type saveResult struct {
	Message string `json:"message"`
}

// SaveQuiz sends a projected quiz to the save-quiz tool.
func SaveQuiz(ctx context.Context, caller Caller, payload quiz.SavePayload) error {
	res, err := caller.CallTool(ctx, ToolSaveQuiz, payload)
	if err != nil {
		return err
	}
	var out saveResult
	if len(res.StructuredContent) > 0 {
		if err := res.Decode(&out); err != nil {
			return err
		}
	}
	if res.IsError || out.Message != "success" {
		return fmt.Errorf("%w: %s", ErrSaveFailed, firstNonEmpty(res.Text, out.Message))
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
