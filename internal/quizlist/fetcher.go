package quizlist

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gokatarajesh/quiz-widget/internal/quiz"
	"github.com/gokatarajesh/quiz-widget/internal/toolclient"
)

// ListPath is the library endpoint that pages saved quizzes.
const ListPath = "/library/v1/quizzes"

// DefaultWisebase is the library folder quizzes are saved into.
const DefaultWisebase = "inbox"

// ListResponse is the library list envelope.
type ListResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Data    struct {
		Total int        `json:"total"`
		Items []ListItem `json:"items"`
	} `json:"data"`
}

// ListItem is one saved quiz record.
type ListItem struct {
	ID   string        `json:"id"`
	Data quiz.QuizData `json:"data"`
}

// ToolFetcher pages the library through the host's fetch tool.
type ToolFetcher struct {
	caller   toolclient.Caller
	wisebase string
}

var _ Fetcher = (*ToolFetcher)(nil)

func NewToolFetcher(caller toolclient.Caller, wisebase string) *ToolFetcher {
	if wisebase == "" {
		wisebase = DefaultWisebase
	}
	return &ToolFetcher{caller: caller, wisebase: wisebase}
}

func (f *ToolFetcher) FetchPage(ctx context.Context, page, pageSize int) (Page, error) {
	raw, err := toolclient.Fetch(ctx, f.caller, toolclient.FetchRequest{
		ID:     ListPath,
		Method: http.MethodGet,
		QueryParams: map[string]string{
			"page":       strconv.Itoa(page),
			"pageSize":   strconv.Itoa(pageSize),
			"wisebaseId": f.wisebase,
		},
	})
	if err != nil {
		return Page{}, err
	}

	var resp ListResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Page{}, fmt.Errorf("decode quiz list: %w", err)
	}
	if resp.Code != 0 {
		return Page{}, fmt.Errorf("quiz list returned code %d: %s", resp.Code, resp.Message)
	}

	items := make([]quiz.QuizData, 0, len(resp.Data.Items))
	for _, it := range resp.Data.Items {
		d := it.Data
		if it.ID != "" {
			d.ID = it.ID
		}
		items = append(items, d)
	}
	return Page{Total: resp.Data.Total, Items: items}, nil
}
