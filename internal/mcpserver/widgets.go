package mcpserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const widgetMIMEType = "text/html+skybridge"

// ContentWidget describes an Apps-SDK widget template served as a resource.
type ContentWidget struct {
	ID           string
	Title        string
	TemplateURI  string
	Invoking     string
	Invoked      string
	HTML         string
	Description  string
	WidgetDomain string
}

func quizWidget(html, domain string) ContentWidget {
	return ContentWidget{
		ID:           "quiz-generator",
		Title:        "Quiz Generator",
		TemplateURI:  "ui://widget/quiz-generator-template.html",
		Invoking:     "Loading quiz...",
		Invoked:      "Quiz loaded",
		HTML:         html,
		Description:  "Displays an interactive multiple-choice quiz generated from the user's input",
		WidgetDomain: domain,
	}
}

func quizListWidget(html, domain string) ContentWidget {
	return ContentWidget{
		ID:           "quiz-list",
		Title:        "Quiz List",
		TemplateURI:  "ui://widget/quiz-list-template.html",
		HTML:         html,
		Description:  "Displays the user's saved quiz list",
		WidgetDomain: domain,
	}
}

// toolMeta links a tool to its output template.
func (w ContentWidget) toolMeta() mcp.Meta {
	return mcp.Meta{
		"openai/outputTemplate":          w.TemplateURI,
		"openai/toolInvocation/invoking": w.Invoking,
		"openai/toolInvocation/invoked":  w.Invoked,
		"openai/widgetAccessible":        false,
		"openai/resultCanProduceWidget":  true,
	}
}

func (w ContentWidget) resourceMeta() mcp.Meta {
	return mcp.Meta{
		"openai/widgetDescription":   w.Description,
		"openai/widgetPrefersBorder": true,
	}
}

func (s *Server) registerWidget(w ContentWidget) {
	s.mcp.AddResource(&mcp.Resource{
		URI:         w.TemplateURI,
		Name:        w.ID + "-widget",
		Title:       w.Title,
		Description: w.Description,
		MIMEType:    widgetMIMEType,
		Meta:        w.resourceMeta(),
	}, func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		meta := w.resourceMeta()
		meta["openai/widgetDomain"] = w.WidgetDomain
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      w.TemplateURI,
				MIMEType: widgetMIMEType,
				Text:     "<html>" + w.HTML + "</html>",
				Meta:     meta,
			}},
		}, nil
	})
}

const placeholderHTML = `<head><meta charset="utf-8"><title>Quiz</title></head><body><div id="root"></div></body>`

// LoadWidgetHTML fetches the widget page rendered by the frontend at baseURL.
// An empty baseURL yields a placeholder page.
func LoadWidgetHTML(ctx context.Context, baseURL string) (string, error) {
	if baseURL == "" {
		return placeholderHTML, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(baseURL, "/")+"/", nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch widget html: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("widget html returned status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read widget html: %w", err)
	}
	return string(raw), nil
}
