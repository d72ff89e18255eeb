// Package widget renders the quiz widgets in a terminal and dispatches the
// host's widget props to the matching view.
package widget

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-widget/internal/quiz"
	"github.com/gokatarajesh/quiz-widget/internal/quizlist"
	"github.com/gokatarajesh/quiz-widget/internal/toolclient"
)

// Kind selects which widget renders the props.
type Kind string

const (
	KindQuiz     Kind = "quiz"
	KindQuizList Kind = "quiz-list"

	DefaultKind = KindQuiz
)

// Props are injected by the host from the tool's structured content.
type Props struct {
	Type     string         `json:"type,omitempty"`
	Language string         `json:"language,omitempty"`
	Data     *quiz.QuizData `json:"data,omitempty"`
}

// DecodeProps reads props from a tool result.
func DecodeProps(res *toolclient.Result) (Props, error) {
	var p Props
	if len(res.StructuredContent) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(res.StructuredContent, &p); err != nil {
		return Props{}, fmt.Errorf("decode widget props: %w", err)
	}
	return p, nil
}

// Status tells the run loop whether to keep reading input.
type Status int

const (
	StatusContinue Status = iota
	StatusExit
	// StatusBack asks the parent view to take over again.
	StatusBack
)

// Widget is one interactive view.
type Widget interface {
	Render(out io.Writer)
	Handle(ctx context.Context, cmd string) Status
}

// Env carries what constructors need from the host.
type Env struct {
	Caller   toolclient.Caller
	Logger   zerolog.Logger
	List     quizlist.Options
	Wisebase string
	Now      func() time.Time
}

// Constructor builds a widget from props.
type Constructor func(ctx context.Context, props Props, env Env) Widget

// Registry maps a widget kind to its constructor.
type Registry map[Kind]Constructor

// DefaultRegistry knows the quiz and quiz-list widgets.
func DefaultRegistry() Registry {
	return Registry{
		KindQuiz:     newQuizWidget,
		KindQuizList: newQuizListWidget,
	}
}

// Resolve picks the constructor for props.Type once. Unknown kinds render
// a placeholder.
func (r Registry) Resolve(ctx context.Context, props Props, env Env) Widget {
	kind := Kind(props.Type)
	if kind == "" {
		kind = DefaultKind
	}
	ctor, ok := r[kind]
	if !ok {
		env.Logger.Warn().Str("kind", string(kind)).Msg("unknown widget kind")
		return Placeholder{Message: "Unsupported widget " + string(kind)}
	}
	return ctor(ctx, props, env)
}

// Placeholder is shown while there is nothing to render.
type Placeholder struct {
	Message string
}

func (p Placeholder) Render(out io.Writer) {
	msg := p.Message
	if msg == "" {
		msg = "Loading..."
	}
	fmt.Fprintln(out, msg)
}

func (Placeholder) Handle(context.Context, string) Status {
	return StatusExit
}

// Run renders w and feeds it one command per input line until it exits or
// input ends.
func Run(ctx context.Context, w Widget, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		w.Render(out)
		if _, ok := w.(Placeholder); ok {
			return nil
		}
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if status := w.Handle(ctx, strings.TrimSpace(scanner.Text())); status != StatusContinue {
			return nil
		}
	}
}
