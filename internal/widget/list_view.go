package widget

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-widget/internal/quizlist"
)

// ListView pages through the saved quizzes and opens one for review.
type ListView struct {
	loader *quizlist.Loader
	env    Env
	logger zerolog.Logger
	child  *QuizView
	notice string

	// failed offers a retry; retryNext retries the page turn rather than the mount.
	failed    bool
	retryNext bool
}

func newQuizListWidget(ctx context.Context, _ Props, env Env) Widget {
	if env.Caller == nil {
		return Placeholder{Message: "Quiz list unavailable"}
	}
	fetcher := quizlist.NewToolFetcher(env.Caller, env.Wisebase)
	return NewListView(ctx, quizlist.NewLoader(fetcher, env.List, env.Logger), env)
}

// NewListView mounts the list: the first backend page is fetched right away.
func NewListView(ctx context.Context, loader *quizlist.Loader, env Env) *ListView {
	v := &ListView{
		loader: loader,
		env:    env,
		logger: env.Logger.With().Str("component", "quiz_list_view").Logger(),
	}
	v.load(ctx)
	return v
}

func (v *ListView) load(ctx context.Context) {
	if err := v.loader.Load(ctx); err != nil {
		v.failed = true
		v.notice = "Failed to load quizzes"
		return
	}
	v.failed, v.retryNext = false, false
}

func (v *ListView) Render(out io.Writer) {
	if v.child != nil {
		v.child.Render(out)
		return
	}

	fmt.Fprintf(out, "My Quizzes (%d)\n\n", v.loader.Total())
	items := v.loader.Items()
	if len(items) == 0 {
		fmt.Fprintln(out, "  No saved quizzes yet")
	}
	for i, item := range items {
		line := fmt.Sprintf("  [%d] %s", i+1, item.Title)
		if item.CreatedAt != "" {
			line += "  " + item.CreatedAt
		}
		fmt.Fprintln(out, line)
	}
	page, pages := v.loader.CurrentPage(), v.loader.TotalPages()
	if pages == 0 {
		page = 0
	}
	fmt.Fprintf(out, "\n%d / %d\n", page, pages)

	controls := []string{}
	if len(items) > 0 {
		controls = append(controls, fmt.Sprintf("[1-%d] View", len(items)))
	}
	controls = append(controls, "[p] Previous", "[n] Next")
	if v.failed {
		controls = append(controls, "[r] Retry")
	}
	controls = append(controls, "[q] Quit")
	fmt.Fprintf(out, "%s\n", strings.Join(controls, "  "))

	if v.notice != "" {
		fmt.Fprintf(out, "\n(%s)\n", v.notice)
		v.notice = ""
	}
}

func (v *ListView) Handle(ctx context.Context, cmd string) Status {
	if v.child != nil {
		switch v.child.Handle(ctx, cmd) {
		case StatusExit:
			return StatusExit
		case StatusBack:
			v.child = nil
		}
		return StatusContinue
	}

	switch strings.ToLower(cmd) {
	case "q":
		return StatusExit
	case "r":
		if v.retryNext {
			v.next(ctx)
		} else {
			v.load(ctx)
		}
	case "p":
		if !v.loader.Previous() {
			v.notice = "Already on the first page"
		}
	case "n":
		v.next(ctx)
	default:
		v.open(cmd)
	}
	return StatusContinue
}

func (v *ListView) next(ctx context.Context) {
	moved, err := v.loader.Next(ctx)
	switch {
	case errors.Is(err, quizlist.ErrLoading):
		v.notice = "Still loading"
		return
	case err != nil:
		v.failed, v.retryNext = true, true
		v.notice = "Failed to load quizzes"
		return
	case !moved:
		v.notice = "Already on the last page"
	}
	v.failed, v.retryNext = false, false
}

func (v *ListView) open(cmd string) {
	n, err := strconv.Atoi(cmd)
	items := v.loader.Items()
	if err != nil || n < 1 || n > len(items) {
		v.notice = "Unknown command " + cmd
		return
	}
	child, err := NewQuizView(items[n-1], true, v.env)
	if err != nil {
		v.logger.Warn().Err(err).Str("quiz_id", items[n-1].ID).Msg("cannot open quiz")
		v.notice = "This quiz has no questions"
		return
	}
	v.child = child
}
