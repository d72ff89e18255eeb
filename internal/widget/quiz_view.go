package widget

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-widget/internal/quiz"
	"github.com/gokatarajesh/quiz-widget/internal/toolclient"
)

const (
	noticeSaved      = "Saved to your library"
	noticeSaveFailed = "Save failed, please try again"
)

// QuizView runs one quiz attempt, or a review of a saved one.
type QuizView struct {
	manager  *quiz.Manager
	caller   toolclient.Caller
	logger   zerolog.Logger
	review   bool
	showHint bool
	finished bool
	notice   string
}

func newQuizWidget(_ context.Context, props Props, env Env) Widget {
	if props.Data == nil || !props.Data.Loaded() {
		return Placeholder{Message: "Loading quiz..."}
	}
	data := *props.Data
	if data.Language == "" {
		data.Language = props.Language
	}
	v, err := NewQuizView(data, false, env)
	if err != nil {
		return Placeholder{Message: "Loading quiz..."}
	}
	return v
}

// NewQuizView starts a session over data. In review mode answers are seeded
// from the saved selections and the completion screen is never shown.
func NewQuizView(data quiz.QuizData, review bool, env Env) (*QuizView, error) {
	var opts []quiz.Option
	if env.Now != nil {
		opts = append(opts, quiz.WithClock(env.Now))
	}
	m, err := quiz.NewManager(data, review, opts...)
	if err != nil {
		return nil, err
	}
	return &QuizView{
		manager: m,
		caller:  env.Caller,
		logger:  env.Logger.With().Str("component", "quiz_view").Logger(),
		review:  review,
	}, nil
}

// Manager exposes the session for inspection.
func (v *QuizView) Manager() *quiz.Manager {
	return v.manager
}

func (v *QuizView) Render(out io.Writer) {
	if v.finished && !v.review {
		v.renderComplete(out)
	} else {
		v.renderQuestion(out)
	}
	if v.notice != "" {
		fmt.Fprintf(out, "\n(%s)\n", v.notice)
		v.notice = ""
	}
}

func (v *QuizView) renderQuestion(out io.Writer) {
	m := v.manager
	q := m.CurrentQuestion()
	answer, answered := m.CurrentAnswer()

	if v.review {
		fmt.Fprintln(out, "[back] Back to list")
	}
	fmt.Fprintf(out, "%s\n%d / %d\n\n%s\n\n", m.Info().Title, m.CurrentIndex()+1, m.TotalQuestions(), q.Question)
	for i, opt := range q.Options {
		fmt.Fprintf(out, "  %s %c. %s\n", optionMarker(i, answer, answered, opt.IsCorrect), 'A'+i, opt.Text)
		if answered && (i == answer || opt.IsCorrect) && opt.Explanation != "" {
			fmt.Fprintf(out, "       %s\n", opt.Explanation)
		}
	}
	if v.showHint && q.Hint != "" {
		fmt.Fprintf(out, "\nHint: %s\n", q.Hint)
	}

	next := "[n] Next"
	switch {
	case m.IsLastQuestion() && v.review:
		next = ""
	case m.IsLastQuestion():
		next = "[n] Complete"
	}
	controls := []string{"[a-d] Answer", "[h] Hint"}
	if m.CanGoPrevious() {
		controls = append(controls, "[p] Previous")
	}
	if next != "" {
		controls = append(controls, next)
	}
	controls = append(controls, "[q] Quit")
	fmt.Fprintf(out, "\n%s\n", strings.Join(controls, "  "))
}

func (v *QuizView) renderComplete(out io.Writer) {
	m := v.manager
	fmt.Fprintf(out, "%s complete\n\nScore:    %d / %d\nAccuracy: %d%%\nTime:     %s\n\n",
		m.Info().Title, m.Score(), m.TotalQuestions(), m.Accuracy(), m.FormattedTime())
	fmt.Fprintln(out, "[r] Retake  [s all] Save all  [s incorrect] Save incorrect  [q] Quit")
}

func optionMarker(i, answer int, answered, correct bool) string {
	switch {
	case !answered:
		return " "
	case correct:
		return "✓"
	case i == answer:
		return "✗"
	default:
		return " "
	}
}

func (v *QuizView) Handle(ctx context.Context, cmd string) Status {
	cmd = strings.ToLower(cmd)
	if cmd == "q" {
		return StatusExit
	}
	if v.finished && !v.review {
		return v.handleComplete(ctx, cmd)
	}

	m := v.manager
	switch {
	case cmd == "back" && v.review:
		return StatusBack
	case cmd == "h":
		v.showHint = !v.showHint
	case cmd == "p":
		if m.GoToPrevious() {
			v.showHint = false
		}
	case cmd == "n":
		v.next()
	default:
		idx, ok := optionIndex(cmd)
		if !ok {
			v.notice = "Unknown command " + cmd
			break
		}
		if err := m.AnswerCurrent(idx); err != nil {
			v.notice = err.Error()
		}
	}
	return StatusContinue
}

func (v *QuizView) next() {
	m := v.manager
	if m.GoToNext() {
		v.showHint = false
		return
	}
	if !m.IsLastQuestion() || v.review {
		return
	}
	m.Complete()
	v.finished = true
}

func (v *QuizView) handleComplete(ctx context.Context, cmd string) Status {
	switch fields := strings.Fields(cmd); {
	case cmd == "r":
		v.manager.Reset()
		v.finished = false
		v.showHint = false
	case len(fields) == 2 && (fields[0] == "s" || fields[0] == "save"):
		v.save(ctx, fields[1])
	default:
		v.notice = "Unknown command " + cmd
	}
	return StatusContinue
}

// save never fails the view; the outcome is shown as a notice.
func (v *QuizView) save(ctx context.Context, saveType string) {
	payload, err := v.manager.Save(saveType)
	if err != nil {
		v.notice = err.Error()
		return
	}
	if v.caller == nil {
		v.notice = noticeSaveFailed
		return
	}
	if err := toolclient.SaveQuiz(ctx, v.caller, payload); err != nil {
		v.logger.Warn().Err(err).Str("type", saveType).Msg("save quiz failed")
		v.notice = noticeSaveFailed
		return
	}
	v.notice = noticeSaved
}

func optionIndex(cmd string) (int, bool) {
	if len(cmd) != 1 {
		return 0, false
	}
	c := cmd[0]
	switch {
	case c >= 'a' && c < 'a'+quiz.OptionsPerQuestion:
		return int(c - 'a'), true
	case c >= '1' && c < '1'+quiz.OptionsPerQuestion:
		return int(c - '1'), true
	}
	return 0, false
}
