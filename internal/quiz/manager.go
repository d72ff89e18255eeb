package quiz

import (
	"fmt"
	"math"
	"time"
)

// Unanswered marks an answer slot with no selection.
const Unanswered = -1

// Option customizes a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for start/end timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// Manager owns one quiz-taking attempt: the current question pointer, the
// per-question answers and the attempt timing. It is not safe for concurrent use.
type Manager struct {
	info      QuizData
	questions []Question
	answers   []int
	current   int
	startedAt time.Time
	endedAt   time.Time
	now       func() time.Time
}

// NewManager starts an attempt over data. When fromReview is set the answers are
// seeded from the options already marked selected, so a saved quiz re-opens with
// its recorded choices.
func NewManager(data QuizData, fromReview bool, opts ...Option) (*Manager, error) {
	if !data.Loaded() {
		return nil, ErrNoQuestions
	}
	m := &Manager{
		info:      data,
		questions: data.Questions,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.answers = make([]int, len(m.questions))
	for i, q := range m.questions {
		m.answers[i] = Unanswered
		if fromReview {
			m.answers[i] = q.SelectedIndex()
		}
	}
	m.startedAt = m.now()
	return m, nil
}

// Info returns the quiz metadata the manager was built from.
func (m *Manager) Info() QuizData {
	return m.info
}

func (m *Manager) CurrentQuestion() Question {
	return m.questions[m.current]
}

func (m *Manager) CurrentIndex() int {
	return m.current
}

func (m *Manager) TotalQuestions() int {
	return len(m.questions)
}

// CurrentAnswer returns the chosen option for the current question.
func (m *Manager) CurrentAnswer() (int, bool) {
	a := m.answers[m.current]
	return a, a != Unanswered
}

// Answers returns a copy of every answer slot; Unanswered marks empty slots.
func (m *Manager) Answers() []int {
	out := make([]int, len(m.answers))
	copy(out, m.answers)
	return out
}

// AnswerCurrent records optionIndex for the current question.
func (m *Manager) AnswerCurrent(optionIndex int) error {
	if optionIndex < 0 || optionIndex >= len(m.questions[m.current].Options) {
		return fmt.Errorf("answer %d: %w", optionIndex, ErrInvalidOption)
	}
	m.answers[m.current] = optionIndex
	return nil
}

func (m *Manager) CanGoPrevious() bool {
	return m.current > 0
}

func (m *Manager) CanGoNext() bool {
	return m.current < len(m.questions)-1
}

func (m *Manager) IsLastQuestion() bool {
	return m.current == len(m.questions)-1
}

// GoToPrevious moves back one question. False means the pointer is already at
// the first question and nothing changed.
func (m *Manager) GoToPrevious() bool {
	if !m.CanGoPrevious() {
		return false
	}
	m.current--
	return true
}

// GoToNext moves forward one question. False on the last question is the
// caller's cue to complete the attempt instead.
func (m *Manager) GoToNext() bool {
	if !m.CanGoNext() {
		return false
	}
	m.current++
	return true
}

// GoToQuestion jumps to index; out-of-range indices leave the pointer alone.
func (m *Manager) GoToQuestion(index int) bool {
	if index < 0 || index >= len(m.questions) {
		return false
	}
	m.current = index
	return true
}

// Complete stamps the end time. Later calls keep the first completion time.
func (m *Manager) Complete() {
	if m.IsCompleted() {
		return
	}
	m.endedAt = m.now()
}

func (m *Manager) IsCompleted() bool {
	return !m.endedAt.IsZero()
}

// Reset clears all answers and starts a fresh attempt.
func (m *Manager) Reset() {
	for i := range m.answers {
		m.answers[i] = Unanswered
	}
	m.current = 0
	m.startedAt = m.now()
	m.endedAt = time.Time{}
}

// Score counts answers that point at a correct option.
func (m *Manager) Score() int {
	correct := 0
	for i, a := range m.answers {
		if m.questions[i].IsCorrectAnswer(a) {
			correct++
		}
	}
	return correct
}

// Accuracy is the rounded percentage of correct answers; 0 without questions.
func (m *Manager) Accuracy() int {
	return percent(m.Score(), len(m.questions))
}

// Elapsed is end-start for a completed attempt, otherwise now-start evaluated
// at call time.
func (m *Manager) Elapsed() time.Duration {
	if m.IsCompleted() {
		return m.endedAt.Sub(m.startedAt)
	}
	return m.now().Sub(m.startedAt)
}

// FormattedTime renders Elapsed as m:ss.
func (m *Manager) FormattedTime() string {
	return FormatElapsed(m.Elapsed())
}

// CorrectAnswerIndex returns the correct option of the current question.
func (m *Manager) CorrectAnswerIndex() int {
	return m.CurrentQuestion().CorrectIndex()
}

func (m *Manager) IsCurrentAnswered() bool {
	return m.answers[m.current] != Unanswered
}

func (m *Manager) AnsweredCount() int {
	n := 0
	for _, a := range m.answers {
		if a != Unanswered {
			n++
		}
	}
	return n
}

// Progress is the rounded percentage of answered questions; 0 without questions.
func (m *Manager) Progress() int {
	return percent(m.AnsweredCount(), len(m.questions))
}

// Save projects the attempt into the payload expected by the save-quiz tool.
func (m *Manager) Save(saveType string) (SavePayload, error) {
	return Project(m.info, m.answers, saveType)
}

// FormatElapsed renders d as minutes:seconds with two-digit seconds.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
