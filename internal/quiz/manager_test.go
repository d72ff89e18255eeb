package quiz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

// sampleQuiz builds n questions whose correct option is index i%4.
func sampleQuiz(n int) QuizData {
	qs := make([]Question, n)
	for i := range qs {
		opts := make([]QuestionOption, OptionsPerQuestion)
		for j := range opts {
			opts[j] = QuestionOption{Text: string(rune('A' + j)), IsCorrect: j == i%OptionsPerQuestion}
		}
		qs[i] = Question{ID: "q" + string(rune('1'+i)), Question: "Question", Hint: "hint", Options: opts}
	}
	return QuizData{ID: "quiz-1", Title: "Sample", Description: "desc", Language: "en", Questions: qs}
}

func TestNewManagerFreshState(t *testing.T) {
	clock := newClock()
	m, err := NewManager(sampleQuiz(3), false, WithClock(clock.Now))
	require.NoError(t, err)

	assert.Equal(t, []int{Unanswered, Unanswered, Unanswered}, m.Answers())
	assert.Equal(t, 0, m.CurrentIndex())
	assert.Equal(t, 3, m.TotalQuestions())
	assert.False(t, m.IsCompleted())
	_, ok := m.CurrentAnswer()
	assert.False(t, ok)
}

func TestNewManagerRejectsEmptyQuiz(t *testing.T) {
	_, err := NewManager(QuizData{Title: "empty"}, false)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestNewManagerReviewSeedsSelections(t *testing.T) {
	data := sampleQuiz(4)
	data.Questions[0].Options[2].Selected = true
	data.Questions[2].Options[0].Selected = true
	data.Questions[3].Options[3].Selected = true

	m, err := NewManager(data, true)
	require.NoError(t, err)
	assert.Equal(t, []int{2, Unanswered, 0, 3}, m.Answers())

	fresh, err := NewManager(data, false)
	require.NoError(t, err)
	assert.Equal(t, []int{Unanswered, Unanswered, Unanswered, Unanswered}, fresh.Answers())
}

func TestNavigationBounds(t *testing.T) {
	m, err := NewManager(sampleQuiz(3), false)
	require.NoError(t, err)

	assert.False(t, m.GoToPrevious())
	assert.Equal(t, 0, m.CurrentIndex())

	assert.True(t, m.GoToNext())
	assert.True(t, m.GoToNext())
	assert.True(t, m.IsLastQuestion())
	assert.False(t, m.GoToNext())
	assert.Equal(t, 2, m.CurrentIndex())

	assert.True(t, m.GoToPrevious())
	assert.Equal(t, 1, m.CurrentIndex())

	assert.False(t, m.GoToQuestion(3))
	assert.False(t, m.GoToQuestion(-1))
	assert.Equal(t, 1, m.CurrentIndex())
	assert.True(t, m.GoToQuestion(0))
	assert.Equal(t, 0, m.CurrentIndex())
}

func TestAnswerCurrentRejectsOutOfRange(t *testing.T) {
	m, err := NewManager(sampleQuiz(2), false)
	require.NoError(t, err)

	assert.ErrorIs(t, m.AnswerCurrent(4), ErrInvalidOption)
	assert.ErrorIs(t, m.AnswerCurrent(-1), ErrInvalidOption)
	assert.False(t, m.IsCurrentAnswered())

	require.NoError(t, m.AnswerCurrent(1))
	a, ok := m.CurrentAnswer()
	assert.True(t, ok)
	assert.Equal(t, 1, a)
}

func TestScoreAllCorrect(t *testing.T) {
	m, err := NewManager(sampleQuiz(3), false)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, m.AnswerCurrent(m.CorrectAnswerIndex()))
		m.GoToNext()
	}
	assert.Equal(t, 3, m.Score())
	assert.Equal(t, 100, m.Accuracy())
	assert.Equal(t, 3, m.AnsweredCount())
	assert.Equal(t, 100, m.Progress())
}

func TestScoreUnaffectedByReads(t *testing.T) {
	m, err := NewManager(sampleQuiz(3), false)
	require.NoError(t, err)
	require.NoError(t, m.AnswerCurrent(0))
	before := m.Score()

	m.CurrentAnswer()
	m.GoToNext()
	m.GoToPrevious()
	m.GoToQuestion(2)
	m.CurrentQuestion()

	assert.Equal(t, before, m.Score())
	assert.Equal(t, 1, before)
}

func TestAccuracyAndProgressRounding(t *testing.T) {
	m, err := NewManager(sampleQuiz(3), false)
	require.NoError(t, err)

	require.NoError(t, m.AnswerCurrent(0))
	m.GoToNext()
	require.NoError(t, m.AnswerCurrent(0))

	assert.Equal(t, 1, m.Score())
	assert.Equal(t, 33, m.Accuracy())
	assert.Equal(t, 67, m.Progress())
}

func TestPercentWithoutQuestions(t *testing.T) {
	assert.Equal(t, 0, percent(0, 0))
}

func TestCompleteIsIdempotent(t *testing.T) {
	clock := newClock()
	m, err := NewManager(sampleQuiz(2), false, WithClock(clock.Now))
	require.NoError(t, err)

	clock.Advance(75 * time.Second)
	m.Complete()
	clock.Advance(time.Hour)
	m.Complete()

	assert.True(t, m.IsCompleted())
	assert.Equal(t, 75*time.Second, m.Elapsed())
	assert.Equal(t, "1:15", m.FormattedTime())
}

func TestElapsedInProgressIsLazy(t *testing.T) {
	clock := newClock()
	m, err := NewManager(sampleQuiz(2), false, WithClock(clock.Now))
	require.NoError(t, err)

	clock.Advance(5 * time.Second)
	assert.Equal(t, 5*time.Second, m.Elapsed())
	clock.Advance(4 * time.Second)
	assert.Equal(t, "0:09", m.FormattedTime())
}

func TestResetMatchesFreshManager(t *testing.T) {
	clock := newClock()
	data := sampleQuiz(3)
	m, err := NewManager(data, false, WithClock(clock.Now))
	require.NoError(t, err)

	require.NoError(t, m.AnswerCurrent(2))
	m.GoToNext()
	require.NoError(t, m.AnswerCurrent(1))
	m.Complete()

	clock.Advance(time.Minute)
	m.Reset()

	fresh, err := NewManager(data, false, WithClock(clock.Now))
	require.NoError(t, err)
	assert.Equal(t, fresh.Answers(), m.Answers())
	assert.Equal(t, fresh.CurrentIndex(), m.CurrentIndex())
	assert.Equal(t, fresh.IsCompleted(), m.IsCompleted())
	assert.Equal(t, fresh.startedAt, m.startedAt)
	assert.Equal(t, time.Duration(0), m.Elapsed())
}

func TestFormatElapsed(t *testing.T) {
	cases := map[time.Duration]string{
		0:                                "0:00",
		999 * time.Millisecond:           "0:00",
		61 * time.Second:                 "1:01",
		10*time.Minute + 5*time.Second:   "10:05",
		-3 * time.Second:                 "0:00",
		125*time.Minute + 59*time.Second: "125:59",
	}
	for d, want := range cases {
		assert.Equal(t, want, FormatElapsed(d), d.String())
	}
}
