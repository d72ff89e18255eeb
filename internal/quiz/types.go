package quiz

import (
	"errors"
	"fmt"
	"strings"
)

// OptionsPerQuestion is the fixed number of answer options per question.
const OptionsPerQuestion = 4

// Save types accepted by the save projector.
const (
	SaveAll       = "all"
	SaveIncorrect = "incorrect"
)

var (
	ErrNoQuestions     = errors.New("quiz has no questions")
	ErrMissingTitle    = errors.New("quiz title is required")
	ErrOptionCount     = errors.New("question must have exactly 4 options")
	ErrCorrectCount    = errors.New("question must have exactly one correct option")
	ErrInvalidOption   = errors.New("option index out of range")
	ErrInvalidSaveType = errors.New("save type must be all or incorrect")
)

// QuestionOption is a single answer choice.
type QuestionOption struct {
	Text        string `json:"text" jsonschema:"option text, KaTeX allowed ($...$ inline, $$...$$ display)"`
	IsCorrect   bool   `json:"isCorrect" jsonschema:"whether this option is the correct answer"`
	Explanation string `json:"explanation" jsonschema:"why this option is correct or wrong"`
	Selected    bool   `json:"selected" jsonschema:"whether the user selected this option"`
}

// Question is one multiple-choice item as generated upstream.
type Question struct {
	ID       string           `json:"id" jsonschema:"unique question id, e.g. q1"`
	Question string           `json:"question" jsonschema:"question text, KaTeX allowed"`
	Hint     string           `json:"hint" jsonschema:"helpful hint for the question"`
	Options  []QuestionOption `json:"options" jsonschema:"exactly 4 options, exactly one correct"`
}

// QuizData is the quiz payload injected by the host and persisted by the library.
// Error is derived at save time and is not authoritative on input.
type QuizData struct {
	ID          string     `json:"id,omitempty" jsonschema:"library id of a saved quiz"`
	Title       string     `json:"title" jsonschema:"quiz title, e.g. Python Programming Quiz"`
	Description string     `json:"description" jsonschema:"brief description of the quiz"`
	Language    string     `json:"language,omitempty" jsonschema:"language of the quiz content"`
	Questions   []Question `json:"questions" jsonschema:"quiz questions"`
	Error       []int      `json:"error" jsonschema:"indices of questions answered incorrectly"`
	CreatedAt   string     `json:"createdAt,omitempty" jsonschema:"creation timestamp of a saved quiz"`
	Type        string     `json:"type,omitempty" jsonschema:"save type: all or incorrect"`
}

// Loaded reports whether the data carries at least one question.
func (d *QuizData) Loaded() bool {
	return d != nil && len(d.Questions) > 0
}

// Validate checks the structural invariants of a quiz.
func (d QuizData) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrMissingTitle
	}
	if len(d.Questions) == 0 {
		return ErrNoQuestions
	}
	return d.validateQuestions()
}

// ValidateSaved is Validate without the non-empty rule: an incorrect-mode
// save of a fully correct attempt carries no questions.
func (d QuizData) ValidateSaved() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrMissingTitle
	}
	return d.validateQuestions()
}

func (d QuizData) validateQuestions() error {
	for i, q := range d.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
	}
	return nil
}

// Validate checks the option count and that exactly one option is correct.
func (q Question) Validate() error {
	if len(q.Options) != OptionsPerQuestion {
		return ErrOptionCount
	}
	correct := 0
	for _, opt := range q.Options {
		if opt.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return ErrCorrectCount
	}
	return nil
}

// CorrectIndex returns the index of the correct option, or -1.
func (q Question) CorrectIndex() int {
	for i, opt := range q.Options {
		if opt.IsCorrect {
			return i
		}
	}
	return -1
}

// SelectedIndex returns the first option marked selected, or -1.
func (q Question) SelectedIndex() int {
	for i, opt := range q.Options {
		if opt.Selected {
			return i
		}
	}
	return -1
}

// IsCorrectAnswer reports whether answer points at the correct option.
func (q Question) IsCorrectAnswer(answer int) bool {
	return answer >= 0 && answer < len(q.Options) && q.Options[answer].IsCorrect
}

// WithSelection returns a copy of q where only the option at answer is selected.
// A negative answer clears every selection.
func (q Question) WithSelection(answer int) Question {
	out := q
	out.Options = make([]QuestionOption, len(q.Options))
	for i, opt := range q.Options {
		opt.Selected = i == answer
		out.Options[i] = opt
	}
	return out
}

// ValidSaveType reports whether t is a supported save type.
func ValidSaveType(t string) bool {
	return t == SaveAll || t == SaveIncorrect
}
