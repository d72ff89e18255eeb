package quiz

import "fmt"

// SavePayload is the argument object of the save-quiz tool.
type SavePayload struct {
	Data QuizData `json:"data"`
}

// Project builds the save payload for answers over data.
//
// With SaveAll every question is kept and Error lists the questions whose
// selected option is wrong; unanswered questions are not listed. With
// SaveIncorrect only questions without a correct answer are kept (unanswered
// ones included, with nothing selected). In both modes Error holds original
// question indices.
func Project(data QuizData, answers []int, saveType string) (SavePayload, error) {
	if !ValidSaveType(saveType) {
		return SavePayload{}, fmt.Errorf("%q: %w", saveType, ErrInvalidSaveType)
	}

	questions := make([]Question, 0, len(data.Questions))
	errIdx := make([]int, 0)
	for i, q := range data.Questions {
		answer := answerAt(answers, i)
		correct := q.IsCorrectAnswer(answer)

		switch saveType {
		case SaveAll:
			questions = append(questions, q.WithSelection(answer))
			if answer != Unanswered && !correct {
				errIdx = append(errIdx, i)
			}
		case SaveIncorrect:
			if correct {
				continue
			}
			questions = append(questions, q.WithSelection(answer))
			errIdx = append(errIdx, i)
		}
	}

	out := data
	out.Questions = questions
	out.Error = errIdx
	out.Type = saveType
	return SavePayload{Data: out}, nil
}

func answerAt(answers []int, i int) int {
	if i >= len(answers) {
		return Unanswered
	}
	return answers[i]
}
