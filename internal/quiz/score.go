package quiz

import "math"

// Score grades a submitted answer set against a quiz. Answers are matched to
// questions by id; a selection equal to the question's correct index counts
// one point. Only the first selection per question counts, so repeated
// answers cannot push correctAnswers past totalQuestions. The denominator is
// the quiz's full question count, so missing answers score as incorrect.
// Pure and deterministic.
func Score(q Quiz, answers []Answer) (Summary, error) {
	total := len(q.Questions)
	if total == 0 {
		return Summary{}, ErrNoQuestions
	}

	byID := make(map[int]Question, total)
	for _, qu := range q.Questions {
		byID[qu.ID] = qu
	}

	correct := 0
	seen := make(map[int]bool, len(answers))
	for _, a := range answers {
		if seen[a.QuestionID] {
			continue
		}
		seen[a.QuestionID] = true
		qu, ok := byID[a.QuestionID]
		if ok && a.SelectedAnswer == qu.CorrectAnswer {
			correct++
		}
	}

	score := int(math.Round(float64(correct) / float64(total) * 100))
	return Summary{
		Score:          score,
		TotalQuestions: total,
		CorrectAnswers: correct,
		Passed:         score >= q.PassingScore,
	}, nil
}
