package quiz

import "testing"

func threeQuestionQuiz(passing int) Quiz {
	return Quiz{
		ID:           "q1",
		Title:        "Basics",
		PassingScore: passing,
		Questions: []Question{
			{ID: 1, Question: "a?", Options: []string{"x", "y"}, CorrectAnswer: 0},
			{ID: 2, Question: "b?", Options: []string{"x", "y"}, CorrectAnswer: 1},
			{ID: 3, Question: "c?", Options: []string{"x", "y"}, CorrectAnswer: 0},
		},
	}
}

func TestScoreRoundsHalfUp(t *testing.T) {
	q := threeQuestionQuiz(60)
	sum, err := Score(q, []Answer{
		{QuestionID: 1, SelectedAnswer: 0},
		{QuestionID: 2, SelectedAnswer: 1},
		{QuestionID: 3, SelectedAnswer: 1},
	})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	// 2/3 = 66.67 rounds to 67
	if sum.Score != 67 || sum.CorrectAnswers != 2 || sum.TotalQuestions != 3 {
		t.Fatalf("got %+v", sum)
	}
	if !sum.Passed {
		t.Fatalf("67 >= 60 should pass")
	}
}

func TestScorePassBoundary(t *testing.T) {
	q := threeQuestionQuiz(67)
	sum, _ := Score(q, []Answer{
		{QuestionID: 1, SelectedAnswer: 0},
		{QuestionID: 2, SelectedAnswer: 1},
	})
	if sum.Score != 67 || !sum.Passed {
		t.Fatalf("score equal to passing must pass, got %+v", sum)
	}
}

func TestScoreThreeOfFive(t *testing.T) {
	q := Quiz{
		ID: "q5", Title: "Five", PassingScore: 60,
		Questions: []Question{
			{ID: 1, Question: "a?", Options: []string{"x", "y"}, CorrectAnswer: 0},
			{ID: 2, Question: "b?", Options: []string{"x", "y"}, CorrectAnswer: 0},
			{ID: 3, Question: "c?", Options: []string{"x", "y"}, CorrectAnswer: 0},
			{ID: 4, Question: "d?", Options: []string{"x", "y"}, CorrectAnswer: 0},
			{ID: 5, Question: "e?", Options: []string{"x", "y"}, CorrectAnswer: 0},
		},
	}
	answers := []Answer{
		{QuestionID: 1, SelectedAnswer: 0},
		{QuestionID: 2, SelectedAnswer: 0},
		{QuestionID: 3, SelectedAnswer: 0},
		{QuestionID: 4, SelectedAnswer: 1},
		{QuestionID: 5, SelectedAnswer: 1},
	}
	sum, err := Score(q, answers)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if sum.Score != 60 || !sum.Passed {
		t.Fatalf("3/5 at passing 60: got %+v", sum)
	}

	q.PassingScore = 70
	sum, _ = Score(q, answers)
	if sum.Score != 60 || sum.Passed {
		t.Fatalf("3/5 at passing 70 must fail: got %+v", sum)
	}
}

func TestScoreMissingAnswersCountAsWrong(t *testing.T) {
	q := threeQuestionQuiz(0)
	sum, err := Score(q, nil)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if sum.Score != 0 || sum.TotalQuestions != 3 {
		t.Fatalf("got %+v", sum)
	}
}

func TestScoreCountsEachQuestionOnce(t *testing.T) {
	q := threeQuestionQuiz(0)
	sum, err := Score(q, []Answer{
		{QuestionID: 1, SelectedAnswer: 0},
		{QuestionID: 1, SelectedAnswer: 0},
		{QuestionID: 1, SelectedAnswer: 0},
		{QuestionID: 1, SelectedAnswer: 0},
	})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if sum.CorrectAnswers != 1 || sum.Score != 33 {
		t.Fatalf("repeated answer must count once: %+v", sum)
	}
	if sum.CorrectAnswers > sum.TotalQuestions {
		t.Fatalf("correct %d exceeds total %d", sum.CorrectAnswers, sum.TotalQuestions)
	}

	// First selection wins over a later contradictory one.
	sum, _ = Score(q, []Answer{
		{QuestionID: 2, SelectedAnswer: 1},
		{QuestionID: 2, SelectedAnswer: 0},
	})
	if sum.CorrectAnswers != 1 {
		t.Fatalf("first selection must win: %+v", sum)
	}
}

func TestScoreIgnoresUnknownQuestionIDs(t *testing.T) {
	q := threeQuestionQuiz(0)
	sum, _ := Score(q, []Answer{
		{QuestionID: 99, SelectedAnswer: 0},
		{QuestionID: 1, SelectedAnswer: 0},
	})
	if sum.CorrectAnswers != 1 {
		t.Fatalf("unknown ids must not count, got %+v", sum)
	}
}

func TestScoreNoQuestions(t *testing.T) {
	if _, err := Score(Quiz{ID: "empty"}, nil); err != ErrNoQuestions {
		t.Fatalf("want ErrNoQuestions, got %v", err)
	}
}
