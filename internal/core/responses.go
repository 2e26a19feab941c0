package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/survey/internal/database"
)

type preparedAnswer struct {
	questionID int64
	optionID   *int64
	value      string
}

// SubmitResponse records one set of answers to a survey. answers maps a
// question id to the raw form value: an option id for choice questions, the
// text otherwise. respondent may be nil for anonymous submissions; a signed-in
// user can respond to a survey only once.
func (s *Service) SubmitResponse(ctx context.Context, surveyID int64, respondent *User, answers map[int64]string) (int64, error) {
	survey, err := s.GetSurvey(ctx, surveyID)
	if err != nil {
		return 0, err
	}
	if len(survey.Questions) == 0 {
		return 0, BusinessLogic(fmt.Sprintf("survey %d has no questions", surveyID),
			"This survey has no questions to answer")
	}

	prepared, err := prepareAnswers(survey, answers)
	if err != nil {
		return 0, err
	}

	var userID *int64
	if respondent != nil {
		userID = &respondent.ID
	}

	var responseID int64
	err = s.store.WithTx(ctx, func(tx *database.Store) error {
		id, err := tx.Insert(ctx, database.Q(
			"INSERT INTO responses (survey_id, user_id) VALUES ($1, $2) RETURNING id",
			surveyID, userID))
		if err != nil {
			return err
		}
		responseID = id

		for _, a := range prepared {
			if _, err := tx.Insert(ctx, database.Q(
				"INSERT INTO answers (response_id, question_id, option_id, value) VALUES ($1, $2, $3, $4) RETURNING id",
				responseID, a.questionID, a.optionID, a.value)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, WrapDB(err, fmt.Sprintf("submit response to survey %d", surveyID))
	}

	return responseID, nil
}

func prepareAnswers(survey *Survey, answers map[int64]string) ([]preparedAnswer, error) {
	known := make(map[int64]bool, len(survey.Questions))
	for _, q := range survey.Questions {
		known[q.ID] = true
	}
	for qid := range answers {
		if !known[qid] {
			return nil, BusinessLogic(
				fmt.Sprintf("answer for question %d which is not part of survey %d", qid, survey.ID),
				"The submitted answers do not match this survey")
		}
	}

	v := NewValidator()
	prepared := make([]preparedAnswer, 0, len(survey.Questions))

	for _, q := range survey.Questions {
		field := fmt.Sprintf("q_%d", q.ID)
		raw := strings.TrimSpace(answers[q.ID])
		if raw == "" {
			v.Add(field, "please answer this question")
			continue
		}

		if !q.IsChoice() {
			v.MaxLength(field, raw, MaxAnswerLength)
			prepared = append(prepared, preparedAnswer{questionID: q.ID, value: raw})
			continue
		}

		optID, err := strconv.ParseInt(raw, 10, 64)
		label, ok := optionLabel(q, optID)
		if err != nil || !ok {
			return nil, BusinessLogic(
				fmt.Sprintf("option %q does not belong to question %d", raw, q.ID),
				"The selected option is not valid for this question")
		}
		prepared = append(prepared, preparedAnswer{questionID: q.ID, optionID: &optID, value: label})
	}

	if err := v.Err(fmt.Sprintf("incomplete response to survey %d", survey.ID)); err != nil {
		return nil, err
	}
	return prepared, nil
}

func optionLabel(q Question, id int64) (string, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o.Label, true
		}
	}
	return "", false
}

// Results aggregates all responses to a survey: option tallies with
// percentages for choice questions, submitted text for the others.
func (s *Service) Results(ctx context.Context, surveyID int64) (*SurveyResults, error) {
	survey, err := s.GetSurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	countRow, _, err := s.store.SelectOne(ctx, database.Q(
		"SELECT COUNT(*) AS total FROM responses WHERE survey_id = $1", surveyID))
	if err != nil {
		return nil, WrapDB(err, "count responses")
	}
	total := countRow.Int64("total")

	tallyRows, err := s.store.SelectMany(ctx, database.Q(`
		SELECT o.id AS option_id, COUNT(a.id) AS votes
		FROM question_options o
		JOIN questions q ON q.id = o.question_id
		LEFT JOIN answers a ON a.option_id = o.id
		WHERE q.survey_id = $1
		GROUP BY o.id`, surveyID))
	if err != nil {
		return nil, WrapDB(err, "tally options")
	}
	votes := make(map[int64]int64, len(tallyRows))
	for _, r := range tallyRows {
		votes[r.Int64("option_id")] = r.Int64("votes")
	}

	textRows, err := s.store.SelectMany(ctx, database.Q(`
		SELECT a.question_id, a.value
		FROM answers a
		JOIN questions q ON q.id = a.question_id
		WHERE q.survey_id = $1 AND a.option_id IS NULL
		ORDER BY a.id`, surveyID))
	if err != nil {
		return nil, WrapDB(err, "load text answers")
	}
	texts := make(map[int64][]string)
	for _, r := range textRows {
		qid := r.Int64("question_id")
		texts[qid] = append(texts[qid], r.String("value"))
	}

	results := &SurveyResults{Survey: survey, TotalResponses: total}
	for _, q := range survey.Questions {
		qr := QuestionResult{Question: q}
		if q.IsChoice() {
			qr.Tallies = tally(q.Options, votes)
		} else {
			qr.Texts = texts[q.ID]
		}
		results.Questions = append(results.Questions, qr)
	}

	return results, nil
}

// tally pairs options with their votes. Percent is relative to the votes cast
// for the question, so it sums to 100 unless nobody answered.
func tally(options []Option, votes map[int64]int64) []OptionTally {
	var sum int64
	for _, o := range options {
		sum += votes[o.ID]
	}

	out := make([]OptionTally, len(options))
	for i, o := range options {
		out[i] = OptionTally{Option: o, Votes: votes[o.ID]}
		if sum > 0 {
			out[i].Percent = float64(votes[o.ID]) * 100 / float64(sum)
		}
	}
	return out
}
