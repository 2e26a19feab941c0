package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/survey/internal/database"
)

// CreateSurvey validates in and stores the survey, its questions and options
// in one transaction. It returns the new survey id.
func (s *Service) CreateSurvey(ctx context.Context, ownerID int64, in SurveyInput) (int64, error) {
	in = normalizeSurveyInput(in)
	if err := validateSurveyInput(in); err != nil {
		return 0, err
	}

	var surveyID int64
	err := s.store.WithTx(ctx, func(tx *database.Store) error {
		id, err := tx.Insert(ctx, database.Q(
			"INSERT INTO surveys (user_id, title, description) VALUES ($1, $2, $3) RETURNING id",
			ownerID, in.Title, in.Description))
		if err != nil {
			return err
		}
		surveyID = id

		for i, q := range in.Questions {
			qid, err := tx.Insert(ctx, database.Q(
				"INSERT INTO questions (survey_id, prompt, position) VALUES ($1, $2, $3) RETURNING id",
				surveyID, q.Prompt, i+1))
			if err != nil {
				return err
			}
			for j, label := range q.Options {
				if _, err := tx.Insert(ctx, database.Q(
					"INSERT INTO question_options (question_id, label, position) VALUES ($1, $2, $3) RETURNING id",
					qid, label, j+1)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, WrapDB(err, "create survey")
	}

	return surveyID, nil
}

func normalizeSurveyInput(in SurveyInput) SurveyInput {
	out := SurveyInput{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
	}
	for _, q := range in.Questions {
		prompt := strings.TrimSpace(q.Prompt)
		var opts []string
		for _, o := range q.Options {
			if o = strings.TrimSpace(o); o != "" {
				opts = append(opts, o)
			}
		}
		if prompt == "" && len(opts) == 0 {
			continue
		}
		out.Questions = append(out.Questions, QuestionInput{Prompt: prompt, Options: opts})
	}
	return out
}

func validateSurveyInput(in SurveyInput) error {
	v := NewValidator()
	if v.Required("title", in.Title) {
		v.MaxLength("title", in.Title, MaxTitleLength)
	}
	v.MaxLength("description", in.Description, MaxDescriptionLength)

	switch {
	case len(in.Questions) == 0:
		v.Add("questions", "add at least one question")
	case len(in.Questions) > MaxQuestions:
		v.Add("questions", fmt.Sprintf("at most %d questions are allowed", MaxQuestions))
	}

	for i, q := range in.Questions {
		field := fmt.Sprintf("questions.%d", i)
		if v.Required(field, q.Prompt) {
			v.MaxLength(field, q.Prompt, MaxPromptLength)
		}
		if len(q.Options) == 0 {
			continue
		}
		v.Check(len(q.Options) >= 2, field, "a choice question needs at least two options")
		v.Check(len(q.Options) <= MaxOptions, field, fmt.Sprintf("at most %d options are allowed", MaxOptions))
		seen := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			key := strings.ToLower(o)
			if seen[key] {
				v.Add(field, fmt.Sprintf("option %q is listed twice", o))
			}
			seen[key] = true
			v.MaxLength(field, o, MaxOptionLength)
		}
	}

	return v.Err("invalid survey input")
}

// ListSurveys returns one page of surveys, newest first. page is 1-based and
// clamped to at least 1. A page past the last one comes back empty without
// querying, which also keeps the offset from overflowing.
func (s *Service) ListSurveys(ctx context.Context, page, perPage int) (*SurveyPage, error) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		page = 1
	}

	countRow, _, err := s.store.SelectOne(ctx, database.Q("SELECT COUNT(*) AS total FROM surveys"))
	if err != nil {
		return nil, WrapDB(err, "count surveys")
	}
	total := countRow.Int64("total")
	pages := totalPages(total, perPage)

	if page > 1 && page > pages {
		return &SurveyPage{
			Items:      []SurveySummary{},
			Page:       page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: pages,
		}, nil
	}

	rows, err := s.store.SelectMany(ctx, database.Q(`
		SELECT s.id, s.title, s.description, s.created_at, u.name AS author,
		       (SELECT COUNT(*) FROM responses r WHERE r.survey_id = s.id) AS response_count
		FROM surveys s
		JOIN users u ON u.id = s.user_id
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT $1 OFFSET $2`,
		perPage, (page-1)*perPage))
	if err != nil {
		return nil, WrapDB(err, "list surveys")
	}

	return &SurveyPage{
		Items:      summariesFromRows(rows),
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: pages,
	}, nil
}

// GetSurvey loads a survey with its questions and options in display order.
func (s *Service) GetSurvey(ctx context.Context, id int64) (*Survey, error) {
	row, ok, err := s.store.SelectOne(ctx, database.Q(`
		SELECT s.id, s.user_id, s.title, s.description, s.created_at, u.name AS author
		FROM surveys s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = $1`, id))
	if err != nil {
		return nil, WrapDB(err, "load survey")
	}
	if !ok {
		return nil, NotFound(fmt.Sprintf("survey %d not found", id), "Survey not found")
	}

	survey := &Survey{
		ID:          row.Int64("id"),
		OwnerID:     row.Int64("user_id"),
		Author:      row.String("author"),
		Title:       row.String("title"),
		Description: row.String("description"),
		CreatedAt:   row.Time("created_at"),
	}

	qRows, err := s.store.SelectMany(ctx, database.Q(
		"SELECT id, prompt, position FROM questions WHERE survey_id = $1 ORDER BY position", id))
	if err != nil {
		return nil, WrapDB(err, "load questions")
	}

	oRows, err := s.store.SelectMany(ctx, database.Q(`
		SELECT o.id, o.question_id, o.label
		FROM question_options o
		JOIN questions q ON q.id = o.question_id
		WHERE q.survey_id = $1
		ORDER BY o.question_id, o.position`, id))
	if err != nil {
		return nil, WrapDB(err, "load options")
	}

	options := make(map[int64][]Option)
	for _, o := range oRows {
		qid := o.Int64("question_id")
		options[qid] = append(options[qid], Option{ID: o.Int64("id"), Label: o.String("label")})
	}

	survey.Questions = make([]Question, 0, len(qRows))
	for _, q := range qRows {
		qid := q.Int64("id")
		survey.Questions = append(survey.Questions, Question{
			ID:       qid,
			Prompt:   q.String("prompt"),
			Position: int(q.Int64("position")),
			Options:  options[qid],
		})
	}

	return survey, nil
}

func summariesFromRows(rows []database.Row) []SurveySummary {
	items := make([]SurveySummary, 0, len(rows))
	for _, r := range rows {
		items = append(items, SurveySummary{
			ID:            r.Int64("id"),
			Title:         r.String("title"),
			Description:   r.String("description"),
			Author:        r.String("author"),
			ResponseCount: r.Int64("response_count"),
			CreatedAt:     r.Time("created_at"),
		})
	}
	return items
}
