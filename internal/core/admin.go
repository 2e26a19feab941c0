package core

import (
	"context"

	"github.com/JonMunkholm/survey/internal/database"
)

// AdminStats returns site-wide counts and the most recent surveys.
func (s *Service) AdminStats(ctx context.Context) (*AdminStats, error) {
	row, _, err := s.store.SelectOne(ctx, database.Q(`
		SELECT (SELECT COUNT(*) FROM users)     AS users,
		       (SELECT COUNT(*) FROM surveys)   AS surveys,
		       (SELECT COUNT(*) FROM responses) AS responses`))
	if err != nil {
		return nil, WrapDB(err, "load admin stats")
	}

	recent, err := s.ListSurveys(ctx, 1, 5)
	if err != nil {
		return nil, err
	}

	return &AdminStats{
		Users:     row.Int64("users"),
		Surveys:   row.Int64("surveys"),
		Responses: row.Int64("responses"),
		Recent:    recent.Items,
	}, nil
}
