package core

import "time"

// Roles a user may hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account. PasswordHash never leaves the package's
// callers through rendering.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// IsAdmin reports whether the user may see the admin area.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// RegisterInput is the submitted registration form.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

// Survey is a questionnaire with its ordered questions.
type Survey struct {
	ID          int64
	OwnerID     int64
	Author      string
	Title       string
	Description string
	CreatedAt   time.Time
	Questions   []Question
}

// Question is one prompt. With Options it is single choice; without, free text.
type Question struct {
	ID       int64
	Prompt   string
	Position int
	Options  []Option
}

// IsChoice reports whether the question is answered by picking an option.
func (q Question) IsChoice() bool {
	return len(q.Options) > 0
}

// Option is one selectable answer of a choice question.
type Option struct {
	ID    int64
	Label string
}

// SurveySummary is a survey as shown in listings.
type SurveySummary struct {
	ID            int64
	Title         string
	Description   string
	Author        string
	ResponseCount int64
	CreatedAt     time.Time
}

// SurveyPage is one page of the survey listing.
type SurveyPage struct {
	Items      []SurveySummary
	Page       int
	PerPage    int
	Total      int64
	TotalPages int
}

// SurveyInput is the submitted survey creation form.
type SurveyInput struct {
	Title       string
	Description string
	Questions   []QuestionInput
}

// QuestionInput is one question of the creation form.
type QuestionInput struct {
	Prompt  string
	Options []string
}

// SurveyResults holds aggregated answers for a survey.
type SurveyResults struct {
	Survey         *Survey
	TotalResponses int64
	Questions      []QuestionResult
}

// QuestionResult aggregates the answers to one question.
type QuestionResult struct {
	Question Question
	Tallies  []OptionTally // choice questions
	Texts    []string      // free-text questions
}

// OptionTally counts how often an option was picked.
type OptionTally struct {
	Option  Option
	Votes   int64
	Percent float64
}

// AdminStats summarizes the site for the admin dashboard.
type AdminStats struct {
	Users     int64
	Surveys   int64
	Responses int64
	Recent    []SurveySummary
}
