package core

import (
	"github.com/JonMunkholm/survey/internal/database"
	"golang.org/x/crypto/bcrypt"
)

// Limits applied to user input.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxPromptLength      = 500
	MaxOptionLength      = 200
	MaxQuestions         = 50
	MaxOptions           = 20
	MaxAnswerLength      = 5000
	MinPasswordLength    = 8
	DefaultPerPage       = 10
)

// Service implements the survey application's use cases on top of the store.
// Every error it returns is an *AppError.
type Service struct {
	store      *database.Store
	bcryptCost int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) ServiceOption {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// NewService creates a Service backed by store.
func NewService(store *database.Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:      store,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// totalPages returns how many pages of perPage items hold total items.
func totalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
