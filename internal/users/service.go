package users

import (
	"context"
	"errors"

	"github.com/toyz/receitas/pkg/axon"
)

// Service answers profile lookups
type Service struct {
	repo Repository
}

// NewService creates a Service over repo
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Profile returns the user with id, or a 404 HttpError
func (s *Service) Profile(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, axon.ErrNotFound(MsgNotFound)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
