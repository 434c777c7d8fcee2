package notification

import "context"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, businessID string, unreadOnly bool, limit, offset int32) ([]Entity, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByBusiness(ctx, businessID, unreadOnly, limit, offset)
}

func (s *Service) MarkRead(ctx context.Context, businessID string, id int64) error {
	return s.repo.MarkRead(ctx, businessID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, businessID string) error {
	return s.repo.MarkAllRead(ctx, businessID)
}

func (s *Service) CountUnread(ctx context.Context, businessID string) (int64, error) {
	return s.repo.CountUnread(ctx, businessID)
}
