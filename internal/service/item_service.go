package service

import (
	"context"

	"rentdesk/internal/domain"
	"rentdesk/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewItemService(repo domain.Repository, logger *zerolog.Logger) *ItemService {
	return &ItemService{repo: repo, logger: logger}
}

func (s *ItemService) GetActiveItems(ctx context.Context, shopID string) ([]*models.Item, error) {
	return s.repo.GetActiveItems(ctx, shopID)
}

func (s *ItemService) GetItemByID(ctx context.Context, shopID string, id int64) (*models.Item, error) {
	return s.repo.GetItemByID(ctx, shopID, id)
}
