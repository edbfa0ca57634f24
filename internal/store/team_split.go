package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fieldhq/dispatch-engine/internal/store/model"
)

type TeamSplit interface {
	GetByJob(ctx context.Context, jobID uuid.UUID) (*model.TeamSplit, error)
}

type TeamSplitStore struct {
	db *gorm.DB
}

// Make sure we conform to TeamSplit interface
var _ TeamSplit = (*TeamSplitStore)(nil)

func NewTeamSplitStore(db *gorm.DB) TeamSplit {
	return &TeamSplitStore{db: db}
}

func (s *TeamSplitStore) GetByJob(ctx context.Context, jobID uuid.UUID) (*model.TeamSplit, error) {
	var split model.TeamSplit
	result := s.getDB(ctx).First(&split, "job_id = ?", jobID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &split, nil
}

func (s *TeamSplitStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db
}
