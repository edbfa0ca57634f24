package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fieldhq/dispatch-engine/internal/store/model"
)

type Pro interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Pro, error)
	List(ctx context.Context, filter *ProQueryFilter) (model.ProList, error)
}

type ProStore struct {
	db *gorm.DB
}

// Make sure we conform to Pro interface
var _ Pro = (*ProStore)(nil)

func NewProStore(db *gorm.DB) Pro {
	return &ProStore{db: db}
}

func (s *ProStore) Get(ctx context.Context, id uuid.UUID) (*model.Pro, error) {
	var pro model.Pro
	result := s.getDB(ctx).First(&pro, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &pro, nil
}

func (s *ProStore) List(ctx context.Context, filter *ProQueryFilter) (model.ProList, error) {
	var pros model.ProList
	tx := s.getDB(ctx).Model(&pros).Order("created_at")

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	result := tx.Find(&pros)
	if result.Error != nil {
		return nil, result.Error
	}
	return pros, nil
}

func (s *ProStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db
}
