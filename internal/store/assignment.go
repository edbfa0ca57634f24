package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fieldhq/dispatch-engine/internal/store/model"
)

type Assignment interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Assignment, error)
	// GetByJobAndPro resolves the logical identity of an assignment.
	GetByJobAndPro(ctx context.Context, jobID, proID uuid.UUID) (*model.Assignment, error)
	List(ctx context.Context, filter *AssignmentQueryFilter) (model.AssignmentList, error)
	Create(ctx context.Context, assignment model.Assignment) (*model.Assignment, error)
	// Transition moves an assignment from one state to another with
	// compare-and-swap semantics: the write carries the expected prior state
	// as a predicate, and ErrPreconditionFailed signals a concurrent change.
	Transition(ctx context.Context, id uuid.UUID, from, to model.AssignmentState, at time.Time) (*model.Assignment, error)
	// ListCompleted lists completed assignments in completion order. The
	// payout backfill walks these and skips pairs that already have a
	// ledger entry.
	ListCompleted(ctx context.Context) (model.AssignmentList, error)
}

type AssignmentStore struct {
	db *gorm.DB
}

// Make sure we conform to Assignment interface
var _ Assignment = (*AssignmentStore)(nil)

func NewAssignmentStore(db *gorm.DB) Assignment {
	return &AssignmentStore{db: db}
}

func (s *AssignmentStore) Get(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	var assignment model.Assignment
	result := s.getDB(ctx).First(&assignment, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &assignment, nil
}

func (s *AssignmentStore) GetByJobAndPro(ctx context.Context, jobID, proID uuid.UUID) (*model.Assignment, error) {
	var assignment model.Assignment
	result := s.getDB(ctx).
		Order("created_at DESC").
		First(&assignment, "job_id = ? AND pro_id = ?", jobID, proID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &assignment, nil
}

func (s *AssignmentStore) List(ctx context.Context, filter *AssignmentQueryFilter) (model.AssignmentList, error) {
	var assignments model.AssignmentList
	tx := s.getDB(ctx).Model(&assignments).Order("created_at DESC")

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	result := tx.Find(&assignments)
	if result.Error != nil {
		return nil, result.Error
	}
	return assignments, nil
}

func (s *AssignmentStore) Create(ctx context.Context, assignment model.Assignment) (*model.Assignment, error) {
	result := s.getDB(ctx).Clauses(clause.Returning{}).Create(&assignment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &assignment, nil
}

func (s *AssignmentStore) Transition(ctx context.Context, id uuid.UUID, from, to model.AssignmentState, at time.Time) (*model.Assignment, error) {
	updates := map[string]any{"state": to, "updated_at": &at}
	switch to {
	case model.AssignmentStateAccepted:
		updates["accepted_at"] = &at
	case model.AssignmentStateDeclined:
		updates["declined_at"] = &at
	case model.AssignmentStateCompleted:
		updates["completed_at"] = &at
	}

	result := s.getDB(ctx).Model(&model.Assignment{}).
		Where("id = ? AND state = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrPreconditionFailed
	}

	return s.Get(ctx, id)
}

func (s *AssignmentStore) ListCompleted(ctx context.Context) (model.AssignmentList, error) {
	var assignments model.AssignmentList
	result := s.getDB(ctx).
		Where("state = ?", model.AssignmentStateCompleted).
		Order("completed_at").
		Find(&assignments)
	if result.Error != nil {
		return nil, result.Error
	}
	return assignments, nil
}

func (s *AssignmentStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db
}
