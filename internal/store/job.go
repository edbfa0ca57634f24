package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fieldhq/dispatch-engine/internal/store/model"
)

type Job interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Job, error)
	List(ctx context.Context, filter *JobQueryFilter) (model.JobList, error)
	Create(ctx context.Context, job model.Job) (*model.Job, error)
	// UpdateStatus is a conditional write: it flips status to the new value
	// only when the current status is one of the expected ones. Returns
	// ErrPreconditionFailed when the job exists but moved on.
	UpdateStatus(ctx context.Context, id uuid.UUID, expected []model.JobStatus, to model.JobStatus) error
	UpdateEstimatedPayout(ctx context.Context, id uuid.UUID, cents int64) error
}

type JobStore struct {
	db *gorm.DB
}

// Make sure we conform to Job interface
var _ Job = (*JobStore)(nil)

func NewJobStore(db *gorm.DB) Job {
	return &JobStore{db: db}
}

func (s *JobStore) Get(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	result := s.getDB(ctx).Preload("LineItems").First(&job, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &job, nil
}

func (s *JobStore) List(ctx context.Context, filter *JobQueryFilter) (model.JobList, error) {
	var jobs model.JobList
	tx := s.getDB(ctx).Model(&jobs).Order("created_at DESC").Preload("LineItems")

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	result := tx.Find(&jobs)
	if result.Error != nil {
		return nil, result.Error
	}
	return jobs, nil
}

func (s *JobStore) Create(ctx context.Context, job model.Job) (*model.Job, error) {
	result := s.getDB(ctx).Create(&job)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return s.Get(ctx, job.ID)
}

func (s *JobStore) UpdateStatus(ctx context.Context, id uuid.UUID, expected []model.JobStatus, to model.JobStatus) error {
	now := time.Now()
	result := s.getDB(ctx).Model(&model.Job{}).
		Where("id = ? AND status IN ?", id, expected).
		Updates(map[string]any{"status": to, "updated_at": &now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return ErrPreconditionFailed
	}
	return nil
}

func (s *JobStore) UpdateEstimatedPayout(ctx context.Context, id uuid.UUID, cents int64) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	meta := model.JobMetadata{}
	if job.Metadata != nil {
		meta = job.Metadata.Data
	}
	meta.EstimatedPayoutCents = cents

	now := time.Now()
	result := s.getDB(ctx).Model(&model.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{"metadata": model.MakeJSONField(meta), "updated_at": &now})
	return result.Error
}

func (s *JobStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db
}
