package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fieldhq/dispatch-engine/internal/store/model"
)

type BaseQuerier struct {
	QueryFn []func(tx *gorm.DB) *gorm.DB
}

type ProQueryFilter BaseQuerier

func NewProQueryFilter() *ProQueryFilter {
	return &ProQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *ProQueryFilter) ByActive(active bool) *ProQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("active = ?", active)
	})
	return qf
}

func (qf *ProQueryFilter) ByID(ids []uuid.UUID) *ProQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("id IN ?", ids)
	})
	return qf
}

type AssignmentQueryFilter BaseQuerier

func NewAssignmentQueryFilter() *AssignmentQueryFilter {
	return &AssignmentQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *AssignmentQueryFilter) ByJobID(jobID uuid.UUID) *AssignmentQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("job_id = ?", jobID)
	})
	return qf
}

func (qf *AssignmentQueryFilter) ByProID(proID uuid.UUID) *AssignmentQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("pro_id = ?", proID)
	})
	return qf
}

func (qf *AssignmentQueryFilter) ByState(state model.AssignmentState) *AssignmentQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("state = ?", state)
	})
	return qf
}

type JobQueryFilter BaseQuerier

func NewJobQueryFilter() *JobQueryFilter {
	return &JobQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *JobQueryFilter) ByStatus(status model.JobStatus) *JobQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ?", status)
	})
	return qf
}

func (qf *JobQueryFilter) ByScheduledBetween(from, to time.Time) *JobQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("scheduled_start >= ? AND scheduled_start < ?", from, to)
	})
	return qf
}
