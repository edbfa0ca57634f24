package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fieldhq/dispatch-engine/internal/store/model"
)

// PayoutLedger is insert-only from the dispatch core; approval and payment
// transitions belong to the admin workflow.
type PayoutLedger interface {
	GetByJobAndPro(ctx context.Context, jobID, proID uuid.UUID) (*model.PayoutLedgerEntry, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) (model.PayoutLedgerEntryList, error)
	Create(ctx context.Context, entry model.PayoutLedgerEntry) (*model.PayoutLedgerEntry, error)
}

type PayoutLedgerStore struct {
	db *gorm.DB
}

// Make sure we conform to PayoutLedger interface
var _ PayoutLedger = (*PayoutLedgerStore)(nil)

func NewPayoutLedgerStore(db *gorm.DB) PayoutLedger {
	return &PayoutLedgerStore{db: db}
}

func (s *PayoutLedgerStore) GetByJobAndPro(ctx context.Context, jobID, proID uuid.UUID) (*model.PayoutLedgerEntry, error) {
	var entry model.PayoutLedgerEntry
	result := s.getDB(ctx).First(&entry, "job_id = ? AND pro_id = ?", jobID, proID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &entry, nil
}

func (s *PayoutLedgerStore) ListByJob(ctx context.Context, jobID uuid.UUID) (model.PayoutLedgerEntryList, error) {
	var entries model.PayoutLedgerEntryList
	result := s.getDB(ctx).Where("job_id = ?", jobID).Order("created_at").Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}
	return entries, nil
}

func (s *PayoutLedgerStore) Create(ctx context.Context, entry model.PayoutLedgerEntry) (*model.PayoutLedgerEntry, error) {
	result := s.getDB(ctx).Clauses(clause.Returning{}).Create(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &entry, nil
}

func (s *PayoutLedgerStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db
}
