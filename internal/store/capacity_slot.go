package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/fieldhq/dispatch-engine/internal/store/model"
)

// CapacitySlot rows are written and incremented by the booking collaborators;
// the dispatch core only reads them.
type CapacitySlot interface {
	ListForDateSlot(ctx context.Context, date, timeSlot string) (model.CapacitySlotList, error)
	// AnyForDateSlot decides the allocator mode: intelligent when any row
	// exists for the date/slot, fallback otherwise.
	AnyForDateSlot(ctx context.Context, date, timeSlot string) (bool, error)
}

type CapacitySlotStore struct {
	db *gorm.DB
}

// Make sure we conform to CapacitySlot interface
var _ CapacitySlot = (*CapacitySlotStore)(nil)

func NewCapacitySlotStore(db *gorm.DB) CapacitySlot {
	return &CapacitySlotStore{db: db}
}

func (s *CapacitySlotStore) ListForDateSlot(ctx context.Context, date, timeSlot string) (model.CapacitySlotList, error) {
	var slots model.CapacitySlotList
	result := s.getDB(ctx).
		Where("date = ? AND time_slot = ?", date, timeSlot).
		Find(&slots)
	if result.Error != nil {
		return nil, result.Error
	}
	return slots, nil
}

func (s *CapacitySlotStore) AnyForDateSlot(ctx context.Context, date, timeSlot string) (bool, error) {
	var count int64
	result := s.getDB(ctx).Model(&model.CapacitySlot{}).
		Where("date = ? AND time_slot = ?", date, timeSlot).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

func (s *CapacitySlotStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db
}
