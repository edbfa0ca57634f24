package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/fieldhq/dispatch-engine/internal/store/model"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Job() Job
	Pro() Pro
	Assignment() Assignment
	CapacitySlot() CapacitySlot
	PayoutLedger() PayoutLedger
	TeamSplit() TeamSplit
	Statistics(ctx context.Context) (model.DispatchStats, error)
	InitialMigration() error
	Close() error
}

type DataStore struct {
	db           *gorm.DB
	job          Job
	pro          Pro
	assignment   Assignment
	capacitySlot CapacitySlot
	payoutLedger PayoutLedger
	teamSplit    TeamSplit
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:           db,
		job:          NewJobStore(db),
		pro:          NewProStore(db),
		assignment:   NewAssignmentStore(db),
		capacitySlot: NewCapacitySlotStore(db),
		payoutLedger: NewPayoutLedgerStore(db),
		teamSplit:    NewTeamSplitStore(db),
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) Job() Job {
	return s.job
}

func (s *DataStore) Pro() Pro {
	return s.pro
}

func (s *DataStore) Assignment() Assignment {
	return s.assignment
}

func (s *DataStore) CapacitySlot() CapacitySlot {
	return s.capacitySlot
}

func (s *DataStore) PayoutLedger() PayoutLedger {
	return s.payoutLedger
}

func (s *DataStore) TeamSplit() TeamSplit {
	return s.teamSplit
}

func (s *DataStore) Statistics(ctx context.Context) (model.DispatchStats, error) {
	stats := model.DispatchStats{JobsByStatus: make(map[string]int64)}

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := s.db.WithContext(ctx).Model(&model.Job{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return model.DispatchStats{}, err
	}
	for _, c := range counts {
		stats.JobsByStatus[c.Status] = c.Count
	}

	if err := s.db.WithContext(ctx).Model(&model.Assignment{}).
		Where("state = ?", model.AssignmentStateOffered).
		Count(&stats.OpenOffers).Error; err != nil {
		return model.DispatchStats{}, err
	}

	if err := s.db.WithContext(ctx).Model(&model.Pro{}).
		Where("active = ?", true).
		Count(&stats.ActivePros).Error; err != nil {
		return model.DispatchStats{}, err
	}

	var pending struct{ Total int64 }
	if err := s.db.WithContext(ctx).Model(&model.PayoutLedgerEntry{}).
		Select("coalesce(sum(amount_cents), 0) as total").
		Where("state = ?", model.PayoutStatePending).
		Scan(&pending).Error; err != nil {
		return model.DispatchStats{}, err
	}
	stats.PendingPayoutCents = pending.Total

	return stats, nil
}

// InitialMigration creates the schema with gorm's auto-migration. Production
// deployments run the goose SQL migrations instead; this path serves sqlite
// and local development.
func (s *DataStore) InitialMigration() error {
	return s.db.AutoMigrate(
		&model.Job{},
		&model.LineItem{},
		&model.Pro{},
		&model.Assignment{},
		&model.CapacitySlot{},
		&model.PayoutLedgerEntry{},
		&model.TeamSplit{},
	)
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
