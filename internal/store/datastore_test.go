package store_test

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/fieldhq/dispatch-engine/internal/config"
	st "github.com/fieldhq/dispatch-engine/internal/store"
	"github.com/fieldhq/dispatch-engine/internal/store/model"
)

var _ = Describe("Store", Ordered, func() {
	var (
		store  st.Store
		gormDB *gorm.DB
	)

	BeforeAll(func() {
		cfg := config.NewDefault()
		db, err := st.InitDB(cfg)
		Expect(err).To(BeNil())
		gormDB = db

		store = st.NewStore(db)
		Expect(store).ToNot(BeNil())
		Expect(store.InitialMigration()).To(BeNil())
	})

	AfterAll(func() {
		store.Close()
	})

	Context("schema", func() {
		It("fills created_at from the column default", func() {
			id := uuid.New()
			Expect(gormDB.Exec(fmt.Sprintf("INSERT INTO jobs (id, status) VALUES ('%s', 'pending_assign');", id)).Error).To(BeNil())

			job, err := store.Job().Get(context.TODO(), id)
			Expect(err).To(BeNil())
			Expect(job.CreatedAt.IsZero()).To(BeFalse())
		})

		AfterEach(func() {
			gormDB.Exec("DELETE from jobs;")
		})
	})

	Context("transaction", func() {
		It("insert a job successfully", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			job, err := store.Job().Create(ctx, model.Job{ID: uuid.New(), Status: model.JobStatusPendingAssign})
			Expect(job).ToNot(BeNil())
			Expect(err).To(BeNil())

			// commit
			_, cerr := st.Commit(ctx)
			Expect(cerr).To(BeNil())

			count := 0
			err = gormDB.Raw("SELECT COUNT(*) from jobs;").Scan(&count).Error
			Expect(err).To(BeNil())
			Expect(count).To(Equal(1))
		})

		It("rollback a job successfully", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			job, err := store.Job().Create(ctx, model.Job{ID: uuid.New(), Status: model.JobStatusPendingAssign})
			Expect(job).ToNot(BeNil())
			Expect(err).To(BeNil())

			// rollback
			_, cerr := st.Rollback(ctx)
			Expect(cerr).To(BeNil())

			count := 0
			err = gormDB.Raw("SELECT COUNT(*) from jobs;").Scan(&count).Error
			Expect(err).To(BeNil())
			Expect(count).To(Equal(0))
		})

		AfterEach(func() {
			gormDB.Exec("DELETE from jobs;")
		})
	})

	Context("statistics", func() {
		It("aggregates jobs, offers, pros and pending payouts", func() {
			Expect(gormDB.Exec(fmt.Sprintf(insertJobStm, uuid.New(), "2026-08-01 10:00:00", "pending_assign", 0)).Error).To(BeNil())
			Expect(gormDB.Exec(fmt.Sprintf(insertJobStm, uuid.New(), "2026-08-01 10:00:00", "completed", 0)).Error).To(BeNil())
			Expect(gormDB.Exec(fmt.Sprintf("INSERT INTO pros (id, created_at, name, service_radius_miles, active) VALUES ('%s', '2026-08-01 10:00:00', 'a', 0, TRUE);", uuid.New())).Error).To(BeNil())
			Expect(gormDB.Exec(fmt.Sprintf("INSERT INTO pros (id, created_at, name, service_radius_miles, active) VALUES ('%s', '2026-08-01 10:00:00', 'b', 0, FALSE);", uuid.New())).Error).To(BeNil())
			Expect(gormDB.Exec(fmt.Sprintf(insertAssignmentStm, uuid.New(), "2026-08-01 10:00:00", uuid.New(), uuid.New(), "offered")).Error).To(BeNil())
			Expect(gormDB.Exec(fmt.Sprintf(insertLedgerEntryStm, uuid.New(), uuid.New(), uuid.New(), 5000)).Error).To(BeNil())

			stats, err := store.Statistics(context.TODO())
			Expect(err).To(BeNil())
			Expect(stats.JobsByStatus[string(model.JobStatusPendingAssign)]).To(BeEquivalentTo(1))
			Expect(stats.JobsByStatus[string(model.JobStatusCompleted)]).To(BeEquivalentTo(1))
			Expect(stats.OpenOffers).To(BeEquivalentTo(1))
			Expect(stats.ActivePros).To(BeEquivalentTo(1))
			Expect(stats.PendingPayoutCents).To(Equal(int64(5000)))
		})

		AfterEach(func() {
			gormDB.Exec("DELETE from payout_ledger_entries;")
			gormDB.Exec("DELETE from assignments;")
			gormDB.Exec("DELETE from pros;")
			gormDB.Exec("DELETE from jobs;")
		})
	})
})
