package store_test

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/fieldhq/dispatch-engine/internal/config"
	"github.com/fieldhq/dispatch-engine/internal/store"
	"github.com/fieldhq/dispatch-engine/internal/store/model"
)

const (
	insertAssignmentStm          = "INSERT INTO assignments (id, created_at, job_id, pro_id, state, offered_at) VALUES ('%s', '%s', '%s', '%s', '%s', '2026-08-01 10:00:00');"
	insertCompletedAssignmentStm = "INSERT INTO assignments (id, created_at, job_id, pro_id, state, offered_at, completed_at) VALUES ('%s', '2026-08-01 10:00:00', '%s', '%s', 'completed', '2026-08-01 10:00:00', '2026-08-01 14:00:00');"
	insertLedgerEntryStm         = "INSERT INTO payout_ledger_entries (id, created_at, pro_id, job_id, amount_cents, state, note) VALUES ('%s', '2026-08-01 15:00:00', '%s', '%s', %d, 'pending', 'solo');"
)

var _ = Describe("assignment store", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(BeNil())
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM payout_ledger_entries;")
		gormdb.Exec("DELETE FROM assignments;")
	})

	Context("get by job and pro", func() {
		It("resolves the latest assignment for the pair", func() {
			jobID := uuid.New()
			proID := uuid.New()
			oldID := uuid.New()
			newID := uuid.New()
			Expect(gormdb.Exec(fmt.Sprintf(insertAssignmentStm, oldID, "2026-08-01 10:00:00", jobID, proID, "declined")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertAssignmentStm, newID, "2026-08-02 10:00:00", jobID, proID, "offered")).Error).To(BeNil())

			assignment, err := s.Assignment().GetByJobAndPro(context.TODO(), jobID, proID)
			Expect(err).To(BeNil())
			Expect(assignment.ID).To(Equal(newID))
			Expect(assignment.State).To(Equal(model.AssignmentStateOffered))
		})

		It("returns record not found for an unknown pair", func() {
			_, err := s.Assignment().GetByJobAndPro(context.TODO(), uuid.New(), uuid.New())
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("transition", func() {
		It("moves the state and stamps the transition time", func() {
			id := uuid.New()
			Expect(gormdb.Exec(fmt.Sprintf(insertAssignmentStm, id, "2026-08-01 10:00:00", uuid.New(), uuid.New(), "offered")).Error).To(BeNil())

			at := time.Now()
			assignment, err := s.Assignment().Transition(context.TODO(), id, model.AssignmentStateOffered, model.AssignmentStateAccepted, at)
			Expect(err).To(BeNil())
			Expect(assignment.State).To(Equal(model.AssignmentStateAccepted))
			Expect(assignment.AcceptedAt).ToNot(BeNil())
			Expect(assignment.DeclinedAt).To(BeNil())
		})

		It("fails the precondition when the state moved on", func() {
			id := uuid.New()
			Expect(gormdb.Exec(fmt.Sprintf(insertAssignmentStm, id, "2026-08-01 10:00:00", uuid.New(), uuid.New(), "declined")).Error).To(BeNil())

			_, err := s.Assignment().Transition(context.TODO(), id, model.AssignmentStateOffered, model.AssignmentStateAccepted, time.Now())
			Expect(err).To(MatchError(store.ErrPreconditionFailed))

			assignment, err := s.Assignment().Get(context.TODO(), id)
			Expect(err).To(BeNil())
			Expect(assignment.State).To(Equal(model.AssignmentStateDeclined))
		})

		It("reports record not found for a missing assignment", func() {
			_, err := s.Assignment().Transition(context.TODO(), uuid.New(), model.AssignmentStateOffered, model.AssignmentStateAccepted, time.Now())
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("list", func() {
		It("filters by state and pro", func() {
			proID := uuid.New()
			Expect(gormdb.Exec(fmt.Sprintf(insertAssignmentStm, uuid.New(), "2026-08-01 10:00:00", uuid.New(), proID, "offered")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertAssignmentStm, uuid.New(), "2026-08-01 11:00:00", uuid.New(), proID, "declined")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertAssignmentStm, uuid.New(), "2026-08-01 12:00:00", uuid.New(), uuid.New(), "offered")).Error).To(BeNil())

			assignments, err := s.Assignment().List(context.TODO(), store.NewAssignmentQueryFilter().ByProID(proID).ByState(model.AssignmentStateOffered))
			Expect(err).To(BeNil())
			Expect(assignments).To(HaveLen(1))
		})
	})

	Context("list completed", func() {
		It("lists only completed assignments", func() {
			completedJob := uuid.New()
			completedPro := uuid.New()

			Expect(gormdb.Exec(fmt.Sprintf(insertCompletedAssignmentStm, uuid.New(), completedJob, completedPro)).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertAssignmentStm, uuid.New(), "2026-08-01 10:00:00", uuid.New(), uuid.New(), "offered")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertAssignmentStm, uuid.New(), "2026-08-01 11:00:00", uuid.New(), uuid.New(), "declined")).Error).To(BeNil())

			assignments, err := s.Assignment().ListCompleted(context.TODO())
			Expect(err).To(BeNil())
			Expect(assignments).To(HaveLen(1))
			Expect(assignments[0].JobID).To(Equal(completedJob))
		})

		It("includes completions that already have a ledger entry", func() {
			jobID := uuid.New()
			paidPro := uuid.New()
			unpaidPro := uuid.New()

			Expect(gormdb.Exec(fmt.Sprintf(insertCompletedAssignmentStm, uuid.New(), jobID, paidPro)).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertCompletedAssignmentStm, uuid.New(), jobID, unpaidPro)).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertLedgerEntryStm, uuid.New(), paidPro, jobID, 5000)).Error).To(BeNil())

			assignments, err := s.Assignment().ListCompleted(context.TODO())
			Expect(err).To(BeNil())
			Expect(assignments).To(HaveLen(2))
		})
	})
})
