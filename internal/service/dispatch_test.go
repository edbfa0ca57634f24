package service_test

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/fieldhq/dispatch-engine/internal/config"
	"github.com/fieldhq/dispatch-engine/internal/events"
	"github.com/fieldhq/dispatch-engine/internal/notify"
	"github.com/fieldhq/dispatch-engine/internal/service"
	"github.com/fieldhq/dispatch-engine/internal/store"
	"github.com/fieldhq/dispatch-engine/internal/store/model"
)

const (
	insertJobStm             = "INSERT INTO jobs (id, created_at, status, subtotal_cents) VALUES ('%s', '2026-08-01 10:00:00', '%s', %d);"
	insertJobWithLocationStm = "INSERT INTO jobs (id, created_at, status, subtotal_cents, geo_lat, geo_lng) VALUES ('%s', '2026-08-01 10:00:00', '%s', %d, %f, %f);"
	insertProStm             = "INSERT INTO pros (id, created_at, name, home_lat, home_lng, service_radius_miles, active) VALUES ('%s', '2026-08-01 10:00:00', '%s', %f, %f, %f, %s);"
	insertAssignmentStm      = "INSERT INTO assignments (id, created_at, job_id, pro_id, state, offered_at) VALUES ('%s', '2026-08-01 10:00:00', '%s', '%s', '%s', '2026-08-01 10:00:00');"
)

func newDispatchService(s store.Store) *service.DispatchService {
	producer := events.NewEventProducer(newTestWriter())
	return service.NewDispatchService(s, notify.NoopNotifier{}, producer, time.Second)
}

var _ = Describe("dispatch service", Ordered, func() {
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
		gormdb.Exec("DELETE FROM assignments;")
		gormdb.Exec("DELETE FROM jobs;")
		gormdb.Exec("DELETE FROM pros;")
	})

	Context("find matches", func() {
		It("ranks eligible pros nearest first", func() {
			jobID := uuid.New()
			// Greenwood SC
			tx := gormdb.Exec(fmt.Sprintf(insertJobWithLocationStm, jobID, "pending_assign", 10000, 34.1954, -82.1618))
			Expect(tx.Error).To(BeNil())

			nearID := uuid.New()
			farID := uuid.New()
			outID := uuid.New()
			// ~7mi, ~40mi and ~120mi north of the job
			Expect(gormdb.Exec(fmt.Sprintf(insertProStm, nearID, "near", 34.30, -82.1618, 50.0, "TRUE")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertProStm, farID, "far", 34.77, -82.1618, 50.0, "TRUE")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertProStm, outID, "out", 35.93, -82.1618, 50.0, "TRUE")).Error).To(BeNil())

			matches, err := newDispatchService(s).FindMatches(context.TODO(), jobID)
			Expect(err).To(BeNil())
			Expect(matches).To(HaveLen(2))
			Expect(matches[0].Pro.ID).To(Equal(nearID))
			Expect(matches[1].Pro.ID).To(Equal(farID))
			Expect(*matches[0].DistanceMiles).To(BeNumerically("<", *matches[1].DistanceMiles))
		})

		It("returns every active pro unranked when the job has no location", func() {
			jobID := uuid.New()
			Expect(gormdb.Exec(fmt.Sprintf(insertJobStm, jobID, "pending_assign", 10000)).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertProStm, uuid.New(), "p1", 34.30, -82.16, 50.0, "TRUE")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertProStm, uuid.New(), "p2", 35.93, -82.16, 50.0, "TRUE")).Error).To(BeNil())

			matches, err := newDispatchService(s).FindMatches(context.TODO(), jobID)
			Expect(err).To(BeNil())
			Expect(matches).To(HaveLen(2))
			Expect(matches[0].DistanceMiles).To(BeNil())
		})

		It("excludes inactive pros", func() {
			jobID := uuid.New()
			Expect(gormdb.Exec(fmt.Sprintf(insertJobWithLocationStm, jobID, "pending_assign", 10000, 34.1954, -82.1618)).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertProStm, uuid.New(), "inactive", 34.1954, -82.1618, 50.0, "FALSE")).Error).To(BeNil())

			matches, err := newDispatchService(s).FindMatches(context.TODO(), jobID)
			Expect(err).To(BeNil())
			Expect(matches).To(BeEmpty())
		})

		It("fails for a missing job", func() {
			_, err := newDispatchService(s).FindMatches(context.TODO(), uuid.New())
			Expect(err).To(BeAssignableToTypeOf(&service.ErrResourceNotFound{}))
		})
	})

	Context("send offer", func() {
		It("creates an offered assignment and marks the job", func() {
			jobID := uuid.New()
			proID := uuid.New()
			Expect(gormdb.Exec(fmt.Sprintf(insertJobWithLocationStm, jobID, "pending_assign", 10000, 34.1954, -82.1618)).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertProStm, proID, "pro", 34.30, -82.1618, 50.0, "TRUE")).Error).To(BeNil())

			assignment, err := newDispatchService(s).SendOffer(context.TODO(), jobID, proID, nil)
			Expect(err).To(BeNil())
			Expect(assignment.State).To(Equal(model.AssignmentStateOffered))
			Expect(assignment.DistanceMiles).ToNot(BeNil())

			job, err := s.Job().Get(context.TODO(), jobID)
			Expect(err).To(BeNil())
			Expect(job.Status).To(Equal(model.JobStatusOfferSent))
		})

		It("stamps the caller distance when coordinates are missing", func() {
			jobID := uuid.New()
			proID := uuid.New()
			Expect(gormdb.Exec(fmt.Sprintf(insertJobStm, jobID, "pending_assign", 10000)).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertProStm, proID, "pro", 34.30, -82.1618, 50.0, "TRUE")).Error).To(BeNil())

			hint := 12.5
			assignment, err := newDispatchService(s).SendOffer(context.TODO(), jobID, proID, &hint)
			Expect(err).To(BeNil())
			Expect(assignment.DistanceMiles).ToNot(BeNil())
			Expect(*assignment.DistanceMiles).To(Equal(12.5))
		})

		It("rejects a second open offer for the same pair", func() {
			jobID := uuid.New()
			proID := uuid.New()
			Expect(gormdb.Exec(fmt.Sprintf(insertJobStm, jobID, "pending_assign", 10000)).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertProStm, proID, "pro", 34.30, -82.1618, 50.0, "TRUE")).Error).To(BeNil())

			svc := newDispatchService(s)
			_, err := svc.SendOffer(context.TODO(), jobID, proID, nil)
			Expect(err).To(BeNil())

			_, err = svc.SendOffer(context.TODO(), jobID, proID, nil)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrDuplicateOffer{}))

			count := 0
			Expect(gormdb.Raw("SELECT COUNT(*) FROM assignments;").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(1))
		})

		It("allows a new offer after a decline", func() {
			jobID := uuid.New()
			proID := uuid.New()
			Expect(gormdb.Exec(fmt.Sprintf(insertJobStm, jobID, "pending_assign", 10000)).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertProStm, proID, "pro", 34.30, -82.1618, 50.0, "TRUE")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertAssignmentStm, uuid.New(), jobID, proID, "declined")).Error).To(BeNil())

			assignment, err := newDispatchService(s).SendOffer(context.TODO(), jobID, proID, nil)
			Expect(err).To(BeNil())
			Expect(assignment.State).To(Equal(model.AssignmentStateOffered))
		})

		It("rejects offers on a completed job", func() {
			jobID := uuid.New()
			proID := uuid.New()
			Expect(gormdb.Exec(fmt.Sprintf(insertJobStm, jobID, "completed", 10000)).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertProStm, proID, "pro", 34.30, -82.1618, 50.0, "TRUE")).Error).To(BeNil())

			_, err := newDispatchService(s).SendOffer(context.TODO(), jobID, proID, nil)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrInvalidTransition{}))
		})
	})
})
