package service_test

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/fieldhq/dispatch-engine/internal/config"
	"github.com/fieldhq/dispatch-engine/internal/matching"
	"github.com/fieldhq/dispatch-engine/internal/service"
	"github.com/fieldhq/dispatch-engine/internal/store"
)

const (
	insertCapacitySlotStm = "INSERT INTO capacity_slots (created_at, pro_id, date, time_slot, max_jobs, booked_jobs, blocked) VALUES ('2026-08-01 10:00:00', '%s', '%s', '%s', %d, %d, %s);"
	insertScheduledJobStm = "INSERT INTO jobs (id, created_at, status, subtotal_cents, scheduled_start, metadata) VALUES ('%s', '2026-08-01 10:00:00', '%s', 10000, '%s', '%s');"
	insertUnlocatedProStm = "INSERT INTO pros (id, created_at, name, service_radius_miles, active) VALUES ('%s', '2026-08-01 10:00:00', '%s', 50, TRUE);"
)

var _ = Describe("capacity service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		svc    *service.CapacityService
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(BeNil())

		svc = service.NewCapacityService(s, 3)
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM capacity_slots;")
		gormdb.Exec("DELETE FROM jobs;")
		gormdb.Exec("DELETE FROM pros;")
	})

	Context("declared capacity", func() {
		It("sums open spots over active pros", func() {
			proA := uuid.New()
			proB := uuid.New()
			Expect(gormdb.Exec(fmt.Sprintf(insertProStm, proA, "a", 34.30, -82.16, 50.0, "TRUE")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertProStm, proB, "b", 34.40, -82.16, 50.0, "TRUE")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertCapacitySlotStm, proA, "2026-09-01", "morning", 3, 2, "FALSE")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertCapacitySlotStm, proB, "2026-09-01", "morning", 2, 0, "FALSE")).Error).To(BeNil())

			availability, err := svc.Remaining(context.TODO(), "2026-09-01", "morning", nil)
			Expect(err).To(BeNil())
			Expect(availability.Mode).To(Equal(service.ModeIntelligent))
			Expect(availability.Remaining).To(Equal(3))
			Expect(availability.ProsConsidered).To(Equal(2))
			Expect(availability.Available).To(BeTrue())
		})

		It("reports one open spot for a single partly booked slot", func() {
			proID := uuid.New()
			Expect(gormdb.Exec(fmt.Sprintf(insertProStm, proID, "solo", 34.30, -82.16, 50.0, "TRUE")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertCapacitySlotStm, proID, "2026-09-01", "morning", 3, 2, "FALSE")).Error).To(BeNil())

			availability, err := svc.Remaining(context.TODO(), "2026-09-01", "morning", nil)
			Expect(err).To(BeNil())
			Expect(availability.Mode).To(Equal(service.ModeIntelligent))
			Expect(availability.Remaining).To(Equal(1))
		})

		It("counts blocked and overbooked slots as zero", func() {
			proA := uuid.New()
			proB := uuid.New()
			Expect(gormdb.Exec(fmt.Sprintf(insertProStm, proA, "a", 34.30, -82.16, 50.0, "TRUE")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertProStm, proB, "b", 34.40, -82.16, 50.0, "TRUE")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertCapacitySlotStm, proA, "2026-09-01", "morning", 3, 0, "TRUE")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertCapacitySlotStm, proB, "2026-09-01", "morning", 2, 5, "FALSE")).Error).To(BeNil())

			availability, err := svc.Remaining(context.TODO(), "2026-09-01", "morning", nil)
			Expect(err).To(BeNil())
			Expect(availability.Mode).To(Equal(service.ModeIntelligent))
			Expect(availability.Remaining).To(Equal(0))
			Expect(availability.Available).To(BeFalse())
		})

		It("excludes inactive pros and pros out of range", func() {
			inactive := uuid.New()
			remote := uuid.New()
			near := uuid.New()
			Expect(gormdb.Exec(fmt.Sprintf(insertProStm, inactive, "inactive", 34.20, -82.16, 50.0, "FALSE")).Error).To(BeNil())
			// ~120mi from the reference point
			Expect(gormdb.Exec(fmt.Sprintf(insertProStm, remote, "remote", 35.93, -82.16, 50.0, "TRUE")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertProStm, near, "near", 34.30, -82.16, 50.0, "TRUE")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertCapacitySlotStm, inactive, "2026-09-01", "evening", 2, 0, "FALSE")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertCapacitySlotStm, remote, "2026-09-01", "evening", 2, 0, "FALSE")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertCapacitySlotStm, near, "2026-09-01", "evening", 2, 1, "FALSE")).Error).To(BeNil())

			availability, err := svc.Remaining(context.TODO(), "2026-09-01", "evening", &matching.LatLng{Lat: 34.1954, Lng: -82.1618})
			Expect(err).To(BeNil())
			Expect(availability.Remaining).To(Equal(1))
			Expect(availability.ProsConsidered).To(Equal(1))
		})

		It("counts a pro without a location unfiltered", func() {
			unlocated := uuid.New()
			Expect(gormdb.Exec(fmt.Sprintf(insertUnlocatedProStm, unlocated, "unlocated")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertCapacitySlotStm, unlocated, "2026-09-01", "evening", 2, 0, "FALSE")).Error).To(BeNil())

			availability, err := svc.Remaining(context.TODO(), "2026-09-01", "evening", &matching.LatLng{Lat: 34.1954, Lng: -82.1618})
			Expect(err).To(BeNil())
			Expect(availability.Remaining).To(Equal(2))
		})
	})

	Context("fallback capacity", func() {
		It("applies the flat cap when no capacity is declared", func() {
			availability, err := svc.Remaining(context.TODO(), "2026-09-02", "afternoon", nil)
			Expect(err).To(BeNil())
			Expect(availability.Mode).To(Equal(service.ModeFallback))
			Expect(availability.Remaining).To(Equal(3))
		})

		It("subtracts jobs already booked into the slot", func() {
			Expect(gormdb.Exec(fmt.Sprintf(insertScheduledJobStm, uuid.New(), "accepted", "2026-09-02 09:00:00", `{"time_slot":"morning"}`)).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertScheduledJobStm, uuid.New(), "pending_assign", "2026-09-02 10:00:00", `{"time_slot":"morning"}`)).Error).To(BeNil())
			// cancelled and other-slot jobs do not count
			Expect(gormdb.Exec(fmt.Sprintf(insertScheduledJobStm, uuid.New(), "cancelled", "2026-09-02 11:00:00", `{"time_slot":"morning"}`)).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertScheduledJobStm, uuid.New(), "accepted", "2026-09-02 14:00:00", `{"time_slot":"afternoon"}`)).Error).To(BeNil())

			availability, err := svc.Remaining(context.TODO(), "2026-09-02", "morning", nil)
			Expect(err).To(BeNil())
			Expect(availability.Mode).To(Equal(service.ModeFallback))
			Expect(availability.Remaining).To(Equal(1))
		})

		It("never reports negative capacity", func() {
			for i := 0; i < 5; i++ {
				Expect(gormdb.Exec(fmt.Sprintf(insertScheduledJobStm, uuid.New(), "accepted", "2026-09-03 09:00:00", `{"time_slot":"morning"}`)).Error).To(BeNil())
			}

			availability, err := svc.Remaining(context.TODO(), "2026-09-03", "morning", nil)
			Expect(err).To(BeNil())
			Expect(availability.Remaining).To(Equal(0))
		})
	})

	Context("availability range", func() {
		It("reports every slot between two dates inclusive", func() {
			result, err := svc.Availability(context.TODO(), "2026-09-01", "2026-09-03", nil)
			Expect(err).To(BeNil())
			Expect(result).To(HaveLen(9))
			Expect(result[0].Date).To(Equal("2026-09-01"))
			Expect(result[0].TimeSlot).To(Equal("morning"))
			Expect(result[8].Date).To(Equal("2026-09-03"))
			Expect(result[8].TimeSlot).To(Equal("evening"))
		})

		It("rejects an inverted date range", func() {
			_, err := svc.Availability(context.TODO(), "2026-09-03", "2026-09-01", nil)
			Expect(err).ToNot(BeNil())
		})
	})
})
