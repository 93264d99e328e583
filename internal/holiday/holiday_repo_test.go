package holiday_test

import (
	"context"
	"time"

	"go-leave/internal/holiday"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqliteHoliday mirrors public_holidays without postgres column types.
type sqliteHoliday struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Date      time.Time `gorm:"column:date;not null;uniqueIndex:uq_public_holidays_date_name,priority:1"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:uq_public_holidays_date_name,priority:2"`
	CreatedBy string    `gorm:"column:created_by;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (sqliteHoliday) TableName() string {
	return "public_holidays"
}

var _ = Describe("Holiday Repository", func() {
	var (
		repo    holiday.Repository
		ctx     context.Context
		creator uuid.UUID
	)

	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	add := func(date time.Time, name string) *holiday.PublicHoliday {
		h := &holiday.PublicHoliday{ID: uuid.New(), Date: date, Name: name, CreatedBy: creator}
		Expect(repo.Create(ctx, h)).To(Succeed())
		return h
	}

	BeforeEach(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&sqliteHoliday{})).To(Succeed())

		repo = holiday.NewRepository(db)
		ctx = context.Background()
		creator = uuid.New()
	})

	Describe("FindInRange", func() {
		It("returns holidays inside the inclusive range ordered by date", func() {
			add(day(2099, 3, 6), "Friday Off")
			add(day(2099, 3, 2), "Founders Day")
			add(day(2099, 3, 9), "Outside")
			add(day(2099, 2, 27), "Before")

			holidays, err := repo.FindInRange(ctx, day(2099, 3, 2), day(2099, 3, 6))
			Expect(err).NotTo(HaveOccurred())
			Expect(holidays).To(HaveLen(2))
			Expect(holidays[0].Name).To(Equal("Founders Day"))
			Expect(holidays[1].Name).To(Equal("Friday Off"))
		})

		It("returns nothing for an empty range", func() {
			add(day(2099, 3, 2), "Founders Day")

			holidays, err := repo.FindInRange(ctx, day(2099, 3, 3), day(2099, 3, 5))
			Expect(err).NotTo(HaveOccurred())
			Expect(holidays).To(BeEmpty())
		})
	})

	Describe("ExistsByDateName", func() {
		It("matches the same pair and honours the exclusion", func() {
			h := add(day(2099, 3, 2), "Founders Day")

			exists, err := repo.ExistsByDateName(ctx, day(2099, 3, 2), "Founders Day", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())

			exists, err = repo.ExistsByDateName(ctx, day(2099, 3, 2), "Founders Day", &h.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())

			exists, err = repo.ExistsByDateName(ctx, day(2099, 3, 3), "Founders Day", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})

		It("lets two holidays share a date under different names", func() {
			add(day(2099, 3, 2), "Founders Day")
			add(day(2099, 3, 2), "Harvest Day")

			holidays, err := repo.FindAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(holidays).To(HaveLen(2))
		})

		It("rejects an exact duplicate at the store", func() {
			add(day(2099, 3, 2), "Founders Day")

			dup := &holiday.PublicHoliday{ID: uuid.New(), Date: day(2099, 3, 2), Name: "Founders Day", CreatedBy: creator}
			Expect(repo.Create(ctx, dup)).NotTo(Succeed())
		})
	})

	Describe("Update and Delete", func() {
		It("moves a holiday", func() {
			h := add(day(2099, 3, 2), "Founders Day")
			h.Date = day(2099, 3, 5)

			Expect(repo.Update(ctx, h)).To(Succeed())

			found, err := repo.FindByID(ctx, h.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Date.Equal(day(2099, 3, 5))).To(BeTrue())
		})

		It("reports missing rows", func() {
			missing := &holiday.PublicHoliday{ID: uuid.New(), Date: day(2099, 3, 5), Name: "Nothing"}
			Expect(repo.Update(ctx, missing)).To(MatchError(gorm.ErrRecordNotFound))
			Expect(repo.Delete(ctx, uuid.New())).To(MatchError(gorm.ErrRecordNotFound))
		})

		It("deletes", func() {
			h := add(day(2099, 3, 2), "Founders Day")

			Expect(repo.Delete(ctx, h.ID)).To(Succeed())
			_, err := repo.FindByID(ctx, h.ID)
			Expect(err).To(MatchError(gorm.ErrRecordNotFound))
		})
	})

	Describe("FindDatesFrom", func() {
		It("lists distinct dates from the cutoff", func() {
			add(day(2099, 3, 2), "Founders Day")
			add(day(2099, 3, 2), "Harvest Day")
			add(day(2099, 3, 6), "Friday Off")
			add(day(2099, 1, 1), "New Year")

			dates, err := repo.FindDatesFrom(ctx, day(2099, 2, 1))
			Expect(err).NotTo(HaveOccurred())
			Expect(dates).To(HaveLen(2))
			Expect(dates[0].Equal(day(2099, 3, 2))).To(BeTrue())
			Expect(dates[1].Equal(day(2099, 3, 6))).To(BeTrue())
		})
	})
})
