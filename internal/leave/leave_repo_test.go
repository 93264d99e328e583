package leave_test

import (
	"context"
	"database/sql"
	"time"

	"go-leave/internal/domain"
	"go-leave/internal/leave"
	"go-leave/internal/shared/calendar"
	"go-leave/internal/user"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqliteLeave mirrors the leaves table without postgres column types.
type sqliteLeave struct {
	ID              string     `gorm:"column:id;primaryKey"`
	ApplicantID     string     `gorm:"column:applicant_id;not null"`
	LeaveType       string     `gorm:"column:leave_type;not null"`
	StartDate       time.Time  `gorm:"column:start_date;not null"`
	EndDate         time.Time  `gorm:"column:end_date;not null"`
	WorkingDays     int        `gorm:"column:working_days;not null"`
	Comment         string     `gorm:"column:comment"`
	Status          string     `gorm:"column:status;not null"`
	ApproverID      *string    `gorm:"column:approver_id"`
	RejectedByRole  *string    `gorm:"column:rejected_by_role"`
	RejectionReason *string    `gorm:"column:rejection_reason"`
	DecidedAt       *time.Time `gorm:"column:decided_at"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (sqliteLeave) TableName() string {
	return "leaves"
}

type sqliteUser struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	Password     string    `gorm:"column:password;not null"`
	Role         string    `gorm:"column:role;not null"`
	LeaveBalance int       `gorm:"column:leave_balance;not null"`
	JoinedAt     time.Time `gorm:"column:joined_at"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (sqliteUser) TableName() string {
	return "users"
}

var _ = Describe("Leave Repository", func() {
	var (
		db    *gorm.DB
		sqlDB *sql.DB
		repo  leave.Repository
		users user.Repository
		ctx   context.Context
	)

	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	addUser := func(name string, role domain.Role, balance int) *user.User {
		u := &user.User{
			ID:           uuid.New(),
			Name:         name,
			Email:        name + "@example.com",
			Password:     "hash",
			Role:         role,
			LeaveBalance: balance,
			JoinedAt:     day(2020, 1, 1),
		}
		Expect(users.Create(ctx, u)).To(Succeed())
		return u
	}

	addLeave := func(applicant *user.User, start, end time.Time, days int, status leave.Status) *leave.Leave {
		l := &leave.Leave{
			ID:          uuid.New(),
			ApplicantID: applicant.ID,
			LeaveType:   "annual",
			StartDate:   start,
			EndDate:     end,
			WorkingDays: days,
			Status:      status,
		}
		Expect(repo.Create(ctx, l)).To(Succeed())
		return l
	}

	balanceOf := func(u *user.User) int {
		found, err := users.FindByID(ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())
		return found.LeaveBalance
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err = db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&sqliteUser{}, &sqliteLeave{})).To(Succeed())

		repo = leave.NewRepository(db)
		users = user.NewRepository(db)
		ctx = context.Background()
	})

	Describe("HasOverlap", func() {
		It("matches any status and touching edges", func() {
			applicant := addUser("ayu", domain.RoleEmployee, 5)
			addLeave(applicant, day(2099, 3, 2), day(2099, 3, 4), 3, leave.StatusRejected)

			overlap, err := repo.HasOverlap(ctx, applicant.ID, day(2099, 3, 4), day(2099, 3, 6))
			Expect(err).NotTo(HaveOccurred())
			Expect(overlap).To(BeTrue())

			overlap, err = repo.HasOverlap(ctx, applicant.ID, day(2099, 3, 5), day(2099, 3, 6))
			Expect(err).NotTo(HaveOccurred())
			Expect(overlap).To(BeFalse())
		})

		It("ignores other applicants", func() {
			applicant := addUser("ayu", domain.RoleEmployee, 5)
			other := addUser("budi", domain.RoleEmployee, 5)
			addLeave(other, day(2099, 3, 2), day(2099, 3, 4), 3, leave.StatusPending)

			overlap, err := repo.HasOverlap(ctx, applicant.ID, day(2099, 3, 2), day(2099, 3, 4))
			Expect(err).NotTo(HaveOccurred())
			Expect(overlap).To(BeFalse())
		})
	})

	Describe("approval round trip", func() {
		It("debits once, refuses a second approval and restores the balance on cancel", func() {
			applicant := addUser("ayu", domain.RoleEmployee, 5)
			approver := addUser("hana", domain.RoleHR, 1)
			l := addLeave(applicant, day(2099, 3, 2), day(2099, 3, 4), 3, leave.StatusPending)

			debited, err := users.DebitBalance(ctx, applicant.ID, l.WorkingDays)
			Expect(err).NotTo(HaveOccurred())
			Expect(debited).To(BeTrue())

			approve := leave.StatusChange{To: leave.StatusApproved, ApproverID: &approver.ID, DecidedAt: time.Now().UTC()}
			moved, err := repo.TransitionStatus(ctx, l.ID, leave.StatusPending, approve)
			Expect(err).NotTo(HaveOccurred())
			Expect(moved).To(BeTrue())
			Expect(balanceOf(applicant)).To(Equal(2))

			moved, err = repo.TransitionStatus(ctx, l.ID, leave.StatusPending, approve)
			Expect(err).NotTo(HaveOccurred())
			Expect(moved).To(BeFalse())

			Expect(users.CreditBalance(ctx, applicant.ID, l.WorkingDays)).To(Succeed())
			moved, err = repo.TransitionStatus(ctx, l.ID, leave.StatusApproved,
				leave.StatusChange{To: leave.StatusCancelled, ApproverID: &approver.ID, DecidedAt: time.Now().UTC()})
			Expect(err).NotTo(HaveOccurred())
			Expect(moved).To(BeTrue())

			Expect(balanceOf(applicant)).To(Equal(5))
			found, err := repo.FindByID(ctx, l.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Status).To(Equal(leave.StatusCancelled))
			Expect(found.WorkingDays).To(Equal(3))
			Expect(found.ApproverID).NotTo(BeNil())
			Expect(*found.ApproverID).To(Equal(approver.ID))
		})

		It("never drives the balance negative", func() {
			applicant := addUser("ayu", domain.RoleEmployee, 2)

			debited, err := users.DebitBalance(ctx, applicant.ID, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(debited).To(BeFalse())
			Expect(balanceOf(applicant)).To(Equal(2))
		})
	})

	Describe("List", func() {
		It("returns own leave plus leave of the visible roles, newest start first", func() {
			reader := addUser("hana", domain.RoleHR, 5)
			employee := addUser("ayu", domain.RoleEmployee, 5)
			peer := addUser("dewi", domain.RoleHR, 5)

			addLeave(employee, day(2099, 3, 2), day(2099, 3, 2), 1, leave.StatusPending)
			addLeave(reader, day(2099, 4, 1), day(2099, 4, 1), 1, leave.StatusApproved)
			addLeave(peer, day(2099, 5, 1), day(2099, 5, 1), 1, leave.StatusPending)

			leaves, total, err := repo.List(ctx, leave.ListFilter{
				OwnerID:        reader.ID,
				ApplicantRoles: []domain.Role{domain.RoleEmployee},
				Page:           1,
				PageSize:       10,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
			Expect(leaves).To(HaveLen(2))
			Expect(leaves[0].ApplicantID).To(Equal(reader.ID))
			Expect(leaves[1].ApplicantID).To(Equal(employee.ID))
		})

		It("filters by status and paginates", func() {
			owner := addUser("ayu", domain.RoleEmployee, 5)
			addLeave(owner, day(2099, 3, 2), day(2099, 3, 2), 1, leave.StatusPending)
			addLeave(owner, day(2099, 3, 9), day(2099, 3, 9), 1, leave.StatusPending)
			addLeave(owner, day(2099, 3, 16), day(2099, 3, 16), 1, leave.StatusRejected)

			leaves, total, err := repo.List(ctx, leave.ListFilter{
				OwnerID:  owner.ID,
				Status:   leave.StatusPending,
				Page:     2,
				PageSize: 1,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
			Expect(leaves).To(HaveLen(1))
			Expect(calendar.Format(leaves[0].StartDate)).To(Equal("2099-03-02"))
		})
	})

	Describe("Cascade", func() {
		var cascade *leave.Cascade

		BeforeEach(func() {
			cascade = leave.NewCascade(sqlDB, repo, users, nil, zap.NewNop())
		})

		It("rejects approved leave spanning the holiday and refunds the applicants", func() {
			employee := addUser("ayu", domain.RoleEmployee, 1)
			hr := addUser("hana", domain.RoleHR, 1)
			spanning := addLeave(employee, day(2099, 3, 2), day(2099, 3, 6), 4, leave.StatusApproved)
			hrLeave := addLeave(hr, day(2099, 3, 5), day(2099, 3, 5), 1, leave.StatusApproved)
			pending := addLeave(employee, day(2099, 3, 5), day(2099, 3, 5), 1, leave.StatusPending)
			elsewhere := addLeave(employee, day(2099, 3, 9), day(2099, 3, 9), 1, leave.StatusApproved)

			rejected, err := cascade.OnHolidayDateChanged(ctx, day(2099, 3, 5))
			Expect(err).NotTo(HaveOccurred())
			Expect(rejected).To(Equal(2))

			Expect(balanceOf(employee)).To(Equal(5))
			Expect(balanceOf(hr)).To(Equal(2))

			found, err := repo.FindByID(ctx, spanning.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Status).To(Equal(leave.StatusRejected))
			Expect(found.RejectedByRole).NotTo(BeNil())
			Expect(*found.RejectedByRole).To(Equal(domain.RoleHR))
			Expect(found.RejectionReason).NotTo(BeNil())
			Expect(*found.RejectionReason).To(Equal("Automatically rejected: public holiday declared on 2099-03-05"))
			Expect(found.WorkingDays).To(Equal(4))

			found, err = repo.FindByID(ctx, hrLeave.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(*found.RejectedByRole).To(Equal(domain.RoleManagement))

			found, err = repo.FindByID(ctx, pending.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Status).To(Equal(leave.StatusPending))

			found, err = repo.FindByID(ctx, elsewhere.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Status).To(Equal(leave.StatusApproved))
		})

		It("is a no-op the second time", func() {
			employee := addUser("ayu", domain.RoleEmployee, 1)
			addLeave(employee, day(2099, 3, 5), day(2099, 3, 5), 1, leave.StatusApproved)

			rejected, err := cascade.OnHolidayDateChanged(ctx, day(2099, 3, 5))
			Expect(err).NotTo(HaveOccurred())
			Expect(rejected).To(Equal(1))

			rejected, err = cascade.OnHolidayDateChanged(ctx, day(2099, 3, 5))
			Expect(err).NotTo(HaveOccurred())
			Expect(rejected).To(BeZero())
			Expect(balanceOf(employee)).To(Equal(2))
		})
	})
})
