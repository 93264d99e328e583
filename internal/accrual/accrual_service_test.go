package accrual_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"go-leave/internal/accrual"
	accrualerrors "go-leave/internal/accrual/errors"
	"go-leave/internal/domain"
	"go-leave/internal/shared/apperror"
	userMock "go-leave/internal/user/mock"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const guardTTL = 62 * 24 * time.Hour

var march = time.Date(2099, 3, 15, 9, 30, 0, 0, time.UTC)

func TestAccrualService_RunMonthly(t *testing.T) {
	ctx := context.Background()
	accruing := []domain.Role{domain.RoleEmployee, domain.RoleHR}

	t.Run("credits employee and hr once", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := userMock.NewMockRepository(ctrl)
		rdb, rmock := redismock.NewClientMock()
		svc := accrual.NewService(users, rdb, 2)

		rmock.ExpectSetNX("accrual:2099-03", "2", guardTTL).SetVal(true)
		users.EXPECT().AccrueBalance(ctx, 2, accruing).Return(int64(7), nil)

		resp, err := svc.RunMonthly(ctx, march)

		require.NoError(t, err)
		assert.Equal(t, "2099-03", resp.Month)
		assert.Equal(t, 2, resp.DaysAdded)
		assert.Equal(t, []string{"employee", "hr"}, resp.Roles)
		assert.Equal(t, int64(7), resp.UsersCredited)
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("second run in the same month", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := userMock.NewMockRepository(ctrl)
		rdb, rmock := redismock.NewClientMock()
		svc := accrual.NewService(users, rdb, 2)

		rmock.ExpectSetNX("accrual:2099-03", "2", guardTTL).SetVal(false)

		_, err := svc.RunMonthly(ctx, march)

		assert.ErrorIs(t, err, accrualerrors.ErrAlreadyApplied)
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("guard unavailable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := userMock.NewMockRepository(ctrl)
		rdb, rmock := redismock.NewClientMock()
		svc := accrual.NewService(users, rdb, 2)

		rmock.ExpectSetNX("accrual:2099-03", "2", guardTTL).SetErr(errors.New("redis down"))

		_, err := svc.RunMonthly(ctx, march)

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusServiceUnavailable, appErr.HTTPStatus)
	})

	t.Run("update failure releases the guard", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := userMock.NewMockRepository(ctrl)
		rdb, rmock := redismock.NewClientMock()
		svc := accrual.NewService(users, rdb, 2)

		rmock.ExpectSetNX("accrual:2099-03", "2", guardTTL).SetVal(true)
		users.EXPECT().AccrueBalance(ctx, 2, accruing).Return(int64(0), errors.New("db down"))
		rmock.ExpectDel("accrual:2099-03").SetVal(1)

		_, err := svc.RunMonthly(ctx, march)

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeServiceUnavailable, appErr.Code)
		assert.NoError(t, rmock.ExpectationsWereMet())
	})
}

func TestGuardKey(t *testing.T) {
	local := time.Date(2099, 4, 1, 1, 0, 0, 0, time.FixedZone("UTC+7", 7*3600))
	assert.Equal(t, "accrual:2099-03", accrual.GuardKey(local))
}
