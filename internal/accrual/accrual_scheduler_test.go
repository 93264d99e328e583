package accrual_test

import (
	"context"
	"testing"
	"time"

	"go-leave/internal/accrual"
	accrualerrors "go-leave/internal/accrual/errors"
	accrualMock "go-leave/internal/accrual/mock"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestScheduler_RunsImmediatelyAndOnTick(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := accrualMock.NewMockService(ctrl)

	calls := make(chan struct{}, 8)
	svc.EXPECT().RunMonthly(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, month time.Time) (accrual.RunResponse, error) {
			calls <- struct{}{}
			if len(calls) == 1 {
				return accrual.RunResponse{Month: month.Format("2006-01")}, nil
			}
			return accrual.RunResponse{}, accrualerrors.ErrAlreadyApplied
		}).MinTimes(2)

	s := accrual.NewScheduler(svc, 10*time.Millisecond, zap.NewNop())
	s.Start(context.Background())
	s.Start(context.Background())

	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(time.Second):
			t.Fatal("scheduler did not run")
		}
	}

	s.Stop()
	s.Stop()
}

func TestScheduler_StopsWithContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := accrualMock.NewMockService(ctrl)
	svc.EXPECT().RunMonthly(gomock.Any(), gomock.Any()).
		Return(accrual.RunResponse{}, accrualerrors.ErrAlreadyApplied).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	s := accrual.NewScheduler(svc, time.Hour, zap.NewNop())
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		assert.Fail(t, "stop blocked after context cancellation")
	}
}
