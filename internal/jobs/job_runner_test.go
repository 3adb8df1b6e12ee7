package jobs

import (
	"context"
	"errors"
	"testing"

	"library-circulation-backend/internal/config"
	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCirculationService struct {
	mock.Mock
}

func (m *MockCirculationService) ValidateBorrowing(ctx context.Context, memberID, bookID int32) (*service.ValidationResult, error) {
	args := m.Called(ctx, memberID, bookID)
	return args.Get(0).(*service.ValidationResult), args.Error(1)
}

func (m *MockCirculationService) BorrowBook(ctx context.Context, memberID, bookID int32) (*domain.TransactionDetails, error) {
	args := m.Called(ctx, memberID, bookID)
	return args.Get(0).(*domain.TransactionDetails), args.Error(1)
}

func (m *MockCirculationService) ReturnBook(ctx context.Context, transactionID int32) (*domain.ReturnResult, error) {
	args := m.Called(ctx, transactionID)
	return args.Get(0).(*domain.ReturnResult), args.Error(1)
}

func (m *MockCirculationService) UpdateOverdueStatuses(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockCirculationService) GetTransaction(ctx context.Context, id int32) (*domain.TransactionDetails, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.TransactionDetails), args.Error(1)
}

func (m *MockCirculationService) ListOverdueTransactions(ctx context.Context) ([]domain.TransactionDetails, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.TransactionDetails), args.Error(1)
}

func (m *MockCirculationService) ListMemberTransactions(ctx context.Context, memberID int32) ([]domain.TransactionDetails, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).([]domain.TransactionDetails), args.Error(1)
}

type MockMemberService struct {
	mock.Mock
	service.MemberService
}

func (m *MockMemberService) EvaluateAllSuspensions(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}


func newRunner(circ *MockCirculationService, members *MockMemberService) *JobRunner {
	return NewJobRunner(&Services{Circulation: circ, Member: members}, &config.Config{})
}

func TestRunAllNightlyJobs(t *testing.T) {
	circ := new(MockCirculationService)
	members := new(MockMemberService)
	circ.On("UpdateOverdueStatuses", mock.Anything).Return(4, nil).Once()
	members.On("EvaluateAllSuspensions", mock.Anything).Return(1, nil).Once()

	newRunner(circ, members).RunAllNightlyJobs()

	circ.AssertExpectations(t)
	members.AssertExpectations(t)
}

func TestMarkOverdueTransactions_ErrorIsLogged(t *testing.T) {
	circ := new(MockCirculationService)
	circ.On("UpdateOverdueStatuses", mock.Anything).Return(0, errors.New("connection refused")).Once()

	assert.NotPanics(t, func() { newRunner(circ, new(MockMemberService)).MarkOverdueTransactions() })
	circ.AssertExpectations(t)
}

func TestEvaluateSuspensions_RecoversFromPanic(t *testing.T) {
	members := new(MockMemberService)
	members.On("EvaluateAllSuspensions", mock.Anything).Run(func(mock.Arguments) {
		panic("boom")
	}).Return(0, nil).Once()

	assert.NotPanics(t, func() { newRunner(new(MockCirculationService), members).EvaluateSuspensions() })
}

func TestJobRunner_Config(t *testing.T) {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{EvaluateSuspensions: "0 0 2 * * *"}}
	jr := NewJobRunner(&Services{}, cfg)
	assert.Same(t, cfg, jr.Config())
}
