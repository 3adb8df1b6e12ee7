package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/repository/memory"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendFineNotification(ctx context.Context, member domain.Member, fine domain.Fine, overdueDays int) error {
	args := m.Called(ctx, member, fine, overdueDays)
	return args.Error(0)
}

func (m *MockEmailService) SendSuspensionNotification(ctx context.Context, member domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockEmailService) SendReactivationNotification(ctx context.Context, member domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

type MockMailSender struct {
	mock.Mock
}

func (m *MockMailSender) Send(ctx context.Context, to, toName, subject, body string) error {
	args := m.Called(ctx, to, toName, subject, body)
	return args.Error(0)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store       *memory.Store
	clock       *testClock
	email       *MockEmailService
	books       BookService
	members     MemberService
	circulation CirculationService
	fines       FineService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithEmailError(t, nil)
}

// newFixtureWithEmailError wires every service over a fresh memory store
// and a clock frozen at 2025-03-01 10:00 UTC. Every notification returns
// emailErr.
func newFixtureWithEmailError(t *testing.T, emailErr error) *fixture {
	t.Helper()
	store := memory.NewStore()
	clock := &testClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}

	email := &MockEmailService{}
	email.On("SendFineNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(emailErr).Maybe()
	email.On("SendSuspensionNotification", mock.Anything, mock.Anything).Return(emailErr).Maybe()
	email.On("SendReactivationNotification", mock.Anything, mock.Anything).Return(emailErr).Maybe()

	opts := []Option{WithClock(clock.Now), WithEmailService(email)}
	return &fixture{
		store:       store,
		clock:       clock,
		email:       email,
		books:       NewBookService(store, opts...),
		members:     NewMemberService(store, opts...),
		circulation: NewCirculationService(store, opts...),
		fines:       NewFineService(store, opts...),
	}
}

var bookSeq, memberSeq int32
var seqMu sync.Mutex

func nextSeq(p *int32) int32 {
	seqMu.Lock()
	defer seqMu.Unlock()
	*p++
	return *p
}

func (f *fixture) addBook(t *testing.T, copies int32) *domain.Book {
	t.Helper()
	n := nextSeq(&bookSeq)
	b := &domain.Book{
		ISBN:            fmt.Sprintf("978000000%04d", n),
		Title:           fmt.Sprintf("Book %04d", n),
		Author:          "Author",
		Category:        "fiction",
		TotalCopies:     copies,
		AvailableCopies: copies,
	}
	require.NoError(t, f.books.CreateBook(context.Background(), b))
	return b
}

func (f *fixture) addMember(t *testing.T) *domain.Member {
	t.Helper()
	n := nextSeq(&memberSeq)
	m := &domain.Member{
		Name:             fmt.Sprintf("Member %04d", n),
		Email:            fmt.Sprintf("member%04d@example.com", n),
		MembershipNumber: fmt.Sprintf("M-%04d", n),
	}
	require.NoError(t, f.members.CreateMember(context.Background(), m))
	return m
}

func (f *fixture) book(t *testing.T, id int32) *domain.Book {
	t.Helper()
	b, err := f.books.GetBook(context.Background(), id)
	require.NoError(t, err)
	return b
}

func (f *fixture) member(t *testing.T, id int32) *domain.Member {
	t.Helper()
	m, err := f.members.GetMember(context.Background(), id)
	require.NoError(t, err)
	return m
}

func memberWithID(id int32) any {
	return mock.MatchedBy(func(m domain.Member) bool { return m.ID == id })
}
