package service

import (
	"time"

	"library-circulation-backend/internal/domain"
)

type options struct {
	policy domain.LendingPolicy
	now    func() time.Time
	email  EmailService
}

type Option func(*options)

// WithPolicy overrides domain.DefaultLendingPolicy.
func WithPolicy(p domain.LendingPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithClock replaces time.Now, mostly for tests that need to move past a
// due date.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithEmailService(e EmailService) Option {
	return func(o *options) { o.email = e }
}

func buildOptions(opts []Option) options {
	o := options{
		policy: domain.DefaultLendingPolicy,
		now:    time.Now,
		email:  NewLogEmailService(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) clock() time.Time {
	return o.now().UTC()
}
