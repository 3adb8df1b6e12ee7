package scheduler

import (
	"testing"

	"library-circulation-backend/internal/config"
	"library-circulation-backend/internal/jobs"

	"github.com/stretchr/testify/assert"
)

func TestNewScheduler_RegistersJobs(t *testing.T) {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{
		MarkOverdueTransactions: "0 0 1 * * *",
		EvaluateSuspensions:     "0 30 1 * * *",
	}}
	s := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg))

	assert.Len(t, s.cron.Entries(), 2)
	assert.True(t, s.IsRunning())

	s.Start()
	s.Stop()
}

func TestNewScheduler_SkipsInvalidSpec(t *testing.T) {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{
		MarkOverdueTransactions: "not a cron spec",
		EvaluateSuspensions:     "0 30 1 * * *",
	}}
	s := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg))

	assert.Len(t, s.cron.Entries(), 1)
}
