package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glassline/erp-api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubRepairer struct {
	results map[uuid.UUID][]domain.SequenceRepairResult
	err     error
	calls   int
}

func (s *stubRepairer) RepairAllOrganizations(ctx context.Context) (map[uuid.UUID][]domain.SequenceRepairResult, error) {
	s.calls++
	return s.results, s.err
}

func TestSequenceRepairJob_Run(t *testing.T) {
	repairer := &stubRepairer{
		results: map[uuid.UUID][]domain.SequenceRepairResult{
			uuid.New(): {
				{DocType: domain.DocTypeQuote, NextNumber: 4, Status: domain.SequenceRepaired},
				{DocType: domain.DocTypeOrder, Status: domain.SequenceFailed, Error: "no such table: orders"},
				{DocType: domain.DocTypeInvoice, NextNumber: 1, Status: domain.SequenceRepaired},
			},
			uuid.New(): {
				{DocType: domain.DocTypeQuote, NextNumber: 1, Status: domain.SequenceRepaired},
			},
		},
	}

	job := NewSequenceRepairJob(repairer, zap.NewNop(), time.Minute)
	repaired, failed := job.Run()

	assert.Equal(t, 1, repairer.calls)
	assert.Equal(t, 3, repaired)
	assert.Equal(t, 1, failed)
}

func TestSequenceRepairJob_RunReportsPartialResults(t *testing.T) {
	repairer := &stubRepairer{
		results: map[uuid.UUID][]domain.SequenceRepairResult{
			uuid.New(): {{DocType: domain.DocTypeQuote, NextNumber: 2, Status: domain.SequenceRepaired}},
		},
		err: errors.New("context deadline exceeded"),
	}

	repaired, failed := NewSequenceRepairJob(repairer, zap.NewNop(), time.Minute).Run()
	assert.Equal(t, 1, repaired)
	assert.Zero(t, failed)
}

func TestScheduler_AddAndRemoveJob(t *testing.T) {
	s := NewScheduler(zap.NewNop())

	require.NoError(t, s.AddJob("nightly", "0 30 2 * * *", func() {}))
	assert.Error(t, s.AddJob("nightly", "0 30 2 * * *", func() {}), "duplicate names are rejected")
	assert.Error(t, s.AddJob("broken", "not a cron expression", func() {}))
	assert.Equal(t, []string{"nightly"}, s.GetJobNames())

	require.NoError(t, s.RemoveJob("nightly"))
	assert.Error(t, s.RemoveJob("nightly"))
	assert.Empty(t, s.GetJobNames())
}

func TestRegisterSequenceRepairJob(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	repairer := &stubRepairer{}

	require.NoError(t, RegisterSequenceRepairJob(s, repairer, zap.NewNop(), "@every 1h", time.Minute, false))
	assert.Equal(t, []string{SequenceRepairJobName}, s.GetJobNames())
	assert.Zero(t, repairer.calls)
}

func TestScheduler_RunJobRecordsLastRun(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := NewScheduler(zap.New(core))

	_, ok := s.LastRun(SequenceRepairJobName)
	assert.False(t, ok)

	ran := false
	s.runJob(SequenceRepairJobName, func() { ran = true })
	assert.True(t, ran)

	info, ok := s.LastRun(SequenceRepairJobName)
	require.True(t, ok)
	assert.False(t, info.Panicked)
	assert.False(t, info.StartedAt.IsZero())

	completed := logs.FilterMessage("completed scheduled job").All()
	require.Len(t, completed, 1)
	assert.Equal(t, SequenceRepairJobName, completed[0].ContextMap()["job_name"])
}

func TestScheduler_RunJobRecoversPanic(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := NewScheduler(zap.New(core))

	assert.NotPanics(t, func() {
		s.runJob("flaky", func() { panic("boom") })
	})

	info, ok := s.LastRun("flaky")
	require.True(t, ok)
	assert.True(t, info.Panicked)

	panicked := logs.FilterMessage("scheduled job panicked").All()
	require.Len(t, panicked, 1)
	assert.Equal(t, zapcore.ErrorLevel, panicked[0].Level)
	assert.Equal(t, "flaky", panicked[0].ContextMap()["job_name"])
	assert.Equal(t, "boom", panicked[0].ContextMap()["panic"])
	assert.Zero(t, logs.FilterMessage("completed scheduled job").Len())
}
