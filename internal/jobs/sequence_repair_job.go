package jobs

import (
	"context"
	"time"

	"github.com/glassline/erp-api/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SequenceRepairJobName is the scheduler name of the nightly repair
const SequenceRepairJobName = "sequence_repair"

// SequenceRepairer realigns the document number counters of every organization
type SequenceRepairer interface {
	RepairAllOrganizations(ctx context.Context) (map[uuid.UUID][]domain.SequenceRepairResult, error)
}

// SequenceRepairJob resynchronizes number sequences with the highest issued
// document numbers so drift left by failed inserts or manual edits does not
// produce duplicate numbers.
type SequenceRepairJob struct {
	repairer SequenceRepairer
	logger   *zap.Logger
	timeout  time.Duration
}

func NewSequenceRepairJob(repairer SequenceRepairer, logger *zap.Logger, timeout time.Duration) *SequenceRepairJob {
	return &SequenceRepairJob{
		repairer: repairer,
		logger:   logger,
		timeout:  timeout,
	}
}

// Run repairs all organizations and returns the number of repaired and
// failed sequences.
func (j *SequenceRepairJob) Run() (repaired int, failed int) {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	results, err := j.repairer.RepairAllOrganizations(ctx)
	if err != nil {
		j.logger.Error("sequence repair aborted",
			zap.Error(err),
			zap.Int("organizations_done", len(results)),
			zap.Duration("duration", time.Since(start)))
	}

	for orgID, orgResults := range results {
		for _, res := range orgResults {
			if res.Status == domain.SequenceFailed {
				failed++
				j.logger.Warn("sequence repair failed",
					zap.String("organization_id", orgID.String()),
					zap.String("doc_type", string(res.DocType)),
					zap.String("error", res.Error))
				continue
			}
			repaired++
		}
	}

	j.logger.Info("sequence repair job completed",
		zap.Int("organizations", len(results)),
		zap.Int("repaired", repaired),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)))

	return repaired, failed
}

// RegisterSequenceRepairJob adds the repair job to the scheduler. With
// runOnStartup set, one run starts immediately in a background goroutine.
func RegisterSequenceRepairJob(scheduler *Scheduler, repairer SequenceRepairer, logger *zap.Logger, cronExpr string, timeout time.Duration, runOnStartup bool) error {
	job := NewSequenceRepairJob(repairer, logger, timeout)

	if runOnStartup {
		go job.Run()
	}

	return scheduler.AddJob(SequenceRepairJobName, cronExpr, func() { job.Run() })
}
