package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/stockroom-backend/internal/requisitions"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	"github.com/angelmondragon/stockroom-backend/pkg/metrics"
)

const (
	ledgerDriftJobName = "ledger-drift"
	defaultBatchSize   = 500
)

type driftChecker interface {
	Reconcile(ctx context.Context, requisitionID int64) ([]requisitions.Drift, error)
}

type requisitionPager interface {
	ListIDs(ctx context.Context, afterID int64, limit int) ([]int64, error)
}

// LedgerDriftJobParams wires the ledger drift job.
type LedgerDriftJobParams struct {
	Logger    *logger.Logger
	Checker   driftChecker
	Pager     requisitionPager
	Metrics   *metrics.JobMetrics
	BatchSize int
}

// LedgerDriftJob walks every requisition and compares its ledger movements
// with the quantities on its items. It never writes.
type LedgerDriftJob struct {
	logg      *logger.Logger
	checker   driftChecker
	pager     requisitionPager
	metrics   *metrics.JobMetrics
	batchSize int
}

// NewLedgerDriftJob builds the job.
func NewLedgerDriftJob(params LedgerDriftJobParams) (*LedgerDriftJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Checker == nil {
		return nil, fmt.Errorf("drift checker required")
	}
	if params.Pager == nil {
		return nil, fmt.Errorf("requisition pager required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	return &LedgerDriftJob{
		logg:      params.Logger,
		checker:   params.Checker,
		pager:     params.Pager,
		metrics:   params.Metrics,
		batchSize: batch,
	}, nil
}

func (j *LedgerDriftJob) Name() string { return ledgerDriftJobName }

// Run checks every requisition; one failing requisition does not stop the
// others and all failures are returned together.
func (j *LedgerDriftJob) Run(ctx context.Context) error {
	var (
		errs    error
		checked int
		drifted int
		afterID int64
	)
	for {
		ids, err := j.pager.ListIDs(ctx, afterID, j.batchSize)
		if err != nil {
			return multierr.Append(errs, fmt.Errorf("list requisitions after %d: %w", afterID, err))
		}
		if len(ids) == 0 {
			break
		}
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return multierr.Append(errs, err)
			}
			drifts, err := j.checker.Reconcile(ctx, id)
			checked++
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("requisition %d: %w", id, err))
				continue
			}
			for _, drift := range drifts {
				j.logg.Warn(j.logg.WithFields(ctx, map[string]any{
					"requisition_id": id,
					"material_id":    drift.MaterialID,
					"ledger_net":     drift.LedgerNet,
					"item_net":       drift.ItemNet,
				}), "requisition.ledger_drift")
			}
			drifted += len(drifts)
		}
		afterID = ids[len(ids)-1]
		if len(ids) < j.batchSize {
			break
		}
	}

	j.metrics.AddDrift(drifted)
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"checked": checked,
		"drifted": drifted,
		"failed":  len(multierr.Errors(errs)),
	}), "ledger drift scan finished")
	return errs
}
