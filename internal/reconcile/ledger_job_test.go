package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/angelmondragon/stockroom-backend/internal/requisitions"
	"github.com/angelmondragon/stockroom-backend/pkg/metrics"
)

type fakePager struct {
	ids   []int64
	calls int
	err   error
}

func (f *fakePager) ListIDs(_ context.Context, afterID int64, limit int) ([]int64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []int64
	for _, id := range f.ids {
		if id > afterID {
			out = append(out, id)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeChecker struct {
	drifts  map[int64][]requisitions.Drift
	errs    map[int64]error
	checked []int64
}

func (f *fakeChecker) Reconcile(_ context.Context, requisitionID int64) ([]requisitions.Drift, error) {
	f.checked = append(f.checked, requisitionID)
	if err := f.errs[requisitionID]; err != nil {
		return nil, err
	}
	return f.drifts[requisitionID], nil
}

func TestLedgerDriftJobWalksAllPagesAndCountsDrift(t *testing.T) {
	reg := prometheus.NewRegistry()
	pager := &fakePager{ids: []int64{1, 2, 3, 4, 5}}
	checker := &fakeChecker{
		drifts: map[int64][]requisitions.Drift{
			2: {{MaterialID: 7, LedgerNet: 3, ItemNet: 4}},
			5: {{MaterialID: 8, LedgerNet: 0, ItemNet: 1}, {MaterialID: 9, LedgerNet: 2, ItemNet: 0}},
		},
		errs: map[int64]error{3: errors.New("db gone"), 4: errors.New("timeout")},
	}
	job, err := NewLedgerDriftJob(LedgerDriftJobParams{
		Logger:    testLogger(),
		Checker:   checker,
		Pager:     pager,
		Metrics:   metrics.NewJobMetrics(reg),
		BatchSize: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "ledger-drift", job.Name())

	err = job.Run(context.Background())
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, checker.checked)
	assert.Equal(t, 3, pager.calls)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var drift float64
	for _, mf := range mfs {
		if mf.GetName() == "requisition_ledger_drift_total" {
			drift = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(3), drift)
}

func TestLedgerDriftJobCleanRun(t *testing.T) {
	job, err := NewLedgerDriftJob(LedgerDriftJobParams{
		Logger:  testLogger(),
		Checker: &fakeChecker{},
		Pager:   &fakePager{ids: []int64{1}},
	})
	require.NoError(t, err)
	assert.NoError(t, job.Run(context.Background()))
}

func TestLedgerDriftJobPagerFailure(t *testing.T) {
	job, err := NewLedgerDriftJob(LedgerDriftJobParams{
		Logger:  testLogger(),
		Checker: &fakeChecker{},
		Pager:   &fakePager{err: errors.New("boom")},
	})
	require.NoError(t, err)
	assert.Error(t, job.Run(context.Background()))
}
