// Package bootstrap assembles the requisition lifecycle from booted clients so
// every binary wires it the same way.
package bootstrap

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/stockroom-backend/internal/catalog"
	"github.com/angelmondragon/stockroom-backend/internal/ledger"
	"github.com/angelmondragon/stockroom-backend/internal/requisitions"
	"github.com/angelmondragon/stockroom-backend/pkg/config"
	"github.com/angelmondragon/stockroom-backend/pkg/db"
	"github.com/angelmondragon/stockroom-backend/pkg/idempotency"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	"github.com/angelmondragon/stockroom-backend/pkg/metrics"
	"github.com/angelmondragon/stockroom-backend/pkg/redis"
)

// RequisitionParams carries the booted dependencies of the lifecycle service.
type RequisitionParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         *db.Client
	Store      redis.IdempotencyStore
	Registerer prometheus.Registerer
}

// Requisitions is the wired lifecycle: the service plus the repository the
// reconcile job pages through.
type Requisitions struct {
	Service requisitions.Service
	Repo    requisitions.Repository
}

// NewRequisitions builds the requisition service with its ledger, catalog,
// submission guard and lifecycle metrics.
func NewRequisitions(params RequisitionParams) (*Requisitions, error) {
	if params.Config == nil {
		return nil, fmt.Errorf("config required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("database client required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("idempotency store required")
	}

	conn := params.DB.DB()
	ledgerService, err := ledger.NewService(ledger.NewRepository(conn))
	if err != nil {
		return nil, fmt.Errorf("ledger service: %w", err)
	}

	guard, err := idempotency.NewManager(params.Store, params.Config.Requisitions.IdempotencyTTL)
	if err != nil {
		return nil, fmt.Errorf("idempotency guard: %w", err)
	}

	repo := requisitions.NewRepository(conn)
	svc, err := requisitions.NewService(requisitions.ServiceParams{
		Repo:       repo,
		Catalog:    catalog.NewRepository(conn),
		Ledger:     ledgerService,
		Tx:         params.DB,
		Logger:     params.Logger,
		Metrics:    metrics.NewLifecycleMetrics(params.Registerer),
		Guard:      guard,
		CodePrefix: params.Config.Requisitions.CodePrefix,
	})
	if err != nil {
		return nil, err
	}

	return &Requisitions{Service: svc, Repo: repo}, nil
}
