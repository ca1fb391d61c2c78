package requisitions

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/internal/access"
	"github.com/angelmondragon/stockroom-backend/internal/catalog"
	"github.com/angelmondragon/stockroom-backend/internal/ledger"
	"github.com/angelmondragon/stockroom-backend/pkg/db"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	"github.com/angelmondragon/stockroom-backend/pkg/metrics"
)

var fixedNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

type fixture struct {
	conn    *gorm.DB
	svc     Service
	metrics *metrics.LifecycleMetrics
	guard   *fakeGuard
}

type materialOpts struct {
	sellable   bool
	consumable bool
	price      string
}

func memoryDSN() string {
	return "file:requisitions_" + uuid.NewString() + "?mode=memory&cache=shared"
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithDSN(t, memoryDSN())
}

func newFixtureWithDSN(t *testing.T, dsn string) *fixture {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(conn))
	require.NoError(t, err)

	f := &fixture{
		conn:    conn,
		metrics: metrics.NewLifecycleMetrics(nil),
		guard:   newFakeGuard(),
	}
	f.svc, err = NewService(ServiceParams{
		Repo:       NewRepository(conn),
		Catalog:    catalog.NewRepository(conn),
		Ledger:     ledgerSvc,
		Tx:         db.NewFromConn(conn),
		Logger:     logger.New(logger.Options{ServiceName: "requisitions-test", Output: io.Discard}),
		Metrics:    f.metrics,
		Guard:      f.guard,
		CodePrefix: "REQ",
		Clock:      func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) category(t *testing.T, name string) int64 {
	t.Helper()
	cat := models.Category{Name: name}
	require.NoError(t, f.conn.Create(&cat).Error)
	return cat.ID
}

func (f *fixture) material(t *testing.T, name string, categoryID *int64, stock int, opts materialOpts) models.Material {
	t.Helper()
	typ := models.MaterialType{Name: name + " type", CategoryID: categoryID}
	require.NoError(t, f.conn.Create(&typ).Error)
	price := opts.price
	if price == "" {
		price = "12.50"
	}
	mat := models.Material{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		TypeID:     typ.ID,
		Sellable:   opts.sellable,
		Consumable: opts.consumable,
	}
	require.NoError(t, f.conn.Create(&mat).Error)
	return mat
}

func (f *fixture) create(t *testing.T, actor access.Actor, lines ...CreateItemInput) *models.Requisition {
	t.Helper()
	req, err := f.svc.Create(context.Background(), CreateInput{Actor: actor, Items: lines})
	require.NoError(t, err)
	return req
}

func (f *fixture) stock(t *testing.T, materialID int64) int {
	t.Helper()
	var mat models.Material
	require.NoError(t, f.conn.Where("id = ?", materialID).Take(&mat).Error)
	return mat.Stock
}

func (f *fixture) item(t *testing.T, itemID int64) models.RequisitionItem {
	t.Helper()
	var item models.RequisitionItem
	require.NoError(t, f.conn.Where("id = ?", itemID).Take(&item).Error)
	return item
}

func (f *fixture) header(t *testing.T, requisitionID int64) models.Requisition {
	t.Helper()
	var header models.Requisition
	require.NoError(t, f.conn.Where("id = ?", requisitionID).Take(&header).Error)
	return header
}

func (f *fixture) movements(t *testing.T, requisitionID int64) []models.StockMovement {
	t.Helper()
	var rows []models.StockMovement
	require.NoError(t, f.conn.Where("requisition_id = ?", requisitionID).Find(&rows).Error)
	return rows
}

func line(materialID int64, qty int) CreateItemInput {
	return CreateItemInput{MaterialID: &materialID, Quantity: qty}
}

func requester(id int64) access.Actor {
	return access.Actor{ID: id}
}

func globalManager(id int64) access.Actor {
	return access.Actor{ID: id, Grants: []access.Grant{{Template: enums.GrantTemplateManageCategory}}}
}

func categoryManager(id int64, categoryIDs ...int64) access.Actor {
	resource := enums.GrantResourceCategory
	actor := access.Actor{ID: id}
	for i := range categoryIDs {
		catID := categoryIDs[i]
		actor.Grants = append(actor.Grants, access.Grant{
			Template:     enums.GrantTemplateManageCategory,
			ResourceType: &resource,
			ResourceID:   &catID,
		})
	}
	return actor
}

func salesManager(id int64) access.Actor {
	return access.Actor{ID: id, Grants: []access.Grant{{Template: enums.GrantTemplateManageSales}}}
}

func strPtr(v string) *string { return &v }

func requireCode(t *testing.T, err error, code pkgerrors.Code) *pkgerrors.Error {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code(), "unexpected error: %v", err)
	return typed
}

type fakeGuard struct {
	claimed  map[string]bool
	released []string
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{claimed: map[string]bool{}}
}

func guardKey(op string, requisitionID int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", op, requisitionID, key)
}

func (g *fakeGuard) Claim(_ context.Context, op string, requisitionID int64, key string) (bool, error) {
	k := guardKey(op, requisitionID, key)
	if g.claimed[k] {
		return false, nil
	}
	g.claimed[k] = true
	return true, nil
}

func (g *fakeGuard) Release(_ context.Context, op string, requisitionID int64, key string) error {
	k := guardKey(op, requisitionID, key)
	delete(g.claimed, k)
	g.released = append(g.released, key)
	return nil
}
