package requisitions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

func TestRepositoryCompareAndSetUpdates(t *testing.T) {
	f := newFixture(t)
	mat := f.material(t, "Globe", nil, 5, materialOpts{})
	req := f.create(t, requester(1), line(mat.ID, 4))
	itemID := req.Items[0].ID
	repo := NewRepository(f.conn)
	ctx := context.Background()

	require.NoError(t, repo.ApplyFulfillment(ctx, FulfillmentUpdate{ItemID: itemID, ExpectedFulfilled: 0, NewFulfilled: 3, Status: enums.RequisitionItemStatusPartial}))

	err := repo.ApplyFulfillment(ctx, FulfillmentUpdate{ItemID: itemID, ExpectedFulfilled: 0, NewFulfilled: 2, Status: enums.RequisitionItemStatusPartial})
	assert.True(t, errors.Is(err, errItemChanged))

	err = repo.ApplyFulfillment(ctx, FulfillmentUpdate{ItemID: itemID, ExpectedFulfilled: 3, NewFulfilled: 5, Status: enums.RequisitionItemStatusFulfilled})
	assert.True(t, errors.Is(err, errItemChanged), "requested quantity must bound the update")

	err = repo.ApplyReturn(ctx, ReturnUpdate{ItemID: itemID, ExpectedReturned: 0, NewReturned: 4, Status: enums.RequisitionItemStatusReturned, ReturnState: enums.ReturnStateFull, ReturnedAt: time.Now()})
	assert.True(t, errors.Is(err, errItemChanged), "fulfilled quantity must bound the return")

	good := enums.ReturnConditionGood
	require.NoError(t, repo.ApplyReturn(ctx, ReturnUpdate{ItemID: itemID, ExpectedReturned: 0, NewReturned: 1, Status: enums.RequisitionItemStatusInUse, ReturnState: enums.ReturnStatePartial, Condition: &good, ReturnedAt: time.Now()}))
	require.NoError(t, repo.ApplyReturn(ctx, ReturnUpdate{ItemID: itemID, ExpectedReturned: 1, NewReturned: 2, Status: enums.RequisitionItemStatusInUse, ReturnState: enums.ReturnStatePartial, ReturnedAt: time.Now()}))

	item := f.item(t, itemID)
	assert.Equal(t, 3, item.FulfilledQty)
	assert.Equal(t, 2, item.ReturnedQty)
	require.NotNil(t, item.ReturnCondition)
	assert.Equal(t, enums.ReturnConditionGood, *item.ReturnCondition)
}

func TestRepositoryListQueries(t *testing.T) {
	f := newFixture(t)
	science := f.category(t, "Science")
	microscope := f.material(t, "Microscope", &science, 5, materialOpts{})
	mug := f.material(t, "Mug", nil, 5, materialOpts{sellable: true})
	first := f.create(t, requester(1), line(microscope.ID, 1))
	second := f.create(t, requester(2), line(mug.ID, 1), line(microscope.ID, 1))
	repo := NewRepository(f.conn)
	ctx := context.Background()

	byCategory, err := repo.ListByCategories(ctx, []int64{science})
	require.NoError(t, err)
	require.Len(t, byCategory, 2)
	assert.Equal(t, second.ID, byCategory[0].ID)

	none, err := repo.ListByCategories(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	sellable, err := repo.ListWithSellableItems(ctx)
	require.NoError(t, err)
	require.Len(t, sellable, 1)
	assert.Equal(t, second.ID, sellable[0].ID)

	own, err := repo.ListByRequester(ctx, 1)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, first.ID, own[0].ID)

	ids, err := repo.ListIDs(ctx, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{first.ID}, ids)
	ids, err = repo.ListIDs(ctx, first.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{second.ID}, ids)

	items, err := repo.ItemsByRequisitions(ctx, []int64{first.ID, second.ID})
	require.NoError(t, err)
	assert.Len(t, items[first.ID], 1)
	assert.Len(t, items[second.ID], 2)
}

func TestRepositoryRemoveMissing(t *testing.T) {
	f := newFixture(t)
	err := NewRepository(f.conn).RemoveWithArchive(context.Background(), 42, 1)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	var archived int64
	require.NoError(t, f.conn.Model(&models.DeletionArchive{}).Count(&archived).Error)
	assert.Zero(t, archived)
}
