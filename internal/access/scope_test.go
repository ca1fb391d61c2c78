package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }

func categoryGrant(id int64) Grant {
	return Grant{Template: enums.GrantTemplateManageCategory, ResourceType: strPtr("category"), ResourceID: int64Ptr(id)}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		actor      Actor
		global     bool
		sales      bool
		editor     bool
		categories []int64
	}{
		{name: "no grants", actor: Actor{ID: 1}, categories: []int64{}},
		{
			name:   "global category grant",
			actor:  Actor{ID: 1, Grants: []Grant{{Template: enums.GrantTemplateManageCategory}}},
			global: true, categories: []int64{},
		},
		{
			name:       "scoped categories",
			actor:      Actor{ID: 1, Grants: []Grant{categoryGrant(7), categoryGrant(3), categoryGrant(7)}},
			categories: []int64{3, 7},
		},
		{
			name:       "untyped resource is treated as category",
			actor:      Actor{ID: 1, Grants: []Grant{{Template: enums.GrantTemplateManageCategory, ResourceID: int64Ptr(5)}}},
			categories: []int64{5},
		},
		{
			name:       "other resource types are ignored",
			actor:      Actor{ID: 1, Grants: []Grant{{Template: enums.GrantTemplateManageCategory, ResourceType: strPtr("room"), ResourceID: int64Ptr(5)}}},
			categories: []int64{},
		},
		{
			name:       "sales and editor",
			actor:      Actor{ID: 1, Grants: []Grant{{Template: enums.GrantTemplateManageSales}}, Permissions: []Permission{{Module: "requisitions", Action: "edit"}}},
			sales:      true,
			editor:     true,
			categories: []int64{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			scope := Resolve(tc.actor)
			assert.Equal(t, tc.global, scope.Global)
			assert.Equal(t, tc.sales, scope.Sales)
			assert.Equal(t, tc.editor, scope.Editor)
			assert.Equal(t, tc.categories, scope.AllowedCategoryIDs())
		})
	}
}

func TestAuthorizeItemCategoryMismatch(t *testing.T) {
	scope := Resolve(Actor{ID: 2, Grants: []Grant{categoryGrant(5)}})

	err := scope.AuthorizeItem(Target{ItemID: 31, MaterialID: 4, CategoryID: int64Ptr(7)})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
	assert.Contains(t, typed.Message(), "category 7")
	assert.Equal(t, int64(7), typed.Details().(map[string]any)["category_id"])

	assert.NoError(t, scope.AuthorizeItem(Target{ItemID: 31, MaterialID: 4, CategoryID: int64Ptr(5)}))
}

func TestAuthorizeItemUncategorizedNeedsGlobal(t *testing.T) {
	scoped := Resolve(Actor{ID: 2, Grants: []Grant{categoryGrant(5)}})
	assert.Error(t, scoped.AuthorizeItem(Target{ItemID: 1, MaterialID: 1}))

	global := Resolve(Actor{ID: 2, Grants: []Grant{{Template: enums.GrantTemplateManageCategory}}})
	assert.NoError(t, global.AuthorizeItem(Target{ItemID: 1, MaterialID: 1}))
}

func TestAuthorizeItemSellableNeedsSales(t *testing.T) {
	global := Resolve(Actor{ID: 2, Grants: []Grant{{Template: enums.GrantTemplateManageCategory}}})
	err := global.AuthorizeItem(Target{ItemID: 1, MaterialID: 1, CategoryID: int64Ptr(5), Sellable: true})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	sales := Resolve(Actor{ID: 2, Grants: []Grant{{Template: enums.GrantTemplateManageSales}}})
	assert.NoError(t, sales.AuthorizeItem(Target{ItemID: 1, MaterialID: 1, Sellable: true}))
}

func TestSeesAll(t *testing.T) {
	assert.True(t, Resolve(Actor{Permissions: []Permission{{Module: "requisitions", Action: "edit"}}}).SeesAll())
	assert.False(t, Resolve(Actor{Grants: []Grant{categoryGrant(1)}}).SeesAll())
}
