package access

import (
	"fmt"
	"sort"
	"strings"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

const (
	requisitionsModule = "requisitions"
	editAction         = "edit"
)

// Grant is a permission template assignment, optionally scoped to a resource.
type Grant struct {
	Template     enums.GrantTemplate `json:"template_code"`
	ResourceType *string             `json:"resource_type,omitempty"`
	ResourceID   *int64              `json:"resource_id,omitempty"`
}

// Permission is a module level capability such as requisitions/edit.
type Permission struct {
	Module string `json:"module"`
	Action string `json:"action"`
}

// Actor is the authenticated caller of a lifecycle operation.
type Actor struct {
	ID          int64        `json:"id"`
	Grants      []Grant      `json:"grants,omitempty"`
	Permissions []Permission `json:"permissions,omitempty"`
}

// Scope is the authorization context derived from an actor's grants.
type Scope struct {
	Global     bool
	Editor     bool
	Sales      bool
	categories map[int64]struct{}
}

// Resolve derives the scope from the actor's grants. A category management
// grant without a resource id is global.
func Resolve(actor Actor) Scope {
	scope := Scope{categories: map[int64]struct{}{}}
	for _, grant := range actor.Grants {
		switch grant.Template {
		case enums.GrantTemplateManageCategory:
			if grant.ResourceID == nil {
				scope.Global = true
				continue
			}
			if grant.ResourceType != nil && !strings.EqualFold(*grant.ResourceType, enums.GrantResourceCategory) {
				continue
			}
			scope.categories[*grant.ResourceID] = struct{}{}
		case enums.GrantTemplateManageSales:
			scope.Sales = true
		}
	}
	for _, perm := range actor.Permissions {
		if strings.EqualFold(perm.Module, requisitionsModule) && strings.EqualFold(perm.Action, editAction) {
			scope.Editor = true
		}
	}
	return scope
}

// AllowedCategoryIDs returns the category-scoped grants in ascending order.
func (s Scope) AllowedCategoryIDs() []int64 {
	ids := make([]int64, 0, len(s.categories))
	for id := range s.categories {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ManagesCategory reports whether the scope covers the category.
func (s Scope) ManagesCategory(categoryID int64) bool {
	if s.Global {
		return true
	}
	_, ok := s.categories[categoryID]
	return ok
}

// SeesAll reports whether the actor may list every requisition.
func (s Scope) SeesAll() bool {
	return s.Global || s.Editor
}

// Target describes the material an item mutation touches.
type Target struct {
	ItemID     int64
	MaterialID int64
	CategoryID *int64
	Sellable   bool
}

// AuthorizeItem gates a fulfill or return of one item. Sellable materials
// require the sales capability; everything else requires global rights or a
// grant on the material's category.
func (s Scope) AuthorizeItem(target Target) error {
	if target.Sellable {
		if s.Sales {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("item %d: sales permission required for sellable material", target.ItemID)).
			WithDetails(map[string]any{"item_id": target.ItemID, "material_id": target.MaterialID, "sellable": true})
	}
	if s.Global {
		return nil
	}
	if target.CategoryID != nil && s.ManagesCategory(*target.CategoryID) {
		return nil
	}
	details := map[string]any{"item_id": target.ItemID, "material_id": target.MaterialID}
	if target.CategoryID != nil {
		details["category_id"] = *target.CategoryID
		return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("item %d: no permission for category %d", target.ItemID, *target.CategoryID)).
			WithDetails(details)
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("item %d: material has no category and actor lacks global rights", target.ItemID)).
		WithDetails(details)
}
