package enums

// GrantTemplate identifies a permission template assigned to a user.
type GrantTemplate string

const (
	// GrantTemplateManageCategory grants management rights over one category,
	// or over every category when the grant carries no resource id.
	GrantTemplateManageCategory GrantTemplate = "manage_category"
	// GrantTemplateManageSales grants rights over sellable materials.
	GrantTemplateManageSales GrantTemplate = "manage_sales"
)

func (g GrantTemplate) String() string {
	return string(g)
}

// GrantResourceCategory is the resource type of category-scoped grants.
const GrantResourceCategory = "category"
