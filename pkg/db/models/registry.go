package models

// All lists every persisted model in dependency order, for schema bootstrap
// on drivers that cannot run the SQL migrations.
func All() []any {
	return []any{
		&Category{},
		&MaterialType{},
		&Material{},
		&Requisition{},
		&RequisitionItem{},
		&RequisitionDecision{},
		&StockMovement{},
		&DeletionArchive{},
	}
}
