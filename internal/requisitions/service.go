package requisitions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

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
	"github.com/angelmondragon/stockroom-backend/pkg/validate"
)

const (
	opCreate      = "create"
	opList        = "list"
	opForceStatus = "force_status"
	opFulfill     = "fulfill"
	opReturn      = "return"
	opDecide      = "decide"
	opRemove      = "remove"
	opReconcile   = "reconcile"

	defaultCodePrefix = "REQ"
)

var opEvents = map[string]string{
	opCreate:      "requisition.created",
	opList:        "requisition.listed",
	opForceStatus: "requisition.status_forced",
	opFulfill:     "requisition.fulfilled",
	opReturn:      "requisition.returned",
	opDecide:      "requisition.decided",
	opRemove:      "requisition.removed",
	opReconcile:   "requisition.reconciled",
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// submissionGuard claims idempotency keys for fulfill and return batches.
type submissionGuard interface {
	Claim(ctx context.Context, op string, requisitionID int64, key string) (bool, error)
	Release(ctx context.Context, op string, requisitionID int64, key string) error
}

// Service runs the requisition lifecycle. Every mutation is a single
// transaction: it commits completely or leaves no trace.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Requisition, error)
	List(ctx context.Context, input ListInput) ([]models.Requisition, error)
	ForceStatus(ctx context.Context, requisitionID int64, status enums.RequisitionStatus) (*models.Requisition, error)
	Fulfill(ctx context.Context, input FulfillInput) (*models.Requisition, error)
	Return(ctx context.Context, input ReturnInput) (*models.Requisition, error)
	Decide(ctx context.Context, input DecideInput) (*models.Requisition, error)
	Remove(ctx context.Context, requisitionID int64, actor access.Actor) error
	Reconcile(ctx context.Context, requisitionID int64) ([]Drift, error)
}

// ServiceParams wires the lifecycle service. Metrics and Guard are optional.
type ServiceParams struct {
	Repo       Repository
	Catalog    catalog.Repository
	Ledger     ledger.Service
	Tx         txRunner
	Logger     *logger.Logger
	Metrics    *metrics.LifecycleMetrics
	Guard      submissionGuard
	CodePrefix string
	Clock      func() time.Time
}

type service struct {
	repo       Repository
	catalog    catalog.Repository
	ledger     ledger.Service
	tx         txRunner
	logg       *logger.Logger
	metrics    *metrics.LifecycleMetrics
	guard      submissionGuard
	codePrefix string
	clock      func() time.Time
}

// NewService builds the lifecycle service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("requisitions repository required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	prefix := strings.TrimSpace(params.CodePrefix)
	if prefix == "" {
		prefix = defaultCodePrefix
	}
	clock := params.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:       params.Repo,
		catalog:    params.Catalog,
		ledger:     params.Ledger,
		tx:         params.Tx,
		logg:       params.Logger,
		metrics:    params.Metrics,
		guard:      params.Guard,
		codePrefix: prefix,
		clock:      clock,
	}, nil
}

// FormatCode renders the human readable code of a requisition.
func FormatCode(prefix string, requisitionID int64) string {
	return fmt.Sprintf("%s-%06d", prefix, requisitionID)
}

func (s *service) Create(ctx context.Context, input CreateInput) (result *models.Requisition, err error) {
	ctx = s.logg.WithActorID(ctx, input.Actor.ID)
	started := time.Now()
	var createdID int64
	defer func() { s.observe(ctx, opCreate, createdID, started, err) }()

	if err := requireActor(input.Actor); err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	materialIDs := make([]int64, 0, len(input.Items))
	for i, item := range input.Items {
		hasDescription := item.Description != nil && strings.TrimSpace(*item.Description) != ""
		if item.MaterialID == nil && !hasDescription {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("items[%d] needs a material id or a description", i)).
				WithDetails(map[string]any{"field": fmt.Sprintf("items[%d]", i), "index": i})
		}
		if item.MaterialID != nil {
			materialIDs = append(materialIDs, *item.MaterialID)
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if len(materialIDs) > 0 {
			materials, err := s.catalog.WithTx(tx).FindMaterials(ctx, materialIDs)
			if err != nil {
				return dependency(err, "failed to resolve materials")
			}
			for i, item := range input.Items {
				if item.MaterialID == nil {
					continue
				}
				if _, ok := materials[*item.MaterialID]; !ok {
					return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("material %d not found", *item.MaterialID)).
						WithDetails(map[string]any{"material_id": *item.MaterialID, "index": i})
				}
			}
		}

		header := &models.Requisition{
			RequesterID:      input.Actor.ID,
			Status:           enums.RequisitionStatusPending,
			RequestedAt:      s.clock(),
			NeededBy:         input.NeededBy,
			DeliveryLocation: trimmed(input.DeliveryLocation),
			Justification:    trimmed(input.Justification),
			Notes:            trimmed(input.Notes),
		}
		if err := repo.CreateRequisition(ctx, header); err != nil {
			return dependency(err, "failed to create requisition")
		}

		header.Code = FormatCode(s.codePrefix, header.ID)
		if err := repo.AssignCode(ctx, header.ID, header.Code); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, fmt.Sprintf("requisition code %s already in use", header.Code))
			}
			return dependency(err, "failed to assign requisition code")
		}

		items := make([]models.RequisitionItem, 0, len(input.Items))
		for _, item := range input.Items {
			items = append(items, models.RequisitionItem{
				RequisitionID: header.ID,
				MaterialID:    item.MaterialID,
				Description:   trimmed(item.Description),
				RequestedQty:  item.Quantity,
				Status:        enums.RequisitionItemStatusPending,
				ReturnState:   enums.ReturnStateNone,
			})
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return dependency(err, "failed to create requisition items")
		}

		header.Items = items
		result = header
		createdID = header.ID
		return nil
	})
	if err != nil {
		return nil, dependency(err, "create requisition transaction failed")
	}
	return result, nil
}

func (s *service) List(ctx context.Context, input ListInput) (result []models.Requisition, err error) {
	ctx = s.logg.WithActorID(ctx, input.Actor.ID)
	started := time.Now()
	defer func() { s.observe(ctx, opList, 0, started, err) }()

	if err := requireActor(input.Actor); err != nil {
		return nil, err
	}
	scope := access.Resolve(input.Actor)

	var sets [][]models.Requisition
	if scope.SeesAll() {
		rows, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, dependency(err, "failed to list requisitions")
		}
		sets = append(sets, rows)
	} else {
		if categories := scope.AllowedCategoryIDs(); len(categories) > 0 {
			rows, err := s.repo.ListByCategories(ctx, categories)
			if err != nil {
				return nil, dependency(err, "failed to list requisitions by category")
			}
			sets = append(sets, rows)
		}
		if scope.Sales {
			rows, err := s.repo.ListWithSellableItems(ctx)
			if err != nil {
				return nil, dependency(err, "failed to list sellable requisitions")
			}
			sets = append(sets, rows)
		}
	}
	own, err := s.repo.ListByRequester(ctx, input.Actor.ID)
	if err != nil {
		return nil, dependency(err, "failed to list own requisitions")
	}
	sets = append(sets, own)

	merged := mergeRequisitions(sets...)
	if len(merged) == 0 || (!input.IncludeItems && !input.IncludeDecisions) {
		return merged, nil
	}

	ids := make([]int64, 0, len(merged))
	for _, header := range merged {
		ids = append(ids, header.ID)
	}
	if input.IncludeItems {
		items, err := s.repo.ItemsByRequisitions(ctx, ids)
		if err != nil {
			return nil, dependency(err, "failed to load requisition items")
		}
		for i := range merged {
			merged[i].Items = items[merged[i].ID]
		}
	}
	if input.IncludeDecisions {
		decisions, err := s.repo.DecisionsByRequisitions(ctx, ids)
		if err != nil {
			return nil, dependency(err, "failed to load requisition decisions")
		}
		for i := range merged {
			merged[i].Decisions = decisions[merged[i].ID]
		}
	}
	return merged, nil
}

// mergeRequisitions unions the sets by id. When an id appears twice the entry
// carrying more items and decisions wins. Output is ordered by id descending.
func mergeRequisitions(sets ...[]models.Requisition) []models.Requisition {
	byID := map[int64]models.Requisition{}
	for _, set := range sets {
		for _, header := range set {
			existing, ok := byID[header.ID]
			if ok && len(existing.Items)+len(existing.Decisions) >= len(header.Items)+len(header.Decisions) {
				continue
			}
			byID[header.ID] = header
		}
	}
	out := make([]models.Requisition, 0, len(byID))
	for _, header := range byID {
		out = append(out, header)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// ForceStatus overwrites the header status without consulting the items.
func (s *service) ForceStatus(ctx context.Context, requisitionID int64, status enums.RequisitionStatus) (result *models.Requisition, err error) {
	started := time.Now()
	defer func() { s.observe(ctx, opForceStatus, requisitionID, started, err) }()

	if requisitionID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requisition id required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid requisition status %q", status)).
			WithDetails(map[string]any{"field": "status"})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := loadHeader(ctx, repo, requisitionID); err != nil {
			return err
		}
		if err := repo.UpdateRequisition(ctx, requisitionID, map[string]any{"status": status}); err != nil {
			return dependency(err, "failed to update requisition status")
		}
		result, err = snapshot(ctx, repo, requisitionID)
		return err
	})
	if err != nil {
		return nil, dependency(err, "force status transaction failed")
	}
	return result, nil
}

func (s *service) Fulfill(ctx context.Context, input FulfillInput) (result *models.Requisition, err error) {
	ctx = s.logg.WithActorID(ctx, input.Actor.ID)
	started := time.Now()
	defer func() { s.observe(ctx, opFulfill, input.RequisitionID, started, err) }()

	if err := requireActor(input.Actor); err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	itemIDs := make([]int64, 0, len(input.Lines))
	for _, line := range input.Lines {
		itemIDs = append(itemIDs, line.ItemID)
	}
	if err := rejectDuplicateItems(itemIDs); err != nil {
		return nil, err
	}

	release, err := s.claim(ctx, opFulfill, input.RequisitionID, input.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	scope := access.Resolve(input.Actor)
	actorID := input.Actor.ID

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cat := s.catalog.WithTx(tx)
		ledg := s.ledger.WithTx(tx)

		header, err := loadHeader(ctx, repo, input.RequisitionID)
		if err != nil {
			return err
		}
		items, err := lockItems(ctx, repo, input.RequisitionID, itemIDs)
		if err != nil {
			return err
		}

		for _, line := range input.Lines {
			item := items[line.ItemID]
			if remaining := item.Remaining(); line.Quantity > remaining {
				return capacityExceeded(item.ID, line.Quantity, remaining, "remain to fulfill")
			}
			material, err := resolveMaterial(ctx, cat, item)
			if err != nil {
				return err
			}
			if err := scope.AuthorizeItem(targetFor(item, material)); err != nil {
				return err
			}
			if material.Sellable {
				return stateConflict(ReasonSellableMaterial, item.ID, material.ID, "sellable materials are handed out through sales, not fulfillment")
			}

			if err := cat.DecrementStock(ctx, material.ID, line.Quantity); err != nil {
				return dependency(err, "failed to decrement stock")
			}
			if _, err := ledg.RecordMovement(ctx, ledger.RecordMovementInput{
				MaterialID:    material.ID,
				MaterialName:  material.Name,
				TypeName:      material.TypeName,
				Direction:     enums.StockMovementOut,
				Quantity:      line.Quantity,
				UnitPrice:     material.Price,
				Reason:        fmt.Sprintf("Fulfillment of requisition %s (item %d)", header.Code, item.ID),
				RequisitionID: &header.ID,
				ActorID:       &actorID,
			}); err != nil {
				return dependency(err, "failed to record stock movement")
			}

			fulfilled := item.FulfilledQty + line.Quantity
			if err := repo.ApplyFulfillment(ctx, FulfillmentUpdate{
				ItemID:            item.ID,
				ExpectedFulfilled: item.FulfilledQty,
				NewFulfilled:      fulfilled,
				Status:            ItemStatus(item.RequestedQty, fulfilled, item.ReturnedQty),
			}); err != nil {
				if errors.Is(err, errItemChanged) {
					return capacityExceeded(item.ID, line.Quantity, item.Remaining(), "remain to fulfill")
				}
				return dependency(err, "failed to update requisition item")
			}
		}

		if err := s.recomputeHeader(ctx, repo, cat, input.RequisitionID); err != nil {
			return err
		}
		result, err = snapshot(ctx, repo, input.RequisitionID)
		return err
	})
	if err != nil {
		release()
		return nil, dependency(err, "fulfill transaction failed")
	}
	return result, nil
}

func (s *service) Return(ctx context.Context, input ReturnInput) (result *models.Requisition, err error) {
	ctx = s.logg.WithActorID(ctx, input.Actor.ID)
	started := time.Now()
	defer func() { s.observe(ctx, opReturn, input.RequisitionID, started, err) }()

	if err := requireActor(input.Actor); err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	itemIDs := make([]int64, 0, len(input.Lines))
	for _, line := range input.Lines {
		itemIDs = append(itemIDs, line.ItemID)
	}
	if err := rejectDuplicateItems(itemIDs); err != nil {
		return nil, err
	}

	release, err := s.claim(ctx, opReturn, input.RequisitionID, input.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	scope := access.Resolve(input.Actor)
	actorID := input.Actor.ID

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cat := s.catalog.WithTx(tx)
		ledg := s.ledger.WithTx(tx)

		header, err := loadHeader(ctx, repo, input.RequisitionID)
		if err != nil {
			return err
		}
		items, err := lockItems(ctx, repo, input.RequisitionID, itemIDs)
		if err != nil {
			return err
		}
		returnedAt := s.clock()

		for _, line := range input.Lines {
			item := items[line.ItemID]
			if inUse := item.InUse(); line.Quantity > inUse {
				return capacityExceeded(item.ID, line.Quantity, inUse, "are in use")
			}
			material, err := resolveMaterial(ctx, cat, item)
			if err != nil {
				return err
			}
			if material.Sellable {
				return stateConflict(ReasonSellableMaterial, item.ID, material.ID, "sellable materials cannot be returned")
			}
			if material.Consumable {
				return stateConflict(ReasonConsumableMaterial, item.ID, material.ID, "consumable materials cannot be returned")
			}
			if err := scope.AuthorizeItem(targetFor(item, material)); err != nil {
				return err
			}

			if err := cat.IncrementStock(ctx, material.ID, line.Quantity); err != nil {
				return dependency(err, "failed to increment stock")
			}
			if _, err := ledg.RecordMovement(ctx, ledger.RecordMovementInput{
				MaterialID:    material.ID,
				MaterialName:  material.Name,
				TypeName:      material.TypeName,
				Direction:     enums.StockMovementIn,
				Quantity:      line.Quantity,
				UnitPrice:     material.Price,
				Reason:        fmt.Sprintf("Return for requisition %s (item %d)", header.Code, item.ID),
				RequisitionID: &header.ID,
				ActorID:       &actorID,
			}); err != nil {
				return dependency(err, "failed to record stock movement")
			}

			returned := item.ReturnedQty + line.Quantity
			if err := repo.ApplyReturn(ctx, ReturnUpdate{
				ItemID:           item.ID,
				ExpectedReturned: item.ReturnedQty,
				NewReturned:      returned,
				Status:           ItemStatus(item.RequestedQty, item.FulfilledQty, returned),
				ReturnState:      ItemReturnState(item.FulfilledQty, returned),
				Condition:        line.Condition,
				Notes:            trimmed(line.Notes),
				ReturnedAt:       returnedAt,
			}); err != nil {
				if errors.Is(err, errItemChanged) {
					return capacityExceeded(item.ID, line.Quantity, item.InUse(), "are in use")
				}
				return dependency(err, "failed to update requisition item")
			}
		}

		if err := s.recomputeHeader(ctx, repo, cat, input.RequisitionID); err != nil {
			return err
		}
		result, err = snapshot(ctx, repo, input.RequisitionID)
		return err
	})
	if err != nil {
		release()
		return nil, dependency(err, "return transaction failed")
	}
	return result, nil
}

func (s *service) Decide(ctx context.Context, input DecideInput) (result *models.Requisition, err error) {
	ctx = s.logg.WithActorID(ctx, input.Actor.ID)
	started := time.Now()
	defer func() { s.observe(ctx, opDecide, input.RequisitionID, started, err) }()

	if err := requireActor(input.Actor); err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	scope := access.Resolve(input.Actor)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := loadHeader(ctx, repo, input.RequisitionID); err != nil {
			return err
		}

		if !scope.Global {
			if err := s.authorizeDecision(ctx, repo, s.catalog.WithTx(tx), scope, input.RequisitionID); err != nil {
				return err
			}
		}

		decidedAt := s.clock()
		if err := repo.CreateDecision(ctx, &models.RequisitionDecision{
			RequisitionID: input.RequisitionID,
			ActorID:       input.Actor.ID,
			Kind:          input.Decision,
			Reason:        trimmed(input.Reason),
			DecidedAt:     decidedAt,
		}); err != nil {
			return dependency(err, "failed to record decision")
		}
		if err := repo.UpdateRequisition(ctx, input.RequisitionID, map[string]any{
			"status":     input.Decision.TargetStatus(),
			"decided_by": input.Actor.ID,
			"decided_at": decidedAt,
		}); err != nil {
			return dependency(err, "failed to update requisition status")
		}
		result, err = snapshot(ctx, repo, input.RequisitionID)
		return err
	})
	if err != nil {
		return nil, dependency(err, "decide transaction failed")
	}
	return result, nil
}

// authorizeDecision requires a category grant for every item of the requisition.
func (s *service) authorizeDecision(ctx context.Context, repo Repository, cat catalog.Repository, scope access.Scope, requisitionID int64) error {
	items, err := repo.FindItems(ctx, requisitionID)
	if err != nil {
		return dependency(err, "failed to load requisition items")
	}
	materials, err := cat.FindMaterials(ctx, materialIDsOf(items))
	if err != nil {
		return dependency(err, "failed to resolve materials")
	}
	for _, item := range items {
		if item.MaterialID == nil {
			return stateConflict(ReasonCategoryUnresolved, item.ID, 0, "item has no catalog material to resolve a category from")
		}
		material, ok := materials[*item.MaterialID]
		if !ok {
			return stateConflict(ReasonMaterialMissing, item.ID, *item.MaterialID, fmt.Sprintf("material %d no longer exists", *item.MaterialID))
		}
		if material.CategoryID == nil {
			return stateConflict(ReasonCategoryUnresolved, item.ID, material.ID, "material type has no category")
		}
		if !scope.ManagesCategory(*material.CategoryID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("item %d: no permission for category %d", item.ID, *material.CategoryID)).
				WithDetails(map[string]any{"item_id": item.ID, "material_id": material.ID, "category_id": *material.CategoryID})
		}
	}
	return nil
}

func (s *service) Remove(ctx context.Context, requisitionID int64, actor access.Actor) (err error) {
	ctx = s.logg.WithActorID(ctx, actor.ID)
	started := time.Now()
	defer func() { s.observe(ctx, opRemove, requisitionID, started, err) }()

	if err := requireActor(actor); err != nil {
		return err
	}
	if requisitionID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "requisition id required")
	}
	if err := s.repo.RemoveWithArchive(ctx, requisitionID, actor.ID); err != nil {
		if isNotFound(err) {
			return requisitionNotFound(requisitionID)
		}
		return dependency(err, "failed to remove requisition")
	}
	return nil
}

// Reconcile compares, per material, the ledger net of the requisition with
// the quantity its items still have out. An empty result means they agree.
func (s *service) Reconcile(ctx context.Context, requisitionID int64) (drifts []Drift, err error) {
	started := time.Now()
	defer func() { s.observe(ctx, opReconcile, requisitionID, started, err) }()

	if _, err := loadHeader(ctx, s.repo, requisitionID); err != nil {
		return nil, err
	}
	items, err := s.repo.FindItems(ctx, requisitionID)
	if err != nil {
		return nil, dependency(err, "failed to load requisition items")
	}
	ledgerNet, err := s.ledger.NetByRequisition(ctx, requisitionID)
	if err != nil {
		return nil, dependency(err, "failed to sum ledger movements")
	}

	itemNet := map[int64]int{}
	for _, item := range items {
		if item.MaterialID == nil {
			continue
		}
		itemNet[*item.MaterialID] += item.FulfilledQty - item.ReturnedQty
	}

	seen := map[int64]struct{}{}
	for id := range itemNet {
		seen[id] = struct{}{}
	}
	for id := range ledgerNet {
		seen[id] = struct{}{}
	}
	for id := range seen {
		if ledgerNet[id] != itemNet[id] {
			drifts = append(drifts, Drift{MaterialID: id, LedgerNet: ledgerNet[id], ItemNet: itemNet[id]})
		}
	}
	sort.Slice(drifts, func(i, j int) bool { return drifts[i].MaterialID < drifts[j].MaterialID })
	return drifts, nil
}

// recomputeHeader derives the header status from the current items.
func (s *service) recomputeHeader(ctx context.Context, repo Repository, cat catalog.Repository, requisitionID int64) error {
	items, err := repo.FindItems(ctx, requisitionID)
	if err != nil {
		return dependency(err, "failed to reload requisition items")
	}
	materials, err := cat.FindMaterials(ctx, materialIDsOf(items))
	if err != nil {
		return dependency(err, "failed to resolve materials")
	}
	snapshots := make([]ItemSnapshot, 0, len(items))
	for _, item := range items {
		snap := ItemSnapshot{
			Requested: item.RequestedQty,
			Fulfilled: item.FulfilledQty,
			Returned:  item.ReturnedQty,
		}
		if item.MaterialID != nil {
			snap.Consumable = materials[*item.MaterialID].Consumable
		}
		snapshots = append(snapshots, snap)
	}
	if err := repo.UpdateRequisition(ctx, requisitionID, map[string]any{"status": HeaderStatus(snapshots)}); err != nil {
		return dependency(err, "failed to update requisition status")
	}
	return nil
}

// claim returns a release func that undoes the claim when the batch fails.
func (s *service) claim(ctx context.Context, op string, requisitionID int64, key string) (func(), error) {
	key = strings.TrimSpace(key)
	if s.guard == nil || key == "" {
		return func() {}, nil
	}
	ok, err := s.guard.Claim(ctx, op, requisitionID, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to claim idempotency key")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeIdempotency, "submission already processed").
			WithDetails(map[string]any{"requisition_id": requisitionID, "op": op})
	}
	return func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), op, requisitionID, key); err != nil {
			s.logg.Error(s.logg.WithOperation(ctx, op), "requisition.idempotency_release_failed", err)
		}
	}, nil
}

func (s *service) observe(ctx context.Context, op string, requisitionID int64, started time.Time, err error) {
	s.metrics.Observe(op, started, err)

	ctx = s.logg.WithOperation(ctx, op)
	if requisitionID > 0 {
		ctx = s.logg.WithRequisitionID(ctx, requisitionID)
	}
	if err == nil {
		switch op {
		case opList, opReconcile:
			s.logg.Debug(ctx, opEvents[op])
		default:
			s.logg.Info(ctx, opEvents[op])
		}
		return
	}

	if pkgerrors.IsFault(err) {
		s.logg.Error(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), opEvents[op]+".failed", err)
		return
	}
	ctx = s.logg.WithField(ctx, "error_code", pkgerrors.CodeOf(err))
	s.logg.Warn(ctx, opEvents[op]+".rejected")
}

func loadHeader(ctx context.Context, repo Repository, requisitionID int64) (*models.Requisition, error) {
	header, err := repo.FindRequisition(ctx, requisitionID)
	if err != nil {
		if isNotFound(err) {
			return nil, requisitionNotFound(requisitionID)
		}
		return nil, dependency(err, "failed to load requisition")
	}
	return header, nil
}

// lockItems loads the batch's items under lock and fails if any is not part of the requisition.
func lockItems(ctx context.Context, repo Repository, requisitionID int64, itemIDs []int64) (map[int64]models.RequisitionItem, error) {
	rows, err := repo.LockItems(ctx, requisitionID, itemIDs)
	if err != nil {
		return nil, dependency(err, "failed to lock requisition items")
	}
	items := make(map[int64]models.RequisitionItem, len(rows))
	for _, row := range rows {
		items[row.ID] = row
	}
	for _, id := range itemIDs {
		if _, ok := items[id]; !ok {
			return nil, itemNotFound(requisitionID, id)
		}
	}
	return items, nil
}

func resolveMaterial(ctx context.Context, cat catalog.Repository, item models.RequisitionItem) (*catalog.Material, error) {
	if item.MaterialID == nil {
		return nil, materialNotFound(item.ID, nil)
	}
	material, err := cat.FindMaterial(ctx, *item.MaterialID)
	if err != nil {
		if isNotFound(err) {
			return nil, materialNotFound(item.ID, item.MaterialID)
		}
		return nil, dependency(err, "failed to load material")
	}
	return material, nil
}

func snapshot(ctx context.Context, repo Repository, requisitionID int64) (*models.Requisition, error) {
	header, err := loadHeader(ctx, repo, requisitionID)
	if err != nil {
		return nil, err
	}
	items, err := repo.FindItems(ctx, requisitionID)
	if err != nil {
		return nil, dependency(err, "failed to load requisition items")
	}
	header.Items = items
	return header, nil
}

func targetFor(item models.RequisitionItem, material *catalog.Material) access.Target {
	return access.Target{
		ItemID:     item.ID,
		MaterialID: material.ID,
		CategoryID: material.CategoryID,
		Sellable:   material.Sellable,
	}
}

func materialIDsOf(items []models.RequisitionItem) []int64 {
	ids := make([]int64, 0, len(items))
	seen := map[int64]struct{}{}
	for _, item := range items {
		if item.MaterialID == nil {
			continue
		}
		if _, ok := seen[*item.MaterialID]; ok {
			continue
		}
		seen[*item.MaterialID] = struct{}{}
		ids = append(ids, *item.MaterialID)
	}
	return ids
}

func rejectDuplicateItems(itemIDs []int64) error {
	seen := make(map[int64]int, len(itemIDs))
	for i, id := range itemIDs {
		if first, ok := seen[id]; ok {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d appears more than once", id)).
				WithDetails(map[string]any{"field": fmt.Sprintf("lines[%d].item_id", i), "index": i, "first_index": first})
		}
		seen[id] = i
	}
	return nil
}

func requireActor(actor access.Actor) error {
	if actor.ID <= 0 {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	return nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
