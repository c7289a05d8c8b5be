package services

import (
	"errors"
	"fmt"
	"time"

	"fiber-mes/apperrors"
	"fiber-mes/controllers/helpers"
	"fiber-mes/models"
	"fiber-mes/pkg/logger"
	"fiber-mes/repositories"
	"fiber-mes/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	SnapshotModeCreate  = "create"
	SnapshotModeRefresh = "refresh"
)

// SnapshotService freezes a work order's BOM into scaled material lines.
type SnapshotService struct {
	DB  *gorm.DB
	Log *logger.Logger
}

func NewSnapshotService(db *gorm.DB, log *logger.Logger) *SnapshotService {
	return &SnapshotService{DB: db, Log: log}
}

type SnapshotResult struct {
	Materials      []models.WOMaterial `json:"materials"`
	MaterialsCount int                 `json:"materials_count"`
	BOMVersion     int                 `json:"bom_version"`
	SnapshotAt     time.Time           `json:"snapshot_at"`
}

// Generate computes the scaled requirement per BOM item and replaces the
// work order's material set in one transaction. Per item:
//
//	required = targetQty / bomOutputQty * itemQty * (1 + scrapPercent/100)
//
// rounded half-up to the item UOM's precision. By-products skip the formula
// and come out with required = 0, keeping their yield percent for
// downstream reporting.
func (s *SnapshotService) Generate(orgID, workOrderID types.SnowflakeID, mode string, userID int) (*SnapshotResult, error) {
	if mode == "" {
		mode = SnapshotModeCreate
	}
	if mode != SnapshotModeCreate && mode != SnapshotModeRefresh {
		return nil, apperrors.Validation("mode must be create or refresh")
	}

	woRepo := repositories.NewWorkOrderRepository(s.DB)
	wo, err := woRepo.GetForOrg(orgID, workOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("work order not found")
		}
		return nil, apperrors.Internal(err)
	}

	if !wo.IsEditable() {
		return nil, apperrors.Conflict(fmt.Sprintf("work order status %s does not allow snapshot generation", wo.Status))
	}
	if wo.BOMHeaderID == nil {
		return nil, apperrors.Validation("work order has no BOM assigned")
	}

	bom, err := woRepo.GetBOMWithItems(orgID, *wo.BOMHeaderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("BOM not found")
		}
		return nil, apperrors.Internal(err)
	}
	if len(bom.Items) == 0 {
		return nil, apperrors.Validation("BOM has no items")
	}
	if !bom.OutputQty.IsPositive() {
		return nil, apperrors.Validation("BOM output quantity must be positive")
	}
	if !wo.TargetQty.IsPositive() {
		return nil, apperrors.Validation("work order target quantity must be positive")
	}

	snapshotAt := time.Now()
	batchRatio := wo.TargetQty.Div(bom.OutputQty)

	uomRepo := repositories.NewUomRepository(s.DB)
	hundred := decimal.NewFromInt(100)

	lines := make([]models.WOMaterial, 0, len(bom.Items))
	for _, item := range bom.Items {
		var product models.Product
		if err := s.DB.Where("id = ? AND org_id = ?", item.ProductID, orgID).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.Validation(fmt.Sprintf("BOM item %d references an unknown product", item.Sequence))
			}
			return nil, apperrors.Internal(err)
		}

		required := decimal.Zero
		if !item.IsByProduct {
			precision, err := uomRepo.PrecisionFor(item.Uom)
			if err != nil {
				return nil, apperrors.Internal(err)
			}
			scrapFactor := decimal.NewFromInt(1).Add(item.ScrapPercent.Div(hundred))
			required = batchRatio.Mul(item.Quantity).Mul(scrapFactor).Round(precision)
		}

		lines = append(lines, models.WOMaterial{
			OrgID:        orgID,
			WorkOrderID:  wo.ID,
			ProductID:    item.ProductID,
			MaterialName: product.ItemName,
			RequiredQty:  required,
			ConsumedQty:  decimal.Zero,
			ReservedQty:  decimal.Zero,
			Uom:          item.Uom,
			Sequence:     item.Sequence,
			IsByProduct:  item.IsByProduct,
			YieldPercent: item.YieldPercent,
			ScrapPercent: item.ScrapPercent,
			BOMItemID:    item.ID,
			BOMVersion:   bom.Version,
			SnapshotAt:   snapshotAt,
		})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		matRepo := repositories.NewMaterialRepository(tx)

		existing, err := matRepo.ListByWorkOrder(orgID, wo.ID)
		if err != nil {
			return apperrors.Internal(err)
		}
		if mode == SnapshotModeCreate && len(existing) > 0 {
			return apperrors.Conflict("material snapshot already exists, use refresh")
		}

		if len(existing) > 0 {
			resRepo := repositories.NewReservationRepository(tx)
			active, err := resRepo.CountActiveForWorkOrder(wo.ID)
			if err != nil {
				return apperrors.Internal(err)
			}
			if active > 0 {
				return apperrors.Conflict("release active reservations before refreshing the snapshot")
			}
		}

		if err := matRepo.ReplaceForWorkOrder(wo.ID, lines); err != nil {
			return apperrors.Internal(err)
		}

		detail := fmt.Sprintf("snapshot %s: %d lines, bom version %d", mode, len(lines), bom.Version)
		if err := helpers.InsertTransactionHistory(tx, orgID, wo.WoNo, "success", "WO_SNAPSHOT", detail, userID); err != nil {
			return apperrors.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("material snapshot generated",
		"work_order", wo.WoNo, "mode", mode, "lines", len(lines), "bom_version", bom.Version)

	return &SnapshotResult{
		Materials:      lines,
		MaterialsCount: len(lines),
		BOMVersion:     bom.Version,
		SnapshotAt:     snapshotAt,
	}, nil
}
