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
	"fiber-mes/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ConsumptionService records and reverses actual material usage against
// the snapshot lines.
type ConsumptionService struct {
	DB  *gorm.DB
	Log *logger.Logger
}

func NewConsumptionService(db *gorm.DB, log *logger.Logger) *ConsumptionService {
	return &ConsumptionService{DB: db, Log: log}
}

type ConsumeRequest struct {
	WOMaterialID    types.SnowflakeID
	InventoryUnitID types.SnowflakeID
	Qty             decimal.Decimal
	IsFullUnit      bool
	// AllowOverage is the explicit second-step confirmation: under the
	// deny policy a consume that exceeds the requirement is rejected until
	// the caller re-submits with this flag set.
	AllowOverage bool
}

type OverageWarning struct {
	RequiredQty  decimal.Decimal `json:"required_qty"`
	ConsumedQty  decimal.Decimal `json:"consumed_qty"`
	AttemptedQty decimal.Decimal `json:"attempted_qty"`
	OverageQty   decimal.Decimal `json:"overage_qty"`
}

type ConsumeResult struct {
	Record  *models.Consumption `json:"record"`
	Warning *OverageWarning     `json:"warning,omitempty"`
}

func (s *ConsumptionService) Consume(orgID types.SnowflakeID, req ConsumeRequest, userID int) (*ConsumeResult, error) {
	if !req.Qty.IsPositive() {
		return nil, apperrors.Validation("consumed quantity must be positive")
	}

	var result *ConsumeResult
	var alert func()
	err := withRetry(func() error {
		result = nil
		alert = nil
		return s.DB.Transaction(func(tx *gorm.DB) error {
			matRepo := repositories.NewMaterialRepository(tx)
			line, err := matRepo.GetForOrg(orgID, req.WOMaterialID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NotFound("material line not found")
				}
				return apperrors.Internal(err)
			}

			woRepo := repositories.NewWorkOrderRepository(tx)
			wo, err := woRepo.GetForOrg(orgID, line.WorkOrderID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NotFound("work order not found")
				}
				return apperrors.Internal(err)
			}
			if !wo.IsInProgress() {
				return apperrors.Conflict(fmt.Sprintf("work order status %s does not allow consumption", wo.Status))
			}

			invRepo := repositories.NewInventoryRepository(tx)
			unit, err := invRepo.GetForOrg(orgID, req.InventoryUnitID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NotFound("inventory unit not found")
				}
				return apperrors.Internal(err)
			}
			if unit.ProductID != line.ProductID {
				return apperrors.Validation("inventory unit does not carry the material line's product")
			}

			var org models.Organization
			if err := tx.First(&org, "id = ?", orgID).Error; err != nil {
				return apperrors.Internal(err)
			}
			enforceLimit := org.OverConsumptionPolicy != models.OverConsumptionAllow && !req.AllowOverage

			var warning *OverageWarning
			if enforceLimit {
				// Limit check and increment are one conditional statement,
				// so racing consumes cannot both pass on stale totals.
				ok, err := matRepo.AddConsumedCapped(line.ID, req.Qty)
				if err != nil {
					return apperrors.Internal(err)
				}
				if !ok {
					current, err := matRepo.GetForOrg(orgID, line.ID)
					if err != nil {
						return apperrors.Internal(err)
					}
					overage := current.ConsumedQty.Add(req.Qty).Sub(current.RequiredQty)
					return apperrors.Conflict("consumption would exceed the planned requirement").
						WithDetails(map[string]interface{}{
							"required_qty":          current.RequiredQty,
							"consumed_qty":          current.ConsumedQty,
							"attempted_qty":         req.Qty,
							"overage_qty":           overage,
							"requires_confirmation": true,
						})
				}
			} else {
				if err := matRepo.AddConsumed(line.ID, req.Qty); err != nil {
					return apperrors.Internal(err)
				}
			}

			current, err := matRepo.GetForOrg(orgID, line.ID)
			if err != nil {
				return apperrors.Internal(err)
			}
			if current.ConsumedQty.GreaterThan(current.RequiredQty) {
				warning = &OverageWarning{
					RequiredQty:  current.RequiredQty,
					ConsumedQty:  current.ConsumedQty,
					AttemptedQty: req.Qty,
					OverageQty:   current.ConsumedQty.Sub(current.RequiredQty),
				}
			}

			resRepo := repositories.NewReservationRepository(tx)
			reservation, resErr := resRepo.GetActiveForPair(line.ID, unit.ID)
			if resErr != nil && !errors.Is(resErr, gorm.ErrRecordNotFound) {
				return apperrors.Internal(resErr)
			}
			consRepo := repositories.NewConsumptionRepository(tx)

			// Draw from the allocated bucket only up to what this pair's
			// reservation still backs; the allocated bucket is shared per
			// unit and the rest of it belongs to other reservations.
			fromReserved := decimal.Zero
			if reservation != nil {
				priorDraws, err := consRepo.SumActiveReservedDraws(reservation.ID)
				if err != nil {
					return apperrors.Internal(err)
				}
				undrawn := reservation.ReservedQty.Sub(priorDraws)
				if undrawn.IsPositive() {
					fromReserved = decimal.Min(req.Qty, undrawn)
					ok, err := invRepo.ConsumeAllocated(unit.ID, fromReserved)
					if err != nil {
						return apperrors.Internal(err)
					}
					if !ok {
						fromReserved = decimal.Zero
					}
				}
			}
			if fromFree := req.Qty.Sub(fromReserved); fromFree.IsPositive() {
				ok, err := invRepo.ConsumeAvailable(unit.ID, fromFree)
				if err != nil {
					return apperrors.Internal(err)
				}
				if !ok {
					return apperrors.InsufficientQuantity("quantity exceeds the unit's remaining stock").
						WithDetails(map[string]interface{}{
							"qty_available": unit.QtyAvailable,
							"attempted_qty": req.Qty,
						})
				}
			}

			// Full-unit draws close out the pair's reservation: the still
			// undrawn part of the allocation goes back to free stock and
			// the line's reserved counter drops by the full binding.
			if req.IsFullUnit && reservation != nil {
				if ok, err := resRepo.MarkReleased(reservation.ID, time.Now(), userID); err != nil {
					return apperrors.Internal(err)
				} else if ok {
					if err := matRepo.SubReserved(line.ID, reservation.ReservedQty); err != nil {
						return apperrors.Internal(err)
					}
					priorDraws, err := consRepo.SumActiveReservedDraws(reservation.ID)
					if err != nil {
						return apperrors.Internal(err)
					}
					remainder := reservation.ReservedQty.Sub(priorDraws).Sub(fromReserved)
					if remainder.IsPositive() {
						if err := invRepo.Deallocate(unit.ID, remainder); err != nil {
							return apperrors.Internal(err)
						}
					}
				}
			}

			record := &models.Consumption{
				OrgID:           orgID,
				WorkOrderID:     wo.ID,
				WOMaterialID:    line.ID,
				InventoryUnitID: unit.ID,
				ConsumedQty:     req.Qty,
				ReservedDrawQty: fromReserved,
				Uom:             line.Uom,
				IsFullUnit:      req.IsFullUnit,
				Status:          models.ConsumptionStatusActive,
				ConsumedBy:      userID,
				ConsumedAt:      time.Now(),
			}
			if reservation != nil {
				record.ReservationID = &reservation.ID
			}
			if err := consRepo.Create(record); err != nil {
				return apperrors.Internal(err)
			}

			detail := fmt.Sprintf("consumed %s %s of unit %s against line %s", req.Qty, line.Uom, unit.Pallet, line.MaterialName)
			if err := helpers.InsertTransactionHistory(tx, orgID, wo.WoNo, "success", "WO_CONSUME", detail, userID); err != nil {
				return apperrors.Internal(err)
			}

			if warning != nil && req.AllowOverage {
				woNo, materialName := wo.WoNo, line.MaterialName
				attempted, overage := req.Qty.String(), warning.OverageQty.String()
				recipient := org.AlertEmail
				alert = func() {
					if err := utils.SendOverageAlert(recipient, woNo, materialName, attempted, overage); err != nil {
						s.Log.Warn("overage alert mail failed", "work_order", woNo, "error", err)
					}
				}
			}

			result = &ConsumeResult{Record: record, Warning: warning}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if alert != nil {
		alert()
	}

	s.Log.Info("consumption recorded",
		"record", result.Record.ID.String(), "line", req.WOMaterialID.String(), "qty", req.Qty.String())
	return result, nil
}

type ReverseResult struct {
	RestoredQty decimal.Decimal `json:"restored_qty"`
}

// Reverse flips an active record to reversed and gives the quantity back
// to the line and the unit. Always allowed, whatever the over-consumption
// policy says: reducing recorded usage needs no confirmation.
func (s *ConsumptionService) Reverse(orgID, consumptionID types.SnowflakeID, reason string, userID int) (*ReverseResult, error) {
	if reason == "" {
		return nil, apperrors.Validation("reversal reason is required")
	}

	var restored decimal.Decimal
	err := withRetry(func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			consRepo := repositories.NewConsumptionRepository(tx)
			record, err := consRepo.GetForOrg(orgID, consumptionID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NotFound("consumption record not found")
				}
				return apperrors.Internal(err)
			}

			ok, err := consRepo.MarkReversed(record.ID, userID, reason, time.Now())
			if err != nil {
				return apperrors.Internal(err)
			}
			if !ok {
				return apperrors.AlreadyReversed("consumption record is already reversed")
			}

			matRepo := repositories.NewMaterialRepository(tx)
			if err := matRepo.SubConsumed(record.WOMaterialID, record.ConsumedQty); err != nil {
				return apperrors.Internal(err)
			}

			// The allocated part of the draw goes back to the reservation
			// it came from, but only while that reservation is still
			// active; a released one has already been settled.
			toAllocated := decimal.Zero
			if record.ReservationID != nil && record.ReservedDrawQty.IsPositive() {
				var res models.Reservation
				err := tx.First(&res, "id = ?", *record.ReservationID).Error
				if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.Internal(err)
				}
				if err == nil && res.Status == models.ReservationStatusActive {
					toAllocated = record.ReservedDrawQty
				}
			}

			invRepo := repositories.NewInventoryRepository(tx)
			if err := invRepo.Restore(record.InventoryUnitID, record.ConsumedQty.Sub(toAllocated), toAllocated); err != nil {
				return apperrors.Internal(err)
			}

			detail := fmt.Sprintf("reversed consumption %s (%s): %s", record.ID, record.ConsumedQty, reason)
			if err := helpers.InsertTransactionHistory(tx, orgID, record.WorkOrderID.String(), "success", "WO_REVERSE", detail, userID); err != nil {
				return apperrors.Internal(err)
			}

			restored = record.ConsumedQty
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return &ReverseResult{RestoredQty: restored}, nil
}

type HistoryPage struct {
	Rows  []repositories.HistoryRow `json:"rows"`
	Total int64                     `json:"total"`
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
}

func (s *ConsumptionService) History(orgID, workOrderID types.SnowflakeID, filter repositories.HistoryFilter) (*HistoryPage, error) {
	woRepo := repositories.NewWorkOrderRepository(s.DB)
	if _, err := woRepo.GetForOrg(orgID, workOrderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("work order not found")
		}
		return nil, apperrors.Internal(err)
	}

	if filter.Status != "" && filter.Status != "all" &&
		filter.Status != models.ConsumptionStatusActive && filter.Status != models.ConsumptionStatusReversed {
		return nil, apperrors.Validation("status must be active, reversed or all")
	}

	consRepo := repositories.NewConsumptionRepository(s.DB)
	rows, total, err := consRepo.History(orgID, workOrderID, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	return &HistoryPage{Rows: rows, Total: total, Page: page, Limit: limit}, nil
}
