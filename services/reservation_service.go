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
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

const (
	StrategyFIFO = "FIFO"
	StrategyFEFO = "FEFO"
)

// ReservationService binds inventory units to material lines and releases
// those bindings again.
type ReservationService struct {
	DB  *gorm.DB
	Log *logger.Logger
}

func NewReservationService(db *gorm.DB, log *logger.Logger) *ReservationService {
	return &ReservationService{DB: db, Log: log}
}

func (s *ReservationService) Reserve(orgID, woMaterialID, inventoryUnitID types.SnowflakeID, qty decimal.Decimal, userID int) (*models.Reservation, error) {
	if !qty.IsPositive() {
		return nil, apperrors.Validation("reserved quantity must be positive")
	}

	var reservation *models.Reservation
	err := withRetry(func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			matRepo := repositories.NewMaterialRepository(tx)
			line, err := matRepo.GetForOrg(orgID, woMaterialID)
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
			if wo.IsTerminal() {
				return apperrors.Conflict(fmt.Sprintf("work order status %s does not allow reservations", wo.Status))
			}

			invRepo := repositories.NewInventoryRepository(tx)
			unit, err := invRepo.GetForOrg(orgID, inventoryUnitID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NotFound("inventory unit not found")
				}
				return apperrors.Internal(err)
			}
			if unit.ProductID != line.ProductID {
				return apperrors.Validation("inventory unit does not carry the material line's product")
			}

			resRepo := repositories.NewReservationRepository(tx)
			if _, err := resRepo.GetActiveForPair(line.ID, unit.ID); err == nil {
				return apperrors.Conflict("an active reservation already exists for this line and unit")
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.Internal(err)
			}

			// Outstanding requirement gate: the increment and the cap check
			// are a single statement.
			ok, err := matRepo.AddReservedCapped(line.ID, qty)
			if err != nil {
				return apperrors.Internal(err)
			}
			if !ok {
				return apperrors.InsufficientQuantity("quantity exceeds the line's outstanding requirement").
					WithDetails(map[string]interface{}{
						"required_qty":  line.RequiredQty,
						"reserved_qty":  line.ReservedQty,
						"attempted_qty": qty,
					})
			}

			// Commit-time availability gate on the unit itself.
			ok, err = invRepo.Allocate(unit.ID, qty)
			if err != nil {
				return apperrors.Internal(err)
			}
			if !ok {
				return apperrors.InsufficientQuantity("quantity exceeds the unit's available stock").
					WithDetails(map[string]interface{}{
						"qty_available": unit.QtyAvailable,
						"attempted_qty": qty,
					})
			}

			reservation = &models.Reservation{
				OrgID:           orgID,
				WorkOrderID:     wo.ID,
				WOMaterialID:    line.ID,
				InventoryUnitID: unit.ID,
				ReservedQty:     qty,
				Status:          models.ReservationStatusActive,
				CreatedBy:       userID,
			}
			if err := resRepo.Create(reservation); err != nil {
				return apperrors.Internal(err)
			}

			detail := fmt.Sprintf("reserved %s %s of unit %s for line %s", qty, line.Uom, unit.Pallet, line.MaterialName)
			if err := helpers.InsertTransactionHistory(tx, orgID, wo.WoNo, "success", "WO_RESERVE", detail, userID); err != nil {
				return apperrors.Internal(err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("reservation created",
		"reservation", reservation.ID.String(), "line", woMaterialID.String(), "qty", qty.String())
	return reservation, nil
}

type ReleaseResult struct {
	ReleasedQty decimal.Decimal `json:"released_qty"`
}

func (s *ReservationService) Release(orgID, reservationID types.SnowflakeID, userID int) (*ReleaseResult, error) {
	var released decimal.Decimal
	err := withRetry(func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			resRepo := repositories.NewReservationRepository(tx)
			res, err := resRepo.GetForOrg(orgID, reservationID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NotFound("reservation not found")
				}
				return apperrors.Internal(err)
			}
			if res.Status == models.ReservationStatusReleased {
				return apperrors.AlreadyReleased("reservation is already released")
			}

			woRepo := repositories.NewWorkOrderRepository(tx)
			wo, err := woRepo.GetForOrg(orgID, res.WorkOrderID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NotFound("work order not found")
				}
				return apperrors.Internal(err)
			}
			if wo.IsTerminal() {
				return apperrors.Conflict(fmt.Sprintf("work order status %s does not allow releasing reservations", wo.Status))
			}

			ok, err := resRepo.MarkReleased(res.ID, time.Now(), userID)
			if err != nil {
				return apperrors.Internal(err)
			}
			if !ok {
				return apperrors.AlreadyReleased("reservation is already released")
			}

			matRepo := repositories.NewMaterialRepository(tx)
			if err := matRepo.SubReserved(res.WOMaterialID, res.ReservedQty); err != nil {
				return apperrors.Internal(err)
			}

			// Only the undrawn part of the binding is still sitting in
			// the allocated bucket; consumed draws already left the unit.
			consRepo := repositories.NewConsumptionRepository(tx)
			drawn, err := consRepo.SumActiveReservedDraws(res.ID)
			if err != nil {
				return apperrors.Internal(err)
			}
			undrawn := res.ReservedQty.Sub(drawn)
			if undrawn.IsPositive() {
				invRepo := repositories.NewInventoryRepository(tx)
				if err := invRepo.Deallocate(res.InventoryUnitID, undrawn); err != nil {
					return apperrors.Internal(err)
				}
			}

			detail := fmt.Sprintf("released reservation %s (%s)", res.ID, res.ReservedQty)
			if err := helpers.InsertTransactionHistory(tx, orgID, wo.WoNo, "success", "WO_RELEASE", detail, userID); err != nil {
				return apperrors.Internal(err)
			}

			released = res.ReservedQty
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return &ReleaseResult{ReleasedQty: released}, nil
}

type SuggestCandidate struct {
	Unit         models.InventoryUnit `json:"unit"`
	QtyAvailable decimal.Decimal      `json:"qty_available"`
}

type SuggestResult struct {
	Strategy     string             `json:"strategy"`
	Top          *SuggestCandidate  `json:"top"`
	Alternatives []SuggestCandidate `json:"alternatives"`
	Reason       string             `json:"reason"`
}

// Suggest ranks available units carrying the line's product. FIFO orders by
// receipt time; FEFO orders by expiry (units without expiry last) and falls
// back to receipt time for ties.
func (s *ReservationService) Suggest(orgID, woMaterialID types.SnowflakeID, strategy string, filter repositories.CandidateFilter, limit int) (*SuggestResult, error) {
	if strategy == "" {
		strategy = StrategyFIFO
	}
	if strategy != StrategyFIFO && strategy != StrategyFEFO {
		return nil, apperrors.Validation("strategy must be FIFO or FEFO")
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	matRepo := repositories.NewMaterialRepository(s.DB)
	line, err := matRepo.GetForOrg(orgID, woMaterialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("material line not found")
		}
		return nil, apperrors.Internal(err)
	}

	invRepo := repositories.NewInventoryRepository(s.DB)
	units, err := invRepo.ListCandidates(orgID, line.ProductID, filter, 0)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	slices.SortStableFunc(units, func(a, b models.InventoryUnit) int {
		if strategy == StrategyFEFO {
			if c := compareExpiry(a.ExpiryDate, b.ExpiryDate); c != 0 {
				return c
			}
		}
		return a.RecDate.Compare(b.RecDate)
	})

	if len(units) > limit {
		units = units[:limit]
	}

	result := &SuggestResult{Strategy: strategy}
	if len(units) == 0 {
		result.Reason = "no inventory units with available stock match the criteria"
		return result, nil
	}

	top := units[0]
	result.Top = &SuggestCandidate{Unit: top, QtyAvailable: top.QtyAvailable}
	for _, u := range units[1:] {
		result.Alternatives = append(result.Alternatives, SuggestCandidate{Unit: u, QtyAvailable: u.QtyAvailable})
	}
	result.Reason = suggestReason(strategy, top)

	return result, nil
}

// compareExpiry sorts earlier expiry first and puts units without an
// expiry date at the end.
func compareExpiry(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}

func suggestReason(strategy string, top models.InventoryUnit) string {
	if strategy == StrategyFEFO {
		if top.ExpiryDate != nil {
			return fmt.Sprintf("unit %s (lot %s) expires first on %s with %s available",
				top.Pallet, top.LotNo, top.ExpiryDate.Format("2006-01-02"), top.QtyAvailable)
		}
		return fmt.Sprintf("unit %s (lot %s) has no expiry date; ranked by oldest receipt %s with %s available",
			top.Pallet, top.LotNo, top.RecDate.Format("2006-01-02"), top.QtyAvailable)
	}
	return fmt.Sprintf("unit %s (lot %s) is the oldest receipt, received %s with %s available",
		top.Pallet, top.LotNo, top.RecDate.Format("2006-01-02"), top.QtyAvailable)
}
