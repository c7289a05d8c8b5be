package repositories

import (
	"time"

	"fiber-mes/models"
	"fiber-mes/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ConsumptionRepository struct {
	db *gorm.DB
}

func NewConsumptionRepository(db *gorm.DB) *ConsumptionRepository {
	return &ConsumptionRepository{db: db}
}

func (r *ConsumptionRepository) Create(c *models.Consumption) error {
	return r.db.Create(c).Error
}

func (r *ConsumptionRepository) GetForOrg(orgID, id types.SnowflakeID) (*models.Consumption, error) {
	var c models.Consumption
	if err := r.db.Where("id = ? AND org_id = ?", id, orgID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// MarkReversed flips an active record to reversed. Returns false when the
// record was already reversed so the caller can report AlreadyReversed.
func (r *ConsumptionRepository) MarkReversed(id types.SnowflakeID, by int, reason string, at time.Time) (bool, error) {
	res := r.db.Model(&models.Consumption{}).
		Where("id = ? AND status = ?", id, models.ConsumptionStatusActive).
		Updates(map[string]interface{}{
			"status":          models.ConsumptionStatusReversed,
			"reversed_at":     at,
			"reversed_by":     by,
			"reversal_reason": reason,
		})
	return res.RowsAffected > 0, res.Error
}

// SumActiveReservedDraws totals how much of a reservation's quantity has
// been drawn out of the allocated bucket by active consumption records.
// Draws that fell back to free stock do not count.
func (r *ConsumptionRepository) SumActiveReservedDraws(reservationID types.SnowflakeID) (decimal.Decimal, error) {
	var raw decimal.NullDecimal
	err := r.db.Model(&models.Consumption{}).
		Select("sum(reserved_draw_qty)").
		Where("reservation_id = ? AND status = ?", reservationID, models.ConsumptionStatusActive).
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !raw.Valid {
		return decimal.Zero, nil
	}
	return raw.Decimal, nil
}

type HistoryFilter struct {
	Status       string // active | reversed | all
	WOMaterialID types.SnowflakeID
	SortBy       string // consumed_at | consumed_qty | status
	SortDir      string // asc | desc
	Page         int
	Limit        int
}

// HistoryRow is one consumption record with the display fields already
// joined in, so the listing never needs per-row lookups.
type HistoryRow struct {
	ID              types.SnowflakeID `json:"ID"`
	WOMaterialID    types.SnowflakeID `json:"wo_material_id"`
	MaterialName    string            `json:"material_name"`
	ItemCode        string            `json:"item_code"`
	InventoryUnitID types.SnowflakeID `json:"inventory_unit_id"`
	Pallet          string            `json:"pallet"`
	LotNo           string            `json:"lot_no"`
	ConsumedQty     decimal.Decimal   `json:"consumed_qty"`
	Uom             string            `json:"uom"`
	IsFullUnit      bool              `json:"is_full_unit"`
	Status          string            `json:"status"`
	ConsumedBy      string            `json:"consumed_by"`
	ConsumedAt      time.Time         `json:"consumed_at"`
	ReversedAt      *time.Time        `json:"reversed_at"`
	ReversalReason  string            `json:"reversal_reason"`
}

var historySortColumns = map[string]string{
	"consumed_at":  "c.consumed_at",
	"consumed_qty": "c.consumed_qty",
	"status":       "c.status",
}

// History lists consumption records of one work order, newest first by
// default, one joined query plus one count.
func (r *ConsumptionRepository) History(orgID, workOrderID types.SnowflakeID, filter HistoryFilter) ([]HistoryRow, int64, error) {
	base := r.db.Table("consumptions c").
		Where("c.org_id = ? AND c.work_order_id = ?", orgID, workOrderID)

	if filter.Status != "" && filter.Status != "all" {
		base = base.Where("c.status = ?", filter.Status)
	}
	if filter.WOMaterialID != 0 {
		base = base.Where("c.wo_material_id = ?", filter.WOMaterialID)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortCol, ok := historySortColumns[filter.SortBy]
	if !ok {
		sortCol = "c.consumed_at"
	}
	sortDir := "desc"
	if filter.SortDir == "asc" {
		sortDir = "asc"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	var rows []HistoryRow
	err := base.
		Select(`c.id, c.wo_material_id, m.material_name, p.item_code,
			c.inventory_unit_id, u.pallet, u.lot_no,
			c.consumed_qty, c.uom, c.is_full_unit, c.status,
			usr.name as consumed_by, c.consumed_at, c.reversed_at, c.reversal_reason`).
		Joins("inner join wo_materials m on c.wo_material_id = m.id").
		Joins("left join products p on m.product_id = p.id").
		Joins("inner join inventory_units u on c.inventory_unit_id = u.id").
		Joins("left join users usr on c.consumed_by = usr.id").
		Order(sortCol + " " + sortDir).
		Limit(limit).
		Offset((page - 1) * limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
