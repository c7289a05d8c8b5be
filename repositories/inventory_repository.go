package repositories

import (
	"time"

	"fiber-mes/models"
	"fiber-mes/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) GetForOrg(orgID, id types.SnowflakeID) (*models.InventoryUnit, error) {
	var unit models.InventoryUnit
	if err := r.db.Where("id = ? AND org_id = ?", id, orgID).First(&unit).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

// Allocate moves qty from available to allocated, but only if the unit
// still has that much available. Conditional single-statement update, so
// two racing reservations cannot both win the same quantity.
func (r *InventoryRepository) Allocate(id types.SnowflakeID, qty decimal.Decimal) (bool, error) {
	res := r.db.Model(&models.InventoryUnit{}).
		Where("id = ? AND qty_available >= ?", id, qty).
		Updates(map[string]interface{}{
			"qty_available": gorm.Expr("qty_available - ?", qty),
			"qty_allocated": gorm.Expr("qty_allocated + ?", qty),
		})
	return res.RowsAffected > 0, res.Error
}

// Deallocate returns qty from allocated back to available (reservation
// release).
func (r *InventoryRepository) Deallocate(id types.SnowflakeID, qty decimal.Decimal) error {
	return r.db.Model(&models.InventoryUnit{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"qty_available": gorm.Expr("qty_available + ?", qty),
			"qty_allocated": gorm.Expr("qty_allocated - ?", qty),
		}).Error
}

// ConsumeAllocated draws qty out of the allocated bucket and off hand.
func (r *InventoryRepository) ConsumeAllocated(id types.SnowflakeID, qty decimal.Decimal) (bool, error) {
	res := r.db.Model(&models.InventoryUnit{}).
		Where("id = ? AND qty_allocated >= ?", id, qty).
		Updates(map[string]interface{}{
			"qty_onhand":    gorm.Expr("qty_onhand - ?", qty),
			"qty_allocated": gorm.Expr("qty_allocated - ?", qty),
		})
	return res.RowsAffected > 0, res.Error
}

// ConsumeAvailable draws qty out of the free (unreserved) bucket.
func (r *InventoryRepository) ConsumeAvailable(id types.SnowflakeID, qty decimal.Decimal) (bool, error) {
	res := r.db.Model(&models.InventoryUnit{}).
		Where("id = ? AND qty_available >= ?", id, qty).
		Updates(map[string]interface{}{
			"qty_onhand":    gorm.Expr("qty_onhand - ?", qty),
			"qty_available": gorm.Expr("qty_available - ?", qty),
		})
	return res.RowsAffected > 0, res.Error
}

// Restore puts a reversed draw back on hand (consumption reversal). The
// allocated part re-backs a reservation that is still active; the rest
// goes to free stock.
func (r *InventoryRepository) Restore(id types.SnowflakeID, toAvailable, toAllocated decimal.Decimal) error {
	return r.db.Model(&models.InventoryUnit{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"qty_onhand":    gorm.Expr("qty_onhand + ?", toAvailable.Add(toAllocated)),
			"qty_available": gorm.Expr("qty_available + ?", toAvailable),
			"qty_allocated": gorm.Expr("qty_allocated + ?", toAllocated),
		}).Error
}

type CandidateFilter struct {
	LotNo      string
	LotPrefix  string
	ExpiryFrom *time.Time
	ExpiryTo   *time.Time
	Search     string
}

// ListCandidates returns units of the product with stock still available.
// Ranking by strategy happens in the service layer.
func (r *InventoryRepository) ListCandidates(orgID types.SnowflakeID, productID uint, filter CandidateFilter, limit int) ([]models.InventoryUnit, error) {
	q := r.db.Where("org_id = ? AND product_id = ? AND qty_available > 0", orgID, productID)

	if filter.LotNo != "" {
		q = q.Where("lot_no = ?", filter.LotNo)
	}
	if filter.LotPrefix != "" {
		q = q.Where("lot_no LIKE ?", filter.LotPrefix+"%")
	}
	if filter.ExpiryFrom != nil {
		q = q.Where("expiry_date >= ?", *filter.ExpiryFrom)
	}
	if filter.ExpiryTo != nil {
		q = q.Where("expiry_date <= ?", *filter.ExpiryTo)
	}
	if filter.Search != "" {
		q = q.Where("pallet LIKE ? OR lot_no LIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var units []models.InventoryUnit
	if err := q.Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}
