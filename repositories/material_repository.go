package repositories

import (
	"fiber-mes/models"
	"fiber-mes/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func (r *MaterialRepository) GetForOrg(orgID, id types.SnowflakeID) (*models.WOMaterial, error) {
	var line models.WOMaterial
	if err := r.db.Where("id = ? AND org_id = ?", id, orgID).First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *MaterialRepository) ListByWorkOrder(orgID, workOrderID types.SnowflakeID) ([]models.WOMaterial, error) {
	var lines []models.WOMaterial
	err := r.db.Where("work_order_id = ? AND org_id = ?", workOrderID, orgID).
		Order("sequence asc").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// ReplaceForWorkOrder swaps the full material set of a work order. Must be
// called inside a transaction so a failed insert leaves the old set intact.
func (r *MaterialRepository) ReplaceForWorkOrder(workOrderID types.SnowflakeID, lines []models.WOMaterial) error {
	if err := r.db.Where("work_order_id = ?", workOrderID).Delete(&models.WOMaterial{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	return r.db.Create(&lines).Error
}

// AddReservedCapped increments reserved_qty only while the new total stays
// within required_qty. The check and the write are one statement, so two
// racing reservations cannot both pass on a stale read.
func (r *MaterialRepository) AddReservedCapped(id types.SnowflakeID, qty decimal.Decimal) (bool, error) {
	res := r.db.Model(&models.WOMaterial{}).
		Where("id = ? AND reserved_qty + ? <= required_qty", id, qty).
		Update("reserved_qty", gorm.Expr("reserved_qty + ?", qty))
	return res.RowsAffected > 0, res.Error
}

func (r *MaterialRepository) SubReserved(id types.SnowflakeID, qty decimal.Decimal) error {
	return r.db.Model(&models.WOMaterial{}).
		Where("id = ?", id).
		Update("reserved_qty", gorm.Expr("reserved_qty - ?", qty)).Error
}

// AddConsumedCapped is the deny-policy gate: the increment only happens
// when it would not push consumed_qty past required_qty.
func (r *MaterialRepository) AddConsumedCapped(id types.SnowflakeID, qty decimal.Decimal) (bool, error) {
	res := r.db.Model(&models.WOMaterial{}).
		Where("id = ? AND consumed_qty + ? <= required_qty", id, qty).
		Update("consumed_qty", gorm.Expr("consumed_qty + ?", qty))
	return res.RowsAffected > 0, res.Error
}

func (r *MaterialRepository) AddConsumed(id types.SnowflakeID, qty decimal.Decimal) error {
	return r.db.Model(&models.WOMaterial{}).
		Where("id = ?", id).
		Update("consumed_qty", gorm.Expr("consumed_qty + ?", qty)).Error
}

func (r *MaterialRepository) SubConsumed(id types.SnowflakeID, qty decimal.Decimal) error {
	return r.db.Model(&models.WOMaterial{}).
		Where("id = ?", id).
		Update("consumed_qty", gorm.Expr("consumed_qty - ?", qty)).Error
}
