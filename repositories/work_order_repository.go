package repositories

import (
	"fiber-mes/models"
	"fiber-mes/types"

	"gorm.io/gorm"
)

type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

// GetForOrg loads a work order scoped to the caller's org. A row owned by
// another org comes back as gorm.ErrRecordNotFound, same as true absence.
func (r *WorkOrderRepository) GetForOrg(orgID, id types.SnowflakeID) (*models.WorkOrder, error) {
	var wo models.WorkOrder
	if err := r.db.Where("id = ? AND org_id = ?", id, orgID).First(&wo).Error; err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *WorkOrderRepository) GetBOMWithItems(orgID, bomID types.SnowflakeID) (*models.BOMHeader, error) {
	var bom models.BOMHeader
	err := r.db.Where("id = ? AND org_id = ?", bomID, orgID).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence asc")
		}).
		First(&bom).Error
	if err != nil {
		return nil, err
	}
	return &bom, nil
}
