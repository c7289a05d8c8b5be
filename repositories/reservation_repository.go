package repositories

import (
	"time"

	"fiber-mes/models"
	"fiber-mes/types"

	"gorm.io/gorm"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(res *models.Reservation) error {
	return r.db.Create(res).Error
}

func (r *ReservationRepository) GetForOrg(orgID, id types.SnowflakeID) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.db.Where("id = ? AND org_id = ?", id, orgID).First(&res).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

// GetActiveForPair returns the active reservation binding a line to a unit,
// or gorm.ErrRecordNotFound.
func (r *ReservationRepository) GetActiveForPair(woMaterialID, inventoryUnitID types.SnowflakeID) (*models.Reservation, error) {
	var res models.Reservation
	err := r.db.Where("wo_material_id = ? AND inventory_unit_id = ? AND status = ?",
		woMaterialID, inventoryUnitID, models.ReservationStatusActive).First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ReservationRepository) CountActiveForWorkOrder(workOrderID types.SnowflakeID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Reservation{}).
		Where("work_order_id = ? AND status = ?", workOrderID, models.ReservationStatusActive).
		Count(&count).Error
	return count, err
}

// MarkReleased flips an active reservation to released. Returns false when
// the row was already released, so the caller can report AlreadyReleased
// instead of silently doing nothing.
func (r *ReservationRepository) MarkReleased(id types.SnowflakeID, at time.Time, by int) (bool, error) {
	res := r.db.Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, models.ReservationStatusActive).
		Updates(map[string]interface{}{
			"status":      models.ReservationStatusReleased,
			"released_at": at,
			"updated_by":  by,
		})
	return res.RowsAffected > 0, res.Error
}
