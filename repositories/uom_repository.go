package repositories

import (
	"errors"

	"fiber-mes/models"

	"gorm.io/gorm"
)

type UomRepository struct {
	db *gorm.DB
}

func NewUomRepository(db *gorm.DB) *UomRepository {
	return &UomRepository{db: db}
}

const defaultPrecision int32 = 4

// PrecisionFor returns the decimal places quantities of the given UOM are
// rounded to. Unknown codes fall back to 4 places.
func (r *UomRepository) PrecisionFor(code string) (int32, error) {
	var uom models.Uom
	if err := r.db.Where("code = ?", code).First(&uom).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return defaultPrecision, nil
		}
		return 0, err
	}
	return uom.Precision, nil
}
