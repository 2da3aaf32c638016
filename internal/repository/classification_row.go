package repository

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/replenish/internal/replenishment"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// ClassificationRow is one row of v_sku_classification joined to its policy.
type ClassificationRow struct {
	SKUCode         string   `db:"sku_code" validate:"required"`
	Description     string   `db:"description"`
	SupplierCode    string   `db:"supplier_code"`
	ABCClass        string   `db:"abc_class" validate:"omitempty,oneof=A B C"`
	XYZClass        string   `db:"xyz_class" validate:"omitempty,oneof=X Y Z"`
	MatrixCell      string   `db:"matrix_cell"`
	UnitCost        *float64 `db:"unit_cost" validate:"omitempty,gte=0"`
	UnitWeight      *float64 `db:"unit_weight" validate:"omitempty,gte=0"`
	AvgWeeklyDemand float64  `db:"avg_weekly_demand" validate:"gte=0"`
	CVDemand        float64  `db:"cv_demand" validate:"gte=0"`
	LeadTimeWeeks   int      `db:"lead_time_weeks" validate:"gte=0"`
	MOQ             int      `db:"moq" validate:"gte=0"`
	QtyPerContainer *float64 `db:"qty_per_container" validate:"omitempty,gte=0"`

	ServiceLevel          float64 `db:"service_level" validate:"gte=0,lte=1"`
	TargetWOH             float64 `db:"target_woh" validate:"gte=0"`
	SafetyStockMultiplier float64 `db:"safety_stock_multiplier"`
	ReviewFrequency       string  `db:"review_frequency" validate:"required,oneof=weekly biweekly monthly"`
	ReplenishmentMethod   string  `db:"replenishment_method" validate:"required,oneof=auto manual_review on_demand"`
}

// ToSKU validates the row and converts it to an engine SKU.
func (r ClassificationRow) ToSKU() (replenishment.SKU, error) {
	r.ReviewFrequency = strings.ToLower(strings.TrimSpace(r.ReviewFrequency))
	r.ReplenishmentMethod = strings.ToLower(strings.TrimSpace(r.ReplenishmentMethod))

	if err := validate.Struct(r); err != nil {
		return replenishment.SKU{}, fmt.Errorf("invalid classification %s: %s", r.SKUCode, describeValidation(err))
	}

	review, err := replenishment.ParseReviewFrequency(r.ReviewFrequency)
	if err != nil {
		return replenishment.SKU{}, err
	}
	method, err := replenishment.ParseReplenishmentMethod(r.ReplenishmentMethod)
	if err != nil {
		return replenishment.SKU{}, err
	}

	return replenishment.SKU{
		Code:                  r.SKUCode,
		Description:           r.Description,
		SupplierCode:          r.SupplierCode,
		ABCClass:              r.ABCClass,
		XYZClass:              r.XYZClass,
		MatrixCell:            r.MatrixCell,
		UnitCost:              r.UnitCost,
		UnitWeight:            r.UnitWeight,
		AvgWeeklyDemand:       r.AvgWeeklyDemand,
		CVDemand:              r.CVDemand,
		LeadTimeWeeks:         r.LeadTimeWeeks,
		MOQ:                   r.MOQ,
		QtyPerContainer:       r.QtyPerContainer,
		ServiceLevel:          r.ServiceLevel,
		TargetWOH:             r.TargetWOH,
		SafetyStockMultiplier: r.SafetyStockMultiplier,
		Method:                method,
		Review:                review,
	}, nil
}

// RowsToSKUs converts rows, skipping and logging the invalid ones.
func RowsToSKUs(rows []ClassificationRow) []replenishment.SKU {
	skus := make([]replenishment.SKU, 0, len(rows))
	for _, row := range rows {
		sku, err := row.ToSKU()
		if err != nil {
			log.Warn().Err(err).Str("sku_code", row.SKUCode).Msg("skipping classification row")
			continue
		}
		skus = append(skus, sku)
	}
	return skus
}

func describeValidation(err error) string {
	var parts []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			parts = append(parts, fe.Field()+"="+fe.Tag())
		}
		return strings.Join(parts, ", ")
	}
	return err.Error()
}
