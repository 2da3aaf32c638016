// Package export writes replenishment suggestions and purchase orders in
// spreadsheet formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/andresuchdata/replenish/internal/replenishment"
)

var suggestionColumns = []string{
	"sku_code", "description", "supplier_code", "matrix_cell", "urgency", "replenishment_method",
	"current_inventory", "inventory_position", "safety_stock", "reorder_point", "target_inventory",
	"stockout_week", "lead_time_weeks", "moq", "arrival_week", "arrival_date", "projected_at_arrival",
	"suggested_order_qty", "weeks_of_cover", "estimated_cost", "estimated_containers", "total_weight",
	"days_of_supply",
}

// WriteSuggestionsCSV writes one row per suggestion after a header row.
// Unknown values are written as empty cells.
func WriteSuggestionsCSV(w io.Writer, suggestions []replenishment.Suggestion) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(suggestionColumns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, s := range suggestions {
		if err := cw.Write(suggestionRecord(s)); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", s.SKUCode, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func suggestionRecord(s replenishment.Suggestion) []string {
	return []string{
		s.SKUCode,
		s.Description,
		s.SupplierCode,
		s.MatrixCell,
		s.Urgency.String(),
		s.Method.String(),
		formatFloat(s.CurrentInventory),
		formatFloat(s.InventoryPosition),
		formatFloat(s.SafetyStock),
		formatFloat(s.ReorderPoint),
		formatFloat(s.TargetInventory),
		formatOptionalInt(s.StockoutWeek),
		strconv.Itoa(s.LeadTimeWeeks),
		strconv.Itoa(s.MOQ),
		strconv.Itoa(s.ArrivalWeek),
		s.ArrivalDate.Format(dateLayout),
		formatFloat(s.ProjectedAtArrival),
		strconv.Itoa(s.SuggestedOrderQty),
		formatFloat(s.WeeksOfCover),
		formatOptionalFloat(s.EstimatedCost),
		formatOptionalFloat(s.EstimatedContainers),
		formatOptionalFloat(s.TotalWeight),
		strconv.Itoa(s.DaysOfSupply),
	}
}

const dateLayout = "2006-01-02"

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
