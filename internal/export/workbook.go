package export

import (
	"fmt"
	"io"

	"github.com/andresuchdata/replenish/internal/replenishment"
	"github.com/xuri/excelize/v2"
)

const (
	PurchaseOrdersSheet = "Purchase Orders"
	LinesSheet          = "Lines"
)

var purchaseOrderColumns = []string{
	"Supplier", "Lines", "Total Qty", "Total Cost", "Total Weight", "Est. Containers",
	"Critical Lines", "Expected Arrival Week", "Expected Arrival Date",
}

var lineColumns = []string{
	"Supplier", "SKU", "Description", "Urgency", "Order Qty", "MOQ", "Arrival Week",
	"Projected At Arrival", "Target Inventory", "Est. Cost", "Est. Containers", "Total Weight",
}

// WritePurchaseOrdersWorkbook writes an xlsx workbook with one summary row per
// supplier and one line per suggestion. Unknown values are left empty.
func WritePurchaseOrdersWorkbook(w io.Writer, pos []replenishment.ConsolidatedPO, week int) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), PurchaseOrdersSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(LinesSheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", LinesSheet, err)
	}

	title := fmt.Sprintf("Replenishment W%d (%s)", week, replenishment.WeekStartDate(week).Format(dateLayout))
	if err := f.SetDocProps(&excelize.DocProperties{Title: title, Creator: "replenish"}); err != nil {
		return fmt.Errorf("failed to set workbook properties: %w", err)
	}

	if err := writeRow(f, PurchaseOrdersSheet, 1, toCells(purchaseOrderColumns)); err != nil {
		return err
	}
	if err := writeRow(f, LinesSheet, 1, toCells(lineColumns)); err != nil {
		return err
	}

	line := 2
	for i, po := range pos {
		row := []interface{}{
			po.SupplierCode,
			po.ItemCount,
			po.TotalQty,
			po.TotalCost,
			cell(po.TotalWeight),
			cell(po.EstimatedContainers),
			po.CriticalCount,
			po.ExpectedArrivalWeek,
			po.ExpectedArrivalDate.Format(dateLayout),
		}
		if err := writeRow(f, PurchaseOrdersSheet, i+2, row); err != nil {
			return err
		}

		for _, s := range po.Items {
			row := []interface{}{
				po.SupplierCode,
				s.SKUCode,
				s.Description,
				s.Urgency.String(),
				s.SuggestedOrderQty,
				s.MOQ,
				s.ArrivalWeek,
				s.ProjectedAtArrival,
				s.TargetInventory,
				cell(s.EstimatedCost),
				cell(s.EstimatedContainers),
				cell(s.TotalWeight),
			}
			if err := writeRow(f, LinesSheet, line, row); err != nil {
				return err
			}
			line++
		}
	}

	if err := f.SetPanes(PurchaseOrdersSheet, frozenHeader()); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}
	if err := f.SetPanes(LinesSheet, frozenHeader()); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ReadSheetRows returns every row of a sheet, for reading back exported workbooks.
func ReadSheetRows(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from %s: %w", sheet, err)
		}
		out = append(out, record)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in %s: %w", sheet, err)
	}
	return out, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// cell leaves unknown values empty.
func cell(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func frozenHeader() *excelize.Panes {
	return &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}
}
