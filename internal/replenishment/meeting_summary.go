package replenishment

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RenderMeetingSummary renders the plain-text weekly risk summary. Sections are
// always emitted in this order: header, critical, warning, action items, the OK
// line and the demand-source footnote.
func RenderMeetingSummary(report RiskReport, pos []ConsolidatedPO) string {
	var b strings.Builder

	fmt.Fprintf(&b, "REPLENISHMENT RISK SUMMARY - W%d (week of %s)\n",
		report.CurrentWeek, report.WeekStartDate.Format(dateLayout))
	fmt.Fprintf(&b, "%d SKUs reviewed: %d critical, %d warning, %d ok\n",
		report.TotalSKUs, report.CriticalCount, report.WarningCount, report.OKCount)
	if report.UnmitigatedRiskCount > 0 {
		fmt.Fprintf(&b, "%d at-risk SKUs have no order suggestion this week\n", report.UnmitigatedRiskCount)
	}

	b.WriteString("\nCRITICAL\n")
	writeRiskItems(&b, report.CriticalItems)

	b.WriteString("\nWARNING\n")
	writeRiskItems(&b, report.WarningItems)

	b.WriteString("\nACTION ITEMS\n")
	actions := 0
	for _, po := range pos {
		actions++
		fmt.Fprintf(&b, "%d. Place PO with %s: %d lines, %d units, %s, expected W%d (%s)",
			actions, po.SupplierCode, po.ItemCount, po.TotalQty, formatMoney(po.TotalCost),
			po.ExpectedArrivalWeek, po.ExpectedArrivalDate.Format(dateLayout))
		if po.CriticalCount > 0 {
			fmt.Fprintf(&b, " [%d critical]", po.CriticalCount)
		}
		b.WriteString("\n")
	}
	for _, items := range [][]RiskItem{report.CriticalItems, report.WarningItems} {
		for _, item := range items {
			if item.HasSuggestion {
				continue
			}
			actions++
			fmt.Fprintf(&b, "%d. %s: %s\n", actions, item.SKUCode, item.ActionNote)
		}
	}
	if actions == 0 {
		b.WriteString("  none\n")
	}

	fmt.Fprintf(&b, "\nOK: %d SKUs with no projected risk inside their review window\n", report.OKCount)

	fmt.Fprintf(&b, "\n* Demand source: %d SKUs projected from forecast, %d from historical average\n",
		report.ForecastDrivenCount, report.HistoricalCount)

	return b.String()
}

func writeRiskItems(b *strings.Builder, items []RiskItem) {
	if len(items) == 0 {
		b.WriteString("  none\n")
		return
	}
	for _, item := range items {
		marker := ""
		if item.DemandSource == DemandForecast {
			marker = "*"
		}
		fmt.Fprintf(b, "- %s%s %s (%s, %s): %.1f on hand, %.1f weeks cover, %s\n",
			item.SKUCode, marker, item.Description, supplierOrUnknown(item.SupplierCode), item.RiskType,
			item.CurrentInventory, item.WeeksOfCover, item.MitigationStatus)
		fmt.Fprintf(b, "    impact: %s\n", item.CustomerImpactNote)
		fmt.Fprintf(b, "    action: %s\n", item.ActionNote)
	}
}

func supplierOrUnknown(code string) string {
	if code == "" {
		return UnknownSupplier
	}
	return code
}

// formatMoney renders an amount with no decimals and thousands separators.
func formatMoney(v float64) string {
	s := decimal.NewFromFloat(v).Round(0).String()

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var out strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(r)
	}
	if neg {
		return "-$" + out.String()
	}
	return "$" + out.String()
}
