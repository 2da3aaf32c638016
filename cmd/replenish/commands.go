package main

import (
	"fmt"
	"io"

	"github.com/andresuchdata/replenish/internal/export"
	"github.com/andresuchdata/replenish/internal/replenishment"
	"github.com/urfave/cli/v2"
)

func runProject(c *cli.Context) error {
	res, err := fromContext(c).replenishment.Compute(c.Context, filterFrom(c))
	if err != nil {
		return err
	}

	return withOutput(c, func(w io.Writer) error {
		if c.Bool("full") {
			return writeJSON(w, res)
		}
		return writeJSON(w, res.Summary)
	})
}

func runRiskReport(c *cli.Context) error {
	res, err := fromContext(c).replenishment.Compute(c.Context, filterFrom(c))
	if err != nil {
		return err
	}

	return withOutput(c, func(w io.Writer) error {
		_, err := io.WriteString(w, replenishment.RenderMeetingSummary(res.Risk, res.PurchaseOrders))
		return err
	})
}

func runSuggest(c *cli.Context) error {
	res, err := fromContext(c).replenishment.Compute(c.Context, filterFrom(c))
	if err != nil {
		return err
	}

	return withOutput(c, func(w io.Writer) error {
		return export.WriteSuggestionsCSV(w, res.Suggestions)
	})
}

func runExport(c *cli.Context) error {
	res, err := fromContext(c).replenishment.Compute(c.Context, filterFrom(c))
	if err != nil {
		return err
	}

	return withOutput(c, func(w io.Writer) error {
		return export.WritePurchaseOrdersWorkbook(w, res.PurchaseOrders, res.Summary.CurrentWeek)
	})
}

func runClassify(c *cli.Context) error {
	res, err := fromContext(c).classification.Reclassify(c.Context)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Classified %d SKUs (%d with estimated variability), total annual value %.0f\n",
		len(res.Classes), res.Estimated, res.TotalValue)
	for _, cell := range []string{"AX", "AY", "AZ", "BX", "BY", "BZ", "CX", "CY", "CZ"} {
		if n := res.CellCounts[cell]; n > 0 {
			fmt.Fprintf(c.App.Writer, "  %s: %d\n", cell, n)
		}
	}
	return nil
}

func runRecord(c *cli.Context) error {
	run, err := fromContext(c).replenishment.RecordRun(c.Context, filterFrom(c))
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Run %s for W%d: %d SKUs, %d critical, %d warning, %d suggestions (%d units)\n",
		run.ID, run.Week, run.TotalSKUs, run.CriticalCount, run.WarningCount, run.SuggestionCount, run.TotalOrderQty)
	return nil
}
