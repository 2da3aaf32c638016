package main

import (
	"bytes"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"
)

func TestCommands(t *testing.T) {
	app := newApp()

	want := []string{"project", "risk-report", "suggest", "export", "classify", "run", "seed"}
	for _, name := range want {
		if app.Command(name) == nil {
			t.Errorf("missing command %q", name)
		}
	}
}

func testContext(t *testing.T, args ...string) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	app := &cli.App{Writer: &out}

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("output", "", "")
	set.String("supplier", "", "")
	set.Int("week", 0, "")
	if err := set.Parse(args); err != nil {
		t.Fatal(err)
	}
	return cli.NewContext(app, set, nil), &out
}

func TestFilterFrom(t *testing.T) {
	c, _ := testContext(t, "-supplier", " SUP-A ", "-week", "12")

	f := filterFrom(c)
	if f.SupplierCode != "SUP-A" || f.Week != 12 {
		t.Errorf("filter = %+v", f)
	}
}

func TestWithOutputStdout(t *testing.T) {
	c, out := testContext(t)

	err := withOutput(c, func(w io.Writer) error {
		return writeJSON(w, map[string]int{"week": 10})
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.String() != "{\n  \"week\": 10\n}\n" {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestWithOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.txt")
	c, out := testContext(t, "-output", path)

	err := withOutput(c, func(w io.Writer) error {
		_, err := io.WriteString(w, "hello")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Error("file output should not write to stdout")
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "hello" {
		t.Errorf("file = %q, %v", data, err)
	}
}

func TestInsertQuery(t *testing.T) {
	tests := []struct {
		name  string
		table seedTable
		want  string
	}{
		{
			name:  "append only",
			table: seedTable{table: "incoming_supply", columns: []string{"sku_code", "quantity"}},
			want:  "INSERT INTO incoming_supply (sku_code, quantity) VALUES ($1, $2)",
		},
		{
			name:  "upsert",
			table: seedTable{table: "demand_forecasts", columns: []string{"sku_code", "week_number", "quantity"}, conflict: []string{"sku_code", "week_number"}},
			want:  "INSERT INTO demand_forecasts (sku_code, week_number, quantity) VALUES ($1, $2, $3) ON CONFLICT (sku_code, week_number) DO UPDATE SET quantity = EXCLUDED.quantity",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := insertQuery(tt.table); got != tt.want {
				t.Errorf("insertQuery() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestColumnIndexes(t *testing.T) {
	idx, err := columnIndexes([]string{"Quantity", " sku_code", "note"}, []string{"sku_code", "quantity"})
	if err != nil {
		t.Fatal(err)
	}
	if idx[0] != 1 || idx[1] != 0 {
		t.Errorf("idx = %v", idx)
	}

	if _, err := columnIndexes([]string{"sku_code"}, []string{"sku_code", "quantity"}); err == nil {
		t.Error("expected missing column error")
	}
}
