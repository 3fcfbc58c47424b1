package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin"

	"daara/internal/cli"
	"daara/internal/core"
	"daara/internal/log"
	"daara/internal/query"
	"daara/internal/report"
	"daara/internal/storage"
)

func main() {
	cmdMonth := kingpin.Command("month", "Export one month as CSV or XLSX")
	monthYear := cmdMonth.Flag("year", "Record year").Required().Int()
	monthName := cmdMonth.Flag("month", "Record month, by name or number").Required().String()
	monthFormat := cmdMonth.Flag("format", "Output format").Default("csv").Enum("csv", "xlsx")

	cmdPeriod := kingpin.Command("period", "Export the detailed report of a selection as XLSX")
	periodYear := cmdPeriod.Flag("year", "Year filter").Default(query.All).String()
	periodMonth := cmdPeriod.Flag("month", "Month filter").Default(query.All).String()
	periodMember := cmdPeriod.Flag("member", "Member filter, full name").Default(query.All).String()

	cmdBackup := kingpin.Command("backup", "Write the full ledger as JSON")

	out := kingpin.Flag("out", "Output file (default stdout)").Short('o').String()
	cmd := kingpin.Parse()

	cli.LoadEnvFile()
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		kingpin.Fatalf("%v", err)
	}
	logger := cli.SetupLogger(cfg).WithComponent(log.ComponentReport)

	ctx := context.Background()
	be, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		kingpin.Fatalf("open backend: %v", err)
	}
	defer be.Cleanup()

	data, err := storage.NewRepository(be.Store).LoadAppData(ctx)
	if err != nil {
		kingpin.Fatalf("load ledger: %v", err)
	}

	var buf bytes.Buffer
	switch cmd {
	case cmdMonth.FullCommand():
		err = monthReport(&buf, data, *monthYear, *monthName, *monthFormat)
	case cmdPeriod.FullCommand():
		f := query.Filter{Year: *periodYear, Month: *periodMonth, Member: *periodMember}
		err = periodReport(&buf, data, f)
	case cmdBackup.FullCommand():
		err = backup(&buf, data)
		if s, ok := be.Store.(*storage.SQLiteStore); ok {
			if at, found, uerr := s.UpdatedAt(ctx, storage.SlotAppData); uerr == nil && found {
				logger.Info("Ledger last saved", "updated_at", at.Format("2006-01-02 15:04:05"))
			}
		}
	}
	if err != nil {
		kingpin.Fatalf("%s: %v", cmd, err)
	}

	if err := write(*out, buf.Bytes()); err != nil {
		kingpin.Fatalf("write output: %v", err)
	}
	logger.Info("Report written", log.FieldOperation, log.OpExport, "command", cmd, "bytes", buf.Len())
}

func monthReport(w io.Writer, data core.AppData, year int, monthName, format string) error {
	month, err := core.ParseMonth(monthName)
	if err != nil {
		return err
	}
	if err := core.ValidateKey(year, month); err != nil {
		return err
	}
	rec := data.Records.Get(year, month)

	if format == "xlsx" {
		b, err := report.MonthXLSX(rec, data.Config)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}
	return report.WriteMonthCSV(w, rec, data.Config)
}

func periodReport(w io.Writer, data core.AppData, f query.Filter) error {
	records := query.FilterRecords(query.SortRecords(data.Records), f)
	b, err := report.PeriodXLSX(records, query.SelectionTotals(records), data.Config, f.Caption())
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func backup(w io.Writer, data core.AppData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func write(path string, b []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(b)
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
