package report

import (
	"fmt"
	"strconv"

	"dario.cat/mergo"
	"github.com/xuri/excelize/v2"

	"daara/internal/core"
)

const (
	summarySheet = "Synthèse"
	detailSheet  = "Détail"
	amountFormat = "#,##0.##"
)

// MonthXLSX renders a single month as a one-sheet workbook.
func MonthXLSX(r core.MonthlyRecord, cfg core.Configuration) ([]byte, error) {
	xlsx := newWorkbook()
	defer xlsx.Close()

	sheet := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())
	st, err := newStyles(xlsx)
	if err != nil {
		return nil, err
	}
	setDetailColumns(xlsx, sheet)

	row := writeTitle(xlsx, sheet, st, 1, "Rapport financier "+r.Period(), cfg)
	writeRecordDetail(xlsx, sheet, st, row, r)
	_ = xlsx.SetSheetName(sheet, r.Month.String()+" "+itoa(r.Year))

	return finish(xlsx)
}

// PeriodXLSX renders a selection of records: a summary sheet with one row
// per month plus the selection totals, and a detail sheet grouped by month.
// caption describes the selection.
func PeriodXLSX(records []core.MonthlyRecord, totals core.Totals, cfg core.Configuration, caption string) ([]byte, error) {
	xlsx := newWorkbook()
	defer xlsx.Close()

	st, err := newStyles(xlsx)
	if err != nil {
		return nil, err
	}

	first := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())
	_ = xlsx.SetSheetName(first, summarySheet)
	writeSummary(xlsx, summarySheet, st, records, totals, cfg, caption)

	if _, err := xlsx.NewSheet(detailSheet); err != nil {
		return nil, fmt.Errorf("create detail sheet: %w", err)
	}
	setDetailColumns(xlsx, detailSheet)
	row := writeTitle(xlsx, detailSheet, st, 1, "Rapport détaillé - "+caption, cfg)
	for _, r := range records {
		row = writeRecordDetail(xlsx, detailSheet, st, row, r) + 1
	}

	return finish(xlsx)
}

func newWorkbook() *excelize.File {
	xlsx := excelize.NewFile()
	_ = xlsx.SetAppProps(&excelize.AppProperties{
		Application: "daara",
		DocSecurity: 2,
	})
	return xlsx
}

func finish(xlsx *excelize.File) ([]byte, error) {
	buf, err := xlsx.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type styles struct {
	title, header, bold, amount, boldAmount int
}

func newStyles(xlsx *excelize.File) (styles, error) {
	var st styles
	for _, s := range []struct {
		dst   *int
		style *excelize.Style
	}{
		{&st.title, mergeStyles(fontBold(), fontSize(14))},
		{&st.header, mergeStyles(fontBold(), fill("#D9EAD3"), thinBorder("bottom"))},
		{&st.bold, fontBold()},
		{&st.amount, numberFormat()},
		{&st.boldAmount, mergeStyles(numberFormat(), fontBold(), thinBorder("top"))},
	} {
		id, err := xlsx.NewStyle(s.style)
		if err != nil {
			return styles{}, fmt.Errorf("create style: %w", err)
		}
		*s.dst = id
	}
	return st, nil
}

func setDetailColumns(xlsx *excelize.File, sheet string) {
	_ = xlsx.SetColWidth(sheet, "A", "A", 30)
	_ = xlsx.SetColWidth(sheet, "B", "B", 24)
	_ = xlsx.SetColWidth(sheet, "C", "D", 16)
}

func writeTitle(xlsx *excelize.File, sheet string, st styles, row int, title string, cfg core.Configuration) int {
	_ = xlsx.SetCellValue(sheet, cell('A', row), title)
	_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('A', row), st.title)
	row++
	for _, line := range []string{cfg.Location, cfg.Phone, cfg.Email} {
		if line == "" {
			continue
		}
		_ = xlsx.SetCellValue(sheet, cell('A', row), line)
		row++
	}
	return row + 1
}

// writeRecordDetail writes one month's sections starting at row and returns
// the first free row after them.
func writeRecordDetail(xlsx *excelize.File, sheet string, st styles, row int, r core.MonthlyRecord) int {
	t := r.Totals()

	_ = xlsx.SetCellValue(sheet, cell('A', row), r.Period())
	_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('A', row), st.title)
	row++

	header := func(cols ...string) {
		for i, c := range cols {
			_ = xlsx.SetCellValue(sheet, cell('A'+rune(i), row), c)
		}
		_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('A'+rune(len(cols)-1), row), st.header)
		row++
	}
	amount := func(col rune, m core.Money, style int) {
		_ = xlsx.SetCellValue(sheet, cell(col, row), m.Units())
		_ = xlsx.SetCellStyle(sheet, cell(col, row), cell(col, row), style)
	}
	total := func(label string, col rune, m core.Money) {
		_ = xlsx.SetCellValue(sheet, cell('A', row), label)
		_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('A', row), st.bold)
		amount(col, m, st.boldAmount)
		row += 2
	}

	header("Prénom", "Nom", "Montant")
	for _, c := range r.Contributions {
		_ = xlsx.SetCellValue(sheet, cell('A', row), c.GivenName)
		_ = xlsx.SetCellValue(sheet, cell('B', row), c.FamilyName)
		amount('C', c.Amount, st.amount)
		row++
	}
	total("Total cotisations", 'C', t.Contributions)

	header("Source", "Montant")
	for _, o := range r.OtherIncome {
		_ = xlsx.SetCellValue(sheet, cell('A', row), o.Source)
		amount('B', o.Amount, st.amount)
		row++
	}
	total("Total autres recettes", 'B', t.OtherIncome)

	header("Désignation", "Total")
	for _, e := range r.Expenses {
		_ = xlsx.SetCellValue(sheet, cell('A', row), e.Label)
		amount('B', e.Amount, st.amount)
		row++
	}
	total("Total dépenses", 'B', t.Expenses)

	_ = xlsx.SetCellValue(sheet, cell('A', row), "Total reçu")
	amount('B', t.Received, st.amount)
	row++
	_ = xlsx.SetCellValue(sheet, cell('A', row), "Net mensuel")
	amount('B', t.Net, st.boldAmount)
	row += 2

	header("Caisse", "Ancien solde", "Nouveau solde")
	for _, f := range core.Funds {
		fs, _ := r.Allocation.State(f)
		_ = xlsx.SetCellValue(sheet, cell('A', row), f.Label())
		amount('B', fs.PriorBalance, st.amount)
		amount('C', fs.NewBalance, st.amount)
		row++
	}
	return row + 1
}

func writeSummary(xlsx *excelize.File, sheet string, st styles, records []core.MonthlyRecord, totals core.Totals, cfg core.Configuration, caption string) {
	_ = xlsx.SetColWidth(sheet, "A", "A", 18)
	_ = xlsx.SetColWidth(sheet, "B", "I", 15)

	row := writeTitle(xlsx, sheet, st, 1, "Synthèse - "+caption, cfg)
	_ = xlsx.SetCellValue(sheet, cell('A', row), "Net de la sélection")
	_ = xlsx.SetCellValue(sheet, cell('B', row), FormatAmount(totals.Net))
	_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('B', row), st.bold)
	row += 2
	cols := []string{"Période", "Cotisations", "Autres", "Reçu", "Dépenses", "Net"}
	for _, f := range core.Funds {
		cols = append(cols, f.Label())
	}
	for i, c := range cols {
		_ = xlsx.SetCellValue(sheet, cell('A'+rune(i), row), c)
	}
	_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('A'+rune(len(cols)-1), row), st.header)
	_ = xlsx.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      row,
		TopLeftCell: cell('A', row+1),
		ActivePane:  "bottomLeft",
	})
	row++

	for _, r := range records {
		t := r.Totals()
		balances := r.Allocation.NewBalances()
		_ = xlsx.SetCellValue(sheet, cell('A', row), r.Period())
		for i, m := range []core.Money{t.Contributions, t.OtherIncome, t.Received, t.Expenses, t.Net,
			balances.Renovation, balances.Social, balances.Board} {
			_ = xlsx.SetCellValue(sheet, cell('B'+rune(i), row), m.Units())
		}
		_ = xlsx.SetCellStyle(sheet, cell('B', row), cell('I', row), st.amount)
		row++
	}

	_ = xlsx.SetCellValue(sheet, cell('A', row), "Total")
	_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('A', row), st.bold)
	for i, m := range []core.Money{totals.Contributions, totals.OtherIncome, totals.Received, totals.Expenses, totals.Net} {
		_ = xlsx.SetCellValue(sheet, cell('B'+rune(i), row), m.Units())
	}
	_ = xlsx.SetCellStyle(sheet, cell('B', row), cell('F', row), st.boldAmount)
}

func cell(col rune, row int) string {
	return fmt.Sprintf("%c%d", col, row)
}

func itoa(n int) string { return strconv.Itoa(n) }

func fontBold() *excelize.Style {
	return &excelize.Style{Font: &excelize.Font{Bold: true}}
}

func fontSize(size float64) *excelize.Style {
	return &excelize.Style{Font: &excelize.Font{Size: size}}
}

func fill(color string) *excelize.Style {
	return &excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	}
}

func numberFormat() *excelize.Style {
	f := amountFormat
	return &excelize.Style{CustomNumFmt: &f}
}

func thinBorder(where ...string) *excelize.Style {
	s := &excelize.Style{}
	for _, w := range where {
		s.Border = append(s.Border, excelize.Border{Type: w, Color: "000000", Style: 1})
	}
	return s
}

func mergeStyles(ext ...*excelize.Style) *excelize.Style {
	if len(ext) == 0 {
		return nil
	}
	for _, e := range ext[1:] {
		_ = mergo.Merge(ext[0], e, mergo.WithOverride)
	}
	return ext[0]
}
