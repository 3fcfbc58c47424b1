package report

import (
	"encoding/csv"
	"io"
	"strings"

	"daara/internal/core"
)

// WriteMonthCSV writes the monthly report: a header block, then the
// contributions, other income, expenses, balance and fund allocation
// sections, in that order.
func WriteMonthCSV(w io.Writer, r core.MonthlyRecord, cfg core.Configuration) error {
	cw := csv.NewWriter(w)
	t := r.Totals()

	location := cfg.Location
	if strings.TrimSpace(location) == "" {
		location = "Non spécifié"
	}

	rows := [][]string{
		{"RAPPORT FINANCIER - " + strings.ToUpper(r.Month.String()) + " " + itoa(r.Year)},
		{"Lieu: " + location},
		{"Date de creation: " + FormatTime(r.CreatedAt)},
		{"Derniere modification: " + FormatTime(r.UpdatedAt)},
		{},
		{"--- COTISATIONS ---"},
		{"Prenom", "Nom", "Montant (FCFA)"},
	}
	for _, c := range r.Contributions {
		rows = append(rows, []string{c.GivenName, c.FamilyName, c.Amount.String()})
	}
	rows = append(rows,
		[]string{"TOTAL COTISATIONS", "", t.Contributions.String()},
		[]string{},
		[]string{"--- AUTRES RECETTES ---"},
		[]string{"Source", "Montant (FCFA)"},
	)
	for _, o := range r.OtherIncome {
		rows = append(rows, []string{o.Source, o.Amount.String()})
	}
	rows = append(rows,
		[]string{"TOTAL AUTRES", "", t.OtherIncome.String()},
		[]string{},
		[]string{"--- DEPENSES ---"},
		[]string{"Designation", "Total (FCFA)"},
	)
	for _, e := range r.Expenses {
		rows = append(rows, []string{e.Label, e.Amount.String()})
	}
	rows = append(rows,
		[]string{"TOTAL DEPENSES", "", t.Expenses.String()},
		[]string{},
		[]string{"--- BILAN ---"},
		[]string{"Total Recu", "", t.Received.String()},
		[]string{"Net Mensuel", "", t.Net.String()},
		[]string{},
		[]string{"--- REPARTITION DES FONDS ---"},
	)
	for _, f := range core.Funds {
		st, _ := r.Allocation.State(f)
		rows = append(rows, []string{
			plainLabel(f),
			"Ancien: " + st.PriorBalance.String(),
			"Nouveau: " + st.NewBalance.String(),
		})
	}

	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// plainLabel is the unaccented fund label used in CSV headers.
func plainLabel(f core.Fund) string {
	switch f {
	case core.FundRenovation:
		return "Caisse Renovation"
	case core.FundSocial:
		return "Caisse Sociale"
	case core.FundBoard:
		return "Comite Directeur"
	}
	return string(f)
}
