package core

import (
	"strings"

	"github.com/google/uuid"
)

// EntryField names an editable field of a ledger entry.
type EntryField string

const (
	FieldGivenName  EntryField = "givenName"
	FieldFamilyName EntryField = "familyName"
	FieldSource     EntryField = "source"
	FieldLabel      EntryField = "label"
	FieldAmount     EntryField = "amount"
)

type (
	// Contribution is a named member's monthly payment (cotisation).
	Contribution struct {
		ID         string `json:"id"`
		GivenName  string `json:"prenom"`
		FamilyName string `json:"nom"`
		Amount     Money  `json:"montant"`
	}

	// OtherIncome is a non-member receipt with a free-text source.
	OtherIncome struct {
		ID     string `json:"id"`
		Source string `json:"source"`
		Amount Money  `json:"montant"`
	}

	// Expense is an outgoing payment (dépense).
	Expense struct {
		ID     string `json:"id"`
		Label  string `json:"designation"`
		Amount Money  `json:"total"`
	}

	// Member is an entry of the registered roster.
	Member struct {
		GivenName  string `json:"prenom"`
		FamilyName string `json:"nom"`
	}
)

func newID() string {
	return uuid.NewString()
}

func NewContribution(givenName, familyName string, amount Money) Contribution {
	return Contribution{
		ID:         newID(),
		GivenName:  givenName,
		FamilyName: familyName,
		Amount:     amount.NonNegative(),
	}
}

func NewOtherIncome(source string, amount Money) OtherIncome {
	return OtherIncome{ID: newID(), Source: source, Amount: amount.NonNegative()}
}

func NewExpense(label string, amount Money) Expense {
	return Expense{ID: newID(), Label: label, Amount: amount.NonNegative()}
}

// FullName is "given family", the form used by the member filter.
func (c Contribution) FullName() string {
	return fullName(c.GivenName, c.FamilyName)
}

func (m Member) FullName() string {
	return fullName(m.GivenName, m.FamilyName)
}

// Validate requires both names; the roster never stores half a person.
func (m Member) Validate() error {
	if strings.TrimSpace(m.GivenName) == "" || strings.TrimSpace(m.FamilyName) == "" {
		return ErrEmptyMemberName
	}
	return nil
}

func fullName(given, family string) string {
	return given + " " + family
}

func (c Contribution) entryID() string { return c.ID }
func (o OtherIncome) entryID() string  { return o.ID }
func (e Expense) entryID() string      { return e.ID }

func (c *Contribution) set(field EntryField, value string) error {
	switch field {
	case FieldGivenName:
		c.GivenName = value
	case FieldFamilyName:
		c.FamilyName = value
	case FieldAmount:
		c.Amount = ParseAmount(value).NonNegative()
	default:
		return ErrUnknownField
	}
	return nil
}

func (o *OtherIncome) set(field EntryField, value string) error {
	switch field {
	case FieldSource:
		o.Source = value
	case FieldAmount:
		o.Amount = ParseAmount(value).NonNegative()
	default:
		return ErrUnknownField
	}
	return nil
}

func (e *Expense) set(field EntryField, value string) error {
	switch field {
	case FieldLabel:
		e.Label = value
	case FieldAmount:
		e.Amount = ParseAmount(value).NonNegative()
	default:
		return ErrUnknownField
	}
	return nil
}

// ValidField reports whether field can be edited on the given list.
func ValidField(list EntryList, field EntryField) bool {
	switch list {
	case ListContributions:
		return field == FieldGivenName || field == FieldFamilyName || field == FieldAmount
	case ListOtherIncome:
		return field == FieldSource || field == FieldAmount
	case ListExpenses:
		return field == FieldLabel || field == FieldAmount
	}
	return false
}

type identified interface {
	entryID() string
}

type settable[E any] interface {
	*E
	set(field EntryField, value string) error
}

// updateByID applies field=value to the entry carrying id. The slice is
// copied so earlier snapshots never observe the edit.
func updateByID[E identified, P settable[E]](list []E, id string, field EntryField, value string) ([]E, bool) {
	for i := range list {
		if list[i].entryID() != id {
			continue
		}
		out := append([]E(nil), list...)
		if err := P(&out[i]).set(field, value); err != nil {
			return list, false
		}
		return out, true
	}
	return list, false
}

func removeByID[E identified](list []E, id string) ([]E, bool) {
	for i := range list {
		if list[i].entryID() == id {
			out := make([]E, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...), true
		}
	}
	return list, false
}

func sumAmounts[E any](list []E, amount func(E) Money) Money {
	var total Money
	for _, e := range list {
		total = total.Add(amount(e))
	}
	return total
}
