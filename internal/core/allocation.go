package core

import "strings"

// Fund names one of the three reserve funds. The set is closed.
type Fund string

const (
	FundRenovation Fund = "renovation"
	FundSocial     Fund = "social"
	FundBoard      Fund = "board"
)

// Funds lists the reserve funds in display order.
var Funds = [...]Fund{FundRenovation, FundSocial, FundBoard}

func ParseFund(s string) (Fund, error) {
	switch Fund(strings.ToLower(strings.TrimSpace(s))) {
	case FundRenovation:
		return FundRenovation, nil
	case FundSocial:
		return FundSocial, nil
	case FundBoard:
		return FundBoard, nil
	}
	return "", ErrUnknownFund
}

// Label is the human name printed on reports.
func (f Fund) Label() string {
	switch f {
	case FundRenovation:
		return "Caisse Rénovation"
	case FundSocial:
		return "Caisse Sociale"
	case FundBoard:
		return "Comité Directeur"
	}
	return string(f)
}

type (
	// FundState holds a fund's balance before and after this month.
	// NewBalance is derived and only changes through recomputation.
	FundState struct {
		PriorBalance Money `json:"ancienSolde"`
		NewBalance   Money `json:"nouveauSolde"`
	}

	FundAllocation struct {
		Renovation FundState `json:"caisseRenovation"`
		Social     FundState `json:"caisseSociale"`
		Board      FundState `json:"comiteDirecteur"`
	}

	// Percents is the split of the monthly net across the funds. Nothing
	// requires the three to add up to 100.
	Percents struct {
		Renovation Percent `json:"renovation"`
		Social     Percent `json:"social"`
		Board      Percent `json:"board"`
	}

	// Balances is one amount per fund.
	Balances struct {
		Renovation Money `json:"renovation"`
		Social     Money `json:"social"`
		Board      Money `json:"board"`
	}
)

func (p Percents) Of(f Fund) Percent {
	switch f {
	case FundRenovation:
		return p.Renovation
	case FundSocial:
		return p.Social
	case FundBoard:
		return p.Board
	}
	return 0
}

func (p Percents) Total() Percent {
	return p.Renovation + p.Social + p.Board
}

func (b Balances) Of(f Fund) Money {
	switch f {
	case FundRenovation:
		return b.Renovation
	case FundSocial:
		return b.Social
	case FundBoard:
		return b.Board
	}
	return Money{}
}

func (b Balances) Total() Money {
	return b.Renovation.Add(b.Social).Add(b.Board)
}

// Allocate adds each fund's share of net to its prior balance. Funds are
// computed independently: a split that does not total 100% creates or
// destroys money in aggregate and that is left visible, not corrected.
func Allocate(net Money, prior Balances, pct Percents) Balances {
	return Balances{
		Renovation: prior.Renovation.Add(net.Share(pct.Renovation)),
		Social:     prior.Social.Add(net.Share(pct.Social)),
		Board:      prior.Board.Add(net.Share(pct.Board)),
	}
}

// State returns the fund's state, or an error for a name outside the set.
func (a FundAllocation) State(f Fund) (FundState, error) {
	switch f {
	case FundRenovation:
		return a.Renovation, nil
	case FundSocial:
		return a.Social, nil
	case FundBoard:
		return a.Board, nil
	}
	return FundState{}, ErrUnknownFund
}

func (a *FundAllocation) state(f Fund) *FundState {
	switch f {
	case FundRenovation:
		return &a.Renovation
	case FundSocial:
		return &a.Social
	case FundBoard:
		return &a.Board
	}
	return nil
}

func (a FundAllocation) PriorBalances() Balances {
	return Balances{
		Renovation: a.Renovation.PriorBalance,
		Social:     a.Social.PriorBalance,
		Board:      a.Board.PriorBalance,
	}
}

func (a FundAllocation) NewBalances() Balances {
	return Balances{
		Renovation: a.Renovation.NewBalance,
		Social:     a.Social.NewBalance,
		Board:      a.Board.NewBalance,
	}
}

// reallocate rewrites every NewBalance from the prior balances.
func (a *FundAllocation) reallocate(net Money, pct Percents) {
	next := Allocate(net, a.PriorBalances(), pct)
	a.Renovation.NewBalance = next.Renovation
	a.Social.NewBalance = next.Social
	a.Board.NewBalance = next.Board
}
