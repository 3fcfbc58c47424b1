package core

import "strings"

// Configuration is the organisation's identity, its default split and the
// member roster. The split is a soft constraint: PercentTotal is reported,
// never enforced.
type Configuration struct {
	Location          string   `json:"location"`
	Phone             string   `json:"phone"`
	Email             string   `json:"email"`
	Logo              string   `json:"logo,omitempty"` // data URL or path
	RenovationPercent Percent  `json:"defaultRenovationPercent"`
	SocialPercent     Percent  `json:"defaultSocialePercent"`
	BoardPercent      Percent  `json:"defaultComitePercent"`
	Members           []Member `json:"members"`
}

// AppData is the root aggregate, persisted and replaced as one unit.
type AppData struct {
	Records RecordStore   `json:"records"`
	Config  Configuration `json:"config"`
}

// DefaultConfiguration is what a fresh installation starts with.
func DefaultConfiguration() Configuration {
	return Configuration{
		RenovationPercent: 40,
		SocialPercent:     30,
		BoardPercent:      30,
		Members:           []Member{},
	}
}

func NewAppData() AppData {
	return AppData{
		Records: RecordStore{},
		Config:  DefaultConfiguration(),
	}
}

func (c Configuration) Percents() Percents {
	return Percents{
		Renovation: c.RenovationPercent,
		Social:     c.SocialPercent,
		Board:      c.BoardPercent,
	}
}

func (c Configuration) PercentTotal() Percent {
	return c.Percents().Total()
}

// Balanced reports whether the split adds up to exactly 100%.
func (c Configuration) Balanced() bool {
	return c.PercentTotal() == 100
}

// MemberNames lists "given family" for every registered member.
func (c Configuration) MemberNames() []string {
	out := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		out = append(out, m.FullName())
	}
	return out
}

func (c Configuration) Clone() Configuration {
	out := c
	out.Members = append(make([]Member, 0, len(c.Members)), c.Members...)
	return out
}

// Normalize fills nil collections and trims member names.
func (c Configuration) Normalize() Configuration {
	out := c.Clone()
	for i, m := range out.Members {
		out.Members[i] = Member{
			GivenName:  strings.TrimSpace(m.GivenName),
			FamilyName: strings.TrimSpace(m.FamilyName),
		}
	}
	return out
}

// Clone returns a copy whose map and roster can be modified freely.
func (d AppData) Clone() AppData {
	return AppData{
		Records: d.Records.Clone(),
		Config:  d.Config.Clone(),
	}
}

// Normalize makes decoded data safe to use: nil maps become empty and
// records are keyed by their own year and month.
func (d AppData) Normalize() (AppData, error) {
	records, err := d.Records.Rekey()
	if err != nil {
		return AppData{}, err
	}
	return AppData{Records: records, Config: d.Config.Normalize()}, nil
}
