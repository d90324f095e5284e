package models

import (
	"fmt"
	"strings"
)

// Objective selects the metric used to rank candidate configurations
type Objective int

const (
	MaxForLatestMarket Objective = iota
	MaxAvgOverLastXDays
	MinLossPercentageOverLastXDays
	MaxAvgAndMinLoss
)

// AllObjectives returns all objectives in deterministic order
func AllObjectives() []Objective {
	return []Objective{MaxForLatestMarket, MaxAvgOverLastXDays, MinLossPercentageOverLastXDays, MaxAvgAndMinLoss}
}

var objectiveNames = map[Objective]string{
	MaxForLatestMarket:             "max-latest",
	MaxAvgOverLastXDays:            "max-avg",
	MinLossPercentageOverLastXDays: "min-loss",
	MaxAvgAndMinLoss:               "max-avg-min-loss",
}

func (o Objective) String() string {
	if name, ok := objectiveNames[o]; ok {
		return name
	}
	return fmt.Sprintf("objective(%d)", int(o))
}

// NeedsHistory reports whether scoring requires a ProfitHistory
func (o Objective) NeedsHistory() bool {
	return o != MaxForLatestMarket
}

// ParseObjective accepts the short names and the long enum-style names
func ParseObjective(s string) (Objective, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for o, name := range objectiveNames {
		if key == name {
			return o, nil
		}
	}
	switch key {
	case "maxforlatestmarket":
		return MaxForLatestMarket, nil
	case "maxavgoverlastxdays":
		return MaxAvgOverLastXDays, nil
	case "minlosspercentageoverlastxdays":
		return MinLossPercentageOverLastXDays, nil
	case "maxavgandminloss", "maxavgprofitoverlastxdaysandminlosspercentage":
		return MaxAvgAndMinLoss, nil
	}
	return 0, fmt.Errorf("unknown objective %q", s)
}

// MarshalText encodes the objective by its short name
func (o Objective) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes a short or long objective name
func (o *Objective) UnmarshalText(text []byte) error {
	parsed, err := ParseObjective(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
