package commission

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tier is one row of the commission schedule. A designer qualifies for the
// highest tier whose Threshold does not exceed their lifetime sales.
type Tier struct {
	Name        string
	Threshold   decimal.Decimal // lifetime sales lower edge, inclusive
	DesignerPct decimal.Decimal // designer share of gross, percent
}

// PlatformPct returns the platform share of gross, percent.
func (t Tier) PlatformPct() decimal.Decimal {
	return decimal.NewFromInt(100).Sub(t.DesignerPct)
}

// Tier names
const (
	TierBronze   = "bronze"
	TierSilver   = "silver"
	TierGold     = "gold"
	TierPlatinum = "platinum"
)

// tiers is the single commission schedule, ordered by ascending threshold.
// Every consumer resolves against this table; there is no second copy.
var tiers = []Tier{
	{Name: TierBronze, Threshold: decimal.NewFromInt(0), DesignerPct: decimal.NewFromInt(70)},
	{Name: TierSilver, Threshold: decimal.NewFromInt(100), DesignerPct: decimal.NewFromInt(75)},
	{Name: TierGold, Threshold: decimal.NewFromInt(1000), DesignerPct: decimal.NewFromInt(80)},
	{Name: TierPlatinum, Threshold: decimal.NewFromInt(10000), DesignerPct: decimal.NewFromInt(85)},
}

func init() {
	if err := validateSchedule(tiers); err != nil {
		panic(err)
	}
}

func validateSchedule(schedule []Tier) error {
	if len(schedule) == 0 {
		return fmt.Errorf("commission schedule is empty")
	}
	if !schedule[0].Threshold.IsZero() {
		return fmt.Errorf("commission schedule must start at threshold 0")
	}
	for i := 1; i < len(schedule); i++ {
		if schedule[i].Threshold.LessThanOrEqual(schedule[i-1].Threshold) {
			return fmt.Errorf("commission thresholds must strictly increase at %s", schedule[i].Name)
		}
		if schedule[i].DesignerPct.LessThanOrEqual(schedule[i-1].DesignerPct) {
			return fmt.Errorf("commission shares must strictly increase at %s", schedule[i].Name)
		}
	}
	for _, t := range schedule {
		if t.DesignerPct.LessThanOrEqual(decimal.Zero) || t.DesignerPct.GreaterThanOrEqual(decimal.NewFromInt(100)) {
			return fmt.Errorf("commission share out of range for %s", t.Name)
		}
	}
	return nil
}

// Schedule returns a copy of the tier table, lowest tier first.
func Schedule() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// Resolve picks the tier for the given lifetime sales: the highest tier whose
// threshold is less than or equal to the input. Negative input clamps to the
// base tier.
func Resolve(lifetimeSales decimal.Decimal) Tier {
	resolved := tiers[0]
	for _, t := range tiers[1:] {
		if lifetimeSales.GreaterThanOrEqual(t.Threshold) {
			resolved = t
		}
	}
	return resolved
}

// Split divides a gross amount between designer and platform for a tier.
// Earnings are the designer share rounded to 2 decimals; the platform fee is
// the remainder, so earnings + fee always reproduce the gross exactly.
func Split(gross decimal.Decimal, t Tier) (earnings, fee decimal.Decimal) {
	earnings = gross.Mul(t.DesignerPct).Div(decimal.NewFromInt(100)).Round(2)
	fee = gross.Sub(earnings)
	return earnings, fee
}
