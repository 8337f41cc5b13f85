package models

// RatioSet holds the target split of income across the canonical buckets.
// The values are percentages that conceptually sum to 100; the planner uses
// them as given and does not reject other sums.
type RatioSet struct {
	Essentials float64 `json:"essentials"`
	Wants      float64 `json:"wants"`
	Savings    float64 `json:"savings"`
}

// CategoryCustomization is a per-category display override
type CategoryCustomization struct {
	Name  string `json:"name,omitempty"`
	Color string `json:"color,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// ChartPreferences holds chart display settings
type ChartPreferences struct {
	Kind       string `json:"kind"`
	ShowLegend bool   `json:"show_legend"`
}

// DisplayPreferences holds general display settings
type DisplayPreferences struct {
	ShowCents bool   `json:"show_cents"`
	Theme     string `json:"theme"`
}

// BudgetPreferences drives the plan calculator's target ratios and carries
// the user's display settings
type BudgetPreferences struct {
	Ratios                RatioSet                         `json:"ratios"`
	CategoryCustomization map[string]CategoryCustomization `json:"category_customization,omitempty"`
	Chart                 ChartPreferences                 `json:"chart"`
	Display               DisplayPreferences               `json:"display"`
}

// DefaultPreferences returns the 50/30/20 starting point
func DefaultPreferences() BudgetPreferences {
	return BudgetPreferences{
		Ratios: RatioSet{Essentials: 50, Wants: 30, Savings: 20},
		Chart:  ChartPreferences{Kind: "donut", ShowLegend: true},
		Display: DisplayPreferences{
			ShowCents: true,
			Theme:     "system",
		},
	}
}
