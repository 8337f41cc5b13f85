package models

// InsightType classifies an insight for display grouping
type InsightType string

const (
	InsightWarning InsightType = "warning"
	InsightSuccess InsightType = "success"
	InsightInfo    InsightType = "info"
)

// Insight is a short, classified, human-readable recommendation or
// observation. Recomputed on every render, never persisted.
type Insight struct {
	Type    InsightType `json:"type"`
	Message string      `json:"message"`
	Action  string      `json:"action,omitempty"`
}

// InsightGroups buckets insights by type for display
type InsightGroups struct {
	Warnings  []Insight `json:"warnings"`
	Successes []Insight `json:"successes"`
	Infos     []Insight `json:"infos"`
}

// GroupInsights splits a flat insight list into display groups, preserving
// the original order within each group
func GroupInsights(insights []Insight) InsightGroups {
	var g InsightGroups
	for _, in := range insights {
		switch in.Type {
		case InsightWarning:
			g.Warnings = append(g.Warnings, in)
		case InsightSuccess:
			g.Successes = append(g.Successes, in)
		default:
			g.Infos = append(g.Infos, in)
		}
	}
	return g
}
