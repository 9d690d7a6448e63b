package render

import "github.com/matzehuels/cheertower/pkg/formation"

// FormationDoc is the JSON shape of a single formation diagram.
type FormationDoc struct {
	Category formation.Category `json:"category"`
	TeamSize int                `json:"team_size"`
	Pods     int                `json:"pods"`
	Rows     int                `json:"rows"`
	Dropped  int                `json:"dropped"`
	Extra    int                `json:"extra"`
	Markers  int                `json:"markers"`
	Lines    []string           `json:"lines"`
}

// NewFormationDoc describes d.
func NewFormationDoc(d formation.Diagram) FormationDoc {
	lines := d.Lines
	if lines == nil {
		lines = []string{}
	}
	return FormationDoc{
		Category: d.Category,
		TeamSize: d.TeamSize,
		Pods:     d.Pods,
		Rows:     d.Rows,
		Dropped:  d.Dropped,
		Extra:    d.Extra,
		Markers:  d.Markers(),
		Lines:    lines,
	}
}
