package routine

import (
	"strings"
	"time"

	"github.com/matzehuels/cheertower/pkg/formation"
)

// Skill levels.
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

// Focus areas.
const (
	FocusTumbling = "Tumbling"
	FocusStunts   = "Stunts"
	FocusJumps    = "Jumps"
	FocusDance    = "Dance"
	FocusMotions  = "Motions"
)

// Input limits.
const (
	MinTeamSize = 1
	MaxTeamSize = 60
	MinLength   = 1 // minutes
	MaxLength   = 10
)

// Levels returns the skill levels in display order.
func Levels() []string {
	return []string{LevelBeginner, LevelIntermediate, LevelAdvanced}
}

// FocusAreas returns the focus areas in display order.
func FocusAreas() []string {
	return []string{FocusTumbling, FocusStunts, FocusJumps, FocusDance, FocusMotions}
}

// Request holds the inputs for one routine.
type Request struct {
	Level         string   `json:"level" bson:"level"`
	TeamSize      int      `json:"team_size" bson:"team_size"`
	LengthMinutes int      `json:"length" bson:"length"`
	Focus         string   `json:"focus" bson:"focus"`
	Sections      []string `json:"sections,omitempty" bson:"sections,omitempty"`
}

// Seconds returns the routine length in seconds.
func (r Request) Seconds() int { return r.LengthMinutes * 60 }

// Section is one timed part of a routine with its formation.
type Section struct {
	Name      string             `json:"name" bson:"name"`
	Title     string             `json:"title" bson:"title"`
	Seconds   int                `json:"seconds" bson:"seconds"`
	Label     string             `json:"label" bson:"label"`
	Formation formation.Category `json:"formation" bson:"formation"`
	Diagram   string             `json:"diagram" bson:"diagram"`
}

// Routine is a composed routine sheet.
type Routine struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty"`
	Request    Request   `json:"request" bson:"request"`
	Difficulty int       `json:"difficulty" bson:"difficulty"`
	Sections   []Section `json:"sections" bson:"sections"`
	CoachTip   string    `json:"coach_tip" bson:"coach_tip"`
	Notes      []string  `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty" bson:"created_at,omitempty"`
}

// TotalSeconds sums the section lengths.
func (r *Routine) TotalSeconds() int {
	total := 0
	for _, s := range r.Sections {
		total += s.Seconds
	}
	return total
}

// SectionSpec describes a catalog entry.
type SectionSpec struct {
	Name  string
	Title string

	// Formation is the category drawn for the section. The feature section
	// overrides it from the focus area; see formationFor.
	Formation formation.Category
}

// Section names.
const (
	SectionOpening = "opening"
	SectionJumps   = "jumps"
	SectionFeature = "feature"
	SectionStunts  = "stunts"
	SectionPyramid = "pyramid"
	SectionFinale  = "finale"
)

var catalog = []SectionSpec{
	{Name: SectionOpening, Title: "High-energy opening dance + cheer", Formation: formation.Block},
	{Name: SectionJumps, Title: "Sharp jumps section (hit those motions!)", Formation: formation.Wide},
	{Name: SectionFeature, Title: "%s-focused feature section", Formation: formation.Block},
	{Name: SectionStunts, Title: "Group stunt sequence (clean & confident)", Formation: formation.Stunts},
	{Name: SectionPyramid, Title: "Pyramid build", Formation: formation.Pyramid},
	{Name: SectionFinale, Title: "Final cheer, pose, and BIG SMILE", Formation: formation.Wide},
}

// Catalog returns the available sections in routine order.
func Catalog() []SectionSpec {
	return append([]SectionSpec(nil), catalog...)
}

// SectionNames returns the catalog section names in routine order.
func SectionNames() []string {
	names := make([]string, len(catalog))
	for i, s := range catalog {
		names[i] = s.Name
	}
	return names
}

func lookupSection(name string) (SectionSpec, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range catalog {
		if s.Name == name {
			return s, true
		}
	}
	return SectionSpec{}, false
}

// canonical returns the entry of options matching s case-insensitively.
func canonical(s string, options []string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, o := range options {
		if strings.EqualFold(o, s) {
			return o, true
		}
	}
	return "", false
}
