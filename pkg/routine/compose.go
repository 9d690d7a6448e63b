package routine

import (
	"fmt"
	"strings"

	"github.com/matzehuels/cheertower/pkg/errors"
	"github.com/matzehuels/cheertower/pkg/formation"
	"github.com/matzehuels/cheertower/pkg/timing"
)

// CoachTip is printed at the foot of every routine.
const CoachTip = "Practice transitions and timing to keep energy high from start to finish!"

// maxDifficulty caps the difficulty score.
const maxDifficulty = 10

// Normalize returns a copy of req with level and focus in canonical case,
// section names lowercased, and an empty section list expanded to the full
// catalog. Sections are reordered into routine order and de-duplicated.
// Unknown values are left as typed so Validate can report them.
func Normalize(req Request) Request {
	out := req
	if l, ok := canonical(req.Level, Levels()); ok {
		out.Level = l
	} else {
		out.Level = strings.TrimSpace(req.Level)
	}
	if f, ok := canonical(req.Focus, FocusAreas()); ok {
		out.Focus = f
	} else {
		out.Focus = strings.TrimSpace(req.Focus)
	}

	if len(req.Sections) == 0 {
		out.Sections = SectionNames()
		return out
	}

	chosen := make(map[string]bool, len(req.Sections))
	var unknown []string
	for _, s := range req.Sections {
		name := strings.ToLower(strings.TrimSpace(s))
		if _, ok := lookupSection(name); ok {
			chosen[name] = true
		} else {
			unknown = append(unknown, strings.TrimSpace(s))
		}
	}
	out.Sections = nil
	for _, s := range catalog {
		if chosen[s.Name] {
			out.Sections = append(out.Sections, s.Name)
		}
	}
	out.Sections = append(out.Sections, unknown...)
	return out
}

// Validate checks a request. It expects a normalized request; unknown
// levels, focus areas and sections are rejected here.
func Validate(req Request) error {
	if err := errors.ValidateField(errors.ErrCodeInvalidLevel, "level", req.Level); err != nil {
		return err
	}
	if _, ok := canonical(req.Level, Levels()); !ok {
		return errors.New(errors.ErrCodeInvalidLevel, "unknown level %q (must be one of: %s)",
			req.Level, strings.Join(Levels(), ", "))
	}
	if err := errors.ValidateRange(errors.ErrCodeInvalidTeamSize, "team size",
		req.TeamSize, MinTeamSize, MaxTeamSize); err != nil {
		return err
	}
	if err := errors.ValidateRange(errors.ErrCodeInvalidLength, "length (minutes)",
		req.LengthMinutes, MinLength, MaxLength); err != nil {
		return err
	}
	if err := errors.ValidateField(errors.ErrCodeInvalidFocus, "focus", req.Focus); err != nil {
		return err
	}
	if _, ok := canonical(req.Focus, FocusAreas()); !ok {
		return errors.New(errors.ErrCodeInvalidFocus, "unknown focus %q (must be one of: %s)",
			req.Focus, strings.Join(FocusAreas(), ", "))
	}
	if len(req.Sections) == 0 {
		return errors.New(errors.ErrCodeInvalidSection, "at least one section is required")
	}
	for _, s := range req.Sections {
		if err := errors.ValidateField(errors.ErrCodeInvalidSection, "section", s); err != nil {
			return err
		}
		if _, ok := lookupSection(s); !ok {
			return errors.New(errors.ErrCodeInvalidSection, "unknown section %q (must be one of: %s)",
				s, strings.Join(SectionNames(), ", "))
		}
	}
	return nil
}

// Difficulty scores a request from 1 to 10.
//
//   - level: Beginner 2, Intermediate 4, anything else 6
//   - team size: 15 or more +2, 8 or more +1
//   - focus: Tumbling or Stunts +2, anything else +1
func Difficulty(req Request) int {
	score := 0

	switch req.Level {
	case LevelBeginner:
		score += 2
	case LevelIntermediate:
		score += 4
	default:
		score += 6
	}

	switch {
	case req.TeamSize >= 15:
		score += 2
	case req.TeamSize >= 8:
		score += 1
	}

	if req.Focus == FocusTumbling || req.Focus == FocusStunts {
		score += 2
	} else {
		score += 1
	}

	return min(score, maxDifficulty)
}

// Compose normalizes and validates req, then builds the routine sheet.
// The returned routine has no ID; callers that persist it assign one.
func Compose(req Request) (*Routine, error) {
	req = Normalize(req)
	if err := Validate(req); err != nil {
		return nil, err
	}

	shares := timing.Split(req.Seconds(), len(req.Sections))
	r := &Routine{
		Request:    req,
		Difficulty: Difficulty(req),
		Sections:   make([]Section, 0, len(req.Sections)),
		CoachTip:   CoachTip,
	}

	for i, name := range req.Sections {
		spec, _ := lookupSection(name)
		cat := formationFor(spec, req.Focus)
		d := formation.Render(req.TeamSize, cat)

		r.Sections = append(r.Sections, Section{
			Name:      spec.Name,
			Title:     titleFor(spec, req.Focus),
			Seconds:   shares[i],
			Label:     timing.FormatTime(shares[i]),
			Formation: cat,
			Diagram:   d.String(),
		})
		r.Notes = append(r.Notes, diagramNotes(spec, d)...)
	}
	r.Notes = append(r.Notes, levelNotes(req)...)
	return r, nil
}

// formationFor picks the category for a section. The feature section
// follows the focus area.
func formationFor(spec SectionSpec, focus string) formation.Category {
	if spec.Name != SectionFeature {
		return spec.Formation
	}
	switch focus {
	case FocusStunts, FocusTumbling:
		return formation.Stunts
	case FocusJumps:
		return formation.Wide
	}
	return formation.Block
}

func titleFor(spec SectionSpec, focus string) string {
	if spec.Name == SectionFeature {
		return fmt.Sprintf(spec.Title, focus)
	}
	return spec.Title
}

func diagramNotes(spec SectionSpec, d formation.Diagram) []string {
	var notes []string
	if d.Dropped > 0 {
		notes = append(notes, fmt.Sprintf("%s: the pyramid holds %d athletes; %d sit out or spot.",
			spec.Name, d.Markers(), d.Dropped))
	}
	if d.Extra > 0 {
		notes = append(notes, fmt.Sprintf("%s: the last pod is drawn full but only %d athletes fill it.",
			spec.Name, formation.PodSize-d.Extra))
	}
	return notes
}

func levelNotes(req Request) []string {
	if req.Level != LevelBeginner {
		return nil
	}
	for _, s := range req.Sections {
		if s == SectionStunts || s == SectionPyramid {
			return []string{"Beginner squads: keep stunts at prep level with a spotter on every pod."}
		}
	}
	return nil
}
