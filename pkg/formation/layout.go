package formation

import "strings"

const (
	// Width is the column width every diagram line is centered to.
	Width = 36

	// PodSize is the number of athletes in a full stunt pod.
	PodSize = 4

	// MatsPerRow is the number of pods placed side by side in a stunts row.
	MatsPerRow = 3

	// BlockCapacity is the number of athletes per row in a block formation.
	BlockCapacity = 6

	// WideCapacity is the number of athletes per row in a wide formation.
	WideCapacity = 8

	// Marker is the glyph drawn for one athlete.
	Marker = "X"
)

const (
	podGap    = "     " // between pods in a row
	markerGap = "   "   // between markers in a block/wide row
)

// pyramidRows are the target pod counts of each pyramid tier, bottom to top.
var pyramidRows = [...]int{3, 2, 1}

// fullPod is one visual line of a complete 2×2 pod.
var fullPod = Marker + " " + Marker

// Diagram is a rendered formation together with the counts that produced it.
type Diagram struct {
	Category Category
	TeamSize int
	Lines    []string

	// Pods is the number of 4-athlete groups the team was partitioned into.
	// Zero for block and wide formations.
	Pods int

	// Rows is the number of rendered rows (mat rows, pyramid tiers or
	// marker rows).
	Rows int

	// Dropped counts athletes left out of a pyramid past its sixth pod.
	Dropped int

	// Extra counts markers a pyramid draws beyond TeamSize because a short
	// final pod is still rendered as a full 2×2 block.
	Extra int
}

// String joins the diagram lines with newlines.
func (d Diagram) String() string {
	return strings.Join(d.Lines, "\n")
}

// Markers returns the number of athlete markers in the diagram.
func (d Diagram) Markers() int {
	n := 0
	for _, line := range d.Lines {
		n += strings.Count(line, Marker)
	}
	return n
}

// Layout renders teamSize athletes in category c and returns the diagram text.
func Layout(teamSize int, c Category) string {
	return Render(teamSize, c).String()
}

// Render lays out teamSize athletes in category c.
func Render(teamSize int, c Category) Diagram {
	d := Diagram{Category: c, TeamSize: teamSize}
	if teamSize <= 0 {
		return d
	}

	switch c {
	case Stunts:
		layoutStunts(&d)
	case Pyramid:
		layoutPyramid(&d)
	case Wide:
		layoutRows(&d, WideCapacity)
	default:
		layoutRows(&d, BlockCapacity)
	}
	return d
}

// CountMarkers returns the number of athlete markers in diagram text.
func CountMarkers(s string) int {
	return strings.Count(s, Marker)
}

func layoutStunts(d *Diagram) {
	n := d.TeamSize
	d.Pods = ceilDiv(n, PodSize)
	d.Rows = ceilDiv(d.Pods, MatsPerRow)

	var lines []string
	for r := 0; r < d.Rows; r++ {
		first := r * MatsPerRow
		last := min(first+MatsPerRow, d.Pods)

		group := make([][]string, 0, last-first)
		height := 0
		for p := first; p < last; p++ {
			pl := podLines(min(PodSize, n-p*PodSize))
			group = append(group, pl)
			height = max(height, len(pl))
		}

		for i := 0; i < height; i++ {
			parts := make([]string, len(group))
			for j, pl := range group {
				if i < len(pl) {
					parts[j] = pl[i]
				} else {
					parts[j] = strings.Repeat(" ", len(pl[0]))
				}
			}
			lines = append(lines, center(strings.Join(parts, podGap), Width))
		}
		lines = append(lines, "")
	}
	d.Lines = trimBlankLines(lines)
}

// layoutPyramid always draws full pods; see Diagram.Extra.
func layoutPyramid(d *Diagram) {
	n := d.TeamSize
	d.Pods = ceilDiv(n, PodSize)

	var lines []string
	placed := 0
	for _, target := range pyramidRows {
		if placed >= d.Pods {
			break
		}
		count := min(target, d.Pods-placed)
		line := center(repeatJoin(fullPod, count, podGap), Width)
		lines = append(lines, line, line, "")
		placed += count
		d.Rows++
	}

	drawn := placed * PodSize
	d.Dropped = max(0, n-drawn)
	d.Extra = max(0, drawn-n)
	d.Lines = trimBlankLines(lines)
}

func layoutRows(d *Diagram, capacity int) {
	n := d.TeamSize
	d.Rows = ceilDiv(n, capacity)
	d.Lines = make([]string, 0, d.Rows)
	for r := 0; r < d.Rows; r++ {
		count := min(capacity, n-r*capacity)
		d.Lines = append(d.Lines, center(repeatJoin(Marker, count, markerGap), Width))
	}
}

// podLines draws one pod: a 2×2 block when full, else a single spotter line.
func podLines(size int) []string {
	if size >= PodSize {
		return []string{fullPod, fullPod}
	}
	return []string{repeatJoin(Marker, size, " ")}
}

func repeatJoin(s string, count int, sep string) string {
	if count <= 0 {
		return ""
	}
	return strings.Repeat(s+sep, count-1) + s
}

// center pads s to width columns, putting the odd column on the right.
// Strings already at or past width are returned unchanged.
func center(s string, width int) string {
	n := len(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}

// trimBlankLines drops whole blank lines at either end; padding inside
// the remaining lines is kept.
func trimBlankLines(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
