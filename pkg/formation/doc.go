// Package formation lays out athletes on the floor as fixed-width ASCII diagrams.
//
// # Overview
//
// Given a team size and a formation [Category], [Layout] returns a
// newline-separated diagram in which every athlete is an "X" marker and
// every non-empty line is centered to [Width] columns:
//
//	fmt.Println(formation.Layout(10, formation.Stunts))
//
// # Categories
//
//   - [Stunts]: athletes grouped into 4-person pods drawn as 2×2 blocks,
//     three pods per mat row. A final pod of 1-3 athletes is drawn as a
//     single line of spotters.
//   - [Pyramid]: pods stacked in rows of 3, 2 and 1. Every pod is drawn as
//     a full 2×2 block even when the last pod is short, and pods past the
//     sixth are not drawn. [Diagram.Extra] and [Diagram.Dropped] report both.
//   - [Block]: single markers wrapped six to a row.
//   - [Wide]: single markers wrapped eight to a row.
//
// Unknown category names parse to [Block]; see [ParseCategory].
//
// # Degenerate input
//
// A team size of zero or less produces an empty diagram for every
// category. Layout never panics and never returns an error.
//
// All functions in this package are pure and safe for concurrent use.
package formation
