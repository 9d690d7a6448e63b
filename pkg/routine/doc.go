// Package routine composes complete cheer routine sheets.
//
// # Overview
//
// A [Request] carries the handful of values a coach fills in: skill level,
// team size, routine length in minutes, focus area and the sections to
// include. [Compose] validates it and produces a [Routine]:
//
//   - a difficulty score out of 10 (see [Difficulty])
//   - one [Section] per chosen section, each with its share of the routine
//     length, a timing label from package timing, and a formation diagram
//     from package formation
//   - coach notes
//
// Sections come from a fixed catalog ([Catalog]); each one is tied to a
// formation category, so choosing "pyramid" always draws a pyramid.
//
// The composer owns input validation. The layout engine it calls never
// rejects input, so everything a user can type is checked here first and
// reported through package errors.
package routine
