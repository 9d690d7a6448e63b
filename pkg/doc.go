// Package pkg holds the cheertower libraries.
//
// # Overview
//
// Cheertower composes timed cheerleading routines and draws a formation
// diagram for every section. The libraries are layered:
//
//  1. [formation] and [timing] - pure layout and label engines
//  2. [routine] - request validation, difficulty scoring, composition
//  3. [render] - text, JSON, HTML and terminal output
//  4. [cache] and [store] - rendered artifacts and saved routines
//  5. [pipeline] - compose → render → cache → store orchestration
//
// Supporting packages: [config], [errors], [observability], [buildinfo].
//
// # Data Flow
//
//	Request (CLI flags, form, JSON)
//	         ↓
//	    [routine] (normalize, validate, split seconds)
//	         ↓
//	    [formation] + [timing] (diagram and label per section)
//	         ↓
//	    [render] (text/json/html/styled)
//	         ↓
//	    [cache] / [store]
//
// [formation]: github.com/matzehuels/cheertower/pkg/formation
// [timing]: github.com/matzehuels/cheertower/pkg/timing
// [routine]: github.com/matzehuels/cheertower/pkg/routine
// [render]: github.com/matzehuels/cheertower/pkg/render
// [cache]: github.com/matzehuels/cheertower/pkg/cache
// [store]: github.com/matzehuels/cheertower/pkg/store
// [pipeline]: github.com/matzehuels/cheertower/pkg/pipeline
// [config]: github.com/matzehuels/cheertower/pkg/config
// [errors]: github.com/matzehuels/cheertower/pkg/errors
// [observability]: github.com/matzehuels/cheertower/pkg/observability
// [buildinfo]: github.com/matzehuels/cheertower/pkg/buildinfo
package pkg
