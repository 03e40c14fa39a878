// Package catalog compiles the admin-authored event and asset catalog from
// CUE sources into store records.
//
// The catalog is the editorial input to the ranking engine: which events
// exist, their tiers, and their time windows. CUE gives the authoring side
// schema checking and defaulting at the boundary, so malformed records
// are rejected with file positions before they ever reach the store.
package catalog

import (
	"fmt"

	"cuelang.org/go/cue/token"

	"github.com/hooray-app/hooray/internal/event"
	"github.com/hooray-app/hooray/internal/store"
)

// Catalog is the compiled result of one CUE directory.
type Catalog struct {
	Events []event.Event
	Assets []store.Asset

	// FileCount is the number of CUE files that contributed.
	FileCount int
}

// Error codes for catalog compilation (C100-C199).
const (
	ErrCodeNotFound    = "C100" // catalog directory missing
	ErrCodeNoFiles     = "C101" // no CUE files in directory
	ErrCodeLoadFailed  = "C102" // CUE loader failure
	ErrCodeBuildFailed = "C103" // CUE build/unification failure
	ErrCodeBadEvent    = "C110" // event record invalid
	ErrCodeBadAsset    = "C120" // asset record invalid
)

// CompileError is a positioned catalog compilation error.
type CompileError struct {
	Code    string
	Path    string // catalog path, e.g. "event.valentines"
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	switch {
	case e.Pos.IsValid() && e.Path != "":
		return fmt.Sprintf("%s:%d:%d: [%s] %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Path, e.Message)
	case e.Path != "":
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Path, e.Message)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
}
