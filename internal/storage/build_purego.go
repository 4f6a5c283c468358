//go:build !sqlite_cgo
// +build !sqlite_cgo

package storage

// This file is compiled unless the sqlite_cgo tag is set. It uses a pure Go
// SQLite implementation and needs no C compiler.
//
// Build command:
//   CGO_ENABLED=0 go build ./...
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// SQLiteDriverName is the database/sql driver used for the sqlite engine
	SQLiteDriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
