//+build tools

// Pins the versions of the lint and migration CLIs used on this repository.
package tools

import (
	_ "github.com/golang-migrate/migrate/v4/cmd/migrate"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/golangci/golangci-lint/cmd/golangci-lint"
)
