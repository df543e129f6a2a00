// Package migrations embeds SQL migration files.
package migrations

import "embed"

// ConsoleFS contains the reference backend migrations.
//
//go:embed console/*.sql
var ConsoleFS embed.FS

// ConsoleDir is the directory within ConsoleFS where migrations live.
const ConsoleDir = "console"
