package db

import "embed"

// Migrations holds the goose SQL files applied by cmd/migrate.
//
//go:embed migrations/*.sql
var Migrations embed.FS
