package db

import "embed"

// Migrations holds one sub-directory of ordered .sql files per dialect.
//
//go:embed migrations/*/*.sql
var Migrations embed.FS

//go:embed seed/*.*
var SeedFiles embed.FS
