package db

import "embed"

// MigrationFS embeds the SQL schema for users, workspaces, billing, contact submissions and audit logs.
// Used by the migrate runner (cmd/migrate).
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
