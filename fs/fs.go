package appfs

import "embed"

// FS embeds the database migrations and email templates so deployed
// binaries are self-contained.
//go:embed all:assets migrations
var FS embed.FS
