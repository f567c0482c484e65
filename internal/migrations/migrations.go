// Package migrations embeds the backend schema for the contact inbox.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
