// Package appfs exposes the app's embedded static assets:
// DB migrations and email/portfolio templates.
package appfs

import "embed"

//go:embed migrations templates
var FS embed.FS
