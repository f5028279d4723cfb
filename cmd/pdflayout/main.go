// Command pdflayout lays out documents described in YAML onto pages.
//
// Usage:
//
//	pdflayout <command> [options] <args>
//
// Commands:
//
//	render   Lay out a document and write its pages
//	columns  Resolve the column count and width of a multi-column box
//	version  Show version information
//	help     Show help message
//
// Examples:
//
//	# Write one content stream per page
//	pdflayout render report.yaml
//
//	# Preview pages as PNG images
//	pdflayout render --format png --out pages report.yaml
//
//	# Dump the placed boxes
//	pdflayout render --format json report.yaml
package main

import (
	"os"

	"github.com/georgepadayatti/pdflayout/cli"
)

// These variables are set at build time using ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/pdflayout
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cli.Version = version
	cli.BuildTime = buildTime

	cli.Run(os.Args[1:])
}
