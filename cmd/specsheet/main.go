// Command specsheet generates fleet graphics spec sheets.
//
// Usage:
//
//	specsheet <command> [flags]
//
// Commands:
//
//	generate  Render the spec sheet PDF
//	plan      Print the classification and pagination without rendering
//	verify    Validate generated PDFs
//	version   Show version information
//
// Examples:
//
//	# Sheet from a folder of exported artboards
//	specsheet generate --dir exports/ --customer "Acme Concrete" --vehicle MIXER
//
//	# Sheet from a job manifest, asking for the details
//	specsheet generate --job job.yaml --prompt --preview preview.png
//
//	# Check the result
//	specsheet verify 2025-01-02__Acme_Concrete__MIXER__Spec_Sheet.pdf
package main

import (
	"os"

	"github.com/buffalographics/fleet-spec-sheet/cli"
)

// These variables are set at build time using ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/specsheet
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cli.Version = version
	cli.BuildTime = buildTime

	cli.Run(os.Args)
}
