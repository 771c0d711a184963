// Package buildinfo exposes link-time build metadata.
//
// Set with:
//
//	go build -ldflags "-X github.com/dmitrijs2005/mymind/internal/buildinfo.Version=v1.0.0 \
//	  -X github.com/dmitrijs2005/mymind/internal/buildinfo.Date=$(date -u +%F)"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	Version = "N/A"
	Date    = "N/A"
	Commit  = "N/A"
)

// PrintBuildData writes the build metadata to w, one field per line.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", Version)
	fmt.Fprintf(w, "Build date: %s\n", Date)
	fmt.Fprintf(w, "Build commit: %s\n", Commit)
}
