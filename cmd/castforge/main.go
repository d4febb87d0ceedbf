package main

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/castforge/castforge/internal/cmd"
)

// Set via ldflags at build time.
var (
	version   = "dev"
	commit    = "HEAD"
	buildDate = "unknown"
)

var exitCodePattern = regexp.MustCompile(`\(exit code (\d+)\)$`)

func main() {
	cmd.SetVersionInfo(version, commit, buildDate)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if m := exitCodePattern.FindStringSubmatch(err.Error()); m != nil {
			if code, perr := strconv.Atoi(m[1]); perr == nil {
				os.Exit(code)
			}
		}
		os.Exit(1)
	}
}
