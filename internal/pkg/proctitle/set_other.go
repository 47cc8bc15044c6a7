//go:build !linux

package proctitle

import (
	"os"
	"strings"
)

// Set only rewrites argv[0] outside Linux.
func Set(title string) error {
	title = strings.TrimSpace(title)
	if title != "" && len(os.Args) > 0 {
		os.Args[0] = title
	}
	return nil
}
