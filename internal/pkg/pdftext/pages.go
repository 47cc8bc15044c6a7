package pdftext

import (
	"fmt"
	"strconv"
	"strings"
)

// PageSet is a set of 1-based page numbers. A nil PageSet means every page.
type PageSet map[int]struct{}

// Contains reports whether page n is selected.
func (s PageSet) Contains(n int) bool {
	if s == nil {
		return true
	}
	_, ok := s[n]
	return ok
}

const maxPageSpan = 10000

// ParsePageSelection parses "all", "3", "3-7" or "1,3,5-6".
// Blank input and "all" return a nil set.
func ParsePageSelection(sel string) (PageSet, error) {
	sel = strings.TrimSpace(sel)
	if sel == "" || strings.EqualFold(sel, "all") {
		return nil, nil
	}

	set := PageSet{}
	for _, part := range strings.Split(sel, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("invalid page selection %q", sel)
		}
		lo, hi, isRange := strings.Cut(part, "-")
		first, err := parsePage(lo)
		if err != nil {
			return nil, fmt.Errorf("invalid page selection %q: %w", sel, err)
		}
		last := first
		if isRange {
			if last, err = parsePage(hi); err != nil {
				return nil, fmt.Errorf("invalid page selection %q: %w", sel, err)
			}
		}
		if last < first {
			return nil, fmt.Errorf("invalid page selection %q: range %d-%d is reversed", sel, first, last)
		}
		if last-first > maxPageSpan {
			return nil, fmt.Errorf("invalid page selection %q: range too large", sel)
		}
		for p := first; p <= last; p++ {
			set[p] = struct{}{}
		}
	}
	return set, nil
}

func parsePage(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q is not a page number", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("page %d is out of range", n)
	}
	return n, nil
}
