/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package year works out when an artwork was made.
package year

import (
	"regexp"
	"strconv"

	"github.com/Seednode/artquiz/internal/met"
)

// Year is a signed year, negative for BCE. Known is false when no year could
// be determined.
type Year struct {
	Value int
	Known bool
}

var Unknown = Year{}

var digits = regexp.MustCompile(`\d+`)

// Of prefers the record's begin date. The collection sends begin and end
// dates of 0 for undated works, so a 0 begin date only counts when the end
// date is set to something else; otherwise the free-text date decides.
func Of(obj met.Object) Year {
	if obj.BeginDate != nil && (*obj.BeginDate != 0 || nonZero(obj.EndDate)) {
		return Year{Value: *obj.BeginDate, Known: true}
	}
	return Parse(obj.ObjectDate)
}

func nonZero(v *int) bool {
	return v != nil && *v != 0
}

// Parse reads a year out of a free-text date such as "ca. 1750" or
// "1800-1850". The first 3 or 4 digit run wins; failing that, the first
// number of any length.
func Parse(s string) Year {
	runs := digits.FindAllStringIndex(s, -1)
	if len(runs) == 0 {
		return Unknown
	}

	pick := runs[0]
	for _, r := range runs {
		if n := r[1] - r[0]; n == 3 || n == 4 {
			pick = r
			break
		}
	}

	v, err := strconv.Atoi(s[pick[0]:pick[1]])
	if err != nil {
		return Unknown
	}
	if negative(s, pick[0]) {
		v = -v
	}

	return Year{Value: v, Known: true}
}

// A minus only counts as a sign when it opens a token, so the second half of
// "1800-1850" stays positive.
func negative(s string, start int) bool {
	if start == 0 || s[start-1] != '-' {
		return false
	}
	if start == 1 {
		return true
	}
	switch s[start-2] {
	case ' ', '\t', '(':
		return true
	}
	return false
}

// Before reports whether y is strictly earlier than cutoff. Unknown years are
// never before anything.
func (y Year) Before(cutoff int) bool {
	return y.Known && y.Value < cutoff
}

func (y Year) String() string {
	if !y.Known {
		return "unknown"
	}
	return strconv.Itoa(y.Value)
}
