package parser

import (
	"regexp"
	"strings"
)

// The HTML parser lowercases tag and attribute names. Original casing
// matters for component references (<Header/>) and child-component prop
// names, so it is recovered by searching the raw source, the same
// best-effort technique the rest of the offset estimation uses.

// findOriginalTag recovers the original casing of a lowercased tag name,
// searching at or after from.
func findOriginalTag(source, lowerTag string, from int) string {
	re := regexp.MustCompile(`(?i)<(` + regexp.QuoteMeta(lowerTag) + `)[\s/>]`)
	if m := re.FindStringSubmatch(source[from:]); m != nil {
		return m[1]
	}
	if m := re.FindStringSubmatch(source); m != nil {
		return m[1]
	}
	return lowerTag
}

// findOriginalAttr recovers the original casing of a lowercased attribute
// name within the element tag starting at elemStart.
func findOriginalAttr(source string, elemStart int, lowerName string) string {
	end := strings.IndexByte(source[elemStart:], '>')
	if end < 0 {
		return lowerName
	}
	tagText := source[elemStart : elemStart+end]
	re := regexp.MustCompile(`(?i)[\s"'](` + regexp.QuoteMeta(lowerName) + `)\s*=`)
	if m := re.FindStringSubmatch(tagText); m != nil {
		return m[1]
	}
	return lowerName
}
