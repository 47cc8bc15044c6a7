package transcache

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// Texts longer than this (in UTF-16 code units) are keyed by hash.
const maxInlineKeyLen = 1000

// CacheKey returns the persisted key for text translated to lang. Short texts
// are embedded verbatim after whitespace normalisation; long texts are
// replaced by a 32-bit rolling hash, so two long texts that collide share an
// entry.
func CacheKey(text, lang string) string {
	normalized := normalizeText(text)
	units := utf16.Encode([]rune(normalized))
	if len(units) <= maxInlineKeyLen {
		return normalized + "_" + lang
	}
	return hashUnits(units) + "_" + lang
}

func normalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// hashUnits is h = h*31 + c over UTF-16 code units with int32 wraparound,
// rendered in base 36 with a leading minus for negative values.
func hashUnits(units []uint16) string {
	var h int32
	for _, c := range units {
		h = (h << 5) - h + int32(c)
	}
	return strconv.FormatInt(int64(h), 36)
}
