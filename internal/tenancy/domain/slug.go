package domain

import (
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

const fallbackSlug = "client"

// Slugify lower-cases value, transliterates it to ASCII and joins the
// remaining alphanumeric runs with single hyphens.
func Slugify(value string) string {
	s := slug.Make(value)
	s = strings.ReplaceAll(s, "_", "-")
	var b strings.Builder
	prevHyphen := false
	for _, r := range s {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			if !prevHyphen {
				b.WriteByte('-')
			}
			prevHyphen = true
			continue
		}
		b.WriteRune(r)
		prevHyphen = false
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return fallbackSlug
	}
	return out
}

// UniqueSlug returns base when free, otherwise base-2, base-3 and so on.
func UniqueSlug(base string, taken map[string]struct{}) string {
	if _, ok := taken[base]; !ok {
		return base
	}
	for i := 2; ; i++ {
		candidate := base + "-" + strconv.Itoa(i)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}
