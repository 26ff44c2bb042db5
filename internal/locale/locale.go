// Package locale 解析请求语言，并与区块内容已有的语言做匹配。
package locale

import (
	"sort"
	"strconv"
	"strings"
)

// Normalize lower-cases a language tag and uses "-" as separator, e.g. "en_US" -> "en-us".
func Normalize(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	return strings.ReplaceAll(trimmed, "_", "-")
}

// Base returns the primary subtag, "zh-hans" -> "zh".
func Base(tag string) string {
	normalized := Normalize(tag)
	if idx := strings.IndexByte(normalized, '-'); idx >= 0 {
		return normalized[:idx]
	}
	return normalized
}

// FromAcceptLanguage lists the tags of an Accept-Language header, highest quality first.
// Wildcards and entries with q=0 are dropped.
func FromAcceptLanguage(header string) []string {
	type weighted struct {
		tag string
		q   float64
	}

	var entries []weighted
	for _, part := range strings.Split(header, ",") {
		fields := strings.Split(part, ";")
		tag := Normalize(fields[0])
		if tag == "" || tag == "*" {
			continue
		}
		q := 1.0
		for _, param := range fields[1:] {
			param = strings.TrimSpace(param)
			if !strings.HasPrefix(param, "q=") {
				continue
			}
			parsed, err := strconv.ParseFloat(strings.TrimPrefix(param, "q="), 64)
			if err != nil {
				parsed = 0
			}
			q = parsed
		}
		if q <= 0 {
			continue
		}
		entries = append(entries, weighted{tag: tag, q: q})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].q > entries[j].q })

	tags := make([]string, 0, len(entries))
	for _, entry := range entries {
		tags = append(tags, entry.tag)
	}
	return tags
}

// Match returns the entry of available equal to tag, or sharing its base language.
func Match(tag string, available []string) (string, bool) {
	normalized := Normalize(tag)
	if normalized == "" {
		return "", false
	}
	for _, candidate := range available {
		if Normalize(candidate) == normalized {
			return candidate, true
		}
	}
	base := Base(normalized)
	for _, candidate := range available {
		if Base(candidate) == base {
			return candidate, true
		}
	}
	return "", false
}

// Resolve picks the content language for a request.
// An explicit query value wins and is kept as is, so ?lang=fr shows the fallback
// content while still marking the page as French. Otherwise the Accept-Language
// header is matched against available, and fallback is used when nothing matches.
func Resolve(query, acceptLanguage, fallback string, available []string) string {
	if explicit := Normalize(query); explicit != "" {
		if matched, ok := Match(explicit, available); ok {
			return matched
		}
		return explicit
	}
	for _, tag := range FromAcceptLanguage(acceptLanguage) {
		if matched, ok := Match(tag, available); ok {
			return matched
		}
	}
	if fallback == "" {
		return "en"
	}
	return fallback
}
