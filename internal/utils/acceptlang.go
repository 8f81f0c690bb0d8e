package utils

import (
	"sort"
	"strconv"
	"strings"
)

type langPref struct {
	lang string
	q    float64
}

// DetermineLocale picks the locale for a request: an explicit query value
// wins, then the best Accept-Language entry, then def. Regional tags match
// their base language (ru-RU -> ru). Entries with q=0 are refused.
func DetermineLocale(queryLang, acceptLang string, supported []string, def string) string {
	sup := map[string]struct{}{}
	for _, s := range supported {
		sup[strings.ToLower(s)] = struct{}{}
	}
	pick := func(lang string) (string, bool) {
		l := strings.ToLower(strings.TrimSpace(lang))
		if l == "" {
			return "", false
		}
		if _, ok := sup[l]; ok {
			return l, true
		}
		if i := strings.IndexAny(l, "-_"); i > 0 {
			if _, ok := sup[l[:i]]; ok {
				return l[:i], true
			}
		}
		return "", false
	}

	if v, ok := pick(queryLang); ok {
		return v
	}
	var prefs []langPref
	for _, p := range parseAcceptLanguage(acceptLang) {
		if l, ok := pick(p.lang); ok && p.q > 0 {
			prefs = append(prefs, langPref{lang: l, q: p.q})
		}
	}
	if len(prefs) > 0 {
		sort.SliceStable(prefs, func(i, j int) bool { return prefs[i].q > prefs[j].q })
		return prefs[0].lang
	}
	if v, ok := pick(def); ok {
		return v
	}
	if len(supported) > 0 {
		return strings.ToLower(supported[0])
	}
	return "en"
}

// parseAcceptLanguage splits a header like "ru-RU,ru;q=0.9,en;q=0.8" in
// header order. Malformed q values count as 1.
func parseAcceptLanguage(header string) []langPref {
	var out []langPref
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lang, params, _ := strings.Cut(part, ";")
		q := 1.0
		for _, param := range strings.Split(params, ";") {
			k, v, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || strings.TrimSpace(k) != "q" {
				continue
			}
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f >= 0 && f <= 1 {
				q = f
			}
		}
		out = append(out, langPref{lang: strings.TrimSpace(lang), q: q})
	}
	return out
}
