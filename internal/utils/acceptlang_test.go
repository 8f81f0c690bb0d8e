package utils

import "testing"

func TestDetermineLocale_QueryParamWins(t *testing.T) {
	got := DetermineLocale("ru-RU", "en-US,en;q=0.9,ru;q=0.8", []string{"en", "ru"}, "en")
	if got != "ru" {
		t.Fatalf("want ru, got %s", got)
	}
}

func TestDetermineLocale_AcceptLanguageOrder(t *testing.T) {
	got := DetermineLocale("", "en-US,en;q=0.9,ru;q=0.8", []string{"en", "ru"}, "en")
	if got != "en" {
		t.Fatalf("want en, got %s", got)
	}
}

func TestDetermineLocale_AcceptLanguagePrefersHigherQ(t *testing.T) {
	got := DetermineLocale("", "ru;q=0.9,en;q=0.8", []string{"en", "ru"}, "en")
	if got != "ru" {
		t.Fatalf("want ru, got %s", got)
	}
}

func TestDetermineLocale_DefaultFallback(t *testing.T) {
	got := DetermineLocale("", "fr-FR,es;q=0.9", []string{"en", "ru"}, "en")
	if got != "en" {
		t.Fatalf("want en fallback, got %s", got)
	}
}

func TestDetermineLocale_ZeroQualityRefused(t *testing.T) {
	got := DetermineLocale("", "ru;q=0,en;q=0.5", []string{"en", "ru"}, "ru")
	if got != "en" {
		t.Fatalf("want en, got %s", got)
	}
}

func TestParseAcceptLanguage(t *testing.T) {
	prefs := parseAcceptLanguage("ru-RU, ru;q=0.9 ,en;q=bad,,de;q=0.25")
	if len(prefs) != 4 {
		t.Fatalf("want 4 entries, got %d", len(prefs))
	}
	if prefs[1].lang != "ru" || prefs[1].q != 0.9 {
		t.Fatalf("unexpected second entry %+v", prefs[1])
	}
	if prefs[2].q != 1 || prefs[3].q != 0.25 {
		t.Fatalf("unexpected q values %+v", prefs)
	}
}
