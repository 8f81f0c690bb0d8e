package utils

// Minimal server-side i18n for fixed keys.
// UI strings should live in the frontend; server provides only essentials.

var translations = map[string]map[string]string{
	"en": {
		"health.ok":        "ok",
		"fit.productive":   "productive for measurement",
		"fit.underfit":     "underfit: more noise than the model predicts",
		"fit.overfit":      "overfit: too predictable",
		"fit.undetermined": "not enough data",
		"analysis.capped":  "estimation stopped at the iteration limit",
	},
	"ru": {
		"health.ok":        "ок",
		"fit.productive":   "пригодно для измерения",
		"fit.underfit":     "недостаточное согласие: шум выше ожидаемого",
		"fit.overfit":      "избыточное согласие: слишком предсказуемо",
		"fit.undetermined": "недостаточно данных",
		"analysis.capped":  "оценивание остановлено по лимиту итераций",
	},
}

// T returns the translated string for key in locale; falls back to English.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := translations["en"]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}
