package config

import "log/slog"

const (
	LangEN = "en"
	LangES = "es"
)

func IsSupportedLanguage(lang string) bool {
	return lang == LangEN || lang == LangES
}

func GetLocaleConfig(lang string) string {
	if IsSupportedLanguage(lang) {
		return lang
	}
	slog.Warn("unsupported language, falling back to english", "language", lang)
	return LangEN
}
