// Package i18n serves localized user-facing error messages. The catalog
// is deliberately tiny: stable error codes map to short strings in the
// supported languages, negotiated from Accept-Language.
package i18n

import (
	"golang.org/x/text/language"

	"blocksmith/internal/domain"
)

var supported = []language.Tag{
	language.English,
	language.Indonesian,
}

var matcher = language.NewMatcher(supported)

// Match negotiates the best supported locale from an Accept-Language
// header value. Empty or unparseable input falls back to English.
func Match(acceptLanguage string) string {
	if acceptLanguage == "" {
		return "en"
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return "en"
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return "en"
	}
	base, _ := supported[idx].Base()
	return base.String()
}

var catalog = map[string]map[string]string{
	"en": {
		domain.CodeNoAPIKey:         "OpenAI API key is not configured. Please configure it in the settings.",
		domain.CodeConnectionFailed: "Failed to connect to the OpenAI API.",
		domain.CodeRateLimited:      "The OpenAI API rate limit was reached. Please wait a moment and try again.",
		domain.CodeQuotaExceeded:    "Your OpenAI quota or billing limit was exceeded. Check your OpenAI account.",
		domain.CodeModelUnavailable: "The selected model is not available for your API key.",
		domain.CodeProviderError:    "The OpenAI API returned an error.",
		domain.CodeEmptyResponse:    "The model returned an empty response.",
		domain.CodeBadRequest:       "The request is invalid.",
		domain.CodeUnauthorized:     "You are not allowed to generate content.",
		domain.CodeNotFound:         "The requested job was not found.",
	},
	"id": {
		domain.CodeNoAPIKey:         "Kunci API OpenAI belum dikonfigurasi. Silakan atur di pengaturan.",
		domain.CodeConnectionFailed: "Gagal terhubung ke API OpenAI.",
		domain.CodeRateLimited:      "Batas laju API OpenAI tercapai. Tunggu sebentar lalu coba lagi.",
		domain.CodeQuotaExceeded:    "Kuota atau batas penagihan OpenAI Anda terlampaui. Periksa akun OpenAI Anda.",
		domain.CodeModelUnavailable: "Model yang dipilih tidak tersedia untuk kunci API Anda.",
		domain.CodeProviderError:    "API OpenAI mengembalikan kesalahan.",
		domain.CodeEmptyResponse:    "Model mengembalikan respons kosong.",
		domain.CodeBadRequest:       "Permintaan tidak valid.",
		domain.CodeUnauthorized:     "Anda tidak diizinkan membuat konten.",
		domain.CodeNotFound:         "Pekerjaan yang diminta tidak ditemukan.",
	},
}

// Message returns the localized string for an error code, preferring the
// detail text when the catalog has no entry.
func Message(locale, code, detail string) string {
	if messages, ok := catalog[locale]; ok {
		if msg, ok := messages[code]; ok {
			return msg
		}
	}
	if messages, ok := catalog["en"]; ok {
		if msg, ok := messages[code]; ok {
			return msg
		}
	}
	return detail
}
