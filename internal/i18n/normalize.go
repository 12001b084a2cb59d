// Package i18n normalizes the backend's heterogeneous translation payloads
// into the canonical domain.Translations map. Normalization happens once at
// the load boundary; it is deterministic and never drops a language.
package i18n

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"quizreel-web/internal/domain"
)

// legacyLanguageNames maps non-ISO language-name keys that still occur in
// older backend rows to ISO 639-1 codes.
var legacyLanguageNames = map[string]string{
	"english": "en",
	"turkish": "tr",
	"german":  "de",
	"french":  "fr",
	"spanish": "es",
	"russian": "ru",
	"arabic":  "ar",
}

// CanonicalLang lowercases a language key and resolves legacy full-name
// spellings. Unknown keys pass through lowercased rather than being dropped.
func CanonicalLang(key string) string {
	lower := strings.ToLower(strings.TrimSpace(key))
	if code, ok := legacyLanguageNames[lower]; ok {
		return code
	}
	return lower
}

// entry is the array-shaped translation row some endpoints return.
type entry struct {
	Language    string `json:"language"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Text        string `json:"text"`
}

// Normalize converts a raw translations payload into domain.Translations.
// The backend serves two shapes: a map keyed by language, or an array of
// {language, title|description|text} rows. Null and absent payloads yield an
// empty map; anything else is a malformed payload.
func Normalize(raw json.RawMessage) (domain.Translations, error) {
	out := domain.Translations{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}

	trimmed := strings.TrimLeft(string(raw), " \t\r\n")
	switch {
	case strings.HasPrefix(trimmed, "{"):
		var keyed map[string]domain.Translation
		if err := json.Unmarshal(raw, &keyed); err != nil {
			return nil, errors.Wrap(err, "decode keyed translations")
		}
		for key, tr := range keyed {
			out[CanonicalLang(key)] = tr
		}
	case strings.HasPrefix(trimmed, "["):
		var rows []entry
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, errors.Wrap(err, "decode translation rows")
		}
		for _, row := range rows {
			if row.Language == "" {
				continue
			}
			out[CanonicalLang(row.Language)] = domain.Translation{
				Title:       row.Title,
				Description: row.Description,
				Text:        row.Text,
			}
		}
	default:
		return nil, errors.Errorf("unsupported translations shape: %.20s", trimmed)
	}
	return out, nil
}
