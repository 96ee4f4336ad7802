package types

import (
	"encoding/json"
	"sort"
)

// Language codes used by templates and form links.
const (
	LANG_PT_BR  = "pt-BR"
	LANG_EN     = "en"
	LANG_ES_419 = "es-419"

	DefaultLanguage = LANG_PT_BR
)

// LocalizedText maps language codes to display strings. Template
// configuration may also carry a plain string instead of a mapping; the
// JSON decoder accepts both and stores the plain form under an empty key.
type LocalizedText map[string]string

func (lt *LocalizedText) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*lt = LocalizedText{"": asString}
		return nil
	}

	var asMap map[string]string
	if err := json.Unmarshal(data, &asMap); err != nil {
		return err
	}
	*lt = LocalizedText(asMap)
	return nil
}

// Resolve picks the text for the requested language, falling back through
// pt-BR, en, es-419, the plain-string form and finally the first available
// entry (in sorted key order, so the result is deterministic).
func (lt LocalizedText) Resolve(lang string) string {
	if len(lt) == 0 {
		return ""
	}
	for _, code := range []string{lang, LANG_PT_BR, LANG_EN, LANG_ES_419, ""} {
		if code == "" && lang != "" {
			// plain-string form
			if v, ok := lt[""]; ok && v != "" {
				return v
			}
			continue
		}
		if v, ok := lt[code]; ok && v != "" {
			return v
		}
	}

	keys := make([]string, 0, len(lt))
	for k := range lt {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if lt[k] != "" {
			return lt[k]
		}
	}
	return ""
}

// ResolveOr behaves like Resolve but returns the given key when nothing
// resolves, so that a misconfigured label still shows something stable.
func (lt LocalizedText) ResolveOr(lang string, fallbackKey string) string {
	if v := lt.Resolve(lang); v != "" {
		return v
	}
	return fallbackKey
}
