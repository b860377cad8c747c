package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var bundle *i18n.Bundle

// Quiz generation requests carry human-readable language names, so they are
// resolved to BCP 47 tags before hitting the bundle. Unknown names fall
// through to language.Parse, which also accepts tags like "pt-BR".
var languageTags = map[string]string{
	"english": "en",
	"spanish": "es",
	"french":  "fr",
	"german":  "de",
	"russian": "ru",
}

const markerMessageID = "select_all_marker"

func init() {
	if err := load(); err != nil {
		panic(fmt.Sprintf("i18n: %v", err))
	}
}

func load() error {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return fmt.Errorf("read locale file %s: %w", e.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return fmt.Errorf("parse locale file %s: %w", e.Name(), err)
		}
	}
	return nil
}

// resolveTag maps a language name or tag to the bundle lookup key.
func resolveTag(lang string) string {
	key := strings.ToLower(strings.TrimSpace(lang))
	if tag, ok := languageTags[key]; ok {
		return tag
	}
	if _, err := language.Parse(key); err == nil {
		return key
	}
	return "en"
}

// SelectAllMarker returns the localized "select all that apply" phrase that
// multiple-answer question text must carry. Languages without a translation
// get the English phrase.
func SelectAllMarker(lang string) string {
	loc := i18n.NewLocalizer(bundle, resolveTag(lang), "en")
	s, err := loc.Localize(&i18n.LocalizeConfig{MessageID: markerMessageID})
	if err != nil {
		return "select all that apply"
	}
	return s
}

// MarkerCandidates returns the lowercase marker phrases accepted during
// validation for the given language. The English phrase is always included
// because models sometimes keep the marker untranslated.
func MarkerCandidates(lang string) []string {
	localized := strings.ToLower(SelectAllMarker(lang))
	english := strings.ToLower(SelectAllMarker("en"))
	if localized == english {
		return []string{english}
	}
	return []string{localized, english}
}
