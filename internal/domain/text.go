package domain

import (
	"encoding/json"
	"sort"
	"strings"
)

// Gender selects a branch of a gendered text.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// TextKind tags which variant a Text holds.
type TextKind int

const (
	TextPlain TextKind = iota
	TextGendered
)

// Text is either a plain string or a male/female pair. Build it with PlainText or
// GenderedText and read it with Resolve.
type Text struct {
	Kind   TextKind
	Plain  string
	Male   string
	Female string
}

func PlainText(s string) Text {
	return Text{Kind: TextPlain, Plain: s}
}

func GenderedText(male, female string) Text {
	return Text{Kind: TextGendered, Male: male, Female: female}
}

// Resolve returns the text for the given gender. An empty gendered branch falls
// back to the other one.
func (t Text) Resolve(g Gender) string {
	if t.Kind == TextPlain {
		return t.Plain
	}
	male, female := t.Male, t.Female
	if g == GenderFemale {
		if female != "" {
			return female
		}
		return male
	}
	if male != "" {
		return male
	}
	return female
}

// IsEmpty reports whether every branch is blank.
func (t Text) IsEmpty() bool {
	if t.Kind == TextPlain {
		return strings.TrimSpace(t.Plain) == ""
	}
	return strings.TrimSpace(t.Male) == "" && strings.TrimSpace(t.Female) == ""
}

// MarshalJSON writes a plain text as a JSON string and a gendered text as
// {"male": ..., "female": ...}.
func (t Text) MarshalJSON() ([]byte, error) {
	if t.Kind == TextPlain {
		return json.Marshal(t.Plain)
	}
	return json.Marshal(map[string]string{"male": t.Male, "female": t.Female})
}

// CanonicalLanguage is preferred when a localized object has to collapse to one string.
const CanonicalLanguage = "en"

// LocalizedText maps a language code to text.
type LocalizedText map[string]string

// Best returns the canonical language, then the first other populated language in
// key order, then "".
func (l LocalizedText) Best() string {
	if s := strings.TrimSpace(l[CanonicalLanguage]); s != "" {
		return l[CanonicalLanguage]
	}
	for _, lang := range l.Languages() {
		return l[lang]
	}
	return ""
}

// Languages lists languages with non-blank text, sorted.
func (l LocalizedText) Languages() []string {
	langs := make([]string, 0, len(l))
	for lang, s := range l {
		if strings.TrimSpace(s) != "" {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	return langs
}
