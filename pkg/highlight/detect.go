package highlight

import (
	"bytes"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// langText is returned when no language can be determined.
const langText = "text"

// detectCandidates limits the classifier to languages that show up in posts.
var detectCandidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript", "Ruby", "Rust",
	"Java", "C", "C++", "Zig", "SQL", "JSON", "YAML", "HTML", "CSS",
}

// Detect guesses the language of an unlabeled code block. It returns a
// lowercase fence name such as "go" or "bash", or "text" when unsure.
func Detect(code []byte) string {
	if len(bytes.TrimSpace(code)) == 0 {
		return langText
	}
	if lang, safe := enry.GetLanguageByShebang(code); safe {
		return fenceName(lang)
	}
	if lang := detectByPattern(code); lang != "" {
		return lang
	}
	if lang, safe := enry.GetLanguageByClassifier(code, detectCandidates); safe && lang != "" {
		return fenceName(lang)
	}
	return langText
}

// patternRule recognizes a language from highly indicative snippets.
type patternRule struct {
	lang  string
	match func(code, trimmed []byte) bool
}

var patternRules = []patternRule{
	{"go", func(_, trimmed []byte) bool {
		return bytes.HasPrefix(trimmed, []byte("package "))
	}},
	{"python", func(code, _ []byte) bool {
		return bytes.Contains(code, []byte("def ")) && bytes.Contains(code, []byte("):")) ||
			bytes.Contains(code, []byte("__name__"))
	}},
	{"zig", func(code, _ []byte) bool {
		return bytes.Contains(code, []byte("@import(")) || bytes.Contains(code, []byte("pub fn "))
	}},
	{"rust", func(code, _ []byte) bool {
		return bytes.Contains(code, []byte("fn main()")) || bytes.Contains(code, []byte("let mut "))
	}},
	{"html", func(_, trimmed []byte) bool {
		lower := bytes.ToLower(trimmed)
		return bytes.HasPrefix(lower, []byte("<!doctype html")) || bytes.HasPrefix(lower, []byte("<html"))
	}},
	{"json", func(_, trimmed []byte) bool {
		return (bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("["))) &&
			bytes.Contains(trimmed, []byte(`"`)) && !bytes.Contains(trimmed, []byte(";"))
	}},
	{"sql", func(_, trimmed []byte) bool {
		upper := strings.ToUpper(string(trimmed))
		for _, kw := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE "} {
			if strings.HasPrefix(upper, kw) {
				return true
			}
		}
		return false
	}},
}

func detectByPattern(code []byte) string {
	trimmed := bytes.TrimSpace(code)
	for _, rule := range patternRules {
		if rule.match(code, trimmed) {
			return rule.lang
		}
	}
	return ""
}

// fenceName converts go-enry language names to fence tags.
func fenceName(lang string) string {
	if lang == "Shell" {
		return "bash"
	}
	return strings.ToLower(lang)
}
