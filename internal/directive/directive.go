// Package directive pulls structured instructions out of free-form assistant
// replies: a replacement code block and a language-change marker.
package directive

import (
	"regexp"
	"strings"

	"github.com/gsarma/judgepad/internal/language"
)

var (
	codeBlockRe = regexp.MustCompile("(?s)```(?:\\w*\\n)?(.*?)```")
	markerRe    = regexp.MustCompile(`@@@([\p{L}\p{N}\s+#]+)@@@`)
)

// Result is an assistant reply split into its parts. Code and LanguageKey
// are empty when the reply carried no such directive.
type Result struct {
	CleanedText string `json:"cleaned_text"`
	Code        string `json:"code,omitempty"`
	LanguageKey string `json:"language_key,omitempty"`
}

// HasCode reports whether a replacement code block was found.
func (r Result) HasCode() bool { return r.Code != "" }

// HasLanguage reports whether a language marker was found.
func (r Result) HasLanguage() bool { return r.LanguageKey != "" }

// Extract scans text for the first fenced code block and then, in what is
// left, the first @@@key@@@ marker. A directive whose content is blank is
// ignored and left in the text. CleanedText is trimmed.
func Extract(text string) Result {
	var res Result

	if loc := codeBlockRe.FindStringSubmatchIndex(text); loc != nil {
		inner := strings.TrimSpace(text[loc[2]:loc[3]])
		if inner != "" {
			res.Code = inner
			text = strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
		}
	}

	if loc := markerRe.FindStringSubmatchIndex(text); loc != nil {
		key := strings.TrimSpace(text[loc[2]:loc[3]])
		if key != "" {
			res.LanguageKey = key
			text = text[:loc[0]] + text[loc[1]:]
		}
	}

	res.CleanedText = strings.TrimSpace(text)
	return res
}

// FirstCodeBlock returns the trimmed content of the first fenced block, or
// "" when there is none.
func FirstCodeBlock(text string) string {
	m := codeBlockRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Resolve maps a language key to an editor mode and picks the first catalog
// entry with that mode. entry is nil when the catalog has no such mode.
func Resolve(key string, catalog []language.Entry) (mode string, entry *language.Entry) {
	mode = language.EditorMode(key)
	for i := range catalog {
		if strings.EqualFold(catalog[i].Mode, mode) {
			return mode, &catalog[i]
		}
	}
	return mode, nil
}
