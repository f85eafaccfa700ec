// Package language holds the static language tables shared by the backend
// catalog, the assistant and the session: flavors, editor modes, file
// extensions and the default program.
package language

import "strings"

// Flavor names a Judge0 deployment variant with its own endpoints and catalog.
type Flavor string

const (
	CE      Flavor = "CE"
	ExtraCE Flavor = "EXTRA_CE"
)

// Flavors lists the registered flavors in catalog load order.
var Flavors = []Flavor{CE, ExtraCE}

// Valid reports whether f is one of the registered flavors.
func (f Flavor) Valid() bool {
	return f == CE || f == ExtraCE
}

// Entry is one language of a flavor's catalog.
type Entry struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Flavor     Flavor `json:"flavor"`
	SourceFile string `json:"source_file,omitempty"`
	Mode       string `json:"mode"`
}

// Selection identifies the active language.
type Selection struct {
	Flavor     Flavor `json:"flavor"`
	LanguageID int    `json:"language_id"`
}

const (
	// RawSourceLanguageID is sent without base64 packing of source_code.
	RawSourceLanguageID = 44
	// PlainTextLanguageID is the fallback for unknown file extensions.
	PlainTextLanguageID = 43
	// SQLiteLanguageID requires the additional_files asset.
	SQLiteLanguageID = 82
	// HiddenLanguageID is never listed in the merged catalog.
	HiddenLanguageID = 89
	// DefaultLanguageID is C++ (GCC 14.1.0) on CE.
	DefaultLanguageID = 105

	PlainTextMode = "plaintext"
)

type modeRule struct {
	prefix string
	mode   string
}

// Order matters: the first matching prefix wins.
var modeRules = []modeRule{
	{"Bash", "shell"},
	{"C", "c"},
	{"C3", "c"},
	{"C#", "csharp"},
	{"C++", "cpp"},
	{"Clojure", "clojure"},
	{"F#", "fsharp"},
	{"Go", "go"},
	{"Java", "java"},
	{"JavaScript", "javascript"},
	{"Kotlin", "kotlin"},
	{"Objective-C", "objective-c"},
	{"Pascal", "pascal"},
	{"Perl", "perl"},
	{"PHP", "php"},
	{"Python", "python"},
	{"R", "r"},
	{"Ruby", "ruby"},
	{"SQL", "sql"},
	{"Swift", "swift"},
	{"TypeScript", "typescript"},
	{"Visual Basic", "vb"},
}

// EditorMode maps a language name (or an assistant language key) to an
// editor mode by case-insensitive prefix match.
func EditorMode(name string) string {
	lower := strings.ToLower(name)
	for _, r := range modeRules {
		if strings.HasPrefix(lower, strings.ToLower(r.prefix)) {
			return r.mode
		}
	}
	return PlainTextMode
}

var extensions = map[string]Selection{
	"asm":   {CE, 45},
	"c":     {CE, 103},
	"cpp":   {CE, 105},
	"cs":    {ExtraCE, 29},
	"go":    {CE, 95},
	"java":  {CE, 91},
	"js":    {CE, 102},
	"lua":   {CE, 64},
	"pas":   {CE, 67},
	"php":   {CE, 98},
	"py":    {ExtraCE, 25},
	"r":     {CE, 99},
	"rb":    {CE, 72},
	"rs":    {CE, 73},
	"scala": {CE, 81},
	"sh":    {CE, 46},
	"swift": {CE, 83},
	"ts":    {CE, 101},
	"txt":   {CE, PlainTextLanguageID},
}

// ForExtension returns the language used for files with the given extension
// (without the dot). Unknown extensions map to Plain Text on CE.
func ForExtension(ext string) Selection {
	if sel, ok := extensions[strings.ToLower(ext)]; ok {
		return sel
	}
	return Selection{Flavor: CE, LanguageID: PlainTextLanguageID}
}

// ForFileName is ForExtension applied to the part after the last dot.
func ForFileName(name string) Selection {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ForExtension(name)
	}
	return ForExtension(name[i+1:])
}
