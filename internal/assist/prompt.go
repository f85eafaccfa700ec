package assist

import (
	"fmt"
	"strings"
)

// languageKeys are the marker keys the assistant is told to use.
var languageKeys = []struct{ name, key string }{
	{"C", "c"},
	{"C++", "cpp"},
	{"C#", "csharp"},
	{"Java", "java"},
	{"JavaScript", "javascript"},
	{"Python", "python"},
	{"PHP", "php"},
	{"Ruby", "ruby"},
	{"Go", "go"},
	{"Lua", "lua"},
	{"Swift", "swift"},
	{"TypeScript", "typescript"},
	{"Pascal", "pascal"},
}

// SystemPrompt instructs the assistant on the reply format and embeds the
// source being worked on.
func SystemPrompt(source string) string {
	var b strings.Builder
	b.WriteString("You are an expert coding assistant skilled in both analyzing and improving code. ")
	b.WriteString("Provide detailed explanations and help users with all programming questions. ")
	b.WriteString("When asked to modify code, always return the complete updated code enclosed within triple backticks (```), ")
	b.WriteString("and do not include triple backticks elsewhere in your response. ")
	b.WriteString("If you decide that the code should be changed to a different programming language, ")
	b.WriteString("prepend your response with a language change marker formatted exactly as follows: @@@<language_key>@@@. ")
	b.WriteString("Use one of the following keys for the corresponding languages:\n\n")
	for _, l := range languageKeys {
		fmt.Fprintf(&b, "  - %s: %s\n", l.name, l.key)
	}
	b.WriteString("\nOnly include the marker when a language change is desired. ")
	b.WriteString("Do not use triple backticks for any text other than complete code blocks. ")
	b.WriteString("The current source code is provided as context:\n\n")
	b.WriteString(source)
	return b.String()
}

// UserPrompt wraps a request with the code it applies to.
func UserPrompt(source, query string) string {
	return "I'm working on the following code:\n\n" + source +
		"\n\nPlease make the following changes:\n" + query
}

const lineCompletionPrompt = "You are a code auto-completion assistant. " +
	"Your task is to complete the given incomplete line of code. " +
	"Respond ONLY with the complete code enclosed within triple backticks (```), and nothing else."

func lineCompletionRequest(line string) string {
	return "Complete the following line of code:\n" + line
}

// LineComplete reports whether line looks finished: blank, or ending with
// a semicolon or closing brace.
func LineComplete(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasSuffix(trimmed, ";") || strings.HasSuffix(trimmed, "}")
}
