// Package lang holds the user-visible message templates, keyed per thread
// language.
package lang

import "fmt"

const DefaultLanguage = "en"

// Message keys used across the dispatcher and built-in commands.
const (
	KeyHandlerError    = "handlerError"
	KeyNSFWNotAllowed  = "nsfwNotAllowed"
	KeyCommandNotFound = "commandNotFound"
	KeySuggestion      = "commandSuggest"
	KeyPermissionDeny  = "permissionDeny"
)

var packs = map[string]map[string]string{
	"en": {
		KeyHandlerError:    "❌ %v",
		KeyNSFWNotAllowed:  "⚠️ NSFW commands are not allowed in this thread.",
		KeyCommandNotFound: "Command %q does not exist.",
		KeySuggestion:      "Command %q does not exist, did you mean %q?",
		KeyPermissionDeny:  "You do not have permission to use this command.",
	},
	"vi": {
		KeyHandlerError:    "❌ %v",
		KeyNSFWNotAllowed:  "⚠️ Lệnh NSFW không được phép trong nhóm này.",
		KeyCommandNotFound: "Lệnh %q không tồn tại.",
		KeySuggestion:      "Lệnh %q không tồn tại, có phải bạn muốn dùng %q?",
		KeyPermissionDeny:  "Bạn không có quyền sử dụng lệnh này.",
	},
}

// T renders the template for key in the given language, falling back to the
// default pack for unknown languages or keys.
func T(language, key string, args ...any) string {
	pack, ok := packs[language]
	if !ok {
		pack = packs[DefaultLanguage]
	}
	tmpl, ok := pack[key]
	if !ok {
		tmpl = packs[DefaultLanguage][key]
	}
	if tmpl == "" {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// Supported reports whether a language pack exists.
func Supported(language string) bool {
	_, ok := packs[language]
	return ok
}
