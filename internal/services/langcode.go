package services

import "strings"

// DefaultOriginLang is the language posts are authored in. All other
// supported languages are display languages served via translation.
const DefaultOriginLang = "ro"

// supportedLangs is the closed set of language codes the blog serves,
// in lowercase API-boundary form.
var supportedLangs = map[string]string{
	"de": "DE",
	"en": "EN",
	"ro": "RO",
	"ru": "RU",
}

// NormalizeLang lowercases a language code into API-boundary form.
func NormalizeLang(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// ToUpstreamLang converts an API-boundary language code into the upstream
// provider's uppercase wire format. Unknown codes are passed through
// uppercased rather than rejected, matching the provider's own leniency.
func ToUpstreamLang(code string) string {
	if wire, ok := supportedLangs[NormalizeLang(code)]; ok {
		return wire
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsSupportedLang reports whether code is in the supported language set.
func IsSupportedLang(code string) bool {
	_, ok := supportedLangs[NormalizeLang(code)]
	return ok
}

// SupportedLangs returns the supported language codes in lowercase form.
func SupportedLangs() []string {
	codes := make([]string, 0, len(supportedLangs))
	for code := range supportedLangs {
		codes = append(codes, code)
	}
	return codes
}
