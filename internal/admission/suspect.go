package admission

import "strings"

// botSignatures are user-agent substrings that mark automated clients.
var botSignatures = []string{
	"bot", "crawler", "spider", "scraper", "wget", "curl",
	"python-requests", "java", "perl", "go-http-client",
}

// allowedAgents are search-engine crawlers exempt from the signature check.
var allowedAgents = []string{"googlebot", "bingbot"}

// Suspicious classifies a request as likely automated. It returns the matched
// signal so callers can log it. The heuristic is a cheap pre-filter: it does
// not consume rate budget and never inserts into the block set.
func Suspicious(userAgent, acceptLanguage string) (bool, string) {
	ua := strings.ToLower(userAgent)
	for _, allowed := range allowedAgents {
		if strings.Contains(ua, allowed) {
			return false, ""
		}
	}
	for _, sig := range botSignatures {
		if strings.Contains(ua, sig) {
			return true, "user agent signature " + sig
		}
	}
	if acceptLanguage == "" {
		return true, "missing Accept-Language header"
	}
	return false, ""
}
