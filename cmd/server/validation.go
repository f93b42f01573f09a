package server

import "strings"

var allowedEmailDomains = map[string]struct{}{
	"tezu.ac.in":    {},
	"tezu.ernet.in": {},
}

// emailDomain returns everything after the first "@", or "" when there is
// none. With more than one "@" the result still contains one and can never
// match an allowed domain.
func emailDomain(email string) string {
	_, domain, found := strings.Cut(email, "@")
	if !found {
		return ""
	}
	return domain
}

func isAllowedEmailDomain(email string) bool {
	_, ok := allowedEmailDomains[emailDomain(email)]
	return ok
}
