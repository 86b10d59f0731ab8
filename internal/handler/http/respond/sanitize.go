package respond

import (
	"regexp"
)

var (
	// user:password@ inside a DSN or SMTP URL
	dsnPasswordPattern = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)

	bearerPattern = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-_.=]+`)

	// oauth_signature="..." and oauth_token="..." in Authorization headers
	oauthPattern = regexp.MustCompile(`(oauth_(?:signature|token|consumer_key))="[^"]*"`)

	// password=... in key/value DSNs
	kvPasswordPattern = regexp.MustCompile(`(?i)(password)=([^\s&]+)`)
)

// SanitizeError returns the error message with credentials masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = dsnPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	msg = bearerPattern.ReplaceAllString(msg, "Bearer ****")
	msg = oauthPattern.ReplaceAllString(msg, `$1="****"`)
	msg = kvPasswordPattern.ReplaceAllString(msg, "$1=****")
	return msg
}
