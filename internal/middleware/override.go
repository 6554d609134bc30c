package middleware

import (
	"net/http"
	"strings"
)

const methodOverrideHeader = "X-HTTP-Method"

// MethodOverride lets clients that can only send GET and POST tunnel other
// verbs through the X-HTTP-Method header.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m := strings.ToUpper(strings.TrimSpace(r.Header.Get(methodOverrideHeader))); m != "" {
			r.Method = m
		}
		next.ServeHTTP(w, r)
	})
}
