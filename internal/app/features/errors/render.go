// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/condopay/condopay/internal/app/system/authprovider"
	"github.com/dalemusser/waffle/pantry/httpnav"
)

// RenderUnauthorized reports that sign-in is required.
// If backURL is empty, it defaults to /.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	if backURL == "" {
		backURL = "/"
	}
	write(w, r, http.StatusUnauthorized, "Please sign in to continue.", backURL)
}

// RenderForbidden reports an access error with msg.
// If backURL is empty, it resolves a safe back URL with a default fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	write(w, r, http.StatusForbidden, msg, backURL)
}

// AuthStatus maps an auth provider failure to an HTTP status.
func AuthStatus(err error) int {
	switch {
	case authprovider.IsCode(err, authprovider.CodeInvalidCredential),
		authprovider.IsCode(err, authprovider.CodeSessionExpired):
		return http.StatusUnauthorized
	case authprovider.IsCode(err, authprovider.CodeTooManyRequests):
		return http.StatusTooManyRequests
	case authprovider.IsCode(err, authprovider.CodeEmailInUse):
		return http.StatusConflict
	case authprovider.IsCode(err, authprovider.CodeInvalidEmail),
		authprovider.IsCode(err, authprovider.CodeWeakPassword):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
