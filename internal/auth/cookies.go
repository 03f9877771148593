package auth

import (
	"net/http"
	"time"
)

// TokenCookieName is the cookie used as an alternative transport for the
// bearer token. The token string itself is the artifact; cookie vs header
// is purely a delivery concern.
const TokenCookieName = "portal_token"

// SetTokenCookie attaches the issued token as an HttpOnly cookie.
// Secure is enabled outside development so local HTTP testing still works.
func SetTokenCookie(w http.ResponseWriter, token string, expiry time.Duration, env string) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(expiry.Seconds()),
		HttpOnly: true,
		Secure:   env != "development",
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearTokenCookie expires the auth cookie, used on logout.
func ClearTokenCookie(w http.ResponseWriter, env string) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   env != "development",
		SameSite: http.SameSiteStrictMode,
	})
}
