package configssession

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2/middleware/session"
)

var store *session.Store

// SetupSession creates (once) and returns the cookie session store used by the
// dashboard and auth routes.
func SetupSession() *session.Store {
	if store != nil {
		return store
	}
	store = session.New(session.Config{
		Expiration:     12 * time.Hour,
		KeyLookup:      "cookie:kiliheights_session",
		CookieHTTPOnly: true,
		CookieSecure:   os.Getenv("APP_ENV") == "production",
		CookieSameSite: "Lax",
	})
	return store
}
