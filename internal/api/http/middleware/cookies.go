package middleware

import (
	"net/http"
	"time"
)

// Cookies параметры cookie SESSION и GLOBAL
type Cookies struct {
	SessionName string
	GlobalName  string
	Secure      bool
	Domain      string
	SessionTTL  time.Duration
}

// SetSession ставит HttpOnly cookie с id сессии
func (c Cookies) SetSession(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.SessionName,
		Value:    sessionID,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   int(c.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetGlobal ставит cookie с GLOBAL токеном; доступна фронтенду (без HttpOnly)
func (c Cookies) SetGlobal(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.GlobalName,
		Value:    token,
		Path:     "/",
		Domain:   c.Domain,
		Expires:  expires,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear удаляет обе cookie
func (c Cookies) Clear(w http.ResponseWriter) {
	for _, name := range []string{c.SessionName, c.GlobalName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   c.Domain,
			MaxAge:   -1,
			HttpOnly: name == c.SessionName,
			Secure:   c.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
