package tokens

import (
	"net/http"
	"time"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

func CreateCookie(name, value, path string, exp time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func DeleteCookie(name, path string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionCookies returns the access and refresh cookies for p.
func SessionCookies(p *Pair, secure bool) []*http.Cookie {
	return []*http.Cookie{
		CreateCookie(AccessCookie, p.AccessToken, "/", p.AccessExp, secure),
		CreateCookie(RefreshCookie, p.RefreshToken, "/", p.RefreshExp, secure),
	}
}

func ClearSessionCookies(secure bool) []*http.Cookie {
	return []*http.Cookie{
		DeleteCookie(AccessCookie, "/", secure),
		DeleteCookie(RefreshCookie, "/", secure),
	}
}
