package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mesh-intelligence/gamevault/internal/auth"
	"github.com/mesh-intelligence/gamevault/internal/i18n"
)

type loginPage struct {
	page
	Email     string
	ReturnURL string
	Error     string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	returnURL := safeReturnURL(r.URL.Query().Get("returnUrl"))
	if _, err := s.auth.Verify(sessionToken(r)); err == nil {
		http.Redirect(w, r, returnURL, http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", loginPage{
		page:      s.newPage(r, "login.title"),
		ReturnURL: returnURL,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	returnURL := safeReturnURL(r.PostForm.Get("returnUrl"))

	session, err := s.auth.Login(r.Context(), email, r.PostForm.Get("password"))
	if err != nil {
		status, key := http.StatusInternalServerError, i18n.KeyLoginFailed
		if errors.Is(err, auth.ErrInvalidCredential) {
			status, key = http.StatusUnauthorized, i18n.KeyInvalidCredentials
		} else {
			s.logger.Error("login failed", "error", err)
		}
		p := s.newPage(r, "login.title")
		s.render(w, r, status, "login.html", loginPage{
			page:      p,
			Email:     email,
			ReturnURL: returnURL,
			Error:     p.T(key),
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, returnURL, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Logout(sessionToken(r))
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
