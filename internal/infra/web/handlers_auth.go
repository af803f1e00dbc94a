package web

import (
	"errors"
	"net/http"
	"strings"

	"page-summarizer/internal/domain"
)

type credentials struct {
	Username string `validate:"required,max=64"`
	Password string `validate:"required,max=256"`
}

func (s *Server) readCredentials(r *http.Request) (credentials, error) {
	c := credentials{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	return c, s.validate.Struct(c)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user != "" {
		_, err := s.authUC.Lookup(r.Context(), user)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			// account removed since the cookie was minted
			s.sessions.Clear(w)
			user = ""
		case err != nil:
			l := s.reqLog(r)
			l.Warn().Err(err).Msg("lookup session user")
		}
	}
	s.render(w, r, http.StatusOK, "home", homeData{User: user})
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register", authPageData{})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	c, err := s.readCredentials(r)
	if err != nil {
		s.render(w, r, http.StatusBadRequest, "register", authPageData{Error: s.tr.T("err_form_invalid")})
		return
	}

	u, err := s.authUC.Register(r.Context(), c.Username, c.Password)
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		s.render(w, r, http.StatusOK, "register", authPageData{Error: s.tr.T("err_username_taken")})
		return
	case errors.Is(err, domain.ErrInvalidArgument):
		s.render(w, r, http.StatusBadRequest, "register", authPageData{Error: s.tr.T("err_form_invalid")})
		return
	case err != nil:
		s.renderError(w, r, http.StatusInternalServerError, "")
		return
	}
	s.startSession(w, r, u.Username)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login", authPageData{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	rejected := authPageData{Error: s.tr.T("err_bad_credentials")}

	c, err := s.readCredentials(r)
	if err != nil {
		s.render(w, r, http.StatusOK, "login", rejected)
		return
	}
	u, err := s.authUC.Login(r.Context(), c.Username, c.Password)
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		s.render(w, r, http.StatusOK, "login", rejected)
		return
	case err != nil:
		s.renderError(w, r, http.StatusInternalServerError, "")
		return
	}
	s.startSession(w, r, u.Username)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, username string) {
	if _, err := s.sessions.Mint(w, username); err != nil {
		l := s.reqLog(r)
		l.Error().Err(err).Msg("mint session")
		s.renderError(w, r, http.StatusInternalServerError, "")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
