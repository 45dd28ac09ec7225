// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"

	"colab/internal/app"

	"github.com/coreos/go-oidc/v3/oidc"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string `json:"name"`
		Email         string `json:"email"`
		Password      string `json:"password"`
		ContactNumber string `json:"contactNumber"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	firstUser, err := s.auth.Register(r.Context(), req.Name, req.Email, req.Password, req.ContactNumber)
	switch {
	case errors.Is(err, app.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email already used")
		return
	case errors.Is(err, app.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]any{
		"message":   "registration successful, check your email to verify your account",
		"firstUser": firstUser,
	})
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	err := s.auth.VerifyEmail(r.Context(), r.URL.Query().Get("token"))
	if errors.Is(err, app.ErrTokenNotFound) {
		writeError(w, http.StatusNotFound, "invalid or expired verification token")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"message": "email verified"})
}

func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Whether the address exists is not revealed.
	if err := s.auth.ResendVerification(r.Context(), req.Email); err != nil &&
		!errors.Is(err, app.ErrUserNotFound) {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"message": "verification email sent if the account exists"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, session, err := s.auth.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, app.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	case errors.Is(err, app.ErrEmailNotVerified):
		writeError(w, http.StatusForbidden, "email not verified")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	setSessionCookie(w, session.Token, s.production)
	writeSuccess(w, http.StatusOK, map[string]any{"user": toUserResponse(user)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if _, session, err := s.auth.UserForToken(r.Context(), cookie.Value); err == nil {
			_ = s.auth.Logout(r.Context(), session.ID)
		}
	}
	clearSessionCookie(w, s.production)
	writeSuccess(w, http.StatusOK, map[string]any{"message": "logged out"})
}

func (s *Server) handleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, session, err := s.auth.AcceptInvite(r.Context(), req.Token, req.Name, req.Password)
	switch {
	case errors.Is(err, app.ErrTokenNotFound):
		writeError(w, http.StatusNotFound, "invalid or expired invite token")
		return
	case errors.Is(err, app.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	setSessionCookie(w, session.Token, s.production)
	writeSuccess(w, http.StatusOK, map[string]any{"user": toUserResponse(user)})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]any{"user": toUserResponse(userFrom(r.Context()))})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name              string `json:"name"`
		ContactNumber     string `json:"contactNumber"`
		ProfilePictureURL string `json:"profilePictureUrl"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.auth.UpdateProfile(r.Context(), userFrom(r.Context()).ID,
		req.Name, req.ContactNumber, req.ProfilePictureURL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"user": toUserResponse(user)})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sso_enabled": s.oidcConfig.Enabled,
	})
}

func (s *Server) handleSSOLogin(w http.ResponseWriter, r *http.Request) {
	if !s.oidcConfig.Enabled {
		writeError(w, http.StatusNotFound, "sso disabled")
		return
	}
	state := generateState()
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode, // Lax required for cross-site redirect returns
		MaxAge:   300,
	})
	http.Redirect(w, r, s.oidcConfig.OAuth2Config.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleSSOCallback(w http.ResponseWriter, r *http.Request) {
	if !s.oidcConfig.Enabled {
		writeError(w, http.StatusNotFound, "sso disabled")
		return
	}

	state, err := r.Cookie("oauth_state")
	if err != nil || r.URL.Query().Get("state") != state.Value {
		writeError(w, http.StatusBadRequest, "invalid state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", MaxAge: -1, Path: "/"})

	token, err := s.oidcConfig.OAuth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to exchange token")
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		writeError(w, http.StatusInternalServerError, "no id_token")
		return
	}

	idToken, err := s.oidcConfig.Provider.Verifier(&oidc.Config{ClientID: s.oidcConfig.OAuth2Config.ClientID}).Verify(r.Context(), rawIDToken)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to verify token")
		return
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Sub   string `json:"sub"`
	}
	if err = idToken.Claims(&claims); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to parse claims")
		return
	}

	email := claims.Email
	if email == "" {
		email = claims.Sub
	}
	name := claims.Name
	if name == "" {
		name = email
	}

	_, session, err := s.auth.LoginWithIdentity(r.Context(), email, name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	setSessionCookie(w, session.Token, s.production)
	http.Redirect(w, r, "/", http.StatusFound)
}

func generateState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
