package httpserver

import (
	"net/http"

	appauth "github.com/bryanwahyu/finsight/internal/application/auth"
	"github.com/bryanwahyu/finsight/internal/middleware"
)

// POST /api/auth/signup
func (r *Router) handleSignup(w http.ResponseWriter, req *http.Request) error {
	var body appauth.SignupCommand
	if err := decode(w, req, &body); err != nil {
		return err
	}
	u, err := r.auth.Signup(req.Context(), body)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user": map[string]string{
			"id":       u.ID,
			"username": u.Username,
			"email":    u.Email,
		},
	})
	return nil
}

// POST /api/auth/login
func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) error {
	var body appauth.LoginCommand
	if err := decode(w, req, &body); err != nil {
		return err
	}
	res, err := r.auth.Login(req.Context(), body)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

// GET /api/auth/me
func (r *Router) handleMe(w http.ResponseWriter, req *http.Request) error {
	u, err := r.auth.Me(req.Context(), middleware.UserID(req.Context()))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
	return nil
}
