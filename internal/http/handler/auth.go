package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"bookapi/internal/auth"
	"bookapi/internal/store"
	"bookapi/internal/user"
)

type AuthHandler struct {
	Users    store.Users
	Denylist store.Denylist
	JWT      *auth.JWT
	Hasher   *auth.Hasher
	Log      *slog.Logger
	Now      func() time.Time
}

type signupInput struct {
	Username *string `json:"username" validate:"required,min=1"`
	Email    *string `json:"email" validate:"required,min=1"`
	Password *string `json:"password" validate:"required,min=1"`
}

var signupMessages = map[string]string{
	"username": "Username is required",
	"email":    "Email is required",
	"password": "Password is required",
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	f, err := decodeFields(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in := signupInput{
		Username: f.text("username"),
		Email:    f.text("email"),
		Password: f.text("password"),
	}
	if err := validate.Struct(in); err != nil {
		writeValidation(w, fieldErrors(err, f, "body", signupMessages))
		return
	}

	hash, err := h.Hasher.Hash(*in.Password)
	if err != nil {
		h.Log.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	u := &user.User{Username: *in.Username, Email: *in.Email, PasswordHash: hash}
	if err := h.Users.CreateUser(r.Context(), u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Email is already registered")
			return
		}
		h.Log.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User has been registered successfully",
		"user":    u,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	f, err := decodeFields(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var email, password string
	if v := f.text("email"); v != nil {
		email = *v
	}
	if v := f.text("password"); v != nil {
		password = *v
	}

	u, err := h.Users.FindUserByEmail(r.Context(), email)
	if errors.Is(err, store.ErrNotFound) {
		writeText(w, http.StatusNotFound, "User not found. Please try signing up.")
		return
	}
	if err != nil {
		h.Log.Error("find user", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ok, err := h.Hasher.Compare(password, u.PasswordHash)
	if err != nil {
		h.Log.Error("compare password", "error", err, "user_id", u.ID)
		writeText(w, http.StatusInternalServerError, "Error comparing passwords.")
		return
	}
	if !ok {
		writeText(w, http.StatusUnauthorized, "Wrong credentials. Please enter the correct password.")
		return
	}

	token, err := h.JWT.Sign(u.ID)
	if err != nil {
		h.Log.Error("sign token", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
	})
}

// Logout deny-lists the presented token without verifying it first. The entry
// lives until the token's own expiry, or is purgeable at once if the token
// never verified.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.BearerToken(r)
	if !ok {
		writeText(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	expiresAt, ok := h.JWT.ExpiresAt(token)
	if !ok {
		expiresAt = h.now()
	}
	if err := h.Denylist.Add(r.Context(), token, expiresAt); err != nil {
		h.Log.Error("denylist token", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeText(w, http.StatusOK, "Logout successful.")
}

func (h *AuthHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
