package handler

import (
	"net/http"

	"bookapi/internal/auth"
)

type MeHandler struct{}

func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeText(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}
	writeJSON(w, http.StatusOK, u)
}
