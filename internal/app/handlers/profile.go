package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/storefront/internal/service"
)

type UpdateProfileRequest struct {
	FullName  string `json:"full_name" validate:"max=120"`
	Phone     string `json:"phone" validate:"max=32"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

// GetProfileHandler обрабатывает GET /api/profile
func GetProfileHandler(log *slog.Logger, profiles service.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetProfileHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFrom(w, r, logger)
		if !ok {
			return
		}
		p, err := profiles.Get(r.Context(), userID)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, p)
	}
}

// UpdateProfileHandler обрабатывает PUT /api/profile
func UpdateProfileHandler(log *slog.Logger, profiles service.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateProfileHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFrom(w, r, logger)
		if !ok {
			return
		}
		var req UpdateProfileRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}
		p, err := profiles.Upsert(r.Context(), userID, service.ProfileInput{
			FullName:  req.FullName,
			Phone:     req.Phone,
			AvatarURL: req.AvatarURL,
		})
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, p)
	}
}
