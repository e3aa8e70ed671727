package settings

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/walletfy/walletfy/internal/rest"
)

type ThemeDTO struct {
	Theme string `json:"theme"`
}

type Handler struct {
	service Service
}

func NewSettingsHandler(service Service) *Handler {
	return &Handler{service}
}

// GetTheme godoc
// @Summary Get the theme preference
// @Tags Settings
// @Produce json
// @Success 200 {object} ThemeDTO
// @Router /api/settings/theme [get]
func (handler *Handler) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := handler.service.GetTheme(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ThemeDTO{Theme: string(theme)})
}

// SetTheme godoc
// @Summary Set the theme preference
// @Tags Settings
// @Accept json
// @Produce json
// @Param theme body ThemeDTO true "Theme"
// @Success 200 {object} ThemeDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/settings/theme [put]
func (handler *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var themeDTO ThemeDTO
	if err := json.NewDecoder(r.Body).Decode(&themeDTO); err != nil {
		rest.WriteError(w, http.StatusBadRequest, rest.ErrorResponse{
			Error:   "Invalid request body format",
			Details: err.Error(),
		})
		return
	}
	log.Debugf("Setting theme to %q", themeDTO.Theme)

	theme, err := handler.service.SetTheme(r.Context(), Theme(themeDTO.Theme))
	if err != nil {
		if errors.Is(err, ErrInvalidTheme) {
			rest.WriteError(w, http.StatusBadRequest, rest.ErrorResponse{
				Error:   "Invalid theme",
				Details: err.Error(),
			})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ThemeDTO{Theme: string(theme)})
}

// ToggleTheme godoc
// @Summary Switch between light and dark
// @Tags Settings
// @Produce json
// @Success 200 {object} ThemeDTO
// @Router /api/settings/theme/toggle [post]
func (handler *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := handler.service.ToggleTheme(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ThemeDTO{Theme: string(theme)})
}
