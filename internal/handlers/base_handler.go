package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// FlashLevel is the severity of a one-time browser message
type FlashLevel string

const (
	FlashSuccess FlashLevel = "success"
	FlashWarning FlashLevel = "warning"
	FlashError   FlashLevel = "error"
)

const flashCookiePrefix = "flash_"

// maxFlashLength bounds the unescaped flash text so the cookie stays under the 4KB browser limit
const maxFlashLength = 1000

var flashLevels = []FlashLevel{FlashSuccess, FlashWarning, FlashError}

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// RespondStatus sends a {status, message} JSON response, merging extra fields
func (h *BaseHandler) RespondStatus(w http.ResponseWriter, status int, level FlashLevel, message string, extra map[string]any) {
	body := map[string]any{
		"status":  level,
		"message": message,
	}
	for k, v := range extra {
		body[k] = v
	}
	h.RespondJSON(w, status, body)
}

// RedirectWithFlash stores a one-time message in a cookie and redirects the browser to location
func (h *BaseHandler) RedirectWithFlash(w http.ResponseWriter, r *http.Request, location string, level FlashLevel, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookiePrefix + string(level),
		Value:    url.QueryEscape(truncateFlash(message)),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// truncateFlash cuts message to maxFlashLength bytes on a rune boundary
func truncateFlash(message string) string {
	if len(message) <= maxFlashLength {
		return message
	}
	cut := maxFlashLength - len("...")
	for cut > 0 && !utf8.RuneStart(message[cut]) {
		cut--
	}
	return message[:cut] + "..."
}

// PopFlash returns the pending flash message of the request and clears it
func PopFlash(w http.ResponseWriter, r *http.Request) (FlashLevel, string) {
	for _, level := range flashLevels {
		cookie, err := r.Cookie(flashCookiePrefix + string(level))
		if err != nil {
			continue
		}
		http.SetCookie(w, &http.Cookie{Name: cookie.Name, Path: "/", MaxAge: -1})
		message, err := url.QueryUnescape(cookie.Value)
		if err != nil {
			message = cookie.Value
		}
		return level, message
	}
	return "", ""
}

// WantsJSON reports whether the client expects a JSON response instead of a page
func WantsJSON(r *http.Request) bool {
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return r.URL.Query().Has("draw")
}
