package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/restro-pos/terminal/internal/session"
)

// SessionHandler handles customer session endpoints.
type SessionHandler struct {
	sessions *session.Store
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *session.Store) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// RegisterRoutes registers session endpoints on the given Chi router.
// Expected to be mounted at /session
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Put("/", h.Set)
	r.Put("/table", h.SetTable)
	r.Delete("/", h.Clear)
}

// --- Request types ---

type setSessionRequest struct {
	CustomerName string        `json:"customerName"`
	Phone        string        `json:"phone"`
	Guests       int32         `json:"guests"`
	Table        *tableRequest `json:"table"`
}

type tableRequest struct {
	TableID string `json:"tableId"`
	TableNo int32  `json:"tableNo"`
}

// --- Handlers ---

// Get handles GET /session.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.Active()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active session"})
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// Set handles PUT /session. The session is replaced wholesale; there is no
// partial edit of a confirmed session apart from the table.
func (h *SessionHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req setSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	sess := session.Session{
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Guests:       req.Guests,
	}
	if req.Table != nil {
		sess.Table = &session.Table{ID: req.Table.TableID, Number: req.Table.TableNo}
	}

	if err := h.sessions.Set(sess); err != nil {
		if errors.Is(err, session.ErrNameRequired) || errors.Is(err, session.ErrInvalidGuests) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

// SetTable handles PUT /session/table, the single partial update.
func (h *SessionHandler) SetTable(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.TableID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tableId is required"})
		return
	}

	if err := h.sessions.SetTable(session.Table{ID: req.TableID, Number: req.TableNo}); err != nil {
		if errors.Is(err, session.ErrNoActiveSession) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	sess, _ := h.sessions.Active()
	writeJSON(w, http.StatusOK, sess)
}

// Clear handles DELETE /session.
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"message": "session cleared"})
}
