package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"trivia-live-service/internal/domain"
	"trivia-live-service/internal/game"
)

// APIHandler exposes the persisted-session REST surface: creating a game
// record (which mints the join code) and looking one up by code.
type APIHandler struct {
	service *game.GameService
	log     zerolog.Logger
}

func NewAPIHandler(service *game.GameService, log zerolog.Logger) *APIHandler {
	return &APIHandler{service: service, log: log}
}

func (h *APIHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/games", h.createGame)
	r.Get("/games/{code}", h.getGame)
	return r
}

type createGameRequest struct {
	QuizID string `json:"quizId"`
	HostID string `json:"hostId"`
}

func (h *APIHandler) createGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == "" || req.HostID == "" {
		writeError(w, http.StatusBadRequest, "quizId and hostId are required")
		return
	}

	rec, err := h.service.CreateGame(r.Context(), req.QuizID, req.HostID)
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUpstream):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case err != nil:
		h.log.Error().Err(err).Str("quiz", req.QuizID).Msg("create game failed")
		writeError(w, http.StatusInternalServerError, "could not create game")
	default:
		writeJSON(w, http.StatusCreated, rec)
	}
}

func (h *APIHandler) getGame(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	rec, err := h.service.GetGame(r.Context(), code)
	if errors.Is(err, domain.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("code", code).Msg("get game failed")
		writeError(w, http.StatusInternalServerError, "could not load game")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
