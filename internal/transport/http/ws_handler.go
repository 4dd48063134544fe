package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"trivia-live-service/internal/domain"
	"trivia-live-service/internal/game"
)

// WSHandler upgrades connections and dispatches tagged client messages into
// the game engine. Every inbound payload is validated before dispatch;
// malformed messages produce an error event scoped to that connection.
type WSHandler struct {
	service  *game.GameService
	hub      *Hub
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHandler(service *game.GameService, hub *Hub, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type attachHostPayload struct {
	Code   string `json:"code"`
	QuizID string `json:"quizId"`
	HostID string `json:"hostId"`
}

type joinPayload struct {
	Code        string `json:"code"`
	DisplayName string `json:"displayName"`
	ExternalID  string `json:"externalId"`
}

type codePayload struct {
	Code string `json:"code"`
}

type submitAnswerPayload struct {
	Code           string `json:"code"`
	QuestionID     string `json:"questionId"`
	SelectedOption *int   `json:"selectedOptionIndex"`
}

// ServeWS handles one client connection for its whole lifetime. The
// connection ID minted here is the player's ephemeral transport identity.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	send := h.hub.Add(connID)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug().Err(err).Str("conn", connID).Msg("ws write error")
				// Nothing drains the channel once the writer stops;
				// evict the connection so senders stop queueing to it.
				h.hub.Remove(connID)
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(r.Context(), connID, inbound)
	}

	// Disconnect is transport-triggered: remove the player from whichever
	// session holds this connection, then stop the writer.
	h.service.Disconnect(context.Background(), connID)
	h.hub.Remove(connID)
	<-writerDone
}

func (h *WSHandler) dispatch(ctx context.Context, connID string, msg inboundMessage) {
	var err error
	switch msg.Type {
	case "attachHost":
		var p attachHostPayload
		if err = decode(msg.Payload, &p); err == nil {
			if p.Code == "" || p.QuizID == "" || p.HostID == "" {
				err = validationErr("code, quizId and hostId are required")
			} else {
				err = h.service.AttachHost(ctx, p.Code, p.QuizID, p.HostID, connID)
			}
		}
	case "join":
		var p joinPayload
		if err = decode(msg.Payload, &p); err == nil {
			if p.Code == "" || p.DisplayName == "" {
				err = validationErr("code and displayName are required")
			} else {
				err = h.service.Join(ctx, p.Code, connID, p.DisplayName, p.ExternalID)
			}
		}
	case "advance":
		var p codePayload
		if err = decode(msg.Payload, &p); err == nil {
			if p.Code == "" {
				err = validationErr("code is required")
			} else {
				err = h.service.Advance(ctx, p.Code, connID)
			}
		}
	case "submitAnswer":
		var p submitAnswerPayload
		if err = decode(msg.Payload, &p); err == nil {
			if p.Code == "" || p.QuestionID == "" || p.SelectedOption == nil {
				err = validationErr("code, questionId and selectedOptionIndex are required")
			} else {
				err = h.service.SubmitAnswer(ctx, p.Code, connID, p.QuestionID, *p.SelectedOption)
			}
		}
	case "forceFinish":
		var p codePayload
		if err = decode(msg.Payload, &p); err == nil {
			if p.Code == "" {
				err = validationErr("code is required")
			} else {
				err = h.service.ForceFinish(ctx, p.Code, connID)
			}
		}
	case "leave":
		var p codePayload
		if err = decode(msg.Payload, &p); err == nil {
			if p.Code == "" {
				err = validationErr("code is required")
			} else {
				err = h.service.Leave(ctx, p.Code, connID)
			}
		}
	default:
		err = validationErr("unsupported message type")
	}

	if err != nil {
		h.hub.Send(connID, domain.ErrorEvent{Code: errorCode(err), Message: err.Error()})
	}
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return validationErr("missing payload")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return validationErr("malformed payload")
	}
	return nil
}

func validationErr(msg string) error {
	return &payloadError{msg: msg}
}

type payloadError struct {
	msg string
}

func (e *payloadError) Error() string { return e.msg }

func (e *payloadError) Is(target error) bool { return target == domain.ErrInvalidPayload }

// errorCode maps engine errors onto stable wire codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrRecordNotFound):
		return "SESSION_NOT_FOUND"
	case errors.Is(err, domain.ErrSessionClosed):
		return "SESSION_CLOSED"
	case errors.Is(err, domain.ErrSessionExists):
		return "ALREADY_REGISTERED"
	case errors.Is(err, domain.ErrQuizNotFound):
		return "QUIZ_NOT_FOUND"
	case errors.Is(err, domain.ErrPlayerNotFound):
		return "PLAYER_NOT_FOUND"
	case errors.Is(err, domain.ErrQuestionMismatch):
		return "QUESTION_MISMATCH"
	case errors.Is(err, domain.ErrAnswerAlreadySubmitted):
		return "ANSWER_ALREADY_SUBMITTED"
	case errors.Is(err, domain.ErrNotHost):
		return "UNAUTHORIZED"
	case errors.Is(err, domain.ErrUpstream):
		return "UPSTREAM_UNAVAILABLE"
	case errors.Is(err, domain.ErrInvalidPayload):
		return "VALIDATION_ERROR"
	default:
		return "INTERNAL"
	}
}
