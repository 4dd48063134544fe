package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no live session exists for a code.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrSessionExists is returned when a code is already registered.
	ErrSessionExists = errors.New("game session already registered for code")
	// ErrSessionClosed is returned when acting on a finished session.
	ErrSessionClosed = errors.New("game session is finished")
	// ErrQuizNotFound indicates the quiz snapshot could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrPlayerNotFound is returned when a connection acts before joining.
	ErrPlayerNotFound = errors.New("player not found in session")
	// ErrQuestionMismatch rejects answers for a question that is no longer current.
	ErrQuestionMismatch = errors.New("answer does not match the current question")
	// ErrAnswerAlreadySubmitted rejects repeat answers for an already scored question.
	ErrAnswerAlreadySubmitted = errors.New("answer already submitted for this question")
	// ErrNotHost rejects host-only transitions attempted by other connections.
	ErrNotHost = errors.New("only the session host may perform this action")
	// ErrCodeTaken is returned when a persisted record already claims a code.
	ErrCodeTaken = errors.New("game code already taken")
	// ErrRecordNotFound is returned when no persisted record exists for a code.
	ErrRecordNotFound = errors.New("game session record not found")
	// ErrUpstream wraps collaborator failures; callers may retry.
	ErrUpstream = errors.New("upstream unavailable")
	// ErrInvalidPayload rejects malformed client messages at the boundary.
	ErrInvalidPayload = errors.New("invalid payload")
)
