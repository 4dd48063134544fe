package game

// SessionRegistry owns the process-wide mapping from game code to at most
// one LiveSession, plus a reverse index from connection ID to session so
// disconnects resolve without knowing the code.
type SessionRegistry interface {
	// Register commits a new session. It fails with domain.ErrSessionExists
	// when the code is already live, which callers use to re-check after
	// any asynchronous fetch performed before committing.
	Register(s *LiveSession) error
	// Lookup returns the live session for code or domain.ErrSessionNotFound.
	Lookup(code string) (*LiveSession, error)
	// Remove evicts the session for code. Absent codes are a no-op.
	Remove(code string)

	// BindConnection records that connID belongs to the session for code.
	BindConnection(connID, code string)
	// UnbindConnection drops the reverse mapping for connID.
	UnbindConnection(connID string)
	// ResolveConnection finds the session a connection is attached to.
	ResolveConnection(connID string) (*LiveSession, bool)
}
