package game

import (
	"sort"
	"sync"

	"trivia-live-service/internal/domain"
)

// PointsPerCorrectAnswer is the fixed award for a correct submission.
const PointsPerCorrectAnswer = 100

type player struct {
	connectionID string
	displayName  string
	externalID   string
	score        int
	answered     map[int]struct{}
	joinOrder    int
}

// LiveSession is the in-memory authoritative state of one game in progress.
//
// Multiple goroutines may invoke methods on a LiveSession simultaneously;
// all mutations are guarded by a per-session mutex so unrelated sessions
// stay fully concurrent.
type LiveSession struct {
	code   string
	quizID string
	hostID string
	quiz   domain.Quiz

	mu       sync.Mutex
	hostConn string
	state    domain.SessionState
	index    int
	players  map[string]*player
	joinSeq  int
}

// NewLiveSession builds a Pending session holding its own quiz snapshot.
func NewLiveSession(code, quizID, hostID, hostConn string, quiz domain.Quiz) *LiveSession {
	return &LiveSession{
		code:     code,
		quizID:   quizID,
		hostID:   hostID,
		hostConn: hostConn,
		quiz:     quiz,
		state:    domain.StatePending,
		index:    -1,
		players:  make(map[string]*player),
	}
}

func (s *LiveSession) Code() string   { return s.code }
func (s *LiveSession) QuizID() string { return s.quizID }
func (s *LiveSession) HostID() string { return s.hostID }

// HostConn returns the host's current connection ID.
func (s *LiveSession) HostConn() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hostConn
}

// RebindHost points the session at a new host connection, supporting host
// reconnects without disturbing session state.
func (s *LiveSession) RebindHost(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hostConn = connID
}

// IsHostConn reports whether connID is the host's connection.
func (s *LiveSession) IsHostConn(connID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hostConn == connID
}

// State returns the current lifecycle state.
func (s *LiveSession) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentIndex returns the current question index (-1 while Pending).
func (s *LiveSession) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Join inserts a player with score 0, or refreshes the display name on
// rejoin. When the session is already Active it also returns the sanitized
// current question so late joiners are not left idle until the next advance.
func (s *LiveSession) Join(connID, displayName, externalID string) ([]domain.RosterEntry, *domain.SanitizedQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.StateFinished {
		return nil, nil, domain.ErrSessionClosed
	}

	if p, ok := s.players[connID]; ok {
		p.displayName = displayName
	} else {
		s.players[connID] = &player{
			connectionID: connID,
			displayName:  displayName,
			externalID:   externalID,
			answered:     make(map[int]struct{}),
			joinOrder:    s.joinSeq,
		}
		s.joinSeq++
	}

	var current *domain.SanitizedQuestion
	if s.state == domain.StateActive {
		q := s.quiz.Questions[s.index].Sanitize()
		current = &q
	}
	return s.rosterLocked(), current, nil
}

// Leave removes a player. Removing an unknown connection is a no-op.
func (s *LiveSession) Leave(connID string) ([]domain.RosterEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[connID]; !ok {
		return nil, false
	}
	delete(s.players, connID)
	return s.rosterLocked(), true
}

// AdvanceResult captures the outcome of one accepted advance.
type AdvanceResult struct {
	Finished bool
	Index    int
	Question domain.SanitizedQuestion
	Results  []domain.LeaderboardEntry
}

// Advance moves the session to the next question, or to Finished when the
// question list is exhausted. Host-only.
func (s *LiveSession) Advance(connID string) (AdvanceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.StateFinished {
		return AdvanceResult{}, domain.ErrSessionNotFound
	}
	if connID != s.hostConn {
		return AdvanceResult{}, domain.ErrNotHost
	}

	s.index++
	if s.index < len(s.quiz.Questions) {
		s.state = domain.StateActive
		return AdvanceResult{
			Index:    s.index,
			Question: s.quiz.Questions[s.index].Sanitize(),
		}, nil
	}

	s.state = domain.StateFinished
	return AdvanceResult{
		Finished: true,
		Index:    s.index,
		Results:  s.leaderboardLocked(),
	}, nil
}

// ForceFinish transitions to Finished immediately from any state. Host-only.
func (s *LiveSession) ForceFinish(connID string) ([]domain.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.StateFinished {
		return nil, domain.ErrSessionNotFound
	}
	if connID != s.hostConn {
		return nil, domain.ErrNotHost
	}
	s.state = domain.StateFinished
	return s.leaderboardLocked(), nil
}

// SubmitAnswer scores one answer against the current question. A player is
// awarded at most once per question index; repeats are rejected without
// touching the score.
func (s *LiveSession) SubmitAnswer(connID, questionID string, selectedOption int) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.StateFinished {
		return false, 0, domain.ErrSessionClosed
	}
	p, ok := s.players[connID]
	if !ok {
		return false, 0, domain.ErrPlayerNotFound
	}
	if s.state != domain.StateActive {
		return false, 0, domain.ErrQuestionMismatch
	}
	question := s.quiz.Questions[s.index]
	if question.ID != questionID {
		return false, 0, domain.ErrQuestionMismatch
	}
	if _, done := p.answered[s.index]; done {
		return false, 0, domain.ErrAnswerAlreadySubmitted
	}

	p.answered[s.index] = struct{}{}
	correct := selectedOption == question.CorrectOption
	if correct {
		p.score += PointsPerCorrectAnswer
	}
	return correct, p.score, nil
}

// Roster returns the current roster ordered by join time.
func (s *LiveSession) Roster() []domain.RosterEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rosterLocked()
}

// Recipients lists every connection attached to the session, host included.
func (s *LiveSession) Recipients() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.players)+1)
	ids = append(ids, s.hostConn)
	for id := range s.players {
		ids = append(ids, id)
	}
	return ids
}

// PlayerConnections lists the player connection IDs only.
func (s *LiveSession) PlayerConnections() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.players))
	for id := range s.players {
		ids = append(ids, id)
	}
	return ids
}

func (s *LiveSession) rosterLocked() []domain.RosterEntry {
	ordered := make([]*player, 0, len(s.players))
	for _, p := range s.players {
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].joinOrder < ordered[j].joinOrder
	})

	roster := make([]domain.RosterEntry, 0, len(ordered))
	for _, p := range ordered {
		roster = append(roster, domain.RosterEntry{
			ConnectionID: p.connectionID,
			DisplayName:  p.displayName,
			Score:        p.score,
		})
	}
	return roster
}

func (s *LiveSession) leaderboardLocked() []domain.LeaderboardEntry {
	ordered := make([]*player, 0, len(s.players))
	for _, p := range s.players {
		ordered = append(ordered, p)
	}
	// Score descending, ties broken by join order.
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].score != ordered[j].score {
			return ordered[i].score > ordered[j].score
		}
		return ordered[i].joinOrder < ordered[j].joinOrder
	})

	results := make([]domain.LeaderboardEntry, 0, len(ordered))
	for _, p := range ordered {
		results = append(results, domain.LeaderboardEntry{
			DisplayName: p.displayName,
			Score:       p.score,
		})
	}
	return results
}
