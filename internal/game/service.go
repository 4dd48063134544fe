package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"trivia-live-service/internal/domain"
)

const (
	defaultFetchTimeout = 5 * time.Second
	defaultCodeLength   = 6
	codeAttempts        = 10
)

// Settings tunes engine behavior; zero values fall back to defaults.
type Settings struct {
	// FetchTimeout bounds collaborator fetches so no handler can stall a session.
	FetchTimeout time.Duration
	// CodeLength is the number of digits in generated game codes.
	CodeLength int
}

// GameService orchestrates live game sessions: host attachment, question
// advancement, roster membership and answer scoring.
type GameService struct {
	registry SessionRegistry
	quizzes  QuizRepository
	records  RecordStore
	gateway  BroadcastGateway
	log      zerolog.Logger

	fetchTimeout time.Duration
	codeLength   int
}

func NewGameService(registry SessionRegistry, quizzes QuizRepository, records RecordStore, gateway BroadcastGateway, log zerolog.Logger, settings Settings) *GameService {
	if settings.FetchTimeout <= 0 {
		settings.FetchTimeout = defaultFetchTimeout
	}
	if settings.CodeLength <= 0 {
		settings.CodeLength = defaultCodeLength
	}
	return &GameService{
		registry:     registry,
		quizzes:      quizzes,
		records:      records,
		gateway:      gateway,
		log:          log,
		fetchTimeout: settings.FetchTimeout,
		codeLength:   settings.CodeLength,
	}
}

// CreateGame validates the quiz and persists a pending session record under
// a freshly generated unique numeric code.
func (g *GameService) CreateGame(ctx context.Context, quizID, hostID string) (domain.SessionRecord, error) {
	if _, err := g.fetchQuiz(ctx, quizID); err != nil {
		return domain.SessionRecord{}, err
	}

	for attempt := 0; attempt < codeAttempts; attempt++ {
		rec := domain.SessionRecord{
			Code:                 g.randomCode(),
			QuizID:               quizID,
			HostID:               hostID,
			Status:               domain.StatePending.String(),
			CurrentQuestionIndex: -1,
		}
		err := g.records.Create(ctx, rec)
		if errors.Is(err, domain.ErrCodeTaken) {
			continue
		}
		if err != nil {
			return domain.SessionRecord{}, fmt.Errorf("create session record: %w", err)
		}
		g.log.Info().Str("code", rec.Code).Str("quiz", quizID).Msg("game created")
		return rec, nil
	}
	return domain.SessionRecord{}, fmt.Errorf("%w: could not allocate a unique game code", domain.ErrUpstream)
}

// GetGame returns the persisted record for a code.
func (g *GameService) GetGame(ctx context.Context, code string) (domain.SessionRecord, error) {
	return g.records.Get(ctx, code)
}

// AttachHost hydrates a live session for an already-persisted code. When the
// same host re-attaches to an existing session, the host connection is
// rebound and the session state is untouched.
func (g *GameService) AttachHost(ctx context.Context, code, quizID, hostID, connID string) error {
	if existing, err := g.registry.Lookup(code); err == nil {
		return g.reattachHost(existing, hostID, connID)
	}

	rec, err := g.records.Get(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.ErrSessionNotFound
		}
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	if rec.HostID != hostID {
		return domain.ErrNotHost
	}
	if rec.QuizID != quizID {
		return fmt.Errorf("%w: quiz %q is not bound to code %q", domain.ErrQuizNotFound, quizID, code)
	}

	quiz, err := g.fetchQuiz(ctx, quizID)
	if err != nil {
		return err
	}

	// The fetch yielded; a racing attach may have registered the code in
	// the meantime. Register re-checks under the registry lock.
	session := NewLiveSession(code, quizID, hostID, connID, quiz)
	if err := g.registry.Register(session); err != nil {
		existing, lookupErr := g.registry.Lookup(code)
		if lookupErr != nil {
			return err
		}
		return g.reattachHost(existing, hostID, connID)
	}
	g.registry.BindConnection(connID, code)
	g.log.Info().Str("code", code).Str("quiz", quizID).Msg("host attached")
	return nil
}

func (g *GameService) reattachHost(s *LiveSession, hostID, connID string) error {
	if s.HostID() != hostID {
		return domain.ErrSessionExists
	}
	g.registry.UnbindConnection(s.HostConn())
	s.RebindHost(connID)
	g.registry.BindConnection(connID, s.Code())
	return nil
}

// Join attaches a player connection to a live session and announces the
// updated roster to everyone in it.
func (g *GameService) Join(ctx context.Context, code, connID, displayName, externalID string) error {
	session, err := g.registry.Lookup(code)
	if err != nil {
		return err
	}

	roster, current, err := session.Join(connID, displayName, externalID)
	if err != nil {
		return err
	}
	g.registry.BindConnection(connID, code)

	g.gateway.Broadcast(session.Recipients(), domain.PlayerJoinedEvent{Roster: roster})
	if current != nil {
		g.gateway.Send(connID, domain.QuestionEvent{SanitizedQuestion: *current})
	}
	g.log.Debug().Str("code", code).Str("conn", connID).Msg("player joined")
	return nil
}

// Advance moves the host's session to the next question, broadcasting it
// sanitized, or finalizes the session when the questions run out.
func (g *GameService) Advance(ctx context.Context, code, connID string) error {
	session, err := g.registry.Lookup(code)
	if err != nil {
		return err
	}

	res, err := session.Advance(connID)
	if err != nil {
		return err
	}
	if res.Finished {
		g.finalize(ctx, session, res.Index, res.Results)
		return nil
	}

	// The broadcast runs outside the session lock, so back-to-back advances
	// may deliver their questions out of order. Answers against a question
	// that is no longer current fail the question-ID check regardless.
	g.gateway.Broadcast(session.Recipients(), domain.QuestionEvent{SanitizedQuestion: res.Question})
	g.mirror(ctx, code, domain.StateActive.String(), res.Index)
	return nil
}

// ForceFinish ends the session immediately, with the same broadcast and
// eviction behavior as exhausting the question list.
func (g *GameService) ForceFinish(ctx context.Context, code, connID string) error {
	session, err := g.registry.Lookup(code)
	if err != nil {
		return err
	}

	results, err := session.ForceFinish(connID)
	if err != nil {
		return err
	}
	g.finalize(ctx, session, session.CurrentIndex(), results)
	return nil
}

// SubmitAnswer scores one answer against the session's current question.
// The host learns the outcome privately; the submitter gets their own score
// back. Nothing is broadcast, so answers never leak to other players.
func (g *GameService) SubmitAnswer(ctx context.Context, code, connID, questionID string, selectedOption int) error {
	session, err := g.registry.Lookup(code)
	if err != nil {
		return err
	}

	correct, score, err := session.SubmitAnswer(connID, questionID, selectedOption)
	if err != nil {
		return err
	}

	g.gateway.Send(session.HostConn(), domain.AnswerReceivedEvent{
		ConnectionID: connID,
		Correct:      correct,
		Score:        score,
	})
	g.gateway.Send(connID, domain.ScoreUpdateEvent{Score: score})
	return nil
}

// Leave detaches a player by code. Unknown players are a no-op.
func (g *GameService) Leave(ctx context.Context, code, connID string) error {
	session, err := g.registry.Lookup(code)
	if err != nil {
		return nil
	}
	g.removePlayer(session, connID)
	return nil
}

// Disconnect detaches a connection from whichever session holds it. A host
// disconnect leaves the session alive so the host can re-attach.
func (g *GameService) Disconnect(ctx context.Context, connID string) {
	session, ok := g.registry.ResolveConnection(connID)
	if !ok {
		return
	}
	if session.IsHostConn(connID) {
		g.registry.UnbindConnection(connID)
		g.log.Debug().Str("code", session.Code()).Msg("host disconnected")
		return
	}
	g.removePlayer(session, connID)
}

func (g *GameService) removePlayer(session *LiveSession, connID string) {
	roster, removed := session.Leave(connID)
	g.registry.UnbindConnection(connID)
	if !removed {
		return
	}
	g.gateway.Broadcast(session.Recipients(), domain.PlayerLeftEvent{Roster: roster})
	g.log.Debug().Str("code", session.Code()).Str("conn", connID).Msg("player left")
}

// finalize broadcasts the leaderboard, evicts the session and mirrors the
// terminal status. The recipient list is captured before eviction.
func (g *GameService) finalize(ctx context.Context, session *LiveSession, index int, results []domain.LeaderboardEntry) {
	recipients := session.Recipients()
	connections := session.PlayerConnections()

	g.gateway.Broadcast(recipients, domain.QuizEndedEvent{Results: results})

	g.registry.Remove(session.Code())
	g.registry.UnbindConnection(session.HostConn())
	for _, id := range connections {
		g.registry.UnbindConnection(id)
	}

	g.mirror(ctx, session.Code(), domain.StateFinished.String(), index)
	g.log.Info().Str("code", session.Code()).Int("players", len(connections)).Msg("game finished")
}

// mirror pushes live state onto the persisted record. Failures are logged
// and swallowed; the mirror never blocks or rolls back the live session.
func (g *GameService) mirror(ctx context.Context, code, status string, index int) {
	ctx, cancel := context.WithTimeout(ctx, g.fetchTimeout)
	defer cancel()
	if err := g.records.UpdateStatus(ctx, code, status, index); err != nil {
		g.log.Warn().Err(err).Str("code", code).Msg("session record mirror failed")
	}
}

func (g *GameService) fetchQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	ctx, cancel := context.WithTimeout(ctx, g.fetchTimeout)
	defer cancel()

	quiz, err := g.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			return domain.Quiz{}, err
		}
		return domain.Quiz{}, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	return quiz, nil
}

func (g *GameService) randomCode() string {
	min := 1
	for i := 1; i < g.codeLength; i++ {
		min *= 10
	}
	return fmt.Sprintf("%d", min+rand.Intn(9*min))
}
