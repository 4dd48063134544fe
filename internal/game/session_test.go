package game_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"trivia-live-service/internal/domain"
	"trivia-live-service/internal/game"
)

func twoQuestionQuiz() domain.Quiz {
	return domain.Quiz{
		ID: "quiz-1",
		Questions: []domain.Question{
			{
				ID:   "q1",
				Text: "First?",
				Options: []domain.Option{
					{Text: "right"}, {Text: "wrong"},
				},
				CorrectOption: 0,
			},
			{
				ID:   "q2",
				Text: "Second?",
				Options: []domain.Option{
					{Text: "wrong"}, {Text: "right"},
				},
				CorrectOption: 1,
			},
		},
	}
}

func TestSessionAdvanceSequence(t *testing.T) {
	s := game.NewLiveSession("123456", "quiz-1", "h1", "host-conn", twoQuestionQuiz())

	require.Equal(t, domain.StatePending, s.State())
	require.Equal(t, -1, s.CurrentIndex())

	res, err := s.Advance("host-conn")
	require.NoError(t, err)
	require.False(t, res.Finished)
	require.Equal(t, 0, res.Index)
	require.Equal(t, "q1", res.Question.ID)
	require.Equal(t, domain.StateActive, s.State())

	res, err = s.Advance("host-conn")
	require.NoError(t, err)
	require.Equal(t, 1, res.Index)
	require.Equal(t, "q2", res.Question.ID)

	res, err = s.Advance("host-conn")
	require.NoError(t, err)
	require.True(t, res.Finished)
	require.Equal(t, domain.StateFinished, s.State())

	_, err = s.Advance("host-conn")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionAdvanceRequiresHost(t *testing.T) {
	s := game.NewLiveSession("123456", "quiz-1", "h1", "host-conn", twoQuestionQuiz())
	_, _, err := s.Join("p1", "Alice", "")
	require.NoError(t, err)

	_, err = s.Advance("p1")
	require.ErrorIs(t, err, domain.ErrNotHost)
	require.Equal(t, -1, s.CurrentIndex())
}

func TestSanitizedQuestionHidesCorrectOption(t *testing.T) {
	q := twoQuestionQuiz().Questions[0]
	sanitized := q.Sanitize()
	require.Equal(t, q.ID, sanitized.ID)
	require.Len(t, sanitized.Options, 2)
	// SanitizedQuestion has no correct-option field at all; verify the
	// option payload is text-only.
	require.Equal(t, domain.Option{Text: "right"}, sanitized.Options[0])
}

func TestSessionScoresAtMostOncePerQuestion(t *testing.T) {
	s := game.NewLiveSession("123456", "quiz-1", "h1", "host-conn", twoQuestionQuiz())
	_, _, err := s.Join("p1", "Alice", "")
	require.NoError(t, err)
	_, err = s.Advance("host-conn")
	require.NoError(t, err)

	correct, score, err := s.SubmitAnswer("p1", "q1", 0)
	require.NoError(t, err)
	require.True(t, correct)
	require.Equal(t, game.PointsPerCorrectAnswer, score)

	_, _, err = s.SubmitAnswer("p1", "q1", 0)
	require.ErrorIs(t, err, domain.ErrAnswerAlreadySubmitted)

	roster := s.Roster()
	require.Equal(t, game.PointsPerCorrectAnswer, roster[0].Score)
}

func TestSessionRejectsStaleAnswers(t *testing.T) {
	s := game.NewLiveSession("123456", "quiz-1", "h1", "host-conn", twoQuestionQuiz())
	_, _, err := s.Join("p1", "Alice", "")
	require.NoError(t, err)

	// No question shown yet.
	_, _, err = s.SubmitAnswer("p1", "q1", 0)
	require.ErrorIs(t, err, domain.ErrQuestionMismatch)

	_, err = s.Advance("host-conn")
	require.NoError(t, err)
	_, err = s.Advance("host-conn")
	require.NoError(t, err)

	// q1 is no longer current.
	_, _, err = s.SubmitAnswer("p1", "q1", 0)
	require.ErrorIs(t, err, domain.ErrQuestionMismatch)
}

func TestSessionSubmitRequiresPlayer(t *testing.T) {
	s := game.NewLiveSession("123456", "quiz-1", "h1", "host-conn", twoQuestionQuiz())
	_, err := s.Advance("host-conn")
	require.NoError(t, err)

	_, _, err = s.SubmitAnswer("ghost", "q1", 0)
	require.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestSessionLateJoinerGetsCurrentQuestion(t *testing.T) {
	s := game.NewLiveSession("123456", "quiz-1", "h1", "host-conn", twoQuestionQuiz())
	_, err := s.Advance("host-conn")
	require.NoError(t, err)

	roster, current, err := s.Join("p1", "Alice", "")
	require.NoError(t, err)
	require.Len(t, roster, 1)
	require.NotNil(t, current)
	require.Equal(t, "q1", current.ID)
}

func TestSessionJoinAfterFinishFails(t *testing.T) {
	s := game.NewLiveSession("123456", "quiz-1", "h1", "host-conn", twoQuestionQuiz())
	_, err := s.ForceFinish("host-conn")
	require.NoError(t, err)

	_, _, err = s.Join("p1", "Alice", "")
	require.ErrorIs(t, err, domain.ErrSessionClosed)
}

func TestLeaderboardOrdersByScoreThenJoinOrder(t *testing.T) {
	s := game.NewLiveSession("123456", "quiz-1", "h1", "host-conn", twoQuestionQuiz())
	for _, p := range []struct{ conn, name string }{
		{"p1", "Alice"}, {"p2", "Bob"}, {"p3", "Carol"},
	} {
		_, _, err := s.Join(p.conn, p.name, "")
		require.NoError(t, err)
	}
	_, err := s.Advance("host-conn")
	require.NoError(t, err)

	// Bob answers correctly; Alice and Carol stay tied at zero.
	_, _, err = s.SubmitAnswer("p2", "q1", 0)
	require.NoError(t, err)

	results, err := s.ForceFinish("host-conn")
	require.NoError(t, err)
	require.Equal(t, []domain.LeaderboardEntry{
		{DisplayName: "Bob", Score: 100},
		{DisplayName: "Alice", Score: 0},
		{DisplayName: "Carol", Score: 0},
	}, results)
}

func TestSessionLeaveUnknownPlayerIsNoop(t *testing.T) {
	s := game.NewLiveSession("123456", "quiz-1", "h1", "host-conn", twoQuestionQuiz())
	_, removed := s.Leave("ghost")
	require.False(t, removed)
}
