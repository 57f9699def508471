package ballot

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	manager Identity = "manager"
	voter   Identity = "voter"
)

func newTestBallot() *Ballot {
	return New(manager, "Chocolate or Vanilla?", "Chocolate", "Vanilla", 1000, 1000)
}

func advanceTo(t *testing.T, b *Ballot, target Phase) {
	t.Helper()
	for b.Phase() != target {
		_, err := b.AdvancePhase(manager, 1)
		require.NoError(t, err)
	}
}

func TestNew(t *testing.T) {
	b := newTestBallot()

	assert.Equal(t, "Chocolate or Vanilla?", b.Topic())
	assert.Equal(t, manager, b.Manager())
	assert.Equal(t, Registration, b.Phase())
	assert.Equal(t, "Registration", b.Phase().String())
	assert.Equal(t, Option{Label: "Chocolate"}, b.OptionA())
	assert.Equal(t, Option{Label: "Vanilla"}, b.OptionB())
	assert.EqualValues(t, 1000, b.ScheduledVotingTime())
	assert.EqualValues(t, 1000, b.ScheduledClosingTime())
	assert.Zero(t, b.ActualVotingTime())
	assert.Zero(t, b.ActualClosingTime())
}

func TestNewAcceptsEmptyText(t *testing.T) {
	b := New(manager, "", "", "", 0, 0)
	require.Equal(t, Registration, b.Phase())
	require.NoError(t, b.Register(voter))
}

func TestAdvancePhase(t *testing.T) {
	b := newTestBallot()

	phase, err := b.AdvancePhase(manager, 1500)
	require.NoError(t, err)
	assert.Equal(t, Voting, phase)
	assert.EqualValues(t, 1500, b.ActualVotingTime())
	assert.Zero(t, b.ActualClosingTime())

	phase, err = b.AdvancePhase(manager, 2500)
	require.NoError(t, err)
	assert.Equal(t, Closed, phase)
	assert.EqualValues(t, 1500, b.ActualVotingTime())
	assert.EqualValues(t, 2500, b.ActualClosingTime())

	phase, err = b.AdvancePhase(manager, 3500)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, Closed, phase)
	assert.EqualValues(t, 2500, b.ActualClosingTime())
}

func TestAdvancePhaseUnauthorized(t *testing.T) {
	for _, phase := range []Phase{Registration, Voting, Closed} {
		t.Run(phase.String(), func(t *testing.T) {
			b := newTestBallot()
			advanceTo(t, b, phase)
			before := b.Snapshot()

			_, err := b.AdvancePhase(voter, 9999)
			require.ErrorIs(t, err, ErrUnauthorized)
			assert.Equal(t, before, b.Snapshot())
		})
	}
}

func TestRegister(t *testing.T) {
	b := newTestBallot()

	require.NoError(t, b.Register(voter))
	assert.True(t, b.IsRegistered(voter))
	assert.False(t, b.IsRegistered("someone-else"))

	require.ErrorIs(t, b.Register(voter), ErrAlreadyRegistered)
	assert.Equal(t, 1, b.Snapshot().RegisteredCount)
}

func TestRegisterWrongPhase(t *testing.T) {
	for _, phase := range []Phase{Voting, Closed} {
		t.Run(phase.String(), func(t *testing.T) {
			b := newTestBallot()
			advanceTo(t, b, phase)

			require.ErrorIs(t, b.Register(voter), ErrWrongPhase)
			assert.False(t, b.IsRegistered(voter))
		})
	}
}

func TestVoteNotRegistered(t *testing.T) {
	for _, phase := range []Phase{Registration, Voting, Closed} {
		t.Run(phase.String(), func(t *testing.T) {
			b := newTestBallot()
			advanceTo(t, b, phase)

			require.ErrorIs(t, b.Vote(voter, A), ErrNotRegistered)
			assert.False(t, b.HasVoted(voter))
		})
	}
}

func TestVoteWrongPhase(t *testing.T) {
	for _, phase := range []Phase{Registration, Closed} {
		t.Run(phase.String(), func(t *testing.T) {
			b := newTestBallot()
			require.NoError(t, b.Register(voter))
			advanceTo(t, b, phase)

			require.ErrorIs(t, b.Vote(voter, B), ErrWrongPhase)
			assert.Zero(t, b.OptionB().Tally)
			assert.False(t, b.HasVoted(voter))
		})
	}
}

func TestVoteOnce(t *testing.T) {
	b := newTestBallot()
	require.NoError(t, b.Register(voter))
	advanceTo(t, b, Voting)

	require.NoError(t, b.Vote(voter, B))
	assert.True(t, b.HasVoted(voter))
	assert.EqualValues(t, 0, b.OptionA().Tally)
	assert.EqualValues(t, 1, b.OptionB().Tally)

	require.ErrorIs(t, b.Vote(voter, A), ErrAlreadyVoted)
	assert.EqualValues(t, 0, b.OptionA().Tally)
	assert.EqualValues(t, 1, b.OptionB().Tally)
}

func TestVoteInvalidChoice(t *testing.T) {
	b := newTestBallot()
	require.NoError(t, b.Register(voter))
	advanceTo(t, b, Voting)

	require.ErrorIs(t, b.Vote(voter, Choice(7)), ErrInvalidChoice)
	assert.False(t, b.HasVoted(voter))
	assert.Zero(t, b.TotalVotes())
}

func TestEndToEnd(t *testing.T) {
	b := New(manager, "Chocolate or Vanilla?", "Chocolate", "Vanilla", 1000, 1000)

	assert.Equal(t, "Registration", b.Phase().String())
	assert.Zero(t, b.OptionA().Tally)
	assert.Zero(t, b.OptionB().Tally)
	assert.Zero(t, b.ActualVotingTime())
	assert.Zero(t, b.ActualClosingTime())

	require.NoError(t, b.Register(voter))
	assert.True(t, b.IsRegistered(voter))

	_, err := b.AdvancePhase(manager, 1700000000)
	require.NoError(t, err)
	assert.Equal(t, "Voting", b.Phase().String())
	assert.EqualValues(t, 1700000000, b.ActualVotingTime())

	require.NoError(t, b.Vote(voter, A))
	assert.EqualValues(t, 1, b.OptionA().Tally)
	assert.EqualValues(t, 0, b.OptionB().Tally)

	require.ErrorIs(t, b.Vote(voter, A), ErrAlreadyVoted)
	assert.EqualValues(t, 1, b.OptionA().Tally)
	assert.EqualValues(t, 0, b.OptionB().Tally)

	_, err = b.AdvancePhase(manager, 1700000100)
	require.NoError(t, err)
	assert.Equal(t, "Closed", b.Phase().String())
	assert.EqualValues(t, 1700000100, b.ActualClosingTime())

	_, err = b.AdvancePhase(manager, 1700000200)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConcurrentVotesKeepTallyConsistent(t *testing.T) {
	const voters = 200
	b := newTestBallot()
	for i := 0; i < voters; i++ {
		require.NoError(t, b.Register(Identity(fmt.Sprintf("v%d", i))))
	}
	advanceTo(t, b, Voting)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	// every voter tries twice, concurrently
	for i := 0; i < voters*2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			choice := A
			if i%3 == 0 {
				choice = B
			}
			if err := b.Vote(Identity(fmt.Sprintf("v%d", i%voters)), choice); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrAlreadyVoted)
			}
			s := b.Snapshot()
			assert.EqualValues(t, s.VotedCount, s.OptionA.Tally+s.OptionB.Tally)
		}(i)
	}
	wg.Wait()

	s := b.Snapshot()
	assert.Equal(t, voters, accepted)
	assert.Equal(t, voters, s.VotedCount)
	assert.EqualValues(t, voters, s.OptionA.Tally+s.OptionB.Tally)
}

func TestConcurrentAdvanceIsMonotonic(t *testing.T) {
	b := newTestBallot()
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		closed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(now int64) {
			defer wg.Done()
			if _, err := b.AdvancePhase(manager, now); err != nil {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				return
			}
			mu.Lock()
			closed++
			mu.Unlock()
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 2, closed)
	assert.Equal(t, Closed, b.Phase())
	assert.NotZero(t, b.ActualVotingTime())
	assert.NotZero(t, b.ActualClosingTime())
}

func TestParseChoice(t *testing.T) {
	for in, want := range map[string]Choice{"A": A, "a": A, " B ": B, "b": B} {
		got, err := ParseChoice(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseChoice("C")
	require.ErrorIs(t, err, ErrInvalidChoice)
}

func TestPhaseText(t *testing.T) {
	text, err := Voting.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Voting", string(text))

	var p Phase
	require.NoError(t, p.UnmarshalText([]byte("Closed")))
	assert.Equal(t, Closed, p)
	require.Error(t, p.UnmarshalText([]byte("Tallying")))

	assert.Equal(t, "Unknown", Phase(9).String())
}

func TestKind(t *testing.T) {
	assert.Equal(t, "Unauthorized", Kind(ErrUnauthorized))
	assert.Equal(t, "AlreadyVoted", Kind(ErrAlreadyVoted))
	assert.Equal(t, "", Kind(fmt.Errorf("boom")))
	assert.Equal(t, "WrongPhase", Kind(fmt.Errorf("register: %w", ErrWrongPhase)))
}
