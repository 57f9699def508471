// Package ballot implements a two-option ballot whose lifecycle is driven by
// a single manager: voters register while the ballot is in Registration, vote
// once while it is in Voting, and nothing changes after it is Closed.
//
// Caller identity and the current time are always passed in by the host; the
// ballot never authenticates anyone and never reads a clock.
package ballot

import (
	"strings"
	"sync"
)

// Identity is an authenticated caller as supplied by the hosting environment.
type Identity string

// Choice selects one of the two options.
type Choice uint8

const (
	A Choice = iota + 1
	B
)

func (c Choice) String() string {
	switch c {
	case A:
		return "A"
	case B:
		return "B"
	default:
		return ""
	}
}

// ParseChoice accepts "A" or "B" in either case.
func ParseChoice(s string) (Choice, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return A, nil
	case "B":
		return B, nil
	default:
		return 0, ErrInvalidChoice
	}
}

// Option is one side of the ballot.
type Option struct {
	Label string
	Tally uint64
}

// Ballot holds all voting state. The zero value is not usable; call New.
type Ballot struct {
	mu sync.RWMutex

	topic   string
	manager Identity
	optionA Option
	optionB Option
	phase   Phase

	scheduledVotingTime  int64
	scheduledClosingTime int64
	actualVotingTime     int64
	actualClosingTime    int64

	registered map[Identity]struct{}
	voted      map[Identity]struct{}
}

// New creates a ballot in Registration. Text and timestamps are stored as
// given; scheduled times are informational and never gate transitions.
func New(manager Identity, topic, labelA, labelB string, scheduledVotingTime, scheduledClosingTime int64) *Ballot {
	return &Ballot{
		topic:                topic,
		manager:              manager,
		optionA:              Option{Label: labelA},
		optionB:              Option{Label: labelB},
		phase:                Registration,
		scheduledVotingTime:  scheduledVotingTime,
		scheduledClosingTime: scheduledClosingTime,
		registered:           make(map[Identity]struct{}),
		voted:                make(map[Identity]struct{}),
	}
}

// AdvancePhase moves the ballot one step forward and stamps now as the
// actual voting or closing time. Only the manager may call it.
func (b *Ballot) AdvancePhase(caller Identity, now int64) (Phase, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != b.manager {
		return b.phase, ErrUnauthorized
	}
	next, ok := b.phase.next()
	if !ok {
		return b.phase, ErrInvalidTransition
	}

	switch next {
	case Voting:
		b.actualVotingTime = now
	case Closed:
		b.actualClosingTime = now
	}
	b.phase = next
	return next, nil
}

// Register adds caller to the voter roll. Any identity may register, once,
// while the ballot is in Registration.
func (b *Ballot) Register(caller Identity) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.phase != Registration {
		return ErrWrongPhase
	}
	if _, ok := b.registered[caller]; ok {
		return ErrAlreadyRegistered
	}
	b.registered[caller] = struct{}{}
	return nil
}

// Vote records a single vote for choice by a registered caller during Voting.
func (b *Ballot) Vote(caller Identity, choice Choice) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.registered[caller]; !ok {
		return ErrNotRegistered
	}
	if b.phase != Voting {
		return ErrWrongPhase
	}
	if _, ok := b.voted[caller]; ok {
		return ErrAlreadyVoted
	}

	var opt *Option
	switch choice {
	case A:
		opt = &b.optionA
	case B:
		opt = &b.optionB
	default:
		return ErrInvalidChoice
	}
	// tally and voter set change together under the lock
	opt.Tally++
	b.voted[caller] = struct{}{}
	return nil
}

// Topic is the question put to voters.
func (b *Ballot) Topic() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.topic
}

// Manager is the only identity allowed to advance the phase.
func (b *Ballot) Manager() Identity {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.manager
}

// Phase returns the current phase; use its String method for the label.
func (b *Ballot) Phase() Phase {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.phase
}

// OptionA returns a copy of the first option and its tally.
func (b *Ballot) OptionA() Option {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.optionA
}

// OptionB returns a copy of the second option and its tally.
func (b *Ballot) OptionB() Option {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.optionB
}

func (b *Ballot) ScheduledVotingTime() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.scheduledVotingTime
}

func (b *Ballot) ScheduledClosingTime() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.scheduledClosingTime
}

// ActualVotingTime is 0 until the ballot enters Voting.
func (b *Ballot) ActualVotingTime() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.actualVotingTime
}

// ActualClosingTime is 0 until the ballot is Closed.
func (b *Ballot) ActualClosingTime() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.actualClosingTime
}

// IsRegistered reports whether id is on the voter roll.
func (b *Ballot) IsRegistered(id Identity) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.registered[id]
	return ok
}

// HasVoted reports whether id has cast its vote.
func (b *Ballot) HasVoted(id Identity) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.voted[id]
	return ok
}

// TotalVotes is the number of identities that have voted.
func (b *Ballot) TotalVotes() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.voted)
}

// Snapshot is a point-in-time copy of the ballot's scalar state.
type Snapshot struct {
	Topic                string
	Manager              Identity
	Phase                Phase
	OptionA              Option
	OptionB              Option
	ScheduledVotingTime  int64
	ScheduledClosingTime int64
	ActualVotingTime     int64
	ActualClosingTime    int64
	RegisteredCount      int
	VotedCount           int
}

// Snapshot reads every field under one lock so the result is consistent.
func (b *Ballot) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Snapshot{
		Topic:                b.topic,
		Manager:              b.manager,
		Phase:                b.phase,
		OptionA:              b.optionA,
		OptionB:              b.optionB,
		ScheduledVotingTime:  b.scheduledVotingTime,
		ScheduledClosingTime: b.scheduledClosingTime,
		ActualVotingTime:     b.actualVotingTime,
		ActualClosingTime:    b.actualClosingTime,
		RegisteredCount:      len(b.registered),
		VotedCount:           len(b.voted),
	}
}
