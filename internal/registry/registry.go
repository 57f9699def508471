// Package registry creates ballots, keeps their handles in creation order,
// and routes mutations to the right ballot.
//
// The in-memory ballots are the source of truth. When a Mirror is configured,
// every successful mutation is copied to it after the ballot's own lock has
// been released; a failed copy is logged and does not affect the caller.
package registry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/saxenaaman628/redis-ballot-system/internal/ballot"
	"github.com/saxenaaman628/redis-ballot-system/internal/models"
)

var ErrBallotNotFound = errors.New("ballot not found")

// Mirror receives copies of ballot state for reporting and archival.
type Mirror interface {
	SaveBallot(ctx context.Context, rec models.BallotRecord) error
	SaveRegistration(ctx context.Context, rec models.BallotRecord, voter string) error
	SaveVote(ctx context.Context, rec models.BallotRecord, voter string, choice string) error
	LoadBallots(ctx context.Context) ([]models.BallotRecord, error)
	// LoadVoterHistory returns the choice voter made on each ballot, keyed
	// by ballot id.
	LoadVoterHistory(ctx context.Context, voter string) (map[string]string, error)
}

// Handle identifies a ballot created through the registry.
type Handle struct {
	ID        string
	CreatedBy ballot.Identity
	Ballot    *ballot.Ballot

	// mirrorMu orders snapshot and write for this ballot so an older
	// record never lands after a newer one.
	mirrorMu *sync.Mutex
}

// Record renders the handle's ballot as a flat record.
func (h Handle) Record() models.BallotRecord {
	return models.NewBallotRecord(h.ID, string(h.CreatedBy), h.Ballot.Snapshot())
}

type Registry struct {
	mu      sync.RWMutex
	handles []Handle
	byID    map[string]int

	mirror        Mirror
	mirrorTimeout time.Duration
	log           zerolog.Logger
}

type Option func(*Registry)

// WithMirror copies state changes to m, giving each write at most timeout.
func WithMirror(m Mirror, timeout time.Duration) Option {
	return func(r *Registry) {
		r.mirror = m
		if timeout > 0 {
			r.mirrorTimeout = timeout
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

func New(opts ...Option) *Registry {
	r := &Registry{
		byID:          make(map[string]int),
		mirrorTimeout: 3 * time.Second,
		log:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateBallot builds a ballot managed by manager and appends its handle.
// creator is recorded for auditing only.
func (r *Registry) CreateBallot(
	ctx context.Context,
	creator ballot.Identity,
	manager ballot.Identity,
	topic, labelA, labelB string,
	scheduledVotingTime, scheduledClosingTime int64,
) Handle {
	h := Handle{
		ID:        uuid.New().String(),
		CreatedBy: creator,
		Ballot:    ballot.New(manager, topic, labelA, labelB, scheduledVotingTime, scheduledClosingTime),
		mirrorMu:  &sync.Mutex{},
	}

	r.mu.Lock()
	r.byID[h.ID] = len(r.handles)
	r.handles = append(r.handles, h)
	r.mu.Unlock()

	r.log.Info().
		Str("ballot_id", h.ID).
		Str("creator", string(creator)).
		Str("manager", string(manager)).
		Msg("ballot created")

	r.mirrorWrite(ctx, "save ballot", h, func(ctx context.Context, rec models.BallotRecord) error {
		return r.mirror.SaveBallot(ctx, rec)
	})
	return h
}

// ListBallots returns every handle in creation order.
func (r *Registry) ListBallots() []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Handle, len(r.handles))
	copy(out, r.handles)
	return out
}

func (r *Registry) Handle(id string) (Handle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.byID[id]
	if !ok {
		return Handle{}, errors.Wrapf(ErrBallotNotFound, "id %s", id)
	}
	return r.handles[i], nil
}

func (r *Registry) Get(id string) (*ballot.Ballot, error) {
	h, err := r.Handle(id)
	if err != nil {
		return nil, err
	}
	return h.Ballot, nil
}

func (r *Registry) AdvancePhase(ctx context.Context, id string, caller ballot.Identity, now int64) (ballot.Phase, error) {
	h, err := r.Handle(id)
	if err != nil {
		return 0, err
	}
	phase, err := h.Ballot.AdvancePhase(caller, now)
	if err != nil {
		r.rejected(id, caller, "advance", err)
		return phase, err
	}
	r.log.Info().
		Str("ballot_id", id).
		Str("caller", string(caller)).
		Stringer("phase", phase).
		Int64("at", now).
		Msg("ballot phase advanced")

	r.mirrorWrite(ctx, "save ballot", h, func(ctx context.Context, rec models.BallotRecord) error {
		return r.mirror.SaveBallot(ctx, rec)
	})
	return phase, nil
}

func (r *Registry) Register(ctx context.Context, id string, caller ballot.Identity) error {
	h, err := r.Handle(id)
	if err != nil {
		return err
	}
	if err := h.Ballot.Register(caller); err != nil {
		r.rejected(id, caller, "register", err)
		return err
	}
	r.log.Info().Str("ballot_id", id).Str("caller", string(caller)).Msg("voter registered")

	r.mirrorWrite(ctx, "save registration", h, func(ctx context.Context, rec models.BallotRecord) error {
		return r.mirror.SaveRegistration(ctx, rec, string(caller))
	})
	return nil
}

func (r *Registry) Vote(ctx context.Context, id string, caller ballot.Identity, choice ballot.Choice) error {
	h, err := r.Handle(id)
	if err != nil {
		return err
	}
	if err := h.Ballot.Vote(caller, choice); err != nil {
		r.rejected(id, caller, "vote", err)
		return err
	}
	r.log.Info().Str("ballot_id", id).Str("caller", string(caller)).Msg("vote recorded")

	r.mirrorWrite(ctx, "save vote", h, func(ctx context.Context, rec models.BallotRecord) error {
		return r.mirror.SaveVote(ctx, rec, string(caller), choice.String())
	})
	return nil
}

// Archive reads ballot records back from the mirror.
func (r *Registry) Archive(ctx context.Context) ([]models.BallotRecord, bool, error) {
	if r.mirror == nil {
		return nil, false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.mirrorTimeout)
	defer cancel()
	recs, err := r.mirror.LoadBallots(ctx)
	if err != nil {
		return nil, true, errors.Wrap(err, "load mirrored ballots")
	}
	return recs, true, nil
}

// VoteHistory reads back from the mirror the choices voter has made.
func (r *Registry) VoteHistory(ctx context.Context, voter ballot.Identity) (map[string]string, bool, error) {
	if r.mirror == nil {
		return nil, false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.mirrorTimeout)
	defer cancel()
	votes, err := r.mirror.LoadVoterHistory(ctx, string(voter))
	if err != nil {
		return nil, true, errors.Wrapf(err, "load vote history for %s", voter)
	}
	return votes, true, nil
}

func (r *Registry) rejected(id string, caller ballot.Identity, op string, err error) {
	r.log.Info().
		Str("ballot_id", id).
		Str("caller", string(caller)).
		Str("op", op).
		Str("kind", ballot.Kind(err)).
		Msg("ballot operation rejected")
}

// mirrorWrite snapshots the ballot and writes it while holding the
// handle's mirror lock, so writes for one ballot land in snapshot order.
func (r *Registry) mirrorWrite(ctx context.Context, what string, h Handle, write func(context.Context, models.BallotRecord) error) {
	if r.mirror == nil {
		return
	}
	h.mirrorMu.Lock()
	defer h.mirrorMu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.mirrorTimeout)
	defer cancel()
	if err := write(ctx, h.Record()); err != nil {
		r.log.Error().Err(err).Str("ballot_id", h.ID).Msgf("mirror: %s failed", what)
	}
}
