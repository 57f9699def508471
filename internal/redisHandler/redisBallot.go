package redishandler

import (
	"context"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/saxenaaman628/redis-ballot-system/internal/models"
	"github.com/saxenaaman628/redis-ballot-system/internal/registry"
)

const keyPrefix = "ballot:"

var _ registry.Mirror = (*BallotStore)(nil)

// BallotStore mirrors ballot records into Redis:
//
//	ballot:<id>          hash of the record fields
//	ballot:<id>:voters   set of registered identities (audit only)
//	ballot:<id>:voted    set of identities that have voted (audit only)
//	user:<id>:votes      hash of ballot id -> choice, read by LoadVoterHistory
type BallotStore struct {
	rdb *redis.Client
}

func NewBallotStore(rdb *redis.Client) *BallotStore {
	return &BallotStore{rdb: rdb}
}

func ballotKey(id string) string { return keyPrefix + id }
func votersKey(id string) string { return keyPrefix + id + ":voters" }
func votedKey(id string) string  { return keyPrefix + id + ":voted" }
func userVotesKey(voter string) string {
	return "user:" + voter + ":votes"
}

// isRecordKey reports whether key is a ballot hash rather than one of its
// companion sets.
func isRecordKey(key string) bool {
	return strings.HasPrefix(key, keyPrefix) && !strings.Contains(strings.TrimPrefix(key, keyPrefix), ":")
}

func recordFields(rec models.BallotRecord) (map[string]interface{}, error) {
	fields := make(map[string]interface{})
	if err := mapstructure.Decode(rec, &fields); err != nil {
		return nil, errors.Wrap(err, "encode ballot record")
	}
	return fields, nil
}

func decodeRecord(data map[string]string) (models.BallotRecord, error) {
	var rec models.BallotRecord
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &rec,
	})
	if err != nil {
		return rec, errors.WithStack(err)
	}
	if err := dec.Decode(data); err != nil {
		return rec, errors.Wrap(err, "decode ballot record")
	}
	return rec, nil
}

func (s *BallotStore) SaveBallot(ctx context.Context, rec models.BallotRecord) error {
	fields, err := recordFields(rec)
	if err != nil {
		return err
	}
	if err := s.rdb.HSet(ctx, ballotKey(rec.ID), fields).Err(); err != nil {
		return errors.Wrapf(err, "save ballot %s", rec.ID)
	}
	return nil
}

func (s *BallotStore) SaveRegistration(ctx context.Context, rec models.BallotRecord, voter string) error {
	fields, err := recordFields(rec)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.SAdd(ctx, votersKey(rec.ID), voter)
	pipe.HSet(ctx, ballotKey(rec.ID), fields)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "save registration on ballot %s", rec.ID)
	}
	return nil
}

func (s *BallotStore) SaveVote(ctx context.Context, rec models.BallotRecord, voter string, choice string) error {
	fields, err := recordFields(rec)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()

	// voter set and tallies land together
	pipe.SAdd(ctx, votedKey(rec.ID), voter)
	pipe.HSet(ctx, ballotKey(rec.ID), fields)
	pipe.HSet(ctx, userVotesKey(voter), rec.ID, choice)

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "save vote on ballot %s", rec.ID)
	}
	return nil
}

// LoadBallots scans every mirrored ballot record. Order is not defined.
func (s *BallotStore) LoadBallots(ctx context.Context) ([]models.BallotRecord, error) {
	var cursor uint64
	all := make([]models.BallotRecord, 0)
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, errors.Wrap(err, "scan ballots")
		}

		for _, key := range keys {
			if !isRecordKey(key) {
				continue
			}
			data, err := s.rdb.HGetAll(ctx, key).Result()
			if err != nil {
				return nil, errors.Wrapf(err, "read %s", key)
			}
			if len(data) == 0 {
				continue
			}
			rec, err := decodeRecord(data)
			if err != nil {
				return nil, errors.Wrapf(err, "read %s", key)
			}
			all = append(all, rec)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}
	return all, nil
}

// LoadVoterHistory returns ballot id -> choice for every vote voter cast.
func (s *BallotStore) LoadVoterHistory(ctx context.Context, voter string) (map[string]string, error) {
	votes, err := s.rdb.HGetAll(ctx, userVotesKey(voter)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "read votes of %s", voter)
	}
	return votes, nil
}
