package postgres

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/saxenaaman628/redis-ballot-system/internal/models"
	"github.com/saxenaaman628/redis-ballot-system/internal/registry"
)

var _ registry.Mirror = (*BallotStore)(nil)

type ballotModel struct {
	ID                   string    `gorm:"column:id;primaryKey"`
	Topic                string    `gorm:"column:topic"`
	OptionA              string    `gorm:"column:option_a"`
	OptionATally         uint64    `gorm:"column:option_a_tally"`
	OptionB              string    `gorm:"column:option_b"`
	OptionBTally         uint64    `gorm:"column:option_b_tally"`
	Manager              string    `gorm:"column:manager;index"`
	Phase                string    `gorm:"column:phase"`
	ScheduledVotingTime  int64     `gorm:"column:scheduled_voting_time"`
	ScheduledClosingTime int64     `gorm:"column:scheduled_closing_time"`
	ActualVotingTime     int64     `gorm:"column:actual_voting_time"`
	ActualClosingTime    int64     `gorm:"column:actual_closing_time"`
	RegisteredCount      int       `gorm:"column:registered_count"`
	VotedCount           int       `gorm:"column:voted_count"`
	CreatedBy            string    `gorm:"column:created_by"`
	CreatedAt            time.Time `gorm:"column:created_at"`
	UpdatedAt            time.Time `gorm:"column:updated_at"`
}

func (ballotModel) TableName() string {
	return "ballots"
}

type registrationModel struct {
	BallotID  string    `gorm:"column:ballot_id;primaryKey"`
	Voter     string    `gorm:"column:voter;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (registrationModel) TableName() string {
	return "ballot_registrations"
}

type voteModel struct {
	BallotID  string    `gorm:"column:ballot_id;primaryKey"`
	Voter     string    `gorm:"column:voter;primaryKey"`
	Choice    string    `gorm:"column:choice"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (voteModel) TableName() string {
	return "ballot_votes"
}

func ballotModelFromRecord(rec models.BallotRecord) ballotModel {
	return ballotModel{
		ID:                   rec.ID,
		Topic:                rec.Topic,
		OptionA:              rec.OptionA,
		OptionATally:         rec.OptionATally,
		OptionB:              rec.OptionB,
		OptionBTally:         rec.OptionBTally,
		Manager:              rec.Manager,
		Phase:                rec.Phase,
		ScheduledVotingTime:  rec.ScheduledVotingTime,
		ScheduledClosingTime: rec.ScheduledClosingTime,
		ActualVotingTime:     rec.ActualVotingTime,
		ActualClosingTime:    rec.ActualClosingTime,
		RegisteredCount:      rec.RegisteredCount,
		VotedCount:           rec.VotedCount,
		CreatedBy:            rec.CreatedBy,
	}
}

func (m ballotModel) toRecord() models.BallotRecord {
	return models.BallotRecord{
		ID:                   m.ID,
		Topic:                m.Topic,
		OptionA:              m.OptionA,
		OptionATally:         m.OptionATally,
		OptionB:              m.OptionB,
		OptionBTally:         m.OptionBTally,
		Manager:              m.Manager,
		Phase:                m.Phase,
		ScheduledVotingTime:  m.ScheduledVotingTime,
		ScheduledClosingTime: m.ScheduledClosingTime,
		ActualVotingTime:     m.ActualVotingTime,
		ActualClosingTime:    m.ActualClosingTime,
		RegisteredCount:      m.RegisteredCount,
		VotedCount:           m.VotedCount,
		CreatedBy:            m.CreatedBy,
	}
}

// BallotStore mirrors ballot records into PostgreSQL.
type BallotStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewBallotStore(db *gorm.DB) *BallotStore {
	return &BallotStore{db: db, now: time.Now}
}

// upsertBallot writes every mutable column; created_at and created_by are
// kept from the first insert.
func upsertBallot(tx *gorm.DB, row ballotModel) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"option_a_tally",
			"option_b_tally",
			"phase",
			"actual_voting_time",
			"actual_closing_time",
			"registered_count",
			"voted_count",
			"updated_at",
		}),
	}).Create(&row).Error
}

func (s *BallotStore) row(rec models.BallotRecord) ballotModel {
	now := s.now().UTC()
	row := ballotModelFromRecord(rec)
	row.CreatedAt = now
	row.UpdatedAt = now
	return row
}

func (s *BallotStore) SaveBallot(ctx context.Context, rec models.BallotRecord) error {
	if err := upsertBallot(s.db.WithContext(ctx), s.row(rec)); err != nil {
		return errors.Wrapf(err, "save ballot %s", rec.ID)
	}
	return nil
}

func (s *BallotStore) SaveRegistration(ctx context.Context, rec models.BallotRecord, voter string) error {
	row := s.row(rec)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&registrationModel{
			BallotID:  rec.ID,
			Voter:     voter,
			CreatedAt: row.CreatedAt,
		}).Error; err != nil {
			return err
		}
		return upsertBallot(tx, row)
	})
	if err != nil {
		return errors.Wrapf(err, "save registration on ballot %s", rec.ID)
	}
	return nil
}

func (s *BallotStore) SaveVote(ctx context.Context, rec models.BallotRecord, voter string, choice string) error {
	row := s.row(rec)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&voteModel{
			BallotID:  rec.ID,
			Voter:     voter,
			Choice:    choice,
			CreatedAt: row.CreatedAt,
		}).Error; err != nil {
			return err
		}
		return upsertBallot(tx, row)
	})
	if err != nil {
		return errors.Wrapf(err, "save vote on ballot %s", rec.ID)
	}
	return nil
}

// LoadBallots returns mirrored records oldest first.
func (s *BallotStore) LoadBallots(ctx context.Context) ([]models.BallotRecord, error) {
	var rows []ballotModel
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list ballots")
	}
	out := make([]models.BallotRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toRecord())
	}
	return out, nil
}

// LoadVoterHistory returns ballot id -> choice for every vote voter cast.
func (s *BallotStore) LoadVoterHistory(ctx context.Context, voter string) (map[string]string, error) {
	var rows []voteModel
	if err := s.db.WithContext(ctx).Where("voter = ?", voter).Find(&rows).Error; err != nil {
		return nil, errors.Wrapf(err, "list votes of %s", voter)
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.BallotID] = row.Choice
	}
	return out, nil
}
