package models

import "github.com/saxenaaman628/redis-ballot-system/internal/ballot"

// BallotRecord is the flat, serialisable view of a ballot used by the API and
// the mirror stores.
type BallotRecord struct {
	ID                   string `json:"id" mapstructure:"id"` // UUID
	Topic                string `json:"topic" mapstructure:"topic"`
	OptionA              string `json:"option_a" mapstructure:"option_a"`
	OptionATally         uint64 `json:"option_a_tally" mapstructure:"option_a_tally"`
	OptionB              string `json:"option_b" mapstructure:"option_b"`
	OptionBTally         uint64 `json:"option_b_tally" mapstructure:"option_b_tally"`
	Manager              string `json:"manager" mapstructure:"manager"`
	Phase                string `json:"phase" mapstructure:"phase"`
	ScheduledVotingTime  int64  `json:"scheduled_voting_time" mapstructure:"scheduled_voting_time"`
	ScheduledClosingTime int64  `json:"scheduled_closing_time" mapstructure:"scheduled_closing_time"`
	ActualVotingTime     int64  `json:"actual_voting_time" mapstructure:"actual_voting_time"`
	ActualClosingTime    int64  `json:"actual_closing_time" mapstructure:"actual_closing_time"`
	RegisteredCount      int    `json:"registered_count" mapstructure:"registered_count"`
	VotedCount           int    `json:"voted_count" mapstructure:"voted_count"`
	CreatedBy            string `json:"created_by,omitempty" mapstructure:"created_by"`
}

func NewBallotRecord(id, createdBy string, s ballot.Snapshot) BallotRecord {
	return BallotRecord{
		ID:                   id,
		Topic:                s.Topic,
		OptionA:              s.OptionA.Label,
		OptionATally:         s.OptionA.Tally,
		OptionB:              s.OptionB.Label,
		OptionBTally:         s.OptionB.Tally,
		Manager:              string(s.Manager),
		Phase:                s.Phase.String(),
		ScheduledVotingTime:  s.ScheduledVotingTime,
		ScheduledClosingTime: s.ScheduledClosingTime,
		ActualVotingTime:     s.ActualVotingTime,
		ActualClosingTime:    s.ActualClosingTime,
		RegisteredCount:      s.RegisteredCount,
		VotedCount:           s.VotedCount,
		CreatedBy:            createdBy,
	}
}
