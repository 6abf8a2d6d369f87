package models

import "time"

// Votable target kinds.
const (
	VotableQuestion = "question"
	VotableAnswer   = "answer"
)

// Vote model - tracks individual user votes on questions and answers.
// At most one row exists per (user, votable_type, votable_id); the
// toggle engine creates, flips, or deletes it.
type Vote struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	UserID      int       `gorm:"uniqueIndex:idx_voter_target" json:"user_id"`
	VotableType string    `gorm:"uniqueIndex:idx_voter_target" json:"votable_type"`
	VotableID   int       `gorm:"uniqueIndex:idx_voter_target" json:"votable_id"`
	VoteType    int       `json:"vote_type"` // 1 or -1
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type VoteRequest struct {
	VoteType  int    `json:"voteType"`
	UserEmail string `json:"userEmail"`
}

type VoteResponse struct {
	Success bool `json:"success"`
	Votes   int  `json:"votes"`
}
