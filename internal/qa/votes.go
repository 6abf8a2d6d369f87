package qa

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kurodate/qa-board/backend/internal/models"
)

// ApplyVote runs the toggle state machine for one (voter, target) pair
// and returns the target's fresh vote sum.
//
// Per pair there are three states — no vote, upvoted, downvoted:
//   - no existing vote: create one with the requested direction
//   - existing vote, same direction: delete it (retraction)
//   - existing vote, opposite direction: flip it in place
//
// Lookup and mutation run inside one transaction with the existing row
// locked, so at most one vote row survives per pair even under
// concurrent calls.
func (s *Service) ApplyVote(ctx context.Context, identifier, votableType string, votableID, voteType int) (int, error) {
	if voteType != 1 && voteType != -1 {
		return 0, &Error{Kind: KindInvalidVoteDirection, Message: "vote type must be -1 or 1"}
	}
	if votableType != models.VotableQuestion && votableType != models.VotableAnswer {
		return 0, &Error{Kind: KindInvalidTarget, Message: "votable type must be question or answer"}
	}

	userID, err := s.ResolveUser(ctx, identifier)
	if err != nil {
		return 0, err
	}

	var sum int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Missing targets fail fast with NotFound rather than leaning
		// on the foreign key; postAnswer enforces the same policy.
		if err := targetExists(tx, votableType, votableID); err != nil {
			return err
		}

		var existing models.Vote
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND votable_type = ? AND votable_id = ?", userID, votableType, votableID).
			First(&existing).Error

		switch {
		case err == nil && existing.VoteType == voteType:
			// Same vote - remove it (toggle)
			if err := tx.Delete(&existing).Error; err != nil {
				return storeError("failed to remove vote", err)
			}
		case err == nil:
			// Different vote - flip it
			existing.VoteType = voteType
			if err := tx.Save(&existing).Error; err != nil {
				return storeError("failed to update vote", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.Vote{
				UserID:      userID,
				VotableType: votableType,
				VotableID:   votableID,
				VoteType:    voteType,
			}
			if err := tx.Create(&vote).Error; err != nil {
				return storeError("failed to record vote", err)
			}
		default:
			return storeError("failed to look up vote", err)
		}

		return scanVoteSum(tx, votableType, votableID, &sum)
	})
	if err != nil {
		return 0, err
	}

	return sum, nil
}

func targetExists(tx *gorm.DB, votableType string, votableID int) error {
	var err error
	switch votableType {
	case models.VotableQuestion:
		err = tx.Select("id").First(&models.Question{}, votableID).Error
	case models.VotableAnswer:
		err = tx.Select("id").First(&models.Answer{}, votableID).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(votableType + " not found")
	}
	if err != nil {
		return storeError("failed to look up vote target", err)
	}
	return nil
}

func scanVoteSum(tx *gorm.DB, votableType string, votableID int, sum *int) error {
	err := tx.Model(&models.Vote{}).
		Where("votable_type = ? AND votable_id = ?", votableType, votableID).
		Select("COALESCE(SUM(vote_type), 0)").
		Scan(sum).Error
	if err != nil {
		return storeError("failed to sum votes", err)
	}
	return nil
}

// VoteSum returns the signed sum of all votes on a target, zero when
// nobody has voted.
func (s *Service) VoteSum(ctx context.Context, votableType string, votableID int) (int, error) {
	var sum int
	if err := scanVoteSum(s.db.WithContext(ctx), votableType, votableID, &sum); err != nil {
		return 0, err
	}
	return sum, nil
}
