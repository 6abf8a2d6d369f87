package qa

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kurodate/qa-board/backend/internal/models"
)

// PostAnswer resolves the author, stores the answer, and bumps the
// question's last_activity_at so the "active" listing notices it.
// A missing question fails fast with NotFound, same policy as voting.
func (s *Service) PostAnswer(ctx context.Context, identifier string, questionID int, content string) (models.Answer, error) {
	var answer models.Answer

	if strings.TrimSpace(content) == "" {
		return answer, invalidInput("content is required")
	}

	userID, err := s.ResolveUser(ctx, identifier)
	if err != nil {
		return answer, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := targetExists(tx, models.VotableQuestion, questionID); err != nil {
			return err
		}

		answer = models.Answer{
			Body:       content,
			QuestionID: questionID,
			UserID:     userID,
		}
		if err := tx.Create(&answer).Error; err != nil {
			return storeError("failed to create answer", err)
		}

		err := tx.Model(&models.Question{}).
			Where("id = ?", questionID).
			UpdateColumn("last_activity_at", time.Now().UTC()).Error
		if err != nil {
			return storeError("failed to touch question activity", err)
		}
		return nil
	})
	if err != nil {
		return models.Answer{}, err
	}

	return answer, nil
}

// ListAnswers returns a question's answers oldest first, with their
// authors preloaded.
func (s *Service) ListAnswers(ctx context.Context, questionID int) ([]models.Answer, error) {
	var answers []models.Answer
	err := s.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Preload("User").
		Order("created_at ASC, id ASC").
		Find(&answers).Error
	if err != nil {
		return nil, storeError("failed to fetch answers", err)
	}
	return answers, nil
}
