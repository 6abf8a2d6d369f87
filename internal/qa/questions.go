package qa

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kurodate/qa-board/backend/internal/models"
)

// Sort keys for question listings.
const (
	SortRecent = "recent"
	SortActive = "active"
	SortVotes  = "votes"
)

const listingLimit = 20

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// PostQuestion resolves the author, stores the question, and links its
// tags. Tag failures are best-effort: the question is kept and the
// per-tag failures are returned alongside the new id.
func (s *Service) PostQuestion(ctx context.Context, identifier, title, content string, tags []string) (int, []LinkFailure, error) {
	if strings.TrimSpace(title) == "" {
		return 0, nil, invalidInput("title is required")
	}
	if strings.TrimSpace(content) == "" {
		return 0, nil, invalidInput("content is required")
	}

	userID, err := s.ResolveUser(ctx, identifier)
	if err != nil {
		return 0, nil, err
	}

	question := models.Question{
		Title:          title,
		Body:           content,
		UserID:         userID,
		LastActivityAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&question).Error; err != nil {
		return 0, nil, storeError("failed to create question", err)
	}

	failures := s.LinkTags(ctx, question.ID, tags)
	return question.ID, failures, nil
}

// ListQuestions returns up to 20 question summaries, optionally
// filtered by a title search term.
//
// Ordering: "recent" by creation time, "active" by last activity,
// "votes" by the computed vote sum; anything else falls back to
// recent. Ties always break on ascending id so repeated listings page
// consistently.
func (s *Service) ListQuestions(ctx context.Context, sortKey, search string) ([]models.QuestionSummary, error) {
	query := s.db.WithContext(ctx).Model(&models.Question{})
	if search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}

	var questions []models.Question
	switch sortKey {
	case SortVotes:
		// Vote sums live in the votes table, so fetch in id order and
		// sort after annotating.
		query = query.Order("id ASC")
	case SortActive:
		query = query.Order("last_activity_at DESC, id ASC").Limit(listingLimit)
	default:
		query = query.Order("created_at DESC, id ASC").Limit(listingLimit)
	}
	if err := query.Find(&questions).Error; err != nil {
		return nil, storeError("failed to fetch questions", err)
	}

	summaries := make([]models.QuestionSummary, 0, len(questions))
	for _, q := range questions {
		summary, err := s.summarize(ctx, q)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	if sortKey == SortVotes {
		sortByVotes(summaries)
		if len(summaries) > listingLimit {
			summaries = summaries[:listingLimit]
		}
	}

	return summaries, nil
}

// sortByVotes orders summaries by vote sum descending. The input is
// already in ascending id order and the sort is stable, so tied sums
// keep that order.
func sortByVotes(summaries []models.QuestionSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Votes > summaries[j].Votes
	})
}

func (s *Service) summarize(ctx context.Context, q models.Question) (models.QuestionSummary, error) {
	votes, err := s.VoteSum(ctx, models.VotableQuestion, q.ID)
	if err != nil {
		return models.QuestionSummary{}, err
	}
	answers, err := s.AnswerCount(ctx, q.ID)
	if err != nil {
		return models.QuestionSummary{}, err
	}
	tags, err := s.TagsFor(ctx, q.ID)
	if err != nil {
		return models.QuestionSummary{}, err
	}

	return models.QuestionSummary{
		ID:        q.ID,
		Title:     q.Title,
		Content:   q.Body,
		Views:     q.ViewsCount,
		Answers:   answers,
		Votes:     votes,
		Tags:      tags,
		Timestamp: q.CreatedAt,
	}, nil
}

// AnswerCount counts the answers on a question.
func (s *Service) AnswerCount(ctx context.Context, questionID int) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Answer{}).
		Where("question_id = ?", questionID).
		Count(&count).Error
	if err != nil {
		return 0, storeError("failed to count answers", err)
	}
	return int(count), nil
}

// AnswerView is one answer in the detail response, annotated with its
// vote sum and a display author.
type AnswerView struct {
	ID         int       `json:"id"`
	Content    string    `json:"content"`
	IsAccepted bool      `json:"isAccepted"`
	Author     string    `json:"author"`
	Votes      int       `json:"votes"`
	Timestamp  time.Time `json:"timestamp"`
}

type QuestionDetail struct {
	Question models.QuestionSummary `json:"question"`
	Answers  []AnswerView           `json:"answers"`
}

// GetQuestionDetail returns a question with its tags, vote sum, and
// answers in chronological order.
func (s *Service) GetQuestionDetail(ctx context.Context, questionID int) (QuestionDetail, error) {
	var detail QuestionDetail

	var question models.Question
	if err := s.db.WithContext(ctx).First(&question, questionID).Error; err != nil {
		if isRecordNotFound(err) {
			return detail, notFound("question not found")
		}
		return detail, storeError("failed to fetch question", err)
	}

	summary, err := s.summarize(ctx, question)
	if err != nil {
		return detail, err
	}
	detail.Question = summary

	answers, err := s.ListAnswers(ctx, questionID)
	if err != nil {
		return detail, err
	}

	detail.Answers = make([]AnswerView, 0, len(answers))
	for _, a := range answers {
		votes, err := s.VoteSum(ctx, models.VotableAnswer, a.ID)
		if err != nil {
			return detail, err
		}
		detail.Answers = append(detail.Answers, AnswerView{
			ID:         a.ID,
			Content:    a.Body,
			IsAccepted: a.IsAccepted,
			Author:     displayAuthor(a.User),
			Votes:      votes,
			Timestamp:  a.CreatedAt,
		})
	}

	return detail, nil
}

// displayAuthor prefers the username, then the identifier's local
// part, then "anonymous".
func displayAuthor(u models.User) string {
	if u.Username != "" {
		return u.Username
	}
	if u.Identifier != "" {
		if at := strings.Index(u.Identifier, "@"); at > 0 {
			return u.Identifier[:at]
		}
		return u.Identifier
	}
	return "anonymous"
}

// IncrementViews bumps a question's view counter and returns the new
// count. The counter only ever grows.
func (s *Service) IncrementViews(ctx context.Context, questionID int) (int, error) {
	var views int
	res := s.db.WithContext(ctx).
		Raw("UPDATE questions SET views_count = views_count + 1 WHERE id = ? RETURNING views_count", questionID).
		Scan(&views)
	if res.Error != nil {
		return 0, storeError("failed to increment views", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, notFound("question not found")
	}
	return views, nil
}
