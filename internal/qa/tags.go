package qa

import (
	"context"
	"strings"

	"gorm.io/gorm/clause"

	"github.com/kurodate/qa-board/backend/internal/models"
)

// tagColors is the fixed palette cycled by ordinal position within a
// single linking batch. A tag keeps the color it was created with;
// later batches never repaint it.
var tagColors = []string{
	"bg-blue-500",
	"bg-green-500",
	"bg-yellow-500",
	"bg-pink-500",
	"bg-purple-500",
	"bg-orange-500",
	"bg-red-500",
	"bg-teal-500",
	"bg-indigo-500",
	"bg-cyan-500",
}

func normalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// LinkFailure records one tag that could not be linked. Siblings in
// the same batch are unaffected.
type LinkFailure struct {
	Name string
	Err  error
}

type tagPlan struct {
	Name  string
	Color string
}

// planTagBatch normalizes a batch of tag names, drops empties and
// in-batch duplicates (first occurrence wins), and assigns each
// survivor a palette color by its ordinal position in the batch.
func planTagBatch(names []string) []tagPlan {
	var plans []tagPlan
	seen := make(map[string]bool)

	for _, raw := range names {
		name := normalizeTagName(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		plans = append(plans, tagPlan{
			Name:  name,
			Color: tagColors[len(plans)%len(tagColors)],
		})
	}

	return plans
}

// LinkTags registers each named tag and associates it with the
// question. Every tag is attempted independently and the failures are
// returned as a list, so one bad tag never aborts the rest of the
// batch.
func (s *Service) LinkTags(ctx context.Context, questionID int, names []string) []LinkFailure {
	var failures []LinkFailure

	for _, plan := range planTagBatch(names) {
		if err := s.linkTag(ctx, questionID, plan.Name, plan.Color); err != nil {
			failures = append(failures, LinkFailure{Name: plan.Name, Err: err})
		}
	}

	return failures
}

func (s *Service) linkTag(ctx context.Context, questionID int, name, color string) error {
	tag := models.Tag{Name: name, Color: color}

	// Insert-or-skip keyed on the unique name; an existing tag keeps
	// its stored color (first writer wins).
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&tag)
	if res.Error != nil {
		return storeError("failed to upsert tag", res.Error)
	}
	if res.RowsAffected == 0 {
		if err := s.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
			return storeError("failed to fetch existing tag", err)
		}
	}

	link := models.QuestionTag{QuestionID: questionID, TagID: tag.ID}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
	if err != nil {
		return storeError("failed to link tag", err)
	}

	return nil
}

// TagsFor returns the distinct tag names linked to a question, an
// empty slice when there are none.
func (s *Service) TagsFor(ctx context.Context, questionID int) ([]string, error) {
	tags := []string{}
	err := s.db.WithContext(ctx).Model(&models.QuestionTag{}).
		Joins("JOIN tags ON tags.id = question_tags.tag_id").
		Where("question_tags.question_id = ?", questionID).
		Distinct().
		Order("tags.name ASC").
		Pluck("tags.name", &tags).Error
	if err != nil {
		return nil, storeError("failed to fetch tags", err)
	}
	return tags, nil
}

// TagUsage is one row of the popular-tags listing.
type TagUsage struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Count int    `gorm:"column:usage_count" json:"count"`
}

// ListTags returns tags ordered by how many questions use them,
// busiest first, name as the tie-break.
func (s *Service) ListTags(ctx context.Context, limit int) ([]TagUsage, error) {
	if limit <= 0 {
		limit = 10
	}

	rows := []TagUsage{}
	err := s.db.WithContext(ctx).Model(&models.Tag{}).
		Select("tags.id, tags.name, tags.color, COUNT(question_tags.question_id) AS usage_count").
		Joins("LEFT JOIN question_tags ON question_tags.tag_id = tags.id").
		Group("tags.id, tags.name, tags.color").
		Order("usage_count DESC, tags.name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, storeError("failed to list tags", err)
	}
	return rows, nil
}

// TagDetail is a tag plus the questions linked to it.
type TagDetail struct {
	Tag       models.Tag               `json:"tag"`
	Questions []models.QuestionSummary `json:"questions"`
}

// GetTagDetail returns a tag and its questions, newest first, each
// annotated with the usual aggregates.
func (s *Service) GetTagDetail(ctx context.Context, tagID int) (TagDetail, error) {
	var detail TagDetail

	if err := s.db.WithContext(ctx).First(&detail.Tag, tagID).Error; err != nil {
		if isRecordNotFound(err) {
			return detail, notFound("tag not found")
		}
		return detail, storeError("failed to fetch tag", err)
	}

	var questions []models.Question
	err := s.db.WithContext(ctx).
		Joins("JOIN question_tags ON question_tags.question_id = questions.id").
		Where("question_tags.tag_id = ?", tagID).
		Order("questions.created_at DESC, questions.id ASC").
		Find(&questions).Error
	if err != nil {
		return detail, storeError("failed to fetch tag questions", err)
	}

	detail.Questions = make([]models.QuestionSummary, 0, len(questions))
	for _, q := range questions {
		summary, err := s.summarize(ctx, q)
		if err != nil {
			return detail, err
		}
		detail.Questions = append(detail.Questions, summary)
	}

	return detail, nil
}
