package models

import "time"

// Tag names are unique; the color is assigned once at creation from a
// fixed palette and never rewritten afterwards.
type Tag struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// QuestionTag joins questions and tags. The pair is unique, so
// re-linking the same tag to the same question is a no-op.
type QuestionTag struct {
	ID         int      `gorm:"primaryKey" json:"id"`
	QuestionID int      `gorm:"uniqueIndex:idx_question_tag" json:"question_id"`
	TagID      int      `gorm:"uniqueIndex:idx_question_tag" json:"tag_id"`
	Question   Question `gorm:"foreignKey:QuestionID" json:"-"`
	Tag        Tag      `gorm:"foreignKey:TagID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
