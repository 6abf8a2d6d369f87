package models

import "time"

type Question struct {
	ID             int       `gorm:"primaryKey" json:"id"`
	Title          string    `gorm:"not null" json:"title"`
	Body           string    `json:"body,omitempty"`
	UserID         int       `json:"user_id"`
	User           User      `gorm:"foreignKey:UserID" json:"user"`
	ViewsCount     int       `gorm:"default:0" json:"views_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

type CreateQuestionRequest struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	UserEmail string   `json:"userEmail"`
}

// QuestionSummary is the listing row shape: the question plus the
// aggregates computed read-side (votes, answers, tags).
type QuestionSummary struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Views     int       `json:"views"`
	Answers   int       `json:"answers"`
	Votes     int       `json:"votes"`
	Tags      []string  `json:"tags"`
	Timestamp time.Time `json:"timestamp"`
}
