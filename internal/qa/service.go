// Package qa holds the board's core: identity resolution, the vote
// toggle engine, tag linking, and the read-side aggregates the
// handlers render. It talks to the store through an injected *gorm.DB
// and never touches the transport layer.
package qa

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kurodate/qa-board/backend/internal/models"
)

type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ResolveUser maps an opaque identifier (the proxy hands us an email)
// to a user id, creating the row on first sight. The upsert is keyed
// on the unique identifier column, so concurrent calls for the same
// identifier converge on one row.
func (s *Service) ResolveUser(ctx context.Context, identifier string) (int, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return 0, invalidInput("identifier is required")
	}

	user := models.User{Identifier: identifier}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "identifier"}},
		// No-op update so the insert still returns the existing id.
		DoUpdates: clause.Assignments(map[string]interface{}{"identifier": identifier}),
	}).Create(&user).Error
	if err != nil {
		return 0, storeError("failed to resolve user", err)
	}

	return user.ID, nil
}
