package qa

import (
	"context"
	"sync"
	"testing"
	"time"

	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kurodate/qa-board/backend/internal/models"
)

var (
	testDBOnce sync.Once
	testDB     *gorm.DB
	testDBErr  error
)

// newTestService starts one shared throwaway postgres container for
// the package and hands back a service over truncated tables.
func newTestService(t *testing.T) *Service {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	testDBOnce.Do(func() {
		ctx := context.Background()

		ctr, err := pgcontainer.Run(ctx, "postgres:16-alpine",
			pgcontainer.WithDatabase("qa_board_test"),
			pgcontainer.WithUsername("qa"),
			pgcontainer.WithPassword("qa"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			testDBErr = err
			return
		}

		dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			testDBErr = err
			return
		}

		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			testDBErr = err
			return
		}

		testDBErr = db.AutoMigrate(
			&models.User{},
			&models.Question{},
			&models.Answer{},
			&models.Tag{},
			&models.QuestionTag{},
			&models.Vote{},
		)
		testDB = db
	})

	if testDBErr != nil {
		t.Fatalf("test database setup failed: %v", testDBErr)
	}

	err := testDB.Exec(
		"TRUNCATE votes, question_tags, tags, answers, questions, users RESTART IDENTITY CASCADE",
	).Error
	if err != nil {
		t.Fatalf("failed to reset tables: %v", err)
	}

	return New(testDB)
}

func mustPostQuestion(t *testing.T, s *Service, identifier, title string, tags ...string) int {
	t.Helper()
	id, failures, err := s.PostQuestion(context.Background(), identifier, title, "body of "+title, tags)
	if err != nil {
		t.Fatalf("PostQuestion(%q): %v", title, err)
	}
	if len(failures) > 0 {
		t.Fatalf("PostQuestion(%q) tag failures: %v", title, failures)
	}
	return id
}

func mustApplyVote(t *testing.T, s *Service, identifier, votableType string, votableID, voteType int) int {
	t.Helper()
	sum, err := s.ApplyVote(context.Background(), identifier, votableType, votableID, voteType)
	if err != nil {
		t.Fatalf("ApplyVote(%s, %s/%d, %d): %v", identifier, votableType, votableID, voteType, err)
	}
	return sum
}

func voteRowCount(t *testing.T, s *Service, votableType string, votableID int) int {
	t.Helper()
	var count int64
	err := s.db.Model(&models.Vote{}).
		Where("votable_type = ? AND votable_id = ?", votableType, votableID).
		Count(&count).Error
	if err != nil {
		t.Fatalf("counting votes: %v", err)
	}
	return int(count)
}

func TestResolveUserIdempotent(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	first, err := s.ResolveUser(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := s.ResolveUser(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first != second {
		t.Errorf("same identifier resolved to two ids: %d and %d", first, second)
	}

	var count int64
	s.db.Model(&models.User{}).Where("identifier = ?", "alice@example.com").Count(&count)
	if count != 1 {
		t.Errorf("expected 1 user row, got %d", count)
	}

	if _, err := s.ResolveUser(ctx, "  "); !IsKind(err, KindInvalidInput) {
		t.Errorf("blank identifier: got %v, want invalid_input", err)
	}
}

func TestApplyVoteToggleIdempotence(t *testing.T) {
	s := newTestService(t)
	q := mustPostQuestion(t, s, "author@example.com", "toggle me")

	// Same direction three times: create, retract, re-create.
	sums := []int{
		mustApplyVote(t, s, "u1@example.com", models.VotableQuestion, q, 1),
		mustApplyVote(t, s, "u1@example.com", models.VotableQuestion, q, 1),
		mustApplyVote(t, s, "u1@example.com", models.VotableQuestion, q, 1),
	}

	want := []int{1, 0, 1}
	for i := range want {
		if sums[i] != want[i] {
			t.Fatalf("toggle sums = %v, want %v", sums, want)
		}
	}
}

func TestApplyVoteDirectionFlip(t *testing.T) {
	s := newTestService(t)
	q := mustPostQuestion(t, s, "author@example.com", "flip me")
	answer, err := s.PostAnswer(context.Background(), "answerer@example.com", q, "an answer")
	if err != nil {
		t.Fatalf("PostAnswer: %v", err)
	}

	if sum := mustApplyVote(t, s, "u1@example.com", models.VotableAnswer, answer.ID, 1); sum != 1 {
		t.Fatalf("after upvote sum = %d, want 1", sum)
	}
	if rows := voteRowCount(t, s, models.VotableAnswer, answer.ID); rows != 1 {
		t.Fatalf("after upvote rows = %d, want 1", rows)
	}

	if sum := mustApplyVote(t, s, "u1@example.com", models.VotableAnswer, answer.ID, -1); sum != -1 {
		t.Fatalf("after flip sum = %d, want -1", sum)
	}
	if rows := voteRowCount(t, s, models.VotableAnswer, answer.ID); rows != 1 {
		t.Fatalf("after flip rows = %d, want 1", rows)
	}
}

func TestApplyVoteSumOrderIndependent(t *testing.T) {
	s := newTestService(t)
	q := mustPostQuestion(t, s, "author@example.com", "count me")

	votes := []struct {
		voter     string
		direction int
	}{
		{"a@example.com", 1},
		{"b@example.com", -1},
		{"c@example.com", 1},
		{"d@example.com", 1},
		{"e@example.com", -1},
	}

	var last int
	for _, v := range votes {
		last = mustApplyVote(t, s, v.voter, models.VotableQuestion, q, v.direction)
	}
	if last != 1 {
		t.Errorf("sum = %d, want 1 (three up, two down)", last)
	}
}

func TestApplyVoteValidation(t *testing.T) {
	s := newTestService(t)
	q := mustPostQuestion(t, s, "author@example.com", "guard me")
	ctx := context.Background()

	if _, err := s.ApplyVote(ctx, "u@example.com", models.VotableQuestion, q, 0); !IsKind(err, KindInvalidVoteDirection) {
		t.Errorf("direction 0: got %v, want invalid_vote_direction", err)
	}
	if _, err := s.ApplyVote(ctx, "u@example.com", models.VotableQuestion, q, 2); !IsKind(err, KindInvalidVoteDirection) {
		t.Errorf("direction 2: got %v, want invalid_vote_direction", err)
	}
	if _, err := s.ApplyVote(ctx, "u@example.com", "comment", q, 1); !IsKind(err, KindInvalidTarget) {
		t.Errorf("bad target type: got %v, want invalid_target", err)
	}
	if _, err := s.ApplyVote(ctx, "", models.VotableQuestion, q, 1); !IsKind(err, KindInvalidInput) {
		t.Errorf("empty identifier: got %v, want invalid_input", err)
	}
	if _, err := s.ApplyVote(ctx, "u@example.com", models.VotableQuestion, 99999, 1); !IsKind(err, KindNotFound) {
		t.Errorf("missing target: got %v, want not_found", err)
	}
}

func TestLinkTagsIdempotence(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	q := mustPostQuestion(t, s, "author@example.com", "tag me", "go", "rust")

	// Re-linking the same tags must not add rows.
	if failures := s.LinkTags(ctx, q, []string{"go", "rust"}); len(failures) > 0 {
		t.Fatalf("re-link failures: %v", failures)
	}

	var count int64
	s.db.Model(&models.QuestionTag{}).Where("question_id = ?", q).Count(&count)
	if count != 2 {
		t.Errorf("expected 2 link rows, got %d", count)
	}

	tags, err := s.TagsFor(ctx, q)
	if err != nil {
		t.Fatalf("TagsFor: %v", err)
	}
	if len(tags) != 2 {
		t.Errorf("TagsFor = %v, want 2 names", tags)
	}
}

func TestTagColorStability(t *testing.T) {
	s := newTestService(t)

	mustPostQuestion(t, s, "author@example.com", "first", "go")

	var tag models.Tag
	if err := s.db.Where("name = ?", "go").First(&tag).Error; err != nil {
		t.Fatalf("fetching tag: %v", err)
	}
	created := tag.Color
	if created != tagColors[0] {
		t.Fatalf("new tag color = %q, want %q", created, tagColors[0])
	}

	// "go" appears at a different ordinal here; its color must not move.
	mustPostQuestion(t, s, "author@example.com", "second", "python", "go")

	if err := s.db.Where("name = ?", "go").First(&tag).Error; err != nil {
		t.Fatalf("refetching tag: %v", err)
	}
	if tag.Color != created {
		t.Errorf("tag color changed from %q to %q on re-link", created, tag.Color)
	}
}

func TestListQuestionsSortVotesTieBreak(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	q1 := mustPostQuestion(t, s, "author@example.com", "first")
	q2 := mustPostQuestion(t, s, "author@example.com", "second")
	q3 := mustPostQuestion(t, s, "author@example.com", "third")

	// q1 and q2 tie at 3, q3 gets 1.
	for _, voter := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		mustApplyVote(t, s, voter, models.VotableQuestion, q1, 1)
		mustApplyVote(t, s, voter, models.VotableQuestion, q2, 1)
	}
	mustApplyVote(t, s, "a@x.com", models.VotableQuestion, q3, 1)

	rows, err := s.ListQuestions(ctx, SortVotes, "")
	if err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	got := []int{rows[0].ID, rows[1].ID, rows[2].ID}
	want := []int{q1, q2, q3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("votes sort order = %v, want %v", got, want)
		}
	}
}

func TestListQuestionsRecentAndActive(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	q1 := mustPostQuestion(t, s, "author@example.com", "older question")
	q2 := mustPostQuestion(t, s, "author@example.com", "newer question")

	// Separate the timestamps explicitly; inserts land too close together.
	base := time.Now().UTC()
	s.db.Model(&models.Question{}).Where("id = ?", q1).
		UpdateColumns(map[string]interface{}{"created_at": base.Add(-2 * time.Hour), "last_activity_at": base.Add(-2 * time.Hour)})
	s.db.Model(&models.Question{}).Where("id = ?", q2).
		UpdateColumns(map[string]interface{}{"created_at": base.Add(-time.Hour), "last_activity_at": base.Add(-time.Hour)})

	rows, err := s.ListQuestions(ctx, SortRecent, "")
	if err != nil {
		t.Fatalf("ListQuestions(recent): %v", err)
	}
	if rows[0].ID != q2 {
		t.Errorf("recent: first = %d, want %d", rows[0].ID, q2)
	}

	// Answering the older question makes it the most active.
	if _, err := s.PostAnswer(ctx, "helper@example.com", q1, "try this"); err != nil {
		t.Fatalf("PostAnswer: %v", err)
	}

	rows, err = s.ListQuestions(ctx, SortActive, "")
	if err != nil {
		t.Fatalf("ListQuestions(active): %v", err)
	}
	if rows[0].ID != q1 {
		t.Errorf("active: first = %d, want %d", rows[0].ID, q1)
	}
	if rows[0].Answers != 1 {
		t.Errorf("answer count = %d, want 1", rows[0].Answers)
	}
}

func TestListQuestionsSearch(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	mustPostQuestion(t, s, "author@example.com", "How to use goroutines")
	mustPostQuestion(t, s, "author@example.com", "Database indexes explained")

	rows, err := s.ListQuestions(ctx, SortRecent, "goroutine")
	if err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
	if len(rows) != 1 || rows[0].Title != "How to use goroutines" {
		t.Errorf("search result = %+v, want the goroutine question only", rows)
	}
}

func TestEmptyAggregates(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	q := mustPostQuestion(t, s, "author@example.com", "lonely question")

	sum, err := s.VoteSum(ctx, models.VotableQuestion, q)
	if err != nil {
		t.Fatalf("VoteSum: %v", err)
	}
	if sum != 0 {
		t.Errorf("VoteSum = %d, want 0", sum)
	}

	count, err := s.AnswerCount(ctx, q)
	if err != nil {
		t.Fatalf("AnswerCount: %v", err)
	}
	if count != 0 {
		t.Errorf("AnswerCount = %d, want 0", count)
	}

	tags, err := s.TagsFor(ctx, q)
	if err != nil {
		t.Fatalf("TagsFor: %v", err)
	}
	if tags == nil {
		t.Error("TagsFor returned nil, want empty slice")
	}
	if len(tags) != 0 {
		t.Errorf("TagsFor = %v, want empty", tags)
	}
}

func TestPostAnswerMissingQuestion(t *testing.T) {
	s := newTestService(t)

	_, err := s.PostAnswer(context.Background(), "u@example.com", 42, "into the void")
	if !IsKind(err, KindNotFound) {
		t.Errorf("got %v, want not_found", err)
	}
}

func TestPostQuestionValidation(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	if _, _, err := s.PostQuestion(ctx, "u@example.com", "", "body", nil); !IsKind(err, KindInvalidInput) {
		t.Errorf("empty title: got %v, want invalid_input", err)
	}
	if _, _, err := s.PostQuestion(ctx, "u@example.com", "title", "  ", nil); !IsKind(err, KindInvalidInput) {
		t.Errorf("blank body: got %v, want invalid_input", err)
	}
	if _, _, err := s.PostQuestion(ctx, "", "title", "body", nil); !IsKind(err, KindInvalidInput) {
		t.Errorf("missing identifier: got %v, want invalid_input", err)
	}
}

func TestGetQuestionDetail(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	q := mustPostQuestion(t, s, "asker@example.com", "detailed question", "go")
	a1, err := s.PostAnswer(ctx, "alice@example.com", q, "first answer")
	if err != nil {
		t.Fatalf("PostAnswer: %v", err)
	}
	a2, err := s.PostAnswer(ctx, "bob@example.com", q, "second answer")
	if err != nil {
		t.Fatalf("PostAnswer: %v", err)
	}

	mustApplyVote(t, s, "v1@example.com", models.VotableAnswer, a2.ID, 1)
	mustApplyVote(t, s, "v2@example.com", models.VotableAnswer, a2.ID, 1)
	mustApplyVote(t, s, "v1@example.com", models.VotableQuestion, q, 1)

	detail, err := s.GetQuestionDetail(ctx, q)
	if err != nil {
		t.Fatalf("GetQuestionDetail: %v", err)
	}

	if detail.Question.Votes != 1 {
		t.Errorf("question votes = %d, want 1", detail.Question.Votes)
	}
	if len(detail.Question.Tags) != 1 || detail.Question.Tags[0] != "go" {
		t.Errorf("tags = %v, want [go]", detail.Question.Tags)
	}
	if len(detail.Answers) != 2 {
		t.Fatalf("answers = %d, want 2", len(detail.Answers))
	}
	if detail.Answers[0].ID != a1.ID || detail.Answers[1].ID != a2.ID {
		t.Errorf("answers out of order: %d, %d", detail.Answers[0].ID, detail.Answers[1].ID)
	}
	if detail.Answers[1].Votes != 2 {
		t.Errorf("second answer votes = %d, want 2", detail.Answers[1].Votes)
	}
	if detail.Answers[0].Author != "alice" {
		t.Errorf("author = %q, want %q", detail.Answers[0].Author, "alice")
	}

	if _, err := s.GetQuestionDetail(ctx, 99999); !IsKind(err, KindNotFound) {
		t.Errorf("missing question: got %v, want not_found", err)
	}
}

func TestIncrementViews(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	q := mustPostQuestion(t, s, "author@example.com", "watch me")

	views, err := s.IncrementViews(ctx, q)
	if err != nil {
		t.Fatalf("IncrementViews: %v", err)
	}
	if views != 1 {
		t.Errorf("views = %d, want 1", views)
	}

	views, err = s.IncrementViews(ctx, q)
	if err != nil {
		t.Fatalf("IncrementViews: %v", err)
	}
	if views != 2 {
		t.Errorf("views = %d, want 2", views)
	}

	if _, err := s.IncrementViews(ctx, 99999); !IsKind(err, KindNotFound) {
		t.Errorf("missing question: got %v, want not_found", err)
	}
}

func TestListTagsPopularity(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	mustPostQuestion(t, s, "author@example.com", "q1", "go", "sql")
	mustPostQuestion(t, s, "author@example.com", "q2", "go")

	tags, err := s.ListTags(ctx, 10)
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(tags))
	}
	if tags[0].Name != "go" || tags[0].Count != 2 {
		t.Errorf("top tag = %+v, want go with count 2", tags[0])
	}
	if tags[1].Name != "sql" || tags[1].Count != 1 {
		t.Errorf("second tag = %+v, want sql with count 1", tags[1])
	}
}

func TestGetTagDetail(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	q := mustPostQuestion(t, s, "author@example.com", "tagged", "go")

	var tag models.Tag
	if err := s.db.Where("name = ?", "go").First(&tag).Error; err != nil {
		t.Fatalf("fetching tag: %v", err)
	}

	detail, err := s.GetTagDetail(ctx, tag.ID)
	if err != nil {
		t.Fatalf("GetTagDetail: %v", err)
	}
	if detail.Tag.Name != "go" {
		t.Errorf("tag name = %q, want go", detail.Tag.Name)
	}
	if len(detail.Questions) != 1 || detail.Questions[0].ID != q {
		t.Errorf("questions = %+v, want the one tagged question", detail.Questions)
	}

	if _, err := s.GetTagDetail(ctx, 99999); !IsKind(err, KindNotFound) {
		t.Errorf("missing tag: got %v, want not_found", err)
	}
}
