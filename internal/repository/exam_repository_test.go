package repository

import (
	"testing"

	"exam_app_backend/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.ExamAttempt{}, &model.AnsweredQuestion{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }

func sampleAnswers(topic string, n, correct int) []model.AnsweredQuestion {
	answers := make([]model.AnsweredQuestion, 0, n)
	for i := 0; i < n; i++ {
		answers = append(answers, model.AnsweredQuestion{
			QuestionText:  "Q",
			YourAnswer:    "a",
			CorrectAnswer: "a",
			IsCorrect:     i < correct,
			Topic:         topic,
		})
	}
	return answers
}

func TestSaveAttempt_WritesAttemptAndAllAnswers(t *testing.T) {
	db := newTestDB(t)
	repo := NewExamRepository(db)

	attempt := &model.ExamAttempt{UserID: 1, Topic: strPtr("Java"), Score: 2, TotalQuestions: 3}
	if err := repo.SaveAttempt(attempt, sampleAnswers("Java", 3, 2)); err != nil {
		t.Fatalf("SaveAttempt failed: %v", err)
	}

	var attemptCount, answerCount int64
	db.Model(&model.ExamAttempt{}).Count(&attemptCount)
	db.Model(&model.AnsweredQuestion{}).Where("attempt_id = ?", attempt.ID).Count(&answerCount)

	if attemptCount != 1 {
		t.Fatalf("expected 1 attempt, got %d", attemptCount)
	}
	if answerCount != 3 {
		t.Fatalf("expected 3 answers referencing attempt, got %d", answerCount)
	}
}

func TestSaveAttempt_RollsBackAttemptWhenAnswersFail(t *testing.T) {
	db := newTestDB(t)
	repo := NewExamRepository(db)

	// 删除明细表，第二步写入必然失败，验证整体回滚
	if err := db.Migrator().DropTable(&model.AnsweredQuestion{}); err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}

	attempt := &model.ExamAttempt{UserID: 1, Score: 1, TotalQuestions: 1}
	if err := repo.SaveAttempt(attempt, sampleAnswers("Java", 1, 1)); err == nil {
		t.Fatalf("expected SaveAttempt to fail")
	}

	var attemptCount int64
	db.Model(&model.ExamAttempt{}).Count(&attemptCount)
	if attemptCount != 0 {
		t.Fatalf("expected orphan attempt to be rolled back, found %d", attemptCount)
	}
}

func TestListAttemptsByUser_NewestFirstWithStableTieBreak(t *testing.T) {
	db := newTestDB(t)
	repo := NewExamRepository(db)

	var ids []uint
	for i := 0; i < 3; i++ {
		attempt := &model.ExamAttempt{UserID: 7, Score: i, TotalQuestions: 5}
		if err := repo.SaveAttempt(attempt, nil); err != nil {
			t.Fatalf("SaveAttempt failed: %v", err)
		}
		ids = append(ids, attempt.ID)
	}
	// 其他用户的记录不应出现
	if err := repo.SaveAttempt(&model.ExamAttempt{UserID: 8, Score: 9, TotalQuestions: 9}, nil); err != nil {
		t.Fatalf("SaveAttempt failed: %v", err)
	}

	attempts, err := repo.ListAttemptsByUser(7)
	if err != nil {
		t.Fatalf("ListAttemptsByUser failed: %v", err)
	}
	if len(attempts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(attempts))
	}
	for i, attempt := range attempts {
		wantID := ids[len(ids)-1-i]
		if attempt.ID != wantID {
			t.Fatalf("position %d: expected attempt %d, got %d", i, wantID, attempt.ID)
		}
		if attempt.UserID != 7 {
			t.Fatalf("attempt %d belongs to user %d", attempt.ID, attempt.UserID)
		}
	}
}

func TestTopicStatsByUser_GroupsAndCountsOwnRowsOnly(t *testing.T) {
	db := newTestDB(t)
	repo := NewExamRepository(db)

	if err := repo.SaveAttempt(&model.ExamAttempt{UserID: 1, Topic: strPtr("Java"), Score: 1, TotalQuestions: 2}, sampleAnswers("Java", 2, 1)); err != nil {
		t.Fatalf("SaveAttempt failed: %v", err)
	}
	if err := repo.SaveAttempt(&model.ExamAttempt{UserID: 1, Score: 3, TotalQuestions: 3}, sampleAnswers("Mixed", 3, 3)); err != nil {
		t.Fatalf("SaveAttempt failed: %v", err)
	}
	// 用户2的同主题记录不能混入用户1的统计
	if err := repo.SaveAttempt(&model.ExamAttempt{UserID: 2, Topic: strPtr("Java"), Score: 5, TotalQuestions: 5}, sampleAnswers("Java", 5, 5)); err != nil {
		t.Fatalf("SaveAttempt failed: %v", err)
	}

	rows, err := repo.TopicStatsByUser(1)
	if err != nil {
		t.Fatalf("TopicStatsByUser failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 topics, got %d: %v", len(rows), rows)
	}

	byTopic := map[string]TopicStatRow{}
	total := 0
	for _, row := range rows {
		byTopic[row.Topic] = row
		total += row.Total
	}

	if got := byTopic["Java"]; got.Total != 2 || got.Correct != 1 {
		t.Fatalf("Java stats: expected total=2 correct=1, got %+v", got)
	}
	if got := byTopic["Mixed"]; got.Total != 3 || got.Correct != 3 {
		t.Fatalf("Mixed stats: expected total=3 correct=3, got %+v", got)
	}

	var rowCount int64
	db.Table("answered_questions aq").
		Joins("JOIN exam_attempts a ON aq.attempt_id = a.id").
		Where("a.user_id = ?", 1).Count(&rowCount)
	if int64(total) != rowCount {
		t.Fatalf("sum of topic totals %d != user answer rows %d", total, rowCount)
	}
}

func TestTopicStatsByUser_NoRowsYieldsNoTopics(t *testing.T) {
	db := newTestDB(t)
	repo := NewExamRepository(db)

	rows, err := repo.TopicStatsByUser(42)
	if err != nil {
		t.Fatalf("TopicStatsByUser failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no topic rows, got %v", rows)
	}
}

func TestFindAttemptByIDForUser_OtherUsersAttemptIsNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewExamRepository(db)

	attempt := &model.ExamAttempt{UserID: 1, Score: 1, TotalQuestions: 1}
	if err := repo.SaveAttempt(attempt, sampleAnswers("Mixed", 1, 1)); err != nil {
		t.Fatalf("SaveAttempt failed: %v", err)
	}

	if _, err := repo.FindAttemptByIDForUser(attempt.ID, 1); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}

	_, err := repo.FindAttemptByIDForUser(attempt.ID, 2)
	if err != gorm.ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound for foreign attempt, got %v", err)
	}

	_, err = repo.FindAttemptByIDForUser(9999, 2)
	if err != gorm.ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound for missing attempt, got %v", err)
	}
}

func TestListAnswersByAttempt_ReturnsOrderedRows(t *testing.T) {
	db := newTestDB(t)
	repo := NewExamRepository(db)

	answers := []model.AnsweredQuestion{
		{QuestionText: "Q1", YourAnswer: "final", CorrectAnswer: "final", IsCorrect: true, Topic: "Java"},
		{QuestionText: "Q2", YourAnswer: "let", CorrectAnswer: "final", IsCorrect: false, Topic: "Java"},
	}
	attempt := &model.ExamAttempt{UserID: 1, Topic: strPtr("Java"), Score: 1, TotalQuestions: 2}
	if err := repo.SaveAttempt(attempt, answers); err != nil {
		t.Fatalf("SaveAttempt failed: %v", err)
	}

	got, err := repo.ListAnswersByAttempt(attempt.ID)
	if err != nil {
		t.Fatalf("ListAnswersByAttempt failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(got))
	}
	if got[0].QuestionText != "Q1" || got[1].QuestionText != "Q2" {
		t.Fatalf("answers out of order: %q, %q", got[0].QuestionText, got[1].QuestionText)
	}
}
