package service

import (
	"errors"
	"reflect"
	"testing"

	"exam_app_backend/internal/model"
	"exam_app_backend/internal/repository"
	"exam_app_backend/internal/util"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestExamService(t *testing.T) (*ExamService, *gorm.DB) {
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
	return NewExamService(repository.NewExamRepository(db)), db
}

func TestTopics_ReturnsIdenticalOrderedList(t *testing.T) {
	s, _ := newTestExamService(t)

	first := s.Topics()
	second := s.Topics()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("topics not stable: %v vs %v", first, second)
	}
	if first[0] != "Linux" || len(first) != 7 {
		t.Fatalf("unexpected topics: %v", first)
	}
}

func TestSaveResult_JavaScenario(t *testing.T) {
	s, _ := newTestExamService(t)

	topic := "Java"
	req := SaveResultReq{
		Topic: &topic,
		Score: 1,
		Total: 2,
		DetailedResults: []DetailedResultReq{
			{QuestionText: "Q1", YourAnswer: "final", CorrectAnswer: "final", IsCorrect: true},
			{QuestionText: "Q2", YourAnswer: "let", CorrectAnswer: "final", IsCorrect: false},
		},
	}

	echo, err := s.SaveResult(10, req)
	if err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}
	if echo.Score != 1 || echo.Total != 2 || len(echo.DetailedResults) != 2 {
		t.Fatalf("echoed payload mangled: %+v", echo)
	}

	history, err := s.GetHistory(10)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(history.Attempts) != 1 {
		t.Fatalf("expected 1 attempt, got %d", len(history.Attempts))
	}
	if history.Attempts[0].Score != 1 || history.Attempts[0].TotalQuestions != 2 {
		t.Fatalf("unexpected attempt: %+v", history.Attempts[0])
	}

	if len(history.TopicStats) != 1 {
		t.Fatalf("expected 1 topic stat, got %v", history.TopicStats)
	}
	want := TopicStat{Topic: "Java", Total: 2, Correct: 1, Incorrect: 1}
	if history.TopicStats[0] != want {
		t.Fatalf("expected %+v, got %+v", want, history.TopicStats[0])
	}
}

func TestSaveResult_MissingTopicDefaultsToMixed(t *testing.T) {
	s, db := newTestExamService(t)

	req := SaveResultReq{
		Score: 1,
		Total: 1,
		DetailedResults: []DetailedResultReq{
			{QuestionText: "Q1", YourAnswer: "a", CorrectAnswer: "a", IsCorrect: true},
		},
	}
	if _, err := s.SaveResult(3, req); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	var rows []model.AnsweredQuestion
	db.Find(&rows)
	if len(rows) != 1 || rows[0].Topic != DefaultTopic {
		t.Fatalf("expected row topic %q, got %+v", DefaultTopic, rows)
	}

	history, err := s.GetHistory(3)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(history.TopicStats) != 1 || history.TopicStats[0].Topic != DefaultTopic {
		t.Fatalf("expected stats under %q, got %v", DefaultTopic, history.TopicStats)
	}
	// 记录本身的主题保持为空，只有明细行落默认值
	if history.Attempts[0].Topic != nil {
		t.Fatalf("expected attempt topic to stay nil, got %v", *history.Attempts[0].Topic)
	}
}

func TestGetHistory_StatsInvariants(t *testing.T) {
	s, db := newTestExamService(t)

	java := "Java"
	python := "Python"
	reqs := []SaveResultReq{
		{Topic: &java, Score: 2, Total: 3, DetailedResults: []DetailedResultReq{
			{QuestionText: "a", IsCorrect: true},
			{QuestionText: "b", IsCorrect: true},
			{QuestionText: "c", IsCorrect: false},
		}},
		{Topic: &python, Score: 0, Total: 2, DetailedResults: []DetailedResultReq{
			{QuestionText: "d", IsCorrect: false},
			{QuestionText: "e", IsCorrect: false},
		}},
	}
	for _, req := range reqs {
		if _, err := s.SaveResult(1, req); err != nil {
			t.Fatalf("SaveResult failed: %v", err)
		}
	}

	history, err := s.GetHistory(1)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}

	sum := 0
	for _, stat := range history.TopicStats {
		if stat.Total != stat.Correct+stat.Incorrect {
			t.Fatalf("invariant broken for %q: %+v", stat.Topic, stat)
		}
		sum += stat.Total
	}

	var rowCount int64
	db.Model(&model.AnsweredQuestion{}).Count(&rowCount)
	if int64(sum) != rowCount {
		t.Fatalf("sum of totals %d != answer rows %d", sum, rowCount)
	}
}

func TestGetAttemptDetail_OwnershipBoundary(t *testing.T) {
	s, _ := newTestExamService(t)

	topic := "Java"
	req := SaveResultReq{
		Topic: &topic,
		Score: 1,
		Total: 1,
		DetailedResults: []DetailedResultReq{
			{QuestionText: "Q1", YourAnswer: "x", CorrectAnswer: "x", IsCorrect: true},
		},
	}
	if _, err := s.SaveResult(1, req); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	history, err := s.GetHistory(1)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	attemptID := history.Attempts[0].ID

	answers, err := s.GetAttemptDetail(1, attemptID)
	if err != nil {
		t.Fatalf("owner detail lookup failed: %v", err)
	}
	if len(answers) != 1 || answers[0].QuestionText != "Q1" {
		t.Fatalf("unexpected answers: %+v", answers)
	}

	// 他人的记录ID必须与不存在的ID表现一致
	if _, err := s.GetAttemptDetail(2, attemptID); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound for foreign user, got %v", err)
	}
	if _, err := s.GetAttemptDetail(2, 9999); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound for missing id, got %v", err)
	}

	// 他人的考试不能出现在自己的历史里
	otherHistory, err := s.GetHistory(2)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(otherHistory.Attempts) != 0 || len(otherHistory.TopicStats) != 0 {
		t.Fatalf("user 2 should have empty history, got %+v", otherHistory)
	}
}
