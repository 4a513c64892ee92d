package service

import (
	"exam_app_backend/internal/model"
	"exam_app_backend/internal/repository"
	"exam_app_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

// DefaultTopic 未指定主题时答题明细行上的分组键
const DefaultTopic = "Mixed"

// examTopics 固定的可选主题列表，与数据无关
var examTopics = []string{"Linux", "DevOps", "Code", "JavaScript", "Python", "HTML", "MySQL"}

type ExamService struct {
	Repo *repository.ExamRepository
}

func NewExamService(repo *repository.ExamRepository) *ExamService {
	return &ExamService{Repo: repo}
}

type DetailedResultReq struct {
	QuestionText     string   `json:"question_text" binding:"required"`
	YourAnswer       string   `json:"your_answer"`
	CorrectAnswer    string   `json:"correct_answer"`
	IsCorrect        bool     `json:"is_correct"`
	IsMultipleChoice bool     `json:"isMultipleChoice"` // 负载中存在但不入库
	Options          []string `json:"options"`          // 同上
}

type SaveResultReq struct {
	Topic           *string             `json:"topic"`
	Score           int                 `json:"score"`
	Total           int                 `json:"total"`
	DetailedResults []DetailedResultReq `json:"detailed_results"`
}

type TopicStat struct {
	Topic     string `json:"topic"`
	Correct   int    `json:"correct"`
	Incorrect int    `json:"incorrect"`
	Total     int    `json:"total"`
}

type HistoryResponse struct {
	Attempts   []model.ExamAttempt `json:"attempts"`
	TopicStats []TopicStat         `json:"topic_stats"`
}

// Topics 可选主题列表，固定顺序
func (s *ExamService) Topics() []string {
	return examTopics
}

// SaveResult 保存一次考试记录及其答题明细，整体原子写入
// 分数和对错标记按客户端提交值入库，服务端不重新计算
func (s *ExamService) SaveResult(userID uint, req SaveResultReq) (*SaveResultReq, error) {
	rowTopic := DefaultTopic
	if req.Topic != nil && *req.Topic != "" {
		rowTopic = *req.Topic
	}

	attempt := &model.ExamAttempt{
		UserID:         userID,
		Topic:          req.Topic,
		Score:          req.Score,
		TotalQuestions: req.Total,
	}

	answers := make([]model.AnsweredQuestion, 0, len(req.DetailedResults))
	for _, detail := range req.DetailedResults {
		answers = append(answers, model.AnsweredQuestion{
			QuestionText:  detail.QuestionText,
			YourAnswer:    detail.YourAnswer,
			CorrectAnswer: detail.CorrectAnswer,
			IsCorrect:     detail.IsCorrect,
			Topic:         rowTopic,
		})
	}

	if err := s.Repo.SaveAttempt(attempt, answers); err != nil {
		return nil, err
	}
	return &req, nil
}

// GetHistory 返回考试记录列表和按主题聚合的正确率统计
func (s *ExamService) GetHistory(userID uint) (*HistoryResponse, error) {
	attempts, err := s.Repo.ListAttemptsByUser(userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.Repo.TopicStatsByUser(userID)
	if err != nil {
		return nil, err
	}

	stats := make([]TopicStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, TopicStat{
			Topic:     row.Topic,
			Correct:   row.Correct,
			Incorrect: row.Total - row.Correct,
			Total:     row.Total,
		})
	}

	return &HistoryResponse{
		Attempts:   attempts,
		TopicStats: stats,
	}, nil
}

// GetAttemptDetail 返回属于该用户的考试记录明细
// 别人的记录ID与不存在的ID对调用方不可区分
func (s *ExamService) GetAttemptDetail(userID, attemptID uint) ([]model.AnsweredQuestion, error) {
	attempt, err := s.Repo.FindAttemptByIDForUser(attemptID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}

	return s.Repo.ListAnswersByAttempt(attempt.ID)
}
