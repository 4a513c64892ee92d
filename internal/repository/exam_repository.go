package repository

import (
	"exam_app_backend/internal/model"

	"gorm.io/gorm"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

// SaveAttempt 在同一个事务中写入考试记录和全部答题明细，任一失败整体回滚
func (r *ExamRepository) SaveAttempt(attempt *model.ExamAttempt, answers []model.AnsweredQuestion) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}

		if len(answers) == 0 {
			return nil
		}

		for i := range answers {
			answers[i].AttemptID = attempt.ID
		}
		return tx.Create(&answers).Error
	})
}

// ListAttemptsByUser 按提交时间倒序返回用户的全部考试记录，时间相同按ID倒序
func (r *ExamRepository) ListAttemptsByUser(userID uint) ([]model.ExamAttempt, error) {
	var attempts []model.ExamAttempt
	err := r.DB.Where("user_id = ?", userID).
		Order("submitted_at DESC, id DESC").
		Find(&attempts).Error
	return attempts, err
}

type TopicStatRow struct {
	Topic   string `json:"topic"`
	Total   int    `json:"total"`
	Correct int    `json:"correct"`
}

// TopicStatsByUser 按主题聚合用户的答题明细，只统计该用户自己的考试记录
func (r *ExamRepository) TopicStatsByUser(userID uint) ([]TopicStatRow, error) {
	var rows []TopicStatRow
	err := r.DB.Table("answered_questions aq").
		Select("aq.topic as topic, COUNT(aq.id) as total, COALESCE(SUM(CASE WHEN aq.is_correct THEN 1 ELSE 0 END), 0) as correct").
		Joins("JOIN exam_attempts a ON aq.attempt_id = a.id").
		Where("a.user_id = ?", userID).
		Group("aq.topic").
		Scan(&rows).Error
	return rows, err
}

// FindAttemptByIDForUser 只返回属于该用户的考试记录，别人的记录等同于不存在
func (r *ExamRepository) FindAttemptByIDForUser(attemptID, userID uint) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	err := r.DB.Where("id = ? AND user_id = ?", attemptID, userID).First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *ExamRepository) ListAnswersByAttempt(attemptID uint) ([]model.AnsweredQuestion, error) {
	var answers []model.AnsweredQuestion
	err := r.DB.Where("attempt_id = ?", attemptID).Order("id asc").Find(&answers).Error
	return answers, err
}
