package model

import (
	"time"
)

// ExamAttempt 一次完整的考试记录，创建后不再修改
type ExamAttempt struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	Topic          *string   `gorm:"size:100" json:"topic"`
	Score          int       `gorm:"not null" json:"score"`
	TotalQuestions int       `gorm:"not null" json:"total_questions"`
	SubmittedAt    time.Time `gorm:"autoCreateTime" json:"submitted_at"`
}

func (ExamAttempt) TableName() string {
	return "exam_attempts"
}
