package model

// AnsweredQuestion 考试记录中的一道答题明细
// Topic 冗余存储在行上，统计时无需回表取主题
type AnsweredQuestion struct {
	ID            uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	AttemptID     uint   `gorm:"index;not null" json:"attempt_id"`
	QuestionText  string `gorm:"type:text" json:"question_text"`
	YourAnswer    string `gorm:"size:500" json:"your_answer"`
	CorrectAnswer string `gorm:"size:500" json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Topic         string `gorm:"size:100;index" json:"topic"`
}

func (AnsweredQuestion) TableName() string {
	return "answered_questions"
}
