package model

import "encoding/json"

// Question 离线题库中的一道题，仅由 -seed 流程写入，考试流程不读取
type Question struct {
	BaseModel
	Topic         string          `gorm:"size:100;index" json:"topic"`
	QuestionText  string          `gorm:"type:text;not null" json:"question_text"`
	Options       json.RawMessage `gorm:"type:json;not null" json:"options"`
	CorrectAnswer string          `gorm:"size:255;not null" json:"correct_answer"`
}

func (Question) TableName() string {
	return "questions"
}
