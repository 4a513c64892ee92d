package database

import (
	"encoding/json"
	"exam_app_backend/internal/config"
	"exam_app_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
		cfg.Database.ParseTime,
	)

	logLevel := logger.Info
	if cfg.Server.Mode == "release" {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// release 模式下默认跳过迁移，需要 -migrate 显式开启
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Println("Database migration completed")
	}

	if cfg.SeedQuestionBank {
		if err := SeedQuestionBank(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Question{},
		&model.ExamAttempt{},
		&model.AnsweredQuestion{},
	)
}

type seedQuestion struct {
	Topic         string
	QuestionText  string
	Options       []string
	CorrectAnswer string
}

var sampleQuestions = []seedQuestion{
	{
		Topic:         "Geography",
		QuestionText:  "What is the capital of France?",
		Options:       []string{"Berlin", "Madrid", "Paris", "Rome"},
		CorrectAnswer: "Paris",
	},
	{
		Topic:         "Science",
		QuestionText:  "Which planet is known as the Red Planet?",
		Options:       []string{"Earth", "Mars", "Jupiter", "Venus"},
		CorrectAnswer: "Mars",
	},
	{
		Topic:         "Java",
		QuestionText:  "Which keyword is used to define a constant in Java?",
		Options:       []string{"const", "static", "final", "let"},
		CorrectAnswer: "final",
	},
	{
		Topic:         "Java",
		QuestionText:  "What is the default value of a boolean variable in Java?",
		Options:       []string{"true", "false", "0", "null"},
		CorrectAnswer: "false",
	},
}

// SeedQuestionBank 题库为空时写入示例题目，已有数据时不重复写入
func SeedQuestionBank(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Question{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Question bank already seeded, skipping")
		return nil
	}

	for _, q := range sampleQuestions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return err
		}
		question := &model.Question{
			Topic:         q.Topic,
			QuestionText:  q.QuestionText,
			Options:       options,
			CorrectAnswer: q.CorrectAnswer,
		}
		if err := db.Create(question).Error; err != nil {
			return err
		}
	}

	log.Printf("Question bank seeded with %d questions", len(sampleQuestions))
	return nil
}
