package service

import (
	"bytes"
	"context"
	"encoding/json"
	"exam_app_backend/internal/config"
	"exam_app_backend/internal/util"
	"exam_app_backend/pkg/logger"
	"exam_app_backend/pkg/monitoring"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const correctKeySuffix = "_correct"

// RawQuestion quizapi.io 返回的原始题目结构
type RawQuestion struct {
	ID                     int               `json:"id"`
	Question               string            `json:"question"`
	Answers                json.RawMessage   `json:"answers"`
	MultipleCorrectAnswers string            `json:"multiple_correct_answers"`
	CorrectAnswers         map[string]string `json:"correct_answers"`
}

// FormattedQuestion 规范化后返回给前端的题目结构
type FormattedQuestion struct {
	ID               int      `json:"id"`
	QuestionText     string   `json:"question_text"`
	Options          []string `json:"options"`
	IsMultipleChoice bool     `json:"isMultipleChoice"`
	CorrectAnswers   []string `json:"correctAnswers"`
}

type QuizAPIService struct {
	Rdb        *redis.Client
	HTTPClient *http.Client

	mu       sync.RWMutex
	baseURL  string
	apiKey   string
	cacheTTL time.Duration
}

func NewQuizAPIService(cfg *config.Config, rdb *redis.Client) *QuizAPIService {
	timeout := cfg.QuizAPI.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &QuizAPIService{
		Rdb:        rdb,
		HTTPClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.QuizAPI.BaseURL,
		apiKey:     cfg.QuizAPI.APIKey,
		cacheTTL:   cfg.QuizAPI.CacheTTL,
	}
}

// ApplyConfig 配置热更新回调，替换上游地址和密钥
func (s *QuizAPIService) ApplyConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseURL = cfg.QuizAPI.BaseURL
	s.apiKey = cfg.QuizAPI.APIKey
	s.cacheTTL = cfg.QuizAPI.CacheTTL
}

// FetchQuestions 拉取并规范化上游题目，密钥缺失时不发起请求
func (s *QuizAPIService) FetchQuestions(ctx context.Context, topic, difficulty string, limit int) ([]FormattedQuestion, error) {
	s.mu.RLock()
	baseURL, apiKey, cacheTTL := s.baseURL, s.apiKey, s.cacheTTL
	s.mu.RUnlock()

	if apiKey == "" {
		return nil, util.ErrAPIKeyMissing
	}

	if limit <= 0 {
		limit = 5
	}

	cacheKey := fmt.Sprintf("quizapi:raw:%s:%s:%d", topic, difficulty, limit)
	if raw, ok := s.cacheGet(ctx, cacheKey); ok {
		return NormalizeQuestions(raw), nil
	}

	raw, err := s.fetchRaw(ctx, baseURL, apiKey, topic, difficulty, limit)
	if err != nil {
		monitoring.UpstreamFetchCounter.WithLabelValues("error").Inc()
		return nil, err
	}
	monitoring.UpstreamFetchCounter.WithLabelValues("success").Inc()

	s.cacheSet(ctx, cacheKey, raw, cacheTTL)
	return NormalizeQuestions(raw), nil
}

func (s *QuizAPIService) fetchRaw(ctx context.Context, baseURL, apiKey, topic, difficulty string, limit int) ([]byte, error) {
	params := url.Values{}
	params.Set("apiKey", apiKey)
	params.Set("limit", strconv.Itoa(limit))
	if topic != "" {
		params.Set("tags", topic)
	}
	if difficulty != "" {
		params.Set("difficulty", difficulty)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrUpstreamFailure, err)
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", util.ErrUpstreamFailure, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrUpstreamFailure, err)
	}
	return raw, nil
}

func (s *QuizAPIService) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.Rdb == nil {
		return nil, false
	}
	raw, err := s.Rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Debug("quizapi cache read failed", zap.Error(err))
		}
		return nil, false
	}
	return raw, true
}

func (s *QuizAPIService) cacheSet(ctx context.Context, key string, raw []byte, ttl time.Duration) {
	if s.Rdb == nil || ttl <= 0 {
		return
	}
	if err := s.Rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		logger.Log.Debug("quizapi cache write failed", zap.Error(err))
	}
}

// NormalizeQuestions 将原始负载规范化为前端题目列表
// 顶层不是数组时返回空列表；没有任何正确答案的题目原样保留
func NormalizeQuestions(raw []byte) []FormattedQuestion {
	var records []RawQuestion
	if err := json.Unmarshal(raw, &records); err != nil {
		return []FormattedQuestion{}
	}

	formatted := make([]FormattedQuestion, 0, len(records))
	for _, q := range records {
		pairs, err := decodeOrderedAnswers(q.Answers)
		if err != nil {
			logger.Log.Warn("skipping question with malformed answers", zap.Int("id", q.ID), zap.Error(err))
			continue
		}

		options := make([]string, 0, len(pairs))
		correct := make([]string, 0, 1)
		for _, p := range pairs {
			if p.Value == nil {
				continue
			}
			options = append(options, *p.Value)
			// 值必须是字符串 "true" 才算正确选项
			if q.CorrectAnswers[p.Key+correctKeySuffix] == "true" {
				correct = append(correct, *p.Value)
			}
		}

		formatted = append(formatted, FormattedQuestion{
			ID:               q.ID,
			QuestionText:     q.Question,
			Options:          options,
			IsMultipleChoice: q.MultipleCorrectAnswers == "true",
			CorrectAnswers:   correct,
		})
	}
	return formatted
}

type answerOption struct {
	Key   string
	Value *string
}

// decodeOrderedAnswers 按 JSON 对象自身的键顺序解码 answers，保留 null 值
func decodeOrderedAnswers(raw json.RawMessage) ([]answerOption, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("answers is not an object")
	}

	var pairs []answerOption
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in answers", keyTok)
		}

		var value *string
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		pairs = append(pairs, answerOption{Key: key, Value: value})
	}
	return pairs, nil
}
