package util

import "errors"

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrUsernameRegistered = errors.New("该用户名已被注册")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAttemptNotFound    = errors.New("exam attempt not found")
	ErrAPIKeyMissing      = errors.New("quiz api key is not configured")
	ErrUpstreamFailure    = errors.New("failed to fetch questions from quiz api")
)
