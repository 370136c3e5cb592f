package models

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrDuplicateUser        = errors.New("user already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrProjectNotFound      = errors.New("project not found")
	ErrFileNotFound         = errors.New("file not found")
	ErrJobNotFound          = errors.New("job not found")
	ErrApiKeyNotFound       = errors.New("api key not found")
	ErrDuplicateApiKey      = errors.New("api key already exists")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrNoJobAvailable       = errors.New("no job available to claim")
)
