package errs

import "errors"

// auth failures
var (
	ErrAuthFailed         = errors.New("auth_failed, invalid api key")
	ErrAuthConfigNotFound = errors.New("auth_config_not_found")
)
