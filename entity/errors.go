package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConflict               = errors.New("conflict")
	ErrNotFound               = errors.New("not found")
	ErrExtractionEmpty        = errors.New("ticket data could not be extracted")
	ErrPassCreationInProgress = errors.New("pass creation already in progress")
)

// ConfigurationError is returned when the provider credentials are not set.
type ConfigurationError struct {
	Missing []string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("missing PassSource settings: %s", strings.Join(e.Missing, ", "))
}

// NetworkError wraps a transport level failure, timeouts included.
type NetworkError struct {
	Op  string
	Err error
}

func (e NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %s", e.Op, e.Err)
}

func (e NetworkError) Unwrap() error {
	return e.Err
}

type ApiStatusError struct {
	Op         string
	StatusCode int
}

func (e ApiStatusError) Error() string {
	return fmt.Sprintf("unexpected status code for %s: %d", e.Op, e.StatusCode)
}

type ResponseParseError struct {
	Op  string
	Err error
}

func (e ResponseParseError) Error() string {
	return fmt.Sprintf("%s: could not parse response: %s", e.Op, e.Err)
}

func (e ResponseParseError) Unwrap() error {
	return e.Err
}

// ApiLogicError means the provider answered 200 but did not report a usable result.
type ApiLogicError struct {
	Op      string
	Message string
}

func (e ApiLogicError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

const (
	ErrorKindConfiguration = "configuration"
	ErrorKindExtraction    = "extraction_empty"
	ErrorKindInProgress    = "in_progress"
	ErrorKindNetwork       = "network"
	ErrorKindApiStatus     = "api_status"
	ErrorKindResponseParse = "response_parse"
	ErrorKindApiLogic      = "api_logic"
	ErrorKindInternal      = "internal"
)

// ErrorKind returns a stable label for err, used in logs, metrics and failure events.
func ErrorKind(err error) string {
	var (
		configErr ConfigurationError
		netErr    NetworkError
		statusErr ApiStatusError
		parseErr  ResponseParseError
		logicErr  ApiLogicError
	)

	switch {
	case errors.As(err, &configErr):
		return ErrorKindConfiguration
	case errors.Is(err, ErrExtractionEmpty):
		return ErrorKindExtraction
	case errors.Is(err, ErrPassCreationInProgress):
		return ErrorKindInProgress
	case errors.As(err, &netErr):
		return ErrorKindNetwork
	case errors.As(err, &statusErr):
		return ErrorKindApiStatus
	case errors.As(err, &parseErr):
		return ErrorKindResponseParse
	case errors.As(err, &logicErr):
		return ErrorKindApiLogic
	default:
		return ErrorKindInternal
	}
}
