package fontmirror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure of the mirroring pipeline.
type Kind int

const (
	KindConfig     Kind = iota + 1 // bad or missing input, reported before any network activity
	KindTransport                  // HTTP request failed or returned a non-2xx status
	KindFilesystem                 // reading or writing local files failed
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "configuration"
	case KindTransport:
		return "transport"
	case KindFilesystem:
		return "filesystem"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Sentinels for errors.Is checks against an *Error's Kind.
var (
	ErrConfig     = errors.New("configuration error")
	ErrTransport  = errors.New("transport error")
	ErrFilesystem = errors.New("filesystem error")
)

// Error is returned by Run and the query helpers.
type Error struct {
	Kind Kind
	Op   string // pipeline stage, e.g. "fetch css"
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel matching e.Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfig:
		return e.Kind == KindConfig
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrFilesystem:
		return e.Kind == KindFilesystem
	}
	return false
}

func configError(op string, err error) error {
	return &Error{Kind: KindConfig, Op: op, Err: err}
}

func transportError(op string, err error) error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

func filesystemError(op string, err error) error {
	return &Error{Kind: KindFilesystem, Op: op, Err: err}
}
