package model

import "errors"

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAuthFailed
	KindAuthRequired
	KindNotFound
	KindScanRejected
	KindInvalidRequest
	KindInternal
)

const (
	MsgInvalidCredentials = "Invalid username or password"
	MsgAuthRequired       = "Authentication required"
	MsgSchoolNotFound     = "School not found"
	MsgInvalidQRCode      = "Invalid QR code"
	MsgScanSucceeded      = "QR code scanned successfully"
)

var kindCodes = map[ErrorKind]string{
	KindAuthFailed:     "AUTH_FAILED",
	KindAuthRequired:   "AUTH_REQUIRED",
	KindNotFound:       "NOT_FOUND",
	KindScanRejected:   "SCAN_REJECTED",
	KindInvalidRequest: "INVALID_REQUEST",
	KindInternal:       "SERVER_ERROR",
}

// Code returns the wire code carried in {message, code} error payloads.
func (k ErrorKind) Code() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return "UNKNOWN"
}

func (k ErrorKind) String() string {
	return k.Code()
}

func KindFromCode(code string) ErrorKind {
	for kind, c := range kindCodes {
		if c == code {
			return kind
		}
	}
	return KindUnknown
}

type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrAuthRequired)
// works regardless of the message.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

var (
	ErrAuthFailed   = &Error{Kind: KindAuthFailed, Message: MsgInvalidCredentials}
	ErrAuthRequired = &Error{Kind: KindAuthRequired, Message: MsgAuthRequired}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: MsgSchoolNotFound}
)

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

func IsAuthRequired(err error) bool {
	return KindOf(err) == KindAuthRequired
}
