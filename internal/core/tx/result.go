package tx

import (
	"errors"
	"fmt"
)

// Result represents a request result code
type Result int

// Result codes, organized by category: tes, tef, tel, tem
const (
	// tesSUCCESS: applied
	TesSUCCESS Result = 0

	// tefFAILURE and related codes (-199 to -100)
	// Request failed and was not applied
	TefFAILURE  Result = -199
	TefALREADY  Result = -198
	TefBAD_AUTH Result = -196
	TefINTERNAL Result = -192

	// telLOCAL_ERROR and related codes (-399 to -300)
	// Local error, request not queued
	TelLOCAL_ERROR        Result = -399
	TelBAD_PUBLIC_KEY     Result = -396
	TelCAN_NOT_QUEUE_FULL Result = -387

	// temMALFORMED and related codes (-299 to -200)
	// Malformed request
	TemMALFORMED       Result = -299
	TemBAD_AMOUNT      Result = -298
	TemBAD_SIGNATURE   Result = -282
	TemBAD_SRC_ACCOUNT Result = -281
	TemINVALID         Result = -277
	TemUNKNOWN         Result = -264
)

// String returns the string representation of the result code
func (r Result) String() string {
	switch r {
	case TesSUCCESS:
		return "tesSUCCESS"
	case TefFAILURE:
		return "tefFAILURE"
	case TefALREADY:
		return "tefALREADY"
	case TefBAD_AUTH:
		return "tefBAD_AUTH"
	case TefINTERNAL:
		return "tefINTERNAL"
	case TelLOCAL_ERROR:
		return "telLOCAL_ERROR"
	case TelBAD_PUBLIC_KEY:
		return "telBAD_PUBLIC_KEY"
	case TelCAN_NOT_QUEUE_FULL:
		return "telCAN_NOT_QUEUE_FULL"
	case TemMALFORMED:
		return "temMALFORMED"
	case TemBAD_AMOUNT:
		return "temBAD_AMOUNT"
	case TemBAD_SIGNATURE:
		return "temBAD_SIGNATURE"
	case TemBAD_SRC_ACCOUNT:
		return "temBAD_SRC_ACCOUNT"
	case TemINVALID:
		return "temINVALID"
	case TemUNKNOWN:
		return "temUNKNOWN"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// IsSuccess returns true if the request was applied
func (r Result) IsSuccess() bool {
	return r == TesSUCCESS
}

// IsTef returns true if this is a tef (failure) code
func (r Result) IsTef() bool {
	return r >= -199 && r <= -100
}

// IsTel returns true if this is a tel (local error) code
func (r Result) IsTel() bool {
	return r >= -399 && r <= -300
}

// IsTem returns true if this is a tem (malformed) code
func (r Result) IsTem() bool {
	return r >= -299 && r <= -200
}

// Message returns a human-readable message for the result
func (r Result) Message() string {
	switch r {
	case TesSUCCESS:
		return "The request was applied."
	case TefALREADY:
		return "The exact request was already applied."
	case TefBAD_AUTH:
		return "The signer is not registered."
	case TefINTERNAL:
		return "Internal error."
	case TelBAD_PUBLIC_KEY:
		return "Public key is not valid."
	case TelCAN_NOT_QUEUE_FULL:
		return "Submission queue is full."
	case TemMALFORMED:
		return "Malformed request."
	case TemBAD_SIGNATURE:
		return "Malformed: Bad signature."
	case TemBAD_SRC_ACCOUNT:
		return "Malformed: Bad source account."
	case TemUNKNOWN:
		return "The request type is unknown."
	default:
		return r.String()
	}
}

// ResultError is a validation error that carries its result code.
type ResultError struct {
	Code Result
	Msg  string
}

func (e *ResultError) Error() string {
	return e.Code.String() + ": " + e.Msg
}

// Errorf builds a ResultError.
func Errorf(code Result, format string, args ...any) error {
	return &ResultError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// ResultOf extracts the code carried by err, or fallback.
func ResultOf(err error, fallback Result) Result {
	if err == nil {
		return TesSUCCESS
	}
	var re *ResultError
	if errors.As(err, &re) {
		return re.Code
	}
	return fallback
}
