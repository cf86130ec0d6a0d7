package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound             = errors.New("resource not found")
	ErrForbidden            = errors.New("forbidden")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrValidation           = errors.New("validation failed")
	ErrConflict             = errors.New("conflict")
	ErrNotPaid              = errors.New("order not paid")
	ErrNoLink               = errors.New("download link not issued yet")
	ErrLinkExpired          = errors.New("download link expired")
	ErrLimitReached         = errors.New("download limit reached")
	ErrLinkInactive         = errors.New("download link inactive")
	ErrProfileMissing       = errors.New("vendor profile missing")
	ErrNotApproved          = errors.New("vendor not approved")
	ErrNoBalance            = errors.New("no balance available")
	ErrPendingExists        = errors.New("pending payout exists")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrDefaultTenantMissing = errors.New("default tenant missing")
)

// Stable error codes exposed to clients
const (
	CodeNotFound        = "NOT_FOUND"
	CodeForbidden       = "FORBIDDEN"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeValidation      = "VALIDATION"
	CodeConflict        = "CONFLICT"
	CodeNotPaid         = "NOT_PAID"
	CodeNoLink          = "NO_LINK"
	CodeExpired         = "EXPIRED"
	CodeLimitReached    = "LIMIT_REACHED"
	CodeInactive        = "INACTIVE"
	CodeProfileMissing  = "PROFILE_MISSING"
	CodeNotApproved     = "NOT_APPROVED"
	CodeNoBalance       = "NO_BALANCE"
	CodePendingExists   = "PENDING_EXISTS"
	CodeInternalError   = "INTERNAL_ERROR"
)

type mapping struct {
	status  int
	code    string
	message string
}

// sentinel -> status, code and the buyer/vendor facing message
var mappings = []struct {
	err error
	mapping
}{
	{ErrNotFound, mapping{http.StatusNotFound, CodeNotFound, "Nicht gefunden"}},
	{ErrForbidden, mapping{http.StatusForbidden, CodeForbidden, "Keine Berechtigung"}},
	{ErrUnauthenticated, mapping{http.StatusUnauthorized, CodeUnauthenticated, "Bitte melde dich an"}},
	{ErrInvalidCredentials, mapping{http.StatusUnauthorized, CodeUnauthenticated, "E-Mail oder Passwort falsch"}},
	{ErrValidation, mapping{http.StatusBadRequest, CodeValidation, "Ungültige Eingabe"}},
	{ErrInvalidTransition, mapping{http.StatusConflict, CodeConflict, "Statuswechsel nicht erlaubt"}},
	{ErrConflict, mapping{http.StatusConflict, CodeConflict, "Eintrag existiert bereits"}},
	{ErrNotPaid, mapping{http.StatusPaymentRequired, CodeNotPaid, "Bestellung noch nicht bezahlt"}},
	{ErrNoLink, mapping{http.StatusConflict, CodeNoLink, "Download wird vorbereitet, bitte gleich erneut versuchen"}},
	{ErrLinkExpired, mapping{http.StatusGone, CodeExpired, "Download-Link abgelaufen"}},
	{ErrLimitReached, mapping{http.StatusGone, CodeLimitReached, "Download-Limit erreicht"}},
	{ErrLinkInactive, mapping{http.StatusGone, CodeInactive, "Download-Link deaktiviert"}},
	{ErrProfileMissing, mapping{http.StatusForbidden, CodeProfileMissing, "Bitte lege zuerst ein Verkäuferprofil an"}},
	{ErrNotApproved, mapping{http.StatusForbidden, CodeNotApproved, "Dein Verkäuferprofil ist noch nicht freigeschaltet"}},
	{ErrNoBalance, mapping{http.StatusUnprocessableEntity, CodeNoBalance, "Kein auszahlbares Guthaben"}},
	{ErrPendingExists, mapping{http.StatusConflict, CodePendingExists, "Es gibt bereits eine offene Auszahlung"}},
}

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func Validation(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeValidation, message, ErrValidation)
}

func Unauthenticated(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthenticated, message, ErrUnauthenticated)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrConflict)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

// Wrap attaches a sentinel to a more specific message, e.g.
// Wrap(ErrValidation, "price must be a non-negative integer").
func Wrap(sentinel error, message string) *AppError {
	app := FromError(sentinel)
	app.Message = message
	return app
}

// FromError maps any error to an AppError. Sentinels keep their stable status
// and code; anything unknown is an internal error.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return NewAppError(m.status, m.code, m.message, err)
		}
	}
	return InternalError(err)
}

// Code returns the stable code for err, or CodeInternalError.
func Code(err error) string {
	return FromError(err).Code
}
