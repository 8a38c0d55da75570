// Package apperr define os erros de domínio com um tipo fechado (Kind) que a
// camada HTTP mapeia para status sem olhar o texto da mensagem.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindUnprocessable
	KindUnauthorized
	KindForbidden
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindUnprocessable:
		return "unprocessable"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Code é o identificador estável devolvido ao cliente no campo "code".
type Code string

const (
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeInternal           Code = "INTERNAL_ERROR"
	CodeUserNotFound       Code = "USER_NOT_FOUND"
	CodeAddressNotFound    Code = "ADDRESS_NOT_FOUND"
	CodeTripNotFound       Code = "TRIP_NOT_FOUND"
	CodeStopNotFound       Code = "STOP_NOT_FOUND"
	CodeTripsNotScheduled  Code = "TRIPS_NOT_SCHEDULED"
	CodeAddressNotOwned    Code = "ADDRESS_NOT_OWNED"
	CodeStopDateMismatch   Code = "STOP_DATE_MISMATCH"
	CodeTripFull           Code = "TRIP_FULL"
	CodeTripHasStops       Code = "TRIP_HAS_STOPS"
	CodePastDate           Code = "PAST_DATE"
	CodeEmailTaken         Code = "EMAIL_TAKEN"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeTokenMissing       Code = "TOKEN_MISSING"
	CodeTokenInvalid       Code = "TOKEN_INVALID"
	CodeTokenRevoked       Code = "TOKEN_REVOKED"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
	CodeResetRequired      Code = "RESET_PASSWORD_REQUIRED"
	CodeForbidden          Code = "FORBIDDEN"
)

type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is compara por Code, para que errors.Is(err, apperr.ErrTripFull()) funcione.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func New(kind Kind, code Code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Wrap(err error, kind Kind, code Code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// Internal embrulha uma falha inesperada; a mensagem ao cliente é genérica.
func Internal(err error) *Error {
	return Wrap(err, KindInternal, CodeInternal, "Erro interno do servidor")
}

func Validation(message string) *Error {
	return New(KindValidation, CodeValidation, message)
}

// As devolve o *Error contido em err, ou um erro interno quando err não é de domínio.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

func KindOf(err error) Kind {
	return As(err).Kind
}

func CodeOf(err error) Code {
	return As(err).Code
}

func ErrUserNotFound() *Error {
	return New(KindNotFound, CodeUserNotFound, "Usuário não encontrado")
}

func ErrAddressNotFound() *Error {
	return New(KindNotFound, CodeAddressNotFound, "Endereço não encontrado")
}

func ErrTripNotFound() *Error {
	return New(KindNotFound, CodeTripNotFound, "Viagem não encontrada")
}

func ErrStopNotFound() *Error {
	return New(KindNotFound, CodeStopNotFound, "Parada não encontrada")
}

func ErrTripsNotScheduled() *Error {
	return New(KindNotFound, CodeTripsNotScheduled, "Viagens de ida e volta não encontradas para a data informada")
}

func ErrAddressNotOwned() *Error {
	return New(KindUnprocessable, CodeAddressNotOwned, "O endereço informado não pertence ao usuário")
}

func ErrStopDateMismatch() *Error {
	return New(KindUnprocessable, CodeStopDateMismatch, "A data da parada não corresponde à data da viagem")
}

func ErrTripFull(limit int) *Error {
	return New(KindUnprocessable, CodeTripFull, fmt.Sprintf("A viagem atingiu o limite de %d paradas", limit))
}

func ErrTripHasStops() *Error {
	return New(KindConflict, CodeTripHasStops, "Não é possível excluir uma viagem com paradas vinculadas")
}

func ErrPastDate() *Error {
	return New(KindValidation, CodePastDate, "A data deve ser hoje ou uma data futura")
}

func ErrEmailTaken() *Error {
	return New(KindConflict, CodeEmailTaken, "E-mail já cadastrado")
}

func ErrInvalidCredentials() *Error {
	return New(KindUnauthorized, CodeInvalidCredentials, "E-mail ou senha inválidos")
}

func ErrTokenMissing() *Error {
	return New(KindUnauthorized, CodeTokenMissing, "Token não fornecido")
}

func ErrTokenInvalid(err error) *Error {
	return Wrap(err, KindUnauthorized, CodeTokenInvalid, "Token inválido")
}

func ErrTokenExpired() *Error {
	return New(KindUnauthorized, CodeTokenExpired, "Token expirado")
}

func ErrTokenRevoked() *Error {
	return New(KindUnauthorized, CodeTokenRevoked, "Token revogado")
}

func ErrResetRequired() *Error {
	return New(KindForbidden, CodeResetRequired, "É necessário redefinir a senha antes de continuar")
}

func ErrForbidden() *Error {
	return New(KindForbidden, CodeForbidden, "Acesso negado")
}
