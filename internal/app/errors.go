package app

import "net/http"

// Error is a service-layer failure that carries the HTTP status the
// transport should answer with. Fields holds per-field validation
// messages when the failure is about specific input fields.
type Error struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

func badRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

func validationFailed(fields map[string]string) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Message: "Erro de validação",
		Fields:  fields,
	}
}

func unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

func forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

func notFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

func conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}
