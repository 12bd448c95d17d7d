package errors

import (
	"net/http"
	"time"

	"xbrowse/models/dtos"
	"xbrowse/models/searcherr"
)

/*
	Utility functions to facilitate returning error responses to HTTP clients
*/

// -- Simplest: 1 error with message
func CreateSimpleBadRequest(message string) dtos.GeneralErrorResponseDto {
	return create(http.StatusBadRequest, "", message)
}

func CreateSimpleNotFound(message string) dtos.GeneralErrorResponseDto {
	return create(http.StatusNotFound, "", message)
}

func CreateSimpleInternalServerError(message string) dtos.GeneralErrorResponseDto {
	return create(http.StatusInternalServerError, "", message)
}

// FromSearchError maps an engine error to a response. Caller mistakes are
// 400s; anything else is a 500.
func FromSearchError(err error) dtos.GeneralErrorResponseDto {
	kind, _ := searcherr.KindOf(err)
	switch kind {
	case searcherr.InvalidFilterSpec, searcherr.UnknownInheritanceMode:
		return create(http.StatusBadRequest, string(kind), err.Error())
	default:
		return create(http.StatusInternalServerError, string(kind), err.Error())
	}
}

func create(code int, kind string, message string) dtos.GeneralErrorResponseDto {
	return dtos.GeneralErrorResponseDto{
		Code:      code,
		Message:   http.StatusText(code),
		Timestamp: time.Now(),
		Errors: []dtos.GeneralError{
			{
				Kind:    kind,
				Message: message,
			},
		},
	}
}
