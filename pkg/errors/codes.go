package errors

import "net/http"

type Code string

const (
	CodeUnknown            Code = "UNKNOWN"
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeInvalidSignature   Code = "INVALID_SIGNATURE"
	CodeDecryptionFailed   Code = "DECRYPTION_FAILED"
	CodeMalformedEnvelope  Code = "MALFORMED_ENVELOPE"
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeConflict           Code = "CONFLICT"
	CodePermissionDenied   Code = "PERMISSION_DENIED"
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
	CodeExpired            Code = "EXPIRED"
	CodeInternal           Code = "INTERNAL"
	CodeDeadlineExceeded   Code = "DEADLINE_EXCEEDED"
)

var httpStatus = map[Code]int{
	CodeInvalidArgument:    http.StatusBadRequest,
	CodeInvalidSignature:   http.StatusUnauthorized,
	CodeDecryptionFailed:   http.StatusBadRequest,
	CodeMalformedEnvelope:  http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeAlreadyExists:      http.StatusConflict,
	CodeConflict:           http.StatusConflict,
	CodePermissionDenied:   http.StatusForbidden,
	CodeUnauthenticated:    http.StatusUnauthorized,
	CodeFailedPrecondition: http.StatusPreconditionFailed,
	CodeExpired:            http.StatusGone,
	CodeInternal:           http.StatusInternalServerError,
	CodeDeadlineExceeded:   http.StatusGatewayTimeout,
}

// HTTPStatus returns the status code for c, 500 when c is unknown.
func (c Code) HTTPStatus() int {
	if s, ok := httpStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}
