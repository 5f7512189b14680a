// Package response defines the JSON envelope shared by every API endpoint.
package response

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Machine-readable error codes carried in the error envelope. Clients
// branch on Code, not on Message.
const (
	CodeValidationError     = "ValidationError"
	CodeBadRequest          = "BadRequest"
	CodeAccessTokenError    = "AccessTokenError"
	CodeAccessTokenExpired  = "AccessTokenExpired"
	CodeRefreshTokenError   = "RefreshTokenError"
	CodeRefreshTokenExpired = "RefreshTokenExpired"
	CodeResetTokenError     = "ResetTokenError"
	CodeResetTokenExpired   = "ResetTokenExpired"
	CodeUnauthorized        = "Unauthorized"
	CodeAuthorizationError  = "AuthorizationError"
	CodeAccessDenied        = "AccessDenied"
	CodeNotFound            = "NotFound"
	CodeTokenNotFound       = "TokenNotFound"
	CodeTooManyRequests     = "TooManyRequests"
	CodeServerError         = "ServerError"
)

// Response is the single envelope for success and error payloads.
type Response struct {
	Status  string            `json:"status"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Details []validationError `json:"details,omitempty"`
	Data    any               `json:"data,omitempty"`
}

// validationError describes one rejected request field.
type validationError struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Issue string `json:"issue"`
}

// Predefined error responses for common scenarios.
var (
	EmptyRequestBodyResponse = Response{
		Status:  StatusError,
		Code:    CodeBadRequest,
		Message: "Request body is empty.",
	}

	InvalidRequestBodyResponse = Response{
		Status:  StatusError,
		Code:    CodeBadRequest,
		Message: "Request body is malformed.",
	}

	NotFoundResponse = Response{
		Status:  StatusError,
		Code:    CodeNotFound,
		Message: "The requested resource was not found.",
	}

	TokenNotFoundResponse = Response{
		Status:  StatusError,
		Code:    CodeTokenNotFound,
		Message: "Password reset token was not found or has already been used.",
	}

	AccessDeniedResponse = Response{
		Status:  StatusError,
		Code:    CodeAccessDenied,
		Message: "You do not have access to this resource.",
	}

	TooManyRequestsResponse = Response{
		Status:  StatusError,
		Code:    CodeTooManyRequests,
		Message: "Too many requests. Please try again later.",
	}

	ServerErrorResponse = Response{
		Status:  StatusError,
		Code:    CodeServerError,
		Message: "An internal server error occurred. Please try again later.",
	}
)

// SuccessResponse builds a success envelope. Only the first data value is
// used; passing none leaves Data empty.
func SuccessResponse(msg string, data ...any) Response {
	resp := Response{
		Status:  StatusSuccess,
		Message: msg,
	}

	if len(data) > 0 {
		resp.Data = data[0]
	}

	return resp
}

// ErrorResponse builds an error envelope with the given code and message.
func ErrorResponse(code, msg string) Response {
	return Response{
		Status:  StatusError,
		Code:    code,
		Message: msg,
	}
}

// ValidationErrorResponse builds the envelope for a failed request
// validation, listing every rejected field.
func ValidationErrorResponse(err error) Response {
	return Response{
		Status:  StatusError,
		Code:    CodeValidationError,
		Message: "Request validation failed.",
		Details: getValidationErrors(err),
	}
}

// FieldErrorResponse builds a validation envelope for a single field
// rejected by a business check rather than a struct tag.
func FieldErrorResponse(field, value, issue string) Response {
	return Response{
		Status:  StatusError,
		Code:    CodeValidationError,
		Message: "Request validation failed.",
		Details: []validationError{{Field: field, Value: value, Issue: issue}},
	}
}

// RegisterTagName makes validator report json field names instead of Go
// struct field names.
func RegisterTagName(validate *validator.Validate) {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email."
	case "url":
		return "Invalid url."
	case "min":
		return "Value is too short. Minimum length is " + param + "."
	case "max":
		return "Value is too long. Maximum length is " + param + "."
	case "gte":
		return "Value must be greater than or equal to " + param + "."
	case "lte":
		return "Value must be less than or equal to " + param + "."
	case "oneof":
		return "Value must be one of: " + param + "."
	default:
		return "Invalid value."
	}
}

func getValidationErrors(err error) []validationError {
	var validationErrs []validationError

	errs, ok := err.(validator.ValidationErrors)
	if ok {
		for _, e := range errs {
			value, _ := e.Value().(string)

			validationErrs = append(validationErrs, validationError{
				Field: e.Field(),
				Value: value,
				Issue: messageForTag(e.Tag(), e.Param()),
			})
		}
	}

	return validationErrs
}
