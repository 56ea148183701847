package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

const statusError = "error"

type errorResponse struct {
	Status     string       `json:"status"`
	StatusCode int          `json:"status_code"`
	Error      string       `json:"error"`
	Message    string       `json:"message"`
	Details    []fieldError `json:"details,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	emptyRequestBodyResponse = errorResponse{
		Status:     statusError,
		StatusCode: http.StatusBadRequest,
		Error:      "Empty Request Body",
		Message:    "Request body is empty. Please provide necessary data.",
	}
	invalidRequestBodyResponse = errorResponse{
		Status:     statusError,
		StatusCode: http.StatusBadRequest,
		Error:      "Invalid Request Body",
		Message:    "Request body is not a valid hyperlink.",
	}
	serverErrorResponse = errorResponse{
		Status:     statusError,
		StatusCode: http.StatusInternalServerError,
		Error:      "Server Error",
		Message:    "An internal server error occurred. Please try again later.",
	}
)

func badRequest(msg string) errorResponse {
	return errorResponse{
		Status:     statusError,
		StatusCode: http.StatusBadRequest,
		Error:      "Bad Request",
		Message:    msg,
	}
}

func validationErrorResponse(err error) errorResponse {
	resp := errorResponse{
		Status:     statusError,
		StatusCode: http.StatusBadRequest,
		Error:      "Validation Error",
		Message:    "Request body failed validation.",
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			resp.Details = append(resp.Details, fieldError{
				Field:   fe.Field(),
				Message: "failed on the '" + fe.Tag() + "' rule",
			})
		}
	}
	return resp
}

func writeError(w http.ResponseWriter, r *http.Request, resp errorResponse) {
	render.Status(r, resp.StatusCode)
	render.JSON(w, r, resp)
}

// NewValidate returns a validator reporting JSON field names.
func NewValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}
