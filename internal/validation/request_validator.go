package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"kpistats/internal/dataprocessing"
	apierrors "kpistats/internal/errors"
	"kpistats/pkg/contracts/domain"
)

// RequestValidator validates API request structs using their validate tags
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a validator with the kpistats custom rules
func NewRequestValidator() *RequestValidator {
	v := validator.New()

	v.RegisterValidation("kpidate", isKPIDate)
	v.RegisterValidation("kpilist", isKPIList)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &RequestValidator{validate: v}
}

// ValidateStruct validates v and returns an APIError listing every failed field
func (rv *RequestValidator) ValidateStruct(v interface{}) error {
	err := rv.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.ErrInvalidRequest
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "kpidate":
		return fmt.Sprintf("%s must be a date such as 2006-01-02", field)
	case "kpilist":
		return fmt.Sprintf("%s must be a comma separated list of column names", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isKPIDate accepts every layout of the date column
func isKPIDate(fl validator.FieldLevel) bool {
	_, err := dataprocessing.ParseDate(fl.Field().String())
	return err == nil
}

// isKPIList rejects lists with blank names
func isKPIList(fl validator.FieldLevel) bool {
	for _, name := range domain.ParseKPIList(fl.Field().String()) {
		if name == "" {
			return false
		}
	}
	return true
}
