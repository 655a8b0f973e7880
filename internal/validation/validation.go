package validation

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// CreatePayload is the body of POST /requests.
type CreatePayload struct {
	Topic string `json:"topic" validate:"required"`
	Text  string `json:"text" validate:"required"`
}

// CompletePayload is the body of POST /requests/:id/complete.
type CompletePayload struct {
	Solution string `json:"solution" validate:"required"`
}

// CancelPayload is the body of POST /requests/:id/cancel.
type CancelPayload struct {
	Reason string `json:"reason" validate:"required"`
}

// DateFilter carries the parsed query bounds of GET /requests. Date wins
// over From/To; From and To are independent optional bounds.
type DateFilter struct {
	Date *time.Time
	From *time.Time
	To   *time.Time
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields under their wire names, not the Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct checks a payload against its validate tags and returns the first
// violated rule as a single human-readable message. The payload is never
// mutated.
func Struct(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	if fieldErrors, ok := err.(validator.ValidationErrors); ok && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		if fe.Tag() == "required" {
			return fmt.Errorf("%q is required", fe.Field())
		}
		return fmt.Errorf("%q failed on %q validation", fe.Field(), fe.Tag())
	}
	return err
}

// dateLayouts are the accepted ISO-8601 forms for query parameters.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(field, value string) (*time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%q must be a valid ISO 8601 date", field)
}

// ParseDateFilter validates and parses the raw date/from/to query values.
// Empty values are treated as absent. No cross-field rules are applied.
func ParseDateFilter(date, from, to string) (DateFilter, error) {
	var f DateFilter
	var err error
	if date != "" {
		if f.Date, err = parseDate("date", date); err != nil {
			return DateFilter{}, err
		}
	}
	if from != "" {
		if f.From, err = parseDate("from", from); err != nil {
			return DateFilter{}, err
		}
	}
	if to != "" {
		if f.To, err = parseDate("to", to); err != nil {
			return DateFilter{}, err
		}
	}
	return f, nil
}
