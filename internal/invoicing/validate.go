package invoicing

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"invoicehub/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// totalTolerance is how far a client-supplied total may drift from quantity * rate.
var totalTolerance = decimal.RequireFromString("0.005")

// Column bounds: quantity and rate are NUMERIC(12,2), the total NUMERIC(14,2).
var (
	MaxLineAmount = decimal.RequireFromString("9999999999.99")
	MaxTotal      = decimal.RequireFromString("999999999999.99")
)

// ValidationError reports every failing field at once, keyed by the JSON field name.
type ValidationError struct {
	Fields map[string][]string `json:"details"`
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Add appends msg to the messages for field.
func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

// Empty reports whether no field failed.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator applies the invoice and profile rules through go-playground/validator.
// The custom tags are:
//
//	currency       one of models.Currencies
//	netdays        one of NetDayOptions
//	invoicestatus  PENDING or PAID
//	notblank       non-empty after trimming spaces
//	isodate        RFC 3339 timestamp or YYYY-MM-DD
//
// decimal.Decimal fields are validated as float64, so min/max/gt work on them.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds a Validator with the custom tags registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return models.Currency(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("netdays", func(fl validator.FieldLevel) bool {
		return ValidNetDays(int(fl.Field().Int()))
	})
	_ = v.RegisterValidation("invoicestatus", func(fl validator.FieldLevel) bool {
		return models.InvoiceStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})

	return &Validator{validate: v}
}

// Struct validates s and returns a *ValidationError when any rule fails.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := NewValidationError()
	for _, fe := range verrs {
		out.Add(fe.Field(), fieldMessage(fe))
	}
	return out
}

// CheckTotal rejects a client-supplied total that disagrees with quantity * rate.
// A nil client total is accepted; the server always stores its own computation.
func CheckTotal(verr *ValidationError, client *decimal.Decimal, quantity, rate decimal.Decimal) {
	if client == nil {
		return
	}
	want := ComputeTotal(quantity, rate)
	if client.Sub(want).Abs().GreaterThan(totalTolerance) {
		verr.Add("total", fmt.Sprintf("total must equal quantity × rate (%s)", want.StringFixed(MoneyPlaces)))
	}
}

// CheckAmounts rejects quantities and rates the store cannot hold exactly: more than
// two decimal places, or more than the column allows. The total they produce must fit too.
func CheckAmounts(verr *ValidationError, quantity, rate decimal.Decimal) {
	ok := checkAmount(verr, "invoiceItemQuantity", quantity)
	ok = checkAmount(verr, "invoiceItemRate", rate) && ok
	if ok && ComputeTotal(quantity, rate).GreaterThan(MaxTotal) {
		verr.Add("total", fmt.Sprintf("total must be at most %s", MaxTotal.StringFixed(MoneyPlaces)))
	}
}

func checkAmount(verr *ValidationError, field string, d decimal.Decimal) bool {
	ok := true
	if !d.Equal(d.Round(MoneyPlaces)) {
		verr.Add(field, fmt.Sprintf("%s must have at most %d decimal places", field, MoneyPlaces))
		ok = false
	}
	if d.GreaterThan(MaxLineAmount) {
		verr.Add(field, fmt.Sprintf("%s must be at most %s", field, MaxLineAmount.StringFixed(MoneyPlaces)))
		ok = false
	}
	return ok
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if isNumeric(fe.Kind()) {
			return fmt.Sprintf("%s must be at least %s", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		if isNumeric(fe.Kind()) {
			return fmt.Sprintf("%s must be at most %s", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "currency":
		return fmt.Sprintf("%s must be one of USD, EUR, SLSH", field)
	case "netdays":
		return fmt.Sprintf("%s must be one of 0, 15, 30", field)
	case "invoicestatus":
		return fmt.Sprintf("%s must be PENDING or PAID", field)
	case "isodate":
		return fmt.Sprintf("%s must be a date (YYYY-MM-DD)", field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", field)
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", field, fe.Tag())
	}
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
