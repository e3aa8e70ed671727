package event

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	FieldId          = "id"
	FieldName        = "name"
	FieldDescription = "description"
	FieldAmount      = "amount"
	FieldDate        = "date"
	FieldKind        = "kind"
	FieldAttachment  = "attachment"

	MaxNameLength        = 20
	MaxDescriptionLength = 100
)

// FieldErrors maps a field name to the message of the first rule it violated.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+fe[field])
	}
	return "invalid event: " + strings.Join(parts, "; ")
}

type Validator struct {
	location *time.Location
}

// NewValidator returns a validator that resolves timestamps carrying a zone
// offset to a calendar date in loc.
func NewValidator(loc *time.Location) *Validator {
	if loc == nil {
		loc = time.Local
	}
	return &Validator{location: loc}
}

var defaultValidator = NewValidator(time.Local)

// Validate checks c using the local time zone.
func Validate(c Candidate) (Event, FieldErrors) {
	return defaultValidator.Validate(c)
}

// Validate checks every field of c independently. It returns either the
// normalized event or a non-empty FieldErrors.
func (v *Validator) Validate(c Candidate) (Event, FieldErrors) {
	errs := FieldErrors{}

	if c.Id == "" {
		errs[FieldId] = "id is required"
	}

	nameLength := utf8.RuneCountInString(c.Name)
	if nameLength == 0 {
		errs[FieldName] = "name is required"
	} else if nameLength > MaxNameLength {
		errs[FieldName] = fmt.Sprintf("name must be at most %d characters", MaxNameLength)
	}

	if utf8.RuneCountInString(c.Description) > MaxDescriptionLength {
		errs[FieldDescription] = fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength)
	}

	amount, msg := parseAmount(c.Amount)
	if msg != "" {
		errs[FieldAmount] = msg
	}

	date, msg := v.parseDate(c.Date)
	if msg != "" {
		errs[FieldDate] = msg
	}

	kind := Kind(c.Kind)
	if c.Kind == "" {
		errs[FieldKind] = "kind is required"
	} else if !kind.IsValid() {
		errs[FieldKind] = "kind must be income or expense"
	}

	if len(errs) > 0 {
		return Event{}, errs
	}

	return Event{
		Id:          c.Id,
		Name:        c.Name,
		Description: c.Description,
		Amount:      amount,
		Date:        date,
		Kind:        kind,
		Attachment:  c.Attachment,
	}, nil
}

const (
	msgAmountRequired = "amount is required"
	msgAmountNaN      = "amount must be a number"
	msgAmountPositive = "amount must be a positive number greater than 0"

	// Amounts must fit a float64: at most 309 integer digits and no digits
	// below 10^-324.
	maxAmountIntegerDigits = 309
	minAmountExponent      = -324
)

func parseAmount(raw any) (decimal.Decimal, string) {
	var amount decimal.Decimal
	switch v := raw.(type) {
	case nil:
		return decimal.Zero, msgAmountRequired
	case decimal.Decimal:
		amount = v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, msgAmountNaN
		}
		amount = decimal.NewFromFloat(v)
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return decimal.Zero, msgAmountNaN
		}
		amount = decimal.NewFromFloat32(v)
	case int:
		amount = decimal.NewFromInt(int64(v))
	case int64:
		amount = decimal.NewFromInt(v)
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, msgAmountNaN
		}
		amount = d
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return decimal.Zero, msgAmountRequired
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, msgAmountNaN
		}
		amount = d
	default:
		return decimal.Zero, msgAmountNaN
	}
	if !amount.IsPositive() {
		return decimal.Zero, msgAmountPositive
	}
	if !inFloatRange(amount) {
		return decimal.Zero, msgAmountNaN
	}
	return amount, ""
}

// inFloatRange only looks at the coefficient and exponent, so it stays cheap
// for inputs like 1e300000000 that would take ages to print.
func inFloatRange(d decimal.Decimal) bool {
	exp := int64(d.Exponent())
	if exp < minAmountExponent {
		return false
	}
	return int64(d.NumDigits())+exp <= maxAmountIntegerDigits
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func (v *Validator) parseDate(raw string) (Date, string) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Date{}, "date is required"
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return NewDate(t.Date()), ""
	}
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, v.location)
		if err != nil {
			continue
		}
		return NewDate(t.In(v.location).Date()), ""
	}
	return Date{}, "date must be a valid date"
}

// ParseDate parses a calendar date in the 2006-01-02 layout.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return NewDate(t.Date()), nil
}
