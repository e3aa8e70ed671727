package event

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

func (k Kind) IsValid() bool {
	return k == Income || k == Expense
}

// Event is a single recorded income or expense. Amount is always positive,
// the direction is carried by Kind.
type Event struct {
	Id          string
	Name        string
	Description string
	Amount      decimal.Decimal
	Date        Date
	Kind        Kind
	Attachment  string
}

// Signed returns the amount with the sign implied by the event kind.
func (e Event) Signed() decimal.Decimal {
	if e.Kind == Income {
		return e.Amount
	}
	return e.Amount.Neg()
}

const dateLayout = "2006-01-02"

// Date is a calendar date without time of day. The wrapped time is always
// midnight UTC of that day.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// Candidate is the raw, unvalidated shape of an event as submitted by a
// client. Amount accepts numbers and numeric strings.
type Candidate struct {
	Id          string
	Name        string
	Description string
	Amount      any
	Date        string
	Kind        string
	Attachment  string
}

// ToCandidate turns a stored event back into its raw form, e.g. to
// re-validate it with a few fields changed.
func (e Event) ToCandidate() Candidate {
	return Candidate{
		Id:          e.Id,
		Name:        e.Name,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.Date.String(),
		Kind:        string(e.Kind),
		Attachment:  e.Attachment,
	}
}
