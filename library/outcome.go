package library

import "errors"

// Outcome is the result tag returned by every Ledger operation.
type Outcome int

const (
	Success Outcome = iota
	PatronNotFound
	ItemNotFound
	AlreadyCheckedOut
	HeldByOtherPatron
	AlreadyOnShelf
	AlreadyOnHold
)

var (
	ErrPatronNotFound    = errors.New("patron not found")
	ErrItemNotFound      = errors.New("item not found")
	ErrAlreadyCheckedOut = errors.New("item already checked out")
	ErrHeldByOtherPatron = errors.New("item on hold by other patron")
	ErrAlreadyOnShelf    = errors.New("item already in library")
	ErrAlreadyOnHold     = errors.New("item already on hold")
)

var outcomeErrors = map[Outcome]error{
	PatronNotFound:    ErrPatronNotFound,
	ItemNotFound:      ErrItemNotFound,
	AlreadyCheckedOut: ErrAlreadyCheckedOut,
	HeldByOtherPatron: ErrHeldByOtherPatron,
	AlreadyOnShelf:    ErrAlreadyOnShelf,
	AlreadyOnHold:     ErrAlreadyOnHold,
}

func (o Outcome) String() string {
	if o == Success {
		return "success"
	}
	if err, ok := outcomeErrors[o]; ok {
		return err.Error()
	}
	return "unknown outcome"
}

// OK reports whether the operation was applied.
func (o Outcome) OK() bool { return o == Success }

// Err returns nil for Success and the matching sentinel error otherwise.
func (o Outcome) Err() error {
	if o == Success {
		return nil
	}
	if err, ok := outcomeErrors[o]; ok {
		return err
	}
	return errors.New(o.String())
}
