package habits

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidHabitID = errors.New("invalid habit id")

const customPrefix = "custom_"

// Ref identifies a habit: either a catalog entry or a user's custom
// habit. The discriminator is resolved once at the API boundary and
// never re-parsed downstream.
type Ref struct {
	ID     int
	Custom bool
}

func (r Ref) String() string {
	if r.Custom {
		return customPrefix + strconv.Itoa(r.ID)
	}
	return strconv.Itoa(r.ID)
}

// ParseRef turns a wire habit id ("7" or "custom_7") into a Ref. The
// isCustom flag covers clients that send a bare numeric id plus a
// separate flag.
func ParseRef(raw string, isCustom bool) (Ref, error) {
	raw = strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(raw, customPrefix); ok {
		raw = rest
		isCustom = true
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return Ref{}, ErrInvalidHabitID
	}
	return Ref{ID: id, Custom: isCustom}, nil
}

// FlexID accepts a JSON habit id sent either as a number or a string.
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	*f = FlexID(strings.Trim(string(b), `"`))
	return nil
}

func (f FlexID) String() string { return string(f) }
