package currency

import (
	"encoding/json"
	"strings"
)

// Public errors and empty code sentinel
var (
	// EMPTYCODE is an empty currency code
	EMPTYCODE = Code{}
)

// Code defines an ISO-4217-style currency code, always stored uppercase
type Code struct {
	upper string
}

// Common currency codes
var (
	BTC  = NewCode("BTC")
	ETH  = NewCode("ETH")
	USDT = NewCode("USDT")
	USD  = NewCode("USD")
)

// NewCode returns a new currency code registered in uppercase
func NewCode(c string) Code {
	return Code{upper: strings.ToUpper(c)}
}

// String implements the stringer interface
func (c Code) String() string {
	return c.upper
}

// Lower returns the lowercase string representation of the code
func (c Code) Lower() string {
	return strings.ToLower(c.upper)
}

// IsEmpty returns true if the code is unset
func (c Code) IsEmpty() bool {
	return c.upper == ""
}

// Equal compares two codes case insensitively
func (c Code) Equal(check Code) bool {
	return c.upper == check.upper
}

// MarshalJSON conforms type to the marshaler interface
func (c Code) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON conforms type to the unmarshaler interface
func (c *Code) UnmarshalJSON(d []byte) error {
	var code string
	if err := json.Unmarshal(d, &code); err != nil {
		return err
	}
	*c = NewCode(code)
	return nil
}
