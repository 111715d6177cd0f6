package types

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// FlexInt decodes a JSON number, numeric string, or null into an integer
// amount. Anything that is not numeric coerces to zero instead of failing the
// request; checkout payloads from the storefront have historically mixed
// strings and numbers for prices and quantities.
type FlexInt struct {
	value int64
	set   bool
}

func NewFlexInt(v int64) FlexInt {
	return FlexInt{value: v, set: true}
}

// Int64 returns the coerced value, zero when absent or non-numeric.
func (f FlexInt) Int64() int64 { return f.value }

// Present reports whether the field carried a usable numeric value.
func (f FlexInt) Present() bool { return f.set }

// Or returns the value when present, otherwise the fallback.
func (f FlexInt) Or(fallback int64) int64 {
	if f.set {
		return f.value
	}
	return fallback
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*f = FlexInt{}
		return nil
	}
	s := string(raw)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var unquoted string
		if err := json.Unmarshal(raw, &unquoted); err != nil {
			*f = FlexInt{}
			return nil
		}
		s = strings.TrimSpace(unquoted)
	}
	if s == "" {
		*f = FlexInt{}
		return nil
	}
	dec, err := decimal.NewFromString(s)
	if err != nil {
		*f = FlexInt{}
		return nil
	}
	*f = FlexInt{value: dec.IntPart(), set: true}
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.set {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
