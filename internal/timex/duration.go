// Package timex provides time helpers for configuration files.
package timex

import (
	"encoding/json"
	"time"

	errors "github.com/Laisky/errors/v2"
)

// Duration wraps time.Duration so JSON config files may specify either a
// Go duration string ("5s", "1m30s") or an integer number of nanoseconds.
type Duration struct {
	time.Duration
}

// UnmarshalJSON accepts "5s"-style strings and plain numbers.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return errors.Wrapf(err, "parse duration %q", value)
		}
		d.Duration = parsed
		return nil
	default:
		return errors.Errorf("invalid duration: %s", string(b))
	}
}

// MarshalJSON renders the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
