package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FlexID is a server-assigned identifier. The API emits ids either as JSON
// numbers or as numeric strings.
type FlexID int64

func (id FlexID) String() string { return strconv.FormatInt(int64(id), 10) }

func (id *FlexID) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s: %w", b, err)
	}
	*id = FlexID(n)
	return nil
}

// ParseID parses a user-supplied task id.
func ParseID(s string) (FlexID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return FlexID(n), nil
}

// FlexBool decodes true/false, 0/1 and "0"/"1".
type FlexBool bool

func (v FlexBool) MarshalJSON() ([]byte, error) { return json.Marshal(bool(v)) }

func (v *FlexBool) UnmarshalJSON(b []byte) error {
	switch strings.ToLower(string(bytes.Trim(b, `"`))) {
	case "true", "1":
		*v = true
	case "false", "0", "", "null":
		*v = false
	default:
		return fmt.Errorf("invalid boolean %s", b)
	}
	return nil
}

const dateLayout = "2006-01-02"

// Date is a calendar date without time of day. The zero value means "no date"
// and is encoded as an empty string.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// zeroDate is how MySQL renders an unset DATE column.
const zeroDate = "0000-00-00"

// ParseDate accepts YYYY-MM-DD. An empty string and 0000-00-00 are the zero
// Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	// MySQL DATETIME columns come back with a time part.
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	if s == "" || s == zeroDate {
		return Date{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", dateLayout}

// Timestamp is a server-assigned instant. Both RFC 3339 and the SQL
// "YYYY-MM-DD HH:MM:SS" form are accepted.
type Timestamp struct {
	time.Time
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Format(time.RFC3339))
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*ts = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*ts = Timestamp{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*ts = Timestamp{t}
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}
