package domain

import (
	"database/sql/driver"
	"fmt"
)

// BoolInt is a boolean stored as a 0/1 integer. The original schema encodes
// flags this way for SQLite portability; keeping the narrow encoding at the
// store boundary means dumps and migrations stay byte-compatible while Go
// code works with a real boolean.
type BoolInt bool

// Bool returns the native boolean value.
func (b BoolInt) Bool() bool { return bool(b) }

// Value implements driver.Valuer, encoding true as 1 and false as 0.
func (b BoolInt) Value() (driver.Value, error) {
	if b {
		return int64(1), nil
	}
	return int64(0), nil
}

// Scan implements sql.Scanner. It accepts the integer encoding as well as
// native booleans, since drivers differ in how they surface INTEGER columns.
func (b *BoolInt) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*b = false
	case bool:
		*b = BoolInt(v)
	case int64:
		*b = v != 0
	case []byte:
		*b = len(v) > 0 && v[0] == '1'
	case string:
		*b = v == "1" || v == "true"
	default:
		return fmt.Errorf("boolint: cannot scan %T", src)
	}
	return nil
}
