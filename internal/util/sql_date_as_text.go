package util

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DateAsText is stored as a YYYY-MM-DD string but used as a time.Time, the
// time of day is discarded.
type DateAsText time.Time

func NewDateAsText(t time.Time) DateAsText {
	y, m, d := t.Date()
	return DateAsText(time.Date(y, m, d, 0, 0, 0, 0, t.Location()))
}

func (t DateAsText) Value() (driver.Value, error) {
	return driver.Value(Date(time.Time(t))), nil
}

func (t DateAsText) Time() time.Time {
	return time.Time(t)
}

func (t DateAsText) String() string {
	return Date(t.Time())
}

func (t *DateAsText) Scan(src interface{}) error {
	var str string
	switch src := src.(type) {
	case []byte:
		str = string(src)
	case string:
		str = src
	case time.Time:
		*t = NewDateAsText(src)
		return nil
	default:
		return fmt.Errorf("expected []byte or string, got %T", src)
	}

	tmp, err := ParseDate(str)
	if err != nil {
		return err
	}

	*t = DateAsText(tmp)
	return nil
}
