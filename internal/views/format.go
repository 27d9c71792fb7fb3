package views

import (
	"errors"
	"time"
)

// DisplayLocale is the dashboard's fixed locale tag. The service renders for
// a Thai audience regardless of where it is deployed.
const DisplayLocale = "th"

// InternalErrorMessage is the user-facing text for any internal failure.
// Implementation details never cross the wire; this string is all clients see.
const InternalErrorMessage = "เกิดข้อผิดพลาดภายในระบบ กรุณาลองใหม่อีกครั้ง"

// SensorStoredMessage confirms a stored sensor reading to the caller.
const SensorStoredMessage = "บันทึกข้อมูลเซ็นเซอร์เรียบร้อยแล้ว"

// displayZone is the fixed display timezone, UTC+7. Stored timestamps are
// UTC; every timestamp shown to a user is converted here first.
var displayZone = time.FixedZone("UTC+7", 7*60*60)

// displayLayout renders D/M/YYYY HH:MM:SS: day and month unpadded,
// 24-hour clock with zero-padded time fields.
const displayLayout = "2/1/2006 15:04:05"

// FormatDisplayTime converts a stored timestamp to the display timezone and
// formats it for the dashboard. The zero time means the value never existed;
// formatting it is a bug, so it fails instead of producing a bogus string.
func FormatDisplayTime(t time.Time) (string, error) {
	if t.IsZero() {
		return "", errors.New("cannot format zero time")
	}
	return t.In(displayZone).Format(displayLayout), nil
}
