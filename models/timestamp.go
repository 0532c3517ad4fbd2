package models

import "time"

// TimestampLayout is RFC3339 with fixed-width, zero-padded nanoseconds.
// CreatedAt columns double as DynamoDB sort keys and are compared bytewise,
// so the encoding must sort lexicographically in chronological order.
// RFC3339Nano trims trailing fractional zeros and breaks that at sub-second
// precision ("...00.1Z" sorts after "...00.15Z").
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Timestamp renders t as a sort-key string in UTC.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
