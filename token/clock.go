package token

import "time"

// Clock supplies the ambient current time the contract compares
// against the refund window. The execution environment owns time, not
// the contract; tests inject a fake.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}
