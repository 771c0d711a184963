package models

import "time"

// Profile is the per-user settings row. A user without a row has every
// setting off.
type Profile struct {
	UserID              string
	AppLockEnabled      bool
	BiometricRegistered bool
	UpdatedAt           time.Time
}
