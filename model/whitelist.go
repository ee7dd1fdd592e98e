package model

import "time"

// WhitelistEntry exempts a main from the activity audit for a number of audit cycles.
type WhitelistEntry struct {
	Name        string    `db:"name"        mapstructure:"name"`
	Description string    `db:"description" mapstructure:"description"`
	ExpiryDays  int       `db:"expiry_days" mapstructure:"expiry_days"`
	AddedAt     time.Time `db:"added_at"    mapstructure:"-"`
}

// PermanentExpiry is the expiry value stored for entries that never expire
// when the activity window is activityDays long.
func PermanentExpiry(activityDays int) int {
	return -activityDays - 1
}

// IsPermanent reports whether the entry sits below the decay range and never expires.
func (e WhitelistEntry) IsPermanent(activityDays int) bool {
	return e.ExpiryDays < -activityDays
}

// IsActive reports whether the entry should be shown as a current exemption.
// Entries that have counted down to zero keep shielding the member until the
// auditor evicts them, but are no longer listed.
func (e WhitelistEntry) IsActive(activityDays int) bool {
	return e.IsPermanent(activityDays) || e.ExpiryDays > 0
}
