package models

// Settings is the per-owner profile payload.
type Settings struct {
	AppLockEnabled      bool `json:"app_lock_enabled"`
	BiometricRegistered bool `json:"biometric_registered"`
}

// SettingsPatch updates a subset of Settings.
type SettingsPatch struct {
	AppLockEnabled      *bool `json:"app_lock_enabled,omitempty"`
	BiometricRegistered *bool `json:"biometric_registered,omitempty"`
}

// ApplyTo returns s with the patch applied.
func (p SettingsPatch) ApplyTo(s Settings) Settings {
	if p.AppLockEnabled != nil {
		s.AppLockEnabled = *p.AppLockEnabled
	}
	if p.BiometricRegistered != nil {
		s.BiometricRegistered = *p.BiometricRegistered
	}
	return s
}

// Identity is the signed-in owner.
type Identity struct {
	UserID   string
	Username string
}

// Profile bundles the identity with its settings.
type Profile struct {
	Identity
	Settings Settings
}
