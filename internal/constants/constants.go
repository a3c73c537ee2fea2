package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	BackendTimeout     = 5 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	// LookupResultLimit caps the user-lookup result set; only the first
	// entry is consumed.
	LookupResultLimit = 100

	// AvatarVariantLarge tags the avatar entry the pipeline selects.
	AvatarVariantLarge = "large"
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)
