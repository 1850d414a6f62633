package model

import "time"

// User is the resolved identity the core operates on. Registration and
// credential handling live outside this service.
type User struct {
	ID           string
	DisplayName  string
	RegisteredAt time.Time
	LastActiveAt time.Time
}
