package domain

import "time"

// Credentials is the decrypted login payload. Timestamp is Unix milliseconds
// set by the client when it built the payload.
type Credentials struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Timestamp int64  `json:"timestamp"`
}

// IssuedAt returns the embedded timestamp.
func (c *Credentials) IssuedAt() time.Time {
	return time.UnixMilli(c.Timestamp).UTC()
}
