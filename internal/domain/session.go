package domain

import "time"

// AuthSession is what a successful login or registration yields: the user and
// the opaque marker that identifies the session on later requests.
type AuthSession struct {
	User      User      `json:"user"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}
