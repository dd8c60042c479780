package domain

import "time"

// Address stores a postal address owned by a User. At most one address per user
// is meant to be the default; nothing enforces it.
type Address struct {
	ID         string `json:"id"`
	Label      string `json:"label,omitempty"`
	Name       string `json:"name,omitempty"`
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
	IsDefault  bool   `json:"isDefault"`
}

type Preferences struct {
	Currency   string `json:"currency,omitempty"`
	Language   string `json:"language,omitempty"`
	Newsletter bool   `json:"newsletter"`
}

// User is the signed-in shopper.
type User struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	PasswordHash string      `json:"-"`
	Addresses    []Address   `json:"addresses"`
	Preferences  Preferences `json:"preferences"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// UserPatch carries a partial profile update; nil fields are left untouched.
type UserPatch struct {
	Email       *string      `json:"email,omitempty"`
	Name        *string      `json:"name,omitempty"`
	Addresses   *[]Address   `json:"addresses,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// Apply shallow-merges the patch into a copy of u.
func (p UserPatch) Apply(u User) User {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Addresses != nil {
		u.Addresses = append([]Address(nil), (*p.Addresses)...)
	}
	if p.Preferences != nil {
		u.Preferences = *p.Preferences
	}
	return u
}

// Credentials are the login form fields.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration captures the fields submitted by the sign-up form.
type Registration struct {
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Name      string    `json:"name"`
	Addresses []Address `json:"addresses,omitempty"`
}
