package domain

import "time"

// Account is a tenant of the relay. SecretToken authenticates its ingress
// traffic and is assigned once at creation.
type Account struct {
	ID          string    `json:"id"`
	ExternalID  string    `json:"external_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	SecretToken string    `json:"secret_token"`
	Website     string    `json:"website,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AccountUpdate carries the mutable account fields. Nil means unchanged.
type AccountUpdate struct {
	Email   *string
	Name    *string
	Website *string
}

// Empty reports whether the update touches no field.
func (u AccountUpdate) Empty() bool {
	return u.Email == nil && u.Name == nil && u.Website == nil
}

// Apply copies the set fields onto a.
func (u AccountUpdate) Apply(a *Account) {
	if u.Email != nil {
		a.Email = *u.Email
	}
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.Website != nil {
		a.Website = *u.Website
	}
}
