package model

// User is an identity record. Password hashes never leave this struct;
// transports expose only id, name and email.
type User struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash []byte `json:"-"`
}
