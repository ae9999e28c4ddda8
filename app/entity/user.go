package entity

// User is the slice of the resource store's user record the reset flow touches.
type User struct {
	ID           string
	Email        string
	PasswordHash string
}
