package models

// User represents a registered account in the `user` table
// Password holds the bcrypt hash; never return it in JSON responses
type User struct {
	ID       int64  `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	Password string `json:"-" db:"password"` // Hashed; omitted from JSON
}

// CredentialsForm is the submitted body of the register and login forms
type CredentialsForm struct {
	Username string `schema:"username"`
	Password string `schema:"password"` // Plaintext; hashed before it is stored
}

// MeResponse is returned by /auth/me for the logged in user
type MeResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// NewMeResponse builds the public view of a user
func NewMeResponse(user *User) MeResponse {
	return MeResponse{
		ID:       user.ID,
		Username: user.Username,
	}
}
