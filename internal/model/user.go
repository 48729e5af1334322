package model

// User is a backer account. Credential is stored as given; it is either
// plain text or a bcrypt hash.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Credential  string `json:"-"`
}
