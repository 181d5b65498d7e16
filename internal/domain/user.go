package domain

// User is a registered account. Passwords are stored and compared in
// plaintext: this is a local single-machine demo store, not a credential
// system. Anything beyond that needs a salted-hash model first.
type User struct {
	ID       string        `json:"id"`
	Username string        `json:"username"`
	Password string        `json:"password"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Avatar   string        `json:"avatar"`
	Progress *UserProgress `json:"progress"`
}
