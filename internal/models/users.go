package models

import "crypto/subtle"

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"` // voter or admin
}

// DemoUsers is the built-in login directory. Any of them may create a ballot
// and will manage it unless another manager id is named.
var DemoUsers = []User{
	{"1", "user1", "pass1", "voter"},
	{"2", "user2", "pass2", "voter"},
	{"3", "user3", "pass3", "voter"},
	{"4", "user4", "pass4", "voter"},
	{"5", "user5", "pass5", "voter"},
	{"10", "admin", "admin123", "admin"},
}

// FindUser returns the user whose credentials match.
func FindUser(users []User, username, password string) (User, bool) {
	for _, u := range users {
		if u.Username != username {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) == 1 {
			return u, true
		}
		return User{}, false
	}
	return User{}, false
}
