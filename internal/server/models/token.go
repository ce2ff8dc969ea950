package models

// Principal is the authenticated caller: the user and the exact token the
// request presented.
type Principal struct {
	User  *User
	Token string
}
