package model

// Session is created by the auth middleware for every authenticated request.
// The user is loaded from the database each time so profile fields are never stale.
type Session struct {
	User  *User
	Token string
}

func (s *Session) UserID() uint {
	return s.User.ID
}
