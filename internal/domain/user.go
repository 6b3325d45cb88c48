package domain

// User is anyone who can sign in: students reporting issues and the staff reviewing them.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Name         string
	Role         Role
	Active       bool
	Code         string
}

// IsInitialAdmin reports whether u is the administrator created on first start.
func (u User) IsInitialAdmin() bool {
	return u.ID == 1 && u.Role == RoleAdmin
}

// UserName is the id and display name of a user.
type UserName struct {
	ID   int64
	Name string
}
