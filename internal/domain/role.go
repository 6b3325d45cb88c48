package domain

import "fmt"

// Role is the privilege level of a user. Persisted in its lowercase form.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAuthor  Role = "author"
	RoleTutor   Role = "tutor"
	RoleStudent Role = "student"
)

// RoleOrder lists all roles from most to least privileged.
var RoleOrder = [...]Role{RoleAdmin, RoleAuthor, RoleTutor, RoleStudent}

var roleRanks = func() map[Role]int {
	ranks := make(map[Role]int, len(RoleOrder))
	for i, role := range RoleOrder {
		ranks[role] = i
	}
	return ranks
}()

// ParseRole converts the persisted form into a Role.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.Valid() {
		return "", fmt.Errorf("invalid role: %q", s)
	}
	return role, nil
}

func (r Role) String() string { return string(r) }

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Rank is the position of r in RoleOrder. Unknown roles rank below Student.
func (r Role) Rank() int {
	if rank, ok := roleRanks[r]; ok {
		return rank
	}
	return len(RoleOrder)
}

// Compare returns -1 when r is more privileged than other, 0 when equal and 1 otherwise.
func (r Role) Compare(other Role) int {
	switch a, b := r.Rank(), other.Rank(); {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Authorized reports whether r is at least as privileged as required.
// A capability granted to tutors and above uses required = RoleTutor.
func (r Role) Authorized(required Role) bool {
	return r.Valid() && r.Compare(required) <= 0
}
