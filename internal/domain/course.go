package domain

// Course is a university course with exactly one author and one tutor.
type Course struct {
	ID       int64
	Code     string
	Title    string
	AuthorID int64
	TutorID  int64
	Active   bool
}

// Reviewer returns the user responsible for the next decision on a ticket of this course:
// the tutor, or the author once the ticket was forwarded.
func (c Course) Reviewer(forwarded bool) int64 {
	if forwarded {
		return c.AuthorID
	}
	return c.TutorID
}

// CourseName is the short form used in selections.
type CourseName struct {
	ID    int64
	Code  string
	Title string
}

// CourseWithNames carries the author and tutor display names.
type CourseWithNames struct {
	Course
	AuthorName string
	TutorName  string
}
