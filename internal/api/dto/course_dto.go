package dto

// CreateCourseRequest payload.
type CreateCourseRequest struct {
	Code     string `json:"code"`
	Title    string `json:"title"`
	AuthorID int64  `json:"author_id"`
	TutorID  int64  `json:"tutor_id"`
}

// EnableCourseRequest payload. Active is required.
type EnableCourseRequest struct {
	Active *bool `json:"active"`
}

// CourseNameResponse is the short form offered when reporting a ticket.
type CourseNameResponse struct {
	ID    int64  `json:"id"`
	Code  string `json:"code"`
	Title string `json:"title"`
}

// CourseResponse carries a course with its reviewers.
type CourseResponse struct {
	ID         int64  `json:"id"`
	Code       string `json:"code"`
	Title      string `json:"title"`
	Active     bool   `json:"active"`
	AuthorID   int64  `json:"author_id"`
	AuthorName string `json:"author_name"`
	TutorID    int64  `json:"tutor_id"`
	TutorName  string `json:"tutor_name"`
}
