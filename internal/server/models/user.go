package models

// User is the subset of a platform account the guard needs.
type User struct {
	ID        int64
	UserName  string
	Deleted   bool
	Suspended bool
}

// Course is a course together with the id of its context.
type Course struct {
	ID        int64
	FullName  string
	ShortName string
	ContextID int64
}
