package model

// Package model contains domain models/data structures.
// Models are persistence-agnostic; no database tags or business logic here.

// DocumentStatus tracks the extraction lifecycle of an uploaded PDF.
type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusProcessing DocumentStatus = "processing"
	StatusDone       DocumentStatus = "done"
	StatusError      DocumentStatus = "error"
)

// CourseType identifies the dish slot a recipe fills within a menu.
type CourseType string

const (
	CourseStarter CourseType = "starter"
	CourseMain    CourseType = "main"
	CourseDrink   CourseType = "drink"
)
