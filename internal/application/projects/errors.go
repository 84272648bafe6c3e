package projects

import "errors"

var (
	ErrDuplicateName      = errors.New("Project with this name already exists!")
	ErrProjectNotFound    = errors.New("Project not found!")
	ErrProjectHasFunds    = errors.New("Funds have been invested in the project, it cannot be deleted!")
	ErrProjectClosed      = errors.New("A closed project cannot be edited!")
	ErrFullBelowInvested  = errors.New("The new required amount must not be less than the invested amount!")
	ErrEmptyField         = errors.New("Fields cannot be null or empty!")
	ErrInvalidFullAmount  = errors.New("Required amount must be a positive integer")
	ErrInvalidName        = errors.New("Name must be 1-100 characters and cannot be a number!")
	ErrInvalidDescription = errors.New("Description must not be empty")
)
