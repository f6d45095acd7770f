package positions

import "time"

// Position is a job title within a department.
type Position struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	DepartmentID int64     `json:"department_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Input struct {
	Name         string `json:"name" validate:"notblank,max=128"`
	DepartmentID int64  `json:"department_id" validate:"gt=0"`
}
