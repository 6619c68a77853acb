package models

import (
	"time"
)

// Student defines the student record model based on the 'students' table.
// Every record is owned by the user that created it; reads and writes are
// always scoped by CreatedBy.
type Student struct {
	ID                 int64      `json:"id" db:"id"`
	FullName           string     `json:"fullName" db:"full_name"`
	Email              string     `json:"email" db:"email"`
	Phone              *string    `json:"phone,omitempty" db:"phone"`
	DateOfBirth        *time.Time `json:"dateOfBirth,omitempty" db:"date_of_birth"`
	Gender             *string    `json:"gender,omitempty" db:"gender"`
	CourseOrDepartment *string    `json:"courseOrDepartment,omitempty" db:"course_or_department"`
	BatchOrYear        *string    `json:"batchOrYear,omitempty" db:"batch_or_year"`
	Address            *string    `json:"address,omitempty" db:"address"`
	ProfileImageURL    *string    `json:"profileImageUrl,omitempty" db:"profile_image_url"`
	CreatedBy          int64      `json:"createdBy" db:"created_by"` // Owning user id, immutable
	CreatedAt          time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time  `json:"updatedAt" db:"updated_at"`
}
