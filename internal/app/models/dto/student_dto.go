package dto

import (
	"time"

	"github.com/halil/studentdesk/internal/app/models"
)

// CreateStudentRequest carries the multipart form fields for creating a
// student record. The profile image arrives as a separate file part.
type CreateStudentRequest struct {
	FullName           string  `form:"fullName"`
	Email              string  `form:"email"`
	Phone              *string `form:"phone"`
	DateOfBirth        *string `form:"dateOfBirth"` // ISO date, parsed by the service
	Gender             *string `form:"gender"`
	CourseOrDepartment *string `form:"courseOrDepartment"`
	BatchOrYear        *string `form:"batchOrYear"`
	Address            *string `form:"address"`
}

// UpdateStudentRequest carries the multipart form fields for updating a
// student record. Fields are merged: a nil pointer means "leave unchanged",
// a present empty value clears the field.
type UpdateStudentRequest struct {
	FullName           *string `form:"fullName"`
	Email              *string `form:"email"`
	Phone              *string `form:"phone"`
	DateOfBirth        *string `form:"dateOfBirth"`
	Gender             *string `form:"gender"`
	CourseOrDepartment *string `form:"courseOrDepartment"`
	BatchOrYear        *string `form:"batchOrYear"`
	Address            *string `form:"address"`
}

// StudentResponse represents a student record returned to clients
type StudentResponse struct {
	ID                 int64      `json:"id"`
	FullName           string     `json:"fullName"`
	Email              string     `json:"email"`
	Phone              *string    `json:"phone,omitempty"`
	DateOfBirth        *time.Time `json:"dateOfBirth,omitempty"`
	Gender             *string    `json:"gender,omitempty"`
	CourseOrDepartment *string    `json:"courseOrDepartment,omitempty"`
	BatchOrYear        *string    `json:"batchOrYear,omitempty"`
	Address            *string    `json:"address,omitempty"`
	ProfileImageURL    *string    `json:"profileImageUrl,omitempty"`
	CreatedBy          int64      `json:"createdBy"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// NewStudentResponse converts a student model to its response form
func NewStudentResponse(s *models.Student) *StudentResponse {
	if s == nil {
		return nil
	}
	return &StudentResponse{
		ID:                 s.ID,
		FullName:           s.FullName,
		Email:              s.Email,
		Phone:              s.Phone,
		DateOfBirth:        s.DateOfBirth,
		Gender:             s.Gender,
		CourseOrDepartment: s.CourseOrDepartment,
		BatchOrYear:        s.BatchOrYear,
		Address:            s.Address,
		ProfileImageURL:    s.ProfileImageURL,
		CreatedBy:          s.CreatedBy,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

// NewStudentListResponse converts a slice of student models
func NewStudentListResponse(students []*models.Student) []*StudentResponse {
	responses := make([]*StudentResponse, 0, len(students))
	for _, s := range students {
		responses = append(responses, NewStudentResponse(s))
	}
	return responses
}

// UploadImageResponse represents the result of a standalone image upload
type UploadImageResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}
