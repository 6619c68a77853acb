package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/halil/studentdesk/internal/app/models"
	"github.com/halil/studentdesk/internal/app/models/dto"
	"github.com/halil/studentdesk/internal/app/repositories"
	"github.com/halil/studentdesk/internal/pkg/apperrors"
	"github.com/halil/studentdesk/internal/pkg/imagestore"
	"github.com/halil/studentdesk/internal/pkg/validation"
)

const dateOfBirthLayout = "2006-01-02"

// StudentService defines the interface for student record operations. Every
// operation is scoped to the calling user; records owned by someone else
// behave exactly like missing ones.
type StudentService interface {
	Create(ctx context.Context, ownerID int64, req *dto.CreateStudentRequest, image *multipart.FileHeader) (*dto.StudentResponse, error)
	List(ctx context.Context, ownerID int64) ([]*dto.StudentResponse, error)
	Get(ctx context.Context, id, ownerID int64) (*dto.StudentResponse, error)
	Update(ctx context.Context, id, ownerID int64, req *dto.UpdateStudentRequest, image *multipart.FileHeader) (*dto.StudentResponse, error)
	Delete(ctx context.Context, id, ownerID int64) error
	UploadImage(ctx context.Context, image *multipart.FileHeader) (string, error)
}

// studentService implements StudentService
type studentService struct {
	studentRepo repositories.IStudentRepository
	images      imagestore.Store
	logger      zerolog.Logger
}

// NewStudentService creates a new StudentService instance
func NewStudentService(
	studentRepo repositories.IStudentRepository,
	images imagestore.Store,
	logger zerolog.Logger,
) StudentService {
	return &studentService{
		studentRepo: studentRepo,
		images:      images,
		logger:      logger,
	}
}

// Create validates the form fields, uploads the profile image if one was
// attached, and stores the new record under the calling user.
func (s *studentService) Create(ctx context.Context, ownerID int64, req *dto.CreateStudentRequest, image *multipart.FileHeader) (*dto.StudentResponse, error) {
	student := &models.Student{
		FullName:           strings.TrimSpace(req.FullName),
		Email:              strings.TrimSpace(req.Email),
		Phone:              normalizeOptional(req.Phone),
		Gender:             normalizeOptional(req.Gender),
		CourseOrDepartment: normalizeOptional(req.CourseOrDepartment),
		BatchOrYear:        normalizeOptional(req.BatchOrYear),
		Address:            normalizeOptional(req.Address),
		CreatedBy:          ownerID,
	}

	var violations []string
	if dob := parseDateOfBirth(req.DateOfBirth, &violations); dob != nil {
		student.DateOfBirth = dob
	}
	validateStudent(student, &violations)
	if len(violations) > 0 {
		return nil, apperrors.NewValidationError(violations...)
	}

	// The image goes to the external host before anything touches the
	// database, so a failed upload leaves no record behind.
	if image != nil {
		url, err := s.uploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		student.ProfileImageURL = &url
	}

	created, err := s.studentRepo.Create(ctx, student)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("studentID", created.ID).Int64("ownerID", ownerID).Msg("Student created")
	return dto.NewStudentResponse(created), nil
}

// List returns the calling user's student records, newest first
func (s *studentService) List(ctx context.Context, ownerID int64) ([]*dto.StudentResponse, error) {
	students, err := s.studentRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return dto.NewStudentListResponse(students), nil
}

// Get returns a single student record owned by the calling user
func (s *studentService) Get(ctx context.Context, id, ownerID int64) (*dto.StudentResponse, error) {
	student, err := s.studentRepo.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	return dto.NewStudentResponse(student), nil
}

// Update merges the supplied fields into the existing record. Absent fields
// keep their current values; the stored image URL survives unless new image
// bytes were attached.
func (s *studentService) Update(ctx context.Context, id, ownerID int64, req *dto.UpdateStudentRequest, image *multipart.FileHeader) (*dto.StudentResponse, error) {
	student, err := s.studentRepo.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	var violations []string
	if req.FullName != nil {
		student.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		student.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		student.Phone = normalizeOptional(req.Phone)
	}
	if req.DateOfBirth != nil {
		if *req.DateOfBirth == "" {
			student.DateOfBirth = nil
		} else if dob := parseDateOfBirth(req.DateOfBirth, &violations); dob != nil {
			student.DateOfBirth = dob
		}
	}
	if req.Gender != nil {
		student.Gender = normalizeOptional(req.Gender)
	}
	if req.CourseOrDepartment != nil {
		student.CourseOrDepartment = normalizeOptional(req.CourseOrDepartment)
	}
	if req.BatchOrYear != nil {
		student.BatchOrYear = normalizeOptional(req.BatchOrYear)
	}
	if req.Address != nil {
		student.Address = normalizeOptional(req.Address)
	}

	validateStudent(student, &violations)
	if len(violations) > 0 {
		return nil, apperrors.NewValidationError(violations...)
	}

	if image != nil {
		url, err := s.uploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		student.ProfileImageURL = &url
	}

	updated, err := s.studentRepo.Update(ctx, student)
	if err != nil {
		return nil, err
	}

	return dto.NewStudentResponse(updated), nil
}

// Delete removes a student record owned by the calling user
func (s *studentService) Delete(ctx context.Context, id, ownerID int64) error {
	if err := s.studentRepo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	s.logger.Info().Int64("studentID", id).Int64("ownerID", ownerID).Msg("Student deleted")
	return nil
}

// UploadImage uploads image bytes without attaching them to a record and
// returns the public URL.
func (s *studentService) UploadImage(ctx context.Context, image *multipart.FileHeader) (string, error) {
	if image == nil {
		return "", apperrors.NewValidationError("image file is required")
	}
	return s.uploadImage(ctx, image)
}

func (s *studentService) uploadImage(ctx context.Context, image *multipart.FileHeader) (string, error) {
	file, err := image.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	contentType := image.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := s.images.Upload(ctx, file, image.Size, contentType)
	if err != nil {
		s.logger.Error().Err(err).Msg("Image host upload failed")
		return "", fmt.Errorf("%w: %v", apperrors.ErrUpstreamFailure, err)
	}

	return url, nil
}

// normalizeOptional trims an optional field and maps empty values to nil
func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func parseDateOfBirth(value *string, violations *[]string) *time.Time {
	if value == nil || *value == "" {
		return nil
	}
	parsed, err := time.Parse(dateOfBirthLayout, *value)
	if err != nil {
		*violations = append(*violations, "dateOfBirth must be a valid date in YYYY-MM-DD format")
		return nil
	}
	return &parsed
}

func validateStudent(student *models.Student, violations *[]string) {
	if student.FullName == "" {
		*violations = append(*violations, "fullName is required")
	} else if !validation.NewStringValidation(student.FullName).
		WithMaxLength(validation.NameMaxLength).
		Validate() {
		*violations = append(*violations, fmt.Sprintf("fullName cannot exceed %d characters", validation.NameMaxLength))
	}

	if student.Email == "" {
		*violations = append(*violations, "email is required")
	} else if !validation.NewStringValidation(student.Email).
		WithPattern(validation.CompiledPatterns.Email).
		Validate() {
		*violations = append(*violations, "email must be a valid email address")
	}

	if student.Phone != nil && !validation.IsValidPhone(*student.Phone) {
		*violations = append(*violations, "phone must be a valid phone number")
	}

	if student.Gender != nil && !validation.IsValidGender(*student.Gender) {
		*violations = append(*violations, "gender must be one of Male, Female or Other")
	}

	if student.Address != nil && !validation.NewStringValidation(*student.Address).
		WithMaxLength(validation.AddressMaxLength).
		Validate() {
		*violations = append(*violations, fmt.Sprintf("address cannot exceed %d characters", validation.AddressMaxLength))
	}
}
