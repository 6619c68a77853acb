package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/halil/studentdesk/internal/app/models"
	"github.com/halil/studentdesk/internal/pkg/apperrors"
)

// IStudentRepository defines the interface for student repository operations.
// All reads and writes are scoped to the owning user: a record created by
// another user is indistinguishable from a missing one.
type IStudentRepository interface {
	Create(ctx context.Context, student *models.Student) (*models.Student, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Student, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.Student, error)
	Update(ctx context.Context, student *models.Student) (*models.Student, error)
	Delete(ctx context.Context, id, ownerID int64) error
}

// StudentRepository handles database operations related to students
type StudentRepository struct {
	db *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository instance
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, full_name, email, phone, date_of_birth, gender, course_or_department, batch_or_year, address, profile_image_url, created_by, created_at, updated_at`

func scanStudent(row pgx.Row) (*models.Student, error) {
	var student models.Student
	err := row.Scan(
		&student.ID,
		&student.FullName,
		&student.Email,
		&student.Phone,
		&student.DateOfBirth,
		&student.Gender,
		&student.CourseOrDepartment,
		&student.BatchOrYear,
		&student.Address,
		&student.ProfileImageURL,
		&student.CreatedBy,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new student record
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) (*models.Student, error) {
	query := `
		INSERT INTO students (full_name, email, phone, date_of_birth, gender, course_or_department, batch_or_year, address, profile_image_url, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + studentColumns

	created, err := scanStudent(r.db.QueryRow(ctx, query,
		student.FullName,
		student.Email,
		student.Phone,
		student.DateOfBirth,
		student.Gender,
		student.CourseOrDepartment,
		student.BatchOrYear,
		student.Address,
		student.ProfileImageURL,
		student.CreatedBy,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	return created, nil
}

// ListByOwner returns all students created by the given user, newest first
func (r *StudentRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE created_by = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	students := make([]*models.Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student row: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate student rows: %w", err)
	}

	return students, nil
}

// GetByIDAndOwner retrieves a single student owned by the given user
func (r *StudentRepository) GetByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1 AND created_by = $2`

	student, err := scanStudent(r.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	return student, nil
}

// Update persists all mutable fields of a student owned by the given user
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) (*models.Student, error) {
	query := `
		UPDATE students
		SET full_name = $1, email = $2, phone = $3, date_of_birth = $4, gender = $5,
		    course_or_department = $6, batch_or_year = $7, address = $8, profile_image_url = $9,
		    updated_at = NOW()
		WHERE id = $10 AND created_by = $11
		RETURNING ` + studentColumns

	updated, err := scanStudent(r.db.QueryRow(ctx, query,
		student.FullName,
		student.Email,
		student.Phone,
		student.DateOfBirth,
		student.Gender,
		student.CourseOrDepartment,
		student.BatchOrYear,
		student.Address,
		student.ProfileImageURL,
		student.ID,
		student.CreatedBy,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to update student: %w", err)
	}

	return updated, nil
}

// Delete removes a student owned by the given user
func (r *StudentRepository) Delete(ctx context.Context, id, ownerID int64) error {
	query := `DELETE FROM students WHERE id = $1 AND created_by = $2`

	tag, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}
