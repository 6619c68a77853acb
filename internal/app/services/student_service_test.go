package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/halil/studentdesk/internal/app/models"
	"github.com/halil/studentdesk/internal/app/models/dto"
	"github.com/halil/studentdesk/internal/pkg/apperrors"
)

// fakeStudentRepo is an in-memory IStudentRepository for service tests
type fakeStudentRepo struct {
	students map[int64]*models.Student
	nextID   int64
	clock    time.Time
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{
		students: make(map[int64]*models.Student),
		clock:    time.Now(),
	}
}

func (r *fakeStudentRepo) Create(_ context.Context, student *models.Student) (*models.Student, error) {
	r.nextID++
	r.clock = r.clock.Add(time.Second)
	stored := *student
	stored.ID = r.nextID
	stored.CreatedAt = r.clock
	stored.UpdatedAt = r.clock
	r.students[stored.ID] = &stored
	return &stored, nil
}

func (r *fakeStudentRepo) ListByOwner(_ context.Context, ownerID int64) ([]*models.Student, error) {
	var result []*models.Student
	for _, s := range r.students {
		if s.CreatedBy == ownerID {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeStudentRepo) GetByIDAndOwner(_ context.Context, id, ownerID int64) (*models.Student, error) {
	s, ok := r.students[id]
	if !ok || s.CreatedBy != ownerID {
		return nil, apperrors.ErrStudentNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeStudentRepo) Update(_ context.Context, student *models.Student) (*models.Student, error) {
	existing, ok := r.students[student.ID]
	if !ok || existing.CreatedBy != student.CreatedBy {
		return nil, apperrors.ErrStudentNotFound
	}
	stored := *student
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now()
	r.students[stored.ID] = &stored
	return &stored, nil
}

func (r *fakeStudentRepo) Delete(_ context.Context, id, ownerID int64) error {
	s, ok := r.students[id]
	if !ok || s.CreatedBy != ownerID {
		return apperrors.ErrStudentNotFound
	}
	delete(r.students, id)
	return nil
}

// fakeImageStore returns predictable URLs and can be told to fail
type fakeImageStore struct {
	uploads int
	failErr error
}

func (s *fakeImageStore) Upload(_ context.Context, r io.Reader, _ int64, _ string) (string, error) {
	if s.failErr != nil {
		return "", s.failErr
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	s.uploads++
	return fmt.Sprintf("https://img.test/student-profiles/%d", s.uploads), nil
}

func newTestStudentService() (StudentService, *fakeStudentRepo, *fakeImageStore) {
	repo := newFakeStudentRepo()
	images := &fakeImageStore{}
	svc := NewStudentService(repo, images, zerolog.Nop())
	return svc, repo, images
}

func strPtr(s string) *string {
	return &s
}

// makeFileHeader builds a real multipart.FileHeader by round-tripping a form
func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("profileImage", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["profileImage"][0]
}

func createReq() *dto.CreateStudentRequest {
	return &dto.CreateStudentRequest{
		FullName: "Jane Student",
		Email:    "jane@example.com",
	}
}

func TestCreateStudent(t *testing.T) {
	svc, _, _ := newTestStudentService()

	req := createReq()
	req.Phone = strPtr("+90 555 123 45 67")
	req.DateOfBirth = strPtr("2001-09-15")
	req.Gender = strPtr("Female")
	req.CourseOrDepartment = strPtr("Computer Engineering")

	student, err := svc.Create(context.Background(), 1, req, nil)
	require.NoError(t, err)
	require.Equal(t, "Jane Student", student.FullName)
	require.Equal(t, int64(1), student.CreatedBy)
	require.Equal(t, 2001, student.DateOfBirth.Year())
	require.Nil(t, student.ProfileImageURL)
}

func TestCreateStudent_WithImage(t *testing.T) {
	svc, _, images := newTestStudentService()

	image := makeFileHeader(t, "photo.jpg", []byte("jpeg-bytes"))
	student, err := svc.Create(context.Background(), 1, createReq(), image)
	require.NoError(t, err)
	require.NotNil(t, student.ProfileImageURL)
	require.Equal(t, "https://img.test/student-profiles/1", *student.ProfileImageURL)
	require.Equal(t, 1, images.uploads)
}

func TestCreateStudent_CollectsAllViolations(t *testing.T) {
	svc, _, _ := newTestStudentService()

	_, err := svc.Create(context.Background(), 1, &dto.CreateStudentRequest{
		FullName:    "",
		Email:       "bad-email",
		Phone:       strPtr("abc"),
		Gender:      strPtr("unknown"),
		DateOfBirth: strPtr("15/09/2001"),
	}, nil)
	require.Error(t, err)

	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Errors, 5, "every violated field should be reported")
}

func TestCreateStudent_LengthLimits(t *testing.T) {
	svc, _, _ := newTestStudentService()

	_, err := svc.Create(context.Background(), 1, &dto.CreateStudentRequest{
		FullName: strings.Repeat("a", 101),
		Email:    "jane@example.com",
		Address:  strPtr(strings.Repeat("b", 501)),
	}, nil)
	require.Error(t, err)

	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Errors, 2)
	require.Contains(t, validationErr.Errors[0], "fullName cannot exceed 100")
	require.Contains(t, validationErr.Errors[1], "address cannot exceed 500")

	// At the limits the record is accepted
	created, err := svc.Create(context.Background(), 1, &dto.CreateStudentRequest{
		FullName: strings.Repeat("a", 100),
		Email:    "jane@example.com",
		Address:  strPtr(strings.Repeat("b", 500)),
	}, nil)
	require.NoError(t, err)
	require.Len(t, created.FullName, 100)
}

func TestCreateStudent_UploadFailureLeavesNoRecord(t *testing.T) {
	svc, repo, images := newTestStudentService()
	images.failErr = errors.New("connection refused")

	image := makeFileHeader(t, "photo.jpg", []byte("jpeg-bytes"))
	_, err := svc.Create(context.Background(), 1, createReq(), image)
	require.ErrorIs(t, err, apperrors.ErrUpstreamFailure)
	require.Empty(t, repo.students, "a failed upload must not create a record")
}

func TestListStudents_ScopedAndOrdered(t *testing.T) {
	svc, _, _ := newTestStudentService()

	for i := 1; i <= 3; i++ {
		req := &dto.CreateStudentRequest{
			FullName: fmt.Sprintf("Mine %d", i),
			Email:    fmt.Sprintf("mine%d@example.com", i),
		}
		_, err := svc.Create(context.Background(), 1, req, nil)
		require.NoError(t, err)
	}
	_, err := svc.Create(context.Background(), 2, &dto.CreateStudentRequest{
		FullName: "Someone Elses",
		Email:    "other@example.com",
	}, nil)
	require.NoError(t, err)

	students, err := svc.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, students, 3, "list must only contain the caller's records")
	require.Equal(t, "Mine 3", students[0].FullName, "newest record comes first")
	require.Equal(t, "Mine 1", students[2].FullName)
	for i := 0; i < len(students)-1; i++ {
		require.False(t, students[i].CreatedAt.Before(students[i+1].CreatedAt))
	}
}

func TestGetStudent_OtherOwnerLooksMissing(t *testing.T) {
	svc, _, _ := newTestStudentService()

	created, err := svc.Create(context.Background(), 1, createReq(), nil)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), created.ID, 2)
	require.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	got, err := svc.Get(context.Background(), created.ID, 1)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
}

func TestUpdateStudent_MergesFields(t *testing.T) {
	svc, _, _ := newTestStudentService()

	req := createReq()
	req.Phone = strPtr("5551234567")
	created, err := svc.Create(context.Background(), 1, req, nil)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, 1, &dto.UpdateStudentRequest{
		FullName: strPtr("Jane Graduate"),
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "Jane Graduate", updated.FullName)
	require.Equal(t, "jane@example.com", updated.Email, "absent fields keep their values")
	require.NotNil(t, updated.Phone)
	require.Equal(t, "5551234567", *updated.Phone)
}

func TestUpdateStudent_ClearsOptionalField(t *testing.T) {
	svc, _, _ := newTestStudentService()

	req := createReq()
	req.Phone = strPtr("5551234567")
	created, err := svc.Create(context.Background(), 1, req, nil)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, 1, &dto.UpdateStudentRequest{
		Phone: strPtr(""),
	}, nil)
	require.NoError(t, err)
	require.Nil(t, updated.Phone, "a present empty value clears the field")
}

func TestUpdateStudent_PreservesImageURL(t *testing.T) {
	svc, _, _ := newTestStudentService()

	image := makeFileHeader(t, "photo.jpg", []byte("jpeg-bytes"))
	created, err := svc.Create(context.Background(), 1, createReq(), image)
	require.NoError(t, err)
	require.NotNil(t, created.ProfileImageURL)

	// Update without new image bytes keeps the stored URL
	updated, err := svc.Update(context.Background(), created.ID, 1, &dto.UpdateStudentRequest{
		FullName: strPtr("Jane Renamed"),
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, updated.ProfileImageURL)
	require.Equal(t, *created.ProfileImageURL, *updated.ProfileImageURL)

	// Supplying new bytes replaces it
	newImage := makeFileHeader(t, "new.jpg", []byte("new-jpeg-bytes"))
	replaced, err := svc.Update(context.Background(), created.ID, 1, &dto.UpdateStudentRequest{}, newImage)
	require.NoError(t, err)
	require.NotNil(t, replaced.ProfileImageURL)
	require.NotEqual(t, *created.ProfileImageURL, *replaced.ProfileImageURL)
}

func TestUpdateStudent_OtherOwnerLooksMissing(t *testing.T) {
	svc, _, _ := newTestStudentService()

	created, err := svc.Create(context.Background(), 1, createReq(), nil)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, 2, &dto.UpdateStudentRequest{
		FullName: strPtr("Hijacked"),
	}, nil)
	require.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestDeleteStudent_OtherOwnerLooksMissing(t *testing.T) {
	svc, _, _ := newTestStudentService()

	created, err := svc.Create(context.Background(), 1, createReq(), nil)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), created.ID, 2)
	require.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	// The record is still there for its owner
	_, err = svc.Get(context.Background(), created.ID, 1)
	require.NoError(t, err)
}

func TestStudentLifecycle(t *testing.T) {
	svc, _, _ := newTestStudentService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, createReq(), nil)
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID, 1)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	require.NoError(t, svc.Delete(ctx, created.ID, 1))

	_, err = svc.Get(ctx, created.ID, 1)
	require.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestUploadImage(t *testing.T) {
	svc, _, _ := newTestStudentService()

	image := makeFileHeader(t, "photo.png", []byte("png-bytes"))
	url, err := svc.UploadImage(context.Background(), image)
	require.NoError(t, err)
	require.Equal(t, "https://img.test/student-profiles/1", url)

	_, err = svc.UploadImage(context.Background(), nil)
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestUploadImage_UpstreamFailure(t *testing.T) {
	svc, _, images := newTestStudentService()
	images.failErr = errors.New("503 from host")

	image := makeFileHeader(t, "photo.png", []byte("png-bytes"))
	_, err := svc.UploadImage(context.Background(), image)
	require.ErrorIs(t, err, apperrors.ErrUpstreamFailure)
}
