package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/halil/studentdesk/internal/app/models/dto"
	"github.com/halil/studentdesk/internal/app/services"
	"github.com/halil/studentdesk/internal/middleware"
	"github.com/halil/studentdesk/internal/pkg/apperrors"
)

// StudentController handles student record endpoints
type StudentController struct {
	studentService services.StudentService
}

// NewStudentController creates a new StudentController instance
func NewStudentController(studentService services.StudentService) *StudentController {
	return &StudentController{
		studentService: studentService,
	}
}

// parseIDParam parses the :id path parameter as a positive integer
func parseIDParam(ctx *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ErrStudentNotFound
	}
	return id, nil
}

// CreateStudent godoc
// @Summary Create a student record
// @Description Creates a student record owned by the caller. Accepts multipart form data with an optional profileImage file part.
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param fullName formData string true "Full name"
// @Param email formData string true "Email address"
// @Param profileImage formData file false "Profile image"
// @Success 201 {object} dto.Response{data=dto.StudentResponse}
// @Failure 400 {object} dto.Response
// @Failure 502 {object} dto.Response
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthorized)
		return
	}

	var req dto.CreateStudentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("invalid form data"))
		return
	}

	// Image part is optional; any error here just means it was absent
	image, _ := ctx.FormFile("profileImage")

	student, err := c.studentService.Create(ctx.Request.Context(), userID, &req, image)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(student))
}

// ListStudents godoc
// @Summary List student records
// @Description Returns the caller's student records, newest first
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ListResponse
// @Failure 401 {object} dto.Response
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthorized)
		return
	}

	students, err := c.studentService.List(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewListResponse(len(students), students))
}

// GetStudent godoc
// @Summary Get a student record
// @Description Returns a single student record owned by the caller
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.Response{data=dto.StudentResponse}
// @Failure 404 {object} dto.Response
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthorized)
		return
	}

	id, err := parseIDParam(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	student, err := c.studentService.Get(ctx.Request.Context(), id, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student))
}

// UpdateStudent godoc
// @Summary Update a student record
// @Description Merges the supplied form fields into an existing record. The stored image URL is kept unless a new profileImage part is attached.
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param profileImage formData file false "Replacement profile image"
// @Success 200 {object} dto.Response{data=dto.StudentResponse}
// @Failure 400 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Failure 502 {object} dto.Response
// @Router /students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthorized)
		return
	}

	id, err := parseIDParam(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.UpdateStudentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("invalid form data"))
		return
	}

	image, _ := ctx.FormFile("profileImage")

	student, err := c.studentService.Update(ctx.Request.Context(), id, userID, &req, image)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student))
}

// DeleteStudent godoc
// @Summary Delete a student record
// @Description Deletes a student record owned by the caller
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthorized)
		return
	}

	id, err := parseIDParam(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.studentService.Delete(ctx.Request.Context(), id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Student has been deleted"))
}

// UploadImage godoc
// @Summary Upload a profile image
// @Description Uploads image bytes to the image host and returns the public URL without attaching it to a record
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image file"
// @Success 200 {object} dto.UploadImageResponse
// @Failure 400 {object} dto.Response
// @Failure 502 {object} dto.Response
// @Router /students/upload-image [post]
func (c *StudentController) UploadImage(ctx *gin.Context) {
	image, err := ctx.FormFile("image")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("image file is required"))
		return
	}

	url, err := c.studentService.UploadImage(ctx.Request.Context(), image)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.UploadImageResponse{
		Success: true,
		URL:     url,
	})
}
