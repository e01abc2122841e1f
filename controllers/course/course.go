package courseController

import (
	"canaletto/database"
	"canaletto/middleware"
	"canaletto/models"
	"canaletto/utils"
	"errors"
	"log"
	"strconv"

	courseValidator "canaletto/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetAllCourses lists courses; non-staff callers only ever see PUBLISHED
func GetAllCourses(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedList").(*courseValidator.ListCoursesRequest)
	if !ok {
		reqData = &courseValidator.ListCoursesRequest{Page: 1, Limit: 10}
	}

	db := database.Database.Db.Model(&models.Course{})

	authUser, _ := middleware.UserFromCtx(c)
	if authUser.Role == "INSTRUCTOR" || authUser.Role == "ADMIN" {
		if reqData.Status != "" {
			db = db.Where("status = ?", reqData.Status)
		}
	} else {
		db = db.Where("status = ?", "PUBLISHED")
	}

	if reqData.Level != "" {
		db = db.Where("level = ?", reqData.Level)
	}
	if reqData.Category != "" {
		db = db.Where("category = ?", reqData.Category)
	}
	if reqData.Search != "" {
		like := "%" + reqData.Search + "%"
		db = db.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	db.Count(&total)

	offset := (reqData.Page - 1) * reqData.Limit

	var courses []models.Course
	if err := db.Preload("Instructor").Offset(offset).Limit(reqData.Limit).
		Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	response := map[string]interface{}{
		"courses": courses,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", response)
}

// GetCourseDetails fetches one course by numeric id or slug, with ordered
// sections, lectures and the latest reviews
func GetCourseDetails(c *fiber.Ctx) error {
	idOrSlug := c.Params("id")

	db := database.Database.Db.
		Preload("Instructor").
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order asc")
		}).
		Preload("Sections.Lectures", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order asc")
		}).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at desc").Limit(10)
		}).
		Preload("Reviews.User")

	var course models.Course
	var err error
	if id, convErr := strconv.Atoi(idOrSlug); convErr == nil && id > 0 {
		err = db.First(&course, id).Error
	} else {
		err = db.Where("slug = ?", idOrSlug).First(&course).Error
	}
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", course)
}

func CreateCourse(c *fiber.Ctx) error {
	authUser, ok := middleware.UserFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CreateCourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	course := models.Course{
		Title:            reqData.Title,
		Slug:             utils.UniqueCourseSlug(db, &models.Course{}, reqData.Title),
		Description:      reqData.Description,
		ShortDescription: reqData.ShortDescription,
		Price:            reqData.Price,
		DiscountPrice:    reqData.DiscountPrice,
		Level:            reqData.Level,
		Category:         reqData.Category,
		ThumbnailURL:     reqData.ThumbnailURL,
		Status:           "DRAFT",
		InstructorID:     authUser.ID,
	}

	if err := db.Create(&course).Error; err != nil {
		log.Printf("Error creating course: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// loadOwnedCourse fetches the course and enforces instructor ownership
// (admins bypass the ownership check)
func loadOwnedCourse(courseID uint, authUser middleware.AuthUser) (*models.Course, int, string) {
	var course models.Course
	if err := database.Database.Db.First(&course, courseID).Error; err != nil {
		return nil, fiber.StatusNotFound, "Course not found!"
	}

	if course.InstructorID != authUser.ID && authUser.Role != "ADMIN" {
		return nil, fiber.StatusForbidden, "Not authorized to manage this course!"
	}

	return &course, 0, ""
}

func UpdateCourse(c *fiber.Ctx) error {
	authUser, ok := middleware.UserFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)

	course, status, msg := loadOwnedCourse(courseID, authUser)
	if course == nil {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	reqData, ok := c.Locals("validatedCourseUpdate").(*courseValidator.UpdateCourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	updates := map[string]interface{}{}
	if reqData.Title != nil && *reqData.Title != course.Title {
		updates["title"] = *reqData.Title
		updates["slug"] = utils.UniqueCourseSlug(db, &models.Course{}, *reqData.Title)
	}
	if reqData.Description != nil {
		updates["description"] = *reqData.Description
	}
	if reqData.ShortDescription != nil {
		updates["short_description"] = *reqData.ShortDescription
	}
	if reqData.Price != nil {
		updates["price"] = *reqData.Price
	}
	if reqData.DiscountPrice != nil {
		updates["discount_price"] = *reqData.DiscountPrice
	}
	if reqData.Level != nil {
		updates["level"] = *reqData.Level
	}
	if reqData.Category != nil {
		updates["category"] = *reqData.Category
	}
	if reqData.ThumbnailURL != nil {
		updates["thumbnail_url"] = *reqData.ThumbnailURL
	}
	if reqData.Status != nil {
		updates["status"] = *reqData.Status
	}

	if len(updates) > 0 {
		if err := db.Model(course).Updates(updates).Error; err != nil {
			log.Printf("Error updating course %d: %v", courseID, err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

func DeleteCourse(c *fiber.Ctx) error {
	authUser, ok := middleware.UserFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)

	course, status, msg := loadOwnedCourse(courseID, authUser)
	if course == nil {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	if err := database.Database.Db.Delete(course).Error; err != nil {
		log.Printf("Error deleting course %d: %v", courseID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

// CreateReview lets an enrolled user leave one review per course
func CreateReview(c *fiber.Ctx) error {
	authUser, ok := middleware.UserFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)

	reqData, ok := c.Locals("validatedReview").(*courseValidator.CreateReviewRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var course models.Course
	if err := db.First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	// Reviews are gated on enrollment, same as progress writes
	var enrollment models.Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", authUser.ID, courseID).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not enrolled in this course!", nil)
	}

	review := models.Review{
		UserID:   authUser.ID,
		CourseID: courseID,
		Rating:   reqData.Rating,
		Comment:  reqData.Comment,
	}

	if err := db.Create(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "You have already reviewed this course!", nil)
		}
		log.Printf("Error creating review: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create review!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Review created successfully!", review)
}
