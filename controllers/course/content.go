package courseController

import (
	"canaletto/database"
	"canaletto/middleware"
	"canaletto/models"
	"log"

	courseValidator "canaletto/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetCourseSections lists a course's sections with their lectures, ordered
func GetCourseSections(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	var course models.Course
	if err := database.Database.Db.First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var sections []models.CourseSection
	if err := database.Database.Db.Where("course_id = ?", courseID).
		Preload("Lectures", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order asc")
		}).
		Order("sort_order asc").Find(&sections).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch sections!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sections fetched successfully!", sections)
}

func CreateSection(c *fiber.Ctx) error {
	authUser, ok := middleware.UserFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)

	course, status, msg := loadOwnedCourse(courseID, authUser)
	if course == nil {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	reqData, ok := c.Locals("validatedSection").(*courseValidator.CreateSectionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	// Append at the end when no explicit order is given
	sortOrder := 0
	if reqData.SortOrder != nil {
		sortOrder = *reqData.SortOrder
	} else {
		var last models.CourseSection
		if err := db.Where("course_id = ?", courseID).Order("sort_order desc").First(&last).Error; err == nil {
			sortOrder = last.SortOrder + 1
		}
	}

	section := models.CourseSection{
		CourseID:  courseID,
		Title:     reqData.Title,
		SortOrder: sortOrder,
	}

	if err := db.Create(&section).Error; err != nil {
		log.Printf("Error creating section: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create section!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Section created successfully!", section)
}

// loadOwnedSection fetches a section and enforces ownership of its course
func loadOwnedSection(sectionID uint, authUser middleware.AuthUser) (*models.CourseSection, int, string) {
	var section models.CourseSection
	if err := database.Database.Db.First(&section, sectionID).Error; err != nil {
		return nil, fiber.StatusNotFound, "Section not found!"
	}

	if _, status, msg := loadOwnedCourse(section.CourseID, authUser); status != 0 {
		return nil, status, msg
	}

	return &section, 0, ""
}

func UpdateSection(c *fiber.Ctx) error {
	authUser, ok := middleware.UserFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	sectionID := c.Locals("sectionID").(uint)

	section, status, msg := loadOwnedSection(sectionID, authUser)
	if section == nil {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	reqData, ok := c.Locals("validatedSectionUpdate").(*courseValidator.UpdateSectionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	updates := map[string]interface{}{}
	if reqData.Title != nil {
		updates["title"] = *reqData.Title
	}
	if reqData.SortOrder != nil {
		updates["sort_order"] = *reqData.SortOrder
	}

	if len(updates) > 0 {
		if err := database.Database.Db.Model(section).Updates(updates).Error; err != nil {
			log.Printf("Error updating section %d: %v", sectionID, err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update section!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Section updated successfully!", section)
}

func DeleteSection(c *fiber.Ctx) error {
	authUser, ok := middleware.UserFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	sectionID := c.Locals("sectionID").(uint)

	section, status, msg := loadOwnedSection(sectionID, authUser)
	if section == nil {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	if err := database.Database.Db.Delete(section).Error; err != nil {
		log.Printf("Error deleting section %d: %v", sectionID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete section!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Section deleted successfully!", nil)
}

// ReorderSections rewrites sort orders from the submitted id order
func ReorderSections(c *fiber.Ctx) error {
	authUser, ok := middleware.UserFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)

	course, status, msg := loadOwnedCourse(courseID, authUser)
	if course == nil {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	reqData, ok := c.Locals("validatedReorder").(*courseValidator.ReorderRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		for index, id := range reqData.IDs {
			if err := tx.Model(&models.CourseSection{}).
				Where("id = ? AND course_id = ?", id, courseID).
				Update("sort_order", index).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Error reordering sections for course %d: %v", courseID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reorder sections!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sections reordered successfully!", nil)
}

func CreateLecture(c *fiber.Ctx) error {
	authUser, ok := middleware.UserFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	sectionID := c.Locals("sectionID").(uint)

	section, status, msg := loadOwnedSection(sectionID, authUser)
	if section == nil {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	reqData, ok := c.Locals("validatedLecture").(*courseValidator.CreateLectureRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	sortOrder := 0
	if reqData.SortOrder != nil {
		sortOrder = *reqData.SortOrder
	} else {
		var last models.Lecture
		if err := db.Where("section_id = ?", sectionID).Order("sort_order desc").First(&last).Error; err == nil {
			sortOrder = last.SortOrder + 1
		}
	}

	lecture := models.Lecture{
		SectionID:     sectionID,
		Title:         reqData.Title,
		ContentType:   reqData.ContentType,
		ContentURL:    reqData.ContentURL,
		TextContent:   reqData.TextContent,
		VideoDuration: reqData.VideoDuration,
		IsFree:        reqData.IsFree,
		SortOrder:     sortOrder,
	}

	if err := db.Create(&lecture).Error; err != nil {
		log.Printf("Error creating lecture: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lecture!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lecture created successfully!", lecture)
}

// loadOwnedLecture fetches a lecture and enforces ownership via its section's course
func loadOwnedLecture(lectureID uint, authUser middleware.AuthUser) (*models.Lecture, int, string) {
	var lecture models.Lecture
	if err := database.Database.Db.First(&lecture, lectureID).Error; err != nil {
		return nil, fiber.StatusNotFound, "Lecture not found!"
	}

	if _, status, msg := loadOwnedSection(lecture.SectionID, authUser); status != 0 {
		return nil, status, msg
	}

	return &lecture, 0, ""
}

func UpdateLecture(c *fiber.Ctx) error {
	authUser, ok := middleware.UserFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lectureID := c.Locals("lectureID").(uint)

	lecture, status, msg := loadOwnedLecture(lectureID, authUser)
	if lecture == nil {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	reqData, ok := c.Locals("validatedLectureUpdate").(*courseValidator.UpdateLectureRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	updates := map[string]interface{}{}
	if reqData.Title != nil {
		updates["title"] = *reqData.Title
	}
	if reqData.ContentType != nil {
		updates["content_type"] = *reqData.ContentType
	}
	if reqData.ContentURL != nil {
		updates["content_url"] = *reqData.ContentURL
	}
	if reqData.TextContent != nil {
		updates["text_content"] = *reqData.TextContent
	}
	if reqData.VideoDuration != nil {
		updates["video_duration"] = *reqData.VideoDuration
	}
	if reqData.IsFree != nil {
		updates["is_free"] = *reqData.IsFree
	}
	if reqData.SortOrder != nil {
		updates["sort_order"] = *reqData.SortOrder
	}

	if len(updates) > 0 {
		if err := database.Database.Db.Model(lecture).Updates(updates).Error; err != nil {
			log.Printf("Error updating lecture %d: %v", lectureID, err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lecture!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lecture updated successfully!", lecture)
}

func DeleteLecture(c *fiber.Ctx) error {
	authUser, ok := middleware.UserFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lectureID := c.Locals("lectureID").(uint)

	lecture, status, msg := loadOwnedLecture(lectureID, authUser)
	if lecture == nil {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	if err := database.Database.Db.Delete(lecture).Error; err != nil {
		log.Printf("Error deleting lecture %d: %v", lectureID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete lecture!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lecture deleted successfully!", nil)
}

// ReorderLectures rewrites sort orders within a section from the submitted id order
func ReorderLectures(c *fiber.Ctx) error {
	authUser, ok := middleware.UserFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	sectionID := c.Locals("sectionID").(uint)

	section, status, msg := loadOwnedSection(sectionID, authUser)
	if section == nil {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	reqData, ok := c.Locals("validatedReorder").(*courseValidator.ReorderRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		for index, id := range reqData.IDs {
			if err := tx.Model(&models.Lecture{}).
				Where("id = ? AND section_id = ?", id, sectionID).
				Update("sort_order", index).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Error reordering lectures for section %d: %v", sectionID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reorder lectures!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lectures reordered successfully!", nil)
}
