package progressController

import (
	"canaletto/database"
	"canaletto/middleware"
	"canaletto/models"
	"log"
	"time"

	progressValidator "canaletto/validators/progress"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// requireEnrolledLecture resolves a lecture to its owning course and
// checks the caller holds an enrollment. This runs on every write and is
// never cached: enrollment is the single source of truth for access, and
// courses can be restructured after enrollment.
func requireEnrolledLecture(lectureID, userID uint) (*models.Lecture, int, string) {
	db := database.Database.Db

	var lecture models.Lecture
	if err := db.First(&lecture, lectureID).Error; err != nil {
		return nil, fiber.StatusNotFound, "Lecture not found!"
	}

	var section models.CourseSection
	if err := db.First(&section, lecture.SectionID).Error; err != nil {
		return nil, fiber.StatusNotFound, "Lecture not found!"
	}

	var enrollment models.Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, section.CourseID).
		First(&enrollment).Error; err != nil {
		return nil, fiber.StatusForbidden, "Not enrolled in this course!"
	}

	return &lecture, 0, ""
}

// SaveProgress upserts the caller's position on one lecture as a single
// conditional write keyed on (user, lecture), so concurrent saves cannot
// race an existence check against an insert
func SaveProgress(c *fiber.Ctx) error {
	authUser, ok := middleware.UserFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedProgress").(*progressValidator.SaveProgressRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if _, status, msg := requireEnrolledLecture(reqData.LectureID, authUser.ID); status != 0 {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	now := time.Now()
	completed := reqData.Completed != nil && *reqData.Completed

	progress := models.Progress{
		UserID:      authUser.ID,
		LectureID:   reqData.LectureID,
		CurrentTime: reqData.CurrentTime,
		Completed:   completed,
		LastWatched: now,
	}
	if completed {
		progress.CompletedAt = &now
	}

	err := database.Database.Db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lecture_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"current_time", "completed", "completed_at", "last_watched", "updated_at",
		}),
	}).Create(&progress).Error
	if err != nil {
		log.Printf("Error saving progress for user %d lecture %d: %v", authUser.ID, reqData.LectureID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress saved successfully!", progress)
}

// MarkComplete forces completed=true for one lecture
func MarkComplete(c *fiber.Ctx) error {
	authUser, ok := middleware.UserFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lectureID := c.Locals("lectureID").(uint)

	if _, status, msg := requireEnrolledLecture(lectureID, authUser.ID); status != 0 {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	now := time.Now()
	progress := models.Progress{
		UserID:      authUser.ID,
		LectureID:   lectureID,
		Completed:   true,
		CompletedAt: &now,
		LastWatched: now,
	}

	err := database.Database.Db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lecture_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"completed", "completed_at", "last_watched", "updated_at",
		}),
	}).Create(&progress).Error
	if err != nil {
		log.Printf("Error marking lecture %d complete for user %d: %v", lectureID, authUser.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark lecture complete!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lecture marked as complete!", progress)
}

type lectureProgress struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CurrentTime float64    `json:"current_time"`
	LastWatched *time.Time `json:"last_watched"`
}

type sectionProgress struct {
	ID       uint              `json:"id"`
	Title    string            `json:"title"`
	Lectures []lectureProgress `json:"lectures"`
}

// GetCourseProgress returns the per-section breakdown and the aggregate
// completion percentage for one course
func GetCourseProgress(c *fiber.Ctx) error {
	authUser, ok := middleware.UserFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)

	db := database.Database.Db

	var course models.Course
	if err := db.First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var sections []models.CourseSection
	if err := db.Where("course_id = ?", courseID).
		Preload("Lectures", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order asc")
		}).
		Order("sort_order asc").Find(&sections).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	var lectureIDs []uint
	for _, section := range sections {
		for _, lecture := range section.Lectures {
			lectureIDs = append(lectureIDs, lecture.ID)
		}
	}

	progressByLecture := make(map[uint]models.Progress)
	if len(lectureIDs) > 0 {
		var rows []models.Progress
		if err := db.Where("user_id = ? AND lecture_id IN ?", authUser.ID, lectureIDs).
			Find(&rows).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
		}
		for _, row := range rows {
			progressByLecture[row.LectureID] = row
		}
	}

	totalLectures := len(lectureIDs)
	completedLectures := 0

	sectionBreakdown := make([]sectionProgress, len(sections))
	for i, section := range sections {
		lectures := make([]lectureProgress, len(section.Lectures))
		for j, lecture := range section.Lectures {
			entry := lectureProgress{ID: lecture.ID, Title: lecture.Title}
			if row, ok := progressByLecture[lecture.ID]; ok {
				entry.Completed = row.Completed
				entry.CurrentTime = row.CurrentTime
				watched := row.LastWatched
				entry.LastWatched = &watched
				if row.Completed {
					completedLectures++
				}
			}
			lectures[j] = entry
		}
		sectionBreakdown[i] = sectionProgress{ID: section.ID, Title: section.Title, Lectures: lectures}
	}

	// Integer division floors the ratio; zero lectures means zero percent
	percentage := 0
	if totalLectures > 0 {
		percentage = completedLectures * 100 / totalLectures
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"courseId":           courseID,
		"totalLectures":      totalLectures,
		"completedLectures":  completedLectures,
		"progressPercentage": percentage,
		"sections":           sectionBreakdown,
	})
}

type continueWatchingItem struct {
	LectureID    uint      `json:"lecture_id"`
	LectureTitle string    `json:"lecture_title"`
	CurrentTime  float64   `json:"current_time"`
	LastWatched  time.Time `json:"last_watched"`
	Course       fiber.Map `json:"course"`
}

// GetContinueWatching returns the 5 most recently touched incomplete
// lectures, most recent first
func GetContinueWatching(c *fiber.Ctx) error {
	authUser, ok := middleware.UserFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var rows []models.Progress
	if err := db.Where("user_id = ? AND completed = ?", authUser.ID, false).
		Order("last_watched desc").Limit(5).Find(&rows).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch continue watching!", nil)
	}

	items := make([]continueWatchingItem, 0, len(rows))
	for _, row := range rows {
		var lecture models.Lecture
		if err := db.First(&lecture, row.LectureID).Error; err != nil {
			continue
		}
		var section models.CourseSection
		if err := db.First(&section, lecture.SectionID).Error; err != nil {
			continue
		}
		var course models.Course
		if err := db.First(&course, section.CourseID).Error; err != nil {
			continue
		}

		items = append(items, continueWatchingItem{
			LectureID:    row.LectureID,
			LectureTitle: lecture.Title,
			CurrentTime:  row.CurrentTime,
			LastWatched:  row.LastWatched,
			Course: fiber.Map{
				"id":            course.ID,
				"title":         course.Title,
				"slug":          course.Slug,
				"thumbnail_url": course.ThumbnailURL,
			},
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Continue watching fetched successfully!", items)
}
