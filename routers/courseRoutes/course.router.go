package courseRoutes

import (
	controllers "canaletto/controllers/course"
	"canaletto/middleware"
	validators "canaletto/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up the public catalog, instructor CRUD and
// section/lecture content management routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/api/courses")

	// Public catalog
	courseGroup.Get("/", validators.ListCourses(), controllers.GetAllCourses)
	courseGroup.Get("/:id", controllers.GetCourseDetails)

	// Instructor CRUD
	staffOnly := middleware.RequireRole("INSTRUCTOR", "ADMIN")
	courseGroup.Post("/", middleware.JWTMiddleware, staffOnly, validators.CreateCourse(), controllers.CreateCourse)
	courseGroup.Put("/:id", middleware.JWTMiddleware, staffOnly, validators.CourseID(), validators.UpdateCourse(), controllers.UpdateCourse)
	courseGroup.Delete("/:id", middleware.JWTMiddleware, staffOnly, validators.CourseID(), controllers.DeleteCourse)

	// Reviews (enrolled students)
	courseGroup.Post("/:id/reviews", middleware.JWTMiddleware, validators.CourseID(), validators.CreateReview(), controllers.CreateReview)

	// Section/lecture content management
	contentGroup := app.Group("/api/content")

	contentGroup.Get("/courses/:courseId/sections", validators.CourseIDParam(), controllers.GetCourseSections)
	contentGroup.Post("/courses/:courseId/sections", middleware.JWTMiddleware, staffOnly, validators.CourseIDParam(), validators.CreateSection(), controllers.CreateSection)
	contentGroup.Post("/courses/:courseId/sections/reorder", middleware.JWTMiddleware, staffOnly, validators.CourseIDParam(), validators.Reorder(), controllers.ReorderSections)
	contentGroup.Put("/sections/:sectionId", middleware.JWTMiddleware, staffOnly, validators.SectionIDParam(), validators.UpdateSection(), controllers.UpdateSection)
	contentGroup.Delete("/sections/:sectionId", middleware.JWTMiddleware, staffOnly, validators.SectionIDParam(), controllers.DeleteSection)

	contentGroup.Post("/sections/:sectionId/lectures", middleware.JWTMiddleware, staffOnly, validators.SectionIDParam(), validators.CreateLecture(), controllers.CreateLecture)
	contentGroup.Post("/sections/:sectionId/lectures/reorder", middleware.JWTMiddleware, staffOnly, validators.SectionIDParam(), validators.Reorder(), controllers.ReorderLectures)
	contentGroup.Put("/lectures/:lectureId", middleware.JWTMiddleware, staffOnly, validators.LectureIDParam(), validators.UpdateLecture(), controllers.UpdateLecture)
	contentGroup.Delete("/lectures/:lectureId", middleware.JWTMiddleware, staffOnly, validators.LectureIDParam(), controllers.DeleteLecture)
}
