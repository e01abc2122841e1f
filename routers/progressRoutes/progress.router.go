package progressRoutes

import (
	controllers "canaletto/controllers/progress"
	"canaletto/middleware"
	validators "canaletto/validators/progress"

	"github.com/gofiber/fiber/v2"
)

// SetupProgressRoutes sets up the watch-progress routes; every one of
// them requires authentication
func SetupProgressRoutes(app *fiber.App) {
	progressGroup := app.Group("/api/progress", middleware.JWTMiddleware)

	progressGroup.Post("/save", validators.SaveProgress(), controllers.SaveProgress)
	progressGroup.Patch("/lectures/:lectureId/complete", validators.LectureIDParam(), controllers.MarkComplete)
	progressGroup.Get("/courses/:courseId", validators.CourseIDParam(), controllers.GetCourseProgress)
	progressGroup.Get("/continue-watching", controllers.GetContinueWatching)
}
