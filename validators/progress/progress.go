package progressValidator

import (
	"canaletto/middleware"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type SaveProgressRequest struct {
	LectureID   uint    `json:"lectureId"`
	CurrentTime float64 `json:"currentTime"`
	Completed   *bool   `json:"completed"`
}

func SaveProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SaveProgressRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if reqData.LectureID == 0 {
			errors["lectureId"] = "Lecture ID is required!"
		}
		if reqData.CurrentTime < 0 {
			errors["currentTime"] = "Current time must not be negative!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedProgress", reqData)
		return c.Next()
	}
}

func idParam(name, localsKey, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params(name))
		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, message, nil)
		}

		c.Locals(localsKey, uint(id))
		return c.Next()
	}
}

func LectureIDParam() fiber.Handler {
	return idParam("lectureId", "lectureID", "Invalid Lecture ID!")
}

func CourseIDParam() fiber.Handler {
	return idParam("courseId", "courseID", "Invalid Course ID!")
}
