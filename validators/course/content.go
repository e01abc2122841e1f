package courseValidator

import (
	"canaletto/middleware"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type CreateSectionRequest struct {
	Title     string `json:"title" validate:"required,max=255"`
	SortOrder *int   `json:"sortOrder" validate:"omitempty,gte=0"`
}

type UpdateSectionRequest struct {
	Title     *string `json:"title" validate:"omitempty,min=1,max=255"`
	SortOrder *int    `json:"sortOrder" validate:"omitempty,gte=0"`
}

type CreateLectureRequest struct {
	Title         string `json:"title" validate:"required,max=255"`
	ContentType   string `json:"contentType" validate:"required,oneof=VIDEO PDF TEXT QUIZ"`
	ContentURL    string `json:"contentUrl"`
	TextContent   string `json:"textContent"`
	VideoDuration int    `json:"videoDuration" validate:"gte=0"`
	IsFree        bool   `json:"isFree"`
	SortOrder     *int   `json:"sortOrder" validate:"omitempty,gte=0"`
}

type UpdateLectureRequest struct {
	Title         *string `json:"title" validate:"omitempty,min=1,max=255"`
	ContentType   *string `json:"contentType" validate:"omitempty,oneof=VIDEO PDF TEXT QUIZ"`
	ContentURL    *string `json:"contentUrl"`
	TextContent   *string `json:"textContent"`
	VideoDuration *int    `json:"videoDuration" validate:"omitempty,gte=0"`
	IsFree        *bool   `json:"isFree"`
	SortOrder     *int    `json:"sortOrder" validate:"omitempty,gte=0"`
}

type ReorderRequest struct {
	IDs []uint `json:"ids" validate:"required,min=1"`
}

// idParam validates a positive integer route parameter and stores it
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

func CourseIDParam() fiber.Handler {
	return idParam("courseId", "courseID", "Invalid Course ID!")
}

func SectionIDParam() fiber.Handler {
	return idParam("sectionId", "sectionID", "Invalid Section ID!")
}

func LectureIDParam() fiber.Handler {
	return idParam("lectureId", "lectureID", "Invalid Lecture ID!")
}

func CreateSection() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateSectionRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedSection", reqData)
		return c.Next()
	}
}

func UpdateSection() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateSectionRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedSectionUpdate", reqData)
		return c.Next()
	}
}

func CreateLecture() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateLectureRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedLecture", reqData)
		return c.Next()
	}
}

func UpdateLecture() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateLectureRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedLectureUpdate", reqData)
		return c.Next()
	}
}

func Reorder() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ReorderRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedReorder", reqData)
		return c.Next()
	}
}
