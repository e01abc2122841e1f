package courseValidator

import (
	"canaletto/middleware"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type CreateCourseRequest struct {
	Title            string   `json:"title" validate:"required,max=255"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"shortDescription" validate:"max=500"`
	Price            float64  `json:"price" validate:"gte=0"`
	DiscountPrice    *float64 `json:"discountPrice" validate:"omitempty,gte=0"`
	Level            string   `json:"level" validate:"required,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Category         string   `json:"category"`
	ThumbnailURL     string   `json:"thumbnailUrl"`
}

type UpdateCourseRequest struct {
	Title            *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Description      *string  `json:"description"`
	ShortDescription *string  `json:"shortDescription" validate:"omitempty,max=500"`
	Price            *float64 `json:"price" validate:"omitempty,gte=0"`
	DiscountPrice    *float64 `json:"discountPrice" validate:"omitempty,gte=0"`
	Level            *string  `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Category         *string  `json:"category"`
	ThumbnailURL     *string  `json:"thumbnailUrl"`
	Status           *string  `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
}

type ListCoursesRequest struct {
	Status   string `query:"status"`
	Level    string `query:"level"`
	Category string `query:"category"`
	Search   string `query:"search"`
	Page     int    `query:"page"`
	Limit    int    `query:"limit"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment"`
}

func fieldErrors(err error) map[string]string {
	errors := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			errors[fe.Field()] = "Failed validation rule: " + fe.Tag()
		}
	}
	return errors
}

func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateCourseRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateCourseRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

func ListCourses() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ListCoursesRequest)

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		if reqData.Page < 1 {
			reqData.Page = 1
		}
		if reqData.Limit < 1 || reqData.Limit > 100 {
			reqData.Limit = 10
		}

		c.Locals("validatedList", reqData)
		return c.Next()
	}
}

// CourseID validates the numeric :id route parameter
func CourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		if idStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course ID is required!", nil)
		}

		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		c.Locals("courseID", uint(id))
		return c.Next()
	}
}

func CreateReview() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateReviewRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedReview", reqData)
		return c.Next()
	}
}
