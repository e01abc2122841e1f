package paymentValidator

import (
	"canaletto/middleware"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type CheckoutRequest struct {
	CourseID uint `json:"courseId"`
}

func CreateCheckoutSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CheckoutRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.CourseID == 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{"courseId": "Course ID is required!"})
		}

		c.Locals("validatedCheckout", reqData)
		return c.Next()
	}
}

// CourseIDParam validates the :courseId route parameter
func CourseIDParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("courseId"))
		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		c.Locals("courseID", uint(id))
		return c.Next()
	}
}
