package paymentController

import (
	"canaletto/config"
	"canaletto/database"
	"canaletto/middleware"
	"canaletto/models"
	"canaletto/payments"
	"canaletto/utils"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"

	paymentValidator "canaletto/validators/payment"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var gateway payments.Gateway

// UseGateway installs the payment gateway the controllers call. Done once
// from main; tests install a fake.
func UseGateway(g payments.Gateway) {
	gateway = g
}

// CreateCheckoutSession starts a purchase. Preconditions are checked in
// order (course exists, course published, not already enrolled) and no
// gateway call is made if any of them fails.
func CreateCheckoutSession(c *fiber.Ctx) error {
	authUser, ok := middleware.UserFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCheckout").(*paymentValidator.CheckoutRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var course models.Course
	if err := db.First(&course, reqData.CourseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if course.Status != "PUBLISHED" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course is not published!", nil)
	}

	var existingEnrollment models.Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", authUser.ID, course.ID).
		First(&existingEnrollment).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Already enrolled in this course!", nil)
	}

	var user models.User
	if err := db.First(&user, authUser.ID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	// Provision a gateway customer on first purchase, reuse afterwards
	customerID := user.StripeCustomerID
	if customerID == "" {
		created, err := gateway.CreateCustomer(user.Email, user.ID)
		if err != nil {
			log.Printf("Error creating gateway customer for user %d: %v", user.ID, err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create checkout session!", nil)
		}
		customerID = created

		if err := db.Model(&user).Update("stripe_customer_id", customerID).Error; err != nil {
			log.Printf("Error saving customer id for user %d: %v", user.ID, err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create checkout session!", nil)
		}
	}

	// Effective price: discount wins when set
	price := course.Price
	if course.DiscountPrice != nil {
		price = *course.DiscountPrice
	}

	session, err := gateway.CreateCheckoutSession(payments.CheckoutParams{
		CustomerID:  customerID,
		CourseID:    course.ID,
		UserID:      user.ID,
		CourseTitle: course.Title,
		Description: course.ShortDescription,
		ImageURL:    course.ThumbnailURL,
		UnitAmount:  int64(math.Round(price * 100)),
		SuccessURL:  fmt.Sprintf("%s/courses/%s?success=true", config.AppConfig.FrontendURL, course.Slug),
		CancelURL:   fmt.Sprintf("%s/courses/%s?canceled=true", config.AppConfig.FrontendURL, course.Slug),
	})
	if err != nil {
		log.Printf("Error creating checkout session: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create checkout session!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Checkout session created!", fiber.Map{
		"sessionId": session.ID,
		"url":       session.URL,
	})
}

// HandleWebhook ingests gateway deliveries. The signature is verified
// against the raw body before anything else touches the request, and the
// handler always acknowledges processed events so the gateway stops
// redelivering them.
func HandleWebhook(c *fiber.Ctx) error {
	payload := c.Body()

	event, err := payments.ConstructEvent(payload, c.Get(payments.SignatureHeader), config.AppConfig.StripeWebhookSecret)
	if err != nil {
		log.Printf("Webhook signature verification failed: %v", err)
		return c.Status(fiber.StatusBadRequest).SendString("Webhook Error: " + err.Error())
	}

	status := models.WebhookIgnored

	switch event.Type {
	case "checkout.session.completed":
		var session payments.CheckoutSessionEvent
		if err := json.Unmarshal(event.Data.Object, &session); err != nil {
			log.Printf("Error parsing checkout session from event %s: %v", event.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Webhook handler failed"})
		}

		status, err = reconcileCheckout(session)
		if err != nil {
			log.Printf("Error reconciling checkout session %s: %v", session.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Webhook handler failed"})
		}

	case "payment_intent.succeeded":
		var intent payments.PaymentIntentEvent
		if err := json.Unmarshal(event.Data.Object, &intent); err == nil {
			log.Printf("PaymentIntent succeeded: %s", intent.ID)
		}
		status = models.WebhookProcessed

	case "payment_intent.payment_failed":
		var intent payments.PaymentIntentEvent
		if err := json.Unmarshal(event.Data.Object, &intent); err == nil {
			log.Printf("PaymentIntent failed: %s", intent.ID)
		}
		status = models.WebhookProcessed

	default:
		log.Printf("Unhandled event type: %s", event.Type)
	}

	recordWebhookEvent(event, status)

	return c.JSON(fiber.Map{"received": true})
}

// reconcileCheckout turns a completed checkout session into a durable
// enrollment, exactly once. A redelivered event finds the existing row
// (or trips the unique index) and becomes a no-op.
func reconcileCheckout(session payments.CheckoutSessionEvent) (string, error) {
	courseID, userID, ok := session.ParticipantIDs()
	if !ok {
		// Unfixable event: redelivery cannot help, so drop it but keep
		// the record visible via the webhook event log
		log.Printf("Missing metadata in checkout session %s, skipping", session.ID)
		return models.WebhookSkipped, nil
	}

	db := database.Database.Db

	var existing models.Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error; err == nil {
		log.Printf("Enrollment already exists for user %d in course %d, skipping", userID, courseID)
		return models.WebhookDuplicate, nil
	}

	enrollment := models.Enrollment{
		UserID:          userID,
		CourseID:        courseID,
		PaymentIntentID: session.PaymentIntent,
		AmountPaid:      float64(session.AmountTotal) / 100,
	}

	// Enrollment row and counter increment commit or fail together
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&enrollment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Course{}).Where("id = ?", courseID).
			Update("enrollment_count", gorm.Expr("enrollment_count + ?", 1)).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent delivery won the insert race; same outcome as
			// finding the row above
			log.Printf("Enrollment already exists for user %d in course %d, skipping", userID, courseID)
			return models.WebhookDuplicate, nil
		}
		return "", err
	}

	log.Printf("Enrollment created for user %d in course %d", userID, courseID)

	go sendEnrollmentEmail(userID, courseID)

	return models.WebhookProcessed, nil
}

func sendEnrollmentEmail(userID, courseID uint) {
	db := database.Database.Db

	var user models.User
	var course models.Course
	if err := db.First(&user, userID).Error; err != nil {
		return
	}
	if err := db.First(&course, courseID).Error; err != nil {
		return
	}

	if err := utils.SendEnrollmentConfirmation(user.Email, user.FirstName, course.Title); err != nil {
		log.Printf("Error sending enrollment confirmation to %s: %v", user.Email, err)
	}
}

// recordWebhookEvent keeps an audit row per delivery; redeliveries hit
// the unique event id and are not recorded twice
func recordWebhookEvent(event *payments.Event, status string) {
	record := models.WebhookEvent{
		EventID:   event.ID,
		EventType: event.Type,
		Status:    status,
		Payload:   []byte(event.Data.Object),
	}

	if err := database.Database.Db.Create(&record).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		log.Printf("Error recording webhook event %s: %v", event.ID, err)
	}
}

// GetUserEnrollments lists the caller's enrollments, newest first
func GetUserEnrollments(c *fiber.Ctx) error {
	authUser, ok := middleware.UserFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var enrollments []models.Enrollment
	if err := database.Database.Db.Where("user_id = ?", authUser.ID).
		Preload("Course").Preload("Course.Instructor").
		Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", enrollments)
}

// CheckEnrollment reports whether the caller is enrolled in one course
func CheckEnrollment(c *fiber.Ctx) error {
	authUser, ok := middleware.UserFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)

	var enrollment models.Enrollment
	err := database.Database.Db.Where("user_id = ? AND course_id = ?", authUser.ID, courseID).
		First(&enrollment).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment checked!", fiber.Map{
			"enrolled": false,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment checked!", fiber.Map{
		"enrolled":   true,
		"enrolledAt": enrollment.CreatedAt,
	})
}
