package paymentController_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"canaletto/config"
	paymentController "canaletto/controllers/payment"
	"canaletto/database"
	"canaletto/middleware"
	"canaletto/models"
	"canaletto/payments"
	paymentRoutes "canaletto/routers/paymentRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeGateway struct {
	customerCalls int
	sessionCalls  int
	lastParams    payments.CheckoutParams
}

func (f *fakeGateway) CreateCustomer(email string, userID uint) (string, error) {
	f.customerCalls++
	return "cus_test", nil
}

func (f *fakeGateway) CreateCheckoutSession(p payments.CheckoutParams) (*payments.CheckoutSession, error) {
	f.sessionCalls++
	f.lastParams = p
	return &payments.CheckoutSession{ID: "cs_test_123", URL: "https://checkout.test/cs_test_123"}, nil
}

func setupTestDb(t *testing.T) *gorm.DB {
	config.LoadConfig()
	config.AppConfig.StripeWebhookSecret = "whsec_test_secret"

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.CourseSection{},
		&models.Lecture{},
		&models.Enrollment{},
		&models.Progress{},
		&models.Review{},
		&models.WebhookEvent{},
	))

	database.Database = database.DbInstance{Db: db}
	return db
}

func newTestApp(t *testing.T) (*fiber.App, *fakeGateway, *gorm.DB) {
	db := setupTestDb(t)

	gw := &fakeGateway{}
	paymentController.UseGateway(gw)

	app := fiber.New()
	paymentRoutes.SetupPaymentRoutes(app)

	return app, gw, db
}

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	user := models.User{Email: email, Password: "hashed", FirstName: "Test", LastName: "User"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedCourse(t *testing.T, db *gorm.DB, instructorID uint, status string, price float64) models.Course {
	course := models.Course{
		Title:        "Test Course",
		Slug:         fmt.Sprintf("test-course-%d", time.Now().UnixNano()),
		Price:        price,
		Status:       status,
		InstructorID: instructorID,
	}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func authedRequest(t *testing.T, method, target string, body interface{}, user models.User) *http.Request {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	token, err := middleware.GenerateJWT(user.ID, user.Email, user.Role)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	return req
}

func checkoutCompletedPayload(t *testing.T, eventID, sessionID string, amountTotal int64, metadata map[string]string) []byte {
	payload, err := json.Marshal(fiber.Map{
		"id":   eventID,
		"type": "checkout.session.completed",
		"data": fiber.Map{
			"object": fiber.Map{
				"id":             sessionID,
				"payment_intent": "pi_test_1",
				"amount_total":   amountTotal,
				"metadata":       metadata,
			},
		},
	})
	require.NoError(t, err)
	return payload
}

func deliverWebhook(t *testing.T, app *fiber.App, payload []byte, sign bool) *http.Response {
	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if sign {
		req.Header.Set(payments.SignatureHeader,
			payments.SignatureHeaderValue(time.Now(), payload, config.AppConfig.StripeWebhookSecret))
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestCheckoutRejectsMissingCourse(t *testing.T) {
	app, gw, db := newTestApp(t)
	user := seedUser(t, db, "student@test.dev")

	req := authedRequest(t, http.MethodPost, "/api/payment/create-checkout-session",
		fiber.Map{"courseId": 999}, user)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 0, gw.customerCalls)
	assert.Equal(t, 0, gw.sessionCalls)
}

func TestCheckoutRejectsUnpublishedCourse(t *testing.T) {
	app, gw, db := newTestApp(t)
	instructor := seedUser(t, db, "teacher@test.dev")
	user := seedUser(t, db, "student@test.dev")
	course := seedCourse(t, db, instructor.ID, "DRAFT", 50)

	req := authedRequest(t, http.MethodPost, "/api/payment/create-checkout-session",
		fiber.Map{"courseId": course.ID}, user)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, gw.sessionCalls)
}

func TestCheckoutRejectsExistingEnrollment(t *testing.T) {
	app, gw, db := newTestApp(t)
	instructor := seedUser(t, db, "teacher@test.dev")
	user := seedUser(t, db, "student@test.dev")
	course := seedCourse(t, db, instructor.ID, "PUBLISHED", 50)

	require.NoError(t, db.Create(&models.Enrollment{UserID: user.ID, CourseID: course.ID}).Error)

	req := authedRequest(t, http.MethodPost, "/api/payment/create-checkout-session",
		fiber.Map{"courseId": course.ID}, user)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, gw.customerCalls)
	assert.Equal(t, 0, gw.sessionCalls)
}

func TestCheckoutCreatesSessionAndProvisionsCustomer(t *testing.T) {
	app, gw, db := newTestApp(t)
	instructor := seedUser(t, db, "teacher@test.dev")
	user := seedUser(t, db, "student@test.dev")
	course := seedCourse(t, db, instructor.ID, "PUBLISHED", 50)

	req := authedRequest(t, http.MethodPost, "/api/payment/create-checkout-session",
		fiber.Map{"courseId": course.ID}, user)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, gw.customerCalls)
	assert.Equal(t, 1, gw.sessionCalls)
	assert.Equal(t, int64(5000), gw.lastParams.UnitAmount)
	assert.Equal(t, course.ID, gw.lastParams.CourseID)
	assert.Equal(t, user.ID, gw.lastParams.UserID)

	var body struct {
		Data struct {
			SessionID string `json:"sessionId"`
			URL       string `json:"url"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "cs_test_123", body.Data.SessionID)
	assert.NotEmpty(t, body.Data.URL)

	// Customer reference persisted for reuse
	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, "cus_test", reloaded.StripeCustomerID)

	// Second checkout for another course reuses the stored customer
	other := seedCourse(t, db, instructor.ID, "PUBLISHED", 30)
	req = authedRequest(t, http.MethodPost, "/api/payment/create-checkout-session",
		fiber.Map{"courseId": other.ID}, user)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, gw.customerCalls)
	assert.Equal(t, 2, gw.sessionCalls)
}

func TestCheckoutUsesDiscountPrice(t *testing.T) {
	app, gw, db := newTestApp(t)
	instructor := seedUser(t, db, "teacher@test.dev")
	user := seedUser(t, db, "student@test.dev")

	discount := 19.99
	course := seedCourse(t, db, instructor.ID, "PUBLISHED", 50)
	require.NoError(t, db.Model(&course).Update("discount_price", discount).Error)

	req := authedRequest(t, http.MethodPost, "/api/payment/create-checkout-session",
		fiber.Map{"courseId": course.ID}, user)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1999), gw.lastParams.UnitAmount)
}

func TestWebhookRejectsMissingSignatureWithoutSideEffects(t *testing.T) {
	app, _, db := newTestApp(t)
	instructor := seedUser(t, db, "teacher@test.dev")
	user := seedUser(t, db, "student@test.dev")
	course := seedCourse(t, db, instructor.ID, "PUBLISHED", 50)

	payload := checkoutCompletedPayload(t, "evt_1", "cs_1", 5000, map[string]string{
		"courseId": fmt.Sprint(course.ID),
		"userId":   fmt.Sprint(user.ID),
	})

	resp := deliverWebhook(t, app, payload, false)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var count int64
	db.Model(&models.Enrollment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestWebhookRejectsTamperedPayload(t *testing.T) {
	app, _, db := newTestApp(t)
	instructor := seedUser(t, db, "teacher@test.dev")
	user := seedUser(t, db, "student@test.dev")
	course := seedCourse(t, db, instructor.ID, "PUBLISHED", 50)

	payload := checkoutCompletedPayload(t, "evt_1", "cs_1", 5000, map[string]string{
		"courseId": fmt.Sprint(course.ID),
		"userId":   fmt.Sprint(user.ID),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(payments.SignatureHeader,
		payments.SignatureHeaderValue(time.Now(), []byte("different body"), config.AppConfig.StripeWebhookSecret))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var count int64
	db.Model(&models.Enrollment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestWebhookCreatesEnrollmentExactlyOnce(t *testing.T) {
	app, _, db := newTestApp(t)
	instructor := seedUser(t, db, "teacher@test.dev")
	user := seedUser(t, db, "student@test.dev")
	course := seedCourse(t, db, instructor.ID, "PUBLISHED", 50)

	payload := checkoutCompletedPayload(t, "evt_1", "cs_1", 5000, map[string]string{
		"courseId": fmt.Sprint(course.ID),
		"userId":   fmt.Sprint(user.ID),
	})

	// The gateway may deliver the same event more than once
	for i := 0; i < 2; i++ {
		resp := deliverWebhook(t, app, payload, true)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, true, body["received"])
	}

	var enrollments []models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", user.ID, course.ID).Find(&enrollments).Error)
	require.Len(t, enrollments, 1)
	assert.Equal(t, 50.0, enrollments[0].AmountPaid)
	assert.Equal(t, "pi_test_1", enrollments[0].PaymentIntentID)

	var reloaded models.Course
	require.NoError(t, db.First(&reloaded, course.ID).Error)
	assert.Equal(t, 1, reloaded.EnrollmentCount)
}

func TestWebhookSkipsEventWithMissingMetadata(t *testing.T) {
	app, _, db := newTestApp(t)

	payload := checkoutCompletedPayload(t, "evt_2", "cs_2", 5000, map[string]string{})

	resp := deliverWebhook(t, app, payload, true)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var count int64
	db.Model(&models.Enrollment{}).Count(&count)
	assert.Equal(t, int64(0), count)

	// The drop is visible in the event log
	var record models.WebhookEvent
	require.NoError(t, db.Where("event_id = ?", "evt_2").First(&record).Error)
	assert.Equal(t, models.WebhookSkipped, record.Status)
}

func TestWebhookIgnoresUnknownEventTypes(t *testing.T) {
	app, _, db := newTestApp(t)

	payload, err := json.Marshal(fiber.Map{
		"id":   "evt_3",
		"type": "customer.subscription.updated",
		"data": fiber.Map{"object": fiber.Map{"id": "sub_1"}},
	})
	require.NoError(t, err)

	resp := deliverWebhook(t, app, payload, true)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var record models.WebhookEvent
	require.NoError(t, db.Where("event_id = ?", "evt_3").First(&record).Error)
	assert.Equal(t, models.WebhookIgnored, record.Status)
}

func TestCheckEnrollment(t *testing.T) {
	app, _, db := newTestApp(t)
	instructor := seedUser(t, db, "teacher@test.dev")
	user := seedUser(t, db, "student@test.dev")
	course := seedCourse(t, db, instructor.ID, "PUBLISHED", 50)

	req := authedRequest(t, http.MethodGet, fmt.Sprintf("/api/payment/enrollment/%d", course.ID), nil, user)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			Enrolled bool `json:"enrolled"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Data.Enrolled)

	require.NoError(t, db.Create(&models.Enrollment{UserID: user.ID, CourseID: course.ID}).Error)

	req = authedRequest(t, http.MethodGet, fmt.Sprintf("/api/payment/enrollment/%d", course.ID), nil, user)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Data.Enrolled)
}

func TestDuplicateEnrollmentInsertHitsUniqueIndex(t *testing.T) {
	_, _, db := newTestApp(t)
	instructor := seedUser(t, db, "teacher@test.dev")
	user := seedUser(t, db, "student@test.dev")
	course := seedCourse(t, db, instructor.ID, "PUBLISHED", 50)

	require.NoError(t, db.Create(&models.Enrollment{UserID: user.ID, CourseID: course.ID}).Error)

	err := db.Create(&models.Enrollment{UserID: user.ID, CourseID: course.ID}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
