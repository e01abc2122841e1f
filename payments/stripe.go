package payments

import (
	"canaletto/config"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
)

// CheckoutParams carries everything needed to build a checkout session.
// CourseID and UserID travel as session metadata so the webhook can
// identify the purchase without a session-id lookup.
type CheckoutParams struct {
	CustomerID  string
	CourseID    uint
	UserID      uint
	CourseTitle string
	Description string
	ImageURL    string
	UnitAmount  int64 // minor units (cents)
	SuccessURL  string
	CancelURL   string
}

// CheckoutSession is the subset of the gateway response the caller needs
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Gateway is the payment-processor surface used by the controllers.
// Implemented by Client against the Stripe REST API.
type Gateway interface {
	CreateCustomer(email string, userID uint) (string, error)
	CreateCheckoutSession(params CheckoutParams) (*CheckoutSession, error)
}

// Client calls the Stripe REST API directly
type Client struct {
	http *resty.Client
}

// NewClient builds a gateway client from the loaded configuration
func NewClient() *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(config.AppConfig.StripeApiURL).
			SetAuthToken(config.AppConfig.StripeSecretKey).
			SetHeader("Content-Type", "application/x-www-form-urlencoded"),
	}
}

type stripeError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateCustomer registers a gateway customer for the user and returns
// its reference. Callers persist the reference and reuse it on later
// purchases, so this runs at most once per user.
func (c *Client) CreateCustomer(email string, userID uint) (string, error) {
	var customer struct {
		ID string `json:"id"`
	}
	var apiErr stripeError

	resp, err := c.http.R().
		SetFormData(map[string]string{
			"email":            email,
			"metadata[userId]": strconv.FormatUint(uint64(userID), 10),
		}).
		SetResult(&customer).
		SetError(&apiErr).
		Post("/v1/customers")
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %v", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("customer API error: %s", apiErr.Error.Message)
	}

	return customer.ID, nil
}

// CreateCheckoutSession creates a single-item card checkout session
func (c *Client) CreateCheckoutSession(params CheckoutParams) (*CheckoutSession, error) {
	form := map[string]string{
		"customer":                 params.CustomerID,
		"mode":                     "payment",
		"payment_method_types[0]":  "card",
		"success_url":              params.SuccessURL,
		"cancel_url":               params.CancelURL,
		"metadata[courseId]":       strconv.FormatUint(uint64(params.CourseID), 10),
		"metadata[userId]":         strconv.FormatUint(uint64(params.UserID), 10),
		"line_items[0][quantity]":  "1",
		"line_items[0][price_data][currency]":                   "usd",
		"line_items[0][price_data][unit_amount]":                strconv.FormatInt(params.UnitAmount, 10),
		"line_items[0][price_data][product_data][name]":         params.CourseTitle,
	}
	if params.Description != "" {
		form["line_items[0][price_data][product_data][description]"] = params.Description
	}
	if params.ImageURL != "" {
		form["line_items[0][price_data][product_data][images][0]"] = params.ImageURL
	}

	var session CheckoutSession
	var apiErr stripeError

	resp, err := c.http.R().
		SetFormData(form).
		SetResult(&session).
		SetError(&apiErr).
		Post("/v1/checkout/sessions")
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %v", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("checkout session API error: %s", apiErr.Error.Message)
	}

	return &session, nil
}
