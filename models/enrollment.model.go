package models

import "gorm.io/gorm"

// Enrollment is the durable record that a user has paid for a course.
// Created exactly once per successful checkout by the webhook handler,
// never updated or deleted afterwards. The composite unique index is the
// last line of defense against duplicate webhook deliveries.
type Enrollment struct {
	gorm.Model
	UserID          uint    `json:"user_id" gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	CourseID        uint    `json:"course_id" gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	PaymentIntentID string  `json:"payment_intent_id"`
	AmountPaid      float64 `json:"amount_paid" gorm:"default:0"`
	Course          Course  `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}
