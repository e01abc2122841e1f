package models

import "gorm.io/gorm"

// Review is a rating left by an enrolled user, one per user per course
type Review struct {
	gorm.Model
	UserID   uint   `json:"user_id" gorm:"uniqueIndex:idx_review_user_course;not null"`
	CourseID uint   `json:"course_id" gorm:"uniqueIndex:idx_review_user_course;not null"`
	Rating   int    `json:"rating" gorm:"not null"` // 1-5
	Comment  string `json:"comment" gorm:"type:text"`
	User     User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
