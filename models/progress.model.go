package models

import (
	"time"

	"gorm.io/gorm"
)

// Progress tracks a user's playback position and completion for one lecture.
// Upserted on every save, never deleted in normal flow.
type Progress struct {
	gorm.Model
	UserID      uint       `json:"user_id" gorm:"uniqueIndex:idx_progress_user_lecture;not null"`
	LectureID   uint       `json:"lecture_id" gorm:"uniqueIndex:idx_progress_user_lecture;not null"`
	CurrentTime float64    `json:"current_time" gorm:"default:0"` // playback position in seconds
	Completed   bool       `json:"completed" gorm:"default:false"`
	CompletedAt *time.Time `json:"completed_at"`
	LastWatched time.Time  `json:"last_watched"`
}
