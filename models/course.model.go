package models

import "gorm.io/gorm"

// Course represents a sellable course authored by an instructor
type Course struct {
	gorm.Model
	Title            string   `json:"title"`
	Slug             string   `json:"slug" gorm:"uniqueIndex"`
	Description      string   `json:"description" gorm:"type:text"`
	ShortDescription string   `json:"short_description"`
	Price            float64  `json:"price" gorm:"default:0"`
	DiscountPrice    *float64 `json:"discount_price"`
	Level            string   `json:"level" gorm:"default:'BEGINNER'"` // BEGINNER, INTERMEDIATE, ADVANCED
	Category         string   `json:"category"`
	ThumbnailURL     string   `json:"thumbnail_url"`
	Status           string   `json:"status" gorm:"default:'DRAFT'"` // DRAFT, PUBLISHED, ARCHIVED
	EnrollmentCount  int      `json:"enrollment_count" gorm:"default:0"`
	InstructorID     uint     `json:"instructor_id" gorm:"index;not null"`
	Instructor       User     `json:"instructor,omitempty" gorm:"foreignKey:InstructorID"`

	Sections []CourseSection `json:"sections,omitempty" gorm:"foreignKey:CourseID"`
	Reviews  []Review        `json:"reviews,omitempty" gorm:"foreignKey:CourseID"`
}

// CourseSection is an ordered group of lectures within a course
type CourseSection struct {
	gorm.Model
	CourseID  uint      `json:"course_id" gorm:"index;not null"`
	Title     string    `json:"title"`
	SortOrder int       `json:"sort_order" gorm:"default:0"`
	Lectures  []Lecture `json:"lectures,omitempty" gorm:"foreignKey:SectionID"`
}

// Lecture is a single piece of content within a section
type Lecture struct {
	gorm.Model
	SectionID     uint   `json:"section_id" gorm:"index;not null"`
	Title         string `json:"title"`
	ContentType   string `json:"content_type" gorm:"default:'VIDEO'"` // VIDEO, PDF, TEXT, QUIZ
	ContentURL    string `json:"content_url"`
	TextContent   string `json:"text_content" gorm:"type:text"`
	VideoDuration int    `json:"video_duration" gorm:"default:0"` // seconds
	IsFree        bool   `json:"is_free" gorm:"default:false"`
	SortOrder     int    `json:"sort_order" gorm:"default:0"`
}
