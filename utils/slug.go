package utils

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug converts a title into a URL-friendly slug
func GenerateSlug(title string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// UniqueCourseSlug generates a slug for a course title, appending a
// numeric suffix until no other course holds it
func UniqueCourseSlug(db *gorm.DB, model interface{}, title string) string {
	base := GenerateSlug(title)
	slug := base

	for counter := 1; ; counter++ {
		var count int64
		db.Model(model).Where("slug = ?", slug).Count(&count)
		if count == 0 {
			return slug
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}
