package enrollment

import (
	"time"

	"github.com/google/uuid"

	"github.com/learnkit/learnkit-go/catalog"
)

var syntheticEnrolledAt = time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)

// Synthetic builds the deterministic stand-in enrollment for a course.
func Synthetic(courseID string) *Enrollment {
	return &Enrollment{
		ID:         uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://learnkit.dev/enrollments/"+courseID)).String(),
		CourseID:   courseID,
		Progress:   0,
		EnrolledAt: syntheticEnrolledAt,
	}
}

// SyntheticList derives a plausible set of in-progress enrollments from the
// synthetic catalog, so the learning room is never empty in demo mode.
func SyntheticList() []Enrollment {
	courses := catalog.SyntheticList(catalog.Query{PerPage: 3})
	enrollments := make([]Enrollment, 0, len(courses))
	for i, course := range courses {
		e := Synthetic(course.ID)
		e.Progress = (i + 1) * 25
		enrollments = append(enrollments, *e)
	}
	return enrollments
}
