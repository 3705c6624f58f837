package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Fixture vocabulary for synthetic listings. Titles cycle per category so a
// filtered listing still looks filtered.
var (
	syntheticCategories = []string{"programming", "design", "business", "language"}
	syntheticLevels     = []string{"beginner", "intermediate", "advanced"}
	syntheticTitles     = map[string][]string{
		"programming": {"Practical Go", "Web APIs from Scratch", "Concurrent Systems", "Clean Architecture"},
		"design":      {"UI Fundamentals", "Typography in Practice", "Design Systems", "Figma Mastery"},
		"business":    {"Startup Finance", "Product Strategy", "Negotiation Basics", "Lean Operations"},
		"language":    {"Spanish for Travel", "Business English", "Japanese Kana", "French Pronunciation"},
	}
	syntheticInstructors = []string{"Mira Chen", "Jonas Berg", "Ada Okafor", "Tomás Rivera"}
)

const defaultPerPage = 8

// SyntheticList builds a deterministic course listing for q. The same query
// always yields the same courses; category and level filters are honoured
// and the sort key is applied.
func SyntheticList(q Query) []Course {
	categories := syntheticCategories
	if q.Category != "" {
		categories = []string{q.Category}
	}
	levels := syntheticLevels
	if q.Level != "" {
		levels = []string{q.Level}
	}

	perPage := q.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	courses := make([]Course, 0, perPage)
	for i := 0; len(courses) < perPage; i++ {
		category := categories[i%len(categories)]
		titles := syntheticTitles[category]
		if titles == nil {
			titles = []string{strings.Title(category) + " Essentials"} //nolint:staticcheck // fixture text, ASCII only
		}
		course := synthesize(category, levels[i%len(levels)], titles[i%len(titles)], i)
		if q.Search != "" && !strings.Contains(strings.ToLower(course.Title), strings.ToLower(q.Search)) {
			if i > perPage*len(syntheticTitles) {
				break
			}
			continue
		}
		courses = append(courses, course)
	}

	applySort(courses, q.Sort)
	return courses
}

// SyntheticCourse builds the deterministic stand-in for a single course ID.
func SyntheticCourse(id string) *Course {
	c := synthesize("programming", "beginner", "Practical Go", 0)
	c.ID = id
	return &c
}

func synthesize(category, level, title string, i int) Course {
	seed := fmt.Sprintf("https://learnkit.dev/courses/%s/%s/%s/%d", category, level, title, i)
	return Course{
		ID:         uuid.NewSHA1(uuid.NameSpaceURL, []byte(seed)).String(),
		Title:      title,
		Category:   category,
		Level:      level,
		Instructor: syntheticInstructors[i%len(syntheticInstructors)],
		Price:      19000 + (i%4)*10000,
		Rating:     4.0 + float64(i%10)/10,
		Lessons:    12 + (i%5)*4,
	}
}

func applySort(courses []Course, key string) {
	switch key {
	case "price":
		sort.SliceStable(courses, func(i, j int) bool { return courses[i].Price < courses[j].Price })
	case "rating":
		sort.SliceStable(courses, func(i, j int) bool { return courses[i].Rating > courses[j].Rating })
	case "title":
		sort.SliceStable(courses, func(i, j int) bool { return courses[i].Title < courses[j].Title })
	}
}
