package models

// Goal is a learning objective used to group tutors and classify requests.
type Goal struct {
	ID   string `db:"id" json:"id"`
	Text string `db:"text" json:"text"`
}

// Teacher is a tutor profile with its weekly availability table.
type Teacher struct {
	ID      int                `db:"id" json:"id"`
	Name    string             `db:"name" json:"name"`
	About   string             `db:"about" json:"about"`
	Rating  float64            `db:"rating" json:"rating"`
	Picture string             `db:"picture" json:"picture"`
	Price   int                `db:"price" json:"price"`
	Goals   []string           `db:"-" json:"goals"`
	Free    WeeklyAvailability `db:"free" json:"free"`
}

// HasGoal reports whether the tutor teaches towards the goal code.
func (t Teacher) HasGoal(code string) bool {
	for _, g := range t.Goals {
		if g == code {
			return true
		}
	}
	return false
}

// TeacherSort enumerates listing orders for the catalog pages.
type TeacherSort string

const (
	SortRandom    TeacherSort = "random"
	SortRating    TeacherSort = "rating"
	SortPriceAsc  TeacherSort = "price_asc"
	SortPriceDesc TeacherSort = "price_desc"
)

// ParseTeacherSort maps a query value to a sort mode, defaulting to random.
func ParseTeacherSort(raw string) TeacherSort {
	switch TeacherSort(raw) {
	case SortRating, SortPriceAsc, SortPriceDesc:
		return TeacherSort(raw)
	default:
		return SortRandom
	}
}
