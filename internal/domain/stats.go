package domain

import "time"

// AuthorStats aggregates an author's non-deleted posts.
type AuthorStats struct {
	TotalPosts     int        `json:"totalPosts"`
	TotalWords     int        `json:"totalWords"`
	PublishedCount int        `json:"publishedCount"`
	LastActive     *time.Time `json:"lastActive"`
	ProductiveDay  string     `json:"productiveDay"`
	TimeOfDay      string     `json:"timeOfDay"`
	Insight        string     `json:"insight"`
}

// NoStat is shown for day and time-of-day when there is nothing to aggregate.
const NoStat = "-"

// DayNames are the Indonesian day names indexed by time.Weekday.
var DayNames = [7]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

// TimeOfDayBucket maps an hour of day to its bucket.
func TimeOfDayBucket(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "Pagi"
	case hour >= 12 && hour < 17:
		return "Siang"
	case hour >= 17 && hour < 21:
		return "Sore"
	default:
		return "Malam"
	}
}
