package model

import (
	"strings"
	"time"

	"github.com/iliyamo/questboard/internal/calendar"
)

// Category is the closed set of quest cadences.  Storage and JSON always use
// the canonical lowercase form.
type Category string

const (
	CategoryDaily   Category = "daily"
	CategoryWeekly  Category = "weekly"
	CategoryOneTime Category = "one_time"
	CategoryMonthly Category = "monthly"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryDaily, CategoryWeekly, CategoryOneTime, CategoryMonthly}

// categoryLabels is the single mapping from external labels to categories.
// Keys are lower-cased with surrounding space removed.
var categoryLabels = map[string]Category{
	"daily":    CategoryDaily,
	"day":      CategoryDaily,
	"weekly":   CategoryWeekly,
	"week":     CategoryWeekly,
	"one_time": CategoryOneTime,
	"one-time": CategoryOneTime,
	"one time": CategoryOneTime,
	"onetime":  CategoryOneTime,
	"once":     CategoryOneTime,
	"monthly":  CategoryMonthly,
	"month":    CategoryMonthly,
}

// ParseCategory maps any accepted label ("Daily", "One-time", "one_time", ...)
// to its canonical Category.
func ParseCategory(label string) (Category, bool) {
	c, ok := categoryLabels[strings.ToLower(strings.TrimSpace(label))]
	return c, ok
}

// Valid reports whether c is one of the canonical categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryDaily, CategoryWeekly, CategoryOneTime, CategoryMonthly:
		return true
	}
	return false
}

// Recurring reports whether templates may use the category.
func (c Category) Recurring() bool {
	return c == CategoryDaily || c == CategoryWeekly
}

// Quest mirrors a row of the `quests` table.  Completed flips from false to
// true at most once; no operation ever clears it.
type Quest struct {
	ID          uint64        `json:"id"`
	OwnerID     uint64        `json:"owner_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    Category      `json:"category"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
	Completed   bool          `json:"completed"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	TemplateID  *uint64       `json:"template_id,omitempty"`
	ResetDate   calendar.Date `json:"reset_date"`
	IsRecurring bool          `json:"is_recurring"`
}

// QuestFilter narrows a quest listing.  A nil Category matches all.
type QuestFilter struct {
	Category         *Category
	IncludeCompleted bool
}

// Reward is what one effective completion grants.
type Reward struct {
	Experience int `json:"experience"`
	Coins      int `json:"coins"`
}

// IsZero reports whether nothing was granted.
func (r Reward) IsZero() bool { return r.Experience == 0 && r.Coins == 0 }
