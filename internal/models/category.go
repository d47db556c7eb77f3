package models

// CategoryColors is the fixed palette a category color must come from.
var CategoryColors = []string{
	"#3B82F6", // blue
	"#10B981", // green
	"#EF4444", // red
	"#F59E0B", // amber
	"#8B5CF6", // violet
	"#EC4899", // pink
	"#6366F1", // indigo
	"#14B8A6", // teal
}

// CategoryIcons is the fixed set of glyphs a category icon must come from.
var CategoryIcons = []string{
	"🏠", "🚗", "🛒", "🏥", "🎓", "🎬", "👕", "🍽️", "✈️", "💻",
}

// ValidCategoryColor reports whether color is in the palette.
func ValidCategoryColor(color string) bool {
	for _, c := range CategoryColors {
		if c == color {
			return true
		}
	}
	return false
}

// ValidCategoryIcon reports whether icon is in the glyph set.
func ValidCategoryIcon(icon string) bool {
	for _, i := range CategoryIcons {
		if i == icon {
			return true
		}
	}
	return false
}

// Category represents a user-defined spending bucket. Expenses belong to
// exactly one category and do not outlive it.
type Category struct {
	Base
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string `gorm:"not null" json:"name"`
	Color  string `gorm:"size:7;not null" json:"color"`
	Icon   string `gorm:"size:16;not null" json:"icon"`

	// Relationships
	Expenses []Expense `gorm:"foreignKey:CategoryID" json:"expenses,omitempty"`
}
