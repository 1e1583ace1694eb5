package model

// Recipe is the deduplicated, document-independent identity of a dish,
// keyed by (name, course type). At most one row exists per key across the
// whole corpus; the first writer's ingredient and preparation text wins.
type Recipe struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Type            CourseType `json:"type"`
	IngredientsText *string    `json:"ingredients_text"`
	PreparationText *string    `json:"preparation_text"`
}

// MenuCourse is a read-model pairing of a menu's course slot with its
// resolved recipe.
type MenuCourse struct {
	Type   CourseType `json:"type"`
	Recipe Recipe     `json:"recipe"`
}
