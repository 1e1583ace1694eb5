package model

// Menu is one extracted lunch-menu occurrence, always tied to the document it
// came from. Menus are created once per extracted record and never mutated.
type Menu struct {
	ID         string  `json:"id"`
	DocumentID string  `json:"document_id"`
	Index      int     `json:"index"`
	Name       string  `json:"name"`
	Fruit      *string `json:"fruit,omitempty"`
	ImageURL   string  `json:"image_url,omitempty"`
}

// Nutrition holds the six nutrition facts of a menu, one row per menu.
// Values are decimal strings as parsed from the source; nil when unparsable.
type Nutrition struct {
	MenuID     string  `json:"menu_id"`
	EnergyKcal *string `json:"energy_kcal"`
	ProteinG   *string `json:"protein_g"`
	CarbsG     *string `json:"carbs_g"`
	IronMg     *string `json:"iron_mg"`
	VitaminAUg *string `json:"vitamin_a_ug"`
	ZincMg     *string `json:"zinc_mg"`
}

// MenuRecipe ties a menu to a recipe for a given course slot.
// A menu has at most one recipe per course type.
type MenuRecipe struct {
	MenuID   string     `json:"menu_id"`
	RecipeID string     `json:"recipe_id"`
	Type     CourseType `json:"type"`
}
