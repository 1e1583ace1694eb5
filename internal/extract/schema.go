package extract

import (
	"errors"
	"fmt"
)

// ErrSchema marks a model response that does not conform to the extraction
// schema. The orchestrator treats it as a pair-level failure.
var ErrSchema = errors.New("extraction response violates schema")

// Course is one dish slot within a menu: a name, its ingredient list and the
// preparation steps.
type Course struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
	Preparation []string `json:"preparation"`
}

// NutritionFacts carries the six nutrition values as free-text strings; the
// model may include units that are parsed out downstream.
type NutritionFacts struct {
	Energy        string `json:"energy"`
	Protein       string `json:"protein"`
	Carbohydrates string `json:"carbohydrates"`
	Iron          string `json:"iron"`
	VitaminA      string `json:"vitaminA"`
	Zinc          string `json:"zinc"`
}

// Menu is one extracted lunch menu: the descriptive title, nutrition facts,
// up to three courses and an optional fruit/dessert note. MainCourse is the
// only required course.
type Menu struct {
	Name            string         `json:"name"`
	NutritionalInfo NutritionFacts `json:"nutritionalInfo"`
	Starter         *Course        `json:"starter"`
	MainCourse      *Course        `json:"mainCourse"`
	Drink           *Course        `json:"drink"`
	Fruit           *string        `json:"fruit"`
}

type menusPayload struct {
	Menus []Menu `json:"menus"`
}

func (p *menusPayload) validate() error {
	for i, m := range p.Menus {
		if m.Name == "" {
			return fmt.Errorf("%w: menus[%d].name is empty", ErrSchema, i)
		}
		if m.MainCourse == nil {
			return fmt.Errorf("%w: menus[%d].mainCourse is missing", ErrSchema, i)
		}
		if err := m.MainCourse.validate(); err != nil {
			return fmt.Errorf("%w: menus[%d].mainCourse: %v", ErrSchema, i, err)
		}
		if m.Starter != nil {
			if err := m.Starter.validate(); err != nil {
				return fmt.Errorf("%w: menus[%d].starter: %v", ErrSchema, i, err)
			}
		}
		if m.Drink != nil {
			if err := m.Drink.validate(); err != nil {
				return fmt.Errorf("%w: menus[%d].drink: %v", ErrSchema, i, err)
			}
		}
	}
	return nil
}

func (c *Course) validate() error {
	if c.Name == "" {
		return errors.New("course name is empty")
	}
	return nil
}
