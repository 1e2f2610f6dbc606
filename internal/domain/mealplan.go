package domain

import (
	"github.com/google/uuid"
)

// FoodItem is one entry in a meal with its portion and macros.
type FoodItem struct {
	ID       string  `bson:"id" json:"id"`
	Name     string  `bson:"name" json:"name"`
	Grams    float64 `bson:"grams" json:"grams"`
	Calories float64 `bson:"calories" json:"calories"`
	Protein  float64 `bson:"protein,omitempty" json:"protein,omitempty"`
	Carbs    float64 `bson:"carbs,omitempty" json:"carbs,omitempty"`
	Fat      float64 `bson:"fat,omitempty" json:"fat,omitempty"`
}

// Meal owns an ordered list of food items.
type Meal struct {
	ID    string     `bson:"id" json:"id"`
	Title string     `bson:"title" json:"title"` // e.g. "Breakfast"
	Items []FoodItem `bson:"items,omitempty" json:"items,omitempty"`
}

// MealPlan is the nutrition counterpart of the training weeks, attachable to
// a request or a course.
type MealPlan struct {
	ID    string `bson:"id" json:"id"`
	Title string `bson:"title" json:"title"`
	Notes string `bson:"notes,omitempty" json:"notes,omitempty"`
	Meals []Meal `bson:"meals,omitempty" json:"meals,omitempty"`
}

// Clone returns a deep copy of the item with a fresh id.
func (f FoodItem) Clone() FoodItem {
	c := f
	c.ID = uuid.NewString()
	return c
}

// Clone returns a deep copy of the meal, with fresh ids throughout.
func (m Meal) Clone() Meal {
	c := m
	c.ID = uuid.NewString()
	c.Items = make([]FoodItem, len(m.Items))
	for i, it := range m.Items {
		c.Items[i] = it.Clone()
	}
	return c
}

// Clone returns a deep copy of the plan, with fresh ids throughout.
func (p MealPlan) Clone() MealPlan {
	c := p
	c.ID = uuid.NewString()
	c.Meals = make([]Meal, len(p.Meals))
	for i, m := range p.Meals {
		c.Meals[i] = m.Clone()
	}
	return c
}
