package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutTemplate is a reusable day's worth of exercises a coach can clone
// into a bespoke program. Application is always a deep copy, never a
// reference: edits to the clone must not reach the template.
type WorkoutTemplate struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID   primitive.ObjectID `bson:"coachId" json:"coachId"`
	Name      string             `bson:"name" json:"name"`
	Exercises []Exercise         `bson:"exercises,omitempty" json:"exercises,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MealTemplate is the nutrition counterpart of WorkoutTemplate.
type MealTemplate struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID   primitive.ObjectID `bson:"coachId" json:"coachId"`
	Name      string             `bson:"name" json:"name"`
	Meals     []Meal             `bson:"meals,omitempty" json:"meals,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CloneExercises returns deep copies of the template's exercises with fresh
// ids, ready to append to a day program.
func (t *WorkoutTemplate) CloneExercises() []Exercise {
	out := make([]Exercise, len(t.Exercises))
	for i, e := range t.Exercises {
		out[i] = e.Clone()
	}
	return out
}

// CloneMeals returns deep copies of the template's meals with fresh ids.
func (t *MealTemplate) CloneMeals() []Meal {
	out := make([]Meal, len(t.Meals))
	for i, m := range t.Meals {
		out[i] = m.Clone()
	}
	return out
}
