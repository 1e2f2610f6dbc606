package domain

import (
	"github.com/google/uuid"
)

// Exercise is one prescription inside a day of authored training content.
type Exercise struct {
	ID      string `bson:"id" json:"id"`
	Name    string `bson:"name" json:"name"`
	Sets    int    `bson:"sets" json:"sets"`
	Reps    string `bson:"reps" json:"reps"` // e.g. "8-12", "AMRAP"
	RestSec int    `bson:"restSec" json:"restSec"`
	Format  string `bson:"format,omitempty" json:"format,omitempty"` // e.g. "EMOM", "superset"
	Notes   string `bson:"notes,omitempty" json:"notes,omitempty"`

	// Media references by URL/key, not ownership.
	VideoURL string `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	ImageURL string `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`

	// When set, publishing the program also copies this exercise into the
	// coach's reusable template library.
	SaveToLibrary bool `bson:"saveToLibrary" json:"saveToLibrary"`
}

// DayProgram owns an ordered list of exercises.
type DayProgram struct {
	ID        string     `bson:"id" json:"id"`
	Title     string     `bson:"title" json:"title"` // e.g. "Day 1: Upper Body"
	Notes     string     `bson:"notes,omitempty" json:"notes,omitempty"`
	Exercises []Exercise `bson:"exercises,omitempty" json:"exercises,omitempty"`
}

// WeekProgram owns an ordered list of days.
type WeekProgram struct {
	ID    string       `bson:"id" json:"id"`
	Title string       `bson:"title" json:"title"` // e.g. "Week 1: Accumulation"
	Days  []DayProgram `bson:"days,omitempty" json:"days,omitempty"`
}

// Clone returns a deep copy of the exercise with a freshly generated id.
func (e Exercise) Clone() Exercise {
	c := e
	c.ID = uuid.NewString()
	return c
}

// Clone returns a deep copy of the day, with fresh ids throughout, so edits
// to the copy never reach the original.
func (d DayProgram) Clone() DayProgram {
	c := d
	c.ID = uuid.NewString()
	c.Exercises = make([]Exercise, len(d.Exercises))
	for i, e := range d.Exercises {
		c.Exercises[i] = e.Clone()
	}
	return c
}

// Clone returns a deep copy of the week, with fresh ids throughout.
func (w WeekProgram) Clone() WeekProgram {
	c := w
	c.ID = uuid.NewString()
	c.Days = make([]DayProgram, len(w.Days))
	for i, d := range w.Days {
		c.Days[i] = d.Clone()
	}
	return c
}
