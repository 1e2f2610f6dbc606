package domain

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Discipline is a sport/training modality (e.g. crossfit, muaythai) used to
// route bespoke requests. It carries the default diagnostic set cloned into
// new requests for that sport.
type Discipline struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code               string             `bson:"code" json:"code"` // Unique, e.g. "crossfit"
	Name               string             `bson:"name" json:"name"`
	BasePrice          float64            `bson:"basePrice" json:"basePrice"`
	DefaultDiagnostics []DiagnosticTest   `bson:"defaultDiagnostics,omitempty" json:"defaultDiagnostics,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CloneDiagnostics returns deep copies of the default tests with fresh ids,
// so per-request edits never reach the discipline template.
func (d *Discipline) CloneDiagnostics() []DiagnosticTest {
	out := make([]DiagnosticTest, len(d.DefaultDiagnostics))
	for i, t := range d.DefaultDiagnostics {
		c := t
		c.ID = uuid.NewString()
		out[i] = c
	}
	return out
}

// DefaultInjuryHistoryTest is the fallback question injected when a request
// ends up with no diagnostics at all. Every athlete answers at least this.
func DefaultInjuryHistoryTest() DiagnosticTest {
	return DiagnosticTest{
		ID:          uuid.NewString(),
		Title:       "Injury History",
		Instruction: "Describe any past or current injuries, surgeries or chronic pain.",
		InputType:   InputText,
		Required:    true,
	}
}
