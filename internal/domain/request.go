package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestStatus type for the bespoke request lifecycle
type RequestStatus string

const (
	StatusPendingPayment RequestStatus = "PENDING_PAYMENT" // Created at intake, waiting for payment
	StatusDiagnostic     RequestStatus = "DIAGNOSTIC"      // Paid, waiting for athlete submissions
	StatusBuilding       RequestStatus = "BUILDING"        // Submissions in, coach authoring the program
	StatusCompleted      RequestStatus = "COMPLETED"       // Program published, terminal
	StatusCancelled      RequestStatus = "CANCELLED"       // Terminal, reachable from any non-terminal state
)

// Terminal reports whether no further transition is possible from s.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Biometrics holds the athlete vitals captured at intake.
// Numeric fields are proper numbers, coerced at the API boundary.
type Biometrics struct {
	HeightCm float64 `bson:"heightCm" json:"heightCm"`
	WeightKg float64 `bson:"weightKg" json:"weightKg"`
	Age      int     `bson:"age" json:"age"`
}

// CustomCourseRequest is one bespoke-program engagement, tracked from intake
// through payment, diagnostics, coaching and publication.
type CustomCourseRequest struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// Athlete reference (name and phone denormalized for coach views).
	AthleteID   primitive.ObjectID `bson:"athleteId" json:"athleteId"`
	AthleteName string             `bson:"athleteName" json:"athleteName"`
	Phone       string             `bson:"phone" json:"phone"`

	// Request content
	Sport      string     `bson:"sport" json:"sport"` // Discipline code, e.g. "crossfit"
	Goal       string     `bson:"goal" json:"goal"`
	Biometrics Biometrics `bson:"biometrics" json:"biometrics"`

	// Commercial terms
	Price         float64 `bson:"price" json:"price"`
	DurationWeeks int     `bson:"durationWeeks" json:"durationWeeks"`

	Status RequestStatus `bson:"status" json:"status"`

	// Ordered; first entry is the primary coach.
	AssignedCoachIDs []primitive.ObjectID `bson:"assignedCoachIds,omitempty" json:"assignedCoachIds,omitempty"`

	// Content produced downstream
	Diagnostics []DiagnosticTest    `bson:"diagnostics,omitempty" json:"diagnostics,omitempty"`
	Submissions []AthleteSubmission `bson:"submissions,omitempty" json:"submissions,omitempty"`
	Weeks       []WeekProgram       `bson:"weeks,omitempty" json:"weeks,omitempty"`
	HasMealPlan bool                `bson:"hasMealPlan" json:"hasMealPlan"`
	MealPlan    *MealPlan           `bson:"mealPlan,omitempty" json:"mealPlan,omitempty"`

	TransactionID string `bson:"transactionId,omitempty" json:"transactionId,omitempty"`

	// Version is bumped on every write and checked on update, so a stale
	// coach session cannot silently overwrite a newer one.
	Version int64 `bson:"version" json:"version"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PrimaryCoachID returns the primary (first assigned) coach, if any.
func (r *CustomCourseRequest) PrimaryCoachID() (primitive.ObjectID, bool) {
	if len(r.AssignedCoachIDs) == 0 {
		return primitive.NilObjectID, false
	}
	return r.AssignedCoachIDs[0], true
}

// IsAssignedCoach reports whether coachID appears in the assignment list.
func (r *CustomCourseRequest) IsAssignedCoach(coachID primitive.ObjectID) bool {
	for _, id := range r.AssignedCoachIDs {
		if id == coachID {
			return true
		}
	}
	return false
}

// SubmissionFor returns the submission recorded for testID, if any.
func (r *CustomCourseRequest) SubmissionFor(testID string) (*AthleteSubmission, bool) {
	for i := range r.Submissions {
		if r.Submissions[i].TestID == testID {
			return &r.Submissions[i], true
		}
	}
	return nil, false
}

// PutSubmission records a submission, replacing any previous answer for the
// same test. At most one submission per testId is kept.
func (r *CustomCourseRequest) PutSubmission(sub AthleteSubmission) {
	for i := range r.Submissions {
		if r.Submissions[i].TestID == sub.TestID {
			r.Submissions[i] = sub
			return
		}
	}
	r.Submissions = append(r.Submissions, sub)
}

// DiagnosticsComplete reports whether every required diagnostic test has a
// complete submission. Optional tests may be left unanswered.
func (r *CustomCourseRequest) DiagnosticsComplete() bool {
	for i := range r.Diagnostics {
		test := &r.Diagnostics[i]
		if !test.Required {
			continue
		}
		sub, ok := r.SubmissionFor(test.ID)
		if !ok || !test.Satisfies(sub) {
			return false
		}
	}
	return true
}
