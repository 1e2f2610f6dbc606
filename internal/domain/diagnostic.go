package domain

import (
	"strings"
	"time"
)

// DiagnosticInputType selects the input widget for a diagnostic test.
type DiagnosticInputType string

const (
	InputText  DiagnosticInputType = "TEXT"
	InputImage DiagnosticInputType = "IMAGE"
	InputVideo DiagnosticInputType = "VIDEO"
)

// DiagnosticTest is one question/instruction unit an athlete must answer
// before a coach builds their bespoke program. Owned by a request (or the
// discipline template it was cloned from).
type DiagnosticTest struct {
	ID          string              `bson:"id" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Instruction string              `bson:"instruction,omitempty" json:"instruction,omitempty"`
	InputType   DiagnosticInputType `bson:"inputType" json:"inputType"`
	Required    bool                `bson:"required" json:"required"`
}

// Satisfies reports whether sub is a complete answer to this test: non-empty
// after trimming for TEXT, any non-empty payload for IMAGE/VIDEO.
func (t *DiagnosticTest) Satisfies(sub *AthleteSubmission) bool {
	if sub == nil {
		return false
	}
	if t.InputType == InputText {
		return strings.TrimSpace(sub.Data) != ""
	}
	return sub.Data != ""
}

// AthleteSubmission is one answer to a DiagnosticTest. TestID is a relation,
// not ownership; Data holds text or an object key for uploaded media.
type AthleteSubmission struct {
	TestID      string    `bson:"testId" json:"testId"`
	Data        string    `bson:"data" json:"data"`
	SubmittedAt time.Time `bson:"submittedAt" json:"submittedAt"`
}
