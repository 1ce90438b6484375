package service

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/marksheet-go-api/internal/models"
	"github.com/noah-isme/marksheet-go-api/pkg/words"
)

// Fallback pass thresholds applied when a subject carries no explicit one.
const (
	DefaultTheoryPassMarks    = 21.0
	DefaultPracticalPassMarks = 9.0
)

// Overall result labels.
const (
	ResultPass = "Pass"
	ResultFail = "Fail"
)

// SubjectMarksInput is one subject fed into the computation, either loaded
// from storage or taken from an unsaved form draft.
type SubjectMarksInput struct {
	SubjectName            string
	Category               models.SubjectCategory
	MaxMarks               float64
	TheoryPassMarks        *float64
	PracticalPassMarks     *float64
	TheoryMarksObtained    *float64
	PracticalMarksObtained *float64
}

// SubjectResult annotates one subject with its computed pass/fail flags.
type SubjectResult struct {
	SubjectMarksInput
	ObtainedTotal   float64
	TheoryFailed    bool
	PracticalFailed bool
	Failed          bool
}

// MarksheetComputation is the deterministic result of one computation run.
type MarksheetComputation struct {
	Subjects          []SubjectResult
	AggregateMarks    float64
	TotalPossible     float64
	OverallPercentage float64
	OverallResult     string
	TotalMarksInWords string
}

// ComputeMarksheet derives per-subject and overall pass/fail from the given
// subjects and the caller-supplied overall passing percentage. Aggregate
// scoring covers Compulsory and Elective subjects only; Additional subjects
// are evaluated and displayed but never counted. Theory and practical are
// checked independently: a component fails only when its obtained mark is
// present and below the effective threshold.
func ComputeMarksheet(subjects []SubjectMarksInput, passingPercentage float64, logger zerolog.Logger) MarksheetComputation {
	computation := MarksheetComputation{Subjects: make([]SubjectResult, 0, len(subjects))}

	anyIncludedFailed := false
	for _, subject := range subjects {
		result := computeSubject(subject)
		computation.Subjects = append(computation.Subjects, result)

		if !subject.Category.CountsTowardAggregate() {
			continue
		}

		computation.AggregateMarks += result.ObtainedTotal
		computation.TotalPossible += subject.MaxMarks
		if result.Failed {
			anyIncludedFailed = true
		}
	}

	if computation.TotalPossible > 0 {
		computation.OverallPercentage = computation.AggregateMarks / computation.TotalPossible * 100
	}

	if anyIncludedFailed || computation.OverallPercentage < passingPercentage {
		computation.OverallResult = ResultFail
	} else {
		computation.OverallResult = ResultPass
	}

	computation.TotalMarksInWords = words.Convert(math.Trunc(computation.AggregateMarks))
	if computation.TotalMarksInWords == "" {
		logger.Warn().
			Float64("aggregate_marks", computation.AggregateMarks).
			Msg("aggregate marks not convertible to words")
	}

	return computation
}

func computeSubject(subject SubjectMarksInput) SubjectResult {
	result := SubjectResult{SubjectMarksInput: subject}

	if subject.TheoryMarksObtained != nil {
		result.ObtainedTotal += *subject.TheoryMarksObtained
	}
	if subject.PracticalMarksObtained != nil {
		result.ObtainedTotal += *subject.PracticalMarksObtained
	}

	theoryThreshold := DefaultTheoryPassMarks
	if subject.TheoryPassMarks != nil {
		theoryThreshold = *subject.TheoryPassMarks
	}
	practicalThreshold := DefaultPracticalPassMarks
	if subject.PracticalPassMarks != nil {
		practicalThreshold = *subject.PracticalPassMarks
	}

	result.TheoryFailed = subject.TheoryMarksObtained != nil && *subject.TheoryMarksObtained < theoryThreshold
	result.PracticalFailed = subject.PracticalMarksObtained != nil && *subject.PracticalMarksObtained < practicalThreshold
	result.Failed = result.TheoryFailed || result.PracticalFailed

	return result
}

// MarksheetNumber derives the display-only marksheet serial from the faculty,
// the session end year and the roll number. It is recomputed on every view
// and must never be persisted as an identifier: when the roll number is too
// short the final segment is random.
func MarksheetNumber(faculty models.Faculty, rollNumber, session string, now time.Time) string {
	prefix := strings.ToUpper(string(faculty))
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}

	endYear := session
	if parts := strings.Split(session, "-"); len(parts) == 2 {
		endYear = parts[1]
	}

	serial := ""
	if len(rollNumber) >= 3 {
		serial = rollNumber[len(rollNumber)-3:]
	} else {
		serial = fmt.Sprintf("%03d", rand.Intn(900)+100)
	}

	return fmt.Sprintf("%s%s%s%s", prefix, strings.ToUpper(now.Format("Jan")), endYear, serial)
}
