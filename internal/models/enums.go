package models

import (
	"fmt"
	"strings"
)

// Gender enumerates the accepted student genders.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Faculty enumerates the academic faculties a student can enroll under.
type Faculty string

const (
	FacultyArts     Faculty = "ARTS"
	FacultyCommerce Faculty = "COMMERCE"
	FacultyScience  Faculty = "SCIENCE"
)

// SubjectCategory enumerates how a subject counts toward the final result.
// Additional subjects are displayed but excluded from aggregate scoring.
type SubjectCategory string

const (
	CategoryCompulsory SubjectCategory = "Compulsory"
	CategoryElective   SubjectCategory = "Elective"
	CategoryAdditional SubjectCategory = "Additional"
)

// classLevels is the closed set of recognised class/academic-year labels.
var classLevels = []string{"11th", "12th", "1st Year", "2nd Year", "3rd Year"}

// ParseGender validates and normalises a raw gender value.
func ParseGender(raw string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male":
		return GenderMale, nil
	case "female":
		return GenderFemale, nil
	case "other":
		return GenderOther, nil
	default:
		return "", fmt.Errorf("unrecognised gender %q", raw)
	}
}

// ParseFaculty validates and normalises a raw faculty value.
func ParseFaculty(raw string) (Faculty, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(FacultyArts):
		return FacultyArts, nil
	case string(FacultyCommerce):
		return FacultyCommerce, nil
	case string(FacultyScience):
		return FacultyScience, nil
	default:
		return "", fmt.Errorf("unrecognised faculty %q", raw)
	}
}

// ParseSubjectCategory validates and normalises a raw subject category value.
func ParseSubjectCategory(raw string) (SubjectCategory, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "compulsory":
		return CategoryCompulsory, nil
	case "elective":
		return CategoryElective, nil
	case "additional":
		return CategoryAdditional, nil
	default:
		return "", fmt.Errorf("unrecognised subject category %q", raw)
	}
}

// ParseClassLevel validates a raw class label against the recognised set.
func ParseClassLevel(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	for _, level := range classLevels {
		if strings.EqualFold(level, trimmed) {
			return level, nil
		}
	}
	return "", fmt.Errorf("unrecognised class %q", raw)
}

// CountsTowardAggregate reports whether the category contributes to the
// aggregate score and overall result.
func (c SubjectCategory) CountsTowardAggregate() bool {
	return c == CategoryCompulsory || c == CategoryElective
}
