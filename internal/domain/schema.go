package domain

// Column names per sheet. Each sheet's schema is fixed at the use site.
const (
	ColMemberID       = "Member ID"
	ColMemberName     = "Name"
	ColMemberPhone    = "Phone"
	ColMembershipType = "Membership Type"
	ColMemberPoints   = "Points"
	ColMemberExpiry   = "Expiry Date"

	ColFaqCategory = "Category"
	ColFaqQuestion = "Question"
	ColFaqAnswer   = "Answer"

	ColFacilityName        = "Name"
	ColFacilityCategory    = "Category"
	ColFacilityDescription = "Description"
	ColFacilityLocation    = "Location"
	ColFacilityHours       = "Opening Hours"
	ColFacilityImage       = "Image URL"

	ColCourseName     = "Course"
	ColCourseType     = "Type"
	ColCourseDate     = "Date"
	ColCourseTime     = "Time"
	ColCourseCoach    = "Coach"
	ColCourseLocation = "Location"
	ColCourseSeats    = "Seats"

	ColCoachName       = "Name"
	ColCoachType       = "Type"
	ColCoachSpecialty  = "Specialty"
	ColCoachExperience = "Experience"
	ColCoachPhoto      = "Photo URL"

	ColLogName     = "Name"
	ColLogPhone    = "Phone"
	ColLogDate     = "Date"
	ColLogExercise = "Exercise"
	ColLogDuration = "Duration"
	ColLogCalories = "Calories"
)

// SheetNames maps each data category to the sheet (or table) holding it.
type SheetNames struct {
	Members    string
	FAQ        string
	Facilities string
	Courses    string
	Coaches    string
	FitnessLog string
}

// DefaultSheetNames returns the stock sheet names.
func DefaultSheetNames() SheetNames {
	return SheetNames{
		Members:    "Members",
		FAQ:        "FAQ",
		Facilities: "Facilities",
		Courses:    "Courses",
		Coaches:    "Coaches",
		FitnessLog: "FitnessLog",
	}
}

// All lists the configured sheet names.
func (s SheetNames) All() []string {
	return []string{s.Members, s.FAQ, s.Facilities, s.Courses, s.Coaches, s.FitnessLog}
}
