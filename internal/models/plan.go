package models

// CourseAssignment is one course demand inside a teaching plan: the class
// takes the course from the teacher for a number of hours per week.
type CourseAssignment struct {
	Course             *Course  `json:"course"`
	Teacher            *Teacher `json:"teacher"`
	WeeklyHours        int      `json:"weekly_hours"`
	RequiresContinuous bool     `json:"requires_continuous,omitempty"`
	ContinuousHours    int      `json:"continuous_hours,omitempty"`
}

// TeachingPlan bundles one class with its weekly course demands. References
// are resolved before scheduling starts; the engine never looks entities up.
type TeachingPlan struct {
	Class             *Class             `json:"class"`
	CourseAssignments []CourseAssignment `json:"course_assignments"`
}
