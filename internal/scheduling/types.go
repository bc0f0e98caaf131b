package scheduling

import (
	"fmt"

	"github.com/kadeface/ai-class-scheduling/internal/models"
)

// Variable is one unit hour of course demand waiting for a (slot, room)
// placement. A weekly demand of h hours yields h variables sharing everything
// but the ID suffix.
type Variable struct {
	ID        string
	ClassID   string
	CourseID  string
	TeacherID string
	Subject   string
	Priority  int
	Domain    []models.BaseTimeSlot

	// Resolved once during input normalisation so the engine never needs the
	// source entities again.
	ClassName          string
	StudentCount       int
	HomeroomID         string
	RoomReq            models.RoomRequirements
	RequiresContinuous bool
	ContinuousHours    int
	WeeklyHours        int
}

// IsCore reports whether the variable belongs to the core stage.
func (v *Variable) IsCore() bool {
	return v.Priority >= corePriority
}

const (
	corePriority     = 9
	electivePriority = 5
)

// Assignment is a committed placement of one variable.
type Assignment struct {
	VarID     string              `json:"var_id"`
	ClassID   string              `json:"class_id"`
	CourseID  string              `json:"course_id"`
	TeacherID string              `json:"teacher_id"`
	RoomID    string              `json:"room_id"`
	Slot      models.BaseTimeSlot `json:"time_slot"`
}

// Constraint classes referenced by conflicts and reject reasons.
const (
	ConstraintTime    = "time"
	ConstraintTeacher = "teacher"
	ConstraintClass   = "class"
	ConstraintRoom    = "room"
	ConstraintSubject = "subject"
)

// Conflict records a variable whose domain collapsed during propagation.
type Conflict struct {
	ResourceID        string   `json:"resource_id"`
	VariableID        string   `json:"variable_id"`
	ConstraintClasses []string `json:"constraint_classes"`
}

// InputDiagnostic reports a plan entry that could not be normalised.
type InputDiagnostic struct {
	PlanIndex  int    `json:"plan_index"`
	EntryIndex int    `json:"entry_index"`
	ClassID    string `json:"class_id,omitempty"`
	Reason     string `json:"reason"`
}

// RunPhase tracks the engine's state machine.
type RunPhase string

const (
	PhaseIdle          RunPhase = "idle"
	PhasePreparing     RunPhase = "preparing"
	PhaseStageCore     RunPhase = "stage_core"
	PhaseStageElective RunPhase = "stage_elective"
	PhaseScoring       RunPhase = "scoring"
	PhaseDone          RunPhase = "done"
)

type occKey struct {
	id   string
	slot models.BaseTimeSlot
}

type classDayKey struct {
	classID string
	day     int
}

type subjectDayKey struct {
	classID string
	day     int
	subject string
}

type classSubjectKey struct {
	classID string
	subject string
}

// ScheduleState is the exclusive working state of one scheduling run.
type ScheduleState struct {
	Assignments map[string]*Assignment
	Unassigned  map[string]struct{}
	Conflicts   []Conflict
	Violations  []string
	Score       int
	IsFeasible  bool
	IsComplete  bool
	Phase       RunPhase

	vars map[string]*Variable

	teacherBusy map[occKey]string
	classBusy   map[occKey]string
	roomBusy    map[occKey]string

	classDayCount   map[classDayKey]int
	teacherDayCount map[classDayKey]int
	subjectDayCount map[subjectDayKey]int
	subjectPlaced   map[classSubjectKey]int
	subjectTotal    map[classSubjectKey]int
}

// NewScheduleState indexes the run's variables; every variable starts
// unassigned.
func NewScheduleState(vars []*Variable) *ScheduleState {
	st := &ScheduleState{
		Assignments:     make(map[string]*Assignment, len(vars)),
		Unassigned:      make(map[string]struct{}, len(vars)),
		vars:            make(map[string]*Variable, len(vars)),
		teacherBusy:     make(map[occKey]string),
		classBusy:       make(map[occKey]string),
		roomBusy:        make(map[occKey]string),
		classDayCount:   make(map[classDayKey]int),
		teacherDayCount: make(map[classDayKey]int),
		subjectDayCount: make(map[subjectDayKey]int),
		subjectPlaced:   make(map[classSubjectKey]int),
		subjectTotal:    make(map[classSubjectKey]int),
		IsFeasible:      true,
		Phase:           PhaseIdle,
	}
	for _, v := range vars {
		st.vars[v.ID] = v
		st.Unassigned[v.ID] = struct{}{}
		st.subjectTotal[classSubjectKey{v.ClassID, v.Subject}]++
	}
	return st
}

// Variable returns the variable registered under id, or nil.
func (st *ScheduleState) Variable(id string) *Variable {
	return st.vars[id]
}

// Commit records an assignment and updates the occupancy indexes. The caller
// guarantees the placement passed validation.
func (st *ScheduleState) Commit(a *Assignment) {
	v := st.vars[a.VarID]
	if v == nil {
		return
	}
	st.Assignments[a.VarID] = a
	delete(st.Unassigned, a.VarID)

	st.teacherBusy[occKey{a.TeacherID, a.Slot}] = a.VarID
	st.classBusy[occKey{a.ClassID, a.Slot}] = a.VarID
	if a.RoomID != "" {
		st.roomBusy[occKey{a.RoomID, a.Slot}] = a.VarID
	}
	st.classDayCount[classDayKey{a.ClassID, a.Slot.DayOfWeek}]++
	st.teacherDayCount[classDayKey{a.TeacherID, a.Slot.DayOfWeek}]++
	st.subjectDayCount[subjectDayKey{a.ClassID, a.Slot.DayOfWeek, v.Subject}]++
	st.subjectPlaced[classSubjectKey{a.ClassID, v.Subject}]++
}

// Undo reverts the assignment of varID during backtracking.
func (st *ScheduleState) Undo(varID string) {
	a, ok := st.Assignments[varID]
	if !ok {
		return
	}
	v := st.vars[varID]
	delete(st.Assignments, varID)
	st.Unassigned[varID] = struct{}{}

	delete(st.teacherBusy, occKey{a.TeacherID, a.Slot})
	delete(st.classBusy, occKey{a.ClassID, a.Slot})
	if a.RoomID != "" {
		delete(st.roomBusy, occKey{a.RoomID, a.Slot})
	}
	decrement(st.classDayCount, classDayKey{a.ClassID, a.Slot.DayOfWeek})
	decrement(st.teacherDayCount, classDayKey{a.TeacherID, a.Slot.DayOfWeek})
	if v != nil {
		decrement(st.subjectDayCount, subjectDayKey{a.ClassID, a.Slot.DayOfWeek, v.Subject})
		decrement(st.subjectPlaced, classSubjectKey{a.ClassID, v.Subject})
	}
}

// TeacherBusyAt reports whether the teacher already teaches in the slot.
func (st *ScheduleState) TeacherBusyAt(teacherID string, slot models.BaseTimeSlot) bool {
	_, ok := st.teacherBusy[occKey{teacherID, slot}]
	return ok
}

// ClassBusyAt reports whether the class is already occupied in the slot.
func (st *ScheduleState) ClassBusyAt(classID string, slot models.BaseTimeSlot) bool {
	_, ok := st.classBusy[occKey{classID, slot}]
	return ok
}

// RoomBusyAt reports whether the room is already occupied in the slot.
func (st *ScheduleState) RoomBusyAt(roomID string, slot models.BaseTimeSlot) bool {
	_, ok := st.roomBusy[occKey{roomID, slot}]
	return ok
}

// SubjectCountOn returns how many hours of subject the class already has on
// the given day.
func (st *ScheduleState) SubjectCountOn(classID string, day int, subject string) int {
	return st.subjectDayCount[subjectDayKey{classID, day, subject}]
}

// ClassCountOn returns the class's total hours on the given day.
func (st *ScheduleState) ClassCountOn(classID string, day int) int {
	return st.classDayCount[classDayKey{classID, day}]
}

// TeacherCountOn returns the teacher's total hours on the given day.
func (st *ScheduleState) TeacherCountOn(teacherID string, day int) int {
	return st.teacherDayCount[classDayKey{teacherID, day}]
}

// SubjectDaysUsed returns the distinct days already holding the subject for
// the class, scanning the bounded weekly range.
func (st *ScheduleState) SubjectDaysUsed(classID, subject string) int {
	days := 0
	for day := 1; day <= 7; day++ {
		if st.subjectDayCount[subjectDayKey{classID, day, subject}] > 0 {
			days++
		}
	}
	return days
}

// SubjectTotal returns the run's total weekly hours for the class/subject pair.
func (st *ScheduleState) SubjectTotal(classID, subject string) int {
	return st.subjectTotal[classSubjectKey{classID, subject}]
}

// SubjectRemaining returns the unplaced hours for the class/subject pair.
func (st *ScheduleState) SubjectRemaining(classID, subject string) int {
	key := classSubjectKey{classID, subject}
	return st.subjectTotal[key] - st.subjectPlaced[key]
}

func decrement[K comparable](m map[K]int, k K) {
	if m[k] > 1 {
		m[k]--
	} else {
		delete(m, k)
	}
}

func (st *ScheduleState) addConflict(resourceID, variableID string, classes []string) {
	st.Conflicts = append(st.Conflicts, Conflict{
		ResourceID:        resourceID,
		VariableID:        variableID,
		ConstraintClasses: classes,
	})
}

// Result is the synchronous output of one scheduling run.
type Result struct {
	Success                  bool              `json:"success"`
	AssignedVariables        int               `json:"assigned_variables"`
	UnassignedVariables      int               `json:"unassigned_variables"`
	HardConstraintViolations int               `json:"hard_constraint_violations"`
	SoftConstraintViolations int               `json:"soft_constraint_violations"`
	TotalScore               int               `json:"total_score"`
	Assignments              []Assignment      `json:"assignments"`
	Message                  string            `json:"message"`
	Suggestions              []string          `json:"suggestions"`
	Quality                  Quality           `json:"quality"`
	Diagnostics              []InputDiagnostic `json:"diagnostics,omitempty"`
	Conflicts                []Conflict        `json:"conflicts,omitempty"`
}

// Quality is the per-dimension breakdown of the final schedule score.
type Quality struct {
	Total              int `json:"total"`
	CoreDispersion     int `json:"core_dispersion"`
	TeacherBalance     int `json:"teacher_balance"`
	StudentFatigue     int `json:"student_fatigue"`
	WeeklyDistribution int `json:"weekly_distribution"`
}

func varKey(classID, courseID string, index int) string {
	return fmt.Sprintf("%s_%s_%d", classID, courseID, index)
}
