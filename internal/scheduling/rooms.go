package scheduling

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/kadeface/ai-class-scheduling/internal/models"
)

// roomPolicy returns the room chosen by one allocation tier, or nil when the
// tier does not apply. The allocator is a first-hit fold over the tiers.
type roomPolicy func(v *Variable, rooms []models.Room) *models.Room

// RoomAllocator selects a room for a (class, course) request by a layered
// policy: fixed room links first, then the class homeroom, then name
// heuristics, finally a scored fallback over all active rooms.
type RoomAllocator struct {
	rooms    []models.Room
	policies []roomPolicy
}

// NewRoomAllocator builds the allocator over a snapshot of room records.
func NewRoomAllocator(rooms []models.Room) *RoomAllocator {
	a := &RoomAllocator{rooms: rooms}
	a.policies = []roomPolicy{
		assignedRoomPolicy,
		homeroomPolicy,
		nameMatchPolicy,
		scoredFallbackPolicy,
	}
	return a
}

// Pick returns the first room produced by the policy chain, or nil when no
// tier yields one.
func (a *RoomAllocator) Pick(v *Variable) *models.Room {
	for _, policy := range a.policies {
		if room := policy(v, a.rooms); room != nil {
			return room
		}
	}
	return nil
}

// assignedRoomPolicy honours a room-side link to the class.
func assignedRoomPolicy(v *Variable, rooms []models.Room) *models.Room {
	for i := range rooms {
		room := &rooms[i]
		if !room.IsActive {
			continue
		}
		if room.AssignedClassID != nil && *room.AssignedClassID == v.ClassID {
			return room
		}
	}
	return nil
}

// homeroomPolicy honours the class-side homeroom reference.
func homeroomPolicy(v *Variable, rooms []models.Room) *models.Room {
	if v.HomeroomID == "" {
		return nil
	}
	for i := range rooms {
		room := &rooms[i]
		if room.ID == v.HomeroomID && room.IsActive {
			return room
		}
	}
	return nil
}

// nameMatchPolicy matches the class name against room names in four passes:
// exact, substring, grade-to-floor, class-number-to-room-number.
func nameMatchPolicy(v *Variable, rooms []models.Room) *models.Room {
	if v.ClassName == "" {
		return nil
	}

	for i := range rooms {
		room := &rooms[i]
		if room.IsActive && room.Name == v.ClassName {
			return room
		}
	}

	for i := range rooms {
		room := &rooms[i]
		if !room.IsActive {
			continue
		}
		if strings.Contains(room.Name, v.ClassName) || strings.Contains(v.ClassName, room.Name) {
			return room
		}
	}

	if grade := extractGrade(v.ClassName); grade > 0 {
		for i := range rooms {
			room := &rooms[i]
			if room.IsActive && room.Floor == grade {
				return room
			}
		}
	}

	if number := extractClassNumber(v.ClassName); number != "" {
		for i := range rooms {
			room := &rooms[i]
			if room.IsActive && strings.Contains(room.Name, number) {
				return room
			}
		}
	}

	return nil
}

// scoredFallbackPolicy weighs every active room and returns the best fit:
// generic rooms, capacity close to 110% of the class size, low floors and
// rooms without a fixed class all score higher.
func scoredFallbackPolicy(v *Variable, rooms []models.Room) *models.Room {
	var best *models.Room
	bestScore := math.Inf(-1)

	needed := int(math.Ceil(float64(v.StudentCount) * 1.1))

	for i := range rooms {
		room := &rooms[i]
		if !room.IsActive {
			continue
		}

		score := 0.0
		if room.Type == models.RoomTypeStandard {
			score += 10
		}
		capacityDiff := room.Capacity - needed
		if capacityDiff < 0 {
			capacityDiff = -capacityDiff
		}
		score += 20 - float64(capacityDiff)
		score += 10 - float64(room.Floor)
		if room.AssignedClassID == nil {
			score += 5
		}

		if score > bestScore {
			bestScore = score
			best = room
		}
	}
	return best
}

var (
	gradePattern       = regexp.MustCompile(`(\d+)\s*年级`)
	classNumberPattern = regexp.MustCompile(`(\d+)\s*班`)
	digitsPattern      = regexp.MustCompile(`\d+`)
)

var chineseDigits = map[string]int{
	"一": 1, "二": 2, "三": 3, "四": 4, "五": 5,
	"六": 6, "七": 7, "八": 8, "九": 9,
}

// extractGrade pulls the grade number out of a class name such as "三年级2班"
// or "3年级2班". Returns 0 when no grade is recognisable.
func extractGrade(name string) int {
	if m := gradePattern.FindStringSubmatch(name); m != nil {
		grade, _ := strconv.Atoi(m[1])
		return grade
	}
	for numeral, value := range chineseDigits {
		if strings.Contains(name, numeral+"年级") {
			return value
		}
	}
	return 0
}

// extractClassNumber pulls the class ordinal out of a name such as "三年级2班".
// Falls back to the last digit run when no "班" marker is present.
func extractClassNumber(name string) string {
	if m := classNumberPattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	digits := digitsPattern.FindAllString(name, -1)
	if len(digits) > 0 {
		return digits[len(digits)-1]
	}
	return ""
}
