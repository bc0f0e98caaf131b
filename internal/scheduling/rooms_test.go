package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadeface/ai-class-scheduling/internal/models"
)

func TestRoomAllocatorPolicyOrder(t *testing.T) {
	classID := "c1"

	t.Run("room assigned to the class wins", func(t *testing.T) {
		assigned := testRoom("r1", "101", models.RoomTypeStandard, 50)
		assigned.AssignedClassID = &classID
		rooms := []models.Room{testRoom("r0", "100", models.RoomTypeStandard, 50), assigned}

		allocator := NewRoomAllocator(rooms)
		room := allocator.Pick(&Variable{ClassID: classID, ClassName: "一年级1班", StudentCount: 40, HomeroomID: "r0"})
		require.NotNil(t, room)
		assert.Equal(t, "r1", room.ID)
	})

	t.Run("homeroom used when no room-side link", func(t *testing.T) {
		rooms := []models.Room{testRoom("r0", "100", models.RoomTypeStandard, 50), testRoom("r1", "101", models.RoomTypeStandard, 50)}

		allocator := NewRoomAllocator(rooms)
		room := allocator.Pick(&Variable{ClassID: classID, ClassName: "一年级1班", StudentCount: 40, HomeroomID: "r1"})
		require.NotNil(t, room)
		assert.Equal(t, "r1", room.ID)
	})

	t.Run("inactive homeroom is skipped", func(t *testing.T) {
		inactive := testRoom("r1", "101", models.RoomTypeStandard, 50)
		inactive.IsActive = false
		rooms := []models.Room{inactive, testRoom("r2", "一年级1班", models.RoomTypeStandard, 50)}

		allocator := NewRoomAllocator(rooms)
		room := allocator.Pick(&Variable{ClassID: classID, ClassName: "一年级1班", StudentCount: 40, HomeroomID: "r1"})
		require.NotNil(t, room)
		assert.Equal(t, "r2", room.ID)
	})

	t.Run("exact name match", func(t *testing.T) {
		rooms := []models.Room{testRoom("r1", "一年级2班", models.RoomTypeStandard, 50), testRoom("r2", "一年级1班", models.RoomTypeStandard, 50)}

		allocator := NewRoomAllocator(rooms)
		room := allocator.Pick(&Variable{ClassID: classID, ClassName: "一年级1班", StudentCount: 40})
		require.NotNil(t, room)
		assert.Equal(t, "r2", room.ID)
	})

	t.Run("grade maps to floor", func(t *testing.T) {
		third := testRoom("r3", "A区", models.RoomTypeStandard, 50)
		third.Floor = 3
		first := testRoom("r9", "B区", models.RoomTypeStandard, 50)
		first.Floor = 9
		rooms := []models.Room{first, third}

		allocator := NewRoomAllocator(rooms)
		room := allocator.Pick(&Variable{ClassID: classID, ClassName: "3年级大班", StudentCount: 40})
		require.NotNil(t, room)
		assert.Equal(t, "r3", room.ID)
	})

	t.Run("class number matches room number", func(t *testing.T) {
		rooms := []models.Room{testRoom("r1", "训练馆", models.RoomTypeGym, 100), testRoom("r2", "2号教室", models.RoomTypeStandard, 50)}

		allocator := NewRoomAllocator(rooms)
		room := allocator.Pick(&Variable{ClassID: classID, ClassName: "高一2班", StudentCount: 40})
		require.NotNil(t, room)
		assert.Equal(t, "r2", room.ID)
	})
}

func TestScoredFallbackPrefersFittingRooms(t *testing.T) {
	big := testRoom("big", "千人礼堂", models.RoomTypeGym, 1000)
	big.Floor = 1
	snug := testRoom("snug", "小教室甲", models.RoomTypeStandard, 45)
	snug.Floor = 1
	high := testRoom("high", "小教室乙", models.RoomTypeStandard, 45)
	high.Floor = 6

	allocator := NewRoomAllocator([]models.Room{big, high, snug})
	room := allocator.Pick(&Variable{ClassID: "c1", StudentCount: 40})

	require.NotNil(t, room)
	assert.Equal(t, "snug", room.ID)
}

func TestPickReturnsNilWithoutActiveRooms(t *testing.T) {
	inactive := testRoom("r1", "101", models.RoomTypeStandard, 50)
	inactive.IsActive = false

	allocator := NewRoomAllocator([]models.Room{inactive})
	assert.Nil(t, allocator.Pick(&Variable{ClassID: "c1", ClassName: "一年级1班", StudentCount: 40}))
}

func TestNameHelpers(t *testing.T) {
	assert.Equal(t, 3, extractGrade("3年级2班"))
	assert.Equal(t, 3, extractGrade("三年级2班"))
	assert.Equal(t, 0, extractGrade("国际部"))
	assert.Equal(t, "2", extractClassNumber("三年级2班"))
	assert.Equal(t, "12", extractClassNumber("高三12班"))
	assert.Equal(t, "", extractClassNumber("国际部"))
}
