package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryPriority(t *testing.T) {
	want := map[Category]Priority{
		CategoryEditorial:   PriorityMedium,
		CategoryContent:     PriorityHigh,
		CategoryImprovement: PriorityLow,
		CategoryAddition:    PriorityLow,
	}
	for _, category := range Categories {
		assert.Equal(t, want[category], category.Priority(), category)
	}
}

func TestTicketTypeMedium(t *testing.T) {
	want := map[TicketType]MediumKind{
		TicketTypeCourseBook:            MediumKindText,
		TicketTypeReadingList:           MediumKindText,
		TicketTypePresentation:          MediumKindText,
		TicketTypeVodcast:               MediumKindRecording,
		TicketTypePodcast:               MediumKindRecording,
		TicketTypeLiveTutorialRecording: MediumKindRecording,
		TicketTypeInteractiveBook:       MediumKindInteractive,
		TicketTypePracticeExam:          MediumKindQuestionaire,
		TicketTypePracticeExamSolution:  MediumKindQuestionaire,
		TicketTypeOnlineTest:            MediumKindQuestionaire,
	}
	require.Len(t, TicketTypes, len(want))
	for _, ty := range TicketTypes {
		assert.Equal(t, want[ty], ty.Medium(), ty)
	}
}

func TestParseEnums(t *testing.T) {
	for _, ty := range TicketTypes {
		parsed, err := ParseTicketType(ty.String())
		require.NoError(t, err)
		assert.Equal(t, ty, parsed)
	}
	for _, c := range Categories {
		parsed, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	for _, p := range Priorities {
		parsed, err := ParsePriority(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}

	_, err := ParseTicketType("CourseBook")
	assert.Error(t, err)
	_, err = ParseCategory("")
	assert.Error(t, err)
	_, err = ParsePriority("urgent")
	assert.Error(t, err)
}

func TestGermanNames(t *testing.T) {
	assert.Equal(t, "In Bearbeitung", StatusInProgress.German())
	assert.Equal(t, "Skript", TicketTypeCourseBook.German())
	assert.Equal(t, "Hoch", PriorityHigh.German())
	assert.Equal(t, "unknown", Status("unknown").German())
}
