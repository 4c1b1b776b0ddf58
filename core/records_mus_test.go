package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharacterRecordMUS_RoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	record := CharacterRecord{
		Id:         IDFromContent("mb_female"),
		Name:       "mb_female",
		Parameters: map[string]float64{"L1_Elf": 1.0, "L2__Chin_Length_max": 0.7},
		InsertedAt: now.Add(-time.Hour),
		UpdatedAt:  now,
	}

	buf := make([]byte, CharacterRecordMUS.Size(record))
	n := CharacterRecordMUS.Marshal(record, buf)
	assert.Equal(t, len(buf), n)

	decoded, m, err := CharacterRecordMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, n, m)
	assert.Equal(t, record, decoded)

	skipped, err := CharacterRecordMUS.Skip(buf)
	require.NoError(t, err)
	assert.Equal(t, n, skipped)
}

func TestGenerationMUS_RoundTrip(t *testing.T) {
	generation := Generation{
		Id:        ID(12),
		RequestID: "req-1",
		Prompt:    "a very tall asian woman",
		Target:    "mb_female",
		Gender:    GenderFemale,
		Category:  "Asian",
		Status:    StatusCompleted,
		Message:   "Character generated successfully!",
		Applied:   map[string]float64{"L1_Asian": 1.0},
		Missing:   []string{"L2__Body_Height_max"},
		Timestamp: time.Date(2025, 3, 14, 9, 26, 53, 589000, time.UTC),
	}

	buf := make([]byte, GenerationMUS.Size(generation))
	GenerationMUS.Marshal(generation, buf)

	decoded, _, err := GenerationMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, generation, decoded)
}

func TestGenerationMUS_Truncated(t *testing.T) {
	generation := Generation{Prompt: "an elf", Status: StatusError, Message: "no target"}
	buf := make([]byte, GenerationMUS.Size(generation))
	GenerationMUS.Marshal(generation, buf)

	for _, cut := range []int{0, 1, len(buf) / 2, len(buf) - 1} {
		_, _, err := GenerationMUS.Unmarshal(buf[:cut])
		assert.Error(t, err, "cut at %d", cut)
	}
}
