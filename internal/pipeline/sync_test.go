package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteo/delivery-backend-go/internal/models"
)

func ev(unit, section, shift, date string) models.Event {
	return models.Event{UnitCode: unit, Section: section, Shift: shift, DateOnly: date}
}

func TestSynchronizeIntersection(t *testing.T) {
	a := RecordSet{Name: "B", Events: []models.Event{
		ev("2807301", "S1", "M", "2025-05-29"),
		ev("2807301", "S1", "M", "2025-05-30"),
		ev("2807301", "S2", "M", "2025-05-29"),
	}}
	b := RecordSet{Name: "C", Events: []models.Event{
		ev("2807301", "S1", "M", "2025-05-29"),
		ev("2807301", "S3", "M", "2025-05-29"),
	}}

	out, audits := Synchronize([]RecordSet{a, b}, ZoneDateKey)
	require.Len(t, out, 2)

	// Only (S1, M, 2025-05-29) exists in both sets.
	assert.Len(t, out[0].Events, 1)
	assert.Len(t, out[1].Events, 1)

	// The surviving key tuples are identical across sets.
	assert.Equal(t, keysOf(out[0].Events, ZoneDateKey), keysOf(out[1].Events, ZoneDateKey))

	assert.Equal(t, 3, audits[0].Before)
	assert.Equal(t, 1, audits[0].After)
	assert.Equal(t, 2, audits[1].Before)
	assert.Equal(t, 1, audits[1].After)
}

func TestSynchronizeEmptySet(t *testing.T) {
	a := RecordSet{Name: "B", Events: []models.Event{ev("u", "s", "m", "2025-01-01")}}
	b := RecordSet{Name: "C"}

	out, audits := Synchronize([]RecordSet{a, b}, ZoneDateKey)
	assert.Empty(t, out[0].Events, "empty intersection drops everything")
	assert.Empty(t, out[1].Events)
	assert.Equal(t, 1, audits[0].Before)
	assert.Equal(t, 0, audits[0].After)
}

func TestAlignOnZoneDateDropReasons(t *testing.T) {
	reference := RecordSet{Name: "ref", Events: []models.Event{
		ev("u1", "S1", "M", "2025-05-29"),
		ev("u1", "S2", "M", "2025-05-30"),
	}}
	target := RecordSet{Name: "tgt", Events: []models.Event{
		ev("u1", "S1", "M", "2025-05-29"), // kept
		ev("u9", "S9", "M", "2025-05-29"), // zone missing
		ev("u1", "S1", "M", "2025-06-15"), // date missing
		ev("u9", "S9", "M", "2025-06-15"), // both missing
		ev("u1", "S1", "M", "2025-05-30"), // zone and date each known, never together
	}}

	out, audit := AlignOnZoneDate(target, reference)
	assert.Len(t, out.Events, 1)
	assert.Equal(t, 5, audit.Before)
	assert.Equal(t, 1, audit.After)
	assert.Equal(t, map[string]int{
		models.DropKeyMissing:         1,
		models.DropDateMissing:        1,
		models.DropBothMissing:        1,
		models.DropCombinationMissing: 1,
	}, audit.DropReasons)
}
