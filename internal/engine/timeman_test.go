package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllocateHardNeverExceedsRemaining(t *testing.T) {
	tm := NewTimeManager()
	alloc := tm.Allocate(Medium, 60_000, 10, 20)
	assert.LessOrEqual(t, alloc.Hard, 60*time.Second)
	assert.LessOrEqual(t, alloc.Optimal, alloc.Hard)
	assert.False(t, alloc.IsEmergency)
}

func TestAllocateEmergencyModeBelowTenSeconds(t *testing.T) {
	tm := NewTimeManager()
	alloc := tm.Allocate(Hard, 5_000, 40, 10)
	assert.True(t, alloc.IsEmergency)
	assert.LessOrEqual(t, alloc.Hard, 5*time.Second/4+time.Millisecond)
}

func TestAllocateComplexityMulCapsAtTwo(t *testing.T) {
	tm := NewTimeManager()
	alloc := tm.Allocate(Medium, 60_000, 10, 10_000)
	assert.LessOrEqual(t, alloc.ComplexityMul, 2.0)
}

func TestAllocateEarlyMoveShrinksOptimal(t *testing.T) {
	tm := NewTimeManager()
	early := tm.Allocate(Medium, 60_000, 2, 20)
	tm2 := NewTimeManager()
	mid := tm2.Allocate(Medium, 60_000, 30, 20)
	assert.Less(t, early.Optimal, mid.Optimal)
}

func TestAdjustForStabilityShrinksSoftBound(t *testing.T) {
	tm := NewTimeManager()
	alloc := tm.Allocate(Medium, 60_000, 10, 20)
	originalSoft := alloc.Soft

	tm.AdjustForStability(6)
	assert.Less(t, tm.allocation.Soft, originalSoft)
}

func TestAdjustForInstabilityGrowsSoftBoundUpToHard(t *testing.T) {
	tm := NewTimeManager()
	alloc := tm.Allocate(Medium, 60_000, 10, 20)
	originalSoft := alloc.Soft

	tm.AdjustForInstability(5)
	assert.Greater(t, tm.allocation.Soft, originalSoft)
	assert.LessOrEqual(t, tm.allocation.Soft, tm.allocation.Hard)
}

func TestCalcMaxDepthCappedByDifficulty(t *testing.T) {
	tm := NewTimeManager()
	tm.Allocate(Easy, 60_000, 10, 20)
	depth := tm.CalcMaxDepth(Easy)
	assert.LessOrEqual(t, depth, Settings(Easy).MaxDepthCap)
	assert.GreaterOrEqual(t, depth, 1)
}

func TestReportTimeUsedUpdatesNPSEstimate(t *testing.T) {
	tm := NewTimeManager()
	tm.Allocate(Medium, 60_000, 10, 20)
	before := tm.npsEMA
	time.Sleep(5 * time.Millisecond)
	tm.ReportTimeUsed(1_000_000)
	assert.NotEqual(t, before, tm.npsEMA)
}

func TestShouldStopAfterHardDeadline(t *testing.T) {
	tm := NewTimeManager()
	tm.Allocate(Braindead, 60_000, 1, 1)
	tm.allocation.Hard = time.Millisecond
	time.Sleep(5 * time.Millisecond)
	assert.True(t, tm.ShouldStop())
}
