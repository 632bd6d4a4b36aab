package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weeklygoals/weekly-goals-be/internal/store/filestore"
	"github.com/weeklygoals/weekly-goals-be/internal/week"
)

func newTestGoalService(t *testing.T) *GoalService {
	t.Helper()
	st, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	return NewGoalService(st)
}

func TestCreateGoal(t *testing.T) {
	s := newTestGoalService(t)
	ctx := context.Background()

	goal, err := s.CreateGoal(ctx, "alice", "  run 5k  ")
	require.NoError(t, err)

	wantWeek, wantYear := week.Of(time.Now())
	assert.NotEmpty(t, goal.ID)
	assert.Equal(t, "run 5k", goal.Text) // trimmed
	assert.False(t, goal.Completed)
	assert.Equal(t, wantWeek, goal.WeekNumber)
	assert.Equal(t, wantYear, goal.Year)
	assert.Equal(t, "alice", goal.Owner)
	assert.False(t, goal.CreatedAt.IsZero())
}

func TestCreateGoal_EmptyText(t *testing.T) {
	s := newTestGoalService(t)

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := s.CreateGoal(context.Background(), "alice", text)

		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "text %q", text)
	}
}

func TestCreateGoal_QuotaEnforced(t *testing.T) {
	s := newTestGoalService(t)
	ctx := context.Background()

	for i := 0; i < MaxGoalsPerWeek; i++ {
		_, err := s.CreateGoal(ctx, "alice", "goal")
		require.NoError(t, err)
	}

	_, err := s.CreateGoal(ctx, "alice", "one too many")
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	// The failed create must not have altered stored state.
	goals, err := s.CurrentWeekGoals(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, goals, MaxGoalsPerWeek)
}

func TestCreateGoal_QuotaIsPerOwner(t *testing.T) {
	s := newTestGoalService(t)
	ctx := context.Background()

	for i := 0; i < MaxGoalsPerWeek; i++ {
		_, err := s.CreateGoal(ctx, "alice", "goal")
		require.NoError(t, err)
	}

	_, err := s.CreateGoal(ctx, "bob", "my first goal")
	assert.NoError(t, err)
}

func TestCreateGoal_QuotaIsPerWeek(t *testing.T) {
	s := newTestGoalService(t)
	ctx := context.Background()

	monday := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return monday }

	for i := 0; i < MaxGoalsPerWeek; i++ {
		_, err := s.CreateGoal(ctx, "alice", "goal")
		require.NoError(t, err)
	}
	_, err := s.CreateGoal(ctx, "alice", "blocked")
	require.ErrorIs(t, err, ErrQuotaExceeded)

	// A week later the quota resets.
	s.now = func() time.Time { return monday.AddDate(0, 0, 7) }

	goal, err := s.CreateGoal(ctx, "alice", "fresh week")
	require.NoError(t, err)
	assert.Equal(t, 2, goal.WeekNumber)
}

func TestCurrentWeekGoals_SortedAndScoped(t *testing.T) {
	s := newTestGoalService(t)
	ctx := context.Background()

	for _, text := range []string{"first", "second", "third"} {
		_, err := s.CreateGoal(ctx, "alice", text)
		require.NoError(t, err)
	}
	_, err := s.CreateGoal(ctx, "bob", "not alice's")
	require.NoError(t, err)

	goals, err := s.CurrentWeekGoals(ctx, "alice")
	require.NoError(t, err)

	require.Len(t, goals, 3)
	assert.Equal(t, "first", goals[0].Text)
	assert.Equal(t, "second", goals[1].Text)
	assert.Equal(t, "third", goals[2].Text)
}

func TestCurrentWeekGoals_ExcludesOtherWeeks(t *testing.T) {
	s := newTestGoalService(t)
	ctx := context.Background()

	s.now = func() time.Time { return time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC) }
	_, err := s.CreateGoal(ctx, "alice", "last week")
	require.NoError(t, err)

	s.now = func() time.Time { return time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC) }
	_, err = s.CreateGoal(ctx, "alice", "this week")
	require.NoError(t, err)

	goals, err := s.CurrentWeekGoals(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "this week", goals[0].Text)
}

func TestToggleCompletion(t *testing.T) {
	s := newTestGoalService(t)
	ctx := context.Background()

	goal, err := s.CreateGoal(ctx, "alice", "read a book")
	require.NoError(t, err)

	toggled, err := s.ToggleCompletion(ctx, goal.ID, "alice")
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	assert.Equal(t, goal.Text, toggled.Text)

	// Toggling twice returns the goal to its original state.
	toggled, err = s.ToggleCompletion(ctx, goal.ID, "alice")
	require.NoError(t, err)
	assert.False(t, toggled.Completed)
}

func TestToggleCompletion_NotFound(t *testing.T) {
	s := newTestGoalService(t)

	_, err := s.ToggleCompletion(context.Background(), "missing", "alice")

	assert.ErrorIs(t, err, ErrGoalNotFound)
}

func TestToggleCompletion_Forbidden(t *testing.T) {
	s := newTestGoalService(t)
	ctx := context.Background()

	goal, err := s.CreateGoal(ctx, "alice", "private goal")
	require.NoError(t, err)

	_, err = s.ToggleCompletion(ctx, goal.ID, "bob")
	assert.ErrorIs(t, err, ErrForbidden)

	// And the goal is untouched.
	goals, err := s.CurrentWeekGoals(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.False(t, goals[0].Completed)
}

func TestUpdateText(t *testing.T) {
	s := newTestGoalService(t)
	ctx := context.Background()

	goal, err := s.CreateGoal(ctx, "alice", "old text")
	require.NoError(t, err)

	updated, err := s.UpdateText(ctx, goal.ID, "alice", "  new text  ")
	require.NoError(t, err)
	assert.Equal(t, "new text", updated.Text)
	assert.Equal(t, goal.WeekNumber, updated.WeekNumber)
}

func TestUpdateText_Validation(t *testing.T) {
	s := newTestGoalService(t)
	ctx := context.Background()

	goal, err := s.CreateGoal(ctx, "alice", "keep me")
	require.NoError(t, err)

	_, err = s.UpdateText(ctx, goal.ID, "alice", "   ")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUpdateText_OwnershipAndExistence(t *testing.T) {
	s := newTestGoalService(t)
	ctx := context.Background()

	goal, err := s.CreateGoal(ctx, "alice", "mine")
	require.NoError(t, err)

	_, err = s.UpdateText(ctx, goal.ID, "bob", "stolen")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.UpdateText(ctx, "missing", "alice", "anything")
	assert.ErrorIs(t, err, ErrGoalNotFound)
}
