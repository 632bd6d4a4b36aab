package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/weeklygoals/weekly-goals-be/internal/models"
	"github.com/weeklygoals/weekly-goals-be/internal/store"
	"github.com/weeklygoals/weekly-goals-be/internal/week"
)

// MaxGoalsPerWeek caps how many goals a user may set in one ISO week.
const MaxGoalsPerWeek = 5

// GoalServiceProvider defines the interface for goal services.
type GoalServiceProvider interface {
	CurrentWeekGoals(ctx context.Context, owner string) ([]models.Goal, error)
	CreateGoal(ctx context.Context, owner, text string) (models.Goal, error)
	ToggleCompletion(ctx context.Context, goalID, requester string) (models.Goal, error)
	UpdateText(ctx context.Context, goalID, requester, text string) (models.Goal, error)
}

// GoalService provides the weekly-quota business logic for goals.
type GoalService struct {
	goals *store.Repository[models.Goal]
	now   func() time.Time
}

// NewGoalService creates a new GoalService on top of a store.
func NewGoalService(s store.Store) *GoalService {
	return &GoalService{
		goals: store.NewRepository[models.Goal](s, "goals"),
		now:   time.Now,
	}
}

func (s *GoalService) currentWeekFilter(owner string) store.Filter {
	weekNumber, year := week.Of(s.now())
	return store.Filter{
		"weekNumber": weekNumber,
		"year":       year,
		"owner":      owner,
	}
}

// CurrentWeekGoals lists the owner's goals for the current ISO week,
// oldest first.
func (s *GoalService) CurrentWeekGoals(ctx context.Context, owner string) ([]models.Goal, error) {
	goals, err := s.goals.Find(ctx, s.currentWeekFilter(owner))
	if err != nil {
		return nil, fmt.Errorf("fetching goals: %w", err)
	}
	sort.Slice(goals, func(i, j int) bool {
		return goals[i].CreatedAt.Before(goals[j].CreatedAt)
	})
	return goals, nil
}

// CreateGoal adds a goal to the owner's current week, enforcing the
// weekly quota.
//
// The count and the insert are separate storage calls, so two requests
// racing on the same week can both pass the check and leave the owner
// with six goals. That is a known gap carried over deliberately; a
// strict quota would need a serializing lock per (owner, week, year)
// or a conditional insert.
func (s *GoalService) CreateGoal(ctx context.Context, owner, text string) (models.Goal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Goal{}, &ValidationError{Message: "Goal text is required"}
	}

	filter := s.currentWeekFilter(owner)
	count, err := s.goals.Count(ctx, filter)
	if err != nil {
		return models.Goal{}, fmt.Errorf("counting goals: %w", err)
	}
	if count >= MaxGoalsPerWeek {
		return models.Goal{}, ErrQuotaExceeded
	}

	goal, err := s.goals.Create(ctx, models.Goal{
		Text:       text,
		Completed:  false,
		WeekNumber: filter["weekNumber"].(int),
		Year:       filter["year"].(int),
		Owner:      owner,
	})
	if err != nil {
		return models.Goal{}, fmt.Errorf("creating goal: %w", err)
	}
	return goal, nil
}

// ToggleCompletion flips a goal's completed flag. Only the owner may
// toggle it.
func (s *GoalService) ToggleCompletion(ctx context.Context, goalID, requester string) (models.Goal, error) {
	goal, err := s.ownedGoal(ctx, goalID, requester)
	if err != nil {
		return models.Goal{}, err
	}

	updated, err := s.goals.Update(ctx, goalID, store.Fields{"completed": !goal.Completed})
	if err != nil {
		return models.Goal{}, fmt.Errorf("updating goal: %w", err)
	}
	return updated, nil
}

// UpdateText replaces a goal's text. Only the owner may edit it, and
// the new text must be non-empty after trimming.
func (s *GoalService) UpdateText(ctx context.Context, goalID, requester, text string) (models.Goal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Goal{}, &ValidationError{Message: "Goal text is required"}
	}

	if _, err := s.ownedGoal(ctx, goalID, requester); err != nil {
		return models.Goal{}, err
	}

	updated, err := s.goals.Update(ctx, goalID, store.Fields{"text": text})
	if err != nil {
		return models.Goal{}, fmt.Errorf("updating goal: %w", err)
	}
	return updated, nil
}

func (s *GoalService) ownedGoal(ctx context.Context, goalID, requester string) (models.Goal, error) {
	goal, err := s.goals.FindByID(ctx, goalID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Goal{}, ErrGoalNotFound
	}
	if err != nil {
		return models.Goal{}, fmt.Errorf("fetching goal: %w", err)
	}
	if goal.Owner != requester {
		return models.Goal{}, ErrForbidden
	}
	return goal, nil
}
