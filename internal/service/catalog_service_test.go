package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorbook/internal/models"
	appErrors "github.com/noah-isme/tutorbook/pkg/errors"
)

func newCatalog(t *testing.T, cache *CacheService) (*CatalogService, *mockGoalRepo, *mockTeacherRepo) {
	t.Helper()
	goals := &mockGoalRepo{goals: fixtureGoals()}
	teachers := &mockTeacherRepo{items: fixtureTeachers()}
	svc := NewCatalogService(goals, teachers, cache, 2, zap.NewNop())
	svc.shuffle = func(n int, swap func(i, j int)) {
		for i := 0; i < n/2; i++ {
			swap(i, n-1-i)
		}
	}
	return svc, goals, teachers
}

func teacherIDs(teachers []models.Teacher) []int {
	ids := make([]int, len(teachers))
	for i, t := range teachers {
		ids[i] = t.ID
	}
	return ids
}

func TestCatalogServiceSample(t *testing.T) {
	svc, _, _ := newCatalog(t, nil)

	sample, err := svc.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, teacherIDs(sample))
}

func TestCatalogServiceTeachersSorting(t *testing.T) {
	svc, _, _ := newCatalog(t, nil)
	ctx := context.Background()

	cases := map[models.TeacherSort][]int{
		models.SortRating:    {3, 1, 2},
		models.SortPriceAsc:  {2, 1, 3},
		models.SortPriceDesc: {3, 1, 2},
		models.SortRandom:    {3, 2, 1},
	}
	for order, want := range cases {
		got, err := svc.Teachers(ctx, order)
		require.NoError(t, err)
		assert.Equal(t, want, teacherIDs(got), string(order))
	}
}

func TestCatalogServiceTeachersByGoal(t *testing.T) {
	svc, _, _ := newCatalog(t, nil)
	ctx := context.Background()

	goal, teachers, err := svc.TeachersByGoal(ctx, "travel")
	require.NoError(t, err)
	assert.Equal(t, "For travel", goal.Text)
	assert.ElementsMatch(t, []int{1, 3}, teacherIDs(teachers))

	_, _, err = svc.TeachersByGoal(ctx, "cooking")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestCatalogServiceProfile(t *testing.T) {
	svc, _, _ := newCatalog(t, nil)
	ctx := context.Background()

	profile, err := svc.Profile(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "Clara", profile.Teacher.Name)
	assert.Equal(t, []models.Goal{{ID: "study", Text: "For school"}, {ID: "travel", Text: "For travel"}}, profile.Goals)
	require.Len(t, profile.FreeTimes, 7)
	wed := profile.FreeTimes[2]
	assert.Equal(t, "wed", wed.Day)
	assert.Equal(t, []string{"08:00", "10:00", "12:00", "14:00", "18:00", "20:00", "22:00"}, wed.Hours)

	for _, raw := range []string{"99", "abc", "-1"} {
		_, err = svc.Profile(ctx, raw)
		assert.True(t, errors.Is(err, appErrors.ErrNotFound), raw)
	}
}

func TestCatalogServiceUsesCache(t *testing.T) {
	store := newMemoryCache()
	cache := NewCacheService(store, NewMetricsService(), time.Minute, zap.NewNop(), true)
	svc, goals, teachers := newCatalog(t, cache)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Goals(ctx)
		require.NoError(t, err)
		_, err = svc.Teachers(ctx, models.SortRating)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, goals.calls)
	assert.Equal(t, 1, teachers.listCalls)

	svc.InvalidateTeachers(ctx)
	assert.Contains(t, store.deleted, "teachers:all")
	_, ok := store.items["goals"]
	assert.True(t, ok, "goal cache survives teacher invalidation")

	_, err := svc.Teachers(ctx, models.SortRating)
	require.NoError(t, err)
	assert.Equal(t, 2, teachers.listCalls)
}
