package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/projetgotham/gotham/internal/cache"
	"github.com/projetgotham/gotham/internal/models"
	"github.com/projetgotham/gotham/internal/rowstore"
)

func newWorkoutFixture(t *testing.T) (*WorkoutService, *rowstore.Memory, *cache.Cache) {
	t.Helper()
	store := rowstore.NewMemory()
	c := cache.New(cache.DefaultTTL, rowstore.Tables...)
	return NewWorkoutService(store, c, zap.NewNop()), store, c
}

func seedUser(t *testing.T, store *rowstore.Memory, id, username, active string) {
	t.Helper()
	require.NoError(t, store.Append(context.Background(), rowstore.TableUsers, models.Row{
		"user_id":   id,
		"username":  username,
		"is_active": active,
	}))
}

func seedExercise(t *testing.T, store *rowstore.Memory, id, userID, name, zone string) {
	t.Helper()
	require.NoError(t, store.Append(context.Background(), rowstore.TableExercises, models.Row{
		"exercise_id": id,
		"user_id":     userID,
		"name":        name,
		"zone":        zone,
	}))
}

func seedPerformance(t *testing.T, store *rowstore.Memory, userID, exerciseID, date, weight, reps string) {
	t.Helper()
	row := models.Row{
		"performance_id": "p-" + userID + "-" + exerciseID + "-" + date + "-" + weight,
		"user_id":        userID,
		"exercise_id":    exerciseID,
		"date":           date,
		"reps":           reps,
		"ressenti":       "7",
	}
	if weight != "" {
		row["weight"] = weight
	}
	require.NoError(t, store.Append(context.Background(), rowstore.TablePerformances, row))
}

func TestLeaderboard_RanksActiveUsersByVolume(t *testing.T) {
	svc, store, _ := newWorkoutFixture(t)
	seedUser(t, store, "u1", "alice", "true")
	seedUser(t, store, "u2", "bruce", "TRUE")
	seedUser(t, store, "u3", "selina", "False")
	seedExercise(t, store, "e1", "u1", "Squat", "legs")
	seedExercise(t, store, "e2", "u2", "Dips", "push")
	seedPerformance(t, store, "u1", "e1", "2024-01-01", "100", "5")
	seedPerformance(t, store, "u1", "e1", "2024-01-02", "120", "5")
	seedPerformance(t, store, "u2", "e2", "2024-01-01", "90", "8")
	seedPerformance(t, store, "u3", "e1", "2024-01-01", "500", "1")

	standings, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, standings, 2, "inactive users are excluded, not ranked last")

	require.Equal(t, "alice", standings[0].Username)
	require.Equal(t, 1, standings[0].Rank)
	require.Equal(t, 220.0, standings[0].Volume)
	require.Equal(t, int64(22), standings[0].Score)
	require.Equal(t, "Bronze I", standings[0].Tier)

	require.Equal(t, "bruce", standings[1].Username)
	require.Equal(t, 2, standings[1].Rank)
	require.Equal(t, 90.0, standings[1].Volume)
}

func TestLeaderboard_DirtyWeightSkipped(t *testing.T) {
	svc, store, _ := newWorkoutFixture(t)
	seedUser(t, store, "u1", "alice", "true")
	seedExercise(t, store, "e1", "u1", "Squat", "legs")
	seedPerformance(t, store, "u1", "e1", "2024-01-01", "100", "5")
	seedPerformance(t, store, "u1", "e1", "2024-01-02", "lourd", "5")
	seedPerformance(t, store, "u1", "e1", "2024-01-03", "50", "5")

	standings, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, standings, 1)
	require.Equal(t, 150.0, standings[0].Volume, "unparseable weight contributes zero, other rows kept")
}

func TestLeaderboard_TieKeepsRowOrder(t *testing.T) {
	svc, store, _ := newWorkoutFixture(t)
	seedUser(t, store, "u1", "alice", "true")
	seedUser(t, store, "u2", "bruce", "true")
	seedExercise(t, store, "e1", "u1", "Squat", "legs")
	seedExercise(t, store, "e2", "u2", "Dips", "push")
	seedPerformance(t, store, "u1", "e1", "2024-01-01", "100", "5")
	seedPerformance(t, store, "u2", "e2", "2024-01-01", "100", "5")

	standings, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, []int{standings[0].Rank, standings[1].Rank})
	require.Equal(t, "alice", standings[0].Username)
	require.Equal(t, "bruce", standings[1].Username)
}

func TestExerciseSummaries(t *testing.T) {
	svc, store, _ := newWorkoutFixture(t)
	seedUser(t, store, "u1", "alice", "true")
	seedExercise(t, store, "e1", "u1", "Squat", "legs")
	seedExercise(t, store, "e2", "u1", "Dips", "push")
	seedExercise(t, store, "e9", "u2", "Curl", "pull")
	seedPerformance(t, store, "u1", "e1", "2024-01-01", "100", "5")
	seedPerformance(t, store, "u1", "e1", "2024-02-01", "120", "3")
	seedPerformance(t, store, "u1", "e2", "2024-03-01", "40", "10")
	// Performance on someone else's exercise is ignored.
	seedPerformance(t, store, "u1", "e9", "2024-04-01", "30", "10")

	sums, err := svc.ExerciseSummaries(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, sums, 2)

	// Ordered by last date descending: Dips (2024-03-01) first.
	require.Equal(t, "Dips", sums[0].Exercise)
	require.Equal(t, "2024-03-01", sums[0].LastDate)
	require.Equal(t, 1, sums[0].Sessions)
	require.Equal(t, 40.0, sums[0].MaxWeight)
	require.Equal(t, 32.0, sums[0].TrainingWeight)

	require.Equal(t, "Squat", sums[1].Exercise)
	require.Equal(t, "2024-02-01", sums[1].LastDate)
	require.Equal(t, 2, sums[1].Sessions)
	require.Equal(t, 120.0, sums[1].MaxWeight)
	require.Equal(t, 96.0, sums[1].TrainingWeight)
}

func TestExerciseSummaries_TrainingWeightRounding(t *testing.T) {
	svc, store, _ := newWorkoutFixture(t)
	seedUser(t, store, "u1", "alice", "true")
	seedExercise(t, store, "e1", "u1", "Bench", "push")
	seedPerformance(t, store, "u1", "e1", "2024-01-01", "99.3", "5")

	sums, err := svc.ExerciseSummaries(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, sums, 1)
	require.Equal(t, 99.3, sums[0].MaxWeight)
	require.Equal(t, 79.4, sums[0].TrainingWeight)
}

func TestExerciseSummaries_NoWeightsAndNoDates(t *testing.T) {
	svc, store, _ := newWorkoutFixture(t)
	seedUser(t, store, "u1", "alice", "true")
	seedExercise(t, store, "e1", "u1", "Tractions", "pull")
	seedExercise(t, store, "e2", "u1", "Squat", "legs")
	// Bodyweight sets: no weight; one row has a broken date.
	seedPerformance(t, store, "u1", "e1", "junk", "", "10")
	seedPerformance(t, store, "u1", "e2", "2024-01-05", "80", "5")

	sums, err := svc.ExerciseSummaries(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, sums, 2)

	// The dated group sorts first; the group with no parseable date
	// sorts last with an absent last_date.
	require.Equal(t, "Squat", sums[0].Exercise)
	require.Equal(t, "Tractions", sums[1].Exercise)
	require.Equal(t, 0.0, sums[1].MaxWeight)
	require.Equal(t, 0.0, sums[1].TrainingWeight)
	require.Equal(t, "", sums[1].LastDate)
}

func TestLeastExercise(t *testing.T) {
	svc, store, _ := newWorkoutFixture(t)
	seedUser(t, store, "u1", "alice", "true")
	seedExercise(t, store, "eA", "u1", "A", "legs")
	seedExercise(t, store, "eB", "u1", "B", "push")
	seedPerformance(t, store, "u1", "eA", "2024-01-01", "50", "5")
	seedPerformance(t, store, "u1", "eB", "2024-01-01", "30", "5")

	least, err := svc.LeastExercise(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, least.Exercise)
	require.Equal(t, "B", *least.Exercise)
	require.Equal(t, 30.0, least.Volume)
}

func TestLeastExercise_NoExercises(t *testing.T) {
	svc, store, _ := newWorkoutFixture(t)
	seedUser(t, store, "u1", "alice", "true")

	least, err := svc.LeastExercise(context.Background(), "u1")
	require.NoError(t, err)
	require.Nil(t, least.Exercise)
	require.Equal(t, 0.0, least.Volume)
}

func TestLeastExercise_TieKeepsCreationOrder(t *testing.T) {
	svc, store, _ := newWorkoutFixture(t)
	seedUser(t, store, "u1", "alice", "true")
	seedExercise(t, store, "eA", "u1", "A", "legs")
	seedExercise(t, store, "eB", "u1", "B", "push")

	least, err := svc.LeastExercise(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "A", *least.Exercise)
}

func TestCreateExercise_Validation(t *testing.T) {
	svc, _, _ := newWorkoutFixture(t)

	for _, in := range []CreateExerciseInput{
		{Name: "Squat", Zone: "legs"},
		{UserID: "u1", Zone: "legs"},
		{UserID: "u1", Name: "Squat"},
	} {
		err := svc.CreateExercise(context.Background(), in)
		require.ErrorIs(t, err, ErrValidation)
	}
}

func TestLogPerformance_Validation(t *testing.T) {
	svc, _, _ := newWorkoutFixture(t)

	base := LogPerformanceInput{
		UserID:     "u1",
		ExerciseID: "e1",
		Date:       "2024-01-01",
		Reps:       "5",
		Ressenti:   "8",
	}

	tests := []struct {
		name   string
		mutate func(*LogPerformanceInput)
	}{
		{"missing user_id", func(in *LogPerformanceInput) { in.UserID = "" }},
		{"missing exercise_id", func(in *LogPerformanceInput) { in.ExerciseID = "" }},
		{"missing date", func(in *LogPerformanceInput) { in.Date = "" }},
		{"missing reps", func(in *LogPerformanceInput) { in.Reps = "" }},
		{"missing ressenti", func(in *LogPerformanceInput) { in.Ressenti = "" }},
		{"non-numeric reps", func(in *LogPerformanceInput) { in.Reps = "ten" }},
		{"negative reps", func(in *LogPerformanceInput) { in.Reps = "-1" }},
		{"non-numeric weight", func(in *LogPerformanceInput) { in.Weight = "heavy" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			require.ErrorIs(t, svc.LogPerformance(context.Background(), in), ErrValidation)
		})
	}
}

func TestLogPerformance_WeightOptional(t *testing.T) {
	svc, store, _ := newWorkoutFixture(t)

	err := svc.LogPerformance(context.Background(), LogPerformanceInput{
		UserID:     "u1",
		ExerciseID: "e1",
		Date:       "2024-01-01",
		Reps:       "12",
		Ressenti:   "9",
		Notes:      "bodyweight",
	})
	require.NoError(t, err)

	rows, err := store.Load(context.Background(), rowstore.TablePerformances)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	_, hasWeight := rows[0]["weight"]
	require.False(t, hasWeight)
	require.Equal(t, "bodyweight", rows[0]["notes"])
	require.NotEmpty(t, rows[0]["performance_id"])
}

func TestWrites_InvalidateTheirTable(t *testing.T) {
	svc, store, _ := newWorkoutFixture(t)
	seedUser(t, store, "u1", "alice", "true")

	// Warm the exercises and performances entries.
	_, err := svc.ExerciseSummaries(context.Background(), "u1")
	require.NoError(t, err)

	require.NoError(t, svc.CreateExercise(context.Background(), CreateExerciseInput{
		UserID: "u1", Name: "Squat", Zone: "legs",
	}))

	// The new exercise must be visible immediately, well inside the
	// TTL window.
	least, err := svc.LeastExercise(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, least.Exercise)
	require.Equal(t, "Squat", *least.Exercise)
}

func TestHistory(t *testing.T) {
	svc, store, _ := newWorkoutFixture(t)
	seedUser(t, store, "u1", "alice", "true")
	seedExercise(t, store, "e1", "u1", "Squat", "legs")
	seedExercise(t, store, "e2", "u1", "Dips", "push")
	seedPerformance(t, store, "u1", "e1", "2024-01-10", "100", "5")
	seedPerformance(t, store, "u1", "e2", "2024-02-01", "40", "10")
	seedPerformance(t, store, "u1", "e1", "corrupt", "80", "5")
	seedPerformance(t, store, "u2", "e1", "2024-03-01", "70", "5")

	entries, err := svc.History(context.Background(), "u1", "")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "Dips", entries[0].Exercise)
	require.Equal(t, "Squat", entries[1].Exercise)
	require.Equal(t, "corrupt", entries[2].Date, "unparseable dates sort last")

	filtered, err := svc.History(context.Background(), "u1", "e2")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "Dips", filtered[0].Exercise)
}

func TestProgression(t *testing.T) {
	svc, store, _ := newWorkoutFixture(t)
	seedUser(t, store, "u1", "alice", "true")
	seedExercise(t, store, "e1", "u1", "Squat", "legs")
	seedPerformance(t, store, "u1", "e1", "2024-01-02", "110", "3")
	seedPerformance(t, store, "u1", "e1", "2024-01-01", "100", "5")
	seedPerformance(t, store, "u1", "e1", "2024-01-01", "105", "3")
	// Skipped rows: broken weight, broken date, other exercise.
	seedPerformance(t, store, "u1", "e1", "2024-01-03", "oops", "5")
	seedPerformance(t, store, "u1", "e1", "someday", "200", "5")
	seedPerformance(t, store, "u1", "e2", "2024-01-04", "500", "5")

	points, err := svc.Progression(context.Background(), "u1", "e1")
	require.NoError(t, err)
	require.Equal(t, []ProgressionPoint{
		{Date: "2024-01-01", MaxWeight: 105},
		{Date: "2024-01-02", MaxWeight: 110},
	}, points)
}
