package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/projetgotham/gotham/internal/models"
	"github.com/projetgotham/gotham/internal/rowstore"
)

// WorkoutService implements exercise management, performance logging
// and the aggregated views derived from the cached row sets.
type WorkoutService struct {
	store RowStore
	cache RowCache
	log   *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewWorkoutService constructs a WorkoutService over the given store
// and cache.
func NewWorkoutService(store RowStore, cache RowCache, log *zap.Logger) *WorkoutService {
	return &WorkoutService{
		store: store,
		cache: cache,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Standing is one leaderboard line: a user's accumulated training
// volume and the score, tier and rank derived from it.
type Standing struct {
	UserID   string  `json:"user_id"`
	Username string  `json:"username"`
	Volume   float64 `json:"volume"`
	Score    int64   `json:"score"`
	Tier     string  `json:"tier"`
	Rank     int     `json:"rank"`
}

// ExerciseSummary aggregates one user's performances for one of their
// exercises.
type ExerciseSummary struct {
	ExerciseID     string  `json:"exercise_id"`
	Exercise       string  `json:"exercise"`
	Zone           string  `json:"zone"`
	VideoURL       string  `json:"video_url"`
	MaxWeight      float64 `json:"max_weight"`
	TrainingWeight float64 `json:"training_weight"`
	Sessions       int     `json:"sessions"`
	LastDate       string  `json:"last_date,omitempty"`
}

// LeastExercise names the exercise with the lowest accumulated
// weight-volume for a user. Exercise is nil when the user has no
// exercises at all.
type LeastExercise struct {
	Exercise *string `json:"exercise"`
	Volume   float64 `json:"volume"`
}

// HistoryEntry is one logged set in a user's history, with the raw
// cell values as they sit in the sheet.
type HistoryEntry struct {
	PerformanceID string `json:"performance_id"`
	Date          string `json:"date"`
	ExerciseID    string `json:"exercise_id"`
	Exercise      string `json:"exercise"`
	Weight        string `json:"weight,omitempty"`
	Reps          string `json:"reps"`
	Ressenti      string `json:"ressenti"`
	Notes         string `json:"notes,omitempty"`
}

// ProgressionPoint is the maximum weight a user lifted for one
// exercise on one calendar date.
type ProgressionPoint struct {
	Date      string  `json:"date"`
	MaxWeight float64 `json:"max_weight"`
}

// CreateExerciseInput carries the fields of an exercise creation
// request.
type CreateExerciseInput struct {
	UserID   string
	Name     string
	Zone     string
	VideoURL string
}

// CreateExercise appends a new exercise owned by the given user and
// invalidates the exercises cache entry.
func (s *WorkoutService) CreateExercise(ctx context.Context, in CreateExerciseInput) error {
	if in.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if in.Zone == "" {
		return fmt.Errorf("%w: zone is required", ErrValidation)
	}

	row := models.Row{
		"exercise_id": s.newID(),
		"user_id":     in.UserID,
		"name":        in.Name,
		"zone":        in.Zone,
		"created_at":  s.now().UTC().Format(time.RFC3339),
	}
	if in.VideoURL != "" {
		row["video_url"] = in.VideoURL
	}

	if err := s.store.Append(ctx, rowstore.TableExercises, row); err != nil {
		return err
	}
	s.cache.Invalidate(rowstore.TableExercises)

	s.log.Info("exercise created",
		zap.String("exercise_id", row["exercise_id"]),
		zap.String("user_id", in.UserID),
		zap.String("name", in.Name),
	)
	return nil
}

// LogPerformanceInput carries the fields of a performance logging
// request. Weight and Notes are optional; everything else is
// required. Ressenti is opaque: its presence is checked, its value is
// not.
type LogPerformanceInput struct {
	UserID     string
	ExerciseID string
	Date       string
	Weight     string
	Reps       string
	Ressenti   string
	Notes      string
}

// LogPerformance appends a new performance row and invalidates the
// performances cache entry. Reps must be a non-negative integer and
// Weight, when present, must be numeric.
func (s *WorkoutService) LogPerformance(ctx context.Context, in LogPerformanceInput) error {
	switch {
	case in.UserID == "":
		return fmt.Errorf("%w: user_id is required", ErrValidation)
	case in.ExerciseID == "":
		return fmt.Errorf("%w: exercise_id is required", ErrValidation)
	case in.Date == "":
		return fmt.Errorf("%w: date is required", ErrValidation)
	case in.Reps == "":
		return fmt.Errorf("%w: reps is required", ErrValidation)
	case in.Ressenti == "":
		return fmt.Errorf("%w: ressenti is required", ErrValidation)
	}

	reps, err := strconv.Atoi(in.Reps)
	if err != nil || reps < 0 {
		return fmt.Errorf("%w: reps must be a non-negative integer", ErrValidation)
	}
	if in.Weight != "" {
		if _, err := strconv.ParseFloat(in.Weight, 64); err != nil {
			return fmt.Errorf("%w: weight must be numeric", ErrValidation)
		}
	}

	row := models.Row{
		"performance_id": s.newID(),
		"user_id":        in.UserID,
		"exercise_id":    in.ExerciseID,
		"date":           in.Date,
		"reps":           in.Reps,
		"ressenti":       in.Ressenti,
		"created_at":     s.now().UTC().Format(time.RFC3339),
	}
	if in.Weight != "" {
		row["weight"] = in.Weight
	}
	if in.Notes != "" {
		row["notes"] = in.Notes
	}

	if err := s.store.Append(ctx, rowstore.TablePerformances, row); err != nil {
		return err
	}
	s.cache.Invalidate(rowstore.TablePerformances)

	s.log.Info("performance logged",
		zap.String("performance_id", row["performance_id"]),
		zap.String("user_id", in.UserID),
		zap.String("exercise_id", in.ExerciseID),
	)
	return nil
}

// Leaderboard computes the standings of all active users, ordered by
// rank. Volume sums every parseable weight of a user's performances;
// a dirty cell skips that cell only. Ties keep store row order.
func (s *WorkoutService) Leaderboard(ctx context.Context) ([]Standing, error) {
	userRows, err := readThrough(ctx, s.cache, s.store, rowstore.TableUsers)
	if err != nil {
		return nil, err
	}
	perfRows, err := readThrough(ctx, s.cache, s.store, rowstore.TablePerformances)
	if err != nil {
		return nil, err
	}

	volumes := make(map[string]float64)
	for _, r := range perfRows {
		p := models.PerformanceFromRow(r)
		if p.Weight != nil {
			volumes[p.UserID] += *p.Weight
		}
	}

	standings := make([]Standing, 0, len(userRows))
	for _, r := range userRows {
		u := models.UserFromRow(r)
		if !u.Active {
			continue
		}
		v := volumes[u.ID]
		standings = append(standings, Standing{
			UserID:   u.ID,
			Username: u.Username,
			Volume:   v,
			Score:    ScoreFor(v),
			Tier:     TierFor(v),
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Volume > standings[j].Volume
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings, nil
}

// summaryGroup accumulates one exercise's performance group.
type summaryGroup struct {
	sessions int
	max      float64
	lastDate *time.Time
}

// ExerciseSummaries groups a user's performances by exercise,
// restricted to exercises the user owns, and returns one summary per
// exercise with at least one logged set, ordered by last date
// descending (no date last).
func (s *WorkoutService) ExerciseSummaries(ctx context.Context, userID string) ([]ExerciseSummary, error) {
	owned, err := s.ownedExercises(ctx, userID)
	if err != nil {
		return nil, err
	}
	perfRows, err := readThrough(ctx, s.cache, s.store, rowstore.TablePerformances)
	if err != nil {
		return nil, err
	}

	ownedByID := make(map[string]models.Exercise, len(owned))
	for _, ex := range owned {
		ownedByID[ex.ID] = ex
	}

	groups := make(map[string]*summaryGroup)
	for _, r := range perfRows {
		p := models.PerformanceFromRow(r)
		if p.UserID != userID {
			continue
		}
		if _, ok := ownedByID[p.ExerciseID]; !ok {
			continue
		}
		g := groups[p.ExerciseID]
		if g == nil {
			g = &summaryGroup{}
			groups[p.ExerciseID] = g
		}
		g.sessions++
		if p.Weight != nil && *p.Weight > g.max {
			g.max = *p.Weight
		}
		if p.Date != nil && (g.lastDate == nil || p.Date.After(*g.lastDate)) {
			g.lastDate = p.Date
		}
	}

	// Emit in exercise creation order; the stable sort below keeps
	// that order for equal dates.
	type dated struct {
		sum  ExerciseSummary
		last *time.Time
	}
	items := make([]dated, 0, len(groups))
	for _, ex := range owned {
		g, ok := groups[ex.ID]
		if !ok {
			continue
		}
		sum := ExerciseSummary{
			ExerciseID:     ex.ID,
			Exercise:       ex.Name,
			Zone:           ex.Zone,
			VideoURL:       ex.VideoURL,
			MaxWeight:      g.max,
			TrainingWeight: math.Round(g.max*0.8*10) / 10,
			Sessions:       g.sessions,
		}
		if g.lastDate != nil {
			sum.LastDate = g.lastDate.Format(models.DateLayout)
		}
		items = append(items, dated{sum: sum, last: g.lastDate})
	}

	sort.SliceStable(items, func(i, j int) bool {
		di, dj := items[i].last, items[j].last
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.After(*dj)
		}
	})

	summaries := make([]ExerciseSummary, len(items))
	for i, it := range items {
		summaries[i] = it.sum
	}
	return summaries, nil
}

// LeastExercise returns the user's exercise with the lowest
// accumulated weight-volume, ties keeping exercise creation order. A
// user without exercises gets a nil Exercise, not an error.
func (s *WorkoutService) LeastExercise(ctx context.Context, userID string) (LeastExercise, error) {
	owned, err := s.ownedExercises(ctx, userID)
	if err != nil {
		return LeastExercise{}, err
	}
	if len(owned) == 0 {
		return LeastExercise{}, nil
	}
	perfRows, err := readThrough(ctx, s.cache, s.store, rowstore.TablePerformances)
	if err != nil {
		return LeastExercise{}, err
	}

	volumes := make(map[string]float64)
	for _, r := range perfRows {
		p := models.PerformanceFromRow(r)
		if p.UserID == userID && p.Weight != nil {
			volumes[p.ExerciseID] += *p.Weight
		}
	}

	least := owned[0]
	leastVolume := volumes[least.ID]
	for _, ex := range owned[1:] {
		if v := volumes[ex.ID]; v < leastVolume {
			least = ex
			leastVolume = v
		}
	}
	name := least.Name
	return LeastExercise{Exercise: &name, Volume: leastVolume}, nil
}

// History returns a user's performances, most recent first, rows with
// an unparseable date last in store order. exerciseID narrows the
// history to one exercise when non-empty.
func (s *WorkoutService) History(ctx context.Context, userID, exerciseID string) ([]HistoryEntry, error) {
	exRows, err := readThrough(ctx, s.cache, s.store, rowstore.TableExercises)
	if err != nil {
		return nil, err
	}
	perfRows, err := readThrough(ctx, s.cache, s.store, rowstore.TablePerformances)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(exRows))
	for _, r := range exRows {
		ex := models.ExerciseFromRow(r)
		names[ex.ID] = ex.Name
	}

	type dated struct {
		entry HistoryEntry
		date  *time.Time
	}
	var items []dated
	for _, r := range perfRows {
		if r["user_id"] != userID {
			continue
		}
		if exerciseID != "" && r["exercise_id"] != exerciseID {
			continue
		}
		items = append(items, dated{
			entry: HistoryEntry{
				PerformanceID: r["performance_id"],
				Date:          r["date"],
				ExerciseID:    r["exercise_id"],
				Exercise:      names[r["exercise_id"]],
				Weight:        r["weight"],
				Reps:          r["reps"],
				Ressenti:      r["ressenti"],
				Notes:         r["notes"],
			},
			date: models.ParseDate(r["date"]),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		di, dj := items[i].date, items[j].date
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.After(*dj)
		}
	})

	entries := make([]HistoryEntry, len(items))
	for i, it := range items {
		entries[i] = it.entry
	}
	return entries, nil
}

// Progression returns, for one exercise of one user, the maximum
// parseable weight per calendar date, oldest first. Rows missing a
// parseable date or weight are skipped.
func (s *WorkoutService) Progression(ctx context.Context, userID, exerciseID string) ([]ProgressionPoint, error) {
	perfRows, err := readThrough(ctx, s.cache, s.store, rowstore.TablePerformances)
	if err != nil {
		return nil, err
	}

	maxByDate := make(map[string]float64)
	for _, r := range perfRows {
		p := models.PerformanceFromRow(r)
		if p.UserID != userID || p.ExerciseID != exerciseID {
			continue
		}
		if p.Date == nil || p.Weight == nil {
			continue
		}
		day := p.Date.Format(models.DateLayout)
		if w, ok := maxByDate[day]; !ok || *p.Weight > w {
			maxByDate[day] = *p.Weight
		}
	}

	days := make([]string, 0, len(maxByDate))
	for day := range maxByDate {
		days = append(days, day)
	}
	sort.Strings(days)

	points := make([]ProgressionPoint, 0, len(days))
	for _, day := range days {
		points = append(points, ProgressionPoint{Date: day, MaxWeight: maxByDate[day]})
	}
	return points, nil
}

// ownedExercises returns the exercises owned by userID in store
// order.
func (s *WorkoutService) ownedExercises(ctx context.Context, userID string) ([]models.Exercise, error) {
	rows, err := readThrough(ctx, s.cache, s.store, rowstore.TableExercises)
	if err != nil {
		return nil, err
	}
	var owned []models.Exercise
	for _, r := range rows {
		ex := models.ExerciseFromRow(r)
		if ex.UserID == userID {
			owned = append(owned, ex)
		}
	}
	return owned, nil
}
