package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/reviewengine/internal/domain"
)

var (
	testNow  = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	testUser = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testRef  = domain.ContentRef{Type: domain.ContentTypeQuestion, ID: uuid.MustParse("22222222-2222-2222-2222-222222222222")}
)

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	p, err := NewPolicy(DefaultParameters())
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	return NewCalculator(p)
}

func modeConfig(mode domain.StudyMode) domain.StudyModeConfig {
	return domain.DefaultStudyModeConfig(testUser, mode)
}

func reviewedState(stability, difficulty float64, interval, streak int) *domain.ReviewState {
	g := domain.ReviewGradeGood
	last := testNow.Add(-time.Duration(interval) * day)
	return &domain.ReviewState{
		UserID:                testUser,
		Ref:                   testRef,
		Stability:             stability,
		Difficulty:            difficulty,
		ScheduledIntervalDays: interval,
		DueAt:                 testNow,
		LastGrade:             &g,
		ConsecutiveGoodOrEasy: streak,
		TotalReviews:          4,
		Lapses:                1,
		LastReviewedAt:        last,
		CreatedAt:             last.Add(-30 * day),
	}
}

func TestComputeNext_FirstReview(t *testing.T) {
	t.Parallel()
	calc := newTestCalculator(t)

	tests := []struct {
		grade      domain.ReviewGrade
		mode       domain.StudyMode
		wantDays   int
		wantStreak int
	}{
		{domain.ReviewGradeAgain, domain.StudyModeBalanced, 1, 0},
		{domain.ReviewGradeHard, domain.StudyModeBalanced, 2, 0},
		{domain.ReviewGradeGood, domain.StudyModeBalanced, 5, 1},
		{domain.ReviewGradeEasy, domain.StudyModeBalanced, 25, 1},
		{domain.ReviewGradeEasy, domain.StudyModeIntensive, 15, 1},
		{domain.ReviewGradeEasy, domain.StudyModeCramming, 7, 1},
		{domain.ReviewGradeGood, domain.StudyModeCramming, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String()+"/"+tt.grade.String(), func(t *testing.T) {
			t.Parallel()
			got := calc.ComputeNext(testUser, testRef, nil, tt.grade, testNow, modeConfig(tt.mode))

			if got.ScheduledIntervalDays != tt.wantDays {
				t.Errorf("scheduledIntervalDays = %d, want %d", got.ScheduledIntervalDays, tt.wantDays)
			}
			if want := testNow.Add(time.Duration(tt.wantDays) * day); !got.DueAt.Equal(want) {
				t.Errorf("dueAt = %v, want %v", got.DueAt, want)
			}
			if got.ConsecutiveGoodOrEasy != tt.wantStreak {
				t.Errorf("streak = %d, want %d", got.ConsecutiveGoodOrEasy, tt.wantStreak)
			}
			if got.TotalReviews != 1 {
				t.Errorf("totalReviews = %d, want 1", got.TotalReviews)
			}
			if got.Stability != DefaultWeights[tt.grade] {
				t.Errorf("stability = %f, want seed %f", got.Stability, DefaultWeights[tt.grade])
			}
			if got.LastGrade == nil || *got.LastGrade != tt.grade {
				t.Errorf("lastGrade = %v, want %s", got.LastGrade, tt.grade)
			}
			if got.UserID != testUser || got.Ref != testRef {
				t.Errorf("identity not carried: %v %v", got.UserID, got.Ref)
			}
		})
	}
}

func TestComputeNext_FirstEasyWithinSeededRange(t *testing.T) {
	t.Parallel()
	calc := newTestCalculator(t)
	cfg := modeConfig(domain.StudyModeBalanced)

	got := calc.ComputeNext(testUser, testRef, nil, domain.ReviewGradeEasy, testNow, cfg)

	if got.ScheduledIntervalDays < DefaultSeedIntervals[domain.ReviewGradeEasy] || got.ScheduledIntervalDays > 40 {
		t.Errorf("scheduledIntervalDays = %d, want within [%d, 40]", got.ScheduledIntervalDays, DefaultSeedIntervals[domain.ReviewGradeEasy])
	}
	if got.ConsecutiveGoodOrEasy != 1 {
		t.Errorf("streak = %d, want 1", got.ConsecutiveGoodOrEasy)
	}
}

func TestComputeNext_IntervalAlwaysWithinBounds(t *testing.T) {
	t.Parallel()
	calc := newTestCalculator(t)

	states := []*domain.ReviewState{
		nil,
		reviewedState(0.1, 10, 1, 0),
		reviewedState(3, 5, 3, 1),
		reviewedState(20, 5, 20, 2),
		reviewedState(100, 2, 40, 5),
		reviewedState(900, 1, 60, 9),
	}
	modes := []domain.StudyMode{
		domain.StudyModeCramming, domain.StudyModeIntensive,
		domain.StudyModeBalanced, domain.StudyModeRelaxed,
	}

	for _, mode := range modes {
		cfg := modeConfig(mode)
		for i, s := range states {
			for _, g := range domain.ReviewGrades() {
				got := calc.ComputeNext(testUser, testRef, s, g, testNow, cfg)
				if got.ScheduledIntervalDays < 1 || got.ScheduledIntervalDays > mode.MaxIntervalDays() {
					t.Errorf("%s state#%d %s: interval %d outside [1, %d]",
						mode, i, g, got.ScheduledIntervalDays, mode.MaxIntervalDays())
				}
				if got.DueAt.Before(testNow) {
					t.Errorf("%s state#%d %s: dueAt %v before review", mode, i, g, got.DueAt)
				}
			}
		}
	}
}

func TestComputeNext_Streak(t *testing.T) {
	t.Parallel()
	calc := newTestCalculator(t)
	cfg := modeConfig(domain.StudyModeBalanced)
	cur := reviewedState(10, 5, 10, 2)

	tests := []struct {
		grade domain.ReviewGrade
		want  int
	}{
		{domain.ReviewGradeAgain, 0},
		{domain.ReviewGradeHard, 0},
		{domain.ReviewGradeGood, 3},
		{domain.ReviewGradeEasy, 3},
	}

	for _, tt := range tests {
		got := calc.ComputeNext(testUser, testRef, cur, tt.grade, testNow, cfg)
		if got.ConsecutiveGoodOrEasy != tt.want {
			t.Errorf("%s: streak = %d, want %d", tt.grade, got.ConsecutiveGoodOrEasy, tt.want)
		}
		if got.TotalReviews != cur.TotalReviews+1 {
			t.Errorf("%s: totalReviews = %d, want %d", tt.grade, got.TotalReviews, cur.TotalReviews+1)
		}
		if !got.CreatedAt.Equal(cur.CreatedAt) {
			t.Errorf("%s: createdAt changed", tt.grade)
		}
	}
}

func TestComputeNext_AgainIsLapse(t *testing.T) {
	t.Parallel()
	calc := newTestCalculator(t)
	cur := reviewedState(20, 5, 20, 4)

	got := calc.ComputeNext(testUser, testRef, cur, domain.ReviewGradeAgain, testNow, modeConfig(domain.StudyModeBalanced))

	if got.ScheduledIntervalDays != 1 {
		t.Errorf("interval = %d, want 1", got.ScheduledIntervalDays)
	}
	if got.Lapses != cur.Lapses+1 {
		t.Errorf("lapses = %d, want %d", got.Lapses, cur.Lapses+1)
	}
	if got.Stability >= cur.Stability {
		t.Errorf("stability should drop on lapse: %f -> %f", cur.Stability, got.Stability)
	}
	if got.Difficulty <= cur.Difficulty {
		t.Errorf("difficulty should rise on lapse: %f -> %f", cur.Difficulty, got.Difficulty)
	}
}

func TestComputeNext_HardModestlyLarger(t *testing.T) {
	t.Parallel()
	calc := newTestCalculator(t)
	cfg := modeConfig(domain.StudyModeRelaxed)

	for _, prev := range []int{1, 4, 10, 20} {
		cur := reviewedState(float64(prev), 5, prev, 1)
		got := calc.ComputeNext(testUser, testRef, cur, domain.ReviewGradeHard, testNow, cfg)
		upper := max(prev+1, (prev*3+1)/2)
		if got.ScheduledIntervalDays < prev+1 || got.ScheduledIntervalDays > upper {
			t.Errorf("prev=%d: HARD interval %d, want within [%d, %d]", prev, got.ScheduledIntervalDays, prev+1, upper)
		}
	}
}

func TestComputeNext_RecallOrdering(t *testing.T) {
	t.Parallel()
	calc := newTestCalculator(t)
	override := 3650
	cfg := modeConfig(domain.StudyModeBalanced)
	cfg.MaxIntervalOverride = &override

	testCases := []struct {
		name       string
		stability  float64
		difficulty float64
	}{
		{"low S low D", 5, 3},
		{"medium S medium D", 20, 5},
		{"high S high D", 100, 8},
		{"low S high D", 5, 9},
		{"high S low D", 100, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cur := reviewedState(tc.stability, tc.difficulty, int(tc.stability), 1)

			hard := calc.ComputeNext(testUser, testRef, cur, domain.ReviewGradeHard, testNow, cfg)
			good := calc.ComputeNext(testUser, testRef, cur, domain.ReviewGradeGood, testNow, cfg)
			easy := calc.ComputeNext(testUser, testRef, cur, domain.ReviewGradeEasy, testNow, cfg)

			if hard.ScheduledIntervalDays > good.ScheduledIntervalDays {
				t.Errorf("Hard (%d) > Good (%d)", hard.ScheduledIntervalDays, good.ScheduledIntervalDays)
			}
			if good.ScheduledIntervalDays >= easy.ScheduledIntervalDays {
				t.Errorf("Good (%d) >= Easy (%d)", good.ScheduledIntervalDays, easy.ScheduledIntervalDays)
			}
			if easy.Difficulty >= tc.difficulty && tc.difficulty > 1 {
				t.Errorf("EASY should lower difficulty: %f -> %f", tc.difficulty, easy.Difficulty)
			}
		})
	}
}

func TestComputeNext_MaxIntervalOverride(t *testing.T) {
	t.Parallel()
	calc := newTestCalculator(t)
	override := 10
	cfg := modeConfig(domain.StudyModeRelaxed)
	cfg.MaxIntervalOverride = &override

	got := calc.ComputeNext(testUser, testRef, nil, domain.ReviewGradeEasy, testNow, cfg)
	if got.ScheduledIntervalDays != 10 {
		t.Errorf("interval = %d, want 10", got.ScheduledIntervalDays)
	}
}

func TestComputeNext_ExamCompression(t *testing.T) {
	t.Parallel()
	calc := newTestCalculator(t)

	tests := []struct {
		name     string
		exam     time.Time
		wantDays int
	}{
		{"five days away", testNow.Add(5 * day), 5},
		{"five and a half days away", testNow.Add(5*day + 12*time.Hour), 5},
		{"six hours away floors at one", testNow.Add(6 * time.Hour), 1},
		{"far away keeps raw", testNow.Add(200 * day), 25},
		{"already passed keeps raw", testNow.Add(-2 * day), 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := modeConfig(domain.StudyModeBalanced)
			exam := tt.exam
			cfg.ExamDate = &exam

			got := calc.ComputeNext(testUser, testRef, nil, domain.ReviewGradeEasy, testNow, cfg)
			if got.ScheduledIntervalDays != tt.wantDays {
				t.Errorf("interval = %d, want %d", got.ScheduledIntervalDays, tt.wantDays)
			}
		})
	}
}

func TestComputeNext_ExamCompressionIsProspective(t *testing.T) {
	t.Parallel()
	calc := newTestCalculator(t)

	// State scheduled 30 days out before any exam date existed.
	cur := reviewedState(30, 5, 30, 2)
	cur.DueAt = testNow.Add(30 * day)

	cfg := modeConfig(domain.StudyModeRelaxed)
	exam := testNow.Add(5 * day)
	cfg.ExamDate = &exam

	got := calc.ComputeNext(testUser, testRef, cur, domain.ReviewGradeGood, testNow, cfg)
	if got.ScheduledIntervalDays > 5 {
		t.Errorf("new interval = %d, want <= 5", got.ScheduledIntervalDays)
	}
	if !cur.DueAt.Equal(testNow.Add(30 * day)) {
		t.Error("existing state was modified")
	}
}

func TestCompressForExam(t *testing.T) {
	t.Parallel()

	exam := testNow.Add(5 * day)
	if got := CompressForExam(10, &exam, testNow); got != 5 {
		t.Errorf("CompressForExam(10) = %d, want 5", got)
	}
	if got := CompressForExam(3, &exam, testNow); got != 3 {
		t.Errorf("CompressForExam(3) = %d, want 3", got)
	}
	if got := CompressForExam(10, nil, testNow); got != 10 {
		t.Errorf("CompressForExam(nil exam) = %d, want 10", got)
	}
}

func TestPolicy_InvalidParameters(t *testing.T) {
	t.Parallel()

	params := DefaultParameters()
	params.SeedIntervals[domain.ReviewGradeHard] = 0
	if _, err := NewPolicy(params); err == nil {
		t.Error("expected error for zero seed interval")
	}
}
