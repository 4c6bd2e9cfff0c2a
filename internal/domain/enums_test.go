package domain

import (
	"errors"
	"testing"
)

func TestContentType_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ct   ContentType
		want bool
	}{
		{ContentTypeFlashcard, true},
		{ContentTypeQuestion, true},
		{ContentTypeErrorNotebook, true},
		{ContentType("NOTE"), false},
		{ContentType(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.ct), func(t *testing.T) {
			t.Parallel()
			if got := tt.ct.IsValid(); got != tt.want {
				t.Errorf("ContentType(%q).IsValid() = %v, want %v", tt.ct, got, tt.want)
			}
		})
	}
}

func TestReviewGrade_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		grade ReviewGrade
		want  bool
	}{
		{ReviewGradeAgain, true},
		{ReviewGradeHard, true},
		{ReviewGradeGood, true},
		{ReviewGradeEasy, true},
		{ReviewGrade(-1), false},
		{ReviewGrade(4), false},
	}
	for _, tt := range tests {
		t.Run(tt.grade.String(), func(t *testing.T) {
			t.Parallel()
			if got := tt.grade.IsValid(); got != tt.want {
				t.Errorf("ReviewGrade(%d).IsValid() = %v, want %v", int(tt.grade), got, tt.want)
			}
		})
	}
}

func TestReviewGrade_StringAndLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		grade ReviewGrade
		name  string
		label string
	}{
		{ReviewGradeAgain, "AGAIN", "Again"},
		{ReviewGradeHard, "HARD", "Hard"},
		{ReviewGradeGood, "GOOD", "Good"},
		{ReviewGradeEasy, "EASY", "Easy"},
		{ReviewGrade(7), "ReviewGrade(7)", ""},
	}
	for _, tt := range tests {
		if got := tt.grade.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
		if got := tt.grade.Label(); got != tt.label {
			t.Errorf("Label() = %q, want %q", got, tt.label)
		}
	}
}

func TestReviewGrade_IsGoodOrEasy(t *testing.T) {
	t.Parallel()

	want := map[ReviewGrade]bool{
		ReviewGradeAgain: false,
		ReviewGradeHard:  false,
		ReviewGradeGood:  true,
		ReviewGradeEasy:  true,
	}
	for g, w := range want {
		if got := g.IsGoodOrEasy(); got != w {
			t.Errorf("%s.IsGoodOrEasy() = %v, want %v", g, got, w)
		}
	}
}

func TestParseReviewGrade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    ReviewGrade
		wantErr bool
	}{
		{"GOOD", ReviewGradeGood, false},
		{"easy", ReviewGradeEasy, false},
		{" 0 ", ReviewGradeAgain, false},
		{"1", ReviewGradeHard, false},
		{"4", 0, true},
		{"meh", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseReviewGrade(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidGrade) {
				t.Errorf("ParseReviewGrade(%q) error = %v, want ErrInvalidGrade", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseReviewGrade(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseReviewGrade(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestStudyMode_Bounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode      StudyMode
		maxDays   int
		retention float64
	}{
		{StudyModeCramming, 15, 0.95},
		{StudyModeIntensive, 30, 0.90},
		{StudyModeBalanced, 40, 0.85},
		{StudyModeRelaxed, 60, 0.80},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			t.Parallel()
			if !tt.mode.IsValid() {
				t.Fatalf("%s should be valid", tt.mode)
			}
			if got := tt.mode.MaxIntervalDays(); got != tt.maxDays {
				t.Errorf("MaxIntervalDays() = %d, want %d", got, tt.maxDays)
			}
			if got := tt.mode.TargetRetention(); got != tt.retention {
				t.Errorf("TargetRetention() = %v, want %v", got, tt.retention)
			}
		})
	}

	if StudyMode("LAZY").IsValid() {
		t.Error("unknown mode should be invalid")
	}
}
