package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
)

func TestReviewInterval(t *testing.T) {
	s := config.DefaultSettings()

	want := []int{1, 3, 7, 14, 30, 30, 30}
	for i, days := range want {
		got := s.ReviewInterval(i + 1)
		assert.Equal(t, time.Duration(days)*24*time.Hour, got, "wrong_count=%d", i+1)
	}
}

func TestLoadSettings(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		s, err := config.LoadSettings()
		require.NoError(t, err)
		assert.Equal(t, 0.3, s.MasteryAlpha)
		assert.Equal(t, []int{1, 3, 7, 14, 30}, s.ReviewIntervals)
		assert.Equal(t, 15, s.ReviewItemMinutes)
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("ENGINE_MASTERY_ALPHA", "0.5")
		t.Setenv("ENGINE_REVIEW_INTERVALS", "2, 4, 8")
		t.Setenv("ENGINE_TIMEZONE", "UTC")

		s, err := config.LoadSettings()
		require.NoError(t, err)
		assert.Equal(t, 0.5, s.MasteryAlpha)
		assert.Equal(t, []int{2, 4, 8}, s.ReviewIntervals)
		assert.Equal(t, time.UTC, s.Location)
	})

	t.Run("RejectsBadAlpha", func(t *testing.T) {
		t.Setenv("ENGINE_MASTERY_ALPHA", "1.7")
		_, err := config.LoadSettings()
		assert.Error(t, err)
	})

	t.Run("RejectsShrinkingIntervals", func(t *testing.T) {
		t.Setenv("ENGINE_REVIEW_INTERVALS", "7,3")
		_, err := config.LoadSettings()
		assert.Error(t, err)
	})
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	s := config.DefaultSettings()
	s.Clock = &config.FixedClock{T: at}
	assert.Equal(t, at, s.Now())
}
