// Package testutil provides shared test helpers for creating config files
// and lesson fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jmemorize/jmemorize/internal/lesson"
)

// SetupTestConfig creates a minimal config file and the lessons directory
// for testing. Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	lessonsDir := filepath.Join(tmpDir, "lessons")
	require.NoError(t, os.MkdirAll(lessonsDir, 0755))

	configContent := fmt.Sprintf(`lessons:
  directory: %s
  default_lesson: default
learn:
  retest_failed_cards: true
  shuffle_ratio: 0.0
  sides: normal
  schedule:
    preset: linear
`, lessonsDir)

	configPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
	return configPath
}

// NewTestLesson creates a lesson with one child category holding the given
// number of fresh cards.
func NewTestLesson(t *testing.T, categoryName string, cardCount int) *lesson.Lesson {
	t.Helper()

	l := lesson.New()
	category := lesson.NewCategory(categoryName)
	l.RootCategory().AddChild(category)
	for i := 0; i < cardCount; i++ {
		category.AddCard(NewTestCard(t, i))
	}
	return l
}

// NewTestCard creates a card with deterministic content and creation date.
func NewTestCard(t *testing.T, n int) *lesson.Card {
	t.Helper()

	created := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Minute)
	return lesson.NewCardAt(created, fmt.Sprintf("front %d", n), fmt.Sprintf("back %d", n))
}
