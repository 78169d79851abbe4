package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmemorize/jmemorize/internal/storage"
	"github.com/jmemorize/jmemorize/internal/testutil"
)

func setupCommandConfig(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	cfgPath := testutil.SetupTestConfig(t, tmpDir)
	oldConfigFile := configFile
	configFile = cfgPath
	t.Cleanup(func() { configFile = oldConfigFile })
	return tmpDir
}

func TestLessonCreateCommand(t *testing.T) {
	tmpDir := setupCommandConfig(t)

	cmd := newLessonCreateCommand()
	cmd.SetArgs([]string{"biology"})
	require.NoError(t, cmd.Execute())

	path := filepath.Join(tmpDir, "lessons", "biology.yml")
	_, err := os.Stat(path)
	require.NoError(t, err)

	l, err := storage.LoadLesson(path)
	require.NoError(t, err)
	assert.Equal(t, "biology", l.Name())
	assert.Empty(t, l.RootCategory().Cards())

	t.Run("requires a name argument", func(t *testing.T) {
		cmd := newLessonCreateCommand()
		cmd.SetArgs([]string{})
		assert.Error(t, cmd.Execute())
	})
}

func TestLessonAddCommand(t *testing.T) {
	tmpDir := setupCommandConfig(t)

	createCmd := newLessonCreateCommand()
	createCmd.SetArgs([]string{"biology"})
	require.NoError(t, createCmd.Execute())

	cmd := newLessonAddCommand()
	cmd.SetArgs([]string{"-l", "biology", "photosynthesis", "Fotosynthese"})
	require.NoError(t, cmd.Execute())

	path := filepath.Join(tmpDir, "lessons", "biology.yml")
	l, err := storage.LoadLesson(path)
	require.NoError(t, err)
	cards := l.RootCategory().Cards()
	require.Len(t, cards, 1)
	assert.Equal(t, "photosynthesis", cards[0].Front().Text())
	assert.Equal(t, "Fotosynthese", cards[0].Back().Text())

	t.Run("rejects a duplicate card", func(t *testing.T) {
		cmd := newLessonAddCommand()
		cmd.SetArgs([]string{"-l", "biology", "photosynthesis", "Fotosynthese"})
		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("fails for an unknown category", func(t *testing.T) {
		cmd := newLessonAddCommand()
		cmd.SetArgs([]string{"-l", "biology", "-c", "Chemistry", "atom", "Atom"})
		assert.Error(t, cmd.Execute())
	})
}

func TestLessonInfoCommand(t *testing.T) {
	setupCommandConfig(t)

	createCmd := newLessonCreateCommand()
	createCmd.SetArgs([]string{"biology"})
	require.NoError(t, createCmd.Execute())

	cmd := newLessonInfoCommand()
	cmd.SetArgs([]string{"-l", "biology"})
	assert.NoError(t, cmd.Execute())

	t.Run("fails for a missing lesson", func(t *testing.T) {
		cmd := newLessonInfoCommand()
		cmd.SetArgs([]string{"-l", "missing"})
		assert.Error(t, cmd.Execute())
	})
}
