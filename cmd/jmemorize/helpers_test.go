package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmemorize/jmemorize/internal/config"
	"github.com/jmemorize/jmemorize/internal/lesson"
	"github.com/jmemorize/jmemorize/internal/testutil"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := testutil.SetupTestConfig(t, tmpDir)
	oldConfigFile := configFile
	configFile = cfgPath
	defer func() { configFile = oldConfigFile }()

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "lessons"), cfg.Lessons.Directory)
	assert.Equal(t, "default", cfg.Lessons.DefaultLesson)
}

func TestLessonPath(t *testing.T) {
	cfg := &config.Config{
		Lessons: config.LessonsConfig{
			Directory:     "lessons",
			DefaultLesson: "default",
		},
	}

	tests := []struct {
		name    string
		lesson  string
		want    string
		wantErr bool
	}{
		{
			name:   "bare name joins the lessons directory",
			lesson: "biology",
			want:   filepath.Join("lessons", "biology.yml"),
		},
		{
			name:   "name with extension keeps it",
			lesson: "biology.yml",
			want:   filepath.Join("lessons", "biology.yml"),
		},
		{
			name:   "explicit path is used as is",
			lesson: filepath.Join("elsewhere", "cards.yml"),
			want:   filepath.Join("elsewhere", "cards.yml"),
		},
		{
			name:   "empty name falls back to the default lesson",
			lesson: "",
			want:   filepath.Join("lessons", "default.yml"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lessonPath(cfg, tt.lesson)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("no name and no default is an error", func(t *testing.T) {
		_, err := lessonPath(&config.Config{}, "")
		assert.Error(t, err)
	})
}

func TestFindCategory(t *testing.T) {
	l := lesson.New()
	biology := lesson.NewCategory("Biology")
	botany := lesson.NewCategory("Botany")
	l.RootCategory().AddChild(biology)
	biology.AddChild(botany)

	tests := []struct {
		name     string
		path     string
		wantPath string
		wantErr  bool
	}{
		{name: "empty path is the root", path: "", wantPath: "All"},
		{name: "direct child", path: "Biology", wantPath: "All/Biology"},
		{name: "nested path", path: "Biology/Botany", wantPath: "All/Biology/Botany"},
		{name: "path including the root name", path: "All/Biology", wantPath: "All/Biology"},
		{name: "unknown category", path: "Chemistry", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := findCategory(l, tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, got.Path())
		})
	}
}
