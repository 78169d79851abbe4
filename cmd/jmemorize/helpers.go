package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jmemorize/jmemorize/internal/config"
	"github.com/jmemorize/jmemorize/internal/lesson"
	"github.com/jmemorize/jmemorize/internal/storage"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// lessonPath resolves a lesson name or path against the configured lessons
// directory. A name without extension gets the .yml suffix appended.
func lessonPath(cfg *config.Config, name string) (string, error) {
	if name == "" {
		name = cfg.Lessons.DefaultLesson
	}
	if name == "" {
		return "", fmt.Errorf("no lesson given and no default lesson configured")
	}

	if filepath.Ext(name) == "" {
		name += ".yml"
	}
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		return name, nil
	}
	return filepath.Join(cfg.Lessons.Directory, name), nil
}

func loadLesson(cfg *config.Config, name string) (*lesson.Lesson, error) {
	path, err := lessonPath(cfg, name)
	if err != nil {
		return nil, err
	}

	l, err := storage.LoadLesson(path)
	if err != nil {
		return nil, fmt.Errorf("storage.LoadLesson(%s) > %w", path, err)
	}
	return l, nil
}

// findCategory resolves a category by path within the lesson, for example
// "All/Biology". An empty path means the root category.
func findCategory(l *lesson.Lesson, path string) (*lesson.Category, error) {
	if path == "" {
		return l.RootCategory(), nil
	}

	category := l.RootCategory()
	parts := strings.Split(path, "/")
	if parts[0] == category.Name() {
		parts = parts[1:]
	}
	for _, part := range parts {
		var next *lesson.Category
		for _, child := range category.Children() {
			if child.Name() == part {
				next = child
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("category %q not found in %q", part, category.Path())
		}
		category = next
	}
	return category, nil
}
