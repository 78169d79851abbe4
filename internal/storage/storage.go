// Package storage persists lessons as YAML files.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/jmemorize/jmemorize/internal/history"
	"github.com/jmemorize/jmemorize/internal/lesson"
)

const fileVersion = 1

// SaveLesson writes the lesson to its path. The file is written to a
// temporary sibling first and renamed into place, so a crash mid-write
// never corrupts an existing lesson file.
func SaveLesson(l *lesson.Lesson) error {
	if l.Path() == "" {
		return fmt.Errorf("lesson has no path")
	}
	if err := SaveLessonAs(l, l.Path()); err != nil {
		return err
	}
	l.MarkSaved()
	return nil
}

// SaveLessonAs writes the lesson to the given path without changing the
// lesson's modified state.
func SaveLessonAs(l *lesson.Lesson, path string) error {
	doc := encodeLesson(l)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll() > %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("os.CreateTemp() > %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	enc := yaml.NewEncoder(tmp)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("yaml.NewEncoder().Encode() > %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("yaml.Encoder.Close() > %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tmp.Close() > %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("os.Rename() > %w", err)
	}
	return nil
}

// LoadLesson reads a lesson file from disk. The returned lesson is clean,
// has its path set and restores every card with its original identifier.
func LoadLesson(path string) (*lesson.Lesson, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open() > %w", err)
	}
	defer func() { _ = file.Close() }()

	var doc lessonDocument
	if err := yaml.NewDecoder(file).Decode(&doc); err != nil {
		return nil, fmt.Errorf("yaml.NewDecoder().Decode() > %w", err)
	}
	if doc.Version != fileVersion {
		return nil, fmt.Errorf("unsupported lesson file version %d", doc.Version)
	}

	root, err := decodeCategory(doc.Root)
	if err != nil {
		return nil, fmt.Errorf("decodeCategory() > %w", err)
	}

	l := lesson.NewWithRoot(root)
	l.SetPath(path)
	for _, s := range doc.History {
		l.History().AddSummary(s)
	}
	l.MarkSaved()
	return l, nil
}

type lessonDocument struct {
	Version int                      `yaml:"version"`
	Root    categoryNode             `yaml:"root"`
	History []history.SessionSummary `yaml:"history,omitempty"`
}

type categoryNode struct {
	Name     string         `yaml:"name"`
	Cards    []cardNode     `yaml:"cards,omitempty"`
	Children []categoryNode `yaml:"children,omitempty"`
}

type cardNode struct {
	ID                 string     `yaml:"id"`
	Front              string     `yaml:"front"`
	Back               string     `yaml:"back"`
	FrontImages        []string   `yaml:"front_images,omitempty"`
	BackImages         []string   `yaml:"back_images,omitempty"`
	Level              int        `yaml:"level"`
	DateCreated        time.Time  `yaml:"date_created"`
	DateModified       time.Time  `yaml:"date_modified"`
	DateTouched        time.Time  `yaml:"date_touched"`
	DateTested         *time.Time `yaml:"date_tested,omitempty"`
	DateExpired        *time.Time `yaml:"date_expired,omitempty"`
	TestsTotal         int        `yaml:"tests_total"`
	TestsPassed        int        `yaml:"tests_passed"`
	TimesSkipped       int        `yaml:"times_skipped,omitempty"`
	FrontLearnedAmount int        `yaml:"front_learned_amount,omitempty"`
	BackLearnedAmount  int        `yaml:"back_learned_amount,omitempty"`
}

func encodeLesson(l *lesson.Lesson) lessonDocument {
	return lessonDocument{
		Version: fileVersion,
		Root:    encodeCategory(l.RootCategory()),
		History: l.History().Summaries(),
	}
}

func encodeCategory(category *lesson.Category) categoryNode {
	node := categoryNode{Name: category.Name()}
	for _, card := range category.LocalCards() {
		node.Cards = append(node.Cards, encodeCard(card))
	}
	for _, child := range category.Children() {
		node.Children = append(node.Children, encodeCategory(child))
	}
	return node
}

func encodeCard(card *lesson.Card) cardNode {
	return cardNode{
		ID:                 card.ID().String(),
		Front:              card.Front().Text(),
		Back:               card.Back().Text(),
		FrontImages:        card.Front().Images(),
		BackImages:         card.Back().Images(),
		Level:              card.Level(),
		DateCreated:        card.DateCreated(),
		DateModified:       card.DateModified(),
		DateTouched:        card.DateTouched(),
		DateTested:         card.DateTested(),
		DateExpired:        card.DateExpired(),
		TestsTotal:         card.TestsTotal(),
		TestsPassed:        card.TestsPassed(),
		TimesSkipped:       card.TimesSkipped(),
		FrontLearnedAmount: card.LearnedAmount(true),
		BackLearnedAmount:  card.LearnedAmount(false),
	}
}

func decodeCategory(node categoryNode) (*lesson.Category, error) {
	category := lesson.NewCategory(node.Name)
	for _, cn := range node.Cards {
		card, err := decodeCard(cn)
		if err != nil {
			return nil, fmt.Errorf("decodeCard(%s) > %w", cn.ID, err)
		}
		category.AddCardAtLevel(card, cn.Level)
	}
	for _, child := range node.Children {
		decoded, err := decodeCategory(child)
		if err != nil {
			return nil, err
		}
		category.AddChild(decoded)
	}
	return category, nil
}

func decodeCard(node cardNode) (*lesson.Card, error) {
	id, err := uuid.Parse(node.ID)
	if err != nil {
		return nil, fmt.Errorf("uuid.Parse() > %w", err)
	}

	card := lesson.RestoreCard(id, node.DateCreated, node.Front, node.Back)
	card.SetDateModified(node.DateModified)
	if node.DateTested != nil {
		card.SetDateTested(*node.DateTested)
	}
	// SetDateTested touches the card, so the touch date is restored last.
	card.SetDateTouched(node.DateTouched)
	card.SetDateExpired(node.DateExpired)
	card.IncStats(node.TestsPassed, node.TestsTotal)
	card.SetTimesSkipped(node.TimesSkipped)
	card.SetLearnedAmount(true, node.FrontLearnedAmount)
	card.SetLearnedAmount(false, node.BackLearnedAmount)
	card.Front().SetImages(node.FrontImages)
	card.Back().SetImages(node.BackImages)
	return card, nil
}
