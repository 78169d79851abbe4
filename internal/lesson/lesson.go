package lesson

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jmemorize/jmemorize/internal/history"
)

// Lesson owns a root category tree and the learn history of its cards. It
// observes its own category tree to track whether there are unsaved
// changes.
type Lesson struct {
	path    string
	dirty   bool
	root    *Category
	history *history.History
}

// New creates a lesson with an empty root category named "All".
func New() *Lesson {
	return NewWithRoot(NewCategory("All"))
}

// NewWithRoot creates a lesson around an existing root category.
func NewWithRoot(root *Category) *Lesson {
	l := &Lesson{
		root:    root,
		history: history.New(),
	}
	root.AddObserver(l)
	return l
}

// Path returns the file path this lesson was loaded from or saved to.
// Empty for a lesson that never touched disk.
func (l *Lesson) Path() string {
	return l.path
}

// SetPath records the lesson's file path.
func (l *Lesson) SetPath(path string) {
	l.path = path
}

// Name returns a human readable name for the lesson, derived from its file
// name when it has one.
func (l *Lesson) Name() string {
	if l.path != "" {
		base := filepath.Base(l.path)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return l.root.Name()
}

// RootCategory returns the root of the category tree.
func (l *Lesson) RootCategory() *Category {
	return l.root
}

// History returns the lesson's learn history.
func (l *Lesson) History() *history.History {
	return l.history
}

// CanSave reports whether the lesson has been modified since it was last
// saved or loaded.
func (l *Lesson) CanSave() bool {
	return l.dirty
}

// MarkSaved clears the modified flag. Called by persistence after a
// successful save or load.
func (l *Lesson) MarkSaved() {
	l.dirty = false
}

// OnCardEvent implements CategoryObserver. Every card change except a pure
// expiration marks the lesson as needing a save.
func (l *Lesson) OnCardEvent(event CardEvent) {
	if event.Kind == CardExpired {
		return
	}
	l.dirty = true
}

// OnCategoryEvent implements CategoryObserver.
func (l *Lesson) OnCategoryEvent(event CategoryEvent) {
	l.dirty = true
}

// CloneWithoutProgress returns a copy of this lesson with all cards reset
// to have no learn statistics and an empty history.
func (l *Lesson) CloneWithoutProgress() *Lesson {
	return NewWithRoot(l.root.CloneWithoutProgress())
}

func (l *Lesson) String() string {
	return fmt.Sprintf("Lesson(%s)", l.Name())
}
