package learn

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmemorize/jmemorize/internal/lesson"
)

type sessionRecorder struct {
	started []*Session
	ended   []*Session
}

func (r *sessionRecorder) SessionStarted(session *Session) {
	r.started = append(r.started, session)
}

func (r *sessionRecorder) SessionEnded(session *Session) {
	r.ended = append(r.ended, session)
}

func TestProvider_StartSession(t *testing.T) {
	t.Run("notifies observers before the first card is drawn", func(t *testing.T) {
		l := lesson.New()
		l.RootCategory().AddCard(lesson.NewCard("question", "answer"))

		provider := NewProvider(l)
		recorder := &sessionRecorder{}
		provider.AddSessionObserver(recorder)

		session, err := provider.StartSession(NewSettings(), nil, nil, true, true)
		require.NoError(t, err)

		require.Len(t, recorder.started, 1)
		assert.Same(t, session, recorder.started[0])
		assert.Equal(t, StateRunning, session.State())
		assert.True(t, provider.IsSessionRunning())

		session.End()
		require.Len(t, recorder.ended, 1)
		assert.False(t, provider.IsSessionRunning())
	})

	t.Run("rejects invalid settings", func(t *testing.T) {
		provider := NewProvider(lesson.New())

		settings := NewSettings()
		settings.ShuffleRatio = 2.0

		_, err := provider.StartSession(settings, nil, nil, true, true)
		assert.Error(t, err)
	})

	t.Run("requires an open lesson", func(t *testing.T) {
		provider := &Provider{}

		_, err := provider.StartSession(NewSettings(), nil, nil, true, true)
		assert.Error(t, err)
	})
}

func TestProvider_SessionHistory(t *testing.T) {
	t.Run("relevant session is recorded in the lesson history", func(t *testing.T) {
		l := lesson.New()
		l.RootCategory().AddCard(lesson.NewCard("question", "answer"))

		provider := NewProvider(l)
		session, err := provider.StartSession(NewSettings(), nil, nil, true, true)
		require.NoError(t, err)

		session.CardChecked(true, false)
		require.Equal(t, StateEnded, session.State())

		summaries := l.History().Summaries()
		require.Len(t, summaries, 1)
		assert.Equal(t, 1, summaries[0].Passed)
		assert.Equal(t, 0, summaries[0].Failed)
	})

	t.Run("session without grades is not recorded", func(t *testing.T) {
		l := lesson.New()
		l.RootCategory().AddCard(lesson.NewCard("question", "answer"))

		provider := NewProvider(l)
		session, err := provider.StartSession(NewSettings(), nil, nil, true, true)
		require.NoError(t, err)

		session.End()

		assert.Empty(t, l.History().Summaries())
	})
}

func TestProvider_SetLesson(t *testing.T) {
	recorder := &lessonRecorder{}

	first := lesson.New()
	provider := NewProvider(first)
	provider.AddLessonObserver(recorder)

	second := lesson.New()
	provider.SetLesson(second)

	require.Len(t, recorder.events, 2)
	assert.Equal(t, lessonRecorderEvent{kind: "closed", l: first}, recorder.events[0])
	assert.Equal(t, lessonRecorderEvent{kind: "loaded", l: second}, recorder.events[1])
	assert.Same(t, second, provider.Lesson())
}

func TestProvider_SaveLesson(t *testing.T) {
	t.Run("persists the lesson and notifies observers", func(t *testing.T) {
		l := lesson.New()
		l.RootCategory().AddCard(lesson.NewCard("question", "answer"))
		l.SetPath(filepath.Join(t.TempDir(), "cards.yml"))
		require.True(t, l.CanSave())

		provider := NewProvider(l)
		recorder := &lessonRecorder{}
		provider.AddLessonObserver(recorder)

		require.NoError(t, provider.SaveLesson())

		assert.False(t, l.CanSave())
		_, err := os.Stat(l.Path())
		assert.NoError(t, err)
		require.Len(t, recorder.events, 1)
		assert.Equal(t, lessonRecorderEvent{kind: "saved", l: l}, recorder.events[0])
	})

	t.Run("requires an open lesson", func(t *testing.T) {
		provider := &Provider{}

		assert.Error(t, provider.SaveLesson())
	})

	t.Run("failed save does not notify", func(t *testing.T) {
		provider := NewProvider(lesson.New())
		recorder := &lessonRecorder{}
		provider.AddLessonObserver(recorder)

		require.Error(t, provider.SaveLesson())
		assert.Empty(t, recorder.events)
	})
}

func TestProvider_ExpireCards(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	l := lesson.New()
	card := lesson.NewCardAt(now.Add(-48*time.Hour), "question", "answer")
	l.RootCategory().AddCardAtLevel(card, 1)
	dueAt := now.Add(-time.Hour)
	card.SetDateExpired(&dueAt)
	l.MarkSaved()

	provider := NewProvider(l)

	due := provider.ExpireCards(now)
	require.Len(t, due, 1)
	assert.Equal(t, card.ID(), due[0].ID())
	assert.False(t, l.CanSave())

	t.Run("second sweep reports nothing new", func(t *testing.T) {
		assert.Empty(t, provider.ExpireCards(now.Add(time.Minute)))
	})

	t.Run("opening another lesson resets the sweep window", func(t *testing.T) {
		provider.SetLesson(l)

		assert.Len(t, provider.ExpireCards(now), 1)
	})
}

type lessonRecorderEvent struct {
	kind string
	l    *lesson.Lesson
}

type lessonRecorder struct {
	events []lessonRecorderEvent
}

func (r *lessonRecorder) LessonLoaded(l *lesson.Lesson) {
	r.events = append(r.events, lessonRecorderEvent{kind: "loaded", l: l})
}

func (r *lessonRecorder) LessonClosed(l *lesson.Lesson) {
	r.events = append(r.events, lessonRecorderEvent{kind: "closed", l: l})
}

func (r *lessonRecorder) LessonModified(l *lesson.Lesson) {
	r.events = append(r.events, lessonRecorderEvent{kind: "modified", l: l})
}

func (r *lessonRecorder) LessonSaved(l *lesson.Lesson) {
	r.events = append(r.events, lessonRecorderEvent{kind: "saved", l: l})
}
