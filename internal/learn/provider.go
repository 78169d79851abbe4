package learn

import (
	"fmt"
	"time"

	"github.com/jmemorize/jmemorize/internal/history"
	"github.com/jmemorize/jmemorize/internal/lesson"
	"github.com/jmemorize/jmemorize/internal/storage"
)

// SessionObserver is notified of session lifecycle transitions.
// SessionStarted fires before the session draws its first card, so the
// observer can attach a CardObserver without missing it.
type SessionObserver interface {
	SessionStarted(session *Session)
	SessionEnded(session *Session)
}

// Provider owns the currently open lesson and creates learn sessions for
// it. Hosts construct one provider per application instead of sharing
// global state.
type Provider struct {
	lesson *lesson.Lesson

	lessonObservers  []lesson.Observer
	sessionObservers []SessionObserver

	running         int
	lastExpireSweep time.Time
}

// NewProvider creates a provider around the given lesson.
func NewProvider(l *lesson.Lesson) *Provider {
	p := &Provider{}
	p.SetLesson(l)
	return p
}

// Lesson returns the currently open lesson.
func (p *Provider) Lesson() *lesson.Lesson {
	return p.lesson
}

// SetLesson replaces the open lesson, notifying lesson observers that the
// previous one closed and the new one loaded.
func (p *Provider) SetLesson(l *lesson.Lesson) {
	if p.lesson != nil {
		p.lesson.RootCategory().RemoveObserver(p)
		for _, o := range p.lessonObservers {
			o.LessonClosed(p.lesson)
		}
	}

	p.lesson = l
	p.lastExpireSweep = time.Time{}
	if l == nil {
		return
	}

	l.RootCategory().AddObserver(p)
	for _, o := range p.lessonObservers {
		o.LessonLoaded(l)
	}
}

// NewLesson opens a fresh empty lesson.
func (p *Provider) NewLesson() *lesson.Lesson {
	l := lesson.New()
	p.SetLesson(l)
	return l
}

// AddLessonObserver registers an observer for lesson lifecycle events.
func (p *Provider) AddLessonObserver(observer lesson.Observer) {
	p.lessonObservers = append(p.lessonObservers, observer)
}

// RemoveLessonObserver unregisters a lesson observer.
func (p *Provider) RemoveLessonObserver(observer lesson.Observer) {
	for i, o := range p.lessonObservers {
		if o == observer {
			p.lessonObservers = append(p.lessonObservers[:i], p.lessonObservers[i+1:]...)
			return
		}
	}
}

// AddSessionObserver registers an observer for session lifecycle events.
func (p *Provider) AddSessionObserver(observer SessionObserver) {
	p.sessionObservers = append(p.sessionObservers, observer)
}

// RemoveSessionObserver unregisters a session observer.
func (p *Provider) RemoveSessionObserver(observer SessionObserver) {
	for i, o := range p.sessionObservers {
		if o == observer {
			p.sessionObservers = append(p.sessionObservers[:i], p.sessionObservers[i+1:]...)
			return
		}
	}
}

// SaveLesson persists the open lesson and notifies lesson observers that
// it was saved.
func (p *Provider) SaveLesson() error {
	if p.lesson == nil {
		return fmt.Errorf("SaveLesson(): no lesson is open")
	}
	if err := storage.SaveLesson(p.lesson); err != nil {
		return fmt.Errorf("storage.SaveLesson() > %w", err)
	}
	for _, o := range p.lessonObservers {
		o.LessonSaved(p.lesson)
	}
	return nil
}

// ExpireCards fires a CardExpired event for every card of the open lesson
// that became due since the previous sweep, and returns those cards.
func (p *Provider) ExpireCards(now time.Time) []*lesson.Card {
	if p.lesson == nil {
		return nil
	}
	due := p.lesson.RootCategory().ExpireCards(p.lastExpireSweep, now)
	p.lastExpireSweep = now
	return due
}

// StartSession creates and starts a session over the given category of the
// open lesson. Session observers are notified before the first card is
// drawn.
func (p *Provider) StartSession(
	settings *Settings,
	selected []*lesson.Card,
	category *lesson.Category,
	learnUnlearned bool,
	learnExpired bool,
) (*Session, error) {
	if p.lesson == nil {
		return nil, fmt.Errorf("StartSession(): no lesson is open")
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("settings.Validate() > %w", err)
	}
	if category == nil {
		category = p.lesson.RootCategory()
	}
	p.ExpireCards(time.Now())

	session := NewSession(category, settings, selected, learnUnlearned, learnExpired, p)
	p.running++

	for _, o := range p.sessionObservers {
		o.SessionStarted(session)
	}
	session.Start()
	return session, nil
}

// IsSessionRunning reports whether any session created by this provider is
// still running.
func (p *Provider) IsSessionRunning() bool {
	return p.running > 0
}

// sessionEnded records a relevant session in the lesson's learn history
// and notifies session observers.
func (p *Provider) sessionEnded(session *Session) {
	p.running--

	if session.Relevant() && p.lesson != nil {
		summary := history.NewSessionSummary(
			session.StartTime(),
			session.EndTime(),
			len(session.PassedCards()),
			len(session.FailedCards()),
			len(session.SkippedCards()),
			len(session.RelearnedCards()),
		)
		p.lesson.History().AddSummary(summary)
	}

	for _, o := range p.sessionObservers {
		o.SessionEnded(session)
	}
}

// OnCardEvent marks the lesson dirty via the lesson itself; the provider
// only listens so it can forward modified notifications to its observers.
// Pure expirations are not modifications.
func (p *Provider) OnCardEvent(event lesson.CardEvent) {
	if event.Kind == lesson.CardExpired {
		return
	}
	p.notifyModified()
}

// OnCategoryEvent forwards category changes as modified notifications.
func (p *Provider) OnCategoryEvent(event lesson.CategoryEvent) {
	p.notifyModified()
}

func (p *Provider) notifyModified() {
	if p.lesson == nil || !p.lesson.CanSave() {
		return
	}
	for _, o := range p.lessonObservers {
		o.LessonModified(p.lesson)
	}
}
