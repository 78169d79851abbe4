package learn

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jmemorize/jmemorize/internal/lesson"
)

// State is the lifecycle state of a session.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateEnded
)

// skipLimit is the number of skips after which a card is no longer offered
// again within the same session.
const skipLimit = 3

// CardObserver is notified whenever the session fetches the next card to
// ask. The callback runs synchronously before any further card mutation, so
// an observer can render the "about to ask" state safely.
type CardObserver interface {
	NextCardFetched(card *lesson.Card, flipped bool)
}

// Session drives one study run over a pool of cards: it picks the next
// card, applies grading outcomes, enforces limits and terminates when the
// pool is exhausted, a limit is hit or the caller ends it.
//
// A session is single-threaded by design. All calls, including OnTimer,
// must come from the same goroutine or be serialized by the caller.
type Session struct {
	category       *lesson.Category
	settings       *Settings
	selected       []*lesson.Card
	learnUnlearned bool
	learnExpired   bool
	provider       *Provider

	state State
	start time.Time
	end   time.Time

	queue     []*lesson.Card
	checked   []*lesson.Card
	passed    []*lesson.Card
	failed    []*lesson.Card
	skipped   []*lesson.Card
	relearned []*lesson.Card

	skipCounts map[uuid.UUID]int

	current *lesson.Card
	flipped bool

	cardObservers []CardObserver

	rng *rand.Rand
	now func() time.Time
}

// NewSession creates a session over the given category. The candidate pool
// is built from the explicitly selected cards plus, depending on the flags,
// the unlearned and expired cards of the category subtree. The settings
// must have been validated already.
func NewSession(
	category *lesson.Category,
	settings *Settings,
	selected []*lesson.Card,
	learnUnlearned bool,
	learnExpired bool,
	provider *Provider,
) *Session {
	return &Session{
		category:       category,
		settings:       settings,
		selected:       append([]*lesson.Card(nil), selected...),
		learnUnlearned: learnUnlearned,
		learnExpired:   learnExpired,
		provider:       provider,
		skipCounts:     make(map[uuid.UUID]int),
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
		now:            time.Now,
	}
}

// AddCardObserver registers an observer for per-card updates.
func (s *Session) AddCardObserver(observer CardObserver) {
	s.cardObservers = append(s.cardObservers, observer)
}

// Start builds the candidate pool and transitions the session to running.
// Starting with zero candidates is legal; the session ends up running with
// no current card and can be ended directly.
func (s *Session) Start() {
	if s.state != StateNotStarted {
		panic("learn: session already started")
	}

	s.start = s.now()
	s.state = StateRunning

	s.queue = s.buildPool()
	if len(s.queue) > 0 {
		s.fetchNext()
	}
}

// buildPool collects, deduplicates and orders the candidate cards.
func (s *Session) buildPool() []*lesson.Card {
	candidates := append([]*lesson.Card(nil), s.selected...)
	if s.learnUnlearned {
		candidates = append(candidates, s.category.UnlearnedCards()...)
	}
	if s.learnExpired {
		candidates = append(candidates, s.category.ExpiredCards(s.start)...)
	}

	seen := make(map[uuid.UUID]struct{}, len(candidates))
	pool := make([]*lesson.Card, 0, len(candidates))
	for _, card := range candidates {
		if _, ok := seen[card.ID()]; ok {
			continue
		}
		seen[card.ID()] = struct{}{}
		pool = append(pool, card)
	}

	if s.settings.GroupByCategory {
		sort.SliceStable(pool, func(i, j int) bool {
			pi, pj := categoryPath(pool[i]), categoryPath(pool[j])
			if pi != pj {
				return pi < pj
			}
			return expiresBefore(pool[i], pool[j])
		})
	}

	s.partialShuffle(pool)
	return pool
}

func categoryPath(card *lesson.Card) string {
	if card.Category() == nil {
		return ""
	}
	return card.Category().Path()
}

// expiresBefore orders by ascending expiration date; cards without an
// expiration date sort last.
func expiresBefore(a, b *lesson.Card) bool {
	ea, eb := a.DateExpired(), b.DateExpired()
	if ea == nil || eb == nil {
		return eb == nil && ea != nil
	}
	return ea.Before(*eb)
}

// partialShuffle reorders a ShuffleRatio fraction of the pool at random,
// leaving the remaining positions untouched. The ratio interpolates between
// the fully deterministic and the fully random order.
func (s *Session) partialShuffle(pool []*lesson.Card) {
	k := int(math.Round(s.settings.ShuffleRatio * float64(len(pool))))
	if k < 2 {
		return
	}

	positions := s.rng.Perm(len(pool))[:k]
	sort.Ints(positions)

	subset := make([]*lesson.Card, k)
	for i, p := range positions {
		subset[i] = pool[p]
	}
	s.rng.Shuffle(k, func(i, j int) {
		subset[i], subset[j] = subset[j], subset[i]
	})
	for i, p := range positions {
		pool[p] = subset[i]
	}
}

// fetchNext makes the head of the queue the current card and notifies card
// observers. The current card stays in the left-to-test queue until it is
// graded or skipped.
func (s *Session) fetchNext() {
	s.current = s.queue[0]
	s.flipped = s.chooseFlipped(s.current)

	for _, o := range s.cardObservers {
		o.NextCardFetched(s.current, s.flipped)
	}
}

func (s *Session) chooseFlipped(card *lesson.Card) bool {
	switch s.settings.Sides {
	case SidesFlipped:
		return true
	case SidesRandom:
		return s.rng.Intn(2) == 1
	case SidesBoth:
		frontNeeded := card.LearnedAmount(true) < s.settings.AmountToTestFront
		backNeeded := card.LearnedAmount(false) < s.settings.AmountToTestBack
		if frontNeeded == backNeeded {
			return s.rng.Intn(2) == 1
		}
		return !frontNeeded
	default:
		return false
	}
}

// CardChecked grades the current card. The card moves from left-to-test to
// checked and into passed or failed; a card that failed earlier in this
// session and passes now is additionally tagged relearned. With retesting
// enabled a failed card is re-queued at a random position that is never the
// immediate next draw.
func (s *Session) CardChecked(passed, flipped bool) {
	if s.state != StateRunning {
		panic("learn: CardChecked called on a session that is not running")
	}
	if s.current == nil {
		panic("learn: CardChecked called without a current card")
	}

	card := s.current
	s.queue = s.queue[1:]
	s.current = nil

	wasFailed := containsCard(s.failed, card)
	s.applyResult(card, passed, flipped)

	s.checked = appendUnique(s.checked, card)
	if passed {
		s.passed = appendUnique(s.passed, card)
		if wasFailed {
			s.relearned = appendUnique(s.relearned, card)
		}
	} else {
		s.failed = appendUnique(s.failed, card)
		if s.settings.RetestFailedCards {
			s.requeue(card)
		}
	}

	s.advance()
}

// applyResult records the grading outcome on the card and computes its new
// expiration date. In SidesBoth mode the level only advances once both
// sides reached their configured amount; a fail resets the per-side
// progress along with the level.
func (s *Session) applyResult(card *lesson.Card, passed, flipped bool) {
	updateLevel := true
	if s.settings.Sides == SidesBoth {
		if passed {
			front := !flipped
			card.SetLearnedAmount(front, card.LearnedAmount(front)+1)
			done := card.LearnedAmount(true) >= s.settings.AmountToTestFront &&
				card.LearnedAmount(false) >= s.settings.AmountToTestBack
			if done {
				card.ResetLearnedAmounts()
			} else {
				updateLevel = false
			}
		} else {
			card.ResetLearnedAmounts()
		}
	}

	card.RecordResultAt(s.now(), passed, updateLevel)

	if passed && updateLevel {
		card.SetDateExpired(s.settings.Schedule.Expiration(card.Level(), *card.DateTested()))
	}
}

// requeue reinserts a failed card at a uniformly random position in the
// remaining queue, excluding position 0 so that the card is never the
// immediate next draw. An empty queue leaves no choice but the end.
func (s *Session) requeue(card *lesson.Card) {
	if len(s.queue) == 0 {
		s.queue = append(s.queue, card)
		return
	}

	pos := 1 + s.rng.Intn(len(s.queue))
	s.queue = append(s.queue, nil)
	copy(s.queue[pos+1:], s.queue[pos:])
	s.queue[pos] = card
}

// CardSkipped moves the current card into the skipped set and back onto the
// end of the queue, unless it already reached the session's skip limit, in
// which case it is excluded from further draws.
func (s *Session) CardSkipped() {
	if s.state != StateRunning {
		panic("learn: CardSkipped called on a session that is not running")
	}
	if s.current == nil {
		panic("learn: CardSkipped called without a current card")
	}

	card := s.current
	s.queue = s.queue[1:]
	s.current = nil

	card.Skip()
	s.skipCounts[card.ID()]++
	s.skipped = appendUnique(s.skipped, card)

	if s.skipCounts[card.ID()] < skipLimit {
		s.queue = append(s.queue, card)
	}

	s.advance()
}

// advance enforces the card limit and pool exhaustion before drawing the
// next card.
func (s *Session) advance() {
	if s.settings.CardLimitEnabled && len(s.checked) >= s.settings.CardLimit {
		s.endSession()
		return
	}
	if len(s.queue) == 0 {
		s.endSession()
		return
	}
	s.fetchNext()
}

// OnTimer is the entry point for the host's periodic timer. It ends the
// session once the configured time limit has elapsed. Ticks arriving after
// the session ended are ignored, since a timer may race its own shutdown.
func (s *Session) OnTimer() {
	if s.state != StateRunning {
		return
	}
	if s.settings.TimeLimitEnabled && s.now().Sub(s.start) >= s.settings.TimeLimit {
		s.endSession()
	}
}

// End terminates the session early. Grades already recorded on cards
// remain recorded.
func (s *Session) End() {
	if s.state != StateRunning {
		panic("learn: End called on a session that is not running")
	}
	s.endSession()
}

func (s *Session) endSession() {
	s.end = s.now()
	s.state = StateEnded
	s.current = nil

	if s.provider != nil {
		s.provider.sessionEnded(s)
	}
}

// Relevant reports whether this session should be recorded in the learn
// history. Sessions in which no card was graded are not recorded.
func (s *Session) Relevant() bool {
	return len(s.checked) > 0
}

// State returns the session's lifecycle state.
func (s *Session) State() State {
	return s.state
}

// StartTime returns when the session started.
func (s *Session) StartTime() time.Time {
	return s.start
}

// EndTime returns when the session ended.
func (s *Session) EndTime() time.Time {
	return s.end
}

// Elapsed returns the session's wall clock duration so far.
func (s *Session) Elapsed() time.Duration {
	if s.state == StateEnded {
		return s.end.Sub(s.start)
	}
	return s.now().Sub(s.start)
}

// Category returns the category being learned.
func (s *Session) Category() *lesson.Category {
	return s.category
}

// Settings returns the session's settings.
func (s *Session) Settings() *Settings {
	return s.settings
}

// CurrentCard returns the card currently being asked, or nil.
func (s *Session) CurrentCard() *lesson.Card {
	return s.current
}

// CurrentFlipped reports whether the current card is asked back-to-front.
func (s *Session) CurrentFlipped() bool {
	return s.flipped
}

// CardsLeft returns the cards still left to test, in draw order.
func (s *Session) CardsLeft() []*lesson.Card {
	return append([]*lesson.Card(nil), s.queue...)
}

// CheckedCards returns the cards graded in this session.
func (s *Session) CheckedCards() []*lesson.Card {
	return append([]*lesson.Card(nil), s.checked...)
}

// PassedCards returns the cards graded as passed.
func (s *Session) PassedCards() []*lesson.Card {
	return append([]*lesson.Card(nil), s.passed...)
}

// FailedCards returns the cards graded as failed at least once.
func (s *Session) FailedCards() []*lesson.Card {
	return append([]*lesson.Card(nil), s.failed...)
}

// SkippedCards returns the cards skipped at least once.
func (s *Session) SkippedCards() []*lesson.Card {
	return append([]*lesson.Card(nil), s.skipped...)
}

// RelearnedCards returns the cards that failed earlier in this session and
// passed later. Relearned is a tag on top of passed, not a partition.
func (s *Session) RelearnedCards() []*lesson.Card {
	return append([]*lesson.Card(nil), s.relearned...)
}

func containsCard(cards []*lesson.Card, card *lesson.Card) bool {
	for _, c := range cards {
		if c.ID() == card.ID() {
			return true
		}
	}
	return false
}

func appendUnique(cards []*lesson.Card, card *lesson.Card) []*lesson.Card {
	if containsCard(cards, card) {
		return cards
	}
	return append(cards, card)
}
