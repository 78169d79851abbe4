package lesson

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Card is the atomic unit of study material. It carries the content of both
// sides, its Leitner level and the review statistics that the learn session
// maintains.
//
// Every card gets a stable, immutable ID at construction time. Containers
// must key cards by ID; ContentEquals exists only for explicit deduplication
// because the identity-defining text of a card can change after creation.
type Card struct {
	id    uuid.UUID
	front *CardSide
	back  *CardSide

	dateCreated  time.Time
	dateModified time.Time
	dateTouched  time.Time
	dateTested   *time.Time
	dateExpired  *time.Time

	level        int
	testsTotal   int
	testsPassed  int
	timesSkipped int

	category *Category
}

// NewCard creates a card with the given front and back text. All creation
// related dates are set to the current time.
func NewCard(frontText, backText string) *Card {
	return NewCardAt(time.Now(), frontText, backText)
}

// NewCardAt creates a card with an explicit creation time.
func NewCardAt(created time.Time, frontText, backText string) *Card {
	return &Card{
		id:           uuid.New(),
		front:        NewCardSide(frontText),
		back:         NewCardSide(backText),
		dateCreated:  created,
		dateModified: created,
		dateTouched:  created,
	}
}

// RestoreCard reconstructs a card from persisted state, keeping its
// original identifier. Counters and dates are restored through the regular
// setters afterwards.
func RestoreCard(id uuid.UUID, created time.Time, frontText, backText string) *Card {
	card := NewCardAt(created, frontText, backText)
	card.id = id
	return card
}

// ID returns the card's stable identifier.
func (c *Card) ID() uuid.UUID {
	return c.id
}

// Front returns the front side.
func (c *Card) Front() *CardSide {
	return c.front
}

// Back returns the back side.
func (c *Card) Back() *CardSide {
	return c.back
}

// Side returns the front side when front is true, the back side otherwise.
func (c *Card) Side(front bool) *CardSide {
	if front {
		return c.front
	}
	return c.back
}

// SetSides replaces the text of both sides. Setting identical text is a
// no-op; otherwise the modification and touch dates are updated and a
// CardEdited event is fired on the owning category.
func (c *Card) SetSides(frontText, backText string) {
	if c.front.text == frontText && c.back.text == backText {
		return
	}

	c.front.text = frontText
	c.back.text = backText

	now := time.Now()
	c.setDateModified(now)
	c.dateTouched = now

	if c.category != nil {
		c.category.fireCardEvent(CardEvent{Kind: CardEdited, Card: c, Category: c.category, Level: c.level})
	}
}

// Category returns the category owning this card, or nil.
func (c *Card) Category() *Category {
	return c.category
}

// Level returns the card's current Leitner level. Level 0 means unlearned.
func (c *Card) Level() int {
	return c.level
}

// DateCreated returns when the card was created.
func (c *Card) DateCreated() time.Time {
	return c.dateCreated
}

// SetDateCreated replaces the creation date.
func (c *Card) SetDateCreated(created time.Time) {
	if created.IsZero() {
		panic("lesson: card creation date must not be zero")
	}
	c.dateCreated = created
}

// DateModified returns when the card content was last changed.
func (c *Card) DateModified() time.Time {
	return c.dateModified
}

// SetDateModified replaces the modification date. The date must not precede
// the creation date; violating that is a programmer error.
func (c *Card) SetDateModified(modified time.Time) {
	c.setDateModified(modified)
}

func (c *Card) setDateModified(modified time.Time) {
	if modified.Before(c.dateCreated) {
		panic(fmt.Sprintf("lesson: modification date %v precedes creation date %v", modified, c.dateCreated))
	}
	c.dateModified = modified
}

// DateTouched returns when the card was last accessed in a way that should
// refresh recency.
func (c *Card) DateTouched() time.Time {
	return c.dateTouched
}

// SetDateTouched replaces the touch date.
func (c *Card) SetDateTouched(touched time.Time) {
	c.dateTouched = touched
}

// DateTested returns when the card was last graded, or nil if never.
func (c *Card) DateTested() *time.Time {
	return c.dateTested
}

// SetDateTested replaces the tested date and touches the card.
func (c *Card) SetDateTested(tested time.Time) {
	c.dateTested = &tested
	c.dateTouched = tested
}

// DateExpired returns when the card becomes due for review, or nil for
// unlearned cards and cards that were reset.
func (c *Card) DateExpired() *time.Time {
	return c.dateExpired
}

// SetDateExpired replaces the expiration date. Passing nil clears it.
func (c *Card) SetDateExpired(expired *time.Time) {
	c.dateExpired = expired
}

// IsExpired reports whether the card is due for review at the given time.
// Only learned cards can expire.
func (c *Card) IsExpired(now time.Time) bool {
	return c.level > 0 && c.dateExpired != nil && !c.dateExpired.After(now)
}

// IsLearned reports whether the card has passed at least one review.
func (c *Card) IsLearned() bool {
	return c.level > 0
}

// IsUnlearned reports whether the card never passed a review.
func (c *Card) IsUnlearned() bool {
	return c.level == 0
}

// RecordResult applies a grading outcome to the card, with the current time
// as the test time. See RecordResultAt.
func (c *Card) RecordResult(passed, updateLevel bool) {
	c.RecordResultAt(time.Now(), passed, updateLevel)
}

// RecordResultAt applies a grading outcome to the card.
//
// The total test counter and, on a pass, the passed counter are always
// incremented and the tested/touched dates are set to the given time. When
// updateLevel is true a pass promotes the card one level and a fail resets
// it to level 0; the owning category moves the card between the matching
// decks in the same step.
func (c *Card) RecordResultAt(tested time.Time, passed, updateLevel bool) {
	c.testsTotal++
	if passed {
		c.testsPassed++
	}

	c.SetDateTested(tested)

	if !updateLevel {
		if c.category != nil {
			c.category.fireCardEvent(CardEvent{Kind: CardEdited, Card: c, Category: c.category, Level: c.level})
		}
		return
	}

	if passed {
		c.changeLevel(c.level + 1)
	} else {
		c.dateExpired = nil
		c.changeLevel(0)
	}
}

// changeLevel moves the card to the given level, updating the owning
// category's decks when the card belongs to one.
func (c *Card) changeLevel(level int) {
	if c.category != nil {
		c.category.MoveCard(c, level)
		return
	}
	c.level = level
}

// Skip records that the card was skipped. Skipping changes neither the
// level nor the tested date.
func (c *Card) Skip() {
	c.timesSkipped++
}

// TimesSkipped returns how often the card has been skipped over its
// lifetime.
func (c *Card) TimesSkipped() int {
	return c.timesSkipped
}

// TestsTotal returns how often the card was graded.
func (c *Card) TestsTotal() int {
	return c.testsTotal
}

// TestsPassed returns how often the card was graded as passed.
func (c *Card) TestsPassed() int {
	return c.testsPassed
}

// IncStats adds to the raw test counters. Used by persistence when
// restoring a card.
func (c *Card) IncStats(passed, total int) {
	c.testsPassed += passed
	c.testsTotal += total
}

// SetTimesSkipped restores the lifetime skip counter.
func (c *Card) SetTimesSkipped(n int) {
	c.timesSkipped = n
}

// PassRatio returns the percentage of passed tests, rounded to the nearest
// integer. A card that was never tested has a ratio of 0.
func (c *Card) PassRatio() int {
	if c.testsTotal == 0 {
		return 0
	}
	return int(float64(c.testsPassed)/float64(c.testsTotal)*100 + 0.5)
}

// LearnedAmount returns the learned amount of the front or back side.
func (c *Card) LearnedAmount(front bool) int {
	return c.Side(front).learnedAmount
}

// SetLearnedAmount sets the learned amount of the front or back side.
func (c *Card) SetLearnedAmount(front bool, amount int) {
	c.Side(front).learnedAmount = amount
}

// ResetLearnedAmounts clears the learned amounts of both sides.
func (c *Card) ResetLearnedAmounts() {
	c.front.learnedAmount = 0
	c.back.learnedAmount = 0
}

// ContentEquals reports whether two cards carry the same front and back
// text. When both cards belong to a category, the categories must match as
// well. This is the deduplication comparison; it deliberately ignores IDs.
func (c *Card) ContentEquals(other *Card) bool {
	if other == nil {
		return false
	}
	if c.front.text != other.front.text || c.back.text != other.back.text {
		return false
	}
	if c.category != nil && other.category != nil && c.category != other.category {
		return false
	}
	return true
}

// CloneWithoutProgress returns a copy of the card with fresh dates and no
// learn statistics. The clone gets its own ID and belongs to no category.
func (c *Card) CloneWithoutProgress() *Card {
	clone := NewCard(c.front.text, c.back.text)
	clone.front.SetImages(c.front.images)
	clone.back.SetImages(c.back.images)
	return clone
}

func (c *Card) String() string {
	return fmt.Sprintf("(%s/%s)", c.front.text, c.back.text)
}
