package lesson

import (
	"fmt"
	"sync"
	"time"
)

// Category is a node in the lesson's category tree. Each category partitions
// its own cards into leveled decks; deck i holds the cards at Leitner level
// i. Queries cover the whole subtree unless the local variant is used.
//
// Deck mutations of a whole subtree are guarded by a single mutex owned by
// the subtree's root, because a card move is a remove+insert pair that must
// never be observable half-done.
type Category struct {
	name     string
	parent   *Category
	children []*Category
	decks    [][]*Card

	observers []CategoryObserver
	mu        *sync.Mutex
}

// NewCategory creates a root category with the given name.
func NewCategory(name string) *Category {
	return &Category{
		name: name,
		mu:   &sync.Mutex{},
	}
}

// Name returns the category name.
func (c *Category) Name() string {
	return c.name
}

// SetName renames the category.
func (c *Category) SetName(name string) {
	c.name = name
}

// Parent returns the parent category, or nil for the root.
func (c *Category) Parent() *Category {
	return c.parent
}

// Children returns the direct child categories.
func (c *Category) Children() []*Category {
	return append([]*Category(nil), c.children...)
}

// Depth returns the number of ancestors of this category.
func (c *Category) Depth() int {
	depth := 0
	for p := c.parent; p != nil; p = p.parent {
		depth++
	}
	return depth
}

// Path returns the category names from the root down to this category,
// joined by "/".
func (c *Category) Path() string {
	if c.parent == nil {
		return c.name
	}
	return c.parent.Path() + "/" + c.name
}

func (c *Category) root() *Category {
	node := c
	for node.parent != nil {
		node = node.parent
	}
	return node
}

// AddObserver registers an observer for card and category events of this
// category's subtree.
func (c *Category) AddObserver(observer CategoryObserver) {
	c.observers = append(c.observers, observer)
}

// RemoveObserver unregisters a previously added observer.
func (c *Category) RemoveObserver(observer CategoryObserver) {
	for i, o := range c.observers {
		if o == observer {
			c.observers = append(c.observers[:i], c.observers[i+1:]...)
			return
		}
	}
}

// fireCardEvent delivers the event to the observers of this category and
// all its ancestors, synchronously.
func (c *Category) fireCardEvent(event CardEvent) {
	for node := c; node != nil; node = node.parent {
		for _, o := range node.observers {
			o.OnCardEvent(event)
		}
	}
}

func (c *Category) fireCategoryEvent(event CategoryEvent) {
	for node := c; node != nil; node = node.parent {
		for _, o := range node.observers {
			o.OnCategoryEvent(event)
		}
	}
}

// AddChild attaches a child category to this node. The child's subtree
// adopts the root's deck mutex.
func (c *Category) AddChild(child *Category) {
	if child.parent != nil {
		panic("lesson: category already has a parent")
	}
	child.parent = c
	child.adoptMutex(c.root().mu)
	c.children = append(c.children, child)

	child.fireCategoryEvent(CategoryEvent{Kind: CategoryAdded, Category: child})
}

func (c *Category) adoptMutex(mu *sync.Mutex) {
	c.mu = mu
	for _, child := range c.children {
		child.adoptMutex(mu)
	}
}

// RemoveChild detaches a direct child category, firing a CategoryRemoved
// event for it.
func (c *Category) RemoveChild(child *Category) {
	for i, node := range c.children {
		if node == child {
			c.children = append(c.children[:i], c.children[i+1:]...)
			child.fireCategoryEvent(CategoryEvent{Kind: CategoryRemoved, Category: child})
			child.parent = nil
			child.adoptMutex(&sync.Mutex{})
			return
		}
	}
}

// AddCard inserts a card into this category's level 0 deck.
func (c *Category) AddCard(card *Card) {
	c.AddCardAtLevel(card, 0)
}

// AddCardAtLevel inserts a card into the deck at the given level, creating
// decks up to that level if absent.
func (c *Category) AddCardAtLevel(card *Card, level int) {
	if card.category != nil {
		panic(fmt.Sprintf("lesson: card %v already belongs to a category", card))
	}

	c.mu.Lock()
	c.ensureDecks(level)
	c.decks[level] = append(c.decks[level], card)
	card.category = c
	card.level = level
	c.mu.Unlock()

	c.fireCardEvent(CardEvent{Kind: CardAdded, Card: card, Category: c, Level: level})
}

// RemoveCard removes a card from this category.
func (c *Category) RemoveCard(card *Card) {
	if card.category != c {
		panic(fmt.Sprintf("lesson: card %v does not belong to category %q", card, c.name))
	}

	c.mu.Lock()
	c.removeFromDeck(card)
	card.category = nil
	c.mu.Unlock()

	c.fireCardEvent(CardEvent{Kind: CardRemoved, Card: card, Category: c, Level: card.level})
}

// MoveCard moves a card from its current deck to the deck at the given
// level. The remove and insert happen under the subtree mutex so that the
// card is never absent from all decks or present in two.
func (c *Category) MoveCard(card *Card, level int) {
	if card.category != c {
		panic(fmt.Sprintf("lesson: card %v does not belong to category %q", card, c.name))
	}

	c.mu.Lock()
	c.removeFromDeck(card)
	c.ensureDecks(level)
	c.decks[level] = append(c.decks[level], card)
	card.level = level
	c.mu.Unlock()

	c.fireCardEvent(CardEvent{Kind: CardMoved, Card: card, Category: c, Level: level})
}

func (c *Category) ensureDecks(level int) {
	for len(c.decks) <= level {
		c.decks = append(c.decks, nil)
	}
}

func (c *Category) removeFromDeck(card *Card) {
	deck := c.decks[card.level]
	for i, other := range deck {
		if other == card {
			c.decks[card.level] = append(deck[:i], deck[i+1:]...)
			return
		}
	}
	panic(fmt.Sprintf("lesson: card %v missing from deck %d of category %q", card, card.level, c.name))
}

// NumberOfDecks returns the highest deck count in this subtree.
func (c *Category) NumberOfDecks() int {
	n := len(c.decks)
	for _, child := range c.children {
		if d := child.NumberOfDecks(); d > n {
			n = d
		}
	}
	return n
}

// LocalCards returns the cards held directly by this category, across all
// its decks.
func (c *Category) LocalCards() []*Card {
	var cards []*Card
	for _, deck := range c.decks {
		cards = append(cards, deck...)
	}
	return cards
}

// LocalCardsAtLevel returns this category's own cards at the given level.
func (c *Category) LocalCardsAtLevel(level int) []*Card {
	if level < 0 || level >= len(c.decks) {
		return nil
	}
	return append([]*Card(nil), c.decks[level]...)
}

// Cards returns all cards in this category's subtree.
func (c *Category) Cards() []*Card {
	cards := c.LocalCards()
	for _, child := range c.children {
		cards = append(cards, child.Cards()...)
	}
	return cards
}

// CardsAtLevel returns all subtree cards at the given level.
func (c *Category) CardsAtLevel(level int) []*Card {
	cards := c.LocalCardsAtLevel(level)
	for _, child := range c.children {
		cards = append(cards, child.CardsAtLevel(level)...)
	}
	return cards
}

// UnlearnedCards returns all subtree cards at level 0.
func (c *Category) UnlearnedCards() []*Card {
	return c.CardsAtLevel(0)
}

// LearnedCards returns all subtree cards that passed at least one review.
func (c *Category) LearnedCards() []*Card {
	var cards []*Card
	for _, card := range c.Cards() {
		if card.IsLearned() {
			cards = append(cards, card)
		}
	}
	return cards
}

// ExpiredCards returns all subtree cards that are due for review at the
// given time.
func (c *Category) ExpiredCards(now time.Time) []*Card {
	var cards []*Card
	for _, card := range c.Cards() {
		if card.IsExpired(now) {
			cards = append(cards, card)
		}
	}
	return cards
}

// ExpireCards fires a CardExpired event for every learned card in this
// subtree whose expiration date falls in (since, now], and returns those
// cards. Expiration is not a content change; the owning lesson stays clean.
func (c *Category) ExpireCards(since, now time.Time) []*Card {
	var due []*Card
	for _, card := range c.Cards() {
		expired := card.dateExpired
		if !card.IsLearned() || expired == nil {
			continue
		}
		if expired.After(now) || !expired.After(since) {
			continue
		}
		due = append(due, card)
		card.category.fireCardEvent(CardEvent{Kind: CardExpired, Card: card, Category: card.category, Level: card.level})
	}
	return due
}

// LearnableCards returns all subtree cards that a session can pick up:
// unlearned cards and expired cards.
func (c *Category) LearnableCards(now time.Time) []*Card {
	var cards []*Card
	for _, card := range c.Cards() {
		if card.IsUnlearned() || card.IsExpired(now) {
			cards = append(cards, card)
		}
	}
	return cards
}

// Contains reports whether the card lives in this category's subtree.
func (c *Category) Contains(card *Card) bool {
	for node := card.category; node != nil; node = node.parent {
		if node == c {
			return true
		}
	}
	return false
}

// CloneWithoutProgress returns a deep copy of this subtree with every card
// reset to level 0 and no learn statistics.
func (c *Category) CloneWithoutProgress() *Category {
	clone := NewCategory(c.name)
	for _, card := range c.LocalCards() {
		clone.AddCard(card.CloneWithoutProgress())
	}
	for _, child := range c.children {
		clone.AddChild(child.CloneWithoutProgress())
	}
	return clone
}
