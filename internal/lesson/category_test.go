package lesson

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory_Tree(t *testing.T) {
	root := NewCategory("All")
	biology := NewCategory("Biology")
	botany := NewCategory("Botany")

	root.AddChild(biology)
	biology.AddChild(botany)

	assert.Equal(t, 0, root.Depth())
	assert.Equal(t, 1, biology.Depth())
	assert.Equal(t, 2, botany.Depth())
	assert.Equal(t, "All/Biology/Botany", botany.Path())
	assert.Same(t, biology, botany.Parent())
	assert.Len(t, root.Children(), 1)
}

func TestCategory_AddChild_PanicsWhenAlreadyOwned(t *testing.T) {
	root := NewCategory("All")
	child := NewCategory("Child")
	root.AddChild(child)

	other := NewCategory("Other")
	assert.Panics(t, func() { other.AddChild(child) })
}

func TestCategory_AddCard(t *testing.T) {
	t.Run("adds the card to deck zero", func(t *testing.T) {
		category := NewCategory("All")
		card := NewCard("front", "back")

		category.AddCard(card)

		assert.Same(t, category, card.Category())
		assert.Equal(t, 0, card.Level())
		assert.Len(t, category.LocalCardsAtLevel(0), 1)
	})

	t.Run("adding an owned card panics", func(t *testing.T) {
		card := NewCard("front", "back")
		NewCategory("One").AddCard(card)

		assert.Panics(t, func() { NewCategory("Two").AddCard(card) })
	})
}

func TestCategory_MoveCard(t *testing.T) {
	category := NewCategory("All")
	card := NewCard("front", "back")
	category.AddCard(card)

	category.MoveCard(card, 2)

	assert.Equal(t, 2, card.Level())
	assert.Empty(t, category.LocalCardsAtLevel(0))
	assert.Len(t, category.LocalCardsAtLevel(2), 1)
	assert.Equal(t, 3, category.NumberOfDecks())
}

func TestCategory_RemoveCard(t *testing.T) {
	category := NewCategory("All")
	card := NewCard("front", "back")
	category.AddCard(card)

	category.RemoveCard(card)

	assert.Nil(t, card.Category())
	assert.Empty(t, category.LocalCards())
}

func TestCategory_SubtreeQueries(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	root := NewCategory("All")
	child := NewCategory("Child")
	root.AddChild(child)

	unlearned := NewCard("unlearned", "card")
	root.AddCard(unlearned)

	learned := NewCard("learned", "card")
	child.AddCardAtLevel(learned, 2)
	future := now.Add(time.Hour)
	learned.SetDateExpired(&future)

	expired := NewCard("expired", "card")
	child.AddCardAtLevel(expired, 1)
	past := now.Add(-time.Hour)
	expired.SetDateExpired(&past)

	assert.Len(t, root.Cards(), 3)
	assert.Len(t, root.LocalCards(), 1)
	assert.Len(t, root.UnlearnedCards(), 1)
	assert.Len(t, root.LearnedCards(), 2)

	expiredCards := root.ExpiredCards(now)
	require.Len(t, expiredCards, 1)
	assert.Equal(t, expired.ID(), expiredCards[0].ID())

	learnable := root.LearnableCards(now)
	assert.Len(t, learnable, 2)

	assert.Len(t, root.CardsAtLevel(2), 1)
	assert.True(t, root.Contains(expired))
	assert.False(t, child.Contains(unlearned))
}

func TestCategory_Events(t *testing.T) {
	root := NewCategory("All")
	child := NewCategory("Child")
	root.AddChild(child)

	recorder := &eventRecorder{}
	root.AddObserver(recorder)

	card := NewCard("front", "back")
	child.AddCard(card)
	child.MoveCard(card, 1)
	child.RemoveCard(card)

	grandchild := NewCategory("Grandchild")
	child.AddChild(grandchild)
	child.RemoveChild(grandchild)

	require.Len(t, recorder.cardEvents, 3)
	assert.Equal(t, CardAdded, recorder.cardEvents[0].Kind)
	assert.Equal(t, CardMoved, recorder.cardEvents[1].Kind)
	assert.Equal(t, 1, recorder.cardEvents[1].Level)
	assert.Equal(t, CardRemoved, recorder.cardEvents[2].Kind)

	require.Len(t, recorder.categoryEvents, 2)
	assert.Equal(t, CategoryAdded, recorder.categoryEvents[0].Kind)
	assert.Equal(t, CategoryRemoved, recorder.categoryEvents[1].Kind)
}

func TestCategory_ExpireCards(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	root := NewCategory("All")
	child := NewCategory("Child")
	root.AddChild(child)

	due := NewCard("due", "back")
	child.AddCardAtLevel(due, 1)
	dueAt := now.Add(-time.Hour)
	due.SetDateExpired(&dueAt)

	future := NewCard("future", "back")
	root.AddCardAtLevel(future, 1)
	futureAt := now.Add(time.Hour)
	future.SetDateExpired(&futureAt)

	unlearned := NewCard("unlearned", "back")
	root.AddCard(unlearned)
	staleAt := now.Add(-time.Hour)
	unlearned.SetDateExpired(&staleAt)

	recorder := &eventRecorder{}
	root.AddObserver(recorder)

	expired := root.ExpireCards(time.Time{}, now)
	require.Len(t, expired, 1)
	assert.Equal(t, due.ID(), expired[0].ID())

	require.Len(t, recorder.cardEvents, 1)
	assert.Equal(t, CardExpired, recorder.cardEvents[0].Kind)
	assert.Equal(t, due.ID(), recorder.cardEvents[0].Card.ID())
	assert.Equal(t, child, recorder.cardEvents[0].Category)

	t.Run("cards already swept are not reported again", func(t *testing.T) {
		assert.Empty(t, root.ExpireCards(now, now.Add(time.Minute)))
	})

	t.Run("a card becoming due falls into the next window", func(t *testing.T) {
		assert.Len(t, root.ExpireCards(now, now.Add(2*time.Hour)), 1)
	})
}

type eventRecorder struct {
	cardEvents     []CardEvent
	categoryEvents []CategoryEvent
}

func (r *eventRecorder) OnCardEvent(event CardEvent) {
	r.cardEvents = append(r.cardEvents, event)
}

func (r *eventRecorder) OnCategoryEvent(event CategoryEvent) {
	r.categoryEvents = append(r.categoryEvents, event)
}

func TestCategory_CloneWithoutProgress(t *testing.T) {
	root := NewCategory("All")
	child := NewCategory("Child")
	root.AddChild(child)
	card := NewCard("front", "back")
	child.AddCardAtLevel(card, 3)

	clone := root.CloneWithoutProgress()

	assert.Equal(t, "All", clone.Name())
	require.Len(t, clone.Children(), 1)
	cards := clone.Cards()
	require.Len(t, cards, 1)
	assert.Equal(t, 0, cards[0].Level())
	assert.NotEqual(t, card.ID(), cards[0].ID())
}
