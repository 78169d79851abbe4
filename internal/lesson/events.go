package lesson

// CardEventKind identifies what happened to a card.
type CardEventKind int

const (
	CardAdded CardEventKind = iota
	CardRemoved
	CardMoved
	CardEdited
	CardExpired
)

// CardEvent describes a change to a single card and where it happened.
type CardEvent struct {
	Kind     CardEventKind
	Card     *Card
	Category *Category
	Level    int
}

// CategoryEventKind identifies a structural change to the category tree.
type CategoryEventKind int

const (
	CategoryAdded CategoryEventKind = iota
	CategoryRemoved
)

// CategoryEvent describes a structural change to the category tree.
type CategoryEvent struct {
	Kind     CategoryEventKind
	Category *Category
}

// CategoryObserver receives card and category events synchronously.
// Events fired on a category are also delivered to the observers of all
// its ancestors, so observing the root category observes the whole tree.
type CategoryObserver interface {
	OnCardEvent(event CardEvent)
	OnCategoryEvent(event CategoryEvent)
}

// Observer receives lesson lifecycle notifications.
type Observer interface {
	LessonLoaded(lesson *Lesson)
	LessonClosed(lesson *Lesson)
	LessonModified(lesson *Lesson)
	LessonSaved(lesson *Lesson)
}
