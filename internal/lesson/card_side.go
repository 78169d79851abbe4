package lesson

// CardSide holds the content of one side of a card together with the
// per-side learned amount used by the both-sides testing mode.
type CardSide struct {
	text          string
	images        []string
	learnedAmount int
}

// NewCardSide creates a card side with the given text.
func NewCardSide(text string) *CardSide {
	return &CardSide{text: text}
}

// Text returns the side's text.
func (s *CardSide) Text() string {
	return s.text
}

// Images returns the identifiers of the images attached to this side.
func (s *CardSide) Images() []string {
	return s.images
}

// SetImages replaces the image identifiers attached to this side.
func (s *CardSide) SetImages(imageIDs []string) {
	s.images = append([]string(nil), imageIDs...)
}

// LearnedAmount returns how often this side was answered correctly since
// the last level change.
func (s *CardSide) LearnedAmount() int {
	return s.learnedAmount
}
