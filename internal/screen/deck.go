package screen

// Slide is one onboarding page.
type Slide struct {
	Title       string
	Description string
}

var slides = []Slide{
	{
		Title:       "Welcome to TaskFlow",
		Description: "The simplest way to organize your tasks and boost your productivity",
	},
	{
		Title:       "Save Time. It is Worthy",
		Description: "Accomplish more in less time with an effortless, guided workflow",
	},
	{
		Title:       "Get Things Managed",
		Description: "Simplify your workflow and handle every task with clarity and confidence",
	},
	{
		Title:       "Ready to Start?",
		Description: "Kickstart your productivity journey and make every moment count",
	},
}

// Deck walks the onboarding slides.
type Deck struct {
	index int
	done  bool
}

func NewDeck() *Deck { return &Deck{} }

func (d *Deck) Len() int       { return len(slides) }
func (d *Deck) Index() int     { return d.index }
func (d *Deck) Current() Slide { return slides[d.index] }
func (d *Deck) Last() bool     { return d.index == len(slides)-1 }
func (d *Deck) Done() bool     { return d.done }

// Next advances one slide. On the last slide it completes the deck and
// returns true.
func (d *Deck) Next() bool {
	if d.Last() {
		d.done = true
		return true
	}
	d.index++
	return false
}

// Prev goes back one slide; it does nothing on the first.
func (d *Deck) Prev() {
	if d.index > 0 {
		d.index--
	}
}

// GoTo jumps to slide i; out of range values are ignored.
func (d *Deck) GoTo(i int) {
	if i >= 0 && i < len(slides) {
		d.index = i
	}
}

// NextLabel is the caption of the forward button.
func (d *Deck) NextLabel() string {
	if d.Last() {
		return "Get Started"
	}
	return "Next →"
}
