package menubar

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const gap = "   "

// Marquee scrolls text that is wider than the menu bar allows. Widths are
// measured in terminal cells so wide glyphs count double.
type Marquee struct {
	width  int
	text   []rune
	offset int
}

func NewMarquee(width int) *Marquee {
	return &Marquee{width: width}
}

// Set replaces the text and restarts scrolling, unless the text is unchanged.
func (m *Marquee) Set(text string) {
	if text == string(m.text) {
		return
	}
	m.text = []rune(text)
	m.offset = 0
}

func (m *Marquee) SetWidth(width int) {
	m.width = width
	m.offset = 0
}

func (m *Marquee) Scrolling() bool {
	return m.width > 0 && runewidth.StringWidth(string(m.text)) > m.width
}

// Frame returns the visible window and advances one glyph.
func (m *Marquee) Frame() string {
	if !m.Scrolling() {
		return string(m.text)
	}

	loop := append(append([]rune{}, m.text...), []rune(gap)...)
	var b strings.Builder
	used := 0
	for i := 0; ; i++ {
		r := loop[(m.offset+i)%len(loop)]
		w := runewidth.RuneWidth(r)
		if used+w > m.width {
			break
		}
		b.WriteRune(r)
		used += w
	}
	m.offset = (m.offset + 1) % len(loop)
	return runewidth.FillRight(b.String(), m.width)
}

// Truncate is used where scrolling is not possible, such as tooltips.
func Truncate(text string, width int) string {
	return runewidth.Truncate(text, width, "…")
}
