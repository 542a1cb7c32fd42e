package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Tab is a category of the catalog page.
type Tab string

const (
	TabMen   Tab = "men"
	TabKids  Tab = "kids"
	TabWomen Tab = "women"
)

// Tabs lists the category tabs in page order. TabMen is the default.
var Tabs = []Tab{TabMen, TabKids, TabWomen}

// ParseTab maps a tab name to a Tab, falling back to TabMen.
func ParseTab(s string) Tab {
	switch Tab(strings.ToLower(strings.TrimSpace(s))) {
	case TabKids:
		return TabKids
	case TabWomen:
		return TabWomen
	default:
		return TabMen
	}
}

// Markup hooks shared by the parser and the listing renderer.
const (
	gridIDPrefix    = "catalogGrid-"
	cardSelector    = ".card"
	triggerSelector = ".js-open-modal"
	soldOutClass    = "is-soldout"
)

// GridID is the element id of the grid holding a tab's cards.
func GridID(t Tab) string {
	return gridIDPrefix + string(t)
}

// Card is one listing entry.
type Card struct {
	Tab    Tab
	Index  int
	Sleeve string
	Color  string
	// Text is the card's visible text with whitespace collapsed.
	Text       string
	Trigger    Trigger
	HasTrigger bool
	SoldOut    bool
}

// Listing is the parsed catalog page.
type Listing struct {
	grids map[Tab][]*Card
}

// ParseListing reads catalog markup. Grids that are missing from the page
// are simply absent from the listing.
func ParseListing(r io.Reader) (*Listing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing markup: %w", err)
	}

	l := &Listing{grids: make(map[Tab][]*Card)}
	for _, tab := range Tabs {
		grid := doc.Find("#" + GridID(tab))
		if grid.Length() == 0 {
			continue
		}
		cards := make([]*Card, 0)
		grid.First().Find(cardSelector).Each(func(i int, s *goquery.Selection) {
			cards = append(cards, readCard(tab, i, s))
		})
		l.grids[tab] = cards
	}
	return l, nil
}

func readCard(tab Tab, i int, s *goquery.Selection) *Card {
	c := &Card{
		Tab:     tab,
		Index:   i,
		Sleeve:  attr(s, "data-sleeve"),
		Color:   attr(s, "data-color"),
		Text:    strings.Join(strings.Fields(s.Text()), " "),
		SoldOut: s.HasClass(soldOutClass),
	}

	btn := s.Find(triggerSelector).First()
	if btn.Length() == 0 {
		return c
	}
	c.HasTrigger = true
	c.Trigger = Trigger{
		Img:     attr(btn, "data-img"),
		Title:   attr(btn, "data-title"),
		Sleeve:  attr(btn, "data-sleeve"),
		Color:   attr(btn, "data-color"),
		Price:   attr(btn, "data-price"),
		Compare: attr(btn, "data-compare"),
		Fabric:  attr(btn, "data-fabric"),
		Kind:    attr(btn, "data-kind"),
		SKUMap:  attr(btn, "data-sku-map"),
	}
	return c
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return v
}

// HasTab reports whether the page carries a grid for t.
func (l *Listing) HasTab(t Tab) bool {
	_, ok := l.grids[t]
	return ok
}

// Cards returns the cards of a tab in page order.
func (l *Listing) Cards(t Tab) []*Card {
	return l.grids[t]
}

// Card returns the i-th card of a tab.
func (l *Listing) Card(t Tab, i int) (*Card, bool) {
	cards := l.grids[t]
	if i < 0 || i >= len(cards) {
		return nil, false
	}
	return cards[i], true
}

// Len counts every card on the page.
func (l *Listing) Len() int {
	n := 0
	for _, cards := range l.grids {
		n += len(cards)
	}
	return n
}
