package catalog

import (
	"fmt"
	"strings"
)

// FilterAll is the "show everything" value of the sleeve and color filters.
const FilterAll = "all"

// NoResults is the counter text of an empty category.
const NoResults = "Sin resultados"

// FilterState is the current selection of the catalog filter bar.
type FilterState struct {
	Tab    Tab
	Sleeve string
	Color  string
	Query  string
}

// CardVisibility pairs a card with whether the filters let it through.
type CardVisibility struct {
	Card    *Card
	Visible bool
}

// FilterResult is the outcome of evaluating the filters on the active tab.
type FilterResult struct {
	Tab     Tab
	Cards   []CardVisibility
	Shown   int
	Total   int
	Counter string
}

// Filter narrows the active category's cards by sleeve, color and free text.
// Every setter re-evaluates immediately.
type Filter struct {
	listing *Listing
	state   FilterState
	last    FilterResult
}

// NewFilter starts on the men tab with every filter cleared.
func NewFilter(l *Listing) *Filter {
	f := &Filter{
		listing: l,
		state:   FilterState{Tab: TabMen, Sleeve: FilterAll, Color: FilterAll},
	}
	f.Apply()
	return f
}

// State returns the current filter values.
func (f *Filter) State() FilterState {
	return f.state
}

// Result returns the last evaluation.
func (f *Filter) Result() FilterResult {
	return f.last
}

// SetTab switches category; filter values are kept.
func (f *Filter) SetTab(t Tab) FilterResult {
	f.state.Tab = ParseTab(string(t))
	return f.Apply()
}

func (f *Filter) SetSleeve(v string) FilterResult {
	f.state.Sleeve = filterValue(v)
	return f.Apply()
}

func (f *Filter) SetColor(v string) FilterResult {
	f.state.Color = filterValue(v)
	return f.Apply()
}

func (f *Filter) SetQuery(q string) FilterResult {
	f.state.Query = q
	return f.Apply()
}

// Clear resets sleeve, color and query; the tab stays.
func (f *Filter) Clear() FilterResult {
	f.state.Sleeve = FilterAll
	f.state.Color = FilterAll
	f.state.Query = ""
	return f.Apply()
}

// Apply evaluates the filters against the active tab.
func (f *Filter) Apply() FilterResult {
	res := FilterResult{Tab: f.state.Tab}
	if f.listing == nil || !f.listing.HasTab(f.state.Tab) {
		res.Counter = Counter(0, 0)
		f.last = res
		return res
	}

	cards := f.listing.Cards(f.state.Tab)
	res.Total = len(cards)
	res.Cards = make([]CardVisibility, 0, len(cards))
	for _, c := range cards {
		ok := f.matches(c)
		if ok {
			res.Shown++
		}
		res.Cards = append(res.Cards, CardVisibility{Card: c, Visible: ok})
	}
	res.Counter = Counter(res.Shown, res.Total)
	f.last = res
	return res
}

func (f *Filter) matches(c *Card) bool {
	if f.state.Sleeve != FilterAll && fold(c.Sleeve) != fold(f.state.Sleeve) {
		return false
	}
	if f.state.Color != FilterAll && fold(c.Color) != fold(f.state.Color) {
		return false
	}
	if q := fold(f.state.Query); q != "" && !strings.Contains(fold(c.Text), q) {
		return false
	}
	return true
}

// Counter renders the results line shown above the grid.
func Counter(shown, total int) string {
	if total == 0 {
		return NoResults
	}
	return fmt.Sprintf("Mostrando %d de %d", shown, total)
}

func filterValue(v string) string {
	if strings.TrimSpace(v) == "" {
		return FilterAll
	}
	if strings.EqualFold(strings.TrimSpace(v), FilterAll) {
		return FilterAll
	}
	return v
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
