// Package tui is the terminal storefront: catalog grid, product detail,
// cart drawer and checkout form on top of storefront.Controller.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harry1917/basalto-web/internal/catalog"
	"github.com/harry1917/basalto-web/internal/domain"
	"github.com/harry1917/basalto-web/internal/overlay"
	"github.com/harry1917/basalto-web/internal/storefront"
)

type screen int

const (
	screenCatalog screen = iota
	screenDetail
	screenDrawer
	screenCheckout
)

// checkout form fields, in tab order
const (
	fieldFullName = iota
	fieldPhone
	fieldAddress1
	fieldAddress2
	fieldDepartment
	fieldCity
	fieldNotes
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Nombre completo",
	"Teléfono",
	"Dirección",
	"Dirección (línea 2)",
	"Departamento",
	"Ciudad",
	"Notas",
}

type submitDoneMsg struct {
	out *storefront.Outcome
	err error
}

// Model is the Bubble Tea model of the storefront.
type Model struct {
	ctx     context.Context
	ctrl    *storefront.Controller
	listing *catalog.Listing
	filter  *catalog.Filter
	notices Notices
	styles  Styles

	cursor     int
	lineCursor int

	searching bool
	search    textinput.Model

	inputs []textinput.Model
	focus  int

	busy    bool
	spinner spinner.Model
	status  string
	failed  bool

	width int
}

// New builds the model. Notices must be the channel the controller notifies.
func New(ctx context.Context, ctrl *storefront.Controller, listing *catalog.Listing, notices Notices) Model {
	search := textinput.New()
	search.Placeholder = "Buscar…"
	search.Prompt = "/ "

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = fieldLabels[i]
		ti.CharLimit = 200
		inputs[i] = ti
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		listing: listing,
		filter:  catalog.NewFilter(listing),
		notices: notices,
		styles:  DefaultStyles(),
		search:  search,
		inputs:  inputs,
		spinner: sp,
	}
}

func (m Model) Init() tea.Cmd {
	if m.notices == nil {
		return nil
	}
	return waitForNotice(m.notices)
}

// screen follows the controller's overlays; checkout sits above the drawer,
// which sits above the detail view.
func (m Model) screen() screen {
	ov := m.ctrl.Overlays()
	switch {
	case ov.IsOpen(overlay.Checkout):
		return screenCheckout
	case ov.IsOpen(overlay.Drawer):
		return screenDrawer
	case ov.IsOpen(overlay.ProductDetail):
		return screenDetail
	default:
		return screenCatalog
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case noticeMsg:
		m.status = string(msg)
		m.failed = strings.HasPrefix(m.status, storefront.MsgFailurePrefix)
		return m, waitForNotice(m.notices)

	case submitDoneMsg:
		m.busy = false
		switch {
		case msg.err == nil:
			if msg.out != nil {
				m.status = msg.out.String()
				m.failed = false
			}
			m.resetForm()
		case storefront.IsPartialSuccess(msg.err):
			// The notice may land before or after this message; keep its text either way.
			m.status = storefront.PartialSuccessMessage(msg.err)
			if msg.out != nil && msg.out.OrderNumber != "" {
				m.status += " Orden " + msg.out.OrderNumber + "."
			}
			m.failed = false
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen() {
		case screenCheckout:
			return m.updateCheckout(msg)
		case screenDrawer:
			return m.updateDrawer(msg)
		case screenDetail:
			return m.updateDetail(msg)
		default:
			return m.updateCatalog(msg)
		}
	}
	return m, nil
}

func (m Model) visibleCards() []*catalog.Card {
	res := m.filter.Result()
	out := make([]*catalog.Card, 0, res.Shown)
	for _, cv := range res.Cards {
		if cv.Visible {
			out = append(out, cv.Card)
		}
	}
	return out
}

func (m Model) updateCatalog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "enter", "esc":
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.filter.SetQuery(m.search.Value())
		m.cursor = 0
		return m, cmd
	}

	cards := m.visibleCards()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(cards)-1 {
			m.cursor++
		}
	case "tab":
		m.filter.SetTab(nextTab(m.filter.State().Tab, 1))
		m.cursor = 0
	case "shift+tab":
		m.filter.SetTab(nextTab(m.filter.State().Tab, -1))
		m.cursor = 0
	case "/":
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd
	case "s":
		m.filter.SetSleeve(m.nextOption(func(c *catalog.Card) string { return c.Sleeve }, m.filter.State().Sleeve))
		m.cursor = 0
	case "c":
		m.filter.SetColor(m.nextOption(func(c *catalog.Card) string { return c.Color }, m.filter.State().Color))
		m.cursor = 0
	case "x":
		m.search.Reset()
		m.filter.Clear()
		m.cursor = 0
	case "b":
		m.ctrl.OpenDrawer()
		m.lineCursor = 0
	case "enter":
		if m.cursor < len(cards) {
			_ = m.ctrl.OpenProduct(cards[m.cursor])
		}
	}
	return m, nil
}

// nextOption cycles a filter through "all" and the distinct values of the tab.
func (m Model) nextOption(field func(*catalog.Card) string, current string) string {
	options := []string{catalog.FilterAll}
	if m.listing == nil {
		return catalog.FilterAll
	}
	seen := map[string]bool{}
	for _, c := range m.listing.Cards(m.filter.State().Tab) {
		v := strings.TrimSpace(field(c))
		if v == "" || seen[strings.ToLower(v)] {
			continue
		}
		seen[strings.ToLower(v)] = true
		options = append(options, v)
	}
	for i, o := range options {
		if strings.EqualFold(o, current) {
			return options[(i+1)%len(options)]
		}
	}
	return catalog.FilterAll
}

func nextTab(t catalog.Tab, step int) catalog.Tab {
	for i, tab := range catalog.Tabs {
		if tab == t {
			n := len(catalog.Tabs)
			return catalog.Tabs[((i+step)%n+n)%n]
		}
	}
	return catalog.TabMen
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view, ok := m.ctrl.Detail()
	if !ok {
		return m, nil
	}
	switch msg.String() {
	case "esc", "q":
		m.ctrl.Escape()
	case "left", "h":
		m.ctrl.SelectSize(stepSize(view.Sizes, view.Size, -1))
	case "right", "l":
		m.ctrl.SelectSize(stepSize(view.Sizes, view.Size, 1))
	case "+", "=":
		m.ctrl.AdjustQty(1)
	case "-":
		m.ctrl.AdjustQty(-1)
	case "a", "enter":
		_ = m.ctrl.AddToCart()
	case "n":
		_ = m.ctrl.BuyNow()
		cmd := m.focusField(fieldFullName)
		return m, cmd
	case "g":
		if m.ctrl.GoCheckoutVisible() {
			_ = m.ctrl.GoCheckout()
			cmd := m.focusField(fieldFullName)
			return m, cmd
		}
	case "b":
		m.ctrl.OpenDrawer()
		m.lineCursor = 0
	}
	return m, nil
}

func stepSize(sizes []string, current string, step int) string {
	if len(sizes) == 0 {
		return current
	}
	for i, s := range sizes {
		if s == current {
			n := len(sizes)
			return sizes[((i+step)%n+n)%n]
		}
	}
	return sizes[0]
}

func (m Model) updateDrawer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	lines := m.ctrl.Drawer().Lines
	switch msg.String() {
	case "esc", "q", "b":
		m.ctrl.CloseDrawer()
	case "up", "k":
		if m.lineCursor > 0 {
			m.lineCursor--
		}
	case "down", "j":
		if m.lineCursor < len(lines)-1 {
			m.lineCursor++
		}
	case "+", "=":
		m.ctrl.Increment(m.lineCursor)
	case "-":
		m.ctrl.Decrement(m.lineCursor)
	case "d", "delete", "backspace":
		if m.ctrl.Remove(m.lineCursor) && m.lineCursor > 0 && m.lineCursor >= len(lines)-1 {
			m.lineCursor--
		}
	case "enter":
		if err := m.ctrl.DrawerCheckout(); err == nil {
			cmd := m.focusField(fieldFullName)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) updateCheckout(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if !m.busy {
			m.ctrl.CloseCheckout()
			m.blurAll()
		}
		return m, nil
	case "tab", "down":
		cmd := m.focusField((m.focus + 1) % fieldCount)
		return m, cmd
	case "shift+tab", "up":
		cmd := m.focusField((m.focus + fieldCount - 1) % fieldCount)
		return m, cmd
	case "ctrl+p":
		if m.ctrl.Checkout().PaymentMethod == domain.PaymentMethodCard {
			m.ctrl.SetPaymentMethod(string(domain.PaymentMethodTransfer))
		} else {
			m.ctrl.SetPaymentMethod(string(domain.PaymentMethodCard))
		}
		return m, nil
	case "ctrl+s", "enter":
		if msg.String() == "enter" && m.focus != fieldCount-1 {
			cmd := m.focusField(m.focus + 1)
			return m, cmd
		}
		if m.busy || m.ctrl.Checkout().SubmitDisabled {
			return m, nil
		}
		m.busy = true
		m.status = ""
		return m, tea.Batch(m.submitCmd(m.form()), m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) focusField(i int) tea.Cmd {
	m.blurAll()
	m.focus = i
	return m.inputs[i].Focus()
}

func (m *Model) blurAll() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

func (m *Model) resetForm() {
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	m.blurAll()
	m.focus = 0
}

func (m Model) form() storefront.CheckoutForm {
	v := func(i int) string { return m.inputs[i].Value() }
	return storefront.CheckoutForm{
		FullName:      v(fieldFullName),
		Phone:         v(fieldPhone),
		AddressLine1:  v(fieldAddress1),
		AddressLine2:  v(fieldAddress2),
		Department:    v(fieldDepartment),
		City:          v(fieldCity),
		Notes:         v(fieldNotes),
		PaymentMethod: string(m.ctrl.Checkout().PaymentMethod),
	}
}

// submitCmd runs the order request off the update loop.
func (m Model) submitCmd(form storefront.CheckoutForm) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		out, err := ctrl.Submit(ctx, form)
		return submitDoneMsg{out: out, err: err}
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render(fmt.Sprintf("BASALTO  ·  carrito (%s)", m.ctrl.Drawer().BadgeText)))
	b.WriteString("\n")

	switch m.screen() {
	case screenCheckout:
		b.WriteString(m.viewCheckout())
	case screenDrawer:
		b.WriteString(m.viewDrawer())
	case screenDetail:
		b.WriteString(m.viewDetail())
	default:
		b.WriteString(m.viewCatalog())
	}

	if m.busy {
		b.WriteString("\n" + m.spinner.View() + " " + m.ctrl.Checkout().SubmitLabel)
	} else if m.status != "" {
		style := m.styles.Status
		if m.failed {
			style = m.styles.Error
		}
		b.WriteString("\n" + style.Render(m.status))
	}
	return b.String()
}

func (m Model) viewCatalog() string {
	var b strings.Builder
	state := m.filter.State()
	tabs := make([]string, 0, len(catalog.Tabs))
	for _, t := range catalog.Tabs {
		if t == state.Tab {
			tabs = append(tabs, m.styles.TabOn.Render(string(t)))
		} else {
			tabs = append(tabs, m.styles.Tab.Render(string(t)))
		}
	}
	b.WriteString(strings.Join(tabs, " ") + "\n")
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("manga: %s  color: %s", state.Sleeve, state.Color)) + "\n")
	if m.searching || state.Query != "" {
		b.WriteString(m.search.View() + "\n")
	}
	b.WriteString(m.styles.Muted.Render(m.filter.Result().Counter) + "\n\n")

	for i, c := range m.visibleCards() {
		prefix := "  "
		if i == m.cursor {
			prefix = m.styles.Cursor.Render("> ")
		}
		label := cardLabel(c)
		if c.SoldOut {
			label = m.styles.SoldOut.Render(label)
		}
		b.WriteString(prefix + label + "\n")
	}
	b.WriteString(m.styles.Help.Render("↑/↓ elegir · enter ver · tab categoría · / buscar · s manga · c color · x limpiar · b carrito · q salir"))
	return b.String()
}

func cardLabel(c *catalog.Card) string {
	if !c.HasTrigger {
		return c.Text
	}
	parts := []string{c.Trigger.Title}
	for _, p := range []string{c.Trigger.Sleeve, c.Trigger.Color} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	label := strings.Join(parts, " · ")
	if c.Trigger.Price != "" {
		label += "  $" + c.Trigger.Price
	}
	return label
}

func (m Model) viewDetail() string {
	view, ok := m.ctrl.Detail()
	if !ok {
		return ""
	}
	var b strings.Builder
	if view.Kicker != "" {
		b.WriteString(m.styles.Muted.Render(view.Kicker) + "\n")
	}
	b.WriteString(m.styles.Price.Render(view.Title) + "\n")
	price := m.styles.Price.Render("$" + view.Price)
	if view.Compare != "" {
		price += " " + m.styles.Compare.Render("$"+view.Compare)
	}
	b.WriteString(price + "\n")
	if view.Color != "" {
		b.WriteString("Color: " + view.Color + "\n")
	}
	if view.Fabric != "" {
		b.WriteString("Tela: " + view.Fabric + "\n")
	}
	if view.ShowNeck {
		b.WriteString("Cuello: " + view.Neck + "\n")
	}
	if view.ShowSizes {
		sizes := make([]string, 0, len(view.Sizes))
		for _, s := range view.Sizes {
			if s == view.Size {
				sizes = append(sizes, m.styles.Selected.Render(s))
			} else {
				sizes = append(sizes, s)
			}
		}
		b.WriteString("Talla: " + strings.Join(sizes, " ") + "\n")
	}
	b.WriteString(fmt.Sprintf("Cantidad: %d\n\n", view.Qty))
	b.WriteString("[a] " + m.ctrl.AddButtonLabel() + "   [n] Comprar ahora")
	if m.ctrl.GoCheckoutVisible() {
		b.WriteString("   [g] Ir a pagar")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("←/→ talla · +/- cantidad · b carrito · esc cerrar"))
	return m.styles.Panel.Render(b.String())
}

func (m Model) viewDrawer() string {
	d := m.ctrl.Drawer()
	var b strings.Builder
	if d.Empty {
		b.WriteString(storefront.MsgCartEmpty + "\n")
	}
	for i, l := range d.Lines {
		prefix := "  "
		if i == m.lineCursor {
			prefix = m.styles.Cursor.Render("> ")
		}
		b.WriteString(fmt.Sprintf("%s%s  %s\n", prefix, l.Title, m.styles.Muted.Render(l.Meta)))
		b.WriteString(fmt.Sprintf("    %d x %s = %s\n", l.Qty, l.UnitPrice, l.LineTotal))
	}
	b.WriteString(summaryLines(d.Subtotal, d.Shipping, d.Total))
	b.WriteString(m.styles.Help.Render("↑/↓ línea · +/- cantidad · d quitar · enter pagar · esc cerrar"))
	return m.styles.Panel.Render(b.String())
}

func summaryLines(subtotal, shipping, total string) string {
	return fmt.Sprintf("\nSubtotal %s\nEnvío    %s\nTotal    %s\n", subtotal, shipping, total)
}

func (m Model) viewCheckout() string {
	co := m.ctrl.Checkout()
	sum := m.ctrl.Summary()
	var b strings.Builder
	for i := range m.inputs {
		label := fieldLabels[i]
		if i == m.focus {
			label = m.styles.Cursor.Render(label)
		}
		b.WriteString(fmt.Sprintf("%-22s %s\n", label, m.inputs[i].View()))
	}

	card, transfer := "( )", "( )"
	if co.PaymentMethod == domain.PaymentMethodTransfer {
		transfer = "(•)"
	} else {
		card = "(•)"
	}
	b.WriteString(fmt.Sprintf("\nPago: %s Tarjeta  %s Transferencia\n", card, transfer))
	if co.TransferBoxVisible {
		b.WriteString(m.styles.Muted.Render("Referencia: "+co.TransferRef) + "\n")
	}

	for _, l := range sum.Lines {
		b.WriteString(fmt.Sprintf("\n%d x %s %s  %s", l.Qty, l.Title, m.styles.Muted.Render(l.Meta), l.LineTotal))
	}
	b.WriteString("\n" + summaryLines(sum.Subtotal, sum.Shipping, sum.Total))

	submit := "[ctrl+s] " + co.SubmitLabel
	if co.SubmitDisabled {
		submit = m.styles.Muted.Render(submit)
	}
	b.WriteString(submit + "\n")
	b.WriteString(m.styles.Help.Render("tab campo · ctrl+p método de pago · esc volver"))
	return m.styles.Panel.Render(b.String())
}
