package storefront

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harry1917/basalto-web/internal/catalog"
)

// Script is a scripted checkout: which cards go into the cart and what the
// shopper types into the form.
type Script struct {
	Customer CheckoutForm `yaml:"customer"`
	Items    []ScriptItem `yaml:"items"`
}

// ScriptItem picks a listing card by tab plus sleeve and color filter values,
// or by position when Index is set.
type ScriptItem struct {
	Tab    string `yaml:"tab"`
	Sleeve string `yaml:"sleeve"`
	Color  string `yaml:"color"`
	Index  *int   `yaml:"index"`
	Size   string `yaml:"size"`
	Qty    int    `yaml:"qty"`
}

// LoadScript decodes a YAML checkout script.
func LoadScript(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode checkout script: %w", err)
	}
	return &s, nil
}

func (it ScriptItem) find(l *catalog.Listing) (*catalog.Card, error) {
	tab := catalog.ParseTab(it.Tab)
	if it.Index != nil {
		card, ok := l.Card(tab, *it.Index)
		if !ok {
			return nil, fmt.Errorf("no card %d in tab %s", *it.Index, tab)
		}
		return card, nil
	}
	for _, c := range l.Cards(tab) {
		if it.Sleeve != "" && !strings.EqualFold(c.Sleeve, strings.TrimSpace(it.Sleeve)) {
			continue
		}
		if it.Color != "" && !strings.EqualFold(c.Color, strings.TrimSpace(it.Color)) {
			continue
		}
		return c, nil
	}
	return nil, fmt.Errorf("no card in tab %s matches sleeve=%q color=%q", tab, it.Sleeve, it.Color)
}

// Run fills the cart through the product flow, then submits the form.
// Each item goes through the detail view exactly as a shopper would.
func (s *Script) Run(ctx context.Context, c *Controller, l *catalog.Listing) (*Outcome, error) {
	for i, it := range s.Items {
		card, err := it.find(l)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		if err := c.OpenProduct(card); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		if it.Size != "" {
			c.SelectSize(it.Size)
		}
		if it.Qty > 0 {
			c.SetQty(it.Qty)
		}
		if err := c.AddToCart(); err != nil {
			c.CloseProduct()
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		c.CloseProduct()
	}

	c.OpenCheckout()
	if s.Customer.PaymentMethod != "" {
		c.SetPaymentMethod(s.Customer.PaymentMethod)
	}
	return c.Submit(ctx, s.Customer)
}
