package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/harry1917/basalto-web/internal/catalog"
	"github.com/harry1917/basalto-web/internal/domain"
	"github.com/harry1917/basalto-web/internal/repository"
	"github.com/harry1917/basalto-web/pkg/errors"
)

// CatalogEntries groups the sellable variants into listing cards: one card
// per title, sleeve, color, image and price, long sleeves first.
func CatalogEntries(ctx context.Context, repos *repository.Repositories) ([]catalog.Entry, error) {
	variants, err := repos.Variant.ListActiveInStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	return GroupVariants(variants), nil
}

type cardKey struct {
	title, sleeve, color, img, price, compare string
}

// GroupVariants builds listing cards from variants.
func GroupVariants(variants []*domain.Variant) []catalog.Entry {
	groups := make(map[cardKey][]*domain.Variant)
	var order []cardKey
	for _, v := range variants {
		k := cardKey{v.Title, v.Sleeve, v.Color, v.Img, v.Price.String(), v.CompareAt.String()}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], v)
	}

	entries := make([]catalog.Entry, 0, len(order))
	for _, k := range order {
		group := groups[k]
		sort.SliceStable(group, func(i, j int) bool { return sizeRank(group[i].Size) < sizeRank(group[j].Size) })

		skus := catalog.NewSKUMap()
		for _, v := range group {
			skus.Set(v.Size, v.SKU)
		}
		first := group[0]
		title := first.Title
		if title == "" {
			title = "Producto"
		}
		entries = append(entries, catalog.Entry{
			Title:   title,
			Sleeve:  first.Sleeve,
			Color:   first.Color,
			Fabric:  first.Fabric,
			Img:     first.Img,
			Price:   first.Price,
			Compare: first.CompareAt,
			SKUs:    skus,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		li, lj := isLongSleeve(entries[i].Sleeve), isLongSleeve(entries[j].Sleeve)
		if li != lj {
			return li
		}
		return entries[i].Color < entries[j].Color
	})
	return entries
}

func isLongSleeve(sleeve string) bool {
	return strings.Contains(strings.ToLower(sleeve), "larga")
}

func sizeRank(size string) int {
	for i, s := range catalog.DefaultSizeLadder {
		if s == size {
			return i
		}
	}
	return len(catalog.DefaultSizeLadder)
}

type seedCard struct {
	img, sleeve, sl, color, cc, price, compare string
}

var seedCards = []seedCard{
	{"images/catalogo/1.webp", "Manga larga", "ML", "Negro", "NGR", "30", "35"},
	{"images/catalogo/2.webp", "Manga larga", "ML", "Azul", "AZL", "30", "35"},
	{"images/catalogo/3.webp", "Manga larga", "ML", "Blanco", "BLN", "30", "35"},
	{"images/catalogo/4.webp", "Manga larga", "ML", "Verde musgo", "VMU", "30", "35"},
	{"images/catalogo/5.webp", "Manga larga", "ML", "Beige", "BEI", "30", "35"},
	{"images/catalogo/6.webp", "Manga corta", "MC", "Negro", "NGR", "25", "30"},
	{"images/catalogo/7.webp", "Manga corta", "MC", "Azul", "AZL", "25", "30"},
	{"images/catalogo/8.webp", "Manga corta", "MC", "Blanco", "BLN", "25", "30"},
	{"images/catalogo/9.webp", "Manga corta", "MC", "Verde musgo", "VMU", "25", "30"},
	{"images/catalogo/10.webp", "Manga corta", "MC", "Beige", "BEI", "25", "30"},
}

// SeedInventory is the starting stock of every seeded variant.
const SeedInventory = 12

// SeedVariants returns the launch catalog: ten shirt cards in five sizes.
func SeedVariants() []*domain.Variant {
	variants := make([]*domain.Variant, 0, len(seedCards)*len(catalog.DefaultSizeLadder))
	for _, c := range seedCards {
		for _, size := range catalog.DefaultSizeLadder {
			variants = append(variants, &domain.Variant{
				SKU:               fmt.Sprintf("BAS-CC-%s-%s-%s", c.sl, c.cc, size),
				Title:             DefaultItemTitle,
				Sleeve:            c.sleeve,
				Color:             c.color,
				Size:              size,
				Fabric:            "Manta hindú",
				Img:               c.img,
				Price:             decimal.RequireFromString(c.price),
				CompareAt:         decimal.RequireFromString(c.compare),
				Inventory:         SeedInventory,
				LowStockThreshold: 3,
				Active:            true,
			})
		}
	}
	return variants
}

// Seed writes the launch catalog. Existing variants keep their inventory;
// only their display data is refreshed.
func Seed(ctx context.Context, repos *repository.Repositories) (created, updated int, err error) {
	for _, v := range SeedVariants() {
		existing, getErr := repos.Variant.GetBySKU(ctx, v.SKU)
		switch getErr.(type) {
		case nil:
			if sameDisplay(existing, v) {
				continue
			}
			v.ID = existing.ID
			v.Inventory = existing.Inventory
			v.LowStockThreshold = existing.LowStockThreshold
			v.Active = existing.Active
			updated++
		case *errors.ErrNotFound:
			created++
		default:
			return created, updated, getErr
		}
		if err := repos.Variant.Upsert(ctx, v); err != nil {
			return created, updated, fmt.Errorf("upsert %s: %w", v.SKU, err)
		}
	}
	return created, updated, nil
}

func sameDisplay(a, b *domain.Variant) bool {
	return a.Img == b.Img && a.Sleeve == b.Sleeve && a.Color == b.Color &&
		a.Price.Equal(b.Price) && a.CompareAt.Equal(b.CompareAt)
}
