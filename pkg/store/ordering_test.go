package store

import (
	"testing"
	"time"

	"giftregistry/pkg/domain"
)

func price(v float64) *float64 { return &v }

func namedGifts(gifts []domain.Gift) []string {
	names := make([]string, 0, len(gifts))
	for _, g := range gifts {
		names = append(names, g.Name)
	}
	return names
}

func sameOrder(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestSortGiftsPriorityPerScope(t *testing.T) {
	gifts := []domain.Gift{
		{Name: "b", ListPriority: 1, GlobalPriority: 0},
		{Name: "a", ListPriority: 0, GlobalPriority: 1},
	}

	listOrder := append([]domain.Gift(nil), gifts...)
	SortGifts(listOrder, domain.SortPriority, domain.ScopeList)
	if !sameOrder(namedGifts(listOrder), []string{"a", "b"}) {
		t.Fatalf("list scope: got %v", namedGifts(listOrder))
	}

	globalOrder := append([]domain.Gift(nil), gifts...)
	SortGifts(globalOrder, domain.SortPriority, domain.ScopeGlobal)
	if !sameOrder(namedGifts(globalOrder), []string{"b", "a"}) {
		t.Fatalf("global scope: got %v", namedGifts(globalOrder))
	}
}

func TestSortGiftsUnpricedAlwaysLast(t *testing.T) {
	gifts := []domain.Gift{
		{Name: "towels"},
		{Name: "blender", Price: price(150)},
		{Name: "apron"},
		{Name: "mixer", Price: price(300)},
	}

	asc := append([]domain.Gift(nil), gifts...)
	SortGifts(asc, domain.SortPriceAsc, domain.ScopeList)
	if !sameOrder(namedGifts(asc), []string{"blender", "mixer", "apron", "towels"}) {
		t.Fatalf("price asc: got %v", namedGifts(asc))
	}

	desc := append([]domain.Gift(nil), gifts...)
	SortGifts(desc, domain.SortPriceDesc, domain.ScopeList)
	if !sameOrder(namedGifts(desc), []string{"mixer", "blender", "apron", "towels"}) {
		t.Fatalf("price desc: got %v", namedGifts(desc))
	}
}

func TestSortGiftsNameBreaksPriceTies(t *testing.T) {
	gifts := []domain.Gift{
		{Name: "zeta", Price: price(100)},
		{Name: "alpha", Price: price(100)},
	}
	SortGifts(gifts, domain.SortPriceDesc, domain.ScopeList)
	if !sameOrder(namedGifts(gifts), []string{"alpha", "zeta"}) {
		t.Fatalf("tie break: got %v", namedGifts(gifts))
	}
}

func TestSortGiftsByInsertion(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	gifts := []domain.Gift{
		{Name: "second", InsertedAt: base.Add(time.Minute)},
		{Name: "first", InsertedAt: base},
		{Name: "third", InsertedAt: base.Add(2 * time.Minute)},
	}

	asc := append([]domain.Gift(nil), gifts...)
	SortGifts(asc, domain.SortInsertionAsc, domain.ScopeList)
	if !sameOrder(namedGifts(asc), []string{"first", "second", "third"}) {
		t.Fatalf("insertion asc: got %v", namedGifts(asc))
	}

	desc := append([]domain.Gift(nil), gifts...)
	SortGifts(desc, domain.SortInsertionDesc, domain.ScopeList)
	if !sameOrder(namedGifts(desc), []string{"third", "second", "first"}) {
		t.Fatalf("insertion desc: got %v", namedGifts(desc))
	}
}

func TestParseSortOptionDefaultsToPriority(t *testing.T) {
	cases := map[string]domain.SortOption{
		"":            domain.SortPriority,
		"prioridade":  domain.SortPriority,
		"nome":        domain.SortName,
		"preco-asc":   domain.SortPriceAsc,
		"preco-desc":  domain.SortPriceDesc,
		"insercao-asc": domain.SortInsertionAsc,
		"banana":      domain.SortPriority,
	}
	for raw, want := range cases {
		if got := domain.ParseSortOption(raw); got != want {
			t.Fatalf("parse %q: got %q want %q", raw, got, want)
		}
	}
}
