package store

import (
	"sort"
	"strings"

	"giftregistry/pkg/domain"
)

// missingPriceLast pushes gifts without a price behind every priced gift,
// regardless of the price sort direction.
const missingPriceLast = "CASE WHEN price IS NULL THEN 1 ELSE 0 END ASC"

// orderClause maps a sort option to a SQL ORDER BY expression. The priority
// token resolves to a different column depending on the scope; all other
// tokens are scope-independent.
func orderClause(sortOpt domain.SortOption, scope domain.PriorityScope) string {
	switch sortOpt {
	case domain.SortName:
		return "name ASC"
	case domain.SortPriceAsc:
		return missingPriceLast + ", price ASC, name ASC"
	case domain.SortPriceDesc:
		return missingPriceLast + ", price DESC, name ASC"
	case domain.SortInsertionAsc:
		return "inserted_at ASC"
	case domain.SortInsertionDesc:
		return "inserted_at DESC"
	default:
		if scope == domain.ScopeGlobal {
			return "global_priority ASC"
		}
		return "list_priority ASC"
	}
}

// SortGifts orders a slice in place, mirroring orderClause for stores that
// sort in memory.
func SortGifts(gifts []domain.Gift, sortOpt domain.SortOption, scope domain.PriorityScope) {
	sort.SliceStable(gifts, func(i, j int) bool {
		return giftLess(gifts[i], gifts[j], sortOpt, scope)
	})
}

func giftLess(a, b domain.Gift, sortOpt domain.SortOption, scope domain.PriorityScope) bool {
	switch sortOpt {
	case domain.SortName:
		return strings.Compare(a.Name, b.Name) < 0
	case domain.SortPriceAsc, domain.SortPriceDesc:
		return priceLess(a, b, sortOpt == domain.SortPriceDesc)
	case domain.SortInsertionAsc:
		return a.InsertedAt.Before(b.InsertedAt)
	case domain.SortInsertionDesc:
		return b.InsertedAt.Before(a.InsertedAt)
	default:
		if scope == domain.ScopeGlobal {
			return a.GlobalPriority < b.GlobalPriority
		}
		return a.ListPriority < b.ListPriority
	}
}

func priceLess(a, b domain.Gift, desc bool) bool {
	switch {
	case a.Price == nil && b.Price == nil:
		return strings.Compare(a.Name, b.Name) < 0
	case a.Price == nil:
		return false
	case b.Price == nil:
		return true
	case *a.Price != *b.Price:
		if desc {
			return *a.Price > *b.Price
		}
		return *a.Price < *b.Price
	default:
		return strings.Compare(a.Name, b.Name) < 0
	}
}
