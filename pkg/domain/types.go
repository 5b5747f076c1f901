package domain

import "time"

type GiftStatus string

const (
	GiftAvailable GiftStatus = "disponivel"
	GiftBought    GiftStatus = "comprado"
)

// SortOption selects the ordering of a gift listing. The tokens are part of
// the public API contract.
type SortOption string

const (
	SortPriority      SortOption = "prioridade"
	SortName          SortOption = "nome"
	SortPriceAsc      SortOption = "preco-asc"
	SortPriceDesc     SortOption = "preco-desc"
	SortInsertionAsc  SortOption = "insercao-asc"
	SortInsertionDesc SortOption = "insercao-desc"
)

// ParseSortOption maps a raw query token to a SortOption, defaulting to
// priority order for empty or unknown tokens.
func ParseSortOption(raw string) SortOption {
	switch SortOption(raw) {
	case SortName, SortPriceAsc, SortPriceDesc, SortInsertionAsc, SortInsertionDesc:
		return SortOption(raw)
	default:
		return SortPriority
	}
}

// PriorityScope selects which of the two independent priority orderings a
// gift query or reorder applies to.
type PriorityScope string

const (
	ScopeList   PriorityScope = "list"
	ScopeGlobal PriorityScope = "global"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"nome"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	GlobalHashID string    `json:"globalHashId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type List struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Name         string    `json:"nome"`
	Description  string    `json:"descricao,omitempty"`
	Slug         string    `json:"slug"`
	PublicHashID string    `json:"publicHashId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ListSummary is a list annotated with a live count of its available gifts.
type ListSummary struct {
	List
	TotalGifts int `json:"totalPresentes"`
}

// Gift carries two independent priority positions: one scoped to its list and
// one scoped to all gifts of its owner. A nil price means "no price set" and
// such gifts sort after every priced gift on the price orderings.
type Gift struct {
	ID             string     `json:"id"`
	ListID         string     `json:"listaId"`
	UserID         string     `json:"userId"`
	Name           string     `json:"nome"`
	Link           string     `json:"link,omitempty"`
	Price          *float64   `json:"preco,omitempty"`
	Status         GiftStatus `json:"status"`
	ListPriority   int        `json:"ordemPrioridadeLista"`
	GlobalPriority int        `json:"ordemPrioridadeGlobal"`
	InsertedAt     time.Time  `json:"ordemInsercao"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
