package app

import (
	"fmt"

	"github.com/google/uuid"

	"giftregistry/internal/metrics"
	"giftregistry/pkg/domain"
)

// removedListLabel is shown when a gift's parent list cannot be resolved.
const removedListLabel = "Lista removida"

// PublicGift is the restricted projection exposed to anonymous visitors.
type PublicGift struct {
	ID    string   `json:"id"`
	Name  string   `json:"nome"`
	Link  string   `json:"link,omitempty"`
	Price *float64 `json:"preco,omitempty"`
}

// PublicGlobalGift annotates a public gift with its originating list for
// display grouping in the cross-list view.
type PublicGlobalGift struct {
	PublicGift
	ListName       string `json:"listaNome"`
	ListPublicHash string `json:"listaPublicHashId"`
}

// PublicListRef is the minimal list metadata shown in the global view.
type PublicListRef struct {
	PublicHashID string `json:"publicHashId"`
	Name         string `json:"nome"`
}

// PublicListView is an anonymous visitor's view of one shared list.
type PublicListView struct {
	PublicHashID string       `json:"publicHashId"`
	ListName     string       `json:"listaNome"`
	OwnerName    string       `json:"donoNome"`
	Gifts        []PublicGift `json:"gifts"`
}

// PublicGlobalView is an anonymous visitor's view of a user's whole
// collection, addressed by the user's global hash.
type PublicGlobalView struct {
	GlobalHashID string             `json:"globalHashId"`
	OwnerName    string             `json:"donoNome"`
	Gifts        []PublicGlobalGift `json:"gifts"`
	Lists        []PublicListRef    `json:"listas"`
}

// PublicList resolves a shared list by slug and returns its available gifts
// in list-priority order with the restricted field projection.
func (a *App) PublicList(slug string) (PublicListView, error) {
	list, ok, err := a.store.GetListBySlug(slug)
	if err != nil {
		return PublicListView{}, fmt.Errorf("fetch list: %w", err)
	}
	if !ok {
		return PublicListView{}, notFound("Lista não encontrada")
	}
	owner, ok, err := a.store.GetUserByID(list.UserID)
	if err != nil {
		return PublicListView{}, fmt.Errorf("fetch owner: %w", err)
	}
	if !ok {
		return PublicListView{}, notFound("Usuário não encontrado")
	}
	gifts, err := a.store.ListAvailableGiftsByList(list.ID, domain.SortPriority)
	if err != nil {
		return PublicListView{}, fmt.Errorf("list gifts: %w", err)
	}
	view := PublicListView{
		PublicHashID: list.PublicHashID,
		ListName:     list.Name,
		OwnerName:    owner.Name,
		Gifts:        make([]PublicGift, 0, len(gifts)),
	}
	for _, gift := range gifts {
		view.Gifts = append(view.Gifts, publicGift(gift))
	}
	return view, nil
}

// PublicGlobal resolves a user's cross-list view by global hash. Gifts come
// in global-priority order, annotated with their list's name and share code.
func (a *App) PublicGlobal(globalHashID string) (PublicGlobalView, error) {
	user, ok, err := a.store.GetUserByGlobalHash(globalHashID)
	if err != nil {
		return PublicGlobalView{}, fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return PublicGlobalView{}, notFound("Lista não encontrada")
	}
	lists, err := a.store.ListListsByOwner(user.ID)
	if err != nil {
		return PublicGlobalView{}, fmt.Errorf("list lists: %w", err)
	}
	gifts, err := a.store.ListAvailableGiftsByOwner(user.ID, domain.SortPriority)
	if err != nil {
		return PublicGlobalView{}, fmt.Errorf("list gifts: %w", err)
	}

	listsByID := make(map[string]domain.List, len(lists))
	view := PublicGlobalView{
		GlobalHashID: user.GlobalHashID,
		OwnerName:    user.Name,
		Gifts:        make([]PublicGlobalGift, 0, len(gifts)),
		Lists:        make([]PublicListRef, 0, len(lists)),
	}
	for _, list := range lists {
		listsByID[list.ID] = list
		view.Lists = append(view.Lists, PublicListRef{
			PublicHashID: list.PublicHashID,
			Name:         list.Name,
		})
	}
	for _, gift := range gifts {
		annotated := PublicGlobalGift{PublicGift: publicGift(gift)}
		if list, found := listsByID[gift.ListID]; found {
			annotated.ListName = list.Name
			annotated.ListPublicHash = list.PublicHashID
		} else {
			annotated.ListName = removedListLabel
		}
		view.Gifts = append(view.Gifts, annotated)
	}
	return view, nil
}

// ClaimGift marks a gift as bought on behalf of an anonymous visitor. The
// transition is a single conditional write, so exactly one of any concurrent
// claimers wins and the rest observe a conflict.
func (a *App) ClaimGift(giftID string) error {
	if err := uuid.Validate(giftID); err != nil {
		return badRequest("ID do presente inválido")
	}
	_, ok, err := a.store.GetGift(giftID)
	if err != nil {
		return fmt.Errorf("fetch gift: %w", err)
	}
	if !ok {
		return notFound("Presente não encontrado")
	}
	claimed, err := a.store.ClaimGift(giftID)
	if err != nil {
		return fmt.Errorf("claim gift: %w", err)
	}
	if !claimed {
		metrics.GiftClaimConflicts.Inc()
		return conflict("Este presente já foi comprado")
	}
	metrics.GiftsClaimed.Inc()
	return nil
}

func publicGift(gift domain.Gift) PublicGift {
	return PublicGift{
		ID:    gift.ID,
		Name:  gift.Name,
		Link:  gift.Link,
		Price: gift.Price,
	}
}
