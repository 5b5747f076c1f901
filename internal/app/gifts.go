package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"giftregistry/pkg/domain"
)

// CreateGiftParams carries the fields of a new gift. A nil price means the
// gift has no price set.
type CreateGiftParams struct {
	Name  string
	Link  string
	Price *float64
}

// UpdateGiftParams carries the optional gift fields. Name and Link are left
// unchanged when nil; Price only changes when PriceSet is true, and a nil
// Price with PriceSet clears the stored price.
type UpdateGiftParams struct {
	Name     *string
	Link     *string
	Price    *float64
	PriceSet bool
}

// GlobalView is a user's cross-list gift collection with its share code.
type GlobalView struct {
	Gifts        []domain.Gift `json:"gifts"`
	GlobalHashID string        `json:"globalHashId"`
}

// CreateGift adds a gift to an owned list. Both priority positions are
// assigned max+1 from two independent scope queries.
func (a *App) CreateGift(userID, listID string, params CreateGiftParams) (domain.Gift, error) {
	name := strings.TrimSpace(params.Name)
	if len([]rune(name)) < 2 {
		return domain.Gift{}, badRequest("Nome do presente é obrigatório (mínimo 2 caracteres)")
	}
	if params.Price != nil && *params.Price < 0 {
		return domain.Gift{}, validationFailed(map[string]string{"preco": "Preço não pode ser negativo"})
	}
	list, err := a.ownedList(listID, userID, "Você não tem permissão para adicionar presentes nesta lista")
	if err != nil {
		return domain.Gift{}, err
	}
	listPos, err := a.store.NextListPriority(list.ID)
	if err != nil {
		return domain.Gift{}, fmt.Errorf("next list priority: %w", err)
	}
	globalPos, err := a.store.NextGlobalPriority(list.UserID)
	if err != nil {
		return domain.Gift{}, fmt.Errorf("next global priority: %w", err)
	}
	now := time.Now().UTC()
	gift := domain.Gift{
		ID:             uuid.NewString(),
		ListID:         list.ID,
		UserID:         list.UserID,
		Name:           name,
		Link:           strings.TrimSpace(params.Link),
		Price:          params.Price,
		Status:         domain.GiftAvailable,
		ListPriority:   listPos,
		GlobalPriority: globalPos,
		InsertedAt:     now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := a.store.SaveGift(gift); err != nil {
		return domain.Gift{}, fmt.Errorf("save gift: %w", err)
	}
	return gift, nil
}

// UpdateGift changes name, link and/or price of an owned gift.
func (a *App) UpdateGift(userID, giftID string, params UpdateGiftParams) (domain.Gift, error) {
	gift, err := a.ownedGift(giftID, userID)
	if err != nil {
		return domain.Gift{}, err
	}
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if len([]rune(name)) < 2 {
			return domain.Gift{}, badRequest("Nome do presente deve ter pelo menos 2 caracteres")
		}
		gift.Name = name
	}
	if params.Link != nil {
		gift.Link = strings.TrimSpace(*params.Link)
	}
	if params.PriceSet {
		if params.Price != nil && *params.Price < 0 {
			return domain.Gift{}, validationFailed(map[string]string{"preco": "Preço não pode ser negativo"})
		}
		gift.Price = params.Price
	}
	gift.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveGift(gift); err != nil {
		return domain.Gift{}, fmt.Errorf("update gift: %w", err)
	}
	return gift, nil
}

// DeleteGift removes an owned gift.
func (a *App) DeleteGift(userID, giftID string) error {
	gift, err := a.ownedGift(giftID, userID)
	if err != nil {
		return err
	}
	if err := a.store.DeleteGift(gift.ID); err != nil {
		return fmt.Errorf("delete gift: %w", err)
	}
	return nil
}

// ReorderList persists a caller-supplied full ordering of a list's gifts.
// Each id takes its positional index as list priority; ids outside the list
// are silent no-ops.
func (a *App) ReorderList(userID, listID string, giftIDs []string) error {
	if len(giftIDs) == 0 {
		return badRequest("Lista de IDs é obrigatória")
	}
	list, err := a.ownedList(listID, userID, "Você não tem permissão para reordenar esta lista")
	if err != nil {
		return err
	}
	if err := a.store.SetListPriorities(list.ID, list.UserID, giftIDs); err != nil {
		return fmt.Errorf("set list priorities: %w", err)
	}
	return nil
}

// ReorderGlobal persists a caller-supplied full ordering of the user's whole
// gift collection, touching only the global priorities.
func (a *App) ReorderGlobal(userID string, giftIDs []string) error {
	if len(giftIDs) == 0 {
		return badRequest("Lista de IDs é obrigatória")
	}
	if err := a.store.SetGlobalPriorities(userID, giftIDs); err != nil {
		return fmt.Errorf("set global priorities: %w", err)
	}
	return nil
}

// GlobalGifts returns the user's available gifts across all lists, sorted in
// global scope, together with the user's global share code.
func (a *App) GlobalGifts(userID string, sort domain.SortOption) (GlobalView, error) {
	gifts, err := a.store.ListAvailableGiftsByOwner(userID, sort)
	if err != nil {
		return GlobalView{}, fmt.Errorf("list gifts: %w", err)
	}
	user, err := a.GetUser(userID)
	if err != nil {
		return GlobalView{}, err
	}
	return GlobalView{Gifts: gifts, GlobalHashID: user.GlobalHashID}, nil
}

func (a *App) ownedGift(giftID, userID string) (domain.Gift, error) {
	if err := uuid.Validate(giftID); err != nil {
		return domain.Gift{}, badRequest("ID do presente inválido")
	}
	gift, ok, err := a.store.GetGift(giftID)
	if err != nil {
		return domain.Gift{}, fmt.Errorf("fetch gift: %w", err)
	}
	if !ok {
		return domain.Gift{}, notFound("Presente não encontrado")
	}
	if gift.UserID != userID {
		return domain.Gift{}, forbidden("Você não tem permissão para acessar este presente")
	}
	return gift, nil
}
