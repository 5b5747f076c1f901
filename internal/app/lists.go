package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"giftregistry/pkg/domain"
	"giftregistry/pkg/publicid"
)

// UpdateListParams carries the optional list fields; nil means "leave
// unchanged".
type UpdateListParams struct {
	Name        *string
	Description *string
}

// CreateList creates a list for the user with a fresh slug and share code.
func (a *App) CreateList(userID, name, description string) (domain.List, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 2 {
		return domain.List{}, badRequest("Nome da lista é obrigatório (mínimo 2 caracteres)")
	}
	listSlug, err := publicid.NewSlug(name)
	if err != nil {
		return domain.List{}, fmt.Errorf("generate slug: %w", err)
	}
	publicHash, err := publicid.NewListHash()
	if err != nil {
		return domain.List{}, fmt.Errorf("generate public hash: %w", err)
	}
	now := time.Now().UTC()
	list := domain.List{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         name,
		Description:  strings.TrimSpace(description),
		Slug:         listSlug,
		PublicHashID: publicHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveList(list); err != nil {
		return domain.List{}, fmt.Errorf("save list: %w", err)
	}
	return list, nil
}

// Lists returns the user's lists, each annotated with its live count of
// available gifts.
func (a *App) Lists(userID string) ([]domain.ListSummary, error) {
	summaries, err := a.store.ListSummariesByOwner(userID)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	return summaries, nil
}

// GetListWithGifts returns an owned list together with its available gifts in
// the requested order.
func (a *App) GetListWithGifts(userID, listID string, sort domain.SortOption) (domain.List, []domain.Gift, error) {
	list, err := a.ownedList(listID, userID, "Você não tem permissão para acessar esta lista")
	if err != nil {
		return domain.List{}, nil, err
	}
	gifts, err := a.store.ListAvailableGiftsByList(list.ID, sort)
	if err != nil {
		return domain.List{}, nil, fmt.Errorf("list gifts: %w", err)
	}
	return list, gifts, nil
}

// UpdateList changes name and/or description. Renaming regenerates the slug,
// so old share links stop resolving; the publicHashId never changes.
func (a *App) UpdateList(userID, listID string, params UpdateListParams) (domain.List, error) {
	list, err := a.ownedList(listID, userID, "Você não tem permissão para acessar esta lista")
	if err != nil {
		return domain.List{}, err
	}
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if len([]rune(name)) < 2 {
			return domain.List{}, badRequest("Nome da lista deve ter pelo menos 2 caracteres")
		}
		if name != list.Name {
			newSlug, err := publicid.NewSlug(name)
			if err != nil {
				return domain.List{}, fmt.Errorf("generate slug: %w", err)
			}
			list.Slug = newSlug
		}
		list.Name = name
	}
	if params.Description != nil {
		list.Description = strings.TrimSpace(*params.Description)
	}
	list.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveList(list); err != nil {
		return domain.List{}, fmt.Errorf("update list: %w", err)
	}
	return list, nil
}

// DeleteList removes the list and all of its gifts in one transaction.
func (a *App) DeleteList(userID, listID string) error {
	list, err := a.ownedList(listID, userID, "Você não tem permissão para acessar esta lista")
	if err != nil {
		return err
	}
	if err := a.store.DeleteListWithGifts(list.ID); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}

// ownedList loads a list and enforces ownership. A list that exists but
// belongs to someone else answers 403, never 404.
func (a *App) ownedList(listID, userID, forbiddenMessage string) (domain.List, error) {
	if err := uuid.Validate(listID); err != nil {
		return domain.List{}, badRequest("ID da lista inválido")
	}
	list, ok, err := a.store.GetList(listID)
	if err != nil {
		return domain.List{}, fmt.Errorf("fetch list: %w", err)
	}
	if !ok {
		return domain.List{}, notFound("Lista não encontrada")
	}
	if list.UserID != userID {
		return domain.List{}, forbidden(forbiddenMessage)
	}
	return list, nil
}
