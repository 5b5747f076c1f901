package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"giftregistry/internal/app"
	"giftregistry/pkg/domain"
)

type createGiftRequest struct {
	Name  string   `json:"nome"`
	Link  string   `json:"link"`
	Price *float64 `json:"preco"`
}

// updateGiftRequest keeps the raw price so an explicit null (clear the
// price) can be told apart from an absent field (leave it unchanged).
type updateGiftRequest struct {
	Name  *string         `json:"nome"`
	Link  *string         `json:"link"`
	Price json.RawMessage `json:"preco"`
}

type reorderRequest struct {
	GiftIDs []string `json:"giftIds"`
}

func (s *Server) handleCreateGift(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req createGiftRequest
	if !decodeBody(w, r, &req) {
		return
	}
	gift, err := s.app.CreateGift(user.ID, chi.URLParam(r, "listaId"), app.CreateGiftParams{
		Name:  req.Name,
		Link:  req.Link,
		Price: req.Price,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeMessageData(w, http.StatusCreated, "Presente adicionado com sucesso", map[string]any{"gift": gift})
}

func (s *Server) handleUpdateGift(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req updateGiftRequest
	if !decodeBody(w, r, &req) {
		return
	}
	params := app.UpdateGiftParams{Name: req.Name, Link: req.Link}
	if len(req.Price) > 0 {
		params.PriceSet = true
		if string(req.Price) != "null" {
			var price float64
			if err := json.Unmarshal(req.Price, &price); err != nil {
				writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
				return
			}
			params.Price = &price
		}
	}
	gift, err := s.app.UpdateGift(user.ID, chi.URLParam(r, "id"), params)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeMessageData(w, http.StatusOK, "Presente atualizado com sucesso", map[string]any{"gift": gift})
}

func (s *Server) handleDeleteGift(w http.ResponseWriter, r *http.Request, user domain.User) {
	if err := s.app.DeleteGift(user.ID, chi.URLParam(r, "id")); err != nil {
		writeAppError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Presente excluído com sucesso")
}

func (s *Server) handleReorderList(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req reorderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.app.ReorderList(user.ID, chi.URLParam(r, "listaId"), req.GiftIDs); err != nil {
		writeAppError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Ordem atualizada com sucesso")
}

func (s *Server) handleReorderGlobal(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req reorderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.app.ReorderGlobal(user.ID, req.GiftIDs); err != nil {
		writeAppError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Ordem global atualizada com sucesso")
}
