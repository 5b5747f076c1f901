package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"giftregistry/internal/app"
	"giftregistry/pkg/domain"
)

type createListRequest struct {
	Name        string `json:"nome"`
	Description string `json:"descricao"`
}

type updateListRequest struct {
	Name        *string `json:"nome"`
	Description *string `json:"descricao"`
}

func (s *Server) handleLists(w http.ResponseWriter, r *http.Request, user domain.User) {
	lists, err := s.app.Lists(user.ID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"lists": lists})
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req createListRequest
	if !decodeBody(w, r, &req) {
		return
	}
	list, err := s.app.CreateList(user.ID, req.Name, req.Description)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeMessageData(w, http.StatusCreated, "Lista criada com sucesso", map[string]any{"list": list})
}

func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request, user domain.User) {
	sort := domain.ParseSortOption(r.URL.Query().Get("sort"))
	list, gifts, err := s.app.GetListWithGifts(user.ID, chi.URLParam(r, "id"), sort)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"list": list, "gifts": gifts})
}

func (s *Server) handleUpdateList(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req updateListRequest
	if !decodeBody(w, r, &req) {
		return
	}
	list, err := s.app.UpdateList(user.ID, chi.URLParam(r, "id"), app.UpdateListParams{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeMessageData(w, http.StatusOK, "Lista atualizada com sucesso", map[string]any{"list": list})
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request, user domain.User) {
	if err := s.app.DeleteList(user.ID, chi.URLParam(r, "id")); err != nil {
		writeAppError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Lista excluída com sucesso")
}

func (s *Server) handleGlobalGifts(w http.ResponseWriter, r *http.Request, user domain.User) {
	sort := domain.ParseSortOption(r.URL.Query().Get("sort"))
	view, err := s.app.GlobalGifts(user.ID, sort)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, view)
}
