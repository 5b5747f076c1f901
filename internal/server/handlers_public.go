package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handlePublicList(w http.ResponseWriter, r *http.Request) {
	view, err := s.app.PublicList(chi.URLParam(r, "slug"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, view)
}

func (s *Server) handlePublicGlobal(w http.ResponseWriter, r *http.Request) {
	view, err := s.app.PublicGlobal(chi.URLParam(r, "hashId"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, view)
}

func (s *Server) handleClaimGift(w http.ResponseWriter, r *http.Request) {
	if err := s.app.ClaimGift(chi.URLParam(r, "id")); err != nil {
		writeAppError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Presente marcado como comprado")
}
