// Package transport is the HTTP surface over directory.Service: one
// router, one handler function per route, request bodies decoded with
// encoding/json.
package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/forestrie/ic-siglog/directory"
)

// Server is the HTTP surface for the five directory operations plus
// static-asset serving.
type Server struct {
	router  *mux.Router
	service *directory.Service
	assets  *directory.Assets
}

// NewServer builds a Server ready to ListenAndServe.
func NewServer(service *directory.Service, assets *directory.Assets) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		service: service,
		assets:  assets,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.HandleFunc("/users", s.handleRegister).Methods(http.MethodPost)
	s.router.HandleFunc("/users/{id}/devices", s.handleAdd).Methods(http.MethodPost)
	s.router.HandleFunc("/users/{id}/devices", s.handleRemove).Methods(http.MethodDelete)
	s.router.HandleFunc("/users/{id}/devices", s.handleLookup).Methods(http.MethodGet)
	s.router.HandleFunc("/users/{id}/delegation", s.handleGetDelegation).Methods(http.MethodGet)
	s.router.PathPrefix("/").HandlerFunc(s.handleAsset).Methods(http.MethodGet)
}

type deviceRequest struct {
	Alias        string `json:"alias"`
	PublicKey    []byte `json:"public_key"`
	CredentialID []byte `json:"credential_id,omitempty"`
}

func userIDFromPath(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseUint(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid or missing user_id", http.StatusBadRequest)
		return
	}
	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = s.service.Register(userID, req.Alias, req.PublicKey, req.CredentialID)
	s.writeMutationResult(w, err, http.StatusCreated)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = s.service.Add(userID, req.Alias, req.PublicKey, req.CredentialID)
	s.writeMutationResult(w, err, http.StatusOK)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	pk, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = s.service.Remove(userID, pk)
	s.writeMutationResult(w, err, http.StatusOK)
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	entries, err := s.service.Lookup(userID)
	if err != nil {
		s.writeMutationResult(w, err, http.StatusOK)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

func (s *Server) handleGetDelegation(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	pk := []byte(r.URL.Query().Get("public_key"))

	signed, err := s.service.GetDelegation(userID, pk)
	if err != nil {
		s.writeMutationResult(w, err, http.StatusOK)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(signed)
}

// handleAsset implements the http_request static-asset behavior: assets
// are keyed by the full URL path before any "?" (leading slash included),
// and the 404 body is literally "Asset <path> not found."
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	content, ok := s.assets.Get(path)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(directory.NotFoundBody(path)))
		return
	}
	w.Write(content)
}

// writeMutationResult maps a directory error to its HTTP status with the
// sentinel's message as the body, or writes successStatus with no body on
// success.
func (s *Server) writeMutationResult(w http.ResponseWriter, err error, successStatus int) {
	if err == nil {
		w.WriteHeader(successStatus)
		return
	}
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, directory.ErrAlreadyRegistered):
		status = http.StatusConflict
	case errors.Is(err, directory.ErrUnknownUser),
		errors.Is(err, directory.ErrUnknownDevice),
		errors.Is(err, directory.ErrNoSignature):
		status = http.StatusNotFound
	case errors.Is(err, directory.ErrPersistenceFailure):
		status = http.StatusInternalServerError
	}
	http.Error(w, err.Error(), status)
}
