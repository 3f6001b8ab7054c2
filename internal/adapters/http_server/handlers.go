// internal/adapters/http_server/handlers.go
package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"sonachala/internal/app"
	"sonachala/internal/domain"
)

const maxProofBytes = 10 << 20 // payment proof images

type Handlers struct {
	Sessions      *app.SessionStore
	Catalog       *app.CatalogService
	Submit        *app.SubmissionService
	FallbackHotel domain.Hotel
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/hotel", h.getHotel)
	s.mux.Get("/v1/rooms", h.getRooms)
	s.mux.Post("/v1/sessions", h.createSession)
	s.mux.Get("/v1/sessions/{id}/rooms", h.getSessionRooms)
	s.mux.Put("/v1/sessions/{id}/stay", h.putStay)
	s.mux.Put("/v1/sessions/{id}/rooms/{roomID}", h.putSelection)
	s.mux.Get("/v1/sessions/{id}/summary", h.getSummary)
	s.mux.Post("/v1/sessions/{id}/refresh", h.refresh)
	s.mux.Post("/v1/sessions/{id}/booking", h.postBooking)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func (h *Handlers) session(w http.ResponseWriter, r *http.Request) *app.Session {
	sess, err := h.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "unknown or expired session")
		return nil
	}
	return sess
}

// ---- session lifecycle ----

type sessionResponse struct {
	ID       string `json:"id"`
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
	Nights   int    `json:"nights"`
}

func sessionToResponse(s *app.Session) sessionResponse {
	stay := s.Stay()
	return sessionResponse{
		ID:       s.ID,
		CheckIn:  stay.CheckIn.Format("2006-01-02"),
		CheckOut: stay.CheckOut.Format("2006-01-02"),
		Nights:   domain.Nights(stay),
	}
}

func (h *Handlers) createSession(w http.ResponseWriter, r *http.Request) {
	sess := h.Sessions.Create()
	writeJSON(w, http.StatusCreated, sessionToResponse(sess))
}

// ---- catalog ----

type roomsResponse struct {
	domain.CatalogSnapshot
	UsingFallbackData bool `json:"usingFallbackData"`
	Nights            int  `json:"nights"`
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	hotel, source := h.Catalog.Hotel(r.Context(), h.FallbackHotel)
	writeJSON(w, http.StatusOK, struct {
		domain.Hotel
		Source domain.CatalogSource `json:"source"`
	}{hotel, source})
}

func (h *Handlers) getRooms(w http.ResponseWriter, r *http.Request) {
	stay, err := parseStayQuery(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid dates", err.Error())
		return
	}
	snap := h.Catalog.Fetch(r.Context(), stay)
	writeJSON(w, http.StatusOK, roomsResponse{snap, snap.UsingFallback(), domain.Nights(stay)})
}

func (h *Handlers) getSessionRooms(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	stay := sess.Stay()
	snap := h.Catalog.Fetch(r.Context(), stay)
	writeJSON(w, http.StatusOK, roomsResponse{snap, snap.UsingFallback(), domain.Nights(stay)})
}

func (h *Handlers) refresh(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	stay := sess.Stay()
	if !stay.Complete() {
		writeProblem(w, http.StatusUnprocessableEntity, "Dates required", "check-in and check-out dates are required")
		return
	}
	snap := h.Catalog.Refresh(r.Context(), stay, "explicit")
	writeJSON(w, http.StatusOK, roomsResponse{snap, snap.UsingFallback(), domain.Nights(stay)})
}

// ---- stay & selection ----

type stayRequest struct {
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
}

func (h *Handlers) putStay(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req stayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "expected JSON with checkIn and checkOut")
		return
	}
	stay, err := parseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid dates", err.Error())
		return
	}
	if err := sess.SetStay(stay); err != nil {
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid stay", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(sess))
}

type selectionRequest struct {
	RoomCount     int `json:"roomCount"`
	Adults        int `json:"adults"`
	ChildAge5to12 int `json:"childAge5to12"`
	ChildBelow5   int `json:"childBelow5"`
}

func (h *Handlers) putSelection(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	roomID := chi.URLParam(r, "roomID")

	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "expected a JSON room selection")
		return
	}

	// sold-out rooms reject positive selections at this boundary; the
	// pricing engine itself does not re-validate the bound
	if req.RoomCount > 0 {
		if room, ok := h.Catalog.Fetch(r.Context(), sess.Stay()).Find(roomID); ok && room.SoldOut() {
			writeProblem(w, http.StatusConflict, "Sold out", "this room type has no remaining availability")
			return
		}
	}

	sel := domain.Selection{
		RoomID:        roomID,
		RoomCount:     req.RoomCount,
		Adults:        req.Adults,
		ChildAge5to12: req.ChildAge5to12,
		ChildBelow5:   req.ChildBelow5,
	}
	if err := sess.SetSelection(sel); err != nil {
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid selection", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess.Selections()[roomID])
}

func (h *Handlers) getSummary(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	stay := sess.Stay()
	snap := h.Catalog.Fetch(r.Context(), stay)
	writeJSON(w, http.StatusOK, domain.ComputeBreakdown(stay, sess.Selections(), snap.All()))
}

// ---- booking submission ----

func (h *Handlers) postBooking(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	if err := r.ParseMultipartForm(maxProofBytes); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "expected a multipart booking form")
		return
	}

	in := app.SubmitInput{
		Guest: domain.GuestInfo{
			FirstName: r.FormValue("firstName"),
			LastName:  r.FormValue("lastName"),
			Email:     r.FormValue("email"),
			Phone:     r.FormValue("phone"),
			City:      r.FormValue("city"),
			Country:   r.FormValue("country"),
		},
		PaymentMethod: r.FormValue("paymentMethod"),
		UserAgent:     r.UserAgent(),
		ClientIP:      remoteIP(r),
	}

	if file, header, err := r.FormFile("paymentProof"); err == nil {
		// read one byte past the cap to tell truncation from an exact fit
		data, rerr := io.ReadAll(io.LimitReader(file, maxProofBytes+1))
		_ = file.Close()
		if rerr != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid upload", "could not read the payment proof")
			return
		}
		if len(data) > maxProofBytes {
			writeProblem(w, http.StatusUnprocessableEntity, "Validation failed", "payment proof must be 10 MB or smaller")
			return
		}
		in.Proof = &domain.ProofFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	res, err := h.Submit.Submit(r.Context(), sess, in)
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handlers) writeSubmitError(w http.ResponseWriter, err error) {
	var (
		vErr *domain.ValidationError
		cErr *domain.ConnectivityError
		sErr *domain.ServerError
	)
	switch {
	case errors.As(err, &vErr):
		writeProblem(w, http.StatusUnprocessableEntity, "Validation failed", vErr.Error())
	case errors.Is(err, domain.ErrSubmissionInProgress):
		writeProblem(w, http.StatusConflict, "Submission in progress", err.Error())
	case errors.As(err, &cErr):
		writeProblem(w, http.StatusGatewayTimeout, "Connectivity failure", cErr.Error())
	case errors.As(err, &sErr):
		writeProblem(w, http.StatusBadGateway, "Booking failed", sErr.Error())
	default:
		writeProblem(w, http.StatusInternalServerError, "Booking failed", err.Error())
	}
}

// ---- date parsing ----

func parseStayQuery(r *http.Request) (domain.StayWindow, error) {
	return parseStay(r.URL.Query().Get("checkIn"), r.URL.Query().Get("checkOut"))
}

func parseStay(in, out string) (domain.StayWindow, error) {
	var w domain.StayWindow
	var err error
	if in != "" {
		if w.CheckIn, err = time.ParseInLocation("2006-01-02", in, time.UTC); err != nil {
			return domain.StayWindow{}, errors.New("checkIn must be YYYY-MM-DD")
		}
	}
	if out != "" {
		if w.CheckOut, err = time.ParseInLocation("2006-01-02", out, time.UTC); err != nil {
			return domain.StayWindow{}, errors.New("checkOut must be YYYY-MM-DD")
		}
	}
	return w, nil
}
