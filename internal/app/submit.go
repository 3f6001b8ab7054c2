package app

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sonachala/internal/adapters/observability"
	"sonachala/internal/domain"
)

// genericFailureMsg is shown when the server gives no message of its own.
const genericFailureMsg = "There was an error processing your booking. Please try again."

// connectivityMsg preserves the timeout ambiguity: the server may or
// may not have processed the booking.
const connectivityMsg = "Unable to connect to the server. Please check your internet connection. " +
	"If you were charged, contact the hotel before retrying; the booking may still have been recorded."

// SubmissionService validates and forwards a completed booking to the
// upstream bookings endpoint. It never retries on its own; a failed
// submission leaves the session's form state intact for a manual retry.
type SubmissionService struct {
	api     domain.HotelAPI
	catalog *CatalogService
	hotelID string
	timeout time.Duration
	log     zerolog.Logger
}

func NewSubmissionService(api domain.HotelAPI, catalog *CatalogService, hotelID string, timeout time.Duration, log zerolog.Logger) *SubmissionService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SubmissionService{api: api, catalog: catalog, hotelID: hotelID, timeout: timeout, log: log}
}

// SubmitInput carries the per-request pieces of a submission; the
// selections and stay window come from the session.
type SubmitInput struct {
	Guest         domain.GuestInfo
	PaymentMethod string
	Proof         *domain.ProofFile
	UserAgent     string
	ClientIP      string
}

// Submit runs the full submission: preconditions, request assembly,
// one upstream call, outcome classification. On success the session is
// fully reset.
func (s *SubmissionService) Submit(ctx context.Context, sess *Session, in SubmitInput) (domain.BookingResult, error) {
	if !sess.BeginSubmit() {
		return domain.BookingResult{}, domain.ErrSubmissionInProgress
	}
	defer sess.EndSubmit()

	// keep the form on the session so a failed attempt can be corrected
	// and resubmitted
	sess.SetForm(in.Guest, in.PaymentMethod, in.Proof)

	if err := s.validate(sess, in); err != nil {
		observability.ObserveBooking("validation")
		return domain.BookingResult{}, err
	}

	stay := sess.Stay()
	selections := sess.Selections()
	snap := s.catalog.Fetch(ctx, stay)
	rooms := snap.All()
	amounts := domain.ComputeBreakdown(stay, selections, rooms)

	method := in.PaymentMethod
	if method == "" {
		method = "UPI"
	}

	req := domain.BookingRequest{
		HotelID:       s.hotelID,
		Guest:         in.Guest,
		Stay:          stay,
		Selections:    selections,
		FirstRoom:     firstSelectedRoom(selections, rooms),
		Amounts:       amounts,
		PaymentMethod: method,
		Proof:         *in.Proof,
		TransactionID: newTransactionID(),
		CorrelationID: newConfirmationCode(),
		UserAgent:     in.UserAgent,
		ClientIP:      in.ClientIP,
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.api.CreateBooking(cctx, req)
	if err != nil {
		var conn *domain.ConnectivityError
		var srv *domain.ServerError
		switch {
		case errors.As(err, &conn):
			observability.ObserveBooking("connectivity")
			s.log.Warn().Err(err).Str("session", sess.ID).Msg("booking submission got no response")
			return domain.BookingResult{}, &domain.ConnectivityError{Op: "create booking", Err: errors.New(connectivityMsg)}
		case errors.As(err, &srv):
			observability.ObserveBooking("server")
			if srv.Msg == "" {
				srv.Msg = genericFailureMsg
			}
			s.log.Warn().Int("status", srv.Status).Str("session", sess.ID).Msg("booking rejected upstream")
			return domain.BookingResult{}, srv
		default:
			observability.ObserveBooking("server")
			return domain.BookingResult{}, fmt.Errorf("create booking: %w", err)
		}
	}

	observability.ObserveBooking("confirmed")
	s.log.Info().
		Str("session", sess.ID).
		Str("confirmation", res.ConfirmationID).
		Bool("serverIssued", res.FromServer).
		Int64("grandTotal", amounts.GrandTotal).
		Msg("booking confirmed")

	// post-condition of success: stale state must not be resubmittable
	sess.Reset()
	return res, nil
}

// validate checks every submission precondition before any network
// call. All-or-nothing: the first failure is returned and nothing is
// sent.
func (s *SubmissionService) validate(sess *Session, in SubmitInput) error {
	if missing := in.Guest.MissingFields(); len(missing) > 0 {
		return domain.NewValidationError(
			"guestInfo:"+missing[0],
			fmt.Sprintf("all guest information fields are required (missing: %s)", strings.Join(missing, ", ")),
		)
	}
	if !sess.HasSelection() {
		return domain.NewValidationError("selection", "select at least one room to proceed")
	}
	if !sess.Stay().Complete() {
		return domain.NewValidationError("stayWindow", "check-in and check-out dates are required")
	}
	if in.Proof == nil || len(in.Proof.Data) == 0 {
		return domain.NewValidationError("paymentProof", "payment proof image is required to confirm the booking")
	}
	return nil
}

// firstSelectedRoom returns the catalog record for the first selected
// room id (stable order) for the roomDetails block. Zero value when the
// selection refers only to rooms no longer in the catalog.
func firstSelectedRoom(selections map[string]domain.Selection, rooms []domain.RoomType) domain.RoomType {
	ids := make([]string, 0, len(selections))
	for id, sel := range selections {
		if sel.RoomCount > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	byID := make(map[string]domain.RoomType, len(rooms))
	for _, r := range rooms {
		byID[r.ID] = r
	}
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			return r
		}
	}
	return domain.RoomType{}
}

const confirmationAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newConfirmationCode generates the 8-character client correlation
// identifier. Used for display only when the server returns no id of
// its own.
func newConfirmationCode() string {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return strings.ToUpper(uuid.NewString()[:8])
	}
	out := make([]byte, len(b))
	for i, v := range b {
		out[i] = confirmationAlphabet[int(v)%len(confirmationAlphabet)]
	}
	return string(out)
}

// newTransactionID builds the client transaction reference recorded in
// paymentDetails. The server is not required to honor it for
// deduplication.
func newTransactionID() string {
	return fmt.Sprintf("TXN_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
