// internal/adapters/upstream/client.go
package upstream

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"sonachala/internal/adapters/observability"
	"sonachala/internal/domain"
)

// Client talks to the hotel backend: hotel record, room catalog, and
// booking creation. GETs are rate limited and retried with backoff;
// booking creation is sent exactly once (the caller owns retry policy).
type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func New(base string, submitTimeout time.Duration, rps int) *Client {
	if rps <= 0 {
		rps = 5
	}
	if submitTimeout <= 0 {
		submitTimeout = 30 * time.Second
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: submitTimeout},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}
}

func (c *Client) GetHotel(ctx context.Context, hotelID string) (domain.Hotel, error) {
	var out domain.Hotel
	u := fmt.Sprintf("%s/hotel/%s", c.base, url.PathEscape(hotelID))
	err := c.get(ctx, "get_hotel", u, &out)
	return out, err
}

func (c *Client) ListRooms(ctx context.Context, hotelID string, stay domain.StayWindow) ([]domain.RoomType, error) {
	q := url.Values{}
	if !stay.CheckIn.IsZero() {
		q.Set("checkIn", stay.CheckIn.Format("2006-01-02"))
	}
	if !stay.CheckOut.IsZero() {
		q.Set("checkOut", stay.CheckOut.Format("2006-01-02"))
	}
	u := fmt.Sprintf("%s/rooms/hotel/%s", c.base, url.PathEscape(hotelID))
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	var out []domain.RoomType
	err := c.get(ctx, "list_rooms", u, &out)
	return out, err
}

// ---- booking submission ----

// bookingResponse covers the identifier variants the backend has been
// seen to return.
type bookingResponse struct {
	ConfirmationID string `json:"confirmationId"`
	BookingID      string `json:"bookingId"`
	ID             string `json:"id"`
	Message        string `json:"message"`
	Error          string `json:"error"`
}

// CreateBooking posts the assembled booking as one multipart request:
// six JSON text blocks plus the binary payment proof. Never retried;
// a timeout leaves the outcome on the server unknown.
func (c *Client) CreateBooking(ctx context.Context, req domain.BookingRequest) (domain.BookingResult, error) {
	body, contentType, err := encodeBooking(req)
	if err != nil {
		return domain.BookingResult{}, fmt.Errorf("encode booking: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/bookings", body)
	if err != nil {
		return domain.BookingResult{}, err
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(httpReq)
	if err != nil {
		observability.ObserveExternal("hotel_api", "create_booking", 0, time.Since(start))
		return domain.BookingResult{}, &domain.ConnectivityError{Op: "create booking", Err: err}
	}
	defer resp.Body.Close()
	observability.ObserveExternal("hotel_api", "create_booking", resp.StatusCode, time.Since(start))

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var br bookingResponse
	_ = json.Unmarshal(raw, &br) // body may be empty or non-JSON on errors

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := br.Message
		if msg == "" {
			msg = br.Error
		}
		return domain.BookingResult{}, &domain.ServerError{Status: resp.StatusCode, Msg: msg}
	}

	res := domain.BookingResult{FromServer: true}
	switch {
	case br.ConfirmationID != "":
		res.ConfirmationID = br.ConfirmationID
	case br.BookingID != "":
		res.ConfirmationID = br.BookingID
	case br.ID != "":
		res.ConfirmationID = br.ID
	default:
		res.ConfirmationID = req.CorrelationID
		res.FromServer = false
	}
	return res, nil
}

func encodeBooking(req domain.BookingRequest) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	blocks := []struct {
		field string
		v     any
	}{
		{"guestDetails", req.Guest},
		{"roomDetails", map[string]any{
			"roomId":        req.FirstRoom.ID,
			"roomType":      req.FirstRoom.Type,
			"pricePerNight": req.FirstRoom.PricePerNight,
			"maxGuests":     req.FirstRoom.MaxGuests,
			"bedType":       req.FirstRoom.BedType,
			"roomSize":      req.FirstRoom.RoomSize,
		}},
		{"bookingDetails", map[string]any{
			"checkIn":          req.Stay.CheckIn.Format("2006-01-02"),
			"checkOut":         req.Stay.CheckOut.Format("2006-01-02"),
			"numberOfRooms":    req.Amounts.TotalRooms,
			"numberOfAdults":   req.Amounts.TotalAdults,
			"numberOfChildren": req.Amounts.TotalChildren,
			"numberOfNights":   req.Amounts.Nights,
			"hotelId":          req.HotelID,
			"roomSelections":   req.Selections,
		}},
		{"amountDetails", map[string]any{
			"roomCharges":  req.Amounts.RoomCharges,
			"guestCharges": req.Amounts.GuestCharges,
			"subtotal":     req.Amounts.Subtotal,
			"taxesAndFees": req.Amounts.Taxes,
			"discount":     req.Amounts.Discount,
			"grandTotal":   req.Amounts.GrandTotal,
			"currency":     "INR",
		}},
		{"paymentDetails", map[string]any{
			"paymentMethod": req.PaymentMethod,
			"paymentStatus": "pending",
			"transactionId": req.TransactionID,
			"paymentDate":   time.Now().UTC().Format(time.RFC3339),
		}},
		{"bookingMetadata", map[string]any{
			"bookingDate":             time.Now().UTC().Format(time.RFC3339),
			"bookingSource":           "web",
			"userAgent":               req.UserAgent,
			"ipAddress":               req.ClientIP,
			"frontendConfirmationId": req.CorrelationID,
		}},
	}
	for _, b := range blocks {
		j, err := json.Marshal(b.v)
		if err != nil {
			return nil, "", err
		}
		if err := w.WriteField(b.field, string(j)); err != nil {
			return nil, "", err
		}
	}

	part, err := createProofPart(w, req.Proof)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.Proof.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func createProofPart(w *multipart.Writer, proof domain.ProofFile) (io.Writer, error) {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="paymentProof"; filename=%q`, proof.Name))
	ct := proof.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	return w.CreatePart(h)
}

// ---- GET plumbing ----

var ErrNotFound = errors.New("upstream: not found")

// get performs a GET with client-side rate limiting, retries, and JSON
// decode into out. Retries on network errors, 429 and transient 5xx,
// honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, endpoint, url string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "sonachala-booking/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("hotel_api", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("hotel_api", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with up
// to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
