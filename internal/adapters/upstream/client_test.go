package upstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"sonachala/internal/adapters/observability"
	"sonachala/internal/adapters/upstream"
	"sonachala/internal/domain"
)

func testStay() domain.StayWindow {
	return domain.StayWindow{
		CheckIn:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	}
}

func testBooking() domain.BookingRequest {
	return domain.BookingRequest{
		HotelID: "sonachala",
		Guest: domain.GuestInfo{
			FirstName: "Asha", LastName: "Rao", Email: "asha@example.com",
			Phone: "9876500000", City: "Chennai", Country: "India",
		},
		Stay: testStay(),
		Selections: map[string]domain.Selection{
			"room1": {RoomID: "room1", RoomCount: 2, Adults: 2, ChildAge5to12: 1},
		},
		FirstRoom:     domain.RoomType{ID: "room1", Type: "Deluxe Room", PricePerNight: 2500},
		Amounts:       domain.AmountBreakdown{RoomCharges: 10000, GuestCharges: 250, Subtotal: 10250, Taxes: 1845, GrandTotal: 12095, TotalRooms: 2, TotalAdults: 2, TotalChildren: 1, Nights: 2},
		PaymentMethod: "UPI",
		Proof:         domain.ProofFile{Name: "proof.jpg", ContentType: "image/jpeg", Data: []byte("jpegdata")},
		TransactionID: "TXN_1_abc",
		CorrelationID: "AB12CD34",
	}
}

func TestListRooms_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rooms/hotel/sonachala" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("checkIn"); got != "2024-01-01" {
			t.Errorf("unexpected checkIn %q", got)
		}
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			w.WriteHeader(200)
			_ = json.NewEncoder(w).Encode([]map[string]any{{"_id": "room1", "type": "Deluxe Room", "availableCount": 3.0}})
		}
	}))
	defer ts.Close()

	cl := upstream.New(ts.URL, 5*time.Second, 100) // high RPS for tests
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rooms, err := cl.ListRooms(ctx, "sonachala", testStay())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rooms) != 1 || rooms[0].ID != "room1" || rooms[0].AvailableCount != 3 {
		t.Fatalf("unexpected rooms: %+v", rooms)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestListRooms_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl := upstream.New(ts.URL, 5*time.Second, 100)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := cl.ListRooms(ctx, "sonachala", testStay())
	if !errors.Is(err, upstream.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetHotel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hotel/sonachala" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"name": "Sonachala Hotel", "contact": "+91-1"})
	}))
	defer ts.Close()

	cl := upstream.New(ts.URL, 5*time.Second, 100)
	h, err := cl.GetHotel(context.Background(), "sonachala")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if h.Name != "Sonachala Hotel" {
		t.Fatalf("unexpected hotel: %+v", h)
	}
}

func TestExternalMetricsDistinguishEndpoints(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/hotel/") {
			_ = json.NewEncoder(w).Encode(map[string]any{"name": "Sonachala Hotel"})
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{})
	}))
	defer ts.Close()

	cl := upstream.New(ts.URL, 5*time.Second, 100)
	if _, err := cl.GetHotel(context.Background(), "sonachala"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := cl.ListRooms(context.Background(), "sonachala", testStay()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	rr := httptest.NewRecorder()
	observability.MetricsHandler(observability.InitRegistry()).
		ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, want := range []string{`endpoint="get_hotel"`, `endpoint="list_rooms"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in metrics output", want)
		}
	}
}

func TestCreateBooking_MultipartBlocksAndProof(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bookings" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(16 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		for _, field := range []string{"guestDetails", "roomDetails", "bookingDetails", "amountDetails", "paymentDetails", "bookingMetadata"} {
			raw := r.FormValue(field)
			if raw == "" {
				t.Errorf("missing field %s", field)
				continue
			}
			var v map[string]any
			if err := json.Unmarshal([]byte(raw), &v); err != nil {
				t.Errorf("field %s is not JSON: %v", field, err)
			}
		}

		var amounts map[string]any
		_ = json.Unmarshal([]byte(r.FormValue("amountDetails")), &amounts)
		if amounts["grandTotal"] != 12095.0 || amounts["currency"] != "INR" {
			t.Errorf("unexpected amountDetails: %v", amounts)
		}
		var payment map[string]any
		_ = json.Unmarshal([]byte(r.FormValue("paymentDetails")), &payment)
		if payment["paymentStatus"] != "pending" || payment["transactionId"] != "TXN_1_abc" {
			t.Errorf("unexpected paymentDetails: %v", payment)
		}

		f, hdr, err := r.FormFile("paymentProof")
		if err != nil {
			t.Fatalf("paymentProof missing: %v", err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "proof.jpg" || string(data) != "jpegdata" {
			t.Errorf("unexpected proof: %s %q", hdr.Filename, data)
		}

		w.WriteHeader(201)
		_ = json.NewEncoder(w).Encode(map[string]any{"confirmationId": "BK-42"})
	}))
	defer ts.Close()

	cl := upstream.New(ts.URL, 5*time.Second, 100)
	res, err := cl.CreateBooking(context.Background(), testBooking())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.ConfirmationID != "BK-42" || !res.FromServer {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestCreateBooking_IdentifierPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantID     string
		fromServer bool
	}{
		{"confirmationId wins", `{"confirmationId":"C1","bookingId":"B1","id":"I1"}`, "C1", true},
		{"bookingId next", `{"bookingId":"B1","id":"I1"}`, "B1", true},
		{"id next", `{"id":"I1"}`, "I1", true},
		{"client correlation id as last resort", `{}`, "AB12CD34", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(200)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			cl := upstream.New(ts.URL, 5*time.Second, 100)
			res, err := cl.CreateBooking(context.Background(), testBooking())
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if res.ConfirmationID != tt.wantID || res.FromServer != tt.fromServer {
				t.Fatalf("unexpected result: %+v", res)
			}
		})
	}
}

func TestCreateBooking_ServerErrorCarriesMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(400)
		_, _ = w.Write([]byte(`{"message":"rooms no longer available"}`))
	}))
	defer ts.Close()

	cl := upstream.New(ts.URL, 5*time.Second, 100)
	_, err := cl.CreateBooking(context.Background(), testBooking())

	var sErr *domain.ServerError
	if !errors.As(err, &sErr) {
		t.Fatalf("expected ServerError, got %T: %v", err, err)
	}
	if sErr.Status != 400 || sErr.Msg != "rooms no longer available" {
		t.Fatalf("unexpected server error: %+v", sErr)
	}
	var cErr *domain.ConnectivityError
	if errors.As(err, &cErr) {
		t.Fatalf("status responses must not classify as connectivity failures")
	}
}

func TestCreateBooking_TimeoutIsConnectivity(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond) // longer than the client timeout
	}))
	defer ts.Close()

	cl := upstream.New(ts.URL, 50*time.Millisecond, 100)
	_, err := cl.CreateBooking(context.Background(), testBooking())

	var cErr *domain.ConnectivityError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected ConnectivityError, got %T: %v", err, err)
	}
	if !strings.Contains(cErr.Error(), "unable to reach the server") {
		t.Fatalf("unexpected message: %v", cErr)
	}
}

func TestCreateBooking_NeverRetries(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(500)
	}))
	defer ts.Close()

	cl := upstream.New(ts.URL, 5*time.Second, 100)
	if _, err := cl.CreateBooking(context.Background(), testBooking()); err == nil {
		t.Fatalf("expected error")
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("booking submission must be sent exactly once, got %d", got)
	}
}
