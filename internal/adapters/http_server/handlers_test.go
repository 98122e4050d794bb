package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"rentledger/internal/domain"
	"rentledger/internal/oracle"
)

func TestWriteEngineErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&oracle.ValidationError{Check: oracle.CheckPrice, Reason: "out of band"}, http.StatusUnprocessableEntity},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrPropertyNotAvailable, http.StatusConflict},
		{domain.ErrRentalNotActive, http.StatusConflict},
		{domain.ErrAlreadyInitialized, http.StatusConflict},
		{domain.ErrPaymentNotDue, http.StatusConflict},
		{domain.ErrInsufficientFunds, http.StatusPaymentRequired},
		{domain.ErrInvalidPaymentMethod, http.StatusPaymentRequired},
		{domain.ErrUnauthorized, http.StatusForbidden},
		{domain.ErrInvalidTransfer, http.StatusBadRequest},
		{domain.ErrInvalidExtension, http.StatusBadRequest},
		{domain.ErrInvalidRenewal, http.StatusBadRequest},
		{domain.ErrInvalidListing, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", domain.ErrPaymentNotDue), http.StatusConflict},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		writeEngineError(rr, tc.err)
		if rr.Code != tc.want {
			t.Fatalf("%v: got status %d, want %d", tc.err, rr.Code, tc.want)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
			t.Fatalf("%v: content type %q", tc.err, ct)
		}
		var p problem
		if err := json.NewDecoder(rr.Body).Decode(&p); err != nil {
			t.Fatalf("%v: decode problem: %v", tc.err, err)
		}
		if p.Status != tc.want {
			t.Fatalf("%v: problem status %d, want %d", tc.err, p.Status, tc.want)
		}
	}
}

func TestWriteCachedJSONHonorsIfNoneMatch(t *testing.T) {
	v := map[string]int{"total": 3}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/platform", nil)
	writeCachedJSON(rr, req, v)
	if rr.Code != http.StatusOK {
		t.Fatalf("first read status: %d", rr.Code)
	}
	etag := rr.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag on read")
	}

	rr2 := httptest.NewRecorder()
	req2 := httptest.NewRequest("GET", "/v1/platform", nil)
	req2.Header.Set("If-None-Match", etag)
	writeCachedJSON(rr2, req2, v)
	if rr2.Code != http.StatusNotModified {
		t.Fatalf("conditional read status: %d, want 304", rr2.Code)
	}
	if rr2.Body.Len() != 0 {
		t.Fatal("304 must carry no body")
	}

	// a changed representation gets a new tag and a full body
	rr3 := httptest.NewRecorder()
	req3 := httptest.NewRequest("GET", "/v1/platform", nil)
	req3.Header.Set("If-None-Match", etag)
	writeCachedJSON(rr3, req3, map[string]int{"total": 4})
	if rr3.Code != http.StatusOK {
		t.Fatalf("changed read status: %d", rr3.Code)
	}
	if rr3.Header().Get("ETag") == etag {
		t.Fatal("ETag must change with the representation")
	}
}

func TestRateLimitIsPerCaller(t *testing.T) {
	handler := RateLimit(1, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	hit := func(caller string) int {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/v1/listings", nil)
		req.Header.Set(callerHeader, caller)
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	// burst of 2, then denied
	if got := hit("alice"); got != http.StatusNoContent {
		t.Fatalf("first: %d", got)
	}
	if got := hit("alice"); got != http.StatusNoContent {
		t.Fatalf("second: %d", got)
	}
	if got := hit("alice"); got != http.StatusTooManyRequests {
		t.Fatalf("third: %d, want 429", got)
	}

	// another caller has its own bucket
	if got := hit("bob"); got != http.StatusNoContent {
		t.Fatalf("other caller: %d", got)
	}
}
