package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"rentledger/internal/app"
	"rentledger/internal/domain"
	"rentledger/internal/oracle"
)

// callerHeader carries the verified caller identity, set by the upstream
// identity gateway. The engine never authenticates; it only compares this
// identity against stored roles.
const callerHeader = "X-Caller"

type Handlers struct {
	Listings *app.ListingService
	Rentals  *app.RentalService
	Wallet   *app.WalletService
	Q        *app.QueryService

	RateRPS   int
	RateBurst int
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	// reads
	s.mux.Get("/v1/platform", h.getPlatform)
	s.mux.Get("/v1/listings", h.listAvailable)
	s.mux.Get("/v1/listings/{id}", h.getListing)
	s.mux.Get("/v1/listings/{id}/rentals", h.listingRentals)
	s.mux.Get("/v1/rentals/{id}", h.getRental)
	s.mux.Get("/v1/rentals/{id}/events", h.rentalEvents)
	s.mux.Get("/v1/wallet/{address}", h.walletBalances)

	// mutations, rate limited per caller
	rps, burst := h.RateRPS, h.RateBurst
	if rps <= 0 {
		rps, burst = 10, 20
	}
	s.mux.Group(func(m chi.Router) {
		m.Use(RateLimit(rps, burst))
		m.Post("/v1/platform", h.initialize)
		m.Post("/v1/listings", h.createListing)
		m.Post("/v1/listings/{id}/verify", h.verifyListing)
		m.Post("/v1/listings/{id}/rentals", h.rentProperty)
		m.Post("/v1/rentals/{id}/pay", h.payRent)
		m.Post("/v1/rentals/{id}/terminate", h.terminateRental)
		m.Post("/v1/rentals/{id}/adjust", h.adjustRental)
		m.Post("/v1/rentals/{id}/renew", h.renewRental)
		m.Post("/v1/rentals/{id}/transfer", h.transferRental)
		m.Post("/v1/rentals/{id}/extend", h.extendRental)
		m.Post("/v1/wallet/{address}/fund", h.fundWallet)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeEngineError maps the engine taxonomy onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	var ve *oracle.ValidationError
	switch {
	case errors.As(err, &ve):
		writeProblem(w, http.StatusUnprocessableEntity, "Validation Failed", ve.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrPropertyNotAvailable),
		errors.Is(err, domain.ErrRentalNotActive),
		errors.Is(err, domain.ErrAlreadyInitialized),
		errors.Is(err, domain.ErrPaymentNotDue):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInvalidPaymentMethod):
		writeProblem(w, http.StatusPaymentRequired, "Payment Required", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeProblem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, domain.ErrInvalidTransfer),
		errors.Is(err, domain.ErrInvalidExtension),
		errors.Is(err, domain.ErrInvalidRenewal),
		errors.Is(err, domain.ErrInvalidListing):
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		log.Error().Err(err).Msg("engine operation failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	c := r.Header.Get(callerHeader)
	if c == "" {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "missing caller identity")
		return "", false
	}
	return c, true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCachedJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func listingID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return 0, false
	}
	return id, true
}

// ---- reads ----

func (h *Handlers) getPlatform(w http.ResponseWriter, r *http.Request) {
	p, err := h.Q.Platform(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeCachedJSON(w, r, p)
}

func (h *Handlers) listAvailable(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		limit = l
	}
	ls, err := h.Q.ListAvailable(r.Context(), limit)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeCachedJSON(w, r, ls)
}

func (h *Handlers) getListing(w http.ResponseWriter, r *http.Request) {
	id, ok := listingID(w, r)
	if !ok {
		return
	}
	l, err := h.Q.GetListing(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeCachedJSON(w, r, l)
}

func (h *Handlers) listingRentals(w http.ResponseWriter, r *http.Request) {
	id, ok := listingID(w, r)
	if !ok {
		return
	}
	rs, err := h.Q.ListingRentals(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

func (h *Handlers) getRental(w http.ResponseWriter, r *http.Request) {
	rn, err := h.Q.GetRental(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeCachedJSON(w, r, rn)
}

func (h *Handlers) rentalEvents(w http.ResponseWriter, r *http.Request) {
	evs, err := h.Q.RentalEvents(r.Context(), chi.URLParam(r, "id"), 50)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, evs)
}

func (h *Handlers) walletBalances(w http.ResponseWriter, r *http.Request) {
	bals, err := h.Wallet.Balances(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bals)
}

// ---- mutations ----

func (h *Handlers) initialize(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	if err := h.Listings.Initialize(r.Context(), c); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"authority": c})
}

type createListingReq struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Location       string   `json:"location"`
	Price          int64    `json:"price"`
	Deposit        int64    `json:"deposit"`
	Size           int      `json:"size"`
	Rooms          int      `json:"rooms"`
	Bathrooms      int      `json:"bathrooms"`
	Floor          int      `json:"floor"`
	TotalFloors    int      `json:"total_floors"`
	ContractLength int      `json:"contract_length"`
	MoveInDate     int64    `json:"move_in_date"`
	Amenities      []string `json:"amenities"`
}

func (h *Handlers) createListing(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	var req createListingReq
	if !decode(w, r, &req) {
		return
	}
	l, err := h.Listings.Create(r.Context(), c, app.CreateListingInput{
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		Price:          req.Price,
		Deposit:        req.Deposit,
		Size:           req.Size,
		Rooms:          req.Rooms,
		Bathrooms:      req.Bathrooms,
		Floor:          req.Floor,
		TotalFloors:    req.TotalFloors,
		ContractLength: req.ContractLength,
		MoveInDate:     req.MoveInDate,
		Amenities:      req.Amenities,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *Handlers) verifyListing(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := listingID(w, r)
	if !ok {
		return
	}
	if err := h.Listings.Verify(r.Context(), c, id); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type rentReq struct {
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
}

func (h *Handlers) rentProperty(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := listingID(w, r)
	if !ok {
		return
	}
	var req rentReq
	if !decode(w, r, &req) {
		return
	}
	rn, err := h.Rentals.Create(r.Context(), id, c, req.PaymentMethod)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rn)
}

func (h *Handlers) payRent(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	var req rentReq
	if !decode(w, r, &req) {
		return
	}
	rn, err := h.Rentals.PayRent(r.Context(), chi.URLParam(r, "id"), c, req.PaymentMethod)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rn)
}

func (h *Handlers) terminateRental(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	rn, err := h.Rentals.Terminate(r.Context(), chi.URLParam(r, "id"), c)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rn)
}

type adjustReq struct {
	NewPrice   int64  `json:"new_price"`
	NewEndDate int64  `json:"new_end_date"`
	Reason     string `json:"reason"`
}

func (h *Handlers) adjustRental(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	var req adjustReq
	if !decode(w, r, &req) {
		return
	}
	if err := h.Rentals.Adjust(r.Context(), chi.URLParam(r, "id"), c, req.NewPrice, req.NewEndDate, req.Reason); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type renewReq struct {
	Months    int   `json:"months"`
	NewPrice  int64 `json:"new_price"`
	AutoRenew bool  `json:"auto_renew"`
}

func (h *Handlers) renewRental(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	var req renewReq
	if !decode(w, r, &req) {
		return
	}
	if err := h.Rentals.Renew(r.Context(), chi.URLParam(r, "id"), c, req.Months, req.NewPrice, req.AutoRenew); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transferReq struct {
	NewTenant   string `json:"new_tenant"`
	TransferFee int64  `json:"transfer_fee"`
}

func (h *Handlers) transferRental(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	var req transferReq
	if !decode(w, r, &req) {
		return
	}
	if err := h.Rentals.Transfer(r.Context(), chi.URLParam(r, "id"), c, req.NewTenant, req.TransferFee); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type extendReq struct {
	Days   int    `json:"days"`
	Reason string `json:"reason"`
}

func (h *Handlers) extendRental(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	var req extendReq
	if !decode(w, r, &req) {
		return
	}
	if err := h.Rentals.Extend(r.Context(), chi.URLParam(r, "id"), c, req.Days, req.Reason); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type fundReq struct {
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Amount        int64                `json:"amount"`
}

func (h *Handlers) fundWallet(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	var req fundReq
	if !decode(w, r, &req) {
		return
	}
	if err := h.Wallet.Fund(r.Context(), c, chi.URLParam(r, "address"), req.PaymentMethod, req.Amount); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
