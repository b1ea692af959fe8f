// Package server exposes a token.Contract over an HTTP JSON API. All
// mutating endpoints funnel into the contract's serialized operations,
// so concurrent requests observe the same all-or-nothing semantics as
// direct callers.
package server

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/pflow-xyz/go-mintgate/allowlist"
	"github.com/pflow-xyz/go-mintgate/ledger"
	"github.com/pflow-xyz/go-mintgate/token"
)

// Server is the HTTP front end for one contract instance.
type Server struct {
	contract *token.Contract
	log      zerolog.Logger
	mux      *http.ServeMux
	started  time.Time
}

// New creates a server around an existing contract.
func New(c *token.Contract, logger zerolog.Logger) *Server {
	s := &Server{
		contract: c,
		log:      logger,
		mux:      http.NewServeMux(),
		started:  time.Now(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /v1/status", s.handleStatus)
	s.mux.HandleFunc("GET /v1/records/{id}", s.handleRecord)
	s.mux.HandleFunc("GET /v1/balances/{account}", s.handleBalance)
	s.mux.HandleFunc("GET /v1/events", s.handleEvents)

	s.mux.HandleFunc("POST /v1/mint/public", s.handlePublicMint)
	s.mux.HandleFunc("POST /v1/mint/presale", s.handlePresaleMint)
	s.mux.HandleFunc("POST /v1/mint/owner", s.handleOwnerMint)
	s.mux.HandleFunc("POST /v1/refund", s.handleRefund)
	s.mux.HandleFunc("POST /v1/withdraw", s.handleWithdraw)

	s.mux.HandleFunc("POST /v1/admin/presale", s.handleTogglePresale)
	s.mux.HandleFunc("POST /v1/admin/public-sale", s.handleTogglePublicSale)
	s.mux.HandleFunc("POST /v1/admin/countdown", s.handleToggleCountdown)
	s.mux.HandleFunc("POST /v1/admin/merkle-root", s.handleSetMerkleRoot)
	s.mux.HandleFunc("POST /v1/admin/refund-address", s.handleSetRefundAddress)
}

// Handler returns the HTTP handler for the service.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// HealthResponse is the response for the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: time.Since(s.started).String(),
	})
}

// StatusResponse reports the contract's sale and refund configuration.
type StatusResponse struct {
	Operator              string `json:"operator"`
	RefundAddress         string `json:"refund_address"`
	MaxMintSupply         uint64 `json:"max_mint_supply"`
	TotalIssued           uint64 `json:"total_issued"`
	MintPrice             string `json:"mint_price"`
	MaxUserMintAmount     uint64 `json:"max_user_mint_amount"`
	PresaleActive         bool   `json:"presale_active"`
	PublicSaleActive      bool   `json:"public_sale_active"`
	MerkleRoot            string `json:"merkle_root"`
	RefundEndTime         string `json:"refund_end_time"`
	RefundGuaranteeActive bool   `json:"refund_guarantee_active"`
	TreasuryBalance       string `json:"treasury_balance"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	c := s.contract
	root := c.MerkleRoot()
	writeJSON(w, http.StatusOK, StatusResponse{
		Operator:              string(c.Operator()),
		RefundAddress:         string(c.RefundAddress()),
		MaxMintSupply:         c.MaxMintSupply(),
		TotalIssued:           c.TotalIssued(),
		MintPrice:             c.MintPrice().Dec(),
		MaxUserMintAmount:     c.MaxUserMintAmount(),
		PresaleActive:         c.PresaleActive(),
		PublicSaleActive:      c.PublicSaleActive(),
		MerkleRoot:            hex.EncodeToString(root[:]),
		RefundEndTime:         c.RefundEndTime().UTC().Format(time.RFC3339),
		RefundGuaranteeActive: c.RefundGuaranteeActive(),
		TreasuryBalance:       c.TreasuryBalance().Dec(),
	})
}

// RecordResponse describes one issued record.
type RecordResponse struct {
	ID         uint64 `json:"id"`
	Owner      string `json:"owner"`
	State      string `json:"state"`
	OwnerMint  bool   `json:"owner_mint"`
	Refundable *bool  `json:"refundable,omitempty"`
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid record id %q", r.PathValue("id")))
		return
	}

	owner, err := s.contract.OwnerOf(ledger.ID(id))
	if err != nil {
		s.fail(w, err)
		return
	}
	state, err := s.contract.StateOf(ledger.ID(id))
	if err != nil {
		s.fail(w, err)
		return
	}

	resp := RecordResponse{
		ID:        id,
		Owner:     string(owner),
		State:     state.String(),
		OwnerMint: state == ledger.Complimentary,
	}
	if caller := r.URL.Query().Get("caller"); caller != "" {
		refundable := s.contract.IsRefundable(token.Address(caller), ledger.ID(id))
		resp.Refundable = &refundable
	}
	writeJSON(w, http.StatusOK, resp)
}

// BalanceResponse reports holdings for one account.
type BalanceResponse struct {
	Account   string `json:"account"`
	Balance   uint64 `json:"balance"`
	Purchased uint64 `json:"purchased"`
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	account := token.Address(r.PathValue("account"))
	writeJSON(w, http.StatusOK, BalanceResponse{
		Account:   string(account),
		Balance:   s.contract.BalanceOf(account),
		Purchased: s.contract.PurchasedBy(account),
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.contract.Events())
}

// MintRequest is the body for the mint endpoints. Payment is a decimal
// or 0x-hex wei amount; Proof is required only on the presale path.
type MintRequest struct {
	Caller   string        `json:"caller"`
	Quantity uint64        `json:"quantity"`
	Payment  string        `json:"payment,omitempty"`
	Proof    *ProofPayload `json:"proof,omitempty"`
}

// ProofPayload is the wire form of an allowlist proof. Siblings are
// hex-encoded hashes for the native Merkle path; Groth16 carries a
// hex-encoded serialized proof for the zero-knowledge path.
type ProofPayload struct {
	Siblings []string `json:"siblings,omitempty"`
	Index    uint64   `json:"index"`
	Groth16  string   `json:"groth16,omitempty"`
}

func (p *ProofPayload) decode() (allowlist.Proof, error) {
	var proof allowlist.Proof
	if p == nil {
		return proof, nil
	}
	proof.Index = p.Index
	for i, s := range p.Siblings {
		b, err := hex.DecodeString(s)
		if err != nil || len(b) != len(allowlist.Root{}) {
			return proof, fmt.Errorf("invalid sibling %d", i)
		}
		var sibling allowlist.Root
		copy(sibling[:], b)
		proof.Siblings = append(proof.Siblings, sibling)
	}
	if p.Groth16 != "" {
		b, err := hex.DecodeString(p.Groth16)
		if err != nil {
			return proof, fmt.Errorf("invalid groth16 proof encoding")
		}
		proof.Groth16 = b
	}
	return proof, nil
}

// MintResponse returns the records issued by a successful mint.
type MintResponse struct {
	Records []ledger.ID `json:"records"`
	Paid    string      `json:"paid,omitempty"`
}

func (s *Server) handlePublicMint(w http.ResponseWriter, r *http.Request) {
	var req MintRequest
	if !decodeBody(w, r, &req) {
		return
	}
	payment, err := parseAmount(req.Payment)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ids, err := s.contract.PublicSaleMint(token.Address(req.Caller), req.Quantity, payment)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.log.Info().Str("caller", req.Caller).Uint64("quantity", req.Quantity).Msg("public mint")
	writeJSON(w, http.StatusOK, MintResponse{Records: ids, Paid: payment.Dec()})
}

func (s *Server) handlePresaleMint(w http.ResponseWriter, r *http.Request) {
	var req MintRequest
	if !decodeBody(w, r, &req) {
		return
	}
	payment, err := parseAmount(req.Payment)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	proof, err := req.Proof.decode()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ids, err := s.contract.PreSaleMint(token.Address(req.Caller), req.Quantity, payment, proof)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.log.Info().Str("caller", req.Caller).Uint64("quantity", req.Quantity).Msg("presale mint")
	writeJSON(w, http.StatusOK, MintResponse{Records: ids, Paid: payment.Dec()})
}

func (s *Server) handleOwnerMint(w http.ResponseWriter, r *http.Request) {
	var req MintRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ids, err := s.contract.OwnerMint(token.Address(req.Caller), req.Quantity)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.log.Info().Str("caller", req.Caller).Uint64("quantity", req.Quantity).Msg("owner mint")
	writeJSON(w, http.StatusOK, MintResponse{Records: ids})
}

// RefundRequest names the records one holder wants refunded.
type RefundRequest struct {
	Caller  string      `json:"caller"`
	Records []ledger.ID `json:"records"`
}

// RefundResponse reports the aggregated payout of a refund batch.
type RefundResponse struct {
	Records []ledger.ID `json:"records"`
	Payout  string      `json:"payout"`
}

func (s *Server) handleRefund(w http.ResponseWriter, r *http.Request) {
	var req RefundRequest
	if !decodeBody(w, r, &req) {
		return
	}

	payout, err := s.contract.Refund(token.Address(req.Caller), req.Records)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.log.Info().Str("caller", req.Caller).Int("records", len(req.Records)).Str("payout", payout.Dec()).Msg("refund")
	writeJSON(w, http.StatusOK, RefundResponse{Records: req.Records, Payout: payout.Dec()})
}

// CallerRequest is the body for endpoints that only identify a caller.
type CallerRequest struct {
	Caller string `json:"caller"`
}

// WithdrawResponse reports the amount released to the operator.
type WithdrawResponse struct {
	Amount string `json:"amount"`
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req CallerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := s.contract.Withdraw(token.Address(req.Caller))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.log.Info().Str("caller", req.Caller).Str("amount", amount.Dec()).Msg("withdraw")
	writeJSON(w, http.StatusOK, WithdrawResponse{Amount: amount.Dec()})
}

// ToggleResponse reports the new value of a sale gate.
type ToggleResponse struct {
	Active bool `json:"active"`
}

func (s *Server) handleTogglePresale(w http.ResponseWriter, r *http.Request) {
	var req CallerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	active, err := s.contract.TogglePresaleStatus(token.Address(req.Caller))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ToggleResponse{Active: active})
}

func (s *Server) handleTogglePublicSale(w http.ResponseWriter, r *http.Request) {
	var req CallerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	active, err := s.contract.TogglePublicSaleStatus(token.Address(req.Caller))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ToggleResponse{Active: active})
}

// CountdownResponse reports the refund window end after an extension.
type CountdownResponse struct {
	RefundEndTime string `json:"refund_end_time"`
}

func (s *Server) handleToggleCountdown(w http.ResponseWriter, r *http.Request) {
	var req CallerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	end, err := s.contract.ToggleRefundCountdown(token.Address(req.Caller))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CountdownResponse{RefundEndTime: end.UTC().Format(time.RFC3339)})
}

// MerkleRootRequest carries a hex-encoded allowlist root.
type MerkleRootRequest struct {
	Caller string `json:"caller"`
	Root   string `json:"root"`
}

func (s *Server) handleSetMerkleRoot(w http.ResponseWriter, r *http.Request) {
	var req MerkleRootRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b, err := hex.DecodeString(req.Root)
	if err != nil || len(b) != len(allowlist.Root{}) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid merkle root"))
		return
	}
	var root allowlist.Root
	copy(root[:], b)

	if err := s.contract.SetMerkleRoot(token.Address(req.Caller), root); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"merkle_root": req.Root})
}

// RefundAddressRequest names the new refund custody account.
type RefundAddressRequest struct {
	Caller  string `json:"caller"`
	Account string `json:"account"`
}

func (s *Server) handleSetRefundAddress(w http.ResponseWriter, r *http.Request) {
	var req RefundAddressRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.contract.SetRefundAddress(token.Address(req.Caller), token.Address(req.Account)); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"refund_address": req.Account})
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// fail maps contract errors onto HTTP statuses and writes the body.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("operation failed")
	}
	writeError(w, status, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, token.ErrUnauthorized),
		errors.Is(err, token.ErrNotOwner),
		errors.Is(err, token.ErrNotAllowlisted):
		return http.StatusForbidden
	case errors.Is(err, token.ErrUnknownRecord):
		return http.StatusNotFound
	case errors.Is(err, token.ErrInsufficientPayment):
		return http.StatusPaymentRequired
	case errors.Is(err, token.ErrSaleInactive),
		errors.Is(err, token.ErrSupplyExceeded),
		errors.Is(err, token.ErrOverMintLimit),
		errors.Is(err, token.ErrWindowClosed),
		errors.Is(err, token.ErrWindowStillOpen),
		errors.Is(err, token.ErrComplimentaryNotRefundable),
		errors.Is(err, token.ErrAlreadyRefunded):
		return http.StatusConflict
	case errors.Is(err, token.ErrInvalidAddress),
		errors.Is(err, token.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, token.ErrPaymentFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON body"))
		return false
	}
	return true
}

// parseAmount parses a decimal or 0x-hex wei amount. Empty means zero,
// matching a call that attaches no payment.
func parseAmount(val string) (*uint256.Int, error) {
	if val == "" {
		return uint256.NewInt(0), nil
	}
	if len(val) > 2 && val[:2] == "0x" {
		amount, err := uint256.FromHex(val)
		if err != nil {
			return nil, fmt.Errorf("invalid hex amount %q", val)
		}
		return amount, nil
	}
	amount, err := uint256.FromDecimal(val)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal amount %q", val)
	}
	return amount, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
