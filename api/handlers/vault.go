package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"cosmossdk.io/math"
	"github.com/gorilla/mux"

	"github.com/openalpha/yield-vault/metrics"
	"github.com/openalpha/yield-vault/x/vault/keeper"
	"github.com/openalpha/yield-vault/x/vault/types"
)

// Runner serializes access to the node's block context. Handlers never touch
// keeper state outside a Do callback.
type Runner interface {
	Do(fn func(ctx context.Context) error) error
}

// Faucet mints simulated assets, exposed only in dev mode
type Faucet interface {
	Faucet(addr string, amount math.Int)
}

// VaultHandler serves the vault REST API
type VaultHandler struct {
	node  Runner
	query *keeper.QueryServer
	msgs  *keeper.MsgServer

	// Optional dev faucet. Nil disables the endpoint.
	faucet Faucet

	// Optional activity callbacks, invoked after successful transactions
	OnDeposit    func(*types.DepositRecord)
	OnWithdrawal func(*types.WithdrawalRecord)
}

// NewVaultHandler creates a new vault API handler
func NewVaultHandler(node Runner, k *keeper.Keeper, faucet Faucet) *VaultHandler {
	return &VaultHandler{
		node:   node,
		query:  keeper.NewQueryServerImpl(k),
		msgs:   keeper.NewMsgServerImpl(k),
		faucet: faucet,
	}
}

// RegisterRoutes registers all vault API routes
func (h *VaultHandler) RegisterRoutes(r *mux.Router) {
	// Queries
	r.HandleFunc("/v1/vault", h.instrument("/v1/vault", h.GetVault)).Methods("GET")
	r.HandleFunc("/v1/vault/stats", h.instrument("/v1/vault/stats", h.GetStats)).Methods("GET")
	r.HandleFunc("/v1/vault/rate", h.instrument("/v1/vault/rate", h.GetRate)).Methods("GET")
	r.HandleFunc("/v1/vault/rate/history", h.instrument("/v1/vault/rate/history", h.GetRateHistory)).Methods("GET")
	r.HandleFunc("/v1/vault/balance/{holder}", h.instrument("/v1/vault/balance", h.GetBalance)).Methods("GET")
	r.HandleFunc("/v1/vault/user/{user}/deposits", h.instrument("/v1/vault/user/deposits", h.GetUserDeposits)).Methods("GET")
	r.HandleFunc("/v1/vault/user/{user}/withdrawals", h.instrument("/v1/vault/user/withdrawals", h.GetUserWithdrawals)).Methods("GET")
	r.HandleFunc("/v1/vault/estimate/deposit", h.instrument("/v1/vault/estimate/deposit", h.EstimateDeposit)).Methods("GET")
	r.HandleFunc("/v1/vault/estimate/withdrawal", h.instrument("/v1/vault/estimate/withdrawal", h.EstimateWithdrawal)).Methods("GET")

	// Transactions
	r.HandleFunc("/v1/vault/deposit", h.instrument("/v1/vault/deposit", h.SubmitDeposit)).Methods("POST")
	r.HandleFunc("/v1/vault/withdraw", h.instrument("/v1/vault/withdraw", h.SubmitWithdraw)).Methods("POST")

	// Admin (owner-gated by the keeper)
	r.HandleFunc("/v1/vault/strategy", h.instrument("/v1/vault/strategy", h.SetStrategy)).Methods("POST")
	r.HandleFunc("/v1/vault/pause", h.instrument("/v1/vault/pause", h.SetPaused)).Methods("POST")
	r.HandleFunc("/v1/vault/ownership", h.instrument("/v1/vault/ownership", h.TransferOwnership)).Methods("POST")

	// Dev faucet
	if h.faucet != nil {
		r.HandleFunc("/v1/dev/faucet", h.instrument("/v1/dev/faucet", h.DevFaucet)).Methods("POST")
	}
}

// instrument wraps a handler with request metrics
func (h *VaultHandler) instrument(path string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timer := metrics.NewTimer()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		fn(sw, r)
		metrics.GetCollector().RecordAPIRequest(r.Method, path, strconv.Itoa(sw.status), timer.ElapsedMs())
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// ============ Queries ============

// GetVault handles GET /v1/vault
func (h *VaultHandler) GetVault(w http.ResponseWriter, r *http.Request) {
	var resp map[string]interface{}
	err := h.node.Do(func(ctx context.Context) error {
		v, err := h.query.Vault(ctx)
		if err != nil {
			return err
		}
		total, _ := h.query.TotalAssets(ctx)
		rate, _ := h.query.ExchangeRate(ctx)
		resp = map[string]interface{}{
			"owner":        v.Owner,
			"strategy":     v.Strategy,
			"paused":       v.Paused,
			"total_shares": v.TotalShares.String(),
			"total_assets": total.String(),
			"rate":         rate.String(),
			"created_at":   v.CreatedAt,
			"updated_at":   v.UpdatedAt,
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetStats handles GET /v1/vault/stats
func (h *VaultHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	var stats *types.VaultStats
	err := h.node.Do(func(ctx context.Context) error {
		var err error
		stats, err = h.query.Stats(ctx)
		return err
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GetRate handles GET /v1/vault/rate
func (h *VaultHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	var resp map[string]interface{}
	err := h.node.Do(func(ctx context.Context) error {
		rate, err := h.query.ExchangeRate(ctx)
		if err != nil {
			return err
		}
		total, _ := h.query.TotalAssets(ctx)
		v, err := h.query.Vault(ctx)
		if err != nil {
			return err
		}
		resp = map[string]interface{}{
			"rate":         rate.String(),
			"total_assets": total.String(),
			"total_shares": v.TotalShares.String(),
			"timestamp":    time.Now().Unix(),
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetRateHistory handles GET /v1/vault/rate/history?from=&to=
func (h *VaultHandler) GetRateHistory(w http.ResponseWriter, r *http.Request) {
	from := parseInt64Query(r, "from", 0)
	to := parseInt64Query(r, "to", time.Now().Unix())

	var points []*types.RatePoint
	err := h.node.Do(func(ctx context.Context) error {
		var err error
		points, err = h.query.RateHistory(ctx, from, to)
		return err
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"points": points,
		"count":  len(points),
	})
}

// GetBalance handles GET /v1/vault/balance/{holder}
func (h *VaultHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	holder := mux.Vars(r)["holder"]
	if holder == "" {
		writeErrorMsg(w, http.StatusBadRequest, "holder address required")
		return
	}

	var shares, value math.Int
	err := h.node.Do(func(ctx context.Context) error {
		var err error
		shares, value, err = h.query.Balance(ctx, holder)
		return err
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"address": holder,
		"shares":  shares.String(),
		"value":   value.String(),
	})
}

// GetUserDeposits handles GET /v1/vault/user/{user}/deposits
func (h *VaultHandler) GetUserDeposits(w http.ResponseWriter, r *http.Request) {
	user := mux.Vars(r)["user"]

	var records []*types.DepositRecord
	err := h.node.Do(func(ctx context.Context) error {
		var err error
		records, err = h.query.UserDeposits(ctx, user)
		return err
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"deposits": records,
		"count":    len(records),
	})
}

// GetUserWithdrawals handles GET /v1/vault/user/{user}/withdrawals
func (h *VaultHandler) GetUserWithdrawals(w http.ResponseWriter, r *http.Request) {
	user := mux.Vars(r)["user"]

	var records []*types.WithdrawalRecord
	err := h.node.Do(func(ctx context.Context) error {
		var err error
		records, err = h.query.UserWithdrawals(ctx, user)
		return err
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"withdrawals": records,
		"count":       len(records),
	})
}

// EstimateDeposit handles GET /v1/vault/estimate/deposit?amount=
func (h *VaultHandler) EstimateDeposit(w http.ResponseWriter, r *http.Request) {
	amount, ok := math.NewIntFromString(r.URL.Query().Get("amount"))
	if !ok || !amount.IsPositive() {
		writeErrorMsg(w, http.StatusBadRequest, "amount must be a positive integer")
		return
	}

	var shares math.Int
	err := h.node.Do(func(ctx context.Context) error {
		var err error
		shares, err = h.query.ConvertToShares(ctx, amount)
		return err
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"amount": amount.String(),
		"shares": shares.String(),
	})
}

// EstimateWithdrawal handles GET /v1/vault/estimate/withdrawal?shares=
func (h *VaultHandler) EstimateWithdrawal(w http.ResponseWriter, r *http.Request) {
	shares, ok := math.NewIntFromString(r.URL.Query().Get("shares"))
	if !ok || !shares.IsPositive() {
		writeErrorMsg(w, http.StatusBadRequest, "shares must be a positive integer")
		return
	}

	var assets math.Int
	err := h.node.Do(func(ctx context.Context) error {
		var err error
		assets, err = h.query.ConvertToAssets(ctx, shares)
		return err
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"shares": shares.String(),
		"assets": assets.String(),
	})
}

// ============ Transactions ============

// DepositRequest is the POST /v1/vault/deposit body
type DepositRequest struct {
	Depositor string `json:"depositor"`
	Amount    string `json:"amount"`
}

// SubmitDeposit handles POST /v1/vault/deposit
func (h *VaultHandler) SubmitDeposit(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Depositor == "" {
		writeErrorMsg(w, http.StatusBadRequest, "depositor is required")
		return
	}

	timer := metrics.NewTimer()
	var resp *types.MsgDepositResponse
	err := h.node.Do(func(ctx context.Context) error {
		var err error
		resp, err = h.msgs.Deposit(ctx, &types.MsgDeposit{
			Depositor: req.Depositor,
			Amount:    req.Amount,
		})
		return err
	})
	if err != nil {
		metrics.GetCollector().RecordFailure("deposit", errReason(err))
		writeError(w, txErrStatus(err), err)
		return
	}
	metrics.GetCollector().RecordOperationLatency("deposit", timer.ElapsedMs())

	if h.OnDeposit != nil {
		h.notifyDeposit(req.Depositor, resp.DepositID)
	}
	writeJSON(w, http.StatusOK, resp)
}

// notifyDeposit looks up the stored record and fires the activity callback
func (h *VaultHandler) notifyDeposit(depositor, depositID string) {
	var record *types.DepositRecord
	_ = h.node.Do(func(ctx context.Context) error {
		records, err := h.query.UserDeposits(ctx, depositor)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if rec.DepositID == depositID {
				record = rec
				break
			}
		}
		return nil
	})
	if record != nil {
		h.OnDeposit(record)
	}
}

// WithdrawRequest is the POST /v1/vault/withdraw body
type WithdrawRequest struct {
	Withdrawer string `json:"withdrawer"`
	Shares     string `json:"shares"`
}

// SubmitWithdraw handles POST /v1/vault/withdraw
func (h *VaultHandler) SubmitWithdraw(w http.ResponseWriter, r *http.Request) {
	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Withdrawer == "" {
		writeErrorMsg(w, http.StatusBadRequest, "withdrawer is required")
		return
	}

	timer := metrics.NewTimer()
	var resp *types.MsgWithdrawResponse
	err := h.node.Do(func(ctx context.Context) error {
		var err error
		resp, err = h.msgs.Withdraw(ctx, &types.MsgWithdraw{
			Withdrawer: req.Withdrawer,
			Shares:     req.Shares,
		})
		return err
	})
	if err != nil {
		metrics.GetCollector().RecordFailure("withdraw", errReason(err))
		writeError(w, txErrStatus(err), err)
		return
	}
	metrics.GetCollector().RecordOperationLatency("withdraw", timer.ElapsedMs())

	if h.OnWithdrawal != nil {
		h.notifyWithdrawal(req.Withdrawer, resp.WithdrawalID)
	}
	writeJSON(w, http.StatusOK, resp)
}

// notifyWithdrawal looks up the stored record and fires the activity callback
func (h *VaultHandler) notifyWithdrawal(withdrawer, withdrawalID string) {
	var record *types.WithdrawalRecord
	_ = h.node.Do(func(ctx context.Context) error {
		records, err := h.query.UserWithdrawals(ctx, withdrawer)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if rec.WithdrawalID == withdrawalID {
				record = rec
				break
			}
		}
		return nil
	})
	if record != nil {
		h.OnWithdrawal(record)
	}
}

// ============ Admin ============

// SetStrategyRequest is the POST /v1/vault/strategy body
type SetStrategyRequest struct {
	Owner    string `json:"owner"`
	Strategy string `json:"strategy"`
}

// SetStrategy handles POST /v1/vault/strategy
func (h *VaultHandler) SetStrategy(w http.ResponseWriter, r *http.Request) {
	var req SetStrategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var resp *types.MsgSetStrategyResponse
	err := h.node.Do(func(ctx context.Context) error {
		var err error
		resp, err = h.msgs.SetStrategy(ctx, &types.MsgSetStrategy{
			Owner:    req.Owner,
			Strategy: req.Strategy,
		})
		return err
	})
	if err != nil {
		writeError(w, txErrStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SetPausedRequest is the POST /v1/vault/pause body
type SetPausedRequest struct {
	Owner  string `json:"owner"`
	Paused bool   `json:"paused"`
}

// SetPaused handles POST /v1/vault/pause
func (h *VaultHandler) SetPaused(w http.ResponseWriter, r *http.Request) {
	var req SetPausedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var resp *types.MsgSetPausedResponse
	err := h.node.Do(func(ctx context.Context) error {
		var err error
		resp, err = h.msgs.SetPaused(ctx, &types.MsgSetPaused{
			Owner:  req.Owner,
			Paused: req.Paused,
		})
		return err
	})
	if err != nil {
		writeError(w, txErrStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// TransferOwnershipRequest is the POST /v1/vault/ownership body
type TransferOwnershipRequest struct {
	Owner    string `json:"owner"`
	NewOwner string `json:"new_owner"`
}

// TransferOwnership handles POST /v1/vault/ownership
func (h *VaultHandler) TransferOwnership(w http.ResponseWriter, r *http.Request) {
	var req TransferOwnershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var resp *types.MsgTransferOwnershipResponse
	err := h.node.Do(func(ctx context.Context) error {
		var err error
		resp, err = h.msgs.TransferOwnership(ctx, &types.MsgTransferOwnership{
			Owner:    req.Owner,
			NewOwner: req.NewOwner,
		})
		return err
	})
	if err != nil {
		writeError(w, txErrStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ============ Dev ============

// FaucetRequest is the POST /v1/dev/faucet body
type FaucetRequest struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

// DevFaucet handles POST /v1/dev/faucet, minting simulated assets
func (h *VaultHandler) DevFaucet(w http.ResponseWriter, r *http.Request) {
	var req FaucetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Address == "" {
		writeErrorMsg(w, http.StatusBadRequest, "address is required")
		return
	}
	amount, ok := math.NewIntFromString(req.Amount)
	if !ok || !amount.IsPositive() {
		writeErrorMsg(w, http.StatusBadRequest, "amount must be a positive integer")
		return
	}

	h.faucet.Faucet(req.Address, amount)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"address": req.Address,
		"amount":  amount.String(),
	})
}

// ============ Helpers ============

// txErrStatus maps keeper errors to HTTP status codes
func txErrStatus(err error) int {
	switch err {
	case types.ErrUnauthorized:
		return http.StatusForbidden
	case types.ErrVaultPaused:
		return http.StatusConflict
	case types.ErrZeroAmount, types.ErrZeroShares, types.ErrEmptyAddress,
		types.ErrInsufficientShares, types.ErrStrategyNotFound:
		return http.StatusBadRequest
	case types.ErrNotInitialized:
		return http.StatusNotFound
	default:
		return http.StatusUnprocessableEntity
	}
}

// errReason returns a stable label for failure metrics
func errReason(err error) string {
	switch err {
	case types.ErrZeroAmount:
		return "zero_amount"
	case types.ErrZeroShares:
		return "zero_shares"
	case types.ErrInsufficientShares:
		return "insufficient_shares"
	case types.ErrVaultPaused:
		return "paused"
	case types.ErrUnauthorized:
		return "unauthorized"
	case types.ErrAssetTransfer:
		return "transfer_failed"
	case types.ErrStrategyCall:
		return "strategy_failed"
	default:
		return "other"
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeErrorMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseInt64Query(r *http.Request, key string, def int64) int64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return v
}
