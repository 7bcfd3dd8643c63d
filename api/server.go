package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gorilla/mux"

	"github.com/openalpha/yield-vault/api/handlers"
	"github.com/openalpha/yield-vault/api/middleware"
	"github.com/openalpha/yield-vault/api/websocket"
	"github.com/openalpha/yield-vault/metrics"
	"github.com/openalpha/yield-vault/x/vault/types"
)

// Config contains API server configuration
type Config struct {
	Host string
	Port int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// EnableFaucet exposes the dev faucet endpoint
	EnableFaucet bool

	RateLimit *middleware.RateLimitConfig
	Node      *NodeConfig
}

// DefaultConfig returns the default API server configuration
func DefaultConfig() *Config {
	return &Config{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		EnableFaucet: true,
		RateLimit:    middleware.DefaultRateLimitConfig(),
		Node:         DefaultNodeConfig(),
	}
}

// Server is the vault API server: an embedded standalone node plus the REST
// and WebSocket surfaces over it.
type Server struct {
	config *Config
	logger log.Logger

	node        *Node
	handler     *handlers.VaultHandler
	wsServer    *websocket.Server
	rateLimiter *middleware.RateLimiter
	httpServer  *http.Server
}

// NewServer creates the API server and its embedded node
func NewServer(config *Config, logger log.Logger) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}

	node, err := NewNode(config.Node, logger)
	if err != nil {
		return nil, fmt.Errorf("create node: %w", err)
	}

	var faucet handlers.Faucet
	if config.EnableFaucet {
		faucet = node
	}
	handler := handlers.NewVaultHandler(node, node.Keeper(), faucet)

	wsServer := websocket.NewServer(&websocket.ServerConfig{
		MaxConnPerIP: 10,
		HubConfig:    websocket.DefaultHubConfig(),
	})

	s := &Server{
		config:      config,
		logger:      logger.With("component", "api"),
		node:        node,
		handler:     handler,
		wsServer:    wsServer,
		rateLimiter: middleware.NewRateLimiter(config.RateLimit),
	}

	// Completed transactions fan out to the activity channel
	handler.OnDeposit = s.onDeposit
	handler.OnWithdrawal = s.onWithdrawal

	// Every committed block refreshes the rate and stats snapshots
	node.OnBlock = s.onBlock

	return s, nil
}

// Start runs the node, the hub, and the HTTP server. Blocks until the
// listener fails or the server is stopped.
func (s *Server) Start() error {
	go s.node.Run()
	go s.wsServer.GetHub().Run()

	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.Use(middleware.RateLimitMiddleware(s.rateLimiter))

	s.handler.RegisterRoutes(r)

	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")
	r.HandleFunc("/ws", s.wsServer.HandleWebSocket)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("API server starting", "addr", addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server, hub, and node
func (s *Server) Stop(ctx context.Context) error {
	s.node.Stop()
	s.rateLimiter.Stop()
	_ = s.wsServer.Stop(ctx)
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Node returns the embedded standalone node
func (s *Server) Node() *Node {
	return s.node
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// onBlock pushes the per-block snapshot to WebSocket subscribers
func (s *Server) onBlock(snap PoolSnapshot) {
	s.wsServer.BroadcastRate(&websocket.RateMessage{
		Rate:        snap.Rate.String(),
		TotalAssets: snap.TotalAssets.String(),
		TotalShares: snap.TotalShares.String(),
		BlockHeight: snap.Height,
		Timestamp:   snap.Timestamp,
	})

	stats := s.readStats()
	if stats != nil {
		s.wsServer.BroadcastStats(&websocket.StatsMessage{
			TotalValueLocked: stats.TotalValueLocked.String(),
			TotalDepositors:  stats.TotalDepositors,
			TotalDeposited:   stats.TotalDeposited.String(),
			TotalWithdrawn:   stats.TotalWithdrawn.String(),
			StrategyPulls:    stats.StrategyPulls,
			Paused:           snap.Paused,
			Timestamp:        snap.Timestamp,
		})
	}
}

// readStats reads the running stats under the node lock
func (s *Server) readStats() *types.VaultStats {
	var stats *types.VaultStats
	_ = s.node.Do(func(ctx context.Context) error {
		stats = s.node.Keeper().GetStats(sdk.UnwrapSDKContext(ctx))
		return nil
	})
	return stats
}

// onDeposit broadcasts a completed deposit and the holder's new balance
func (s *Server) onDeposit(record *types.DepositRecord) {
	s.wsServer.BroadcastActivity(&websocket.ActivityMessage{
		Kind:      "deposit",
		ID:        record.DepositID,
		Address:   record.Depositor,
		Amount:    record.Amount.String(),
		Shares:    record.SharesMinted.String(),
		Timestamp: record.DepositedAt,
	})
	s.broadcastBalance(record.Depositor)
}

// onWithdrawal broadcasts a completed withdrawal and the holder's new balance
func (s *Server) onWithdrawal(record *types.WithdrawalRecord) {
	s.wsServer.BroadcastActivity(&websocket.ActivityMessage{
		Kind:      "withdrawal",
		ID:        record.WithdrawalID,
		Address:   record.Withdrawer,
		Amount:    record.AssetsOut.String(),
		Shares:    record.SharesBurned.String(),
		Timestamp: record.WithdrawnAt,
	})
	s.broadcastBalance(record.Withdrawer)
}

// broadcastBalance pushes a holder's current position to their account channel
func (s *Server) broadcastBalance(address string) {
	var shares, value string
	_ = s.node.Do(func(ctx context.Context) error {
		sdkCtx := sdk.UnwrapSDKContext(ctx)
		k := s.node.Keeper()
		sh := k.GetBalance(sdkCtx, address)
		shares = sh.String()
		value = k.ConvertToAssets(sdkCtx, sh).String()
		return nil
	})

	s.wsServer.BroadcastAccount(address, &websocket.AccountMessage{
		Address:   address,
		Shares:    shares,
		Value:     value,
		Timestamp: time.Now().Unix(),
	})
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
