package main

import (
	"bufio"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ikavin04/canteen/internal/app"
	"github.com/ikavin04/canteen/internal/clock"
	"github.com/ikavin04/canteen/internal/gateway"
	"github.com/ikavin04/canteen/internal/metrics"
	"github.com/ikavin04/canteen/internal/notify"
	"github.com/ikavin04/canteen/internal/storage/localstore"
	"github.com/ikavin04/canteen/internal/storage/memory"
	"github.com/ikavin04/canteen/internal/storage/postgres"
	transporthttp "github.com/ikavin04/canteen/internal/transport/http"
	"github.com/ikavin04/canteen/migrations"
)

const (
	defaultPort        = "8080"
	defaultCORSOrigins = "http://localhost:5173,http://127.0.0.1:5173"
	shutdownTimeout    = 10 * time.Second
)

// stores collects every storage contract the services need. Which
// backend fills each slot depends on configuration: orders, menu and
// users can live in memory, in Pebble, in Postgres or behind a remote
// backend, while the cart, session and notification watermarks always
// stay local.
type stores struct {
	menu       app.MenuStore
	carts      app.CartStore
	orders     app.OrderStore
	sessions   app.SessionStore
	users      app.UserStore
	watermarks notify.WatermarkStore
}

func main() {
	logger := log.Default()
	loadEnvFile(logger)

	port := os.Getenv("CANTEEN_PORT")
	if port == "" {
		port = defaultPort
	}

	corsEnv := os.Getenv("CANTEEN_CORS_ORIGINS")
	if corsEnv == "" {
		logger.Printf("WARN: CANTEEN_CORS_ORIGINS not set, using default local origins")
		corsEnv = defaultCORSOrigins
	}

	pollInterval := time.Duration(0)
	if raw := os.Getenv("CANTEEN_POLL_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("parse CANTEEN_POLL_INTERVAL: %v", err)
		}
		pollInterval = parsed
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	st, cleanup, err := buildStores(startupCtx, logger)
	if err != nil {
		log.Fatalf("set up storage: %v", err)
	}
	defer cleanup()

	clk := clock.NewSystem()
	userSvc := app.NewUserService(st.users, st.sessions, st.carts, clk)
	cartSvc := app.NewCartService(st.menu, st.carts, st.sessions)
	menuSvc := app.NewMenuService(st.menu, clk)
	orderSvc := app.NewOrderService(st.orders, st.carts, st.sessions, clk)

	reg := metrics.NewRegistry()
	feed := notify.NewFeed()
	notifiers := []notify.Notifier{feed, notify.NewLogNotifier(logger)}

	var dispatcherOpts []notify.Option
	if pollInterval > 0 {
		dispatcherOpts = append(dispatcherOpts, notify.WithInterval(pollInterval))
	}
	dispatcher := notify.NewDispatcher(orderSvc, st.sessions, st.watermarks, notifiers, clk, logger, reg, dispatcherOpts...)
	dispatcher.Start()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/metrics", reg.Handler())
	mux.Handle("/api/users/register", transporthttp.HandleRegister(userSvc))
	mux.Handle("/api/users/login", transporthttp.HandleLogin(userSvc))
	mux.Handle("/api/users/logout", transporthttp.HandleLogout(userSvc))
	mux.Handle("/api/menu", transporthttp.HandleMenu(menuSvc))
	mux.Handle("/api/menu/", transporthttp.HandleMenuItem(menuSvc))
	mux.Handle("/api/cart", transporthttp.HandleCart(cartSvc))
	mux.Handle("/api/cart/items", transporthttp.HandleCartItems(cartSvc))
	mux.Handle("/api/cart/items/", transporthttp.HandleCartItem(cartSvc))
	mux.Handle("/api/checkout", transporthttp.HandleCheckout(orderSvc))
	mux.Handle("/api/orders", transporthttp.HandleOrders(orderSvc))
	mux.Handle("/api/orders/", transporthttp.HandleOrderStatus(orderSvc))
	mux.Handle("/api/user/", transporthttp.HandleRecentOrders(orderSvc))
	mux.Handle("/api/notifications", transporthttp.HandleNotifications(feed))
	mux.Handle("/api/stats", transporthttp.HandleStats(orderSvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	corsOrigins := parseCSV(corsEnv)
	handler := transporthttp.RequestLogger(transporthttp.CORS(corsOrigins, mux), logger)

	server := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}

	log.Printf("canteen listening on :%s", port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		log.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server shutdown error: %v", err)
	}
	dispatcher.Stop()
	log.Printf("server stopped")
}

// buildStores picks storage backends from the environment. Precedence:
// CANTEEN_REMOTE_URL (remote backend for menu and orders), then
// DATABASE_URL (Postgres for users, menu and orders), then
// CANTEEN_DATA_DIR (Pebble for everything), then in-memory.
func buildStores(ctx context.Context, logger *log.Logger) (stores, func(), error) {
	cleanup := func() {}

	var local *localstore.Store
	if dir := os.Getenv("CANTEEN_DATA_DIR"); dir != "" {
		store, err := localstore.Open(dir)
		if err != nil {
			return stores{}, cleanup, err
		}
		local = store
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Printf("close local store: %v", err)
			}
		}
	}

	st := stores{}
	if local != nil {
		st = stores{
			menu:       local,
			carts:      local,
			orders:     local,
			sessions:   local,
			users:      local,
			watermarks: local,
		}
	} else {
		st = stores{
			menu:       memory.NewMenuStore(),
			carts:      memory.NewCartStore(),
			orders:     memory.NewOrderStore(),
			sessions:   memory.NewSessionStore(),
			users:      memory.NewUserStore(),
			watermarks: memory.NewWatermarkStore(),
		}
	}

	if remoteURL := os.Getenv("CANTEEN_REMOTE_URL"); remoteURL != "" {
		logger.Printf("using remote backend at %s", remoteURL)
		client := gateway.New(remoteURL)
		st.menu = client
		st.orders = client
		return st, cleanup, nil
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			return stores{}, cleanup, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return stores{}, cleanup, err
		}
		if err := migrations.Apply(ctx, pool); err != nil {
			pool.Close()
			return stores{}, cleanup, err
		}

		logger.Printf("using Postgres storage")
		prev := cleanup
		cleanup = func() {
			pool.Close()
			prev()
		}
		st.users = postgres.NewUserRepository(pool)
		st.menu = postgres.NewMenuRepository(pool)
		st.orders = postgres.NewOrderRepository(pool)
		return st, cleanup, nil
	}

	if local != nil {
		logger.Printf("using Pebble storage at %s", os.Getenv("CANTEEN_DATA_DIR"))
	} else {
		logger.Printf("WARN: no storage configured, state is in-memory only")
	}
	return st, cleanup, nil
}

func parseCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func loadEnvFile(logger *log.Logger) {
	path, err := findEnvFile()
	if err != nil {
		logger.Printf("WARN: failed to locate .env: %v", err)
		return
	}
	if path == "" {
		return
	}

	file, err := os.Open(path)
	if err != nil {
		logger.Printf("WARN: failed to open %s: %v", path, err)
		return
	}
	if err := parseEnvFile(logger, file); err != nil {
		logger.Printf("WARN: failed to load %s: %v", path, err)
	} else {
		logger.Printf("loaded env from %s", path)
	}
	_ = file.Close()
}

func findEnvFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for i := 0; i < 6; i++ {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil
}

func parseEnvFile(logger *log.Logger, file *os.File) error {
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}
		value = trimQuotes(value)
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			logger.Printf("WARN: failed to set %s from env file", key)
		}
	}
	return scanner.Err()
}

func trimQuotes(value string) string {
	if len(value) < 2 {
		return value
	}
	if (value[0] == '"' && value[len(value)-1] == '"') ||
		(value[0] == '\'' && value[len(value)-1] == '\'') {
		return value[1 : len(value)-1]
	}
	return value
}
