package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"order_fulfillment/api"
	"order_fulfillment/application/saga"
	"order_fulfillment/application/services"
	"order_fulfillment/domain/inventory"
	"order_fulfillment/domain/order"
	"order_fulfillment/domain/payment"
	"order_fulfillment/domain/shipment"
	"order_fulfillment/infrastructure/eventbus"
	"order_fulfillment/infrastructure/eventstore"
	"order_fulfillment/infrastructure/gateway"
	memrepo "order_fulfillment/infrastructure/memory"
	"order_fulfillment/infrastructure/migrations"
	"order_fulfillment/infrastructure/relay"
	"order_fulfillment/infrastructure/repository"
)

func main() {
	log.Println("🚀 Starting Order Fulfillment Service...")

	// =====================================================
	// 1. Configuration
	// =====================================================
	dbURL := getEnv("DATABASE_URL", "")
	rabbitURL := getEnv("RABBITMQ_URL", "")
	httpAddr := getEnv("HTTP_ADDR", ":8080")
	successRate := getEnvFloat("PAYMENT_SUCCESS_RATE", 0.85)
	gatewayDelay := getEnvDuration("PAYMENT_GATEWAY_DELAY", 100*time.Millisecond)

	// =====================================================
	// 2. Persistence (PostgreSQL, or in-memory when unset)
	// =====================================================
	var (
		db           *sql.DB
		store        eventstore.Store
		products     inventory.ProductRepository
		reservations inventory.ReservationRepository
		orders       order.Repository
		payments     payment.Repository
		shipments    shipment.Repository
	)

	if dbURL != "" {
		db = connectDB(dbURL)
		defer db.Close()

		if err := migrations.Up(db); err != nil {
			log.Fatalf("❌ Failed to run migrations: %v", err)
		}
		log.Println("✅ Migrations applied")

		store = eventstore.NewPostgresStore(db)
		products = repository.NewProductRepository(db)
		reservations = repository.NewReservationRepository(db)
		orders = repository.NewOrderRepository(db)
		payments = repository.NewPaymentRepository(db)
		shipments = repository.NewShipmentRepository(db)
	} else {
		log.Println("⚠️ DATABASE_URL not set, using in-memory persistence")
		store = eventstore.NewMemoryStore()
		products = memrepo.NewProductRepository()
		reservations = memrepo.NewReservationRepository()
		orders = memrepo.NewOrderRepository()
		payments = memrepo.NewPaymentRepository()
		shipments = memrepo.NewShipmentRepository()
	}

	// =====================================================
	// 3. Event Bus + Application Services
	// =====================================================
	bus := eventbus.New()
	gw := gateway.New(successRate, gatewayDelay)

	orderSvc := services.NewOrderService(orders, bus)
	productSvc := services.NewProductService(products)
	reserveSvc := services.NewReserveStockService(products, reservations, bus)
	releaseSvc := services.NewReleaseStockService(products, reservations, bus)
	paymentSvc := services.NewProcessPaymentService(payments, gw, bus)
	shipmentSvc := services.NewCreateShipmentService(shipments, bus)
	log.Println("✅ Application services initialized")

	// =====================================================
	// 4. Saga Choreography
	// =====================================================
	saga.New(bus, store, orderSvc, reserveSvc, releaseSvc, paymentSvc, shipmentSvc).Register()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// =====================================================
	// 5. Event Relay (optional, needs both Postgres and RabbitMQ)
	// =====================================================
	if rabbitURL != "" && db != nil {
		mb := relay.NewRabbitMQ(rabbitURL)
		var err error
		for i := 0; i < 10; i++ {
			if err = mb.Connect(); err == nil {
				break
			}
			log.Printf("⏳ Attempt %d/10: Failed to connect to RabbitMQ: %v", i+1, err)
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			log.Fatalf("❌ Failed to connect to RabbitMQ after 10 attempts: %v", err)
		}
		defer mb.Close()

		rel := relay.New(db, mb, 2*time.Second)
		go func() {
			if err := rel.Start(ctx); err != nil {
				log.Printf("❌ Event relay error: %v", err)
			}
		}()
	} else if rabbitURL != "" {
		log.Println("⚠️ RABBITMQ_URL set but no database; event relay disabled")
	}

	// =====================================================
	// 6. HTTP Server
	// =====================================================
	handler := api.NewHandler(orderSvc, productSvc, store)
	server := &http.Server{
		Addr:    httpAddr,
		Handler: handler.Router(),
	}

	go func() {
		log.Printf("🌐 HTTP server listening on %s", httpAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ HTTP server error: %v", err)
		}
	}()

	// =====================================================
	// 7. Graceful Shutdown
	// =====================================================
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("🛑 Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ HTTP server shutdown error: %v", err)
	}
	cancel()

	log.Println("👋 Goodbye!")
}

// connectDB opens the database with retries so the service survives a slower
// database during container startup.
func connectDB(dbURL string) *sql.DB {
	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("postgres", dbURL)
		if err == nil {
			if err = db.Ping(); err == nil {
				log.Println("✅ Connected to PostgreSQL")
				return db
			}
			db.Close()
		}
		log.Printf("⏳ Attempt %d/10: Failed to connect to database: %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	log.Fatalf("❌ Failed to connect to database after 10 attempts: %v", err)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("⚠️ Invalid %s=%q, using %v", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("⚠️ Invalid %s=%q, using %v", key, value, defaultValue)
	}
	return defaultValue
}
