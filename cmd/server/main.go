package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"vendor-match-service/internal/adapters/geocode"
	"vendor-match-service/internal/adapters/notify"
	"vendor-match-service/internal/adapters/repositories"
	"vendor-match-service/internal/adapters/vendors"
	"vendor-match-service/internal/api"
	"vendor-match-service/internal/platform/config"
	"vendor-match-service/internal/platform/db"
	"vendor-match-service/internal/ports"
	"vendor-match-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, ORS, Redis) behind ports and starts
// the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")
	country := config.Get("GEOCODE_COUNTRY", "IN")
	category := os.Getenv("VENDOR_CATEGORY")

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	database, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	if err := repositories.InitSchema(database); err != nil {
		log.Fatal(err)
	}

	// Geocoding is optional: without an ORS key, requests must carry
	// coordinates directly.
	var geocoder ports.Geocoder
	if orsKey := strings.TrimSpace(os.Getenv("ORS_API_KEY")); orsKey != "" {
		g, err := geocode.NewORSGeocoder(orsKey, country, geocode.NewSQLCache(database))
		if err != nil {
			log.Fatal(err)
		}
		geocoder = g
	} else {
		log.Println("ORS_API_KEY not set; address geocoding disabled")
	}

	var notifier ports.Notifier
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		defer client.Close()
		notifier = notify.NewRedisNotifier(client)
	} else {
		log.Println("REDIS_ADDR not set; push notifications disabled")
	}

	maxConcurrency, err := strconv.Atoi(config.Get("SOLICIT_CONCURRENCY", "8"))
	if err != nil || maxConcurrency < 1 {
		log.Fatal("SOLICIT_CONCURRENCY must be a positive integer")
	}

	store := repositories.NewPostgresStore(database)
	svc := &services.RequestService{
		Store:    store,
		Vendors:  repositories.NewPostgresVendorDirectory(database),
		Geocoder: geocoder,
		Broadcaster: &services.Broadcaster{
			Solicitor:      vendors.NewHTTPSolicitor(nil),
			MaxConcurrency: maxConcurrency,
		},
		Lifecycle: &services.Lifecycle{Store: store},
		Notifier:  notifier,
		Category:  category,
	}

	router := api.NewRouter(svc)

	// Write timeout leaves room for synchronous geocoding on request creation.
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
