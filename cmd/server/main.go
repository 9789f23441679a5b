package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/AdarBahar/MyTrip-sub001/internal/adapters/cache"
	"github.com/AdarBahar/MyTrip-sub001/internal/adapters/repositories"
	"github.com/AdarBahar/MyTrip-sub001/internal/adapters/routing"
	"github.com/AdarBahar/MyTrip-sub001/internal/api"
	"github.com/AdarBahar/MyTrip-sub001/internal/config"
	"github.com/AdarBahar/MyTrip-sub001/internal/platform/db"
	"github.com/AdarBahar/MyTrip-sub001/internal/ports"
)

// main is the application composition root.
// It wires concrete adapters (ORS, Postgres, Redis, SQLite) behind ports and
// starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")

	orsKey := os.Getenv("ORS_API_KEY")
	if strings.TrimSpace(orsKey) == "" {
		log.Fatal("ORS_API_KEY is required")
	}

	provider, err := routing.NewORSProvider(orsKey)
	if err != nil {
		log.Fatal(err)
	}

	var repo ports.StopRepository
	var pg *sql.DB
	if databaseURL := os.Getenv("DATABASE_URL"); strings.TrimSpace(databaseURL) != "" {
		pg, err = db.Open(databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer pg.Close()
		repo = repositories.NewPGStopRepository(pg)
	} else {
		log.Println("DATABASE_URL not set, trip-day optimization is disabled")
	}

	distanceCache, closeCache := buildDistanceCache(pg)
	if closeCache != nil {
		defer closeCache()
	}

	router := api.NewRouter(provider, distanceCache, repo)

	// Timeouts are tuned for cold-cache route optimization (external API latency).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// buildDistanceCache picks the persistent cost cache backend: Redis when
// configured, then Postgres, then a local SQLite file. No backend means the
// optimizer simply asks the provider every time.
func buildDistanceCache(pg *sql.DB) (ports.DistanceCache, func()) {
	if addr := os.Getenv("REDIS_ADDR"); strings.TrimSpace(addr) != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		log.Printf("distance cache backend=redis addr=%s", addr)
		return cache.NewRedisDistanceCache(client), func() { _ = client.Close() }
	}

	if pg != nil {
		log.Println("distance cache backend=postgres")
		return cache.NewPGDistanceCache(pg), nil
	}

	if path := os.Getenv("SQLITE_CACHE_PATH"); strings.TrimSpace(path) != "" {
		sqliteDB, err := sql.Open("sqlite", path)
		if err != nil {
			log.Fatalf("open sqlite cache %q: %v", path, err)
		}
		if err := cache.InitSqliteSchema(sqliteDB); err != nil {
			log.Fatal(err)
		}
		log.Printf("distance cache backend=sqlite path=%s", path)
		return cache.NewSqliteDistanceCache(sqliteDB), func() { _ = sqliteDB.Close() }
	}

	log.Println("no distance cache backend configured")
	return nil, nil
}
