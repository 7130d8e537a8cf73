// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"nevilwatch/adapters"
	"nevilwatch/catalogfile"
	"nevilwatch/controllers"
	"nevilwatch/devicestatus"
	"nevilwatch/geo"
	"nevilwatch/identity"
	"nevilwatch/kvstore"
	"nevilwatch/models"
	"nevilwatch/profile"
	"nevilwatch/routes"
	"nevilwatch/store"
	"nevilwatch/utils"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	// Set the JWT secret key
	utils.JwtKey = []byte(os.Getenv("JWT_SECRET"))

	ctx := context.Background()

	dataDir := getenv("DATA_DIR", ".")
	offlineCatalog := catalogfile.NewStore(dataDir, getenv("SAMPLE_CATALOG", "assets/sample_watches.json"))

	// Connect the document backend
	backend, err := openBackend(ctx, offlineCatalog)
	if err != nil {
		log.Fatalf("Failed to connect backend: %v", err)
	}
	defer backend.Close()

	// Connect the identity provider
	provider, err := openIdentity(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize identity provider: %v", err)
	}

	// Open the local profile cache
	kv, err := kvstore.Open(dataDir + "/profile.db")
	if err != nil {
		log.Fatalf("Failed to open profile cache: %v", err)
	}
	defer kv.Close()
	cache := profile.NewCache(kv)

	// Initialize EmailService
	emailService := utils.NewEmailService()

	// Build the adapters
	session := adapters.NewSession(provider, backend, cache, emailService)
	catalog := adapters.NewCatalog(backend, getenv("FEATURED_BRAND", adapters.DefaultFeaturedBrand))
	cart := adapters.NewCart(backend, provider)
	payment := adapters.NewPayment(backend, provider)

	if err := catalog.LoadAll(ctx); err != nil {
		log.Printf("Failed to load catalog: %v", err)
	}
	defer catalog.Stop()
	defer cart.Stop()
	defer payment.Stop()

	// Keep the offline catalog copy current
	go mirrorCatalog(catalog, offlineCatalog)

	// Device status monitor; sources are platform-specific and absent in a
	// plain server deployment, so readings stay at their zero values
	monitor := devicestatus.NewMonitor(nil, nil, nil)
	monitor.Start(ctx)

	// Geolocation lookup for the shipping form
	geoClient := geo.NewClient(os.Getenv("IPINFO_BASE_URL"), os.Getenv("IPINFO_TOKEN"))
	countries, err := geo.LoadCountries(getenv("COUNTRIES_FILE", "assets/countries.json"))
	if err != nil {
		log.Printf("Failed to load country list: %v", err)
	}

	// Initialize controllers
	userController := controllers.NewUserController(session, cache, cart, payment)
	catalogController := controllers.NewCatalogController(catalog)
	cartController := controllers.NewCartController(cart, catalog)
	paymentController := controllers.NewPaymentController(payment)
	shippingController := controllers.NewShippingController(geoClient, countries)
	statusController := controllers.NewStatusController(monitor)

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, userController, catalogController, cartController, paymentController, shippingController, statusController)

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	fmt.Printf("Server is running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}

// openBackend connects the configured document backend. BACKEND selects
// firestore (default), mongo, or memory; memory mode seeds the catalog from
// the offline copy.
func openBackend(ctx context.Context, offline *catalogfile.Store) (store.Store, error) {
	switch getenv("BACKEND", "firestore") {
	case "mongo":
		uri := getenv("MONGO_URI", "mongodb://localhost:27017")
		return store.NewMongo(ctx, uri, getenv("MONGO_DB", "nevilwatch"))
	case "memory":
		mem := store.NewMemory()
		watches, err := offline.Load()
		if err != nil {
			log.Printf("Failed to load offline catalog: %v", err)
			return mem, nil
		}
		for _, w := range watches {
			if err := mem.Put(ctx, "watches", w.ID, w.Doc()); err != nil {
				return nil, err
			}
		}
		log.Printf("Memory backend seeded with %d watches", len(watches))
		return mem, nil
	default:
		projectID := os.Getenv("FIRESTORE_PROJECT_ID")
		return store.NewFirestore(ctx, projectID, os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
}

// openIdentity connects the configured identity provider. AUTH_PROVIDER
// selects firebase (default) or local.
func openIdentity(ctx context.Context) (identity.Provider, error) {
	if getenv("AUTH_PROVIDER", "firebase") == "local" {
		return identity.NewLocal(), nil
	}
	return identity.NewFirebase(ctx,
		os.Getenv("FIRESTORE_PROJECT_ID"),
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		os.Getenv("FIREBASE_API_KEY"),
	)
}

// mirrorCatalog saves every successful catalog snapshot as the offline copy.
func mirrorCatalog(catalog *adapters.Catalog, offline *catalogfile.Store) {
	updates, cancel := catalog.Watch()
	defer cancel()
	for state := range updates {
		if state.Phase != adapters.PhaseSuccess {
			continue
		}
		watches := make([]models.Watch, len(state.Watches))
		copy(watches, state.Watches)
		if err := offline.Save(watches); err != nil {
			log.Printf("Failed to save offline catalog: %v", err)
		}
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
