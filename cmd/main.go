package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/lubetrack/workshop-backend/internal/auth"
	"github.com/lubetrack/workshop-backend/internal/db"
	"github.com/lubetrack/workshop-backend/internal/fipe"
	"github.com/lubetrack/workshop-backend/internal/handlers"
	"github.com/lubetrack/workshop-backend/internal/middleware"
	"github.com/lubetrack/workshop-backend/internal/notify"
	"github.com/lubetrack/workshop-backend/internal/workshop"
)

func configureLogging() {
	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}
}

func listenAddr() string {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return ":" + port
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using process environment")
	}
	configureLogging()

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	log.Info("Connected to MongoDB")

	database := client.Database(db.DatabaseName())
	users := &db.MongoUserCollection{Collection: database.Collection("users")}
	customers := &db.MongoCustomerCollection{Collection: database.Collection("customers")}
	vehicles := &db.MongoVehicleCollection{Collection: database.Collection("vehicles")}
	oils := &db.MongoOilCollection{Collection: database.Collection("oils")}
	parts := &db.MongoPartCollection{Collection: database.Collection("parts")}
	serviceTypes := &db.MongoServiceTypeCollection{Collection: database.Collection("service_types")}
	records := &db.MongoServiceRecordCollection{Collection: database.Collection("service_records")}
	tx := &db.MongoTxRunner{Client: client}

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("Failed to create auth service")
	}
	if err := authService.EnsureAdmin(context.Background(), users); err != nil {
		log.WithError(err).Fatal("Failed to bootstrap admin user")
	}

	publisher, err := notify.NewMQTTPublisher()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MQTT broker")
	}
	defer publisher.Close()

	workshopService := workshop.NewService(workshop.Config{
		Records:   records,
		Vehicles:  vehicles,
		Oils:      oils,
		Parts:     parts,
		Customers: customers,
		Tx:        tx,
		Publisher: publisher,
	})

	guard := middleware.NewAuthMiddleware(authService)
	mux := handlers.NewRouter(handlers.RouterConfig{
		Auth:         handlers.NewAuthHandler(authService, users),
		Customers:    handlers.NewCustomerHandler(customers, vehicles, tx),
		Vehicles:     handlers.NewVehicleHandler(vehicles, customers, workshopService),
		Oils:         handlers.NewOilHandler(oils),
		Parts:        handlers.NewPartHandler(parts),
		ServiceTypes: handlers.NewServiceTypeHandler(serviceTypes),
		Records:      handlers.NewRecordHandler(workshopService),
		Catalog:      handlers.NewCatalogHandler(fipe.NewClient()),
		Guard:        guard,
	})

	rateLimiter := middleware.NewRateLimitMiddleware()
	handler := middleware.RequestID(
		middleware.AccessLog(
			rateLimiter.RateLimit(100, 60)(
				guard.Authenticate(mux))))

	addr := listenAddr()
	log.WithField("addr", addr).Info("HTTP server listening")
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.WithError(err).Fatal("HTTP server stopped")
	}
}
