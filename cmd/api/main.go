package main

import (
	"io"
	"log"
	"os"

	"github.com/wayfare-app/wayfare-api/internal/config"
	"github.com/wayfare-app/wayfare-api/internal/logging"
	"github.com/wayfare-app/wayfare-api/internal/media"
	"github.com/wayfare-app/wayfare-api/internal/places"
	minioRepo "github.com/wayfare-app/wayfare-api/internal/repository/minio"
	"github.com/wayfare-app/wayfare-api/internal/repository/postgres"
	"github.com/wayfare-app/wayfare-api/internal/service"
	transport "github.com/wayfare-app/wayfare-api/internal/transport/http"
	"github.com/wayfare-app/wayfare-api/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		mirror, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.Printf("logstash mirror disabled: %v", err)
		} else {
			defer mirror.Close()
			log.SetOutput(io.MultiWriter(os.Stderr, mirror))
		}
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer db.Close()

	minioClient, err := minioRepo.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		log.Fatalf("connect to minio: %v", err)
	}
	storage := minioRepo.NewStorage(minioClient, cfg.MinIOEndpoint, cfg.MinIOPublicURL, cfg.MinIOUseSSL)

	userRepo := postgres.NewUserRepo(db)
	tripRepo := postgres.NewTripRepo(db)
	destinationRepo := postgres.NewDestinationRepo(db)

	tokens := util.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	placesClient := places.NewClient(cfg.GoogleAPIKey,
		places.WithPlacesBaseURL(cfg.PlacesBaseURL),
		places.WithGeocodeBaseURL(cfg.GeocodeBaseURL),
		places.WithDefaultRadius(cfg.DefaultRadiusM),
	)
	processor := media.NewFFMPEGProcessor(cfg.FFMPEGPath, media.DefaultMaxDimension)

	authService := service.NewAuthService(userRepo, tokens, cfg.GoogleAudience)
	accessService := service.NewAccessService(tripRepo)
	tripService := service.NewTripService(tripRepo, userRepo, accessService)
	destinationService := service.NewDestinationService(destinationRepo, accessService, storage, processor, service.DestinationServiceConfig{
		Bucket:        cfg.MinIOBucket,
		PhotoMaxBytes: cfg.PhotoMaxBytes,
	})
	recommendationService := service.NewRecommendationService(placesClient)
	userService := service.NewUserService(userRepo)

	e := transport.NewRouter(cfg.AllowOrigins)
	transport.RegisterAuth(e, authService)
	transport.RegisterTrips(e, authService, tripService)
	transport.RegisterDestinations(e, authService, destinationService)
	transport.RegisterAttractions(e, authService, destinationService)
	transport.RegisterRecommendations(e, authService, recommendationService)
	transport.RegisterUsers(e, authService, userService)
	transport.RegisterSwagger(e)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
