package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Varial17/studyfin-jobboard-sub000/config"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/api/handlers"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/api/middleware"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/api/routes"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/cache"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/logger"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/providers/crm"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/providers/payments"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/pubsub"
	mongorepo "github.com/Varial17/studyfin-jobboard-sub000/internal/repositories/mongo"
	pgrepo "github.com/Varial17/studyfin-jobboard-sub000/internal/repositories/postgres"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/services"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/storage"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/workers"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		logger.New("info").WithError(err).Fatal("config load failed")
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init PostgreSQL
	db, err := config.OpenPostgres(cfg)
	if err != nil {
		log.WithError(err).Fatal("postgres init failed")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Fatal("postgres handle failed")
	}
	defer sqlDB.Close()
	log.Info("postgres connected")

	// Init Redis
	rdb, err := config.OpenRedis(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("redis init failed")
	}
	defer rdb.Close()
	log.Info("redis connected")

	// Init MongoDB
	mc, err := config.OpenMongo(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("mongo init failed")
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()
	mdb := mc.Database(cfg.Mongo.DB)
	if err := config.EnsureMongoIndexes(ctx, mdb); err != nil {
		log.WithError(err).Warn("mongo index setup failed")
	}
	log.Info("mongo connected")

	// Repositories
	profiles := pgrepo.NewProfileRepo(db)
	jobs := pgrepo.NewJobRepo(db)
	apps := pgrepo.NewApplicationRepo(db)
	resume := pgrepo.NewResumeRepo(db)
	creds := pgrepo.NewZohoCredentialRepo(db)
	journal := mongorepo.NewBillingEventRepo(mdb, cfg.Mongo.EventTTL)

	// Providers
	stripe := payments.NewStripe(cfg.Stripe.SecretKey)
	zoho := crm.NewZoho(crm.ZohoConfig{
		ClientID:     cfg.Zoho.ClientID,
		ClientSecret: cfg.Zoho.ClientSecret,
		AccountsURL:  cfg.Zoho.AccountsURL,
		APIURL:       cfg.Zoho.APIURL,
		Scopes:       cfg.Zoho.Scopes,
	})

	var uploader storage.Uploader
	if cfg.Storage.Bucket != "" {
		gcs, err := storage.NewGCSUploader(ctx, cfg.Storage.Bucket)
		if err != nil {
			log.WithError(err).Fatal("gcs init failed")
		}
		defer gcs.Close()
		uploader = gcs
	} else {
		log.Warn("GCS_BUCKET not set; cv uploads disabled")
	}

	// Services
	leadQueue := workers.NewRedisLeadQueue(rdb, workers.DefaultLeadStream)
	reconciler := services.NewReconciler(profiles, pubsub.NewRedisPublisher(rdb), log)

	profileSvc := services.NewProfileService(profiles, uploader)
	resumeSvc := services.NewResumeService(resume)
	jobSvc := services.NewJobService(jobs, profiles, cache.NewRedisCache(rdb, "jobboard:"), log)
	appSvc := services.NewApplicationService(apps, jobs, profiles, resume, leadQueue, log)
	billingSvc := services.NewBillingService(services.BillingConfig{
		PriceID:       cfg.Stripe.PriceID,
		WebhookSecret: cfg.Stripe.WebhookSecret,
	}, stripe, profiles, reconciler, journal, log)
	zohoSvc := services.NewZohoService(services.ZohoConfig{
		StateSecret: cfg.Zoho.StateSecret,
		BatchSize:   cfg.Zoho.BatchSize,
		BatchDelay:  cfg.Zoho.BatchDelay,
	}, zoho, creds, profiles, apps, jobs, log)
	healthSvc := services.NewHealthService(map[string]services.Pinger{
		"postgres": services.PingFunc(sqlDB.PingContext),
		"redis":    services.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		"mongo":    journal,
	}, 3*time.Second)

	// Workers
	pool := &workers.LeadSyncWorkerPool{
		Redis:      rdb,
		Zoho:       zohoSvc,
		NumWorkers: cfg.Zoho.SyncWorkers,
		Logger:     log,
	}
	if err := pool.Start(ctx); err != nil {
		log.WithError(err).Fatal("lead sync workers failed to start")
	}

	// HTTP
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	corsCfg := cors.DefaultConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Server.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	routes.RegisterRoutes(r, routes.Deps{
		JWT: middleware.JWTConfig{
			Secret:   cfg.Supabase.JWTSecret,
			Issuer:   cfg.Supabase.Issuer,
			Audience: cfg.Supabase.Audience,
		},
		Health:      handlers.NewHealthHandler(healthSvc),
		Profile:     handlers.NewProfileHandler(profileSvc),
		Resume:      handlers.NewResumeHandler(resumeSvc),
		Job:         handlers.NewJobHandler(jobSvc, appSvc),
		Application: handlers.NewApplicationHandler(appSvc),
		Billing:     handlers.NewBillingHandler(billingSvc),
		Zoho:        handlers.NewZohoHandler(zohoSvc),
		WS:          handlers.NewWSHandler(rdb, cfg.Server.AllowedOrigins, log),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
