package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"groupme-bot/internal/bot"
	"groupme-bot/internal/config"
	"groupme-bot/internal/db"
	"groupme-bot/internal/groupme"
	"groupme-bot/internal/handlers"
	"groupme-bot/internal/observability"
	"groupme-bot/internal/queue"
	"groupme-bot/internal/repositories"
	"groupme-bot/internal/telemetry"
	"groupme-bot/internal/ws"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTLPEndpoint, "groupme-bot", cfg.Environment)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("tracer shutdown failed: %v", err)
		}
	}()

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	groupRepo := repositories.NewGroupRepo(database)
	memberRepo := repositories.NewMemberRepo(database)
	commandRepo := repositories.NewCommandRepo(database)
	reminderRepo := repositories.NewReminderRepo(database)

	client := groupme.NewClient(cfg.GroupMeAPIBase, cfg.ImageServiceURL, cfg.GroupMeToken)

	hub := ws.NewHub()
	scheduler := bot.NewReminderScheduler(reminderRepo, memberRepo, client, hub)

	registry := bot.NewRegistry()
	commands := bot.NewCommands(groupRepo, memberRepo, commandRepo, reminderRepo, client, cfg.BaseURL)
	commands.Register(registry)
	if err := bot.ValidateReplies(registry); err != nil {
		log.Fatalf("reply table incomplete: %v", err)
	}

	publisher := queue.NewPublisher(cfg.AMQPURL, cfg.QueueExchange)
	defer publisher.Close()
	audit := telemetry.NewAuditEmitter(publisher, "audit.bot", "groupme-bot", cfg.Environment)

	dispatcher := bot.NewDispatcher(registry, groupRepo, memberRepo, commandRepo, client, scheduler, hub, audit)

	// Queued commands run on AMQP workers when RabbitMQ is up, otherwise on an
	// in-process channel queue with the same worker semantics.
	if queue.PublisherMode(publisher) == "amqp" {
		dispatcher.SetJobQueue(queue.NewJobPublisher(publisher))
		consumer, err := queue.NewConsumer(cfg.AMQPURL, cfg.QueueExchange, cfg.QueueName, cfg.Workers, cfg.JobTimeout, dispatcher.ExecuteJob)
		if err != nil {
			log.Fatalf("failed to start job consumer: %v", err)
		}
		go func() {
			if err := consumer.Start(ctx); err != nil {
				log.Printf("job consumer stopped: %v", err)
			}
		}()
		log.Printf("job queue mode=amqp workers=%d", cfg.Workers)
	} else {
		inproc := queue.NewInProcessQueue(64, cfg.Workers, cfg.JobTimeout, dispatcher.ExecuteJob)
		inproc.Start(ctx)
		dispatcher.SetJobQueue(inproc)
		log.Printf("job queue mode=in-process workers=%d", cfg.Workers)
	}

	callbackHandler := handlers.NewCallbackHandler(dispatcher)
	viewsHandler := handlers.NewViewsHandler(groupRepo, memberRepo, commandRepo, registry)
	activityWS := ws.NewActivityHandler(hub, groupRepo)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("groupme-bot"))
	router.Use(observability.HTTPMetricsMiddleware())

	router.POST("/callback", callbackHandler.Handle)
	router.GET("/groups/:group_id/info", viewsHandler.GroupInfo)
	router.GET("/groups/:group_id/stats", viewsHandler.GroupStats)
	router.GET("/ws/groups/:group_id", activityWS.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterDebugRoutes(router, audit, cfg.DebugToken, cfg.DebugRoutes)

	log.Printf("listening port=%s environment=%s", cfg.Port, cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
