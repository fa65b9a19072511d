package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"via-fatto-painel/common/logger"
	commonmqtt "via-fatto-painel/common/mqtt"
	commonredis "via-fatto-painel/common/redis"
	"via-fatto-painel/internal/config"
	"via-fatto-painel/internal/events"
	httpapi "via-fatto-painel/internal/http"
	"via-fatto-painel/internal/metrics"
	"via-fatto-painel/internal/repository"
	"via-fatto-painel/internal/service"
	"via-fatto-painel/internal/store"
	"via-fatto-painel/internal/tenancy"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	sessionSweepInterval = 10 * time.Minute
	sessionMaxIdle       = 12 * time.Hour
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "via-fatto-painel")
	if err != nil {
		log, _ = zap.NewProduction()
	}
	defer log.Sync()

	dir, closeDir, err := repository.OpenDirectory(cfg, log)
	if err != nil {
		log.Fatal("failed to open directory", zap.Error(err))
	}
	defer closeDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Override cache and event stream share Redis when enabled.
	var kv store.KV = store.NewMemoryKV()
	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient = commonredis.NewRedisClient(&cfg.Redis)
		if err := commonredis.Ping(ctx, redisClient); err != nil {
			log.Warn("Redis unavailable, override cache stays in memory", zap.Error(err))
			_ = commonredis.Close(redisClient)
			redisClient = nil
		} else {
			kv = store.NewRedisKV(redisClient)
			log.Info("Redis override cache enabled", zap.String("addr", cfg.Redis.Addr))
		}
	}
	overrides := store.NewOverrideCache(kv, cfg.Tenancy.OverrideKey, cfg.Tenancy.OverrideTTL)

	var publishers events.Multi
	if redisClient != nil && cfg.Events.RedisStream != "" {
		publishers = append(publishers, events.NewRedisStreamPublisher(redisClient, cfg.Events.RedisStream, cfg.Events.RedisStreamMaxLen))
	}
	var mqttClient *commonmqtt.Client
	if cfg.Events.MQTTEnabled {
		c, err := commonmqtt.NewClient(&cfg.Events.MQTT, log)
		if err != nil {
			log.Warn("MQTT unavailable, resolution events not published to broker", zap.Error(err))
		} else {
			mqttClient = c
			publishers = append(publishers, events.NewMQTTPublisher(c, cfg.Events.MQTTTopic, c.QoS()))
		}
	}

	var publisher events.Publisher = events.Nop{}
	var asyncEvents *events.Async
	if len(publishers) > 0 {
		asyncEvents = events.NewAsync(publishers, cfg.Events.QueueSize, log)
		publisher = asyncEvents
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.NewCollector()
	}

	tenants := tenancy.NewTenantLookup(dir.Tenants, log)
	engine := tenancy.NewEngine(
		tenancy.NewDomainResolver(dir.Domains, tenants, log),
		tenants,
		overrides,
		tenancy.Options{
			FallbackTenantID: cfg.Tenancy.FallbackTenantID,
			IsDevBuild:       cfg.Tenancy.IsDevBuild,
		},
		log,
	)
	roles := tenancy.NewRoleLookup(dir.Memberships, log)
	sessions := service.NewSessionService(engine, overrides, roles, publisher, collector, log)
	go sessions.RunSweeper(ctx, sessionSweepInterval, sessionMaxIdle)

	router := httpapi.NewRouter(log)
	router.TrustForwardedHost(cfg.HTTP.TrustForwardedHost)
	router.RegisterTenancyRoutes(httpapi.NewTenancyHandler(sessions, log))
	router.RegisterDomainRoutes(
		httpapi.NewDomainHandler(dir.Domains, service.NewDomainExportService(dir.Domains, log), sessions, log),
		httpapi.NewHostTenantMiddleware(sessions, log),
	)
	if collector != nil {
		router.RegisterMetrics(collector.Handler())
	}

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if asyncEvents != nil {
		if err := asyncEvents.Close(shutdownCtx); err != nil {
			log.Warn("resolution events not fully flushed", zap.Error(err))
		}
	}
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	_ = commonredis.Close(redisClient)
}
