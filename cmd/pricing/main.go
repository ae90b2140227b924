package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/optionpricing/internal/pricing/application"
	"github.com/wyfcoding/optionpricing/internal/pricing/infrastructure/messaging"
	"github.com/wyfcoding/optionpricing/internal/pricing/infrastructure/persistence/mysql"
	redisrepo "github.com/wyfcoding/optionpricing/internal/pricing/infrastructure/persistence/redis"
	httphandler "github.com/wyfcoding/optionpricing/internal/pricing/interfaces/http"
	"github.com/wyfcoding/optionpricing/pkg/cache"
	"github.com/wyfcoding/optionpricing/pkg/config"
	"github.com/wyfcoding/optionpricing/pkg/db"
	"github.com/wyfcoding/optionpricing/pkg/logger"
	"github.com/wyfcoding/optionpricing/pkg/metrics"
	"github.com/wyfcoding/optionpricing/pkg/middleware"
	"github.com/wyfcoding/optionpricing/pkg/mq"
	"github.com/wyfcoding/optionpricing/pkg/ratelimit"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/pricing/config.toml", "配置文件路径")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		panic(fmt.Sprintf("加载配置失败: %v", err))
	}

	// 2. 初始化日志
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		panic(fmt.Sprintf("初始化日志失败: %v", err))
	}
	ctx := context.Background()

	// 3. 初始化数据库
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "连接数据库失败", "error", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(&mysql.PricingResultModel{}, &messaging.OutboxMessage{}); err != nil {
		logger.Fatal(ctx, "数据库迁移失败", "error", err)
	}

	// 4. 初始化 Redis
	redisCache, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		logger.Fatal(ctx, "连接 Redis 失败", "error", err)
	}
	defer redisCache.Close()

	// 5. 初始化 Kafka 生产者
	producer, err := mq.NewProducer(mq.KafkaConfig{Brokers: cfg.Kafka.Brokers})
	if err != nil {
		logger.Fatal(ctx, "创建 Kafka 生产者失败", "error", err)
	}
	defer producer.Close()

	// 6. 初始化指标
	m := metrics.New(cfg.ServiceName)
	if cfg.Metrics.Enabled {
		if err := m.Register(); err != nil {
			logger.Fatal(ctx, "注册指标失败", "error", err)
		}
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Fatal(ctx, "启动指标服务失败", "error", err)
		}
	}

	// 7. 组装基础设施与应用服务
	publisher := messaging.NewOutboxPublisher(database.DB, producer, cfg.Kafka.EventTopic, m)
	repo := mysql.NewPricingRepository(database.DB)
	pricingCache := redisrepo.NewPricingCache(redisCache.GetClient(),
		time.Duration(cfg.Pricing.CacheTTLSeconds)*time.Second)

	svc := application.NewPricingService(repo, pricingCache, publisher, m)

	// 8. 构建 HTTP 路由
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(middleware.GinRecoveryMiddleware())
	engine.Use(middleware.GinLoggingMiddleware())
	engine.Use(middleware.GinCORSMiddleware())
	engine.Use(middleware.GinMetricsMiddleware(m))
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.NewRedisRateLimiter(redisCache.GetClient())
		engine.Use(middleware.RateLimitMiddleware(limiter, cfg.RateLimit))
	}

	sys := engine.Group("/sys")
	{
		sys.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":    "healthy",
				"service":   cfg.ServiceName,
				"timestamp": time.Now().Unix(),
			})
		})
		sys.GET("/ready", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ready"})
		})
	}
	debug := engine.Group("/debug/pprof")
	{
		debug.GET("/", gin.WrapF(pprof.Index))
		debug.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		debug.GET("/profile", gin.WrapF(pprof.Profile))
		debug.GET("/symbol", gin.WrapF(pprof.Symbol))
		debug.GET("/trace", gin.WrapF(pprof.Trace))
	}

	handler := httphandler.NewPricingHandler(svc)
	handler.RegisterRoutes(engine.Group("/api/v1"))

	// 9. 启动服务
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(runCtx)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
	g.Go(func() error {
		logger.Info(gCtx, "HTTP 服务启动", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := publisher.StartRelay(gCtx,
			time.Duration(cfg.Pricing.OutboxIntervalMs)*time.Millisecond,
			cfg.Pricing.OutboxBatchSize)
		if err == context.Canceled {
			return nil
		}
		return err
	})

	// 10. 优雅关闭
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info(ctx, "收到退出信号, 正在关闭服务...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error(ctx, "服务异常退出", "error", err)
		os.Exit(1)
	}
	logger.Info(ctx, "服务已退出", "service", cfg.ServiceName)
}
