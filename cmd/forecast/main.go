package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"github.com/wyfcoding/pkg/config"
	pkgclickhouse "github.com/wyfcoding/pkg/database/clickhouse"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/messagequeue/kafka"
	"github.com/wyfcoding/pkg/metrics"
	"github.com/wyfcoding/priceforecast/internal/forecast/application"
	"github.com/wyfcoding/priceforecast/internal/forecast/domain"
	chsource "github.com/wyfcoding/priceforecast/internal/forecast/infrastructure/marketdata/clickhouse"
	"github.com/wyfcoding/priceforecast/internal/forecast/infrastructure/marketdata/csvfile"
	forecast_mysql "github.com/wyfcoding/priceforecast/internal/forecast/infrastructure/persistence/mysql"
	forecast_redis "github.com/wyfcoding/priceforecast/internal/forecast/infrastructure/persistence/redis"
	"github.com/wyfcoding/priceforecast/internal/forecast/infrastructure/publisher"
	"github.com/wyfcoding/priceforecast/internal/forecast/interfaces/consumer"
	http_server "github.com/wyfcoding/priceforecast/internal/forecast/interfaces/http"
	"golang.org/x/sync/errgroup"
	gorm_mysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/forecast/config.toml", "path to config file")
	flag.Parse()

	// 1. Config
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Sprintf("read config failed: %v", err))
	}

	// 2. Logger
	logger := logging.NewLogger("forecast", "main", viper.GetString("log.level"))
	slog.SetDefault(logger.Logger)

	// 3. Metrics
	m := metrics.NewMetrics("forecast")

	// 4. Database
	dsn := viper.GetString("database.source")
	db, err := gorm.Open(gorm_mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		panic(fmt.Sprintf("connect db failed: %v", err))
	}
	if err := db.AutoMigrate(&domain.ForecastRun{}); err != nil {
		panic(fmt.Sprintf("migrate db failed: %v", err))
	}
	runRepo := forecast_mysql.NewForecastRunRepository(db)

	// 5. Report cache (optional)
	var reportCache domain.ReportCache
	if addr := viper.GetString("redis.addr"); addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		})
		reportCache = forecast_redis.NewReportRedisCache(redisClient, viper.GetDuration("redis.report_ttl"))
	}

	// 6. History sources
	sources := map[string]domain.HistorySource{}
	csvDelimiter := ','
	if d := viper.GetString("history.csv_delimiter"); d != "" {
		csvDelimiter = rune(d[0])
	}
	sources["csv"] = csvfile.NewSource(viper.GetString("history.csv_dir"), csvDelimiter)
	if chAddr := viper.GetString("clickhouse.addr"); chAddr != "" {
		conn, err := pkgclickhouse.NewClient(config.ClickHouseConfig{
			Addr:     chAddr,
			Database: viper.GetString("clickhouse.database"),
			Username: viper.GetString("clickhouse.username"),
			Password: viper.GetString("clickhouse.password"),
		})
		if err != nil {
			panic(fmt.Sprintf("connect clickhouse failed: %v", err))
		}
		sources["clickhouse"] = chsource.NewSource(conn)
	}
	defaultSource := viper.GetString("history.default_source")
	if defaultSource == "" {
		defaultSource = "csv"
	}

	// 7. Kafka (optional)
	var eventPublisher domain.EventPublisher
	var producer *kafka.Producer
	var requestConsumer *kafka.Consumer
	if viper.GetBool("kafka.enabled") {
		producer = kafka.NewProducer(config.KafkaConfig{
			Topic:        viper.GetString("kafka.completed_topic"),
			Brokers:      viper.GetStringSlice("kafka.brokers"),
			WriteTimeout: 10 * time.Second,
		}, logger)
		eventPublisher = publisher.NewKafkaEventPublisher(producer)

		if topic := viper.GetString("kafka.requests_topic"); topic != "" {
			requestConsumer = kafka.NewConsumer(config.KafkaConfig{
				Topic:   topic,
				GroupID: viper.GetString("kafka.group_id"),
				Brokers: viper.GetStringSlice("kafka.brokers"),
			}, logger)
		}
	}

	// 8. Application
	appService := application.NewForecastService(
		runRepo, sources, defaultSource, reportCache, eventPublisher, m, logger.Logger)

	// 9. Interfaces
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	sys := r.Group("/sys")
	{
		sys.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
		sys.GET("/ready", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "READY"}) })
	}
	r.GET("/metrics", gin.WrapH(m.Handler()))
	pp := r.Group("/debug/pprof")
	{
		pp.GET("/", gin.WrapF(pprof.Index))
		pp.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		pp.GET("/profile", gin.WrapF(pprof.Profile))
		pp.GET("/symbol", gin.WrapF(pprof.Symbol))
		pp.GET("/trace", gin.WrapF(pprof.Trace))
	}
	http_server.NewForecastHandler(appService).RegisterRoutes(r)

	// 10. Start
	g, ctx := errgroup.WithContext(context.Background())

	httpPort := viper.GetString("server.http_port")
	if httpPort == "" {
		httpPort = "8093"
	}
	server := &http.Server{Addr: fmt.Sprintf(":%s", httpPort), Handler: r}
	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	if requestConsumer != nil {
		workers := viper.GetInt("kafka.workers")
		if workers <= 0 {
			workers = 2
		}
		handler := consumer.NewRequestHandler(appService, logger.Logger)
		requestConsumer.Start(ctx, workers, handler.Handle)
		slog.Info("forecast request consumer started", "workers", workers)
	}

	// 11. Graceful Shutdown
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			slog.Info("shutting down servers...")
		case <-ctx.Done():
			slog.Info("context cancelled, shutting down...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown failed", "error", err)
		}
		if requestConsumer != nil {
			_ = requestConsumer.Close()
		}
		if producer != nil {
			_ = producer.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
	}
}
