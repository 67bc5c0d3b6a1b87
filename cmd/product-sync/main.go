package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iyhunko/product-list-sync/internal/config"
	httpAPI "github.com/iyhunko/product-list-sync/internal/http"
	"github.com/iyhunko/product-list-sync/internal/http/controller"
	"github.com/iyhunko/product-list-sync/internal/logger"
	"github.com/iyhunko/product-list-sync/internal/metrics"
	"github.com/iyhunko/product-list-sync/internal/productapi"
	"github.com/iyhunko/product-list-sync/internal/service"
	sqspkg "github.com/iyhunko/product-list-sync/internal/sqs"
)

func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)

	logger.InitJSONLogger(conf.DebugMode)
	if !conf.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	api := productapi.New(conf.ProductAPI.URL, productapi.WithTimeout(conf.ProductAPI.Timeout))

	var (
		opts      []service.Option
		sqsClient *sqs.Client
		source    = uuid.NewString()
	)
	if conf.AWS.NotificationsEnabled() {
		sqsClient, err = sqspkg.NewClient(ctx, conf.AWS.Region, conf.AWS.Endpoint)
		handleErr("creating SQS client", err)
		opts = append(opts, service.WithNotifier(sqspkg.NewPublisher(sqsClient, conf.AWS.SQSQueueURL, source)))
	}

	products := service.NewProductListController(api, opts...)

	// Initial load; a failure leaves an empty collection until the next refresh
	if err := products.LoadAll(ctx); err != nil {
		slog.Warn("Initial product load failed", slog.Any("err", err))
	}

	if sqsClient != nil {
		listener := sqspkg.NewListener(sqsClient, conf.AWS.SQSQueueURL, source, products.LoadAll)
		go func() {
			if err := listener.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("Product change listener stopped", slog.Any("err", err))
			}
		}()
	}

	metrics.StartMetricsServer(ctx, conf)

	engine := httpAPI.InitRouter(gin.New(), controller.New(conf), controller.NewProductController(products, conf.ProductAPI.PlaceholderImageURL))
	httpServer := &http.Server{
		Addr:              ":" + conf.HTTPServer.Port,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("HTTP server starting", slog.String("port", conf.HTTPServer.Port), slog.String("product_api", conf.ProductAPI.URL))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			handleErr("listening to HTTP requests", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", slog.Any("err", err))
	}
}

func handleErr(msg string, err error) {
	if err != nil {
		log.Fatalf("error while %s: %v", msg, err)
	}
}
