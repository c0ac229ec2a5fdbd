package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"kith-backend/application/ports"
	"kith-backend/application/queries"
	querybus "kith-backend/application/queries/bus"
	queries_handlers "kith-backend/application/queries/handlers"
	"kith-backend/application/services"
	"kith-backend/domain/layout"
	"kith-backend/infrastructure/config"
	dynamocatalog "kith-backend/infrastructure/persistence/dynamodb"
	memorycatalog "kith-backend/infrastructure/persistence/memory"
	neo4jcatalog "kith-backend/infrastructure/persistence/neo4j"
	"kith-backend/infrastructure/resilience"
	"kith-backend/interfaces/websocket"
	apperrors "kith-backend/pkg/errors"
	"kith-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Catalog       ports.Catalog
	Metrics       *observability.Metrics
	QueryBus      *querybus.QueryBus
	Hub           *websocket.Hub
	Controller    *services.ViewController
	TuningWatcher *config.TuningWatcher
	ErrorHandler  *apperrors.ErrorHandler
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideCatalog creates the relationship catalog selected by configuration
// and wraps it with the circuit breaker.
func ProvideCatalog(
	ctx context.Context,
	cfg *config.Config,
	client *awsdynamodb.Client,
	logger *zap.Logger,
) (ports.Catalog, error) {
	var catalog ports.Catalog

	switch cfg.CatalogBackend {
	case config.CatalogMemory:
		mem := memorycatalog.NewCatalog()
		if cfg.DatasetPath != "" {
			if err := mem.LoadFile(cfg.DatasetPath); err != nil {
				return nil, fmt.Errorf("load dataset: %w", err)
			}
		}
		catalog = mem

	case config.CatalogDynamoDB:
		catalog = dynamocatalog.NewCatalog(client, cfg.DynamoDBTable, logger)

	case config.CatalogNeo4j:
		c, err := neo4jcatalog.NewCatalog(ctx, neo4jcatalog.Options{
			URI:      cfg.Neo4jURI,
			Database: cfg.Neo4jDatabase,
			Username: cfg.Neo4jUsername,
			Password: cfg.Neo4jPassword,
		}, logger)
		if err != nil {
			return nil, err
		}
		catalog = c

	default:
		return nil, fmt.Errorf("unknown catalog backend %q", cfg.CatalogBackend)
	}

	return resilience.NewBreakerCatalog(catalog, logger), nil
}

// ProvideMetrics creates metrics registered on the default registry
func ProvideMetrics() *observability.Metrics {
	return observability.NewMetrics(prometheus.DefaultRegisterer)
}

// ProvideErrorHandler creates the HTTP error handler
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *apperrors.ErrorHandler {
	return apperrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	catalog ports.Catalog,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()

	networkViewHandler := queries_handlers.NewGetNetworkViewHandler(catalog, metrics, logger)
	if err := queryBus.Register(queries.GetNetworkViewQuery{}, networkViewHandler); err != nil {
		return nil, err
	}

	return queryBus, nil
}

// ProvideTuning loads the simulation tuning file
func ProvideTuning(cfg *config.Config) (layout.Tuning, error) {
	return config.LoadTuning(cfg.TuningPath)
}

// ProvideHub creates the WebSocket hub
func ProvideHub(logger *zap.Logger) *websocket.Hub {
	return websocket.NewHub(logger)
}

// ProvideViewController creates the view controller with the hub as its
// frame sink
func ProvideViewController(
	catalog ports.Catalog,
	hub *websocket.Hub,
	tuning layout.Tuning,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.ViewController {
	return services.NewViewController(catalog, hub, tuning, metrics, logger)
}

// ProvideTuningWatcher creates the tuning hot-reload watcher, or nil when
// no tuning file is configured
func ProvideTuningWatcher(
	cfg *config.Config,
	controller *services.ViewController,
	logger *zap.Logger,
) (*config.TuningWatcher, error) {
	if cfg.TuningPath == "" {
		return nil, nil
	}
	return config.NewTuningWatcher(cfg.TuningPath, controller.SetTuning, logger)
}
