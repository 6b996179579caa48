package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"civicdesk/internal/grievance/classifier"
	grievancemetrics "civicdesk/internal/grievance/metrics"
	grievanceservice "civicdesk/internal/grievance/service"
	grievancestore "civicdesk/internal/grievance/store"
	identityservice "civicdesk/internal/identity/service"
	identitystore "civicdesk/internal/identity/store"
	"civicdesk/internal/media/fetch"
	"civicdesk/internal/media/objectstore"
	"civicdesk/internal/media/queue"
	"civicdesk/internal/platform/config"
	"civicdesk/internal/platform/postgres"
	"civicdesk/internal/platform/redis"
	"civicdesk/pkg/platform/circuit"
)

// localBucket names the in-memory media bucket used when no GCS bucket is set.
const localBucket = "civicdesk-local"

// infra holds the backends selected by configuration.
type infra struct {
	grievances       grievanceservice.Store
	classifier       grievanceservice.Classifier
	grievanceMetrics *grievancemetrics.Metrics
	accounts         identityservice.Store
	queue            queue.Publisher
	objects          objectstore.Store
	fetcher          *fetch.Fetcher
	bucket           string

	checks  map[string]func(context.Context) error
	closers []func()
}

func buildInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (_ *infra, err error) {
	in := &infra{checks: make(map[string]func(context.Context) error)}
	defer func() {
		if err != nil {
			in.Close()
		}
	}()

	in.grievanceMetrics = grievancemetrics.New()
	if err := in.selectGrievanceStore(ctx, cfg); err != nil {
		return nil, err
	}
	if err := in.buildClassifier(ctx, cfg.Classifier, log); err != nil {
		return nil, err
	}
	if err := in.selectAccountStore(ctx, cfg.Auth); err != nil {
		return nil, err
	}
	if err := in.buildMedia(ctx, cfg, log); err != nil {
		return nil, err
	}
	return in, nil
}

func (in *infra) selectGrievanceStore(ctx context.Context, cfg config.Server) error {
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		in.closers = append(in.closers, pool.Close)
		in.checks["postgres"] = pool.Ping

		pg := grievancestore.NewPostgres(pool)
		if err := pg.Migrate(ctx); err != nil {
			return err
		}
		in.grievances = pg
	case config.StoreRedis:
		rc, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		if rc == nil {
			return errors.New("redis store selected but REDIS_URL is empty")
		}
		in.closers = append(in.closers, func() { _ = rc.Close() })
		in.checks["redis"] = rc.Health
		in.grievances = grievancestore.NewRedis(rc.Client, rc.Namespace())
	default:
		in.grievances = grievancestore.NewInMemory()
	}
	return nil
}

// buildClassifier falls back to a generator-less client when no API key is
// configured; every grievance then gets the default classification.
func (in *infra) buildClassifier(ctx context.Context, cfg config.ClassifierConfig, log *slog.Logger) error {
	var gen classifier.Generator
	if cfg.APIKey != "" {
		g, err := classifier.NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model, cfg.BaseURL)
		if err != nil {
			return err
		}
		gen = g
	} else {
		log.Warn("classifier API key not set; grievances will use the default classification")
	}

	breaker := circuit.New("classifier",
		circuit.WithFailureThreshold(cfg.FailureThreshold),
		circuit.WithCooldown(cfg.Cooldown),
	)
	in.classifier = classifier.New(gen,
		classifier.WithTimeout(cfg.Timeout),
		classifier.WithBreaker(breaker),
		classifier.WithLogger(log),
		classifier.WithMetrics(in.grievanceMetrics),
	)
	return nil
}

func (in *infra) selectAccountStore(ctx context.Context, cfg config.AuthConfig) error {
	if cfg.DSN == "" {
		in.accounts = identitystore.NewInMemory()
		return nil
	}
	db, err := identitystore.Open(ctx, cfg.DSN)
	if err != nil {
		return err
	}
	in.closers = append(in.closers, func() { _ = db.Close() })
	in.checks["identity_db"] = db.PingContext

	pg := identitystore.NewPostgres(db)
	if err := pg.Migrate(ctx); err != nil {
		return err
	}
	in.accounts = pg
	return nil
}

func (in *infra) buildMedia(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	in.fetcher = fetch.New(cfg.Media.AccountSID, cfg.Media.AuthToken, cfg.Media.FetchTimeout)

	if len(cfg.Kafka.Brokers) > 0 {
		k, err := queue.NewKafka(ctx, cfg.Kafka, log)
		if err != nil {
			return err
		}
		in.closers = append(in.closers, k.Close)
		in.checks["kafka"] = k.Health
		in.queue = k
	} else {
		in.queue = queue.NewInMemory()
	}

	if cfg.Media.Bucket == "" {
		in.objects = objectstore.NewInMemory()
		in.bucket = localBucket
		return nil
	}
	gcs, err := objectstore.NewGCS(ctx, cfg.Media.Bucket, cfg.Media.CredentialsFile)
	if err != nil {
		return err
	}
	in.closers = append(in.closers, func() { _ = gcs.Close() })
	in.objects = gcs
	in.bucket = cfg.Media.Bucket
	return nil
}

// Health runs every backend check and reports the first failure.
func (in *infra) Health(ctx context.Context) error {
	for name, check := range in.checks {
		if err := check(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Close releases backends in reverse order of acquisition.
func (in *infra) Close() {
	for i := len(in.closers) - 1; i >= 0; i-- {
		in.closers[i]()
	}
	in.closers = nil
}
