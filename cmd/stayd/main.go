package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"stayd/internal/app/commands"
	availabilityapp "stayd/internal/app/handlers/availability"
	bookingapp "stayd/internal/app/handlers/booking"
	pricingapp "stayd/internal/app/handlers/pricing"
	unitsapp "stayd/internal/app/handlers/units"
	"stayd/internal/app/middleware"
	appoutbox "stayd/internal/app/outbox"
	"stayd/internal/app/policies"
	"stayd/internal/app/queries"
	"stayd/internal/app/uow"
	domainrates "stayd/internal/domain/rates"
	domainunit "stayd/internal/domain/unit"
	"stayd/internal/infra/broker/kafka"
	"stayd/internal/infra/config"
	dbmongo "stayd/internal/infra/db/mongo"
	ginserver "stayd/internal/infra/http/gin"
	"stayd/internal/infra/obs"
	infraoutbox "stayd/internal/infra/outbox"
	"stayd/internal/infra/payments"
	"stayd/internal/infra/storage/memory"
	redisstore "stayd/internal/infra/storage/redis"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Checks: app.readiness}, app.handlers)

	if cfg.StorageMode == "memory" {
		fixturesPath := os.Getenv("UNIT_FIXTURES")
		if fixturesPath == "" {
			fixturesPath = filepath.Join("data", "units.json")
		}
		if err := app.loadUnitFixtures(ctx, fixturesPath, logger); err != nil {
			logger.Warn("unit fixtures load failed", "error", err, "path", fixturesPath)
		}
	}

	app.startBackground(ctx, cfg, logger)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers  ginserver.Handlers
	readiness map[string]func() error
	commands  commands.Bus

	unitRepo    domainunit.Repository
	rateRepo    domainrates.RuleRepository
	mongoClient *dbmongo.Client
	redisClient *goredis.Client
	producer    *kafka.Producer
	consumer    *kafka.Consumer
	worker      *infraoutbox.Worker
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{readiness: map[string]func() error{}}
	clock := policies.SystemClock{}

	var (
		uowFactory uow.UoWFactory
		outboxImpl appoutbox.Outbox
		idStore    middleware.IdempotencyStore
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := dbmongo.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		app.mongoClient = client
		app.readiness["mongo"] = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		app.unitRepo = dbmongo.NewUnitRepository(client.DB)
		app.rateRepo = dbmongo.NewRuleRepository(client.DB)
		bookingRepo := dbmongo.NewReservationRepository(client.DB)
		uowFactory = dbmongo.Factory{
			DB:          client.DB,
			UnitRepo:    app.unitRepo,
			RateRepo:    app.rateRepo,
			BookingRepo: bookingRepo,
		}
		store := infraoutbox.NewStore(client.DB)
		outboxImpl = store
		idStore = dbmongo.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return nil, fmt.Errorf("kafka producer: %w", err)
			}
			app.producer = producer
			app.worker = &infraoutbox.Worker{
				Store:       store,
				Producer:    producer,
				Logger:      logger,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Source:      "app://stayd",
				Backoff:     cfg.RetryBackoff,
			}
		}
	default:
		app.unitRepo = memory.NewUnitRepository()
		app.rateRepo = memory.NewRuleRepository()
		bookingRepo := memory.NewReservationRepository()
		uowFactory = memory.Factory{
			UnitRepo:    app.unitRepo,
			RateRepo:    app.rateRepo,
			BookingRepo: bookingRepo,
		}
		outboxImpl = memory.NewOutbox()
		idStore = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
	}

	var locker policies.UnitLocker
	if cfg.RedisAddr != "" {
		app.redisClient = goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		app.readiness["redis"] = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return app.redisClient.Ping(pingCtx).Err()
		}
		locker = redisstore.NewUnitLocker(app.redisClient)
	} else {
		locker = memory.NewUnitLocker()
	}

	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{
		UoWFactory: uowFactory,
		Clock:      clock,
		HoldWindow: cfg.HoldWindow,
		Outbox:     outboxImpl,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.ConfirmBookingCommand{}.Key(), &bookingapp.ConfirmBookingHandler{
		Locker:  locker,
		Clock:   clock,
		Outbox:  outboxImpl,
		Encoder: encoder,
		Logger:  logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		Clock:   clock,
		Outbox:  outboxImpl,
		Encoder: encoder,
		Logger:  logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.ExpirePendingCommand{}.Key(), &bookingapp.ExpirePendingHandler{
		Clock:      clock,
		HoldWindow: cfg.HoldWindow,
		Outbox:     outboxImpl,
		Encoder:    encoder,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, unitsapp.CreateUnitCommand{}.Key(), &unitsapp.CreateUnitHandler{
		Clock:   clock,
		Outbox:  outboxImpl,
		Encoder: encoder,
		Logger:  logger,
	})
	commands.RegisterHandler(commandBus, unitsapp.SetUnitStatusCommand{}.Key(), &unitsapp.SetUnitStatusHandler{
		Clock:  clock,
		Logger: logger,
	})
	commands.RegisterHandler(commandBus, unitsapp.UpsertPricingRuleCommand{}.Key(), &unitsapp.UpsertPricingRuleHandler{
		Clock:  clock,
		Logger: logger,
	})
	commands.RegisterHandler(commandBus, unitsapp.DeactivatePricingRuleCommand{}.Key(), &unitsapp.DeactivatePricingRuleHandler{
		Clock:  clock,
		Logger: logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.CheckAvailabilityQuery{}.Key(), &availabilityapp.CheckAvailabilityHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, pricingapp.QuotePriceQuery{}.Key(), &pricingapp.QuotePriceHandler{
		UoWFactory: uowFactory,
		Clock:      clock,
		HoldWindow: cfg.HoldWindow,
	})
	queries.RegisterHandler(queryBus, bookingapp.GetBookingQuery{}.Key(), &bookingapp.GetBookingHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, bookingapp.ListGuestBookingsQuery{}.Key(), &bookingapp.ListGuestBookingsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, unitsapp.GetUnitQuery{}.Key(), &unitsapp.GetUnitHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, unitsapp.ListOwnerUnitsQuery{}.Key(), &unitsapp.ListOwnerUnitsHandler{UoWFactory: uowFactory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(middleware.SelfValidation{}),
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxImpl),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	app.commands = commandBusWithMiddleware
	app.handlers = ginserver.Handlers{
		Booking:      ginserver.BookingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
		Availability: ginserver.AvailabilityHandler{Queries: queryBusWithMiddleware},
		Pricing:      ginserver.PricingHandler{Queries: queryBusWithMiddleware},
		Unit:         ginserver.UnitHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
	}

	if len(cfg.KafkaBrokers) > 0 {
		gateway := payments.LogGateway{Logger: logger}
		handler := &payments.EventConsumer{Bus: commandBusWithMiddleware, Gateway: gateway, Logger: logger}
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.PaymentGroupID, nil, handler)
		if err != nil {
			return nil, fmt.Errorf("kafka consumer: %w", err)
		}
		app.consumer = consumer
	}

	return app, nil
}

func (a *application) startBackground(ctx context.Context, cfg config.Config, logger *slog.Logger) {
	if a.worker != nil {
		go func() {
			if err := a.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}
	if a.consumer != nil {
		go func() {
			topics := []string{cfg.PaymentEventsTopic}
			if err := a.consumer.Run(ctx, topics); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("payment consumer stopped", "error", err)
			}
		}()
	}
}

func (a *application) close(logger *slog.Logger) {
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			logger.Warn("kafka consumer close failed", "error", err)
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Warn("kafka producer close failed", "error", err)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			logger.Warn("redis close failed", "error", err)
		}
	}
	if a.mongoClient != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.mongoClient.Close(closeCtx); err != nil {
			logger.Warn("mongo disconnect failed", "error", err)
		}
	}
}

func (a *application) loadUnitFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("unit fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures []unitFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, fx := range fixtures {
		rental, err := domainunit.NewRentalUnit(domainunit.CreateParams{
			ID:               domainunit.UnitID(fx.ID),
			Owner:            domainunit.OwnerID(fx.Owner),
			Name:             fx.Name,
			Currency:         fx.Currency,
			BaseRateCents:    fx.BaseRateCents,
			CleaningFeeCents: fx.CleaningFeeCents,
			ServiceFeePct:    fx.ServiceFeePct,
			TaxPct:           fx.TaxPct,
			TouristTaxCents:  fx.TouristTaxCents,
			MaxGuests:        fx.MaxGuests,
			Now:              now,
		})
		if err != nil {
			logger.Error("fixture invalid", "unit_id", fx.ID, "error", err)
			continue
		}
		rental.ClearEvents()
		if err := a.unitRepo.Save(ctx, rental); err != nil {
			logger.Error("cannot store fixture unit", "unit_id", fx.ID, "error", err)
			continue
		}
		for _, rf := range fx.Rules {
			rule, err := domainrates.NewPricingRule(domainrates.RuleParams{
				ID:            domainrates.RuleID(rf.ID),
				UnitID:        rental.ID,
				Label:         rf.Label,
				Start:         rf.Start,
				End:           rf.End,
				MultiplierPct: rf.MultiplierPct,
				Now:           now,
			})
			if err != nil {
				logger.Error("rule fixture invalid", "rule_id", rf.ID, "unit_id", fx.ID, "error", err)
				continue
			}
			if err := a.rateRepo.Save(ctx, rule); err != nil {
				logger.Error("cannot store fixture rule", "rule_id", rf.ID, "error", err)
				continue
			}
		}
		logger.Info("unit fixture imported", "unit_id", rental.ID, "rules", len(fx.Rules))
	}
	return nil
}

type unitFixture struct {
	ID               string        `json:"id"`
	Owner            string        `json:"owner"`
	Name             string        `json:"name"`
	Currency         string        `json:"currency"`
	BaseRateCents    int64         `json:"base_rate_cents"`
	CleaningFeeCents int64         `json:"cleaning_fee_cents"`
	ServiceFeePct    int64         `json:"service_fee_pct"`
	TaxPct           int64         `json:"tax_pct"`
	TouristTaxCents  int64         `json:"tourist_tax_cents"`
	MaxGuests        int           `json:"max_guests"`
	Rules            []ruleFixture `json:"rules"`
}

type ruleFixture struct {
	ID            string    `json:"id"`
	Label         string    `json:"label"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	MultiplierPct int64     `json:"multiplier_pct"`
}
