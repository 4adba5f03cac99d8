package main

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"
    _ "time/tzdata"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/spf13/pflag"
    "go.uber.org/zap"

    "github.com/jrwishart93/james-square-booking/internal/booking"
    "github.com/jrwishart93/james-square-booking/internal/cache"
    "github.com/jrwishart93/james-square-booking/internal/config"
    "github.com/jrwishart93/james-square-booking/internal/database"
    "github.com/jrwishart93/james-square-booking/internal/handler"
    "github.com/jrwishart93/james-square-booking/internal/logger"
    "github.com/jrwishart93/james-square-booking/internal/middleware"
    "github.com/jrwishart93/james-square-booking/internal/model"
    "github.com/jrwishart93/james-square-booking/internal/queue"
    "github.com/jrwishart93/james-square-booking/internal/repository"
    "github.com/jrwishart93/james-square-booking/internal/router"
    "github.com/jrwishart93/james-square-booking/internal/schedule"
    "github.com/jrwishart93/james-square-booking/internal/service"
    "github.com/jrwishart93/james-square-booking/internal/utils"
)

func main() {
    var (
        envFile    = pflag.String("env-file", ".env", "optional dotenv file loaded before reading the environment")
        rulesFile  = pflag.String("rules", "", "schedule rules YAML (overrides SCHEDULE_RULES_FILE)")
        migrate    = pflag.Bool("migrate", false, "create the reservations table and exit")
        printSlots = pflag.String("print-slots", "", "print the schedule of every facility on `DATE` and exit")
        issueToken = pflag.String("issue-token", "", "print a development access token for `HANDLE` and exit")
        tokenRole  = pflag.String("role", "resident", "role claim for --issue-token")
    )
    pflag.Parse()

    if *printSlots != "" {
        path := *rulesFile
        if path == "" {
            path = os.Getenv("SCHEDULE_RULES_FILE")
        }
        if err := runPrintSlots(path, *printSlots); err != nil {
            fmt.Fprintln(os.Stderr, err)
            os.Exit(1)
        }
        return
    }

    cfg, err := config.Load(*envFile)
    if err != nil {
        fmt.Fprintln(os.Stderr, "config:", err)
        os.Exit(1)
    }
    if *rulesFile != "" {
        cfg.RulesFile = *rulesFile
    }

    log, err := logger.New(cfg.Development())
    if err != nil {
        fmt.Fprintln(os.Stderr, "logger:", err)
        os.Exit(1)
    }
    defer func() { _ = log.Sync() }()

    if *issueToken != "" {
        if !cfg.Development() {
            log.Fatal("--issue-token is only available when APP_ENV is dev or test")
        }
        tok, err := utils.NewAccessToken(cfg.JWTSecret, *issueToken, string(booking.ParseRole(*tokenRole)), 12*time.Hour)
        if err != nil {
            log.Fatal("issue token", zap.Error(err))
        }
        fmt.Println(tok.Token)
        return
    }

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatal("database", zap.Error(err))
    }
    defer db.Close()

    if *migrate {
        ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
        defer cancel()
        if err := database.Migrate(ctx, db); err != nil {
            log.Fatal("migrate", zap.Error(err))
        }
        log.Info("schema up to date")
        return
    }

    rules := schedule.DefaultRules()
    if cfg.RulesFile != "" {
        if rules, err = schedule.LoadRules(cfg.RulesFile); err != nil {
            log.Fatal("schedule rules", zap.String("file", cfg.RulesFile), zap.Error(err))
        }
    }
    gen := schedule.NewGenerator(rules)

    opts := []booking.Option{
        booking.WithQuota(booking.Quota{PerFacility: cfg.QuotaPerFacility, PerDay: cfg.QuotaPerDay}),
        booking.WithLogger(log.Named("booking")),
    }
    if cfg.EventsEnabled {
        opts = append(opts, booking.WithEvents(service.NewEventPublisher(cfg.AMQPURL, log.Named("events"))))
    }
    gw := booking.NewGateway(repository.NewReservationRepo(db), cfg.StoreTimeout)
    ctl := booking.NewController(gw, gen, cfg.Location, opts...)

    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Warn("redis unavailable; slot cache and rate limit disabled")
    } else {
        defer rdb.Close()
    }
    slotCache := cache.NewSlotCache(config.LoadCacheConfig(), rdb, rules.Fingerprint())
    limiter := middleware.NewFixedWindow(config.LoadRateLimitConfig(), rdb, log.Named("ratelimit"))

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    if cfg.AuditConsumer {
        consumer := queue.NewAuditConsumer(cfg.AMQPURL, cfg.AuditLogDir, log.Named("audit"))
        go func() {
            if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
                log.Error("audit consumer stopped", zap.Error(err))
            }
        }()
    }

    e := echo.New()
    e.HideBanner = true
    e.Use(echomw.Recover())
    e.Use(requestLogger(log.Named("http")))

    router.RegisterRoutes(e, db)
    router.RegisterPublic(e, handler.NewPublicHandler(ctl, slotCache))
    router.RegisterReservations(e, handler.NewReservationHandler(ctl), cfg.JWTSecret, limiter)

    addr := ":" + cfg.Port
    log.Info("listening",
        zap.String("addr", addr),
        zap.String("env", cfg.Env),
        zap.String("tz", cfg.Location.String()),
        zap.String("rules", rules.Fingerprint()))

    go func() {
        if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
            log.Fatal("server", zap.Error(err))
        }
    }()

    <-ctx.Done()
    shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := e.Shutdown(shutdown); err != nil {
        log.Error("shutdown", zap.Error(err))
    }
}

// requestLogger sends echo's access log to zap.
func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:  true,
        LogURI:     true,
        LogStatus:  true,
        LogLatency: true,
        LogError:   true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            fields := []zap.Field{
                zap.String("method", v.Method),
                zap.String("uri", v.URI),
                zap.Int("status", v.Status),
                zap.Duration("latency", v.Latency),
            }
            if v.Error != nil {
                fields = append(fields, zap.Error(v.Error))
                log.Warn("request", fields...)
                return nil
            }
            log.Info("request", fields...)
            return nil
        },
    })
}

// runPrintSlots writes the schedule of every facility on date to stdout.
func runPrintSlots(rulesFile, date string) error {
    rules := schedule.DefaultRules()
    if rulesFile != "" {
        var err error
        if rules, err = schedule.LoadRules(rulesFile); err != nil {
            return fmt.Errorf("schedule rules %s: %w", rulesFile, err)
        }
    }
    d, err := model.ParseDate(date)
    if err != nil {
        return fmt.Errorf("%w: %q", err, date)
    }
    gen := schedule.NewGenerator(rules)
    fmt.Printf("%s (rules %s)\n", model.FormatDate(d), rules.Fingerprint())
    for _, f := range model.Facilities() {
        fmt.Printf("\n%s\n", f)
        for _, s := range gen.Generate(d, f) {
            fmt.Printf("  %s-%s  %s\n", s.Start, s.End, s.Status)
        }
    }
    return nil
}
