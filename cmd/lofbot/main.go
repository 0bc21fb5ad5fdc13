package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lofbot/client/internal/bot"
	"github.com/lofbot/client/internal/config"
	"github.com/lofbot/client/internal/data"
	gonet "github.com/lofbot/client/internal/net"
	"github.com/lofbot/client/internal/persist"
	"github.com/lofbot/client/internal/scripting"
	"github.com/lofbot/client/internal/world"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

// printRoster lists the accounts about to log in.
func printRoster(cfg *config.Config) {
	tw := tablewriter.NewWriter(os.Stdout)
	tw.SetHeader([]string{"Account", "Role", "Slot", "Facing", "Sit"})
	tw.SetBorder(true)
	tw.SetAutoWrapText(false)

	tw.Append([]string{cfg.Account.Name, "master", fmt.Sprintf("%d", cfg.Account.CharSlot),
		cfg.Account.Direction, fmt.Sprintf("%t", cfg.Account.Sit)})
	for _, s := range cfg.Slaves {
		tw.Append([]string{s.Name, "slave", fmt.Sprintf("%d", s.CharSlot), s.Direction, "true"})
	}
	tw.Render()
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main bot logic ────────────────────────────────────────────────

func run() error {
	cfgFlag := flag.String("config", "", "path to the TOML config (default $"+config.EnvPath+" or "+config.DefaultPath+")")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(config.Path(*cfgFlag))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Static data and scripts
	printSection("Data")
	emotes := data.DefaultEmotes()
	if cfg.Data.Emotes != "" {
		emotes, err = data.LoadEmoteTable(cfg.Data.Emotes)
		if err != nil {
			return fmt.Errorf("load emotes: %w", err)
		}
	}
	printStat("Emotes", emotes.Count())

	engine, err := scripting.NewEngine(cfg.Scripts.Dir, log)
	if err != nil {
		return fmt.Errorf("load scripts: %w", err)
	}
	defer engine.Close()
	engine.SetAdmins(cfg.Scripts.Admins)
	printStat("Commands", len(engine.Commands()))
	fmt.Println()

	shared := bot.Shared{
		Names:    world.NewNames(),
		Emotes:   emotes,
		Commands: engine,
	}

	// 4. Optional PostgreSQL
	if cfg.Database.DSN != "" {
		printSection("Database")
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		db, err := persist.NewDB(dbCtx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		version, err := persist.RunMigrations(dbCtx, db)
		cancel()
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printStat("Schema version", int(version))
		fmt.Println()

		shared.Sightings = persist.NewSightingRepo(db)
		shared.Listeners = persist.NewListenerRepo(db)
	}

	// 5. Bots
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	master := newBot(cfg, cfg.Account.Name, cfg.Account.Password, cfg.Account.CharSlot,
		cfg.Account.Speaker, cfg.Account.Direction, cfg.Account.Sit, shared, nil, log)
	g.Go(func() error {
		// the master going away ends the process
		defer cancel()
		return keepAlive(gctx, master, cfg.Network.ReconnectDelay, log.With(zap.String("account", cfg.Account.Name)))
	})
	g.Go(func() error {
		master.RunPeriodic(gctx, cfg.Network.PeriodicInterval)
		return nil
	})

	for _, s := range cfg.Slaves {
		s := s
		slaveLog := log.With(zap.String("account", s.Name), zap.Bool("slave", true))
		slave := newBot(cfg, s.Name, s.Password, s.CharSlot, s.Name, s.Direction, true, shared, master, log)
		g.Go(func() error {
			if err := keepAlive(gctx, slave, cfg.Network.ReconnectDelay, slaveLog); err != nil {
				slaveLog.Error("slave stopped", zap.Error(err))
			}
			return nil
		})
		g.Go(func() error {
			slave.RunPeriodic(gctx, cfg.Network.PeriodicInterval)
			return nil
		})
	}

	printSection("Accounts")
	printRoster(cfg)
	fmt.Println()
	printReady(fmt.Sprintf("%s connecting to %s:%d with %d slave(s)",
		cfg.Account.Name, cfg.Server.Host, cfg.Server.Port, len(cfg.Slaves)))

	err = g.Wait()
	log.Info("shutting down")
	return err
}

func newBot(cfg *config.Config, account, password string, slot int, speaker, direction string,
	sit bool, shared bot.Shared, master *bot.Client, log *zap.Logger) *bot.Client {
	sess := gonet.NewSession(gonet.Options{
		Host:             cfg.Server.Host,
		Port:             cfg.Server.Port,
		SameIP:           cfg.Server.SameIP,
		Account:          account,
		Password:         password,
		CharSlot:         uint8(slot),
		DialTimeout:      cfg.Network.DialTimeout,
		HandshakeTimeout: cfg.Network.HandshakeTimeout,
		ReadTimeout:      cfg.Network.ReadTimeout,
		WriteTimeout:     cfg.Network.WriteTimeout,
		ReadBuffer:       cfg.Network.ReadBuffer,
	}, nil, log)

	return bot.New(bot.Options{
		Account:   account,
		Speaker:   speaker,
		Direction: direction,
		Sit:       sit,
		Workers:   cfg.Network.Workers,
		QueueSize: cfg.Network.QueueSize,
	}, sess, shared, master, log.With(zap.String("account", account)))
}

// keepAlive connects c and runs it, reconnecting after delay whenever the
// session ends. A zero delay disables reconnection. Refused logins are not
// retried.
func keepAlive(ctx context.Context, c *bot.Client, delay time.Duration, log *zap.Logger) error {
	for {
		err := c.Connect(ctx)
		if err == nil {
			err = c.Run(ctx)
		}
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, gonet.ErrLoginRefused) {
			return err
		}
		if err != nil {
			log.Warn("session ended", zap.Error(err))
		} else {
			log.Info("session closed by server")
		}
		if delay == 0 {
			return err
		}

		log.Info("reconnecting", zap.Duration("delay", delay))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	log, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	if cfg.File == "" {
		return log, nil
	}

	// Rotating file copy, plain levels and ISO timestamps.
	fileEnc := zap.NewProductionEncoderConfig()
	fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
	fileCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(fileEnc),
		zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}),
		level,
	)
	return log.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	})), nil
}
