package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/logger"
	"github.com/Zachkp/portfolio/internal/storage"
	"github.com/Zachkp/portfolio/internal/typewriter"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "portfolio",
		Short:        "Serve the portfolio site",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().String("port", "", "HTTP port (overrides PORT)")
	root.PersistentFlags().String("profile", "", "profile YAML (overrides PROFILE_PATH)")
	root.PersistentFlags().String("db", "", "SQLite database path (overrides DB_PATH)")
	root.PersistentFlags().Duration("speed", 0, "typing interval (overrides TYPE_SPEED)")
	root.PersistentFlags().Duration("pause", 0, "pause after a phrase (overrides TYPE_PAUSE)")
	root.AddCommand(newTypewriterCmd())
	return root
}

// loadConfig reads the environment and applies any flags that were set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetString("port")
	}
	if flags.Changed("profile") {
		cfg.ProfilePath, _ = flags.GetString("profile")
	}
	if flags.Changed("db") {
		cfg.DBPath, _ = flags.GetString("db")
	}
	if flags.Changed("speed") {
		cfg.TypeSpeed, _ = flags.GetDuration("speed")
	}
	if flags.Changed("pause") {
		cfg.TypePause, _ = flags.GetDuration("pause")
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config) (*logger.Logger, error) {
	return logger.New(logger.Options{
		Level:         cfg.LogLevel,
		HumanReadable: cfg.LogHuman,
		File:          cfg.LogFile,
	})
}

func serve(ctx context.Context, cfg config.Config) error {
	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	gin.SetMode(cfg.GinMode)

	prof, err := loadProfile(cfg.ProfilePath)
	if err != nil {
		return err
	}
	db, err := storage.Open(ctx, cfg.DBPath, log)
	if err != nil {
		return err
	}
	defer db.Close()

	salt, err := generateToken()
	if err != nil {
		return fmt.Errorf("generate hashing salt: %w", err)
	}
	s := &server{
		profile:  prof,
		prefs:    db.Preferences(),
		contact:  contact.NewSubmitter(contact.SimulatedSender{Delay: cfg.ContactDelay}, log),
		limiter:  rate.NewLimiter(rate.Limit(cfg.ContactRate), cfg.ContactBurst),
		clock:    clockwork.NewRealClock(),
		typeOpts: typeOptions(cfg.TypeSpeed, cfg.TypePause, prof),
		log:      log,
		salt:     salt,
	}
	router, err := newRouter(s)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		// requests (and the typewriter streams) end when the server stops
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g.Go(func() error {
		log.Info("Portfolio listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return cleanupStalePreferences(ctx, s.prefs, cfg.PreferenceTTL, log)
	})
	return g.Wait()
}

func newTypewriterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "typewriter",
		Short: "Play the hero typewriter in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			prof, err := loadProfile(cfg.ProfilePath)
			if err != nil {
				return err
			}
			anim, err := typewriter.New(prof.Phrases, clockwork.NewRealClock(), typeOptions(cfg.TypeSpeed, cfg.TypePause, prof))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if d, _ := cmd.Flags().GetDuration("for"); d > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, d)
				defer cancel()
			}

			out := cmd.OutOrStdout()
			frames := subscribeFrames(anim)
			anim.Start()
			defer anim.Stop()
			for {
				select {
				case <-ctx.Done():
					fmt.Fprintln(out)
					return nil
				case text := <-frames:
					fmt.Fprintf(out, "\r\033[K%s_", text)
				}
			}
		},
	}
	cmd.Flags().Duration("for", 0, "stop after this long (0 runs until interrupted)")
	return cmd
}
