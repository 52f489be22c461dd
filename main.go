package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tonghaoch/transaction-service-go/internal/api"
	"github.com/tonghaoch/transaction-service-go/internal/config"
	"github.com/tonghaoch/transaction-service-go/internal/logger"
	"github.com/tonghaoch/transaction-service-go/internal/server"
	"github.com/tonghaoch/transaction-service-go/internal/state"
	"github.com/tonghaoch/transaction-service-go/internal/transaction"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          api.ServiceName,
		Short:        "HTTP service that totals the positive amounts of a transaction batch",
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(startCmd())
	rootCmd.AddCommand(totalCmd())
	return rootCmd
}

func startCmd() *cobra.Command {
	var (
		port             int
		verbose          bool
		rateLimitSeconds int
		rateLimitWait    bool
		maxWait          time.Duration
		apiKeys          []string
		noAudit          bool
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the transaction HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logLevel := slog.LevelInfo
			if verbose {
				logLevel = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})))

			state.Global.SetVersion(version)
			state.Global.SetVerbose(verbose)

			slog.Info(api.ServiceName, "version", version)

			if err := state.EnsurePaths(); err != nil {
				return fmt.Errorf("failed to create app directories: %w", err)
			}

			if err := config.Load(); err != nil {
				slog.Warn("failed to load config, using defaults", "error", err)
			}
			config.AddAPIKeys(apiKeys...)

			if !noAudit {
				logger.Init(state.LogDir())
			}
			defer logger.CloseAll()

			srv := server.New(server.Options{
				Port:             port,
				RateLimitSeconds: rateLimitSeconds,
				RateLimitWait:    rateLimitWait,
				RateLimitMaxWait: maxWait,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()

			fmt.Println()
			fmt.Printf("  %s is running on http://localhost:%d\n", api.ServiceName, port)
			fmt.Println()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("listen: %w", err)
			case <-ctx.Done():
			}

			slog.Info("shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8000, "port to listen on")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	cmd.Flags().IntVarP(&rateLimitSeconds, "rate-limit", "r", 0, "minimum seconds between total requests (0 = disabled)")
	cmd.Flags().BoolVarP(&rateLimitWait, "wait", "w", false, "wait instead of rejecting on rate limit")
	cmd.Flags().DurationVar(&maxWait, "max-wait", server.DefaultRateLimitMaxWait, "longest a request is queued with --wait before a 429")
	cmd.Flags().StringSliceVar(&apiKeys, "api-key", nil, "API key accepted in addition to config.json (repeatable)")
	cmd.Flags().BoolVar(&noAudit, "no-audit", false, "disable the on-disk audit log")

	return cmd
}

func totalCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "total [amount...]",
		Short: "Print the sum of the positive amounts",
		Long: "Print the sum of the positive amounts given as arguments, or of the\n" +
			`"transactions" array of a request payload read with --file ("-" for stdin).`,
		Example: "  transaction-service total -- 10 20 -5\n" +
			`  echo '{"transactions": [1, 2, 3]}' | transaction-service total -f -`,
		Args: func(cmd *cobra.Command, args []string) error {
			if file != "" && len(args) > 0 {
				return errors.New("amounts and --file are mutually exclusive")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				batch transaction.Batch
				err   error
			)
			if file != "" {
				batch, err = readPayload(cmd.InOrStdin(), file)
			} else {
				batch, err = parseAmounts(args)
			}
			if err != nil {
				return err
			}

			if _, err := batch.TotalFloat64(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), batch.Total().String())
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", `JSON payload file, "-" for stdin`)
	return cmd
}

func readPayload(stdin io.Reader, file string) (transaction.Batch, error) {
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(io.LimitReader(stdin, config.DefaultMaxBodyBytes+1))
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return transaction.DecodeBatch(data)
}

// parseAmounts decodes the arguments as the elements of a payload array so
// they get exactly the validation an HTTP request would.
func parseAmounts(args []string) (transaction.Batch, error) {
	for _, a := range args {
		if !json.Valid([]byte(a)) {
			return nil, fmt.Errorf("invalid amount %q: %w", a, transaction.ErrInvalidInput)
		}
	}
	payload := `{"` + transaction.FieldTransactions + `": [` + strings.Join(args, ",") + `]}`
	batch, err := transaction.DecodeBatch([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("invalid amounts %q: %w", args, err)
	}
	return batch, nil
}
