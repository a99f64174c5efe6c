package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calgarytospace/tcx/internal/term"
	"github.com/spf13/cobra"
)

// termCmd represents the term command
var termCmd = &cobra.Command{
	Use:   "term",
	Short: "Run the radio-terminal log server",
	Long: `Run a local WebSocket server that bridges ground-station consoles to
the satellite radio link.

Connected clients receive the running RX/TX log and can queue uplink
frames. Received downlink text is folded into the log, with embedded JSON
payloads pretty-printed when term.auto_format_json is enabled.

Traffic sources:
  --input FILE   Tail a transcript file; lines appended after startup
                 are recorded as received traffic
  --stdin        Read received traffic line-by-line from standard input

Examples:
  tcx term                             # Serve on the configured address
  tcx term --listen 127.0.0.1:9100     # Override the listen address
  tcx term --input /var/log/pass.log   # Follow a live radio transcript
  radio_rx | tcx term --stdin          # Pipe downlink text in`,
	Args: cobra.NoArgs,
	RunE: runTerm,
}

var (
	termListen string
	termInput  string
	termStdin  bool
)

func init() {
	rootCmd.AddCommand(termCmd)

	termCmd.Flags().StringVar(&termListen, "listen", "", "Listen address (default: term.listen from config)")
	termCmd.Flags().StringVar(&termInput, "input", "", "Transcript file to tail for received traffic")
	termCmd.Flags().BoolVar(&termStdin, "stdin", false, "Read received traffic from standard input")
}

func runTerm(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if termListen != "" {
		cfg.Term.Listen = termListen
	}

	srv := term.New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Feed received traffic from a transcript file or stdin
	if termInput != "" {
		go func() {
			if err := srv.TailFile(ctx, termInput); err != nil && ctx.Err() == nil {
				fmt.Fprintf(os.Stderr, "tcx term: tail %s: %v\n", termInput, err)
			}
		}()
	}
	if termStdin {
		go func() {
			if err := srv.ReadInput(ctx, os.Stdin); err != nil && ctx.Err() == nil {
				fmt.Fprintf(os.Stderr, "tcx term: stdin: %v\n", err)
			}
		}()
	}

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintf(os.Stderr, "\ntcx term: shutting down\n")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(os.Stderr, "tcx term: listening on ws://%s/ws\n", cfg.Term.Listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
