package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/guttosm/profitpulse/config"
	"github.com/guttosm/profitpulse/internal/app"
	"github.com/guttosm/profitpulse/internal/batch"
	"github.com/guttosm/profitpulse/internal/client"
	"github.com/guttosm/profitpulse/internal/domain/dto"
	"github.com/guttosm/profitpulse/internal/logger"
)

// kindActions maps the --type flag to protocol actions.
var kindActions = map[string]string{
	"maxProfit":  dto.ActionMaxProfit,
	"maxLoss":    dto.ActionMaxLoss,
	"zeroReturn": dto.ActionZeroReturn,
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "profitpulse",
		Short: "profitpulse - stock sequence analysis service",
		Long: `profitpulse finds the best gain, the worst loss and the longest flat stretch
in a sequence of daily changes or closing prices, over a small TCP JSON protocol.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadConfig()
			logger.Init()
		},
	}

	root.AddCommand(newServeCmd(), newBatchCmd(), newSendCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the TCP analysis listener and the ops HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.AppConfig

			a, cleanup, err := app.InitializeApp()
			if err != nil {
				return fmt.Errorf("app init: %w", err)
			}

			httpSrv := startServer(a.Router, cfg.Server.HTTPPort)
			startTCP(a.TCP, cfg.Server.Addr())
			gracefulShutdown(cmd.Context(), httpSrv, a.TCP, cleanup)
			return nil
		},
	}
}

func newBatchCmd() *cobra.Command {
	var (
		dir      string
		kind     string
		parallel int
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Analyze every closing-price file in a directory",
		Long: `Each *.txt or *.csv file must be ';'-separated with a "Date;Close" header.
Every file becomes one CLOSING_PRICES analysis recorded in the configured result store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			action, ok := kindActions[kind]
			if !ok {
				return fmt.Errorf("unknown --type %q (want maxProfit, maxLoss or zeroReturn)", kind)
			}

			a, cleanup, err := app.InitializeApp()
			if err != nil {
				return fmt.Errorf("app init: %w", err)
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			results, err := batch.ProcessDirectory(ctx, dir, a.Dispatcher, action, parallel)
			if err != nil {
				return err
			}
			return printBatch(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "./data/input", "Directory with price files")
	cmd.Flags().StringVar(&kind, "type", "maxProfit", "Analysis: maxProfit, maxLoss or zeroReturn")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "Files processed concurrently (0=auto up to CPU, max 8)")
	return cmd
}

func printBatch(w io.Writer, results []batch.FileResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tPRICES\tRESULT")
	for _, r := range results {
		if !r.Envelope.OK() {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", r.File, r.Prices, r.Envelope.Message)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%v\n", r.File, r.Prices, r.Envelope.Data)
	}
	return tw.Flush()
}

func newSendCmd() *cobra.Command {
	var (
		addr    string
		action  string
		values  []float64
		mode    string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one request to a running listener and print the response",
		Example: `  profitpulse send --action analyze.maxProfit --values 100,102.5,99.8 --mode CLOSING_PRICES
  profitpulse send --action results.list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = "localhost:" + config.AppConfig.Server.Port
			}

			var body any
			if len(values) > 0 {
				body = dto.AnalyzeBody{Values: values, DataMode: mode}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			resp, err := client.Send(ctx, addr, action, body)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return err
			}
			if !resp.OK() {
				return fmt.Errorf("server answered %s: %s", resp.Status, resp.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listener address (default localhost:SERVER_PORT)")
	cmd.Flags().StringVar(&action, "action", dto.ActionResultsList, "Protocol action")
	cmd.Flags().Float64SliceVar(&values, "values", nil, "Comma-separated values to analyze")
	cmd.Flags().StringVar(&mode, "mode", "", "DAILY_CHANGES (default) or CLOSING_PRICES")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Exchange timeout")
	return cmd
}
