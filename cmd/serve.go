package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/sheetsift-cli/internal/metrics"
	"github.com/KaramelBytes/sheetsift-cli/internal/web"
)

var (
	serveAddr      string
	serveNoMetrics bool
)

var serveCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Serve a filter page for a table in the browser",
	Long: `Serve an HTML page with per-column filters, a global search box, a clear
button and a CSV download. Every browser gets its own filter session.
Prometheus metrics are exposed on /metrics.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := loadDataset(ctx, args[0])
		if err != nil {
			return err
		}
		sh := newShared(s)
		reportDataset(cmd.OutOrStdout(), sh)

		c := currentConfig()
		addr := serveAddr
		if addr == "" {
			addr = c.ServeAddr
		}

		opt := web.Options{
			Title:          c.Title,
			ExportFilename: c.ExportFilename,
			LinkLabel:      c.LinkLabel,
			MaxRows:        c.DisplayMaxRows,
			SessionTTL:     time.Duration(c.SessionTTLMin) * time.Minute,
			MaxSessions:    c.MaxSessions,
			Logger:         logger,
		}
		if !serveNoMetrics {
			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			opt.Metrics = metrics.New(reg)
			opt.Gatherer = reg
		}

		srv := web.NewServer(sh, opt)
		return srv.ListenAndServe(ctx, addr, func(a net.Addr) {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving on http://%s (ctrl+c to stop)\n", a)
			level.Info(logger).Log("msg", "listening", "addr", a.String())
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default serve_addr from config)")
	serveCmd.Flags().BoolVar(&serveNoMetrics, "no-metrics", false, "disable the /metrics endpoint")
}
