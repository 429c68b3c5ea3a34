package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/go-kit/kit/sd"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/nats-io/nats.go"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/foreseegroup/unitsvc/discovery"
	"github.com/foreseegroup/unitsvc/store/memory"
	"github.com/foreseegroup/unitsvc/store/sqlstore"
	"github.com/foreseegroup/unitsvc/unitsvc"
)

var addr string

// hostCmd represents the host command
var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Start the service.",
	Long: `Starts the service on HTTP, connects to the configured unit store and,
when NATS is configured, publishes unit events and registers the instance for discovery.

This command exposes several environmental variables for controls. You can set environments using "export KEY=VALUE" (Linux/macOS) or "set KEY=VALUE" (Windows). On Linux, you can also set environments by prepending key value pairs: "KEY=VALUE KEY2=VALUE2 unitsvc host".

Core Controls
=============
- DATABASE_DRIVER: The store to use: 'memory' (default), 'postgres' or 'sqlite3'.
- DATABASE_CONFIG: The data source name passed to the driver.
- LOG_LEVEL: One of debug, info, warn, error.

Discovery Controls
==================
- NATS_URL: URL of a NATS server. Without it, events and discovery are disabled.
- SERVICE_NAME: Name the instance registers under (default 'unit-service').
- SERVICE_ADVERTISE: Address peers should use to reach this instance (default: the bind address).
`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(viper.GetString("log.level"))

		repo, closeRepo, err := openRepository(context.Background(), viper.GetString("database.driver"), viper.GetString("database.config"))
		if err != nil {
			_ = level.Error(logger).Log("msg", "could not open unit store", "driver", viper.GetString("database.driver"), "error", err)
			os.Exit(-1)
		}
		defer closeRepo()

		fieldKeys := []string{"method", "error"}
		requestCount := kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "unitsvc",
			Subsystem: "service",
			Name:      "request_count",
			Help:      "Number of requests received.",
		}, fieldKeys)
		requestLatency := kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: "unitsvc",
			Subsystem: "service",
			Name:      "request_latency_seconds",
			Help:      "Total duration of requests in seconds.",
		}, fieldKeys)
		if err := unitsvc.RegisterUnitGauge(stdprometheus.DefaultRegisterer, repo); err != nil {
			_ = level.Warn(logger).Log("msg", "unit gauge not registered", "error", err)
		}

		var s unitsvc.Service
		{
			s = unitsvc.New(repo)
		}

		var registrar sd.Registrar
		if url := viper.GetString("nats.url"); url != "" {
			nc, err := nats.Connect(url, nats.Name(viper.GetString("service.name")))
			if err != nil {
				_ = level.Error(logger).Log("msg", "could not connect to NATS", "url", url, "error", err)
				os.Exit(-1)
			}
			defer nc.Close()

			s = unitsvc.MessagingMiddleware(nc, log.With(logger, "component", "messaging"))(s)
			instance := discovery.NewInstance(viper.GetString("service.name"), advertiseAddr(viper.GetString("service.advertise"), addr))
			registrar = discovery.NewRegistrar(nc, instance, logger)
		}
		s = unitsvc.LoggingMiddleware(log.With(logger, "component", "service"))(s)
		s = unitsvc.InstrumentingMiddleware(requestCount, requestLatency)(s)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/", unitsvc.MakeHTTPHandler(s, log.With(logger, "component", "HTTP")))
		srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

		ln, err := net.Listen("tcp", addr)
		if err != nil {
			_ = level.Error(logger).Log("msg", "could not listen", "addr", addr, "error", err)
			os.Exit(-1)
		}

		errs := make(chan error)
		go func() {
			c := make(chan os.Signal, 1)
			signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
			errs <- fmt.Errorf("%s", <-c)
		}()

		go func() {
			_ = level.Info(logger).Log("transport", "HTTP", "addr", ln.Addr().String())
			errs <- srv.Serve(ln)
		}()

		if registrar != nil {
			registrar.Register()
		}
		if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
			_ = level.Warn(logger).Log("msg", "systemd notification failed", "error", err)
		} else if ok {
			_ = level.Debug(logger).Log("msg", "notified systemd")
		}

		_ = logger.Log("exit", <-errs)

		if registrar != nil {
			registrar.Deregister()
		}
		_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	},
}

func init() {
	RootCmd.AddCommand(hostCmd)

	hostCmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "HTTP bind address")
}

func newLogger(lvl string) log.Logger {
	var logger log.Logger
	{
		logger = log.NewLogfmtLogger(log.NewSyncWriter(logrus.StandardLogger().Out))
		logger = level.NewFilter(logger, levelOption(lvl))
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
	}
	return logger
}

func levelOption(lvl string) level.Option {
	switch lvl {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

func openRepository(ctx context.Context, driver, dsn string) (unitsvc.Repository, func(), error) {
	switch driver {
	case "", "memory":
		return memory.NewStore(), func() {}, nil
	default:
		s, err := sqlstore.Open(ctx, driver, dsn)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}
}

// advertiseAddr falls back to the bind address, replacing a missing host
// with the machine's hostname.
func advertiseAddr(advertise, bind string) string {
	if advertise != "" {
		return advertise
	}
	host, port, err := net.SplitHostPort(bind)
	if err != nil || host != "" {
		return bind
	}
	if h, err := os.Hostname(); err == nil {
		host = h
	}
	return net.JoinHostPort(host, port)
}
