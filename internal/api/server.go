package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/postwatch/postwatch-core/internal/device"
	"github.com/postwatch/postwatch-core/internal/infrastructure/config"
	"github.com/postwatch/postwatch-core/internal/infrastructure/logging"
	"github.com/postwatch/postwatch-core/internal/location"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// DatabaseHealthChecker reports whether the backing store is reachable.
// This is satisfied by *database.DB.
type DatabaseHealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// TelemetryWriter forwards accepted reports to time-series storage.
// This interface is satisfied by *influxdb.Client.
// It is optional - if nil, the server operates without telemetry.
type TelemetryWriter interface {
	// WriteDeviceHealth records a health report as a telemetry point.
	WriteDeviceHealth(mac string, wifiStrength *float64, uptimeSeconds *int64)

	// WriteMotionEvent records a motion detection as a telemetry point.
	WriteMotionEvent(mac string, detected bool, occurredAt time.Time)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config       config.APIConfig
	Security     config.SecurityConfig
	Fleet        config.FleetConfig
	Logger       *logging.Logger
	DeviceRepo   device.Repository
	LocationRepo location.Repository
	DB           DatabaseHealthChecker // Optional: included in /api/health when set
	Telemetry    TelemetryWriter       // Optional: forwards accepted reports to InfluxDB
	Version      string
}

// Server is the HTTP API server for Postwatch Core.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg            config.APIConfig
	secCfg         config.SecurityConfig
	presenceWindow time.Duration
	logger         *logging.Logger
	deviceRepo     device.Repository
	locationRepo   location.Repository
	db             DatabaseHealthChecker
	telemetry      TelemetryWriter
	version        string
	server         *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, repositories)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.DeviceRepo == nil {
		return nil, fmt.Errorf("device repository is required")
	}
	if deps.LocationRepo == nil {
		return nil, fmt.Errorf("location repository is required")
	}

	window := time.Duration(deps.Fleet.PresenceWindowSeconds) * time.Second
	if window <= 0 {
		window = device.DefaultPresenceWindow
	}

	return &Server{
		cfg:            deps.Config,
		secCfg:         deps.Security,
		presenceWindow: window,
		logger:         deps.Logger,
		deviceRepo:     deps.DeviceRepo,
		locationRepo:   deps.LocationRepo,
		db:             deps.DB,
		telemetry:      deps.Telemetry,
		version:        deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It sets up the router and launches the HTTP listener in a background
// goroutine. The server can be stopped with Close().
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(_ context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
