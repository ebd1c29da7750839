package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tscal-dev/tscal/pkg/calibration"
	"github.com/tscal-dev/tscal/pkg/config"
	"github.com/tscal-dev/tscal/pkg/events"
	"github.com/tscal-dev/tscal/pkg/flash"
	"github.com/tscal-dev/tscal/pkg/partition"
)

var (
	conf   config.Config
	store  *calibration.Store
	loader *calibration.Loader
	sseHub = events.NewEventHub()
)

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/config", getConfig)
	router.GET("/status", getStatus)
	router.GET("/calibration", getCalibration)
	router.PUT("/calibration", setCalibration)
	router.DELETE("/calibration", deleteCalibration)
	router.POST("/calibration/verify", postVerify)
	router.GET("/partition", getPartition)
	router.GET("/partition/page", getPartitionPage)
	router.GET("/events", streamEvents)
	router.GET("/version", getVersion)

	return router
}

// setupStore initializes the partition on drv and loads the stored
// calibration. Only a partition init failure is fatal.
func setupStore(drv flash.Driver, region flash.Region) error {
	h, err := partition.NewManager(drv, region).Init()
	if err != nil {
		return err
	}

	s, err := calibration.NewStore(h)
	if err != nil {
		return err
	}

	store = s
	loader = calibration.NewLoader(s)
	// A failed read leaves defaults in use, but flash is not known to match.
	err = loader.Boot()
	setVerified(err == nil || errors.Is(err, calibration.ErrNoValidRecord))

	return nil
}

func Run(configPath string, unixSocketPath string) error {
	router := setupRoutes()

	var err error
	conf, err = config.NewFile(configPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	drv, closeDriver, err := openDriver(conf)
	if err != nil {
		logrus.Fatalf("failed to open flash backend: %v", err)
	}

	region := flash.Region{Name: conf.Region(), Base: conf.RegionBase()}
	if err := setupStore(drv, region); err != nil {
		// Without a partition there is nothing to serve.
		logrus.Fatalf("calibration storage unavailable: %v", err)
	}

	verifier, err := startVerifier(conf.VerifySchedule())
	if err != nil {
		logrus.Fatalf("invalid verify schedule %q: %v", conf.VerifySchedule(), err)
	}

	// Receive SIGHUP to reload config. Partition settings only take effect
	// on restart.
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			err := conf.Load()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.Infof("config reloaded")
		}
	}()

	srv := &http.Server{
		Handler: router,
	}

	// A stale socket from an unclean shutdown would make Listen fail.
	if err := os.Remove(unixSocketPath); err != nil && !os.IsNotExist(err) {
		logrus.Fatal(err)
	}

	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(ctx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	if verifier != nil {
		logrus.Info("stopping integrity check")
		<-verifier.Stop().Done()
	}

	logrus.Info("closing flash backend")
	if err := closeDriver(); err != nil {
		logrus.Errorf("failed to close flash backend: %v", err)
	}

	logrus.Info("exiting")
	return nil
}
