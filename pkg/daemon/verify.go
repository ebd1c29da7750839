package daemon

import (
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/tscal-dev/tscal/pkg/events"
)

var verified atomic.Bool

func setVerified(v bool) {
	verified.Store(v)
}

var cronParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// startVerifier runs verifyCalibration on spec. An empty spec disables the
// check and returns a nil cron.
func startVerifier(spec string) (*cron.Cron, error) {
	if spec == "" {
		logrus.Info("periodic integrity check disabled")
		return nil, nil
	}

	c := cron.New(cron.WithParser(cronParser))
	if _, err := c.AddFunc(spec, func() { _, _ = verifyCalibration() }); err != nil {
		return nil, err
	}
	c.Start()

	logrus.WithField("schedule", spec).Info("periodic integrity check scheduled")
	return c, nil
}

// verifyCalibration re-reads flash and compares it with the transform in use.
func verifyCalibration() (bool, error) {
	ok, err := loader.Verify()
	if err != nil {
		logrus.Errorf("integrity check failed to read flash: %v", err)
		setVerified(false)
		return false, err
	}

	current, source := loader.Current()
	if !ok {
		logrus.WithFields(logrus.Fields{
			"transform": current,
			"source":    source,
		}).Warn("stored calibration does not match the transform in use")
		sseHub.Publish(events.CalibrationLost, events.CalibrationEvent{
			Transform: current,
			Source:    string(source),
			Message:   "stored calibration does not match the transform in use",
			Ts:        time.Now().Unix(),
		})
	} else {
		logrus.Debug("integrity check passed")
	}

	setVerified(ok)
	return ok, nil
}
