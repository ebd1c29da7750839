package daemon

import (
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tscal-dev/tscal/pkg/calibration"
	"github.com/tscal-dev/tscal/pkg/config"
	"github.com/tscal-dev/tscal/pkg/events"
	"github.com/tscal-dev/tscal/pkg/types"
	"github.com/tscal-dev/tscal/pkg/version"
)

func getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func partitionInfo() types.PartitionInfo {
	h := store.Handle()
	geo := h.Geometry()
	return types.PartitionInfo{
		Backend:    string(conf.Backend()),
		Region:     h.Region().Name,
		Base:       h.Region().Base,
		PageSize:   geo.PageSize,
		PageCount:  geo.PageCount,
		RecordSize: calibration.RecordSize,
	}
}

func getStatus(c *gin.Context) {
	current, source := loader.Current()
	c.IndentedJSON(http.StatusOK, types.CalibrationStatus{
		Transform: current,
		Source:    string(source),
		Partition: partitionInfo(),
		Verified:  verified.Load(),
	})
}

func getPartition(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, partitionInfo())
}

func getCalibration(c *gin.Context) {
	rec, err := store.Read()
	if errors.Is(err, calibration.ErrNoValidRecord) {
		c.IndentedJSON(http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		logrus.Errorf("getCalibration failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	c.IndentedJSON(http.StatusOK, types.StoredRecord{
		Key:       rec.Key,
		Transform: rec.Transform(),
	})
}

func setCalibration(c *gin.Context) {
	var t calibration.TouchTransform
	if err := c.BindJSON(&t); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if err := loader.Save(t); err != nil {
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	setVerified(true)

	logrus.WithField("transform", t).Infof("calibration written")
	sseHub.Publish(events.CalibrationWritten, events.CalibrationEvent{
		Transform: t,
		Source:    string(calibration.SourceFlash),
		Ts:        time.Now().Unix(),
	})

	c.IndentedJSON(http.StatusCreated, "ok")
}

func deleteCalibration(c *gin.Context) {
	if err := loader.Erase(); err != nil {
		logrus.Errorf("deleteCalibration failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	setVerified(true)

	logrus.Infof("calibration erased, using defaults")
	sseHub.Publish(events.CalibrationErased, events.CalibrationEvent{
		Transform: calibration.DefaultTransform,
		Source:    string(calibration.SourceDefault),
		Ts:        time.Now().Unix(),
	})

	c.IndentedJSON(http.StatusOK, "ok")
}

func postVerify(c *gin.Context) {
	ok, err := verifyCalibration()
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, ok)
}

func getPartitionPage(c *gin.Context) {
	page, err := store.Page()
	if err != nil {
		logrus.Errorf("getPartitionPage failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, hex.EncodeToString(page))
}

func streamEvents(c *gin.Context) {
	ch := sseHub.Subscribe()
	defer sseHub.Unsubscribe(ch)

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}
