package client

import (
	"encoding/hex"
	"encoding/json"
	"errors"

	pkgerrors "github.com/pkg/errors"

	"github.com/tscal-dev/tscal/pkg/config"
	"github.com/tscal-dev/tscal/pkg/types"
)

// GetCalibration returns the record stored in flash, or ErrNoValidRecord.
func (c *Client) GetCalibration() (*types.StoredRecord, error) {
	ret, err := c.Get("/calibration")
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoValidRecord
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get calibration")
	}

	var rec types.StoredRecord
	if err := json.Unmarshal([]byte(ret), &rec); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal calibration")
	}
	return &rec, nil
}

// SetCalibration writes t to flash and makes it the transform in use.
func (c *Client) SetCalibration(t [6]int32) (string, error) {
	payload, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return c.Put("/calibration", string(payload))
}

// EraseCalibration erases the partition; the daemon falls back to defaults.
func (c *Client) EraseCalibration() (string, error) {
	return c.Delete("/calibration")
}

// VerifyCalibration runs the integrity check now.
func (c *Client) VerifyCalibration() (bool, error) {
	ret, err := c.Send("POST", "/calibration/verify", "")
	if err != nil {
		return false, pkgerrors.Wrapf(err, "failed to verify calibration")
	}
	return parseBoolResponse(ret)
}

func (c *Client) GetStatus() (*types.CalibrationStatus, error) {
	ret, err := c.Get("/status")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get status")
	}

	var st types.CalibrationStatus
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal status")
	}
	return &st, nil
}

func (c *Client) GetPartition() (*types.PartitionInfo, error) {
	ret, err := c.Get("/partition")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get partition info")
	}

	var info types.PartitionInfo
	if err := json.Unmarshal([]byte(ret), &info); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal partition info")
	}
	return &info, nil
}

// GetPage returns the raw bytes of the record page.
func (c *Client) GetPage() ([]byte, error) {
	ret, err := c.Get("/partition/page")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get page")
	}

	var s string
	if err := json.Unmarshal([]byte(ret), &s); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal page")
	}
	page, err := hex.DecodeString(s)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to decode page")
	}
	return page, nil
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}

	return &conf, nil
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}

	var v string
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal version")
	}
	return v, nil
}

func parseBoolResponse(resp string) (bool, error) {
	var b bool
	if err := json.Unmarshal([]byte(resp), &b); err != nil {
		return false, pkgerrors.Errorf("unexpected response: %s", resp)
	}
	return b, nil
}
