package client

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tscal-dev/tscal/pkg/calibration"
)

// serveUnix serves h on a fresh unix socket and returns its path.
func serveUnix(t *testing.T, h http.Handler) string {
	t.Helper()

	// Keep the path short, unix socket paths are limited to ~100 bytes.
	dir, err := os.MkdirTemp("", "tscal")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	path := filepath.Join(dir, "d.sock")
	l, err := net.Listen("unix", path)
	require.NoError(t, err)

	srv := &http.Server{Handler: h}
	go func() { _ = srv.Serve(l) }()
	t.Cleanup(func() { _ = srv.Close() })

	return path
}

func TestDaemonNotRunning(t *testing.T) {
	c := NewClient(filepath.Join(t.TempDir(), "missing.sock"))

	_, err := c.GetStatus()
	assert.ErrorIs(t, err, ErrDaemonNotRunning)
}

func TestGetCalibration(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/calibration", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = fmt.Fprintf(w, `{"key":%d,"transform":[1,2,3,4,5,6]}`, calibration.ValidKey)
		case http.MethodPut:
			b, _ := io.ReadAll(r.Body)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.JSONEq(t, `[65536,0,0,0,65536,0]`, string(b))
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `"ok"`)
		case http.MethodDelete:
			_, _ = io.WriteString(w, `"ok"`)
		}
	})
	c := NewClient(serveUnix(t, mux))

	rec, err := c.GetCalibration()
	require.NoError(t, err)
	assert.Equal(t, calibration.ValidKey, rec.Key)
	assert.Equal(t, [6]int32{1, 2, 3, 4, 5, 6}, rec.Transform)

	ret, err := c.SetCalibration([6]int32{0x10000, 0, 0, 0, 0x10000, 0})
	require.NoError(t, err)
	assert.Equal(t, `"ok"`, ret)

	_, err = c.EraseCalibration()
	require.NoError(t, err)
}

func TestGetCalibrationNoRecord(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/calibration", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `"no valid calibration record"`)
	})
	c := NewClient(serveUnix(t, mux))

	_, err := c.GetCalibration()
	assert.ErrorIs(t, err, ErrNoValidRecord)
}

func TestServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `"flash driver failure"`)
	})
	c := NewClient(serveUnix(t, mux))

	_, err := c.GetStatus()
	assert.ErrorContains(t, err, "got 500")
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestGetPageAndVerify(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/partition/page", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `"a3912fd7ffff"`)
	})
	mux.HandleFunc("/calibration/verify", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = io.WriteString(w, "true")
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `"v1.2.3"`)
	})
	c := NewClient(serveUnix(t, mux))

	page, err := c.GetPage()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xa3, 0x91, 0x2f, 0xd7, 0xff, 0xff}, page)

	ok, err := c.VerifyCalibration()
	require.NoError(t, err)
	assert.True(t, ok)

	v, err := c.GetVersion()
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3", v)
}

func TestParseBoolResponse(t *testing.T) {
	b, err := parseBoolResponse("false\n")
	require.NoError(t, err)
	assert.False(t, b)

	_, err = parseBoolResponse("maybe")
	assert.Error(t, err)
}
