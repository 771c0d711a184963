package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/mymind/internal/flagx"
	"github.com/dmitrijs2005/mymind/internal/timex"
)

// JsonConfig is the file shape. Intervals accept "3s" style strings or
// integer nanoseconds. Absent fields keep their current value.
type JsonConfig struct {
	ServerEndpointAddr  string          `json:"server_endpoint_addr"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	DatabasePath        string          `json:"database_path"`
	Reconcile           *bool           `json:"reconcile"`
	RemoteWriteTimeout  *timex.Duration `json:"remote_write_timeout"`
}

// parseJson overlays cfg with the file named by -c/-config, if any.
// It panics on read or decode errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.Reconcile != nil {
		cfg.Reconcile = *jc.Reconcile
	}
	if jc.RemoteWriteTimeout != nil {
		cfg.RemoteWriteTimeout = jc.RemoteWriteTimeout.Duration
	}
}
