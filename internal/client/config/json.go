package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/phoenixlocker/internal/flagx"
	"github.com/dmitrijs2005/phoenixlocker/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. Absent keys stay nil and
// leave the runtime Config untouched.
type JsonConfig struct {
	ServerEndpointAddr  *string         `json:"server_endpoint_addr"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	TokenDecimals       *int            `json:"token_decimals"`
	ProfilePath         *string         `json:"profile_path"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from the -c or -config flags via
// flagx.JsonConfigFlags(); when empty, nothing is loaded. Read or unmarshal
// errors panic.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != nil {
		cfg.ServerEndpointAddr = *jc.ServerEndpointAddr
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.TokenDecimals != nil {
		cfg.TokenDecimals = *jc.TokenDecimals
	}
	if jc.ProfilePath != nil {
		cfg.ProfilePath = *jc.ProfilePath
	}
}
