package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig is the on-disk layout of the optional JSON config file.
type StructuredJSONConfig struct {
	App struct {
		Namespace string `json:"namespace"`
		NodeID    string `json:"node_id"`
		LogLevel  string `json:"log_level"`
	} `json:"app,omitempty"`

	Storage struct {
		DSN string `json:"dsn"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress     string   `json:"http_address"`
		GRPCAddress     string   `json:"grpc_address"`
		ShutdownTimeout Duration `json:"shutdown_timeout"`
	} `json:"server,omitempty"`

	Adapter struct {
		Peers          []string `json:"peers"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`

	Workers struct {
		ReplicationInterval Duration `json:"replication_interval"`
		ProbeInterval       Duration `json:"probe_interval"`
	} `json:"workers,omitempty"`

	Quorum struct {
		MinPeers     int      `json:"min_peers"`
		Timeout      Duration `json:"timeout"`
		SettleDelay  Duration `json:"settle_delay"`
		PollInterval Duration `json:"poll_interval"`
	} `json:"quorum,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			Namespace: jsonCfg.App.Namespace,
			NodeID:    jsonCfg.App.NodeID,
			LogLevel:  jsonCfg.App.LogLevel,
		},
		Storage: Storage{
			DSN: jsonCfg.Storage.DSN,
		},
		Server: Server{
			HTTPAddress:     jsonCfg.Server.HTTPAddress,
			GRPCAddress:     jsonCfg.Server.GRPCAddress,
			ShutdownTimeout: time.Duration(jsonCfg.Server.ShutdownTimeout),
		},
		Adapter: Adapter{
			Peers:          jsonCfg.Adapter.Peers,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
		Workers: Workers{
			ReplicationInterval: time.Duration(jsonCfg.Workers.ReplicationInterval),
			ProbeInterval:       time.Duration(jsonCfg.Workers.ProbeInterval),
		},
		Quorum: Quorum{
			MinPeers:     jsonCfg.Quorum.MinPeers,
			Timeout:      time.Duration(jsonCfg.Quorum.Timeout),
			SettleDelay:  time.Duration(jsonCfg.Quorum.SettleDelay),
			PollInterval: time.Duration(jsonCfg.Quorum.PollInterval),
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
