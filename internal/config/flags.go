package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// PeerList is a comma separated list of peer addresses.
// It implements the flag.Value interface; repeated flags accumulate.
type PeerList []string

// parseFlags parses the flags of a subcommand from args.
//
// Flags may appear before or after positional arguments, so that both
// `sync -s dir state.yaml` and `sync state.yaml -s dir` work.
//
// Flags common to every command:
//
//	-s/-storage storage path or postgres URL
//	-peers comma separated bootstrap peer addresses
//	-request-timeout outbound request timeout (e.g. "5s")
//	-log-level zerolog level name
//	-c/-config json file path with configs
//
// sync only:
//
//	-n/-namespace collection namespace
//	-http HTTP peer API address host:port
//	-grpc gRPC health address host:port
//
// list only:
//
//	-m/-min-peers peers required before reading (0 disables polling)
//	-quorum-timeout deadline for reaching min peers
//	-settle-delay grace period after quorum
func parseFlags(command string, args []string) (*StructuredConfig, []string, error) {
	if command != CommandSync && command != CommandList {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}

	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		storage        string
		peers          PeerList
		requestTimeout time.Duration
		logLevel       string
		jsonConfigPath string

		namespace   string
		httpAddress NetAddress
		grpcAddress NetAddress

		minPeers      int
		quorumTimeout time.Duration
		settleDelay   time.Duration
	)

	fs.StringVar(&storage, "s", "", "Storage path or postgres URL")
	fs.StringVar(&storage, "storage", "", "Storage path or postgres URL (alias)")
	fs.Var(&peers, "peers", "Comma separated bootstrap peer addresses")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Outbound request timeout (e.g., 5s)")
	fs.StringVar(&logLevel, "log-level", "", "Log level")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	switch command {
	case CommandSync:
		fs.StringVar(&namespace, "n", "", "Collection namespace")
		fs.StringVar(&namespace, "namespace", "", "Collection namespace (alias)")
		fs.Var(&httpAddress, "http", "HTTP peer API address host:port")
		fs.Var(&grpcAddress, "grpc", "gRPC health address host:port")
	case CommandList:
		fs.IntVar(&minPeers, "m", 0, "Minimum peers before reading")
		fs.IntVar(&minPeers, "min-peers", 0, "Minimum peers before reading (alias)")
		fs.DurationVar(&quorumTimeout, "quorum-timeout", 0, "Quorum deadline (e.g., 30s)")
		fs.DurationVar(&settleDelay, "settle-delay", 0, "Grace period after quorum (e.g., 1s)")
	}

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing %s flags: %w", command, err)
	}

	// an explicit zero must survive the merge, which skips zero values
	if isFlagSet(fs, "m") || isFlagSet(fs, "min-peers") {
		if minPeers <= 0 {
			minPeers = -1
		}
	}

	return &StructuredConfig{
		App: App{
			Namespace: namespace,
			LogLevel:  logLevel,
		},
		Storage: Storage{
			DSN: storage,
		},
		Server: Server{
			HTTPAddress: httpAddress.String(),
			GRPCAddress: grpcAddress.String(),
		},
		Adapter: Adapter{
			Peers:          peers,
			RequestTimeout: requestTimeout,
		},
		Quorum: Quorum{
			MinPeers:    minPeers,
			Timeout:     quorumTimeout,
			SettleDelay: settleDelay,
		},
		JSONFilePath: jsonConfigPath,
	}, positional, nil
}

func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}

// String returns the peers joined by commas.
func (p *PeerList) String() string {
	return strings.Join(*p, ",")
}

// Set appends the comma separated addresses of s, skipping blanks.
func (p *PeerList) Set(s string) error {
	for _, peer := range strings.Split(s, ",") {
		peer = strings.TrimSpace(peer)
		if peer == "" {
			continue
		}
		*p = append(*p, peer)
	}
	return nil
}
