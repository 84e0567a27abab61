// ClipGate receives short text payloads over a local TCP connection and
// routes them to the OS clipboard (or a fallback sink), raising a desktop
// notification afterwards. Senders are typically editor plugins or remote
// shell helpers:
//
//	printf 'change_on_install\ttype=clipboard\nHello\n' | nc -N localhost 52224
//
// main.go is only the glue: flag and config wiring, logger setup, signal
// handling. The protocol lives in shared/protocol, encoding in
// shared/textenc, output selection in shared/sink.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/tmair/clipgate/shared/config"
	"github.com/tmair/clipgate/shared/sink"
	"github.com/tmair/clipgate/shared/textenc"
)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// cobra already printed the error; exit nonzero so supervisors
		// notice.
		os.Exit(1)
	}
}

// flagValues carries the raw flag storage so RunE can apply only the flags
// the operator actually set, preserving file and env precedence.
type flagValues struct {
	cfgPath  string
	addr     string
	port     int
	key      string
	encoding string
	verbose  int
	backend  string
}

func bindFlags(flags *pflag.FlagSet, v *flagValues) {
	flags.StringVar(&v.cfgPath, "config", "", "config file (default ~/.clipgate/config.toml)")
	flags.StringVar(&v.addr, "addr", "localhost", "address to listen on")
	flags.IntVar(&v.port, "port", config.DefaultPort, "TCP port to listen on")
	flags.StringVar(&v.key, "key", config.DefaultKey, "shared handshake key senders must present")
	flags.StringVar(&v.encoding, "encoding", "euc-jp", "output charset for decoded payloads")
	flags.IntVarP(&v.verbose, "verbose", "v", 0, "verbosity: 0 silent, 1 connection summaries, 2 payload echo")
	flags.StringVar(&v.backend, "backend", config.BackendAuto, "sink backend: auto, native, command, or stdout")
}

func newRootCmd() *cobra.Command {
	v := &flagValues{}

	root := &cobra.Command{
		Use:     "clipgate",
		Short:   "Receive text over TCP and route it to the clipboard",
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Example: "  clipgate --key mysecret --encoding utf-8 -v",
		// Errors out of RunE are configuration or bind problems; usage
		// text would bury the diagnostic.
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
	bindFlags(root.Flags(), v)
	return root
}

// loadConfig layers defaults, the config file, CLIPGATE_* env vars, and
// explicitly set flags, then validates the result.
func loadConfig(cmd *cobra.Command, v *flagValues) (*config.Config, error) {
	path := v.cfgPath
	explicit := cmd.Flags().Changed("config")
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path, explicit)
	if err != nil {
		return nil, err
	}

	// Only flags the operator actually set override the file and env
	// layers; untouched flags keep their defaults out of the way.
	if cmd.Flags().Changed("addr") {
		cfg.Addr = v.addr
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = v.port
	}
	if cmd.Flags().Changed("key") {
		cfg.Key = v.key
	}
	if cmd.Flags().Changed("encoding") {
		cfg.Encoding = v.encoding
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = v.verbose
	}
	if cmd.Flags().Changed("backend") {
		cfg.Backend = v.backend
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := textenc.ValidateCharset(cfg.Encoding); err != nil {
		return nil, fmt.Errorf("invalid --encoding: %w", err)
	}
	return cfg, nil
}

// newLogger maps the verbosity level onto zerolog levels: 0 warnings only,
// 1 connection summaries, 2 full payload echo and encoding decisions.
func newLogger(verbose int) zerolog.Logger {
	level := zerolog.WarnLevel
	switch verbose {
	case 1:
		level = zerolog.InfoLevel
	case 2:
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// run wires the factory, dispatcher, and listener together and blocks until
// shutdown or a fatal error.
func run(cfg *config.Config) error {
	log := newLogger(cfg.Verbose)

	if cfg.UsingDefaultKey() {
		log.Warn().Msg("accept key is the well-known default; set --key or CLIPGATE_KEY")
	}

	backend, err := sink.ParseBackend(cfg.Backend)
	if err != nil {
		return err
	}
	factory := sink.NewFactory(
		sink.WithBackend(backend),
		sink.WithLogger(log),
	)

	l := &listener{
		cfg: cfg,
		dispatcher: &dispatcher{
			sinks:    factory,
			encoding: cfg.Encoding,
			log:      log,
		},
		log: log,
	}

	ln, err := l.listen()
	if err != nil {
		// BindError: nothing to recover, exit with the diagnostic.
		return err
	}

	// SIGINT/SIGTERM close the listening socket; serve finishes the
	// in-flight connection, observes the closed listener, and returns.
	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		close(stop)
		ln.Close()
	}()

	return l.serve(ln, stop)
}
