// Command osctrigger listens for one OSC address/value pair and taps a key
// into a target window when it arrives.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/showcontroller/osctrigger/action"
	"github.com/showcontroller/osctrigger/config"
	"github.com/showcontroller/osctrigger/listener"
	"github.com/showcontroller/osctrigger/logging"
	"github.com/showcontroller/osctrigger/osc"
)

type options struct {
	configPath string
	tray       bool
	dryRun     bool
	console    bool
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	opts, cfg, err := parseArgs(fs, os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logging.ApplyLevels(cfg.Logging.Levels); err != nil {
		log.Fatalf("Invalid logging config: %v", err)
	}

	var sink action.Sink = action.NewRobot()
	if opts.dryRun {
		sink = &action.Recorder{}
	}
	lopts := listener.Options{Sink: sink, Status: logging.Status(logging.APP)}
	if cfg.Logging.RemoteLevel {
		lopts.Observe = func(m osc.Message) { logging.HandleLevelMessage(m) }
	}
	ctrl := listener.NewController(lopts)

	if opts.tray {
		runTray(ctrl, cfg)
		return
	}

	if err := ctrl.Start(*cfg); err != nil {
		os.Exit(1)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	if opts.console {
		err := runConsole(ctrl, cfg, sigs)
		if err == nil {
			return
		}
		logging.Get(logging.APP).Warn("Console control unavailable", "err", err)
	}

	select {
	case <-sigs:
		ctrl.Stop()
		ctrl.Wait()
	case <-ctrl.Session().Done():
	}
}

// parseArgs loads the config file, if any, then applies the flags the user
// actually set on top of it.
func parseArgs(fs *flag.FlagSet, args []string) (options, *config.Config, error) {
	var opts options
	fs.StringVar(&opts.configPath, "config", "", "Path to YAML config file")
	fs.BoolVar(&opts.tray, "tray", false, "Run with a system tray Start/Stop menu")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "Log triggers without sending keys")
	fs.BoolVar(&opts.console, "console", true, "Read s/x/q control keys from the terminal")

	def := config.Default()
	bind := fs.String("bind", def.BindAddress, "IPv4 address to bind, or 0.0.0.0 for all")
	port := fs.Int("port", def.Port, "Port to listen on")
	address := fs.String("address", def.TargetAddress, "OSC address to match")
	value := fs.Float64("value", def.TargetValue, "Value to match")
	continuous := fs.Bool("continuous", def.Continuous, "Keep firing on every match")
	key := fs.String("key", def.Key, "Key or chord to send, e.g. SPACE or CTRL+F5")
	window := fs.String("window", def.TargetWindow, "Title of the window to focus")
	tcp := fs.Bool("tcp", false, "Listen on TCP with SLIP framing instead of UDP")
	poll := fs.Duration("poll", def.PollInterval, "Upper bound on stop latency")

	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}

	cfg := def
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return opts, nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bind":
			cfg.BindAddress = *bind
		case "port":
			cfg.Port = *port
		case "address":
			cfg.TargetAddress = *address
		case "value":
			cfg.TargetValue = *value
		case "continuous":
			cfg.Continuous = *continuous
		case "key":
			cfg.Key = *key
		case "window":
			cfg.TargetWindow = *window
		case "tcp":
			if *tcp {
				cfg.Transport = config.TransportTCP
			} else {
				cfg.Transport = config.TransportUDP
			}
		case "poll":
			cfg.PollInterval = *poll
		}
	})
	if fs.NArg() > 0 {
		return opts, nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, cfg, nil
}
