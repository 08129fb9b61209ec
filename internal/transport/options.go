package transport

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kevinburke/ssh_config"
	"github.com/overssh/overssh/internal/errors"
	"github.com/overssh/overssh/internal/logger"
	"github.com/overssh/overssh/internal/target"
)

// Options are the transport-level knobs a front-end can set, either from
// its own flags (ping) or from a partitioned raw argument list (diff).
// Zero values mean "not set": unset fields fall back to the SSH config
// file and then to defaults.
type Options struct {
	Port       string
	User       string
	ConfigFile string        // alternate ssh_config path (-F)
	Network    string        // "tcp", "tcp4", or "tcp6"
	Timeout    time.Duration // dial + handshake timeout
	Insecure   bool          // skip known_hosts verification
}

// ParseArgs builds Options from a partitioned transport-option list, the
// kind produced by flagsplit.Partition. The list is trusted to be well
// formed (value flags carry their values) because the partitioner never
// emits a dangling flag.
func ParseArgs(args []string) (Options, error) {
	var opts Options

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-4":
			if opts.Network == "tcp6" {
				return opts, errors.New(errors.ErrUsage,
					"-4 and -6 can't be used together",
					"Pick one address family, or neither.")
			}
			opts.Network = "tcp4"
		case "-6":
			if opts.Network == "tcp4" {
				return opts, errors.New(errors.ErrUsage,
					"-4 and -6 can't be used together",
					"Pick one address family, or neither.")
			}
			opts.Network = "tcp6"
		case "-p":
			i++
			opts.Port = args[i]
		case "-F":
			i++
			opts.ConfigFile = args[i]
		case "-l":
			i++
			opts.User = args[i]
		case "-o":
			i++
			if err := opts.applyClientOption(args[i]); err != nil {
				return opts, err
			}
		}
	}

	return opts, nil
}

// applyClientOption handles -o key=value pairs. Only the options the
// invoker acts on are interpreted; the rest are logged and skipped.
func (o *Options) applyClientOption(kv string) error {
	key, value, found := strings.Cut(kv, "=")
	if !found {
		return errors.New(errors.ErrUsage,
			fmt.Sprintf("'-o %s' is missing a value", kv),
			"Client options take the form -o Key=Value, e.g. -o ConnectTimeout=5")
	}

	switch strings.ToLower(key) {
	case "connecttimeout":
		d, err := time.ParseDuration(value + "s")
		if err != nil || d < 0 {
			return errors.New(errors.ErrUsage,
				fmt.Sprintf("'%s' isn't a valid ConnectTimeout", value),
				"Use a non-negative number of seconds, e.g. -o ConnectTimeout=5")
		}
		o.Timeout = d
	case "stricthostkeychecking":
		if strings.EqualFold(value, "no") || strings.EqualFold(value, "accept-new") {
			o.Insecure = true
		}
	default:
		logger.Default().Debug("[transport] ignoring client option %s", kv)
	}

	return nil
}

// Settings holds fully resolved connection parameters for one target:
// explicit options take precedence, then the SSH config file, then
// defaults (port 22, the invoking user).
type Settings struct {
	Hostname     string
	Port         string
	User         string
	IdentityFile string
	Network      string
	Timeout      time.Duration
	Insecure     bool
}

// Addr returns the host:port string for dialing.
func (s *Settings) Addr() string {
	return net.JoinHostPort(s.Hostname, s.Port)
}

// Describe renders the resolved settings for verbose output, one
// "key value" pair per line in ssh -G style.
func (s *Settings) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "hostname %s\n", s.Hostname)
	fmt.Fprintf(&b, "port %s\n", s.Port)
	fmt.Fprintf(&b, "user %s\n", s.User)
	if s.IdentityFile != "" {
		fmt.Fprintf(&b, "identityfile %s\n", s.IdentityFile)
	}
	fmt.Fprintf(&b, "network %s\n", s.Network)
	fmt.Fprintf(&b, "connecttimeout %s\n", s.Timeout)
	return b.String()
}

const defaultTimeout = 10 * time.Second

// Resolve merges a parsed target with transport options and the SSH config
// file into dialable settings.
func Resolve(tgt target.Target, opts Options) *Settings {
	s := &Settings{
		Hostname: tgt.Host,
		Port:     "22",
		User:     currentUser(),
		Network:  "tcp",
		Timeout:  defaultTimeout,
		Insecure: opts.Insecure,
	}

	if opts.Network != "" {
		s.Network = opts.Network
	}
	if opts.Timeout > 0 {
		s.Timeout = opts.Timeout
	}

	cfg := loadSSHConfig(opts.ConfigFile)
	if cfg != nil {
		if hostname, _ := cfg.Get(tgt.Host, "HostName"); hostname != "" {
			s.Hostname = hostname
		}
		if port, _ := cfg.Get(tgt.Host, "Port"); port != "" {
			s.Port = port
		}
		if user, _ := cfg.Get(tgt.Host, "User"); user != "" {
			s.User = user
		}
		if identity, _ := cfg.Get(tgt.Host, "IdentityFile"); identity != "" {
			s.IdentityFile = expandPath(identity)
		}
	}

	// Explicit settings beat anything from the config file. A user embedded
	// in the target token beats -l, matching scp's behavior.
	if opts.Port != "" {
		s.Port = opts.Port
	}
	if opts.User != "" {
		s.User = opts.User
	}
	if tgt.User != "" {
		s.User = tgt.User
	}

	return s
}

// loadSSHConfig reads and decodes an ssh_config file. A missing or
// unreadable file just means "no config", never an error.
func loadSSHConfig(path string) *ssh_config.Config {
	if path == "" {
		path = filepath.Join(homeDir(), ".ssh", "config")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	cfg, err := ssh_config.Decode(f)
	if err != nil {
		logger.Default().Debug("[transport] can't decode %s: %v", path, err)
		return nil
	}
	return cfg
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func currentUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "root"
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}
