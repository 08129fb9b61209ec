package transport

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/overssh/overssh/internal/errors"
	"github.com/overssh/overssh/internal/logger"
)

// client wraps one established SSH connection.
type client struct {
	*ssh.Client
	settings *Settings
}

// dial establishes a connection using fully resolved settings. The
// returned error distinguishes the two failure layers the callers care
// about: dialError means the host was never reached, handshakeError means
// TCP connected but the SSH layer rejected us.
func dial(s *Settings) (*client, error) {
	config, err := buildClientConfig(s)
	if err != nil {
		return nil, err
	}

	conn, err := net.DialTimeout(s.Network, s.Addr(), s.Timeout)
	if err != nil {
		return nil, &dialError{addr: s.Addr(), cause: err}
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, s.Addr(), config)
	if err != nil {
		conn.Close()
		return nil, &handshakeError{addr: s.Addr(), cause: err}
	}

	return &client{
		Client:   ssh.NewClient(sshConn, chans, reqs),
		settings: s,
	}, nil
}

// dialError wraps a TCP-level connection failure.
type dialError struct {
	addr  string
	cause error
}

func (e *dialError) Error() string {
	return fmt.Sprintf("can't reach %s: %v", e.addr, e.cause)
}

func (e *dialError) Unwrap() error { return e.cause }

// handshakeError wraps an SSH-level failure after the TCP connection
// succeeded. Whether it counts as "unreachable" depends on the cause;
// see classifyHandshake.
type handshakeError struct {
	addr  string
	cause error
}

func (e *handshakeError) Error() string {
	return fmt.Sprintf("ssh handshake with %s failed: %v", e.addr, e.cause)
}

func (e *handshakeError) Unwrap() error { return e.cause }

// buildClientConfig assembles auth methods and host key verification.
// Auth tries the agent first, then the identity file from the config,
// then the default key files.
func buildClientConfig(s *Settings) (*ssh.ClientConfig, error) {
	var authMethods []ssh.AuthMethod

	if agentAuth := sshAgentAuth(); agentAuth != nil {
		authMethods = append(authMethods, agentAuth)
	}

	tried := map[string]bool{}
	tryKeyFile := func(keyPath string) {
		if keyPath == "" || tried[keyPath] {
			return
		}
		tried[keyPath] = true
		auth, err := keyFileAuth(keyPath)
		if err != nil {
			logger.Default().Debug("[transport] skipping key %s: %v", keyPath, err)
			return
		}
		authMethods = append(authMethods, auth)
	}

	tryKeyFile(s.IdentityFile)
	for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		tryKeyFile(filepath.Join(homeDir(), ".ssh", name))
	}

	if len(authMethods) == 0 {
		return nil, fmt.Errorf("no ssh auth methods available (is your key loaded? try: ssh-add -l)")
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey() //nolint:gosec // -o StrictHostKeyChecking=no
	if !s.Insecure {
		var err error
		hostKeyCallback, err = knownHostsCallback()
		if err != nil {
			return nil, errors.Wrap(err, "Can't verify host keys against known_hosts")
		}
	}

	return &ssh.ClientConfig{
		User:            s.User,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         s.Timeout,
	}, nil
}

// The agent connection is reused across attempts; a ping run dials once
// per probe and re-handshaking the agent socket each time is waste.
var (
	agentConn     net.Conn
	agentClient   agent.ExtendedAgent
	agentConnOnce sync.Once
)

// sshAgentAuth returns an auth method backed by the SSH agent, or nil if
// no agent is available or it has no keys loaded.
func sshAgentAuth() ssh.AuthMethod {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil
	}

	agentConnOnce.Do(func() {
		conn, err := net.Dial("unix", socket)
		if err != nil {
			return
		}
		agentConn = conn
		agentClient = agent.NewClient(conn)
	})

	if agentClient == nil {
		return nil
	}

	// An empty agent placed before other methods just burns an auth try.
	signers, err := agentClient.Signers()
	if err != nil || len(signers) == 0 {
		return nil
	}

	return ssh.PublicKeysCallback(agentClient.Signers)
}

// CloseAgent closes the SSH agent connection if one is open.
// Called once on process shutdown.
func CloseAgent() {
	if agentConn != nil {
		agentConn.Close()
	}
}

// keyFileAuth returns an auth method for a private key file. Encrypted
// keys are skipped; the agent is the supported path for those.
func keyFileAuth(keyPath string) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, err
	}

	return ssh.PublicKeys(signer), nil
}

// knownHostsCallback verifies host keys against ~/.ssh/known_hosts,
// creating an empty file if none exists so first runs don't error out.
func knownHostsCallback() (ssh.HostKeyCallback, error) {
	knownHostsPath := filepath.Join(homeDir(), ".ssh", "known_hosts")

	if _, err := os.Stat(knownHostsPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(knownHostsPath), 0700); err != nil {
			return nil, fmt.Errorf("failed to create .ssh directory: %w", err)
		}
		if err := os.WriteFile(knownHostsPath, []byte{}, 0600); err != nil {
			return nil, fmt.Errorf("failed to create known_hosts: %w", err)
		}
	}

	return knownhosts.New(knownHostsPath)
}
