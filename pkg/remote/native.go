package remote

import (
	"bytes"
	"context"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/types"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// NativeTransport speaks ssh directly and streams a tarball instead of
// depending on rsync being installed at both ends.
type NativeTransport struct {
	KnownHosts    string
	IdentityFiles []string
	Excludes      []string
	Timeout       time.Duration
}

func (t *NativeTransport) Name() string { return "native" }

func (t *NativeTransport) Transfer(ctx context.Context, host types.Host, localDir, remoteDir string) error {
	client, err := t.dial(ctx, host)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	session, err := client.NewSession()
	if err != nil {
		return errors.Wrapf(err, errors.ErrRemoteConnect, "failed to open session on %s", host.Name)
	}
	defer func() { _ = session.Close() }()

	stdin, err := session.StdinPipe()
	if err != nil {
		return errors.Wrap(err, errors.ErrRemoteTransfer, "failed to open remote stdin")
	}
	var stderr bytes.Buffer
	session.Stderr = &stderr

	if err := session.Start(ExtractCommand(remoteDir)); err != nil {
		return errors.Wrapf(err, errors.ErrRemoteTransfer, "failed to start extraction on %s", host.Name)
	}

	var archiveErr error
	waitErr := untilDone(ctx, client, func() error {
		archiveErr = WriteArchive(stdin, localDir, t.Excludes)
		_ = stdin.Close()
		return session.Wait()
	})

	if ctx.Err() != nil {
		return errors.Wrapf(ctx.Err(), errors.ErrRemoteTransfer, "transfer to %s interrupted", host.Name)
	}
	if archiveErr != nil {
		return archiveErr
	}
	if waitErr != nil {
		return errors.Wrapf(waitErr, errors.ErrRemoteTransfer, "extraction on %s failed", host.Name).
			WithDetail("stderr", stderr.String())
	}
	return nil
}

func (t *NativeTransport) Exec(ctx context.Context, host types.Host, command string) (string, error) {
	client, err := t.dial(ctx, host)
	if err != nil {
		return "", err
	}
	defer func() { _ = client.Close() }()

	session, err := client.NewSession()
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrRemoteConnect, "failed to open session on %s", host.Name)
	}
	defer func() { _ = session.Close() }()

	var out []byte
	err = untilDone(ctx, client, func() error {
		var runErr error
		out, runErr = session.CombinedOutput(command)
		return runErr
	})
	if err != nil {
		return string(out), errors.Wrapf(err, errors.ErrRemoteExec, "remote command on %s failed", host.Name)
	}
	return string(out), nil
}

// ExtractCommand is the remote shell command that unpacks the archive
// stream read from stdin into dir
func ExtractCommand(dir string) string {
	quoted := RemotePath(dir)
	return "mkdir -p " + quoted + " && tar -xzf - -C " + quoted
}

// untilDone runs fn and closes the connection when ctx ends first. The
// session blocked in fn then returns with an error.
func untilDone(ctx context.Context, client *ssh.Client, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = client.Close()
		<-done
		return ctx.Err()
	}
}

func (t *NativeTransport) dial(ctx context.Context, host types.Host) (*ssh.Client, error) {
	logger := logging.GetLogger("remote.native")

	cfg, closeAgent, err := t.clientConfig(host)
	if err != nil {
		return nil, err
	}
	// signers are only used during the handshake
	defer closeAgent()

	addr := Addr(host)
	logger.Debug().Str("addr", addr).Str("user", cfg.User).Msg("Dialing")

	dialer := net.Dialer{Timeout: cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRemoteConnect, "cannot reach %s", addr)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrapf(err, errors.ErrRemoteConnect, "ssh handshake with %s failed", addr)
	}
	return ssh.NewClient(c, chans, reqs), nil
}

func (t *NativeTransport) clientConfig(host types.Host) (*ssh.ClientConfig, func(), error) {
	hostKeys, err := knownhosts.New(paths.ExpandHome(t.KnownHosts))
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrRemoteConnect, "cannot read known hosts %s", t.KnownHosts)
	}

	auth, closeAgent := t.authMethods()
	if len(auth) == 0 {
		closeAgent()
		return nil, nil, errors.New(errors.ErrRemoteConnect, "no ssh agent or private keys available")
	}

	user := host.User
	if user == "" {
		user = os.Getenv("USER")
	}
	timeout := t.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ssh.ClientConfig{
		User:            user,
		Auth:            auth,
		HostKeyCallback: hostKeys,
		Timeout:         timeout,
	}, closeAgent, nil
}

// authMethods offers the agent first, then the identity files. The
// returned func closes the agent connection.
func (t *NativeTransport) authMethods() ([]ssh.AuthMethod, func()) {
	var methods []ssh.AuthMethod
	closeAgent := func() {}

	if socket := os.Getenv("SSH_AUTH_SOCK"); socket != "" {
		if conn, err := net.Dial("unix", socket); err == nil {
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
			closeAgent = func() { _ = conn.Close() }
		}
	}

	var signers []ssh.Signer
	for _, path := range t.IdentityFiles {
		key, err := os.ReadFile(paths.ExpandHome(path))
		if err != nil {
			continue
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			continue
		}
		signers = append(signers, signer)
	}
	if len(signers) > 0 {
		methods = append(methods, ssh.PublicKeys(signers...))
	}
	return methods, closeAgent
}

// Addr returns host:port for a host, defaulting to port 22
func Addr(host types.Host) string {
	port := host.Port
	if port == 0 {
		port = 22
	}
	return net.JoinHostPort(host.Address(), strconv.Itoa(port))
}

// RemotePath quotes dir for a remote shell while keeping a leading ~/
// expandable.
func RemotePath(dir string) string {
	if dir == "~" {
		return `"$HOME"`
	}
	if rest, ok := strings.CutPrefix(dir, "~/"); ok {
		return `"$HOME"/` + shellQuote(rest)
	}
	return shellQuote(dir)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
