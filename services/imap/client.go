package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-imap/client"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	triage_errors "github.com/customeros/mailtriage/internal/errors"
	"github.com/customeros/mailtriage/internal/tracing"
)

const (
	dialTimeout   = 30 * time.Second
	loginTimeout  = 30 * time.Second
	logoutTimeout = 5 * time.Second
)

// connect dials the server and logs in.
func (s *imapSource) connect(ctx context.Context) (*client.Client, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPSource.connect")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("server", s.cfg.Server)
	span.SetTag("port", s.cfg.Port)
	span.SetTag("tls", s.cfg.TLS)

	serverAddr := fmt.Sprintf("%s:%d", s.cfg.Server, s.cfg.Port)
	dialer := &net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: 30 * time.Second,
	}

	var (
		c   *client.Client
		err error
	)
	if s.cfg.TLS {
		c, err = client.DialWithDialerTLS(dialer, serverAddr, &tls.Config{ServerName: s.cfg.Server})
	} else {
		c, err = client.DialWithDialer(dialer, serverAddr)
	}
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(triage_errors.ErrSourceUnavailable, "connect to %s: %v", serverAddr, err)
	}

	c.Timeout = loginTimeout
	if err := c.Login(s.cfg.Username, s.cfg.Password); err != nil {
		c.Logout()
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(triage_errors.ErrSourceUnavailable, "login as %s: %v", s.cfg.Username, err)
	}
	// No timeout for normal operations
	c.Timeout = 0

	s.log.Infof("Connected to %s as %s", serverAddr, s.cfg.Username)
	return c, nil
}

// disconnect logs out, giving up after logoutTimeout.
func (s *imapSource) disconnect(c *client.Client) {
	if c == nil {
		return
	}
	c.Timeout = logoutTimeout

	done := make(chan error, 1)
	go func() {
		done <- c.Logout()
	}()

	select {
	case err := <-done:
		if err != nil {
			s.log.Warnf("Error during logout: %v", err)
		}
	case <-time.After(logoutTimeout):
		s.log.Warn("Logout timed out")
	}
}
