// Package ftpfeed implements the feed transport against the upstream FTP
// file server.
package ftpfeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"go.uber.org/zap"

	"property-feed-service/internal/domain"
)

// Config holds FTP endpoint settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Dir      string
	Timeout  time.Duration
}

// conn is the subset of *ftp.ServerConn the transport uses. Tests inject a
// fake through the dial hook.
type conn interface {
	List(path string) ([]*ftp.Entry, error)
	Retr(path string) (io.ReadCloser, error)
	Quit() error
}

type dialFunc func(ctx context.Context, cfg Config) (conn, error)

// Transport implements domain.FeedTransport. Every operation opens a fresh
// connection and closes it before returning; the upstream server drops idle
// sessions aggressively, so nothing is kept between calls. No retries here;
// callers own retry policy.
type Transport struct {
	cfg    Config
	logger *zap.Logger
	dial   dialFunc
}

// New creates a new FTP feed transport.
func New(cfg Config, logger *zap.Logger) *Transport {
	return &Transport{
		cfg:    cfg,
		logger: logger,
		dial:   dialFTP,
	}
}

// List enumerates feed files in the configured directory, most recently
// modified first. Ties are broken by lexical filename order so the
// selection is deterministic.
func (t *Transport) List(ctx context.Context) ([]domain.FeedInfo, error) {
	c, err := t.dial(ctx, t.cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Quit() }()

	entries, err := c.List(t.cfg.Dir)
	if err != nil {
		return nil, t.classify(ctx, "LIST", err)
	}

	feeds := make([]domain.FeedInfo, 0, len(entries))
	for _, e := range entries {
		if e.Type != ftp.EntryTypeFile {
			continue
		}
		feeds = append(feeds, domain.FeedInfo{
			Name:       e.Name,
			ModifiedAt: e.Time,
		})
	}

	if len(feeds) == 0 {
		return nil, domain.NewTransportError(domain.ReasonNoFeeds, nil)
	}

	sort.Slice(feeds, func(i, j int) bool {
		if !feeds[i].ModifiedAt.Equal(feeds[j].ModifiedAt) {
			return feeds[i].ModifiedAt.After(feeds[j].ModifiedAt)
		}
		return feeds[i].Name < feeds[j].Name
	})

	t.logger.Debug("feed listing retrieved",
		zap.Int("count", len(feeds)),
		zap.String("latest", feeds[0].Name),
	)

	return feeds, nil
}

// Fetch retrieves the named feed file in full.
func (t *Transport) Fetch(ctx context.Context, name string) (*domain.FeedFile, error) {
	c, err := t.dial(ctx, t.cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Quit() }()

	r, err := c.Retr(path.Join(t.cfg.Dir, name))
	if err != nil {
		return nil, t.classify(ctx, "RETR", err)
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, t.classify(ctx, "transfer", err)
	}

	t.logger.Info("feed file retrieved",
		zap.String("name", name),
		zap.Int("bytes", len(data)),
	)

	return &domain.FeedFile{Name: name, Data: data}, nil
}

// FetchLatest lists the available feeds and retrieves the most recent one.
func (t *Transport) FetchLatest(ctx context.Context) (*domain.FeedFile, error) {
	feeds, err := t.List(ctx)
	if err != nil {
		return nil, err
	}

	return t.Fetch(ctx, feeds[0].Name)
}

// classify maps low-level failures onto the transport error taxonomy.
func (t *Transport) classify(ctx context.Context, op string, err error) error {
	switch {
	case ctx.Err() == context.DeadlineExceeded:
		return domain.NewTransportError(domain.ReasonTimeout, err)
	case isNotFound(err):
		return domain.NewTransportError(domain.ReasonVanished, err)
	default:
		return domain.NewTransportError(domain.ReasonConnection, fmt.Errorf("%s: %w", op, err))
	}
}

// isNotFound detects the FTP 550 family: file unavailable, typically
// because the feed was rotated away between LIST and RETR.
func isNotFound(err error) bool {
	var proto *textproto.Error
	if errors.As(err, &proto) && proto.Code == ftp.StatusFileUnavailable {
		return true
	}
	return strings.Contains(err.Error(), "550")
}

// dialFTP opens and authenticates a real FTP session.
func dialFTP(ctx context.Context, cfg Config) (conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	c, err := ftp.Dial(addr,
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(cfg.Timeout),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, domain.NewTransportError(domain.ReasonTimeout, err)
		}
		return nil, domain.NewTransportError(domain.ReasonConnection, err)
	}

	if err := c.Login(cfg.User, cfg.Password); err != nil {
		_ = c.Quit()
		return nil, domain.NewTransportError(domain.ReasonAuth, err)
	}

	return &serverConn{c: c}, nil
}

// serverConn adapts *ftp.ServerConn to the conn interface.
type serverConn struct {
	c *ftp.ServerConn
}

func (s *serverConn) List(path string) ([]*ftp.Entry, error) {
	return s.c.List(path)
}

func (s *serverConn) Retr(path string) (io.ReadCloser, error) {
	r, err := s.c.Retr(path)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *serverConn) Quit() error {
	return s.c.Quit()
}
