package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360studio/archcheck/model"
)

// SubjectPrefix is prepended to the project name when no subject is configured.
const SubjectPrefix = "archcheck.report"

// flushTimeout bounds the flush when the caller's context has no deadline.
const flushTimeout = 5 * time.Second

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// NATSPublisher publishes JSON reports to a NATS subject.
type NATSPublisher struct {
	conn    Conn
	subject string
	logger  *slog.Logger
	closer  func()
}

// NewNATSPublisher wraps an existing connection. An empty subject publishes
// to ReportSubject of each report's project.
func NewNATSPublisher(conn Conn, subject string, logger *slog.Logger) *NATSPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSPublisher{conn: conn, subject: subject, logger: logger}
}

// DialNATS connects to url and returns a publisher owning the connection.
func DialNATS(url, subject string, logger *slog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("archcheck"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	p := NewNATSPublisher(nc, subject, logger)
	p.closer = nc.Close
	return p, nil
}

// ReportSubject returns the default subject for a project. Characters that
// are not valid in a subject token are replaced with '_'.
func ReportSubject(project string) string {
	token := strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t':
			return '_'
		}
		return r
	}, project)
	if token == "" {
		token = "default"
	}
	return SubjectPrefix + "." + token
}

// Publish sends the report and waits for the server to acknowledge the flush.
func (p *NATSPublisher) Publish(ctx context.Context, r *model.Report) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	subject := p.subject
	if subject == "" {
		subject = ReportSubject(r.Project)
	}

	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flushTimeout)
		defer cancel()
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}

	p.logger.Info("Published report", "subject", subject, "run_id", r.RunID, "bytes", len(data))
	return nil
}

// Close releases a connection opened by DialNATS.
func (p *NATSPublisher) Close() {
	if p.closer != nil {
		p.closer()
	}
}
