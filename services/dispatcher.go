package services

import (
	"context"
	"fmt"
	"time"

	"despachos/models"
	"despachos/repository"
	"despachos/rndc"

	"go.uber.org/zap"
)

// DefaultPause is the gap between two submissions of a batch.
const DefaultPause = 2 * time.Second

// Sender delivers one message to RNDC.
type Sender interface {
	Send(ctx context.Context, body string) rndc.TransportResult
}

// SenderFactory builds the transport for the configuration resolved by the
// caller.
type SenderFactory func(cfg *models.Configuration) Sender

// Dispatcher runs cargo orders and manifests through RNDC one at a time.
type Dispatcher struct {
	store     *repository.Store
	newSender SenderFactory
	lock      SubmissionLock
	pause     time.Duration
	sleep     func(time.Duration)
	now       func() time.Time
	logger    *zap.Logger
}

type Option func(*Dispatcher)

func WithSenderFactory(f SenderFactory) Option { return func(d *Dispatcher) { d.newSender = f } }
func WithLock(l SubmissionLock) Option         { return func(d *Dispatcher) { d.lock = l } }
func WithPause(p time.Duration) Option         { return func(d *Dispatcher) { d.pause = p } }
func WithSleep(f func(time.Duration)) Option   { return func(d *Dispatcher) { d.sleep = f } }
func WithClock(f func() time.Time) Option      { return func(d *Dispatcher) { d.now = f } }

func NewDispatcher(store *repository.Store, logger *zap.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		store:  store,
		lock:   NewLocalLock(),
		pause:  DefaultPause,
		sleep:  time.Sleep,
		now:    time.Now,
		logger: logger,
	}
	d.newSender = func(cfg *models.Configuration) Sender {
		return rndc.NewClient(cfg.PrimaryURL, cfg.BackupURL, cfg.Timeout(), d.logger)
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func credentials(cfg *models.Configuration) rndc.Credentials {
	return rndc.Credentials{
		Username:   cfg.Username,
		Password:   cfg.Password,
		CompanyNIT: cfg.CompanyNIT,
	}
}

// nextConsecutive allocates the next number for docType in the current
// year, rendered as YYYY followed by a five-digit counter.
func (d *Dispatcher) nextConsecutive(docType string) (string, error) {
	year := d.now().Year()
	n, err := d.store.Sequences.NextSequence(docType, year)
	if err != nil {
		return "", fmt.Errorf("next %s sequence: %w", docType, err)
	}
	return fmt.Sprintf("%d%05d", year, n), nil
}

// outcome is one transmitted message after classification.
type outcome struct {
	success   bool
	message   string
	raw       string
	endpoint  string
	trackID   string
	secCode   string
	transport rndc.TransportResult
}

// transmit sends body and classifies the answer. Success requires transport
// success, classifier success and a non-empty tracking id.
func (d *Dispatcher) transmit(ctx context.Context, sender Sender, body string) outcome {
	tr := sender.Send(ctx, body)
	out := outcome{transport: tr, endpoint: tr.Endpoint}
	if !tr.Success {
		out.message = "RNDC unreachable: " + tr.ErrorMessage
		return out
	}
	res := rndc.Classify(tr.RawBody)
	out.raw = res.RawBody
	out.message = res.Message
	out.trackID = res.TrackingID
	out.secCode = res.SecurityCode
	out.success = res.Success && res.TrackingID != ""
	if res.Success && res.TrackingID == "" {
		out.message = "RNDC answer without ingresoid"
	}
	return out
}

// record writes the audit document and then the log entry for one attempt.
func (d *Dispatcher) record(docType, consecutive, body, status string, out outcome, batchID *string) error {
	doc := &models.AuditDocument{
		Type:        docType,
		Consecutive: consecutive,
		RequestXML:  body,
		Response:    out.raw,
		Status:      status,
		Message:     out.message,
		Endpoint:    out.endpoint,
		CreatedAt:   d.now().UTC(),
	}
	if out.raw == "" && !out.transport.Success {
		doc.Response = out.transport.ErrorMessage
	}
	if err := d.store.Audit.CreateAuditDocument(doc); err != nil {
		return fmt.Errorf("save audit document: %w", err)
	}
	level := models.LogInfo
	if !out.success {
		level = models.LogError
	}
	return d.logEntry(docType, fmt.Sprintf("%s %s: %s", docType, consecutive, out.message), level, batchID)
}

func (d *Dispatcher) logEntry(action, detail, level string, batchID *string) error {
	entry := &models.LogEntry{
		Action:    action,
		Detail:    detail,
		Level:     level,
		BatchID:   batchID,
		CreatedAt: d.now().UTC(),
	}
	if err := d.store.Audit.CreateLogEntry(entry); err != nil {
		return fmt.Errorf("save log entry: %w", err)
	}
	return nil
}

// reject logs a record that failed before anything was sent.
func (d *Dispatcher) reject(action, key string, err error, batchID *string) error {
	d.logger.Warn("rndc submission rejected",
		zap.String("action", action),
		zap.String("key", key),
		zap.Error(err),
	)
	if logErr := d.logEntry(action, fmt.Sprintf("%s %s: %v", action, key, err), models.LogError, batchID); logErr != nil {
		d.logger.Error("write log entry", zap.Error(logErr))
	}
	return err
}

func (d *Dispatcher) logOutcome(kind, key string, out outcome) {
	fields := []zap.Field{
		zap.String("kind", kind),
		zap.String("consecutivo", key),
		zap.String("endpoint", out.endpoint),
		zap.Bool("success", out.success),
		zap.String("message", out.message),
	}
	if out.success {
		d.logger.Info("rndc submission accepted", append(fields, zap.String("ingresoid", out.trackID))...)
		return
	}
	d.logger.Warn("rndc submission failed", fields...)
}

func strPtr(s string) *string {
	return &s
}

func result(consecutive string, out outcome) models.SubmissionResult {
	return models.SubmissionResult{
		Success:     out.success,
		Consecutive: consecutive,
		IngresoID:   out.trackID,
		Message:     out.message,
		RawResponse: out.raw,
		Endpoint:    out.endpoint,
	}
}
