package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"mime"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"civicdesk/internal/grievance/contact"
	"civicdesk/internal/media/fetch"
	"civicdesk/internal/media/metrics"
	"civicdesk/internal/media/models"
	"civicdesk/internal/media/objectstore"
	"civicdesk/internal/media/queue"
	dErrors "civicdesk/pkg/domain-errors"
	"civicdesk/pkg/platform/strutil"
)

const (
	mediaPrefix      = "twilio_media/"
	fallbackExt      = "bin"
	queuedMessage    = "Message queued for delivery via WhatsApp!"
	uploadedMessage  = "File uploaded successfully"
	fileNotFoundDesc = "File not found"
)

type Fetcher interface {
	Fetch(ctx context.Context, mediaURL string) (*fetch.Media, error)
}

// Service relays outbound messages and stores inbound media attachments.
type Service struct {
	queue   queue.Publisher
	objects objectstore.Store
	fetcher Fetcher
	bucket  string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(q queue.Publisher, objects objectstore.Store, fetcher Fetcher, bucket string, opts ...Option) *Service {
	s := &Service{
		queue:   q,
		objects: objects,
		fetcher: fetcher,
		bucket:  bucket,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnqueueMessage publishes the message keyed by recipient.
func (s *Service) EnqueueMessage(ctx context.Context, msg *models.OutboundMessage) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}
	msg.MediaURLs = strutil.Compact(msg.MediaURLs)
	if msg.MediaURLs == nil {
		msg.MediaURLs = []string{}
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, err.Error())
	}
	if err := s.queue.Publish(ctx, queue.Record{Key: msg.To, Value: payload}); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, err.Error())
	}

	s.metrics.IncrementQueued()
	s.logger.InfoContext(ctx, "message queued", "media_count", len(msg.MediaURLs))
	return queuedMessage, nil
}

// StoreMedia downloads the attachment and writes it as
// twilio_media/{identifier}.{ext}, returning the public URL.
func (s *Service) StoreMedia(ctx context.Context, req *models.StoreMediaRequest) (*models.StoreMediaResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	id := contact.Normalize(req.ContactNumber)
	if id == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Contact number is required")
	}

	start := time.Now()
	media, err := s.fetcher.Fetch(ctx, req.MediaURL)
	s.metrics.ObserveFetch(start)
	if err != nil {
		s.metrics.IncrementUpload("fetch_failed")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Error downloading media")
	}

	name := mediaPrefix + id + "." + Extension(media.ContentType)
	if err := s.objects.Put(ctx, name, media.ContentType, media.Data); err != nil {
		s.metrics.IncrementUpload("store_failed")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Error uploading media to storage")
	}

	s.metrics.IncrementUpload("stored")
	s.logger.InfoContext(ctx, "media stored", "object", name, "bytes", len(media.Data))
	return &models.StoreMediaResponse{
		Message: uploadedMessage,
		FileURL: objectstore.PublicURL(s.bucket, name),
	}, nil
}

// LookupMedia returns the public URL of a previously stored attachment.
func (s *Service) LookupMedia(ctx context.Context, contactNumber, extension string) (*models.LookupMediaResponse, error) {
	if contactNumber == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Contact number is required")
	}
	if extension == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Extension is Required")
	}

	name := mediaPrefix + contact.Normalize(contactNumber) + "." + strings.TrimPrefix(extension, ".")
	ok, err := s.objects.Exists(ctx, name)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Error retrieving file from storage")
	}
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, fileNotFoundDesc)
	}
	return &models.LookupMediaResponse{FileURL: objectstore.PublicURL(s.bucket, name)}, nil
}

// Extension maps a Content-Type header to a file extension without the dot.
// Parameters are ignored and unknown types map to "bin".
func Extension(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fallbackExt
	}
	m := mimetype.Lookup(mediaType)
	if m == nil {
		return fallbackExt
	}
	if ext := strings.TrimPrefix(m.Extension(), "."); ext != "" {
		return ext
	}
	return fallbackExt
}
