package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"civicdesk/internal/media/fetch"
	"civicdesk/internal/media/metrics"
	"civicdesk/internal/media/models"
	"civicdesk/internal/media/objectstore"
	"civicdesk/internal/media/queue"
	dErrors "civicdesk/pkg/domain-errors"
)

type stubFetcher struct {
	media *fetch.Media
	err   error
	urls  []string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (*fetch.Media, error) {
	f.urls = append(f.urls, url)
	return f.media, f.err
}

type MediaServiceSuite struct {
	suite.Suite
	ctx     context.Context
	queue   *queue.InMemory
	objects *objectstore.InMemory
	fetcher *stubFetcher
	metrics *metrics.Metrics
	service *Service
}

func TestMediaServiceSuite(t *testing.T) {
	suite.Run(t, new(MediaServiceSuite))
}

func (s *MediaServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.queue = queue.NewInMemory()
	s.objects = objectstore.NewInMemory()
	s.fetcher = &stubFetcher{media: &fetch.Media{ContentType: "image/jpeg", Data: []byte("jpeg")}}
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.service = New(s.queue, s.objects, s.fetcher, "civic-bucket",
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
	)
}

func (s *MediaServiceSuite) TestEnqueueMessage() {
	s.Run("publishes with empty media list", func() {
		msg, err := s.service.EnqueueMessage(s.ctx, &models.OutboundMessage{
			To: "whatsapp:+15551234567", Body: "Your grievance was received", From: "whatsapp:+14155238886",
		})
		s.Require().NoError(err)
		s.Equal("Message queued for delivery via WhatsApp!", msg)

		recs := s.queue.Records()
		s.Require().Len(recs, 1)
		s.Equal("whatsapp:+15551234567", recs[0].Key)
		s.JSONEq(`{"to":"whatsapp:+15551234567","body":"Your grievance was received","from":"whatsapp:+14155238886","mediaUrls":[]}`,
			string(recs[0].Value))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.MessagesQueued))
	})

	s.Run("media urls are trimmed and deduplicated", func() {
		_, err := s.service.EnqueueMessage(s.ctx, &models.OutboundMessage{
			To: "whatsapp:+1", Body: "see attached", From: "whatsapp:+2",
			MediaURLs: []string{" https://m/1 ", "https://m/1", "", "https://m/2"},
		})
		s.Require().NoError(err)
		recs := s.queue.Records()
		s.JSONEq(`{"to":"whatsapp:+1","body":"see attached","from":"whatsapp:+2","mediaUrls":["https://m/1","https://m/2"]}`,
			string(recs[len(recs)-1].Value))
	})

	s.Run("missing from is 400", func() {
		_, err := s.service.EnqueueMessage(s.ctx, &models.OutboundMessage{To: "a", Body: "b"})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Len(s.queue.Records(), 2)
	})
}

func (s *MediaServiceSuite) TestStoreMedia() {
	s.Run("stores under sanitized identifier", func() {
		res, err := s.service.StoreMedia(s.ctx, &models.StoreMediaRequest{
			ContactNumber: "whatsapp:+15551234567",
			MediaURL:      "https://api.example.com/Media/ME1",
		})
		s.Require().NoError(err)
		s.Equal("File uploaded successfully", res.Message)
		s.Equal("https://storage.googleapis.com/civic-bucket/twilio_media/15551234567.jpg", res.FileURL)

		obj, ok := s.objects.Get("twilio_media/15551234567.jpg")
		s.Require().True(ok)
		s.Equal("image/jpeg", obj.ContentType)
		s.Equal([]string{"https://api.example.com/Media/ME1"}, s.fetcher.urls)
	})

	s.Run("media url checked before contact", func() {
		_, err := s.service.StoreMedia(s.ctx, &models.StoreMediaRequest{})
		de, ok := dErrors.As(err)
		s.Require().True(ok)
		s.Equal("Media URL is required", de.Message)
	})

	s.Run("missing contact is 400", func() {
		_, err := s.service.StoreMedia(s.ctx, &models.StoreMediaRequest{MediaURL: "https://x"})
		de, ok := dErrors.As(err)
		s.Require().True(ok)
		s.Equal("Contact number is required", de.Message)
	})

	s.Run("fetch failure is internal", func() {
		s.fetcher.err = errors.New("unexpected status 404")
		_, err := s.service.StoreMedia(s.ctx, &models.StoreMediaRequest{ContactNumber: "1", MediaURL: "https://x"})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.MediaUploads.WithLabelValues("fetch_failed")))
	})
}

func (s *MediaServiceSuite) TestLookupMedia() {
	_, err := s.service.StoreMedia(s.ctx, &models.StoreMediaRequest{ContactNumber: "whatsapp:+15551234567", MediaURL: "https://x"})
	s.Require().NoError(err)

	s.Run("found", func() {
		res, err := s.service.LookupMedia(s.ctx, "15551234567", "jpg")
		s.Require().NoError(err)
		s.Equal("https://storage.googleapis.com/civic-bucket/twilio_media/15551234567.jpg", res.FileURL)
	})

	s.Run("not found is 404", func() {
		_, err := s.service.LookupMedia(s.ctx, "15551234567", "png")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("missing parameters are 400", func() {
		_, err := s.service.LookupMedia(s.ctx, "", "jpg")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		_, err = s.service.LookupMedia(s.ctx, "1", "")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestExtension(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"image/jpeg", "jpg"},
		{"image/png", "png"},
		{"text/plain; charset=utf-8", "txt"},
		{"application/pdf", "pdf"},
		{"application/octet-stream", "bin"},
		{"application/x-made-up", "bin"},
		{"", "bin"},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, Extension(tt.contentType))
		})
	}
}
