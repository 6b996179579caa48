package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"civicdesk/internal/media/handler/mocks"
	"civicdesk/internal/media/models"
	dErrors "civicdesk/pkg/domain-errors"
	"civicdesk/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/media-mocks.go -package=mocks Service
type MediaHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestMediaHandlerSuite(t *testing.T) {
	suite.Run(t, new(MediaHandlerSuite))
}

func (s *MediaHandlerSuite) SetupTest() {
	s.service = mocks.NewMockService(gomock.NewController(s.T()))
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *MediaHandlerSuite) TestEnqueueMessage() {
	s.Run("200 with confirmation", func() {
		s.service.EXPECT().EnqueueMessage(gomock.Any(), &models.OutboundMessage{
			To: "whatsapp:+1", Body: "hi", From: "whatsapp:+2", MediaURLs: []string{"https://m/1"},
		}).Return("Message queued for delivery via WhatsApp!", nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/messages", map[string]any{
			"to": "whatsapp:+1", "body": "hi", "from": "whatsapp:+2", "mediaUrls": []string{"https://m/1"},
		}))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "message", "Message queued for delivery via WhatsApp!")
	})

	s.Run("validation failure is 400", func() {
		s.service.EXPECT().EnqueueMessage(gomock.Any(), gomock.Any()).
			Return("", dErrors.New(dErrors.CodeBadRequest, "Invalid request: 'to', 'body', and 'from' are required."))
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/messages", map[string]any{"to": "x"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *MediaHandlerSuite) TestStoreMedia() {
	s.Run("200 with file url", func() {
		s.service.EXPECT().StoreMedia(gomock.Any(), &models.StoreMediaRequest{ContactNumber: "whatsapp:+1", MediaURL: "https://m/1"}).
			Return(&models.StoreMediaResponse{Message: "File uploaded successfully", FileURL: "https://storage.googleapis.com/b/twilio_media/1.jpg"}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/media",
			map[string]string{"contactNumber": "whatsapp:+1", "mediaUrl": "https://m/1"}))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "fileUrl", "https://storage.googleapis.com/b/twilio_media/1.jpg")
	})

	s.Run("download failure is 500", func() {
		s.service.EXPECT().StoreMedia(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeInternal, "Error downloading media"))
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/media",
			map[string]string{"contactNumber": "1", "mediaUrl": "https://m/1"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, "internal_error")
	})
}

func (s *MediaHandlerSuite) TestLookupMedia() {
	s.Run("reads query parameters", func() {
		s.service.EXPECT().LookupMedia(gomock.Any(), "15551234567", "jpg").
			Return(&models.LookupMediaResponse{FileURL: "https://storage.googleapis.com/b/twilio_media/15551234567.jpg"}, nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/media?contactNumber=15551234567&extension=jpg"))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONHasKey(s.T(), rr, "fileUrl")
	})

	s.Run("missing file is 404", func() {
		s.service.EXPECT().LookupMedia(gomock.Any(), "1", "png").
			Return(nil, dErrors.New(dErrors.CodeNotFound, "File not found"))
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/media?contactNumber=1&extension=png"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})
}
