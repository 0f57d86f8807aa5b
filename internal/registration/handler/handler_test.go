package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"bhandara/internal/registration/handler/mocks"
	"bhandara/internal/registration/models"
	dErrors "bhandara/pkg/domain-errors"
	"bhandara/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *HandlerSuite) SetupSuite() {
	s.ctx = context.Background()
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func newTestHandler(t *testing.T) (http.Handler, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(mockService, logger)
	r := chi.NewRouter()
	h.Register(r)
	return r, mockService
}

func (s *HandlerSuite) TestHandleStart() {
	router, mockService := newTestHandler(s.T())
	mockService.EXPECT().Start(gomock.Any()).Return("conv-abc", nil)

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/start", "")
	rr := testutil.DoRequest(router, req)

	assert.Equal(s.T(), http.StatusOK, rr.Code)
	resp := testutil.UnmarshalResponse[map[string]string](s.T(), rr)
	assert.Equal(s.T(), "conv-abc", (*resp)["conversation_id"])
}

func (s *HandlerSuite) TestHandleProcessSuccess() {
	router, mockService := newTestHandler(s.T())
	mockService.EXPECT().Advance(gomock.Any(), "conv-abc", "Jane Doe").Return(&models.StepResult{
		NextStep:        models.StepEmail,
		NextStepMessage: "Enter your email address",
	}, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/process",
		processRequest{ConversationID: "conv-abc", CurrentStep: "name", UserInput: "Jane Doe"})
	rr := testutil.DoRequest(router, req)

	assert.Equal(s.T(), http.StatusOK, rr.Code)
	resp := testutil.UnmarshalResponse[models.StepResult](s.T(), rr)
	assert.Equal(s.T(), models.StepEmail, resp.NextStep)
	assert.Equal(s.T(), "Enter your email address", resp.NextStepMessage)
}

func (s *HandlerSuite) TestHandleProcessIgnoresClientStep() {
	router, mockService := newTestHandler(s.T())
	// The engine receives only id and input. A forged current_step cannot
	// teleport the conversation.
	mockService.EXPECT().Advance(gomock.Any(), "conv-abc", "yes").Return(&models.StepResult{
		NextStep: models.StepName,
	}, nil)

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/process",
		`{"conversation_id":"conv-abc","current_step":"confirmation","user_input":"yes"}`)
	rr := testutil.DoRequest(router, req)

	assert.Equal(s.T(), http.StatusOK, rr.Code)
}

func (s *HandlerSuite) TestHandleProcessValidationRejectionIs200() {
	router, mockService := newTestHandler(s.T())
	mockService.EXPECT().Advance(gomock.Any(), "conv-abc", "J").Return(&models.StepResult{
		Error:     "Please enter a valid name (at least 2 characters)",
		ErrorStep: models.StepName,
	}, nil)

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/process",
		`{"conversation_id":"conv-abc","user_input":"J"}`)
	rr := testutil.DoRequest(router, req)

	assert.Equal(s.T(), http.StatusOK, rr.Code)
	resp := testutil.UnmarshalResponse[models.StepResult](s.T(), rr)
	assert.Equal(s.T(), models.StepName, resp.ErrorStep)
	assert.Empty(s.T(), resp.NextStep)
	assert.NotEmpty(s.T(), resp.Error)
}

func (s *HandlerSuite) TestHandleProcessUnknownConversationIs404() {
	router, mockService := newTestHandler(s.T())
	mockService.EXPECT().Advance(gomock.Any(), "ghost", "x").
		Return(nil, dErrors.New(dErrors.CodeNotFound, "Conversation not found"))

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/process",
		`{"conversation_id":"ghost","user_input":"x"}`)
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *HandlerSuite) TestHandleProcessTerminalConversationIs400() {
	router, mockService := newTestHandler(s.T())
	mockService.EXPECT().Advance(gomock.Any(), "done", "more").
		Return(nil, dErrors.New(dErrors.CodeInvalidState, "Conversation already completed"))

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/process",
		`{"conversation_id":"done","user_input":"more"}`)
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_state")
}

func (s *HandlerSuite) TestHandleProcessMissingConversationID() {
	router, _ := newTestHandler(s.T())

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/process", `{"user_input":"x"}`)
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *HandlerSuite) TestHandleProcessMalformedBody() {
	router, _ := newTestHandler(s.T())

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/process", "{nope")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *HandlerSuite) TestHandleListDefaults() {
	router, mockService := newTestHandler(s.T())
	mockService.EXPECT().
		List(gomock.Any(), models.ListQuery{Skip: 0, Limit: 100, SortBy: "timestamp", SortOrder: "desc"}).
		Return(&models.Page{Registrations: []models.Fields{}, TotalCount: 0, Limit: 100}, nil)

	req := testutil.NewRequest(s.T(), http.MethodGet, "/registrations")
	rr := testutil.DoRequest(router, req)

	assert.Equal(s.T(), http.StatusOK, rr.Code)
}

func (s *HandlerSuite) TestHandleListWithQuery() {
	router, mockService := newTestHandler(s.T())
	mockService.EXPECT().
		List(gomock.Any(), models.ListQuery{Skip: 2, Limit: 2, SortBy: "timestamp", SortOrder: "asc"}).
		Return(&models.Page{
			Registrations: []models.Fields{{"full_name": "C"}, {"full_name": "D"}},
			TotalCount:    5,
			Skip:          2,
			Limit:         2,
		}, nil)

	req := testutil.NewRequest(s.T(), http.MethodGet, "/registrations?skip=2&limit=2&sort_by=timestamp&sort_order=asc")
	rr := testutil.DoRequest(router, req)

	assert.Equal(s.T(), http.StatusOK, rr.Code)
	page := testutil.UnmarshalResponse[models.Page](s.T(), rr)
	assert.Equal(s.T(), 5, page.TotalCount)
	require.Len(s.T(), page.Registrations, 2)
	assert.Equal(s.T(), "C", page.Registrations[0]["full_name"])
}

func (s *HandlerSuite) TestHandleListNegativeValuesFallBack() {
	router, mockService := newTestHandler(s.T())
	mockService.EXPECT().
		List(gomock.Any(), models.ListQuery{Skip: 0, Limit: 100, SortBy: "timestamp", SortOrder: "desc"}).
		Return(&models.Page{Registrations: []models.Fields{}}, nil)

	req := testutil.NewRequest(s.T(), http.MethodGet, "/registrations?skip=-3&limit=-1")
	rr := testutil.DoRequest(router, req)

	assert.Equal(s.T(), http.StatusOK, rr.Code)
}

func (s *HandlerSuite) TestHandleListServiceError() {
	router, mockService := newTestHandler(s.T())
	mockService.EXPECT().
		List(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeInternal, "store unavailable"))

	req := testutil.NewRequest(s.T(), http.MethodGet, "/registrations")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, "internal_error")
}
