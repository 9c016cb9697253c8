package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"healthreg/internal/connectivity"
	"healthreg/internal/patient/models"
	"healthreg/internal/patient/service"
	"healthreg/internal/patient/service/mocks"
	"healthreg/internal/patient/store/offline"
	patientsync "healthreg/internal/patient/sync"
	"healthreg/internal/storage/kv"
	"healthreg/pkg/platform/middleware/admin"
	"healthreg/pkg/platform/sentinel"
	"healthreg/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	remote  *mocks.MockRemoteRecordService
	queue   *offline.Queue
	monitor *connectivity.Monitor
	router  http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.remote = mocks.NewMockRemoteRecordService(ctrl)
	s.queue = offline.New(kv.NewInMemoryStore())
	s.monitor = connectivity.New()

	h := New(
		service.NewWriter(s.remote, s.queue, s.monitor),
		service.NewReader(s.remote, s.queue, s.monitor),
		patientsync.New(s.queue),
		s.monitor,
		"op-secret",
		nil,
	)
	r := chi.NewRouter()
	r.Use(testutil.FixedTime(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)))
	h.Register(r)
	s.router = r
}

func (s *HandlerSuite) registerBody(name string) RegisterPatientRequest {
	return RegisterPatientRequest{
		Name:        name,
		DateOfBirth: "2000-01-01",
		Gender:      "Female",
		Address:     "Dharampur, District X",
	}
}

func (s *HandlerSuite) seedOffline(names ...string) []string {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		id, err := s.queue.Append(context.Background(), s.registerBody(name).ToRegistration())
		s.Require().NoError(err)
		ids = append(ids, id)
	}
	return ids
}

func (s *HandlerSuite) TestRegisterPatient() {
	t := s.T()

	s.Run("remote success answers 201", func() {
		s.remote.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(t, http.MethodPost, "/patients", s.registerBody("Asha")))
		testutil.AssertStatus(t, rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[RegisterPatientResponse](t, rr)
		s.Equal(models.OutcomeRemote, resp.Outcome)
		s.Equal("Patient registered successfully!", resp.Message)
		s.NotEmpty(resp.ID)
	})

	s.Run("remote failure answers 202 with the fallback notice", func() {
		s.remote.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(sentinel.ErrUnavailable)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(t, http.MethodPost, "/patients", s.registerBody("Ravi")))
		testutil.AssertStatus(t, rr, http.StatusAccepted)
		resp := testutil.UnmarshalResponse[RegisterPatientResponse](t, rr)
		s.Equal(models.OutcomeOffline, resp.Outcome)
		s.Equal("Couldn't save online, saved offline", resp.Message)
		s.Equal("remote_unavailable", resp.RemoteError)
	})

	s.Run("offline answers 202 without touching the remote", func() {
		s.monitor.SetOnline(false)
		defer s.monitor.SetOnline(true)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(t, http.MethodPost, "/patients", s.registerBody("Meena")))
		testutil.AssertStatus(t, rr, http.StatusAccepted)
		resp := testutil.UnmarshalResponse[RegisterPatientResponse](t, rr)
		s.Equal("Patient registered offline!", resp.Message)
		s.Empty(resp.RemoteError)
	})

	s.Run("invalid registration answers 400", func() {
		body := s.registerBody("")
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(t, http.MethodPost, "/patients", body))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("malformed json answers 400", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(t, http.MethodPost, "/patients", "{"))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *HandlerSuite) TestListPatients() {
	t := s.T()
	s.seedOffline("Asha", "Ravi")

	s.Run("remote failure serves local and flags degraded", func() {
		s.remote.EXPECT().QueryAll(gomock.Any()).Return(nil, errors.New("timeout"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodGet, "/patients"))
		testutil.AssertStatusOK(t, rr)
		resp := testutil.UnmarshalResponse[ListPatientsResponse](t, rr)
		s.Equal(models.SourceLocal, resp.Source)
		s.True(resp.Degraded)
		s.Equal(2, resp.Count)
		s.Equal("Dharampur", resp.Patients[0].Village)
		s.Require().NotNil(resp.Patients[0].Age)
		s.Equal(25, *resp.Patients[0].Age)
	})

	s.Run("query filters by name", func() {
		s.monitor.SetOnline(false)
		defer s.monitor.SetOnline(true)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodGet, "/patients?q=rav"))
		testutil.AssertStatusOK(t, rr)
		resp := testutil.UnmarshalResponse[ListPatientsResponse](t, rr)
		s.Require().Equal(1, resp.Count)
		s.Equal("Ravi", resp.Patients[0].Name)
	})
}

func (s *HandlerSuite) TestSyncRoutes() {
	t := s.T()
	ids := s.seedOffline("Asha", "Ravi")

	rr := testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodGet, "/sync/pending"))
	testutil.AssertStatusOK(t, rr)
	pending := testutil.UnmarshalResponse[PendingResponse](t, rr)
	s.Equal(2, pending.Count)

	s.Run("confirm requires the operator token", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodPost, "/sync/pending/"+ids[0]+"/confirm"))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("confirm with token marks synced", func() {
		req := testutil.NewRequest(t, http.MethodPost, "/sync/pending/"+ids[0]+"/confirm")
		req.Header.Set(admin.HeaderOperatorToken, "op-secret")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(t, rr, http.StatusNoContent)

		rr = testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodGet, "/sync/pending"))
		s.Equal(1, testutil.UnmarshalResponse[PendingResponse](t, rr).Count)
	})

	s.Run("prune removes confirmed records", func() {
		req := testutil.NewRequest(t, http.MethodPost, "/sync/prune")
		req.Header.Set(admin.HeaderOperatorToken, "op-secret")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusOK(t, rr)
		s.Equal(1, testutil.UnmarshalResponse[PruneResponse](t, rr).Removed)
	})
}

func (s *HandlerSuite) TestConnectivityRoutes() {
	t := s.T()

	rr := testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodGet, "/connectivity"))
	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "online", true)

	rr = testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodPost, "/connectivity/toggle"))
	testutil.AssertStatusOK(t, rr)
	s.False(s.monitor.IsOnline())

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(t, http.MethodPut, "/connectivity", map[string]bool{"online": true}))
	testutil.AssertStatusOK(t, rr)
	s.True(s.monitor.IsOnline())

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(t, http.MethodPut, "/connectivity", map[string]string{}))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
}
