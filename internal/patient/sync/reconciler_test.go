package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"healthreg/internal/patient/models"
	"healthreg/internal/patient/service/mocks"
	"healthreg/internal/patient/store/offline"
	"healthreg/internal/storage/kv"
	dErrors "healthreg/pkg/domain-errors"
)

type ReconcilerSuite struct {
	suite.Suite
	queue      *offline.Queue
	reconciler *Reconciler
	ctx        context.Context
}

func TestReconcilerSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerSuite))
}

func (s *ReconcilerSuite) SetupTest() {
	s.ctx = context.Background()
	s.queue = offline.New(kv.NewInMemoryStore())
	s.reconciler = New(s.queue)
}

func (s *ReconcilerSuite) append(name string) string {
	id, err := s.queue.Append(s.ctx, models.Registration{
		Name: name, DateOfBirth: "1990-01-01", Gender: models.GenderOther, Address: "Anand",
	})
	s.Require().NoError(err)
	return id
}

func (s *ReconcilerSuite) TestDrainCycle() {
	first := s.append("first")
	s.append("second")

	pending, err := s.reconciler.GetPending(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal(first, pending[0].ID)

	s.Require().NoError(s.reconciler.Confirm(s.ctx, first))
	s.Require().NoError(s.reconciler.Confirm(s.ctx, first))

	pending, err = s.reconciler.GetPending(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal("second", pending[0].Name)

	removed, err := s.reconciler.ConfirmAll(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, removed)

	all, err := s.queue.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *ReconcilerSuite) TestConfirmUnknownIsNoop() {
	s.append("only")
	s.NoError(s.reconciler.Confirm(s.ctx, "does-not-exist"))

	pending, err := s.reconciler.GetPending(s.ctx)
	s.Require().NoError(err)
	s.Len(pending, 1)
}

func (s *ReconcilerSuite) TestConfirmBlankID() {
	err := s.reconciler.Confirm(s.ctx, "  ")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ReconcilerSuite) TestStorageErrorsPropagate() {
	ctrl := gomock.NewController(s.T())
	queue := mocks.NewMockOfflineQueue(ctrl)
	reconciler := New(queue)

	queue.EXPECT().PruneSynced(gomock.Any()).Return(0, errors.New("disk full"))
	_, err := reconciler.ConfirmAll(s.ctx)
	s.Error(err)

	queue.EXPECT().MarkSynced(gomock.Any(), "p-1").Return(errors.New("disk full"))
	s.Error(reconciler.Confirm(s.ctx, "p-1"))
}
