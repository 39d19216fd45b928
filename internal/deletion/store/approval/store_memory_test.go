package approval

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/models"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/sentinel"
)

type ApprovalStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *ApprovalStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestApprovalStoreSuite(t *testing.T) {
	suite.Run(t, new(ApprovalStoreSuite))
}

func (s *ApprovalStoreSuite) newApproval(resourceID string) *models.DeletionApproval {
	approval, err := models.NewDeletionApproval(
		domain.ResourceRef{Type: domain.ResourceJob, ID: resourceID, DisplayName: "Job " + resourceID},
		"admin-1",
		"position closed",
		models.RiskHigh,
		domain.NewCorrelationID(),
		nil,
		time.Now(),
	)
	s.Require().NoError(err)
	return approval
}

func (s *ApprovalStoreSuite) TestCreateAndLookups() {
	s.Run("creates and finds approval by ID", func() {
		approval := s.newApproval("job-1")
		s.Require().NoError(s.store.CreateIfNonePending(s.ctx, approval))

		found, err := s.store.FindByID(s.ctx, approval.ID)
		s.Require().NoError(err)
		s.Equal(approval.Resource.ID, found.Resource.ID)
		s.Equal(models.ApprovalPending, found.Status)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, domain.NewApprovalID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("finds pending approval by resource", func() {
		approval := s.newApproval("job-2")
		s.Require().NoError(s.store.CreateIfNonePending(s.ctx, approval))

		found, err := s.store.FindPendingByResource(s.ctx, domain.ResourceJob, "job-2")
		s.Require().NoError(err)
		s.Equal(approval.ID, found.ID)
	})
}

func (s *ApprovalStoreSuite) TestSinglePendingPerResource() {
	s.Run("rejects second pending request for same resource", func() {
		first := s.newApproval("job-3")
		second := s.newApproval("job-3")

		s.Require().NoError(s.store.CreateIfNonePending(s.ctx, first))
		err := s.store.CreateIfNonePending(s.ctx, second)
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("allows a new request once the previous one is decided", func() {
		first := s.newApproval("job-4")
		s.Require().NoError(s.store.CreateIfNonePending(s.ctx, first))

		_, err := s.store.Execute(s.ctx, first.ID,
			func(a *models.DeletionApproval) error { return a.CanDecide("admin-2") },
			func(a *models.DeletionApproval) { a.ApplyRejection("admin-2", "not yet", time.Now()) },
		)
		s.Require().NoError(err)

		s.Require().NoError(s.store.CreateIfNonePending(s.ctx, s.newApproval("job-4")))
	})

	s.Run("concurrent requests admit exactly one", func() {
		const workers = 8
		var wg sync.WaitGroup
		errs := make(chan error, workers)

		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- s.store.CreateIfNonePending(s.ctx, s.newApproval("job-5"))
			}()
		}
		wg.Wait()
		close(errs)

		created, rejected := 0, 0
		for err := range errs {
			switch {
			case err == nil:
				created++
			case s.ErrorIs(err, sentinel.ErrAlreadyUsed):
				rejected++
			}
		}
		s.Equal(1, created)
		s.Equal(workers-1, rejected)
	})
}

func (s *ApprovalStoreSuite) TestExecuteDecisions() {
	s.Run("approves a pending approval", func() {
		approval := s.newApproval("job-6")
		s.Require().NoError(s.store.CreateIfNonePending(s.ctx, approval))

		decided, err := s.store.Execute(s.ctx, approval.ID,
			func(a *models.DeletionApproval) error { return a.CanDecide("admin-2") },
			func(a *models.DeletionApproval) { a.ApplyApproval("admin-2", time.Now()) },
		)
		s.Require().NoError(err)
		s.Equal(models.ApprovalApproved, decided.Status)
		s.Equal("admin-2", decided.DecidedBy)
	})

	s.Run("validation failure leaves approval untouched", func() {
		approval := s.newApproval("job-7")
		s.Require().NoError(s.store.CreateIfNonePending(s.ctx, approval))

		_, err := s.store.Execute(s.ctx, approval.ID,
			func(a *models.DeletionApproval) error { return a.CanDecide(a.RequestedBy) },
			func(a *models.DeletionApproval) { a.ApplyApproval(a.RequestedBy, time.Now()) },
		)
		s.Require().Error(err)

		found, err := s.store.FindByID(s.ctx, approval.ID)
		s.Require().NoError(err)
		s.Equal(models.ApprovalPending, found.Status)
	})

	s.Run("Execute on missing approval returns ErrNotFound", func() {
		_, err := s.store.Execute(s.ctx, domain.NewApprovalID(),
			func(*models.DeletionApproval) error { return nil },
			func(*models.DeletionApproval) {},
		)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}
