package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/models"
	approvalstore "github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/store/approval"
	snapshotstore "github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/store/snapshot"
	resourcestore "github.com/marcelarangelrhellorh/rhelloflow/internal/resource/store"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
	dErrors "github.com/marcelarangelrhellorh/rhelloflow/pkg/domain-errors"
	audit "github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/audit"
	auditmemory "github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/audit/store/memory"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/audit/publisher"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/requestcontext"
)

var (
	admin = domain.Actor{ID: "admin-1", Kind: domain.ActorUser, DisplayName: "Ada Admin", AuthMethod: "jwt", Admin: true}
	peer  = domain.Actor{ID: "admin-2", Kind: domain.ActorUser, DisplayName: "Bea Admin", AuthMethod: "jwt", Admin: true}
	user  = domain.Actor{ID: "user-1", Kind: domain.ActorUser, DisplayName: "Uri User", AuthMethod: "jwt"}
)

type OrchestratorSuite struct {
	suite.Suite
	ctx       context.Context
	resources *resourcestore.InMemory
	approvals *approvalstore.InMemory
	snapshots *snapshotstore.InMemory
	auditLog  *auditmemory.InMemoryStore
	svc       *Service
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) SetupTest() {
	s.ctx = requestcontext.WithClientMetadata(context.Background(), "203.0.113.7", "Mozilla/5.0")
	s.resources = resourcestore.NewInMemory()
	s.approvals = approvalstore.NewInMemory()
	s.snapshots = snapshotstore.NewInMemory()
	s.auditLog = auditmemory.NewInMemoryStore()

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s.svc = New(
		s.resources,
		s.approvals,
		s.snapshots,
		publisher.NewPublisher(s.auditLog, publisher.WithLogger(logger)),
		WithLogger(logger),
	)
}

func (s *OrchestratorSuite) seedJob(id string, activeCandidates int) domain.ResourceRef {
	s.resources.Seed(domain.ResourceJob, id, map[string]any{
		"title":  "Backend Engineer",
		"status": "open",
	})
	for i := range activeCandidates {
		s.resources.Seed(domain.ResourceCandidate, id+"-cand-"+string(rune('a'+i)), map[string]any{
			"job_id": id,
			"name":   "Candidate",
		})
	}
	return domain.ResourceRef{Type: domain.ResourceJob, ID: id, DisplayName: "Backend Engineer"}
}

func (s *OrchestratorSuite) events(rt domain.ResourceType, id string) []audit.Event {
	events, err := s.auditLog.ListByResource(s.ctx, rt, id)
	s.Require().NoError(err)
	return events
}

// Scenario A: admin soft-deletes a job with no active candidates.
func (s *OrchestratorSuite) TestSoftDeleteJob_NoDependents() {
	job := s.seedJob("J1", 0)
	s.resources.SeedShareLink("J1", "link-1")
	s.resources.SeedShareLink("J1", "link-2")

	result, err := s.svc.SoftDelete(s.ctx, admin, SoftDeleteRequest{Resource: job, Reason: "position closed"})
	s.Require().NoError(err)

	s.Equal(models.RiskMedium, result.RiskLevel)
	s.False(result.RequiresApproval)
	s.Equal(2, result.LinksDeactivated)

	// Row still present, marked deleted; share links deactivated.
	s.True(s.resources.Exists(domain.ResourceJob, "J1"))
	s.True(s.resources.IsDeleted(domain.ResourceJob, "J1"))
	for _, link := range s.resources.ShareLinks("J1") {
		s.False(link.Active)
	}

	// Exactly one JOB_SOFT_DELETE event with the operation's correlation ID.
	events := s.events(domain.ResourceJob, "J1")
	s.Require().Len(events, 1)
	s.Equal(audit.ActionJobSoftDelete, events[0].Action)
	s.Equal(result.CorrelationID, events[0].CorrelationID)
	s.Equal("admin-1", events[0].Actor.ID)
	s.Equal("203.0.113.7", events[0].Client.IP)
	s.Equal("position closed", events[0].Payload["reason"])
	s.Equal(true, events[0].Payload["recoverable"])

	// P1/P6: snapshot exists under the same correlation ID, captured no later
	// than the mutation, reconstructable to the pre-delete field values.
	snaps, err := s.snapshots.ListByCorrelation(s.ctx, result.CorrelationID)
	s.Require().NoError(err)
	s.Require().Len(snaps, 1)
	s.Equal(models.DeletionSoft, snaps[0].DeletionType)
	s.Equal("open", snaps[0].State["status"])
	s.NotContains(snaps[0].State, "deleted_at")

	state, err := s.resources.Load(s.ctx, domain.ResourceJob, "J1")
	s.Require().NoError(err)
	s.False(snaps[0].CapturedAt.After(state["deleted_at"].(time.Time)))
}

// Scenario B / P2: a non-admin attempt is denied, logged, and changes nothing.
func (s *OrchestratorSuite) TestSoftDelete_NonAdminDenied() {
	s.resources.Seed(domain.ResourceCandidate, "C1", map[string]any{"name": "Casey"})
	ref := domain.ResourceRef{Type: domain.ResourceCandidate, ID: "C1", DisplayName: "Casey"}

	_, err := s.svc.SoftDelete(s.ctx, user, SoftDeleteRequest{Resource: ref, Reason: "cleanup"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.Equal("only admins can delete resources", dErrors.MessageOf(err))

	s.False(s.resources.IsDeleted(domain.ResourceCandidate, "C1"))

	events := s.events(domain.ResourceCandidate, "C1")
	s.Require().Len(events, 1)
	s.Equal(audit.ActionDeleteAttemptDenied, events[0].Action)
	s.Equal("user-1", events[0].Actor.ID)
	s.Equal(string(audit.ActionCandidateSoftDelete), events[0].Payload["attempted_action"])
}

func (s *OrchestratorSuite) TestSoftDelete_AnonymousActorStillAudited() {
	s.resources.Seed(domain.ResourceFeedback, "F1", map[string]any{"note": "strong hire"})
	ref := domain.ResourceRef{Type: domain.ResourceFeedback, ID: "F1"}

	_, err := s.svc.SoftDelete(s.ctx, domain.AnonymousActor(), SoftDeleteRequest{Resource: ref, Reason: "cleanup"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	events := s.events(domain.ResourceFeedback, "F1")
	s.Require().Len(events, 1)
	s.Equal(domain.ActorAnonymous, events[0].Actor.Kind)
	s.Equal("anonymous", events[0].Actor.ID)
}

// P1 fail-safe ordering: no snapshot, no mutation.
func (s *OrchestratorSuite) TestSoftDelete_SnapshotFailureAborts() {
	job := s.seedJob("J9", 0)
	s.snapshots.FailNext()

	_, err := s.svc.SoftDelete(s.ctx, admin, SoftDeleteRequest{Resource: job, Reason: "cleanup"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	s.False(s.resources.IsDeleted(domain.ResourceJob, "J9"))
	s.Empty(s.events(domain.ResourceJob, "J9"))
}

func (s *OrchestratorSuite) TestSoftDelete_RejectedWhileApprovalPending() {
	job := s.seedJob("J2", 1)

	_, err := s.svc.RequestApproval(s.ctx, admin, ApprovalRequest{Resource: job, Reason: "restructure"})
	s.Require().NoError(err)

	_, err = s.svc.SoftDelete(s.ctx, peer, SoftDeleteRequest{Resource: job, Reason: "cleanup"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Equal("a pending approval already exists for this resource", dErrors.MessageOf(err))
	s.False(s.resources.IsDeleted(domain.ResourceJob, "J2"))
}

func (s *OrchestratorSuite) TestSoftDelete_CriticalRiskRoutesToApproval() {
	job := s.seedJob("J3", 12)

	result, err := s.svc.SoftDelete(s.ctx, admin, SoftDeleteRequest{Resource: job, Reason: "restructure"})
	s.Require().NoError(err)

	s.True(result.RequiresApproval)
	s.False(result.ApprovalID.IsNil())
	s.Equal(models.RiskCritical, result.RiskLevel)
	s.False(s.resources.IsDeleted(domain.ResourceJob, "J3"))

	approval, err := s.svc.GetApproval(s.ctx, result.ApprovalID)
	s.Require().NoError(err)
	s.Equal(models.ApprovalPending, approval.Status)
	s.True(approval.RequiresMFA)

	events := s.events(domain.ResourceJob, "J3")
	s.Require().Len(events, 1)
	s.Equal(audit.ActionApprovalRequest, events[0].Action)
}

// Scenario C / P4 / P5: request then reject; two events, one correlation ID.
func (s *OrchestratorSuite) TestApprovalLifecycle_Rejection() {
	job := s.seedJob("J4", 15)

	approval, err := s.svc.RequestApproval(s.ctx, admin, ApprovalRequest{Resource: job, Reason: "restructure"})
	s.Require().NoError(err)
	s.Equal(models.RiskCritical, approval.RiskLevel)
	s.True(approval.RequiresMFA)

	decided, err := s.svc.DecideApproval(s.ctx, peer, approval.ID, DecisionRejected, "needs review")
	s.Require().NoError(err)
	s.Equal(models.ApprovalRejected, decided.Status)
	s.Equal("admin-2", decided.DecidedBy)

	s.False(s.resources.IsDeleted(domain.ResourceJob, "J4"))

	events := s.events(domain.ResourceJob, "J4")
	s.Require().Len(events, 2)
	s.Equal(audit.ActionApprovalRequest, events[0].Action)
	s.Equal(audit.ActionApprovalRejected, events[1].Action)
	s.Equal(events[0].CorrelationID, events[1].CorrelationID)
	s.Equal("needs review", events[1].Payload["rejection_reason"])

	// P4: terminal thereafter.
	_, err = s.svc.DecideApproval(s.ctx, admin, approval.ID, DecisionApproved, "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Equal("approval already decided", dErrors.MessageOf(err))
}

func (s *OrchestratorSuite) TestDecideApproval_SeparationOfDuties() {
	job := s.seedJob("J5", 3)

	approval, err := s.svc.RequestApproval(s.ctx, admin, ApprovalRequest{Resource: job, Reason: "restructure"})
	s.Require().NoError(err)

	_, err = s.svc.DecideApproval(s.ctx, admin, approval.ID, DecisionApproved, "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	fetched, err := s.svc.GetApproval(s.ctx, approval.ID)
	s.Require().NoError(err)
	s.Equal(models.ApprovalPending, fetched.Status)
}

// P3: two requests for one resource admit exactly one pending approval.
func (s *OrchestratorSuite) TestRequestApproval_DuplicatePending() {
	job := s.seedJob("J6", 2)

	_, err := s.svc.RequestApproval(s.ctx, admin, ApprovalRequest{Resource: job, Reason: "restructure"})
	s.Require().NoError(err)

	_, err = s.svc.RequestApproval(s.ctx, peer, ApprovalRequest{Resource: job, Reason: "me too"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *OrchestratorSuite) TestHardDelete_FullLifecycle() {
	job := s.seedJob("J7", 11)

	approval, err := s.svc.RequestApproval(s.ctx, admin, ApprovalRequest{Resource: job, Reason: "legal purge"})
	s.Require().NoError(err)

	// Not yet approved.
	_, err = s.svc.HardDelete(s.ctx, admin, HardDeleteRequest{ApprovalID: approval.ID})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	_, err = s.svc.DecideApproval(s.ctx, peer, approval.ID, DecisionApproved, "")
	s.Require().NoError(err)

	result, err := s.svc.HardDelete(s.ctx, admin, HardDeleteRequest{ApprovalID: approval.ID})
	s.Require().NoError(err)
	s.Equal(approval.CorrelationID, result.CorrelationID)

	s.False(s.resources.Exists(domain.ResourceJob, "J7"))

	// P5: request, grant, execute share one correlation ID.
	events := s.events(domain.ResourceJob, "J7")
	s.Require().Len(events, 3)
	s.Equal(audit.ActionApprovalRequest, events[0].Action)
	s.Equal(audit.ActionApprovalGranted, events[1].Action)
	s.Equal(audit.ActionJobHardDelete, events[2].Action)
	for _, e := range events {
		s.Equal(approval.CorrelationID, e.CorrelationID)
	}
	s.Equal(false, events[2].Payload["recoverable"])
	s.Equal(true, events[2].Payload["irreversible"])

	// P1 for the hard path: two snapshots never hurt; the execution snapshot
	// is independent of anything captured at request time.
	snaps, err := s.snapshots.ListByCorrelation(s.ctx, approval.CorrelationID)
	s.Require().NoError(err)
	s.Require().Len(snaps, 1)
	s.Equal(models.DeletionHard, snaps[0].DeletionType)
}

func (s *OrchestratorSuite) TestHardDelete_RejectedApprovalRefused() {
	job := s.seedJob("J8", 11)

	approval, err := s.svc.RequestApproval(s.ctx, admin, ApprovalRequest{Resource: job, Reason: "purge"})
	s.Require().NoError(err)
	_, err = s.svc.DecideApproval(s.ctx, peer, approval.ID, DecisionRejected, "keep it")
	s.Require().NoError(err)

	_, err = s.svc.HardDelete(s.ctx, admin, HardDeleteRequest{ApprovalID: approval.ID})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.True(s.resources.Exists(domain.ResourceJob, "J8"))
}

func (s *OrchestratorSuite) TestAssessRisk_CounterFailureDegradesToMedium() {
	s.seedJob("J10", 5)
	s.resources.FailDependentCounts(context.DeadlineExceeded)

	level, count, err := s.svc.AssessRisk(s.ctx, domain.ResourceJob, "J10")
	s.Require().NoError(err)
	s.Equal(models.RiskMedium, level)
	s.Zero(count)
}

func (s *OrchestratorSuite) TestHistory_OrderedAscending() {
	job := s.seedJob("J11", 0)

	_, err := s.svc.SoftDelete(s.ctx, admin, SoftDeleteRequest{Resource: job, Reason: "first"})
	s.Require().NoError(err)

	history, err := s.svc.History(s.ctx, domain.ResourceJob, "J11")
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(audit.ActionJobSoftDelete, history[0].Action)
}

func (s *OrchestratorSuite) TestSoftDelete_MissingResource() {
	ref := domain.ResourceRef{Type: domain.ResourceCandidate, ID: "ghost"}
	_, err := s.svc.SoftDelete(s.ctx, admin, SoftDeleteRequest{Resource: ref, Reason: "cleanup"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *OrchestratorSuite) TestSoftDelete_CallerSuppliedSnapshotState() {
	job := s.seedJob("J12", 0)
	pre := map[string]any{"title": "Backend Engineer", "status": "open", "headcount": 2}

	result, err := s.svc.SoftDelete(s.ctx, admin, SoftDeleteRequest{
		Resource:         job,
		Reason:           "position closed",
		PreSnapshotState: pre,
	})
	s.Require().NoError(err)

	snaps, err := s.snapshots.ListByCorrelation(s.ctx, result.CorrelationID)
	s.Require().NoError(err)
	s.Require().Len(snaps, 1)
	s.Equal(2, snaps[0].State["headcount"])
}
