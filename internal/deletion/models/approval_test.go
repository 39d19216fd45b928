package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
	dErrors "github.com/marcelarangelrhellorh/rhelloflow/pkg/domain-errors"
)

func newApproval(t *testing.T, risk RiskLevel) *DeletionApproval {
	t.Helper()
	approval, err := NewDeletionApproval(
		domain.ResourceRef{Type: domain.ResourceJob, ID: "job-1", DisplayName: "Backend Engineer"},
		"admin-1",
		"position closed",
		risk,
		domain.NewCorrelationID(),
		nil,
		time.Now(),
	)
	require.NoError(t, err)
	return approval
}

func TestNewDeletionApproval_Invariants(t *testing.T) {
	t.Run("starts pending", func(t *testing.T) {
		approval := newApproval(t, RiskHigh)
		assert.Equal(t, ApprovalPending, approval.Status)
		assert.False(t, approval.RequiresMFA)
	})

	t.Run("critical risk requires MFA", func(t *testing.T) {
		approval := newApproval(t, RiskCritical)
		assert.True(t, approval.RequiresMFA)
	})

	t.Run("rejects empty reason", func(t *testing.T) {
		_, err := NewDeletionApproval(
			domain.ResourceRef{Type: domain.ResourceJob, ID: "job-1"},
			"admin-1", "", RiskHigh, domain.NewCorrelationID(), nil, time.Now(),
		)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects unknown risk level", func(t *testing.T) {
		_, err := NewDeletionApproval(
			domain.ResourceRef{Type: domain.ResourceJob, ID: "job-1"},
			"admin-1", "cleanup", RiskLevel("extreme"), domain.NewCorrelationID(), nil, time.Now(),
		)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestApprovalTransitions(t *testing.T) {
	t.Run("approve is terminal", func(t *testing.T) {
		approval := newApproval(t, RiskHigh)
		require.NoError(t, approval.CanDecide("admin-2"))
		approval.ApplyApproval("admin-2", time.Now())

		assert.Equal(t, ApprovalApproved, approval.Status)
		err := approval.CanDecide("admin-3")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("reject is terminal and records reason", func(t *testing.T) {
		approval := newApproval(t, RiskCritical)
		require.NoError(t, approval.CanDecide("admin-2"))
		approval.ApplyRejection("admin-2", "needs review", time.Now())

		assert.Equal(t, ApprovalRejected, approval.Status)
		assert.Equal(t, "needs review", approval.RejectionReason)
		require.Error(t, approval.CanDecide("admin-3"))
	})

	t.Run("requester cannot decide own request", func(t *testing.T) {
		approval := newApproval(t, RiskHigh)
		err := approval.CanDecide("admin-1")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func TestRiskForDependents(t *testing.T) {
	assert.Equal(t, RiskMedium, RiskForDependents(0))
	assert.Equal(t, RiskHigh, RiskForDependents(1))
	assert.Equal(t, RiskHigh, RiskForDependents(10))
	assert.Equal(t, RiskCritical, RiskForDependents(11))
}

func TestRiskAtLeast(t *testing.T) {
	assert.True(t, RiskCritical.AtLeast(RiskMedium))
	assert.True(t, RiskHigh.AtLeast(RiskHigh))
	assert.False(t, RiskMedium.AtLeast(RiskHigh))
}
