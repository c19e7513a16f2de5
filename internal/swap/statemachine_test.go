package swap

import (
	"testing"
	"time"

	"github.com/BillixOfficial/Billix-sub006/shared/models"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	legal := [][2]string{
		{models.SwapPending, models.SwapMatched},
		{models.SwapPending, models.SwapCancelled},
		{models.SwapMatched, models.SwapFeePending},
		{models.SwapMatched, models.SwapCancelled},
		{models.SwapFeePending, models.SwapFeePaid},
		{models.SwapFeePending, models.SwapCancelled},
		{models.SwapFeePaid, models.SwapLegAComplete},
		{models.SwapFeePaid, models.SwapLegBComplete},
		{models.SwapFeePaid, models.SwapFailed},
		{models.SwapLegAComplete, models.SwapCompleted},
		{models.SwapLegAComplete, models.SwapDisputed},
		{models.SwapLegBComplete, models.SwapCompleted},
		{models.SwapLegBComplete, models.SwapFailed},
		{models.SwapDisputed, models.SwapCompleted},
		{models.SwapDisputed, models.SwapFailed},
		{models.SwapDisputed, models.SwapRefunded},
	}
	for _, edge := range legal {
		assert.True(t, CanTransition(edge[0], edge[1]), "%s -> %s should be legal", edge[0], edge[1])
	}

	illegal := [][2]string{
		{models.SwapPending, models.SwapFeePaid},
		{models.SwapPending, models.SwapCompleted},
		{models.SwapMatched, models.SwapFeePaid},
		{models.SwapFeePaid, models.SwapCompleted},
		{models.SwapFeePaid, models.SwapCancelled},
		{models.SwapLegAComplete, models.SwapLegBComplete},
		{models.SwapLegAComplete, models.SwapCancelled},
		{models.SwapCompleted, models.SwapDisputed},
		{models.SwapDisputed, models.SwapCancelled},
	}
	for _, edge := range illegal {
		assert.False(t, CanTransition(edge[0], edge[1]), "%s -> %s should be illegal", edge[0], edge[1])
	}
}

func TestTerminalStatusesAreAbsorbing(t *testing.T) {
	all := []string{
		models.SwapPending, models.SwapMatched, models.SwapFeePending,
		models.SwapFeePaid, models.SwapLegAComplete, models.SwapLegBComplete,
		models.SwapCompleted, models.SwapDisputed, models.SwapFailed,
		models.SwapCancelled, models.SwapRefunded,
	}
	for _, status := range all {
		if !IsTerminal(status) {
			continue
		}
		for _, next := range all {
			assert.False(t, CanTransition(status, next), "terminal %s must have no outgoing edge", status)
		}
	}
}

func TestGhostableAndAutoCancellableAreDisjoint(t *testing.T) {
	all := []string{
		models.SwapPending, models.SwapMatched, models.SwapFeePending,
		models.SwapFeePaid, models.SwapLegAComplete, models.SwapLegBComplete,
		models.SwapCompleted, models.SwapDisputed, models.SwapFailed,
		models.SwapCancelled, models.SwapRefunded,
	}
	for _, status := range all {
		assert.False(t, Ghostable(status) && AutoCancellable(status), "%s in both sets", status)
	}

	assert.True(t, Ghostable(models.SwapFeePaid))
	assert.True(t, Ghostable(models.SwapLegAComplete))
	assert.True(t, Ghostable(models.SwapLegBComplete))
	assert.True(t, AutoCancellable(models.SwapPending))
	assert.True(t, AutoCancellable(models.SwapMatched))
	assert.True(t, AutoCancellable(models.SwapFeePending))
	assert.False(t, Ghostable(models.SwapDisputed))
	assert.False(t, AutoCancellable(models.SwapDisputed))
}

func TestGhosters(t *testing.T) {
	now := time.Now()

	t.Run("both legs incomplete at fee_paid", func(t *testing.T) {
		s := &models.Swap{UserAID: "usr-a", UserBID: "usr-b", Status: models.SwapFeePaid}
		assert.Equal(t, []string{"usr-a", "usr-b"}, Ghosters(s))
	})

	t.Run("only the unfinished side at leg_a_complete", func(t *testing.T) {
		s := &models.Swap{
			UserAID: "usr-a", UserBID: "usr-b",
			Status: models.SwapLegAComplete, CompletedAAt: &now,
		}
		assert.Equal(t, []string{"usr-b"}, Ghosters(s))
	})

	t.Run("only the unfinished side at leg_b_complete", func(t *testing.T) {
		s := &models.Swap{
			UserAID: "usr-a", UserBID: "usr-b",
			Status: models.SwapLegBComplete, CompletedBAt: &now,
		}
		assert.Equal(t, []string{"usr-a"}, Ghosters(s))
	})
}

func TestLegCompleteStatus(t *testing.T) {
	assert.Equal(t, models.SwapLegAComplete, LegCompleteStatus(true))
	assert.Equal(t, models.SwapLegBComplete, LegCompleteStatus(false))
}
