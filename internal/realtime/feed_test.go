// internal/realtime/feed_test.go
package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(companyID uuid.UUID) Event {
	return Event{
		NotificationID: uuid.New(),
		OrderID:        uuid.New(),
		CompanyID:      companyID,
		Type:           "new_order",
		CreatedAt:      time.Now().UTC(),
	}
}

func TestPublishReachesEveryCompanySession(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	companyID := uuid.New()
	first := hub.Subscribe(companyID, "desktop")
	second := hub.Subscribe(companyID, "mobile")
	other := hub.Subscribe(uuid.New(), "desktop")

	ev := event(companyID)
	hub.Publish(ev)

	assert.Equal(t, ev.NotificationID, (<-first.C).NotificationID)
	assert.Equal(t, ev.NotificationID, (<-second.C).NotificationID)

	select {
	case <-other.C:
		t.Fatal("event leaked to another company's session")
	default:
	}
}

func TestResubscribeReplacesSameKey(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	companyID := uuid.New()
	old := hub.Subscribe(companyID, "desktop")
	replacement := hub.Subscribe(companyID, "desktop")

	// The replaced session channel is closed.
	_, open := <-old.C
	assert.False(t, open)

	assert.Equal(t, 1, hub.SessionCount())

	ev := event(companyID)
	hub.Publish(ev)
	assert.Equal(t, ev.NotificationID, (<-replacement.C).NotificationID)
}

func TestUnsubscribeOldSessionKeepsReplacement(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	companyID := uuid.New()
	old := hub.Subscribe(companyID, "desktop")
	replacement := hub.Subscribe(companyID, "desktop")

	// The old stream tears down after being replaced; the replacement
	// must survive it.
	hub.Unsubscribe(old)
	assert.Equal(t, 1, hub.SessionCount())

	ev := event(companyID)
	hub.Publish(ev)
	assert.Equal(t, ev.NotificationID, (<-replacement.C).NotificationID)
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	companyID := uuid.New()
	session := hub.Subscribe(companyID, "slow")

	for i := 0; i < sessionBufferSize+10; i++ {
		hub.Publish(event(companyID))
	}

	// The buffer holds exactly its capacity; the overflow was dropped
	// without blocking the publisher.
	drained := 0
	for {
		select {
		case <-session.C:
			drained++
			continue
		default:
		}
		break
	}
	assert.Equal(t, sessionBufferSize, drained)
}

func TestCloseShutsDownSessions(t *testing.T) {
	hub := NewHub()

	companyID := uuid.New()
	session := hub.Subscribe(companyID, "desktop")

	hub.Close()

	_, open := <-session.C
	assert.False(t, open)
	assert.Equal(t, 0, hub.SessionCount())

	// Late subscribers get a pre-closed session instead of a hang.
	late := hub.Subscribe(companyID, "late")
	_, open = <-late.C
	require.False(t, open)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	session := hub.Subscribe(uuid.New(), "desktop")
	hub.Unsubscribe(session)
	hub.Unsubscribe(session)

	assert.Equal(t, 0, hub.SessionCount())
}
