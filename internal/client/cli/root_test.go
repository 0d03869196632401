package cli

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/mobank/internal/client/models"
	"github.com/stretchr/testify/assert"
)

func TestGetStatus(t *testing.T) {
	ta := newTestApp()
	assert.Equal(t, "(offline)", ta.getStatus())

	ta.auth.current = &models.Session{Profile: models.Profile{Username: "alice"}}
	ta.setMode("connected")
	assert.Equal(t, "(alice connected)", ta.getStatus())
}

func TestRoot_ResumesPersistedSession(t *testing.T) {
	out := captureOutput(t)
	ta := newTestApp("whoami", "exit")
	ta.auth.resume = &models.Session{UserID: "42", Profile: models.Profile{FirstName: "Alice"}}

	ta.Root(context.Background())

	assert.Contains(t, out.String(), "Welcome back, Alice")
	assert.Contains(t, out.String(), "User ID:  42")
	assert.Empty(t, ta.auth.loginID)
}

func TestRoot_PromptsLoginWithoutSession(t *testing.T) {
	out := captureOutput(t)
	stubPassword(t, "secret")
	ta := newTestApp("alice", "exit")

	ta.Root(context.Background())

	assert.Equal(t, "alice", ta.auth.loginID)
	assert.Contains(t, out.String(), "Logged in as Alice Doe")
	assert.Contains(t, out.String(), "Bye!")
}
