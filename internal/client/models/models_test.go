package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalNumberOrString(t *testing.T) {
	var p Profile
	require.NoError(t, json.Unmarshal([]byte(`{"UserID":42,"Username":"alice"}`), &p))
	assert.Equal(t, ID("42"), p.UserID)

	require.NoError(t, json.Unmarshal([]byte(`{"UserID":"u-7"}`), &p))
	assert.Equal(t, ID("u-7"), p.UserID)

	require.NoError(t, json.Unmarshal([]byte(`{"UserID":null}`), &p))
	assert.Equal(t, ID(""), p.UserID)

	assert.Error(t, json.Unmarshal([]byte(`{"UserID":{}}`), &p))
}

func TestProfile_BalanceOptional(t *testing.T) {
	var p Profile
	require.NoError(t, json.Unmarshal([]byte(`{"UserID":"1","Balance":"95.50"}`), &p))
	require.NotNil(t, p.Balance)
	assert.True(t, p.Balance.Equal(decimal.RequireFromString("95.5")))

	b, err := json.Marshal(Profile{UserID: "1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"UserID":"1"}`, string(b))
}

func TestProfile_DisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", Profile{FirstName: "Ada", LastName: "Lovelace", Username: "ada"}.DisplayName())
	assert.Equal(t, "Ada", Profile{FirstName: "Ada", Username: "ada"}.DisplayName())
	assert.Equal(t, "ada", Profile{Username: "ada"}.DisplayName())
}

func TestSession_Valid(t *testing.T) {
	var nilSession *Session
	assert.False(t, nilSession.Valid())
	assert.False(t, (&Session{AccessToken: "t", RefreshToken: "r"}).Valid())
	assert.False(t, (&Session{UserID: "42", AccessToken: "t"}).Valid())
	assert.True(t, (&Session{UserID: "42", AccessToken: "t", RefreshToken: "r"}).Valid())
}

func TestSession_AccessExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.False(t, (&Session{}).AccessExpired(now))
	assert.False(t, (&Session{AccessExpiresAt: now.Add(time.Minute)}).AccessExpired(now))
	assert.True(t, (&Session{AccessExpiresAt: now}).AccessExpired(now))
}

func TestRecipient_Actionable(t *testing.T) {
	assert.False(t, Recipient{Name: "x"}.Actionable())
	assert.False(t, Recipient{Name: "x", Email: "  "}.Actionable())
	assert.True(t, Recipient{Name: "x", CNIC: "35202-1234567-1"}.Actionable())
	assert.Equal(t, "a@b.c", Recipient{Email: "a@b.c", CNIC: "1"}.Contact())
}

func TestRecipient_JSONOmitsEmptyContacts(t *testing.T) {
	b, err := json.Marshal(Recipient{RecipientID: 1, Name: "Charles Smith", Email: "charles.s@example.com"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"recipientId":1,"name":"Charles Smith","email":"charles.s@example.com"}`, string(b))
}

func TestConnState_String(t *testing.T) {
	assert.Equal(t, "refreshing_credentials", StateRefreshingCredentials.String())
	assert.Equal(t, "unknown", ConnState(99).String())
	assert.True(t, EventDepositCompleted.CarriesBalance())
	assert.False(t, EventStateChanged.CarriesBalance())
}
