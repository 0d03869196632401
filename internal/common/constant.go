package common

// Durable store keys owned by the session store. They are fixed and
// user-independent; recipient keys are namespaced by user id instead.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUserData     = "userData"
)

// RecipientsKeyPrefix prefixes the per-user recipient list key.
const RecipientsKeyPrefix = "@recipients:"

// CloseCredentialRejected is the websocket close code the backend uses
// when the access token presented at connect time is no longer valid.
const CloseCredentialRejected = 4001

// RecipientsSeededKeyPrefix prefixes the marker written once a user's
// recipient list has been seeded, so a later clear does not reseed it.
const RecipientsSeededKeyPrefix = "@recipients-seeded:"
