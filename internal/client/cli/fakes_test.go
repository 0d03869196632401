package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/mobank/internal/client/balance"
	"github.com/dmitrijs2005/mobank/internal/client/models"
	"github.com/dmitrijs2005/mobank/internal/client/services"
	"github.com/dmitrijs2005/mobank/internal/common"
	"github.com/dmitrijs2005/mobank/internal/logging"
	"github.com/shopspring/decimal"
)

type fakeAuth struct {
	current  *models.Session
	resume   *models.Session
	loginErr error

	loginID, password string
	logouts           int
}

func (f *fakeAuth) Login(_ context.Context, loginID, password string) (*models.Session, error) {
	f.loginID, f.password = loginID, password
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.current = &models.Session{
		UserID: "42", AccessToken: "a", RefreshToken: "r",
		Profile: models.Profile{UserID: "42", Username: loginID, FirstName: "Alice", LastName: "Doe"},
	}
	return f.current, nil
}

func (f *fakeAuth) Resume(context.Context) (*models.Session, error) {
	f.current = f.resume
	return f.resume, nil
}

func (f *fakeAuth) Logout(context.Context) {
	f.logouts++
	f.current = nil
}

func (f *fakeAuth) Current() *models.Session { return f.current }

type fakeBalances struct {
	value string
	err   error
}

func (f *fakeBalances) Refresh(context.Context) (balance.Snapshot, error) {
	if f.err != nil {
		return balance.Snapshot{}, f.err
	}
	return balance.Snapshot{Value: decimal.RequireFromString(f.value), Source: balance.SourceProfile, Known: true}, nil
}

func (f *fakeBalances) Current() balance.Snapshot { return balance.Snapshot{} }

func (f *fakeBalances) Watch(context.Context) (*services.Subscription, error) {
	return nil, common.ErrNetworkUnavailable
}

func (f *fakeBalances) Stop() {}

type fakeRecipients struct {
	list     []models.Recipient
	added    models.Recipient
	image    string
	deleted  []int
	cleared  bool
	reseeded bool
}

func (f *fakeRecipients) List(context.Context) ([]models.Recipient, error) { return f.list, nil }

func (f *fakeRecipients) Add(_ context.Context, r models.Recipient, imagePath string) (models.Recipient, error) {
	r.RecipientID = len(f.list) + 1
	f.added, f.image = r, imagePath
	f.list = append(f.list, r)
	return r, nil
}

func (f *fakeRecipients) Delete(_ context.Context, ids ...int) ([]models.Recipient, error) {
	f.deleted = ids
	return f.list[:0], nil
}

func (f *fakeRecipients) Clear(context.Context) error {
	f.cleared = true
	f.list = nil
	return nil
}

func (f *fakeRecipients) Reset(context.Context) ([]models.Recipient, error) { return f.list, nil }

func (f *fakeRecipients) Reseed(context.Context) ([]models.Recipient, error) {
	f.reseeded = true
	return f.list, nil
}

// captureOutput swaps printlnFn for a goroutine-safe buffer.
type output struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (o *output) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.String()
}

func captureOutput(t *testing.T) *output {
	t.Helper()
	o := &output{}
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		o.mu.Lock()
		defer o.mu.Unlock()
		return fmt.Fprintln(&o.buf, a...)
	}
	t.Cleanup(func() { printlnFn = orig })
	return o
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

type testApp struct {
	*App
	auth       *fakeAuth
	balances   *fakeBalances
	recipients *fakeRecipients
}

func newTestApp(input ...string) *testApp {
	ta := &testApp{auth: &fakeAuth{}, balances: &fakeBalances{value: "0"}, recipients: &fakeRecipients{}}
	in := strings.Join(input, "\n")
	if len(input) > 0 {
		in += "\n"
	}
	ta.App = newApp(ta.auth, ta.balances, ta.recipients, strings.NewReader(in), io.Discard, logging.Nop())
	return ta
}
