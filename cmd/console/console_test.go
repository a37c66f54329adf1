package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"haulage/internal/config"
	"haulage/internal/domain"
	"haulage/internal/server"
	"haulage/internal/session"
	"haulage/internal/testutil"
)

const bookingForm = `{
	"bookedCompanyName": "Acme Traders",
	"bookedCustomerName": "Ravi",
	"bookedPhoneNumber": "9876543210",
	"pickups": [{"companyName": "Acme Traders", "contactName": "Ravi", "contactPhone": "9876543210",
		"address": "12 Dock Rd", "location": "Chennai", "pincode": "600001"}],
	"deliveries": [{"companyName": "Globex", "contactName": "Anu", "contactPhone": "9123456780",
		"address": "4 Market St", "location": "Pune", "pincode": "411001"}]
}`

type consoleHarness struct {
	cfg        *config.Config
	sessionDir string
}

func newHarness(t *testing.T) *consoleHarness {
	t.Helper()
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:         "console-secret",
			TokenTTL:          time.Hour,
			BootstrapEmail:    "root@haulage.test",
			BootstrapPassword: "root-password",
			BootstrapName:     "Root",
		},
		Order: config.OrderConfig{MaxRetryAttempts: 3},
	}
	handler, err := server.NewHandler(context.Background(), testutil.SetupTestDB(t), cfg, zap.NewNop())
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.Client = config.ClientConfig{APIBaseURL: srv.URL, Timeout: 5 * time.Second}
	return &consoleHarness{cfg: cfg, sessionDir: filepath.Join(t.TempDir(), "session")}
}

// run executes one console invocation, reopening the session directory the
// way separate processes would.
func (h *consoleHarness) run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	a := newApp(h.cfg, zap.NewNop(), func() (*session.Store, error) {
		return session.Open(session.Config{Path: h.sessionDir}, zap.NewNop())
	})
	var out, errOut bytes.Buffer
	a.errOut = &errOut

	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err = cmd.Execute()
	a.teardown()
	return out.String(), errOut.String(), err
}

func TestConsole_CustomerBooksAnOrder(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run(t, "", "signup", "--name", "Ravi", "--email", "ravi@acme.test", "--password", "customer-pass")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, Ravi")

	out, _, err = h.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "role:    CUSTOMER")

	out, _, err = h.run(t, "", "sections")
	require.NoError(t, err)
	assert.Equal(t, "create-order\nmy-orders\nprofile\n", out)

	out, _, err = h.run(t, bookingForm, "orders", "create")
	require.NoError(t, err)
	assert.Contains(t, out, "status Pending")

	out, _, err = h.run(t, "", "orders", "list", "--status", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme Traders")
	assert.Contains(t, out, "Chennai -> Pune")

	out, _, err = h.run(t, "", "orders", "list", "--status", "confirmed")
	require.NoError(t, err)
	assert.NotContains(t, out, "Acme Traders")

	_, _, err = h.run(t, "", "orders", "list", "--status", "shipped")
	assert.ErrorContains(t, err, `unknown status "shipped"`)

	_, _, err = h.run(t, "", "logout")
	require.NoError(t, err)
	_, _, err = h.run(t, "", "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestConsole_AdminMovesOrderAndSessionRejection(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run(t, "", "login", "--email", "root@haulage.test", "--password", "root-password")
	require.NoError(t, err)

	out, _, err := h.run(t, bookingForm, "--json", "orders", "create")
	require.NoError(t, err)
	var id string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), `"id":`) {
			id = strings.Trim(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), `"id":`)), `",`)
			break
		}
	}
	require.NotEmpty(t, id, out)

	_, _, err = h.run(t, "", "orders", "update", id, "--action", "confirm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to update order")

	out, _, err = h.run(t, "", "orders", "update", id, "--action", "confirm", "--rate", "5000")
	require.NoError(t, err)
	assert.Contains(t, out, "is Confirmed")

	out, _, err = h.run(t, "", "orders", "get", id)
	require.NoError(t, err)
	assert.Contains(t, out, "5000.00")
	assert.Contains(t, out, "pickup")

	_, _, err = h.run(t, "", "orders", "update", id, "--action", "approve", "--status", "APPROVED")
	assert.Error(t, err, "action and status are exclusive")

	_, _, err = h.run(t, "", "session", "set", session.KeyToken, "not-a-token")
	require.NoError(t, err)

	_, stderr, err := h.run(t, "", "orders", "delete", id)
	require.Error(t, err)
	assert.Contains(t, stderr, "Run `login` to sign in again")

	_, _, err = h.run(t, "", "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn, "a rejected session is dropped")
}

func TestParseView(t *testing.T) {
	view, err := parseView([]string{"review", " Picked Up"}, "acme")
	require.NoError(t, err)
	assert.Len(t, view.Statuses, 2)
	assert.Equal(t, "acme", view.Search)

	_, err = parseView([]string{"lost"}, "")
	assert.Error(t, err)
}

func TestUpdateFlags_OnlySetFlagsAreSent(t *testing.T) {
	var f updateFlags
	cmd := &cobra.Command{Use: "update"}
	f.bind(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--action", "Assign", "--assistant", "asst-1"}))

	req := f.request(cmd)
	require.NotNil(t, req.Action)
	assert.Equal(t, "assign", *req.Action)
	require.NotNil(t, req.AssistantID)
	assert.Equal(t, "asst-1", *req.AssistantID)
	assert.Nil(t, req.Rate)
	assert.Nil(t, req.BranchID)
	assert.Nil(t, req.Documents)
}

func TestPrintOrders_StatusLabel(t *testing.T) {
	var buf bytes.Buffer
	orders := []domain.Order{{ID: "o-1", Status: domain.StatusPickedUp, BookedCompanyName: "Acme"}}
	require.NoError(t, printOrders(&buf, orders, func(*domain.Order) []string { return nil }))
	assert.Contains(t, buf.String(), "Picked Up")
	assert.NotContains(t, buf.String(), "PICKED_UP")
}
