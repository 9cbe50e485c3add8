package steps

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/shopflow/internal/client"
	"github.com/alexisbeaulieu97/shopflow/internal/config"
	"github.com/alexisbeaulieu97/shopflow/internal/logger"
	"github.com/alexisbeaulieu97/shopflow/internal/model"
	"github.com/alexisbeaulieu97/shopflow/internal/scenario"
	"github.com/alexisbeaulieu97/shopflow/internal/testutil/fakeshop"
)

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *sleepRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.delays)
}

func newEnv(t *testing.T, baseURL string) (*Env, *sleepRecorder) {
	t.Helper()

	cfg := fakeshop.Config(baseURL)
	env := NewEnv(scenario.New(cfg), client.New(client.Options{Timeout: 5 * time.Second}), logger.Nop())
	recorder := &sleepRecorder{}
	env.Retry = RetryPolicy{Attempts: 3, Delay: time.Second, Sleep: recorder.sleep}
	return env, recorder
}

func runAll(ctx context.Context, env *Env) map[string]model.Outcome {
	outcomes := make(map[string]model.Outcome)
	for _, step := range Registry() {
		outcomes[step.Name] = step.Run(ctx, env)
	}
	return outcomes
}

func runThrough(ctx context.Context, env *Env, last string) map[string]model.Outcome {
	outcomes := make(map[string]model.Outcome)
	for _, step := range Registry() {
		outcomes[step.Name] = step.Run(ctx, env)
		if step.Name == last {
			break
		}
	}
	return outcomes
}

// unreachable fails any step that reaches the network.
type unreachable struct {
	calls int
}

func (u *unreachable) Do(context.Context, client.Request) (*client.Response, error) {
	u.calls++
	return nil, &client.TransportError{Method: "GET", URL: "http://unreachable", Err: net.ErrClosed}
}

func TestEveryStepSkipsWithoutPreconditions(t *testing.T) {
	t.Parallel()

	unconditional := map[string]bool{
		"Auth public key":              true,
		"Auth login admin":             true,
		"Auth login/register customer": true,
	}

	for _, step := range Registry() {
		if unconditional[step.Name] {
			continue
		}
		t.Run(step.Name, func(t *testing.T) {
			t.Parallel()

			httpClient := &unreachable{}
			env := NewEnv(scenario.New(config.Default()), httpClient, logger.Nop())

			var outcome model.Outcome
			require.NotPanics(t, func() {
				outcome = step.Run(context.Background(), env)
			})
			require.Equal(t, model.StatusSkipped, outcome.Status, outcome.Detail)
			require.True(t, strings.HasPrefix(outcome.Detail, "missing "), outcome.Detail)
			require.Zero(t, httpClient.calls)
			require.Empty(t, env.State.OrderID)
		})
	}
}

func TestRegistryOrder(t *testing.T) {
	t.Parallel()

	names := Names()
	require.Len(t, names, 28)
	require.Equal(t, "Auth public key", names[0])
	require.Equal(t, "Order create", names[13])
	require.Equal(t, "Shipping tracking after update", names[len(names)-1])

	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}
	require.Less(t, index["Auth public key"], index["Auth token signature"])
	require.Less(t, index["Payment create"], index["Inventory reservation"])
	require.Less(t, index["Inventory reservation"], index["Shipping create"])
}

func TestFullWorkflowFreshCustomer(t *testing.T) {
	t.Parallel()

	shop := fakeshop.New(fakeshop.Options{})
	env, recorder := newEnv(t, shop.Start(t))

	outcomes := runAll(context.Background(), env)
	for name, outcome := range outcomes {
		assert.Equal(t, model.StatusOK, outcome.Status, "%s: %s", name, outcome.Detail)
	}

	s := env.State
	require.NotEmpty(t, s.CustomerToken)
	require.Equal(t, "registered userId "+s.CustomerUserID, outcomes["Auth login/register customer"].Detail)
	require.Equal(t, 1, shop.Calls(fakeshop.OpAuthRegister))
	require.Equal(t, SKUFor(s.ProductID), s.SKU)
	require.False(t, s.OrderIDSynthetic)
	require.NotEmpty(t, s.ReservationID)
	require.NotEmpty(t, s.ShipmentID)
	require.Equal(t, "status PARTIALLY_REFUNDED, 3 transactions", outcomes["Payment get"].Detail)
	require.Zero(t, recorder.count())
}

func TestOrderCreateRetriesUntilDeclineClears(t *testing.T) {
	t.Parallel()

	shop := fakeshop.New(fakeshop.Options{})
	shop.Decline(fakeshop.OpOrderCreate, 2)
	env, recorder := newEnv(t, shop.Start(t))

	var declines []int
	env.OnDecline = func(op string, attempt int) {
		require.Equal(t, "order_create", op)
		declines = append(declines, attempt)
	}

	outcomes := runThrough(context.Background(), env, "Order create")
	outcome := outcomes["Order create"]
	require.Equal(t, model.StatusOK, outcome.Status, outcome.Detail)
	require.Equal(t, "created "+env.State.OrderID, outcome.Detail)
	require.Equal(t, 3, shop.Calls(fakeshop.OpOrderCreate))
	require.Equal(t, []int{1, 2}, declines)
	require.Equal(t, 2, recorder.count())
}

func TestOrderCreateFailsAfterPersistentDecline(t *testing.T) {
	t.Parallel()

	shop := fakeshop.New(fakeshop.Options{})
	shop.Decline(fakeshop.OpOrderCreate, 3)
	env, recorder := newEnv(t, shop.Start(t))

	outcomes := runAll(context.Background(), env)
	require.Equal(t, model.Fail("payment failed after retries"), outcomes["Order create"])
	require.Equal(t, 3, shop.Calls(fakeshop.OpOrderCreate))
	require.Equal(t, 2, recorder.count(), "delay runs only between attempts")

	require.Equal(t, model.Skip("missing order id"), outcomes["Order get"])
	require.Equal(t, model.StatusOK, outcomes["Payment create"].Status, outcomes["Payment create"].Detail)
	require.True(t, env.State.OrderIDSynthetic)
	require.Equal(t, model.StatusOK, outcomes["Shipping get by order"].Status, outcomes["Shipping get by order"].Detail)
}

func TestPaymentAuthorizeReusesIdempotencyKey(t *testing.T) {
	t.Parallel()

	shop := fakeshop.New(fakeshop.Options{})
	shop.Decline(fakeshop.OpAuthorize, 1)
	env, recorder := newEnv(t, shop.Start(t))

	outcomes := runThrough(context.Background(), env, "Payment authorize")
	require.Equal(t, model.Ok("authorized"), outcomes["Payment authorize"])
	require.Equal(t, 2, shop.Calls(fakeshop.OpAuthorize))

	keys := shop.IdempotencyKeys(fakeshop.OpAuthorize)
	require.Len(t, keys, 1, "the declined attempt is answered before the body is read")
	require.True(t, strings.HasPrefix(keys[0], "auth-"))
	require.Equal(t, 1, recorder.count())
}

func TestPaymentRetryKeyStableAcrossAttempts(t *testing.T) {
	t.Parallel()

	var keys []string
	httpClient := &scriptedClient{statuses: []int{402, 402, 200}, onRequest: func(req client.Request) {
		keys = append(keys, req.Body.(paymentActionRequest).IdempotencyKey)
	}}
	state := scenario.New(config.Default())
	state.PaymentID = "p-1"
	env := NewEnv(state, httpClient, logger.Nop())
	env.Retry.Sleep = func(ctx context.Context, _ time.Duration) error { return nil }

	require.Equal(t, model.Ok("refunded"), PaymentRefund(context.Background(), env))
	require.Len(t, keys, 3)
	require.Equal(t, keys[0], keys[1])
	require.Equal(t, keys[1], keys[2])
	require.True(t, strings.HasPrefix(keys[0], "refund-"))
}

func TestRetryStopsOnOtherStatus(t *testing.T) {
	t.Parallel()

	shop := fakeshop.New(fakeshop.Options{})
	shop.Respond(fakeshop.OpCapture, http.StatusInternalServerError)
	env, recorder := newEnv(t, shop.Start(t))

	outcomes := runThrough(context.Background(), env, "Payment capture")
	outcome := outcomes["Payment capture"]
	require.Equal(t, model.StatusFailed, outcome.Status)
	require.True(t, strings.HasPrefix(outcome.Detail, "unexpected status 500, expected [200]: injected fault (correlationId: "), outcome.Detail)
	require.Equal(t, 1, shop.Calls(fakeshop.OpCapture))
	require.Zero(t, recorder.count())
}

func TestRetryHonoursCancellation(t *testing.T) {
	t.Parallel()

	state := scenario.New(config.Default())
	state.PaymentID = "p-1"
	env := NewEnv(state, &scriptedClient{statuses: []int{402, 402, 402}}, logger.Nop())
	env.Retry.Delay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := PaymentAuthorize(ctx, env)
	require.Equal(t, model.Fail("unexpected error: context canceled"), outcome)
}

func TestShippingAdminUpdateVisibleToCustomer(t *testing.T) {
	t.Parallel()

	shop := fakeshop.New(fakeshop.Options{})
	env, _ := newEnv(t, shop.Start(t))

	outcomes := runAll(context.Background(), env)
	require.Equal(t, model.Ok("status updated"), outcomes["Shipping admin update"])
	require.Equal(t, model.Ok("status IN_TRANSIT, 2 tracking events"), outcomes["Shipping tracking after update"])
}

func TestFindOrCreateIsIdempotentAcrossRuns(t *testing.T) {
	t.Parallel()

	shop := fakeshop.New(fakeshop.Options{})
	baseURL := shop.Start(t)

	first, _ := newEnv(t, baseURL)
	firstOutcomes := runAll(context.Background(), first)
	countsAfterFirst := shop.Counts()

	second, _ := newEnv(t, baseURL)
	secondOutcomes := runAll(context.Background(), second)

	require.Equal(t, first.State.CategoryID, second.State.CategoryID)
	require.Equal(t, first.State.ProductID, second.State.ProductID)
	require.Equal(t, first.State.ShippingAddressID, second.State.ShippingAddressID)
	require.Equal(t, first.State.BillingAddressID, second.State.BillingAddressID)
	require.Equal(t, first.State.CustomerUserID, second.State.CustomerUserID)
	require.Equal(t, countsAfterFirst, shop.Counts())

	require.Equal(t, "created id "+first.State.CategoryID, firstOutcomes["Catalog category"].Detail)
	require.Equal(t, "existing id "+first.State.CategoryID, secondOutcomes["Catalog category"].Detail)
	require.Equal(t, "login ok userId "+first.State.CustomerUserID, secondOutcomes["Auth login/register customer"].Detail)
	require.Equal(t, "updated item "+second.State.CartItemID, secondOutcomes["Cart add/update"].Detail)
	require.Equal(t, model.StatusOK, secondOutcomes["Inventory stock"].Status, "existing stock item is accepted")

	for name, outcome := range secondOutcomes {
		assert.Equal(t, model.StatusOK, outcome.Status, "%s: %s", name, outcome.Detail)
	}
}

func TestCustomerRegisterConflictFallsBackToLogin(t *testing.T) {
	t.Parallel()

	shop := fakeshop.New(fakeshop.Options{})
	shop.ConflictOnRegister()
	env, _ := newEnv(t, shop.Start(t))

	runThrough(context.Background(), env, "Auth login admin")
	adminLogins := shop.Calls(fakeshop.OpAuthLogin)

	outcome := AuthLoginOrRegisterCustomer(context.Background(), env)
	require.Equal(t, model.StatusOK, outcome.Status, outcome.Detail)
	require.Equal(t, "login after conflict userId "+env.State.CustomerUserID, outcome.Detail)
	require.Equal(t, 2, shop.Calls(fakeshop.OpAuthLogin)-adminLogins, "login, register conflict, login again")
	require.Equal(t, 1, shop.Calls(fakeshop.OpAuthRegister))
}

func TestExistingCustomerLogsIn(t *testing.T) {
	t.Parallel()

	shop := fakeshop.New(fakeshop.Options{})
	userID := shop.SeedCustomer(config.DefaultCustomerEmail, config.DefaultCustomerPassword)
	env, _ := newEnv(t, shop.Start(t))

	outcomes := runThrough(context.Background(), env, "Auth login/register customer")
	require.Equal(t, model.Ok("login ok userId "+userID), outcomes["Auth login/register customer"])
	require.Zero(t, shop.Calls(fakeshop.OpAuthRegister))
}

func TestCustomerLoginUnexpectedStatus(t *testing.T) {
	t.Parallel()

	shop := fakeshop.New(fakeshop.Options{})
	shop.Respond(fakeshop.OpAuthLogin, http.StatusOK, http.StatusServiceUnavailable)
	env, _ := newEnv(t, shop.Start(t))

	outcomes := runThrough(context.Background(), env, "Auth login/register customer")
	require.Equal(t, model.Fail("missing field: accessToken"), outcomes["Auth login admin"])
	require.Equal(t, model.Fail("login failed with status 503"), outcomes["Auth login/register customer"])
	require.Empty(t, env.State.CustomerToken)
}

func TestTokenSignatureRejectsForeignKey(t *testing.T) {
	t.Parallel()

	shop := fakeshop.New(fakeshop.Options{})
	env, _ := newEnv(t, shop.Start(t))
	runThrough(context.Background(), env, "Auth validate")

	forged, err := fakeshop.ForgeToken(env.State.CustomerUserID)
	require.NoError(t, err)
	env.State.CustomerToken = forged

	outcome := AuthTokenSignature(context.Background(), env)
	require.Equal(t, model.StatusFailed, outcome.Status)
	require.True(t, strings.HasPrefix(outcome.Detail, "token rejected: "), outcome.Detail)
}

func TestTokenSignatureChecksSubject(t *testing.T) {
	t.Parallel()

	shop := fakeshop.New(fakeshop.Options{})
	env, _ := newEnv(t, shop.Start(t))
	runThrough(context.Background(), env, "Auth validate")

	token, err := shop.IssueToken("someone-else")
	require.NoError(t, err)
	env.State.CustomerToken = token

	outcome := AuthTokenSignature(context.Background(), env)
	require.Equal(t, model.Failf("token subject %q does not match user %q", "someone-else", env.State.CustomerUserID), outcome)

	env.State.PublicKeyPEM = "not a key"
	outcome = AuthTokenSignature(context.Background(), env)
	require.True(t, strings.HasPrefix(outcome.Detail, "invalid public key: "), outcome.Detail)
}

func TestTokenSignatureSkipsWithoutCustomerSession(t *testing.T) {
	t.Parallel()

	httpClient := &unreachable{}
	env := NewEnv(scenario.New(config.Default()), httpClient, logger.Nop())
	env.State.PublicKeyPEM = "-----BEGIN PUBLIC KEY-----"

	require.Equal(t, model.Skip("missing customer session"), AuthTokenSignature(context.Background(), env))
	require.Zero(t, httpClient.calls)
}

func TestCategoryConflictWithoutMatchFails(t *testing.T) {
	t.Parallel()

	shop := fakeshop.New(fakeshop.Options{})
	shop.Respond(fakeshop.OpCategoryCreate, http.StatusConflict)
	env, _ := newEnv(t, shop.Start(t))

	outcomes := runThrough(context.Background(), env, "Catalog product")
	outcome := outcomes["Catalog category"]
	require.Equal(t, model.StatusFailed, outcome.Status)
	require.True(t, strings.HasPrefix(outcome.Detail, "unexpected status 409, expected [200, 201]"), outcome.Detail)
	require.Equal(t, model.Skip("missing admin token or category"), outcomes["Catalog product"])
}

func TestCategoryConflictResolvedByLookup(t *testing.T) {
	t.Parallel()

	shop := fakeshop.New(fakeshop.Options{})
	shop.ConflictOnCategoryCreate()
	env, _ := newEnv(t, shop.Start(t))

	outcomes := runThrough(context.Background(), env, "Catalog product")
	categoryID := env.State.CategoryID
	require.NotEmpty(t, categoryID)
	require.Equal(t, model.Ok("existing after conflict id "+categoryID), outcomes["Catalog category"])
	require.Equal(t, 1, shop.Calls(fakeshop.OpCategoryCreate))
	require.Equal(t, model.StatusOK, outcomes["Catalog product"].Status, outcomes["Catalog product"].Detail)
}

func TestBestEffortDefaultAddressFailureIsTolerated(t *testing.T) {
	t.Parallel()

	shop := fakeshop.New(fakeshop.Options{})
	shop.Respond(fakeshop.OpDefaultShipping, http.StatusInternalServerError)
	env, _ := newEnv(t, shop.Start(t))

	outcomes := runThrough(context.Background(), env, "User addresses")
	require.Equal(t, model.StatusOK, outcomes["User addresses"].Status, outcomes["User addresses"].Detail)
	require.Equal(t, 1, shop.Calls(fakeshop.OpDefaultShipping))
}

func TestTransportErrorIsUnexpected(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := "http://" + listener.Addr().String()
	require.NoError(t, listener.Close())

	env, _ := newEnv(t, addr)
	outcome := AuthPublicKey(context.Background(), env)
	require.Equal(t, model.StatusFailed, outcome.Status)
	require.True(t, strings.HasPrefix(outcome.Detail, "unexpected error: GET "+addr), outcome.Detail)
}

func TestPlaceholderOrderIDSharedByDownstreamSteps(t *testing.T) {
	t.Parallel()

	state := scenario.New(config.Default())
	state.CustomerUserID = "u-1"
	state.SKU = "PROD-ABCDEF12"
	httpClient := &scriptedClient{statuses: []int{201, 201, 200, 200}, bodies: []client.Body{
		client.ObjectBody(map[string]any{"paymentId": "p-1"}),
		client.ObjectBody(map[string]any{"reservationId": "r-1"}),
	}}
	env := NewEnv(state, httpClient, logger.Nop())
	env.NewID = func() string { return "synthetic-order" }

	require.Equal(t, model.Ok("payment p-1"), PaymentCreate(context.Background(), env))
	require.Equal(t, model.Ok("reservation r-1"), InventoryReservation(context.Background(), env))
	require.Equal(t, "synthetic-order", state.OrderID)
	require.True(t, state.OrderIDSynthetic)
	require.Equal(t, "synthetic-order", httpClient.requests[0].Body.(paymentRequest).OrderID)
	require.Equal(t, "synthetic-order", httpClient.requests[1].Body.(reservationRequest).OrderID)
}

func TestSKUFor(t *testing.T) {
	t.Parallel()

	require.Equal(t, "PROD-3F2504E0", SKUFor("3f2504e0-4f89-11d3-9a0c-0305e82c3301"))
	require.Equal(t, "PROD-AB", SKUFor("ab"))
}

// scriptedClient answers requests with a fixed sequence of statuses and
// bodies, repeating the last status once exhausted.
type scriptedClient struct {
	statuses  []int
	bodies    []client.Body
	requests  []client.Request
	onRequest func(client.Request)
}

func (c *scriptedClient) Do(_ context.Context, req client.Request) (*client.Response, error) {
	n := len(c.requests)
	c.requests = append(c.requests, req)
	if c.onRequest != nil {
		c.onRequest(req)
	}

	status := c.statuses[len(c.statuses)-1]
	if n < len(c.statuses) {
		status = c.statuses[n]
	}
	var body client.Body
	if n < len(c.bodies) {
		body = c.bodies[n]
	}
	return &client.Response{Status: status, Body: body}, nil
}
