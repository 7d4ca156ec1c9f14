package dispatch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferux/pushcenter/internal/fcontext"
	"github.com/ferux/pushcenter/internal/model"
	"github.com/ferux/pushcenter/internal/netstate"
	"github.com/ferux/pushcenter/internal/pubsub"
	"github.com/ferux/pushcenter/internal/registry"
	"github.com/ferux/pushcenter/internal/relay"
	"github.com/ferux/pushcenter/internal/settings"
	"github.com/ferux/pushcenter/internal/state"
	"github.com/ferux/pushcenter/internal/storage"
	ptime "github.com/ferux/pushcenter/internal/time"
)

type delivery struct {
	code, title, content string
	opts                 relay.Options
	requestID, deviceID  string
}

type fakeDeliverer struct {
	mu    sync.Mutex
	calls []delivery
	fail  map[string]error
}

func (f *fakeDeliverer) Deliver(ctx context.Context, code, title, content string, opts relay.Options) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, delivery{
		code: code, title: title, content: content, opts: opts,
		requestID: fcontext.RequestID(ctx), deviceID: fcontext.DeviceID(ctx),
	})

	return f.fail[code]
}

type fixture struct {
	disp     *Dispatcher
	reg      *registry.Registry
	settings *settings.Store
	holder   *state.Holder
	store    storage.Store
	subs     *pubsub.Core
}

var testNow = time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

func seqIDs(prefix string) func() string {
	var n int
	return func() string {
		n++
		return prefix + strconv.Itoa(n)
	}
}

func newFixture(t *testing.T, dl Deliverer, online bool) fixture {
	ctx := context.Background()
	now := func() time.Time { return testNow }

	f := fixture{store: storage.NewMemory(zerolog.Nop()), subs: pubsub.New()}
	f.holder = state.New(ctx, f.store, zerolog.Nop())
	f.reg = registry.New(ctx, f.holder, nil, netstate.Static(true), zerolog.Nop(),
		registry.WithClock(now), registry.WithIDGenerator(seqIDs("dev-")))
	f.settings = settings.New(f.holder, nil, zerolog.Nop())
	f.disp = New(f.holder, dl, f.settings, netstate.Static(online), zerolog.Nop(),
		WithClock(now), WithIDGenerator(seqIDs("id-")), WithPubSub(f.subs))

	return f
}

func (f fixture) add(t *testing.T, code, name string, expire string) model.Device {
	var exp *ptime.Date
	if expire != "" {
		d, err := ptime.ParseDate(expire)
		require.NoError(t, err)
		exp = &d
	}

	d, err := f.reg.Add(context.Background(), code, name, exp)
	require.NoError(t, err)

	return d
}

func TestSendAllFanOut(t *testing.T) {
	a := assert.New(t)
	dl := &fakeDeliverer{}
	f := newFixture(t, dl, true)
	ctx := context.Background()

	phone := f.add(t, "aaaaaaaaaa", "Phone", "")
	f.add(t, "bbbbbbbbbb", "Expired", "2026-01-01")
	tablet := f.add(t, "cccccccccc", "Tablet", "2027-01-01")
	require.NoError(t, f.settings.SetAvatar(ctx, "https://example.com/me.png"))

	res, err := f.disp.Send(ctx, Request{Title: "T", Content: "C", Target: model.TargetAll, Group: "通知"})
	require.NoError(t, err)

	require.Len(t, dl.calls, 2)
	a.Equal("aaaaaaaaaa", dl.calls[0].code)
	a.Equal("cccccccccc", dl.calls[1].code)
	for _, c := range dl.calls {
		a.Equal("T", c.title)
		a.Equal("C", c.content)
		a.Equal(relay.Options{Group: "通知", Icon: "https://example.com/me.png"}, c.opts)
		a.Equal(dl.calls[0].requestID, c.requestID)
		a.NotEmpty(c.requestID)
	}
	a.Equal(phone.ID, dl.calls[0].deviceID)
	a.Equal(tablet.ID, dl.calls[1].deviceID)

	a.True(res.Message.IsSuccess)
	a.Empty(res.Message.ErrorMessage)
	a.Equal("通知", res.Message.MessageGroup)
	a.Equal("https://example.com/me.png", res.Message.AvatarURL)
	a.Empty(res.Message.TargetDeviceID)
	a.Equal(OutcomeSuccess, res.Outcome())
	a.Equal(2, res.Report.TotalCount)
	a.Equal(2, res.Report.SuccessCount)
}

func TestSendPartialFailure(t *testing.T) {
	a := assert.New(t)
	dl := &fakeDeliverer{fail: map[string]error{
		"bbbbbbbbbb": errors.New("HTTP error: status 500"),
		"cccccccccc": errors.New("request timed out after 10s"),
	}}
	f := newFixture(t, dl, true)

	f.add(t, "aaaaaaaaaa", "Phone", "")
	f.add(t, "bbbbbbbbbb", "Tablet", "")
	f.add(t, "cccccccccc", "Watch", "")

	res, err := f.disp.Send(context.Background(), Request{Title: "T", Content: "C", Target: model.TargetAll})
	require.NoError(t, err)

	a.Len(dl.calls, 3, "failure does not short-circuit")
	a.False(res.Message.IsSuccess)
	a.Equal("Tablet: HTTP error: status 500; Watch: request timed out after 10s", res.Message.ErrorMessage)
	a.Equal(OutcomePartial, res.Outcome())
	a.Equal(1, res.Report.SuccessCount)
	a.True(res.Report.Results[0].Success)
	a.Equal("Watch", res.Report.Results[2].DeviceName)
}

func TestSendSingle(t *testing.T) {
	a := assert.New(t)
	dl := &fakeDeliverer{fail: map[string]error{"aaaaaaaaaa": errors.New("unknown error")}}
	f := newFixture(t, dl, true)
	ctx := context.Background()

	phone := f.add(t, "aaaaaaaaaa", "Phone", "")
	f.add(t, "bbbbbbbbbb", "Tablet", "")
	expired := f.add(t, "cccccccccc", "Old", "2020-01-01")

	res, err := f.disp.Send(ctx, Request{Title: "T", Content: "C", Target: model.TargetSingle, TargetDeviceID: phone.ID})
	require.NoError(t, err)
	a.Len(dl.calls, 1)
	a.Equal(phone.ID, res.Message.TargetDeviceID)
	a.Equal("Phone: unknown error", res.Message.ErrorMessage)
	a.Equal(OutcomeFailure, res.Outcome())

	_, err = f.disp.Send(ctx, Request{Title: "T", Content: "C", Target: model.TargetSingle, TargetDeviceID: expired.ID})
	a.Equal(model.ErrNoDevices, err)

	_, err = f.disp.Send(ctx, Request{Title: "T", Content: "C", Target: model.TargetSingle, TargetDeviceID: "missing"})
	a.Equal(model.ErrNoDevices, err)

	_, err = f.disp.Send(ctx, Request{Title: "T", Content: "C", Target: model.TargetSingle})
	a.Equal(model.ErrNoDevices, err)

	a.Len(dl.calls, 1)
	a.Len(f.disp.History(), 1)
}

func TestSendValidation(t *testing.T) {
	tt := []struct {
		name   string
		online bool
		req    Request
		exp    error
	}{
		{"offline", false, Request{Title: "T", Content: "C", Target: model.TargetAll}, model.ErrOffline},
		{"empty title", true, Request{Title: " ", Content: "C", Target: model.TargetAll}, model.ErrEmptyTitle},
		{"empty content", true, Request{Title: "T", Target: model.TargetAll}, model.ErrEmptyContent},
		{"bad target", true, Request{Title: "T", Content: "C", Target: "group"}, model.ErrInvalidTarget},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			dl := &fakeDeliverer{}
			f := newFixture(t, dl, tc.online)
			f.add(t, "aaaaaaaaaa", "Phone", "")

			_, err := f.disp.Send(context.Background(), tc.req)
			assert.Equal(t, tc.exp, err)
			assert.Empty(t, dl.calls)
			assert.Empty(t, f.disp.History())
			assert.Nil(t, f.store.LoadLastTest(context.Background()))
		})
	}
}

func TestSendNoDevices(t *testing.T) {
	dl := &fakeDeliverer{}
	f := newFixture(t, dl, true)
	f.add(t, "aaaaaaaaaa", "Expired", "2026-10-13")

	_, err := f.disp.Send(context.Background(), Request{Title: "T", Content: "C", Target: model.TargetAll})
	assert.Equal(t, model.ErrNoDevices, err)
	assert.True(t, model.IsInput(err))
	assert.Empty(t, f.disp.History())
}

func TestSendRecordsHistory(t *testing.T) {
	a := assert.New(t)
	dl := &fakeDeliverer{}
	f := newFixture(t, dl, true)
	ctx := context.Background()
	f.add(t, "aaaaaaaaaa", "Phone", "")

	var published []Result
	f.subs.Subscribe(pubsub.TopicMessageSent, func(args ...interface{}) {
		published = append(published, args[0].(Result))
	})

	first, err := f.disp.Send(ctx, Request{Title: "first", Content: "C", Target: model.TargetAll})
	require.NoError(t, err)
	second, err := f.disp.Send(ctx, Request{Title: "second", Content: "C", Target: model.TargetAll})
	require.NoError(t, err)

	history := f.disp.History()
	require.Len(t, history, 2)
	a.Equal(second.Message, history[0], "most recent first")
	a.Equal(first.Message, history[1])
	a.Equal(history, f.store.Load(ctx).Messages)

	last := f.store.LoadLastTest(ctx)
	require.NotNil(t, last)
	a.Equal(second.Report, *last, "send overwrites the last test slot")

	a.Len(published, 2)
	a.Equal(settings.DefaultMessageGroups[0], history[0].MessageGroup)
}

func TestDeletedDeviceMessagesKept(t *testing.T) {
	a := assert.New(t)
	f := newFixture(t, &fakeDeliverer{}, true)
	ctx := context.Background()
	phone := f.add(t, "aaaaaaaaaa", "Phone", "")

	res, err := f.disp.Send(ctx, Request{Title: "T", Content: "C", Target: model.TargetSingle, TargetDeviceID: phone.ID})
	require.NoError(t, err)

	require.NoError(t, f.reg.Delete(ctx, phone.ID))
	a.Equal([]model.Message{res.Message}, f.disp.History())
}

// relayHandler answers 200 for device codes starting with "ok" and 500 otherwise.
func relayHandler(w http.ResponseWriter, r *http.Request) {
	code := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")[0]
	if !strings.HasPrefix(code, "ok") {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	_, _ = w.Write([]byte(`{"code":200,"message":"success"}`))
}

func TestSendThroughRelay(t *testing.T) {
	a := assert.New(t)
	srv := httptest.NewServer(http.HandlerFunc(relayHandler))
	defer srv.Close()

	client := relay.New(relay.Config{BaseURL: srv.URL, Timeout: time.Second}, srv.Client(), zerolog.Nop())
	f := newFixture(t, client, true)
	ctx := context.Background()

	phone := f.add(t, "okabcdefgh", "Phone", "")
	a.False(phone.IsExpired)
	a.Len(f.reg.List(), 1)

	res, err := f.disp.Send(ctx, Request{Title: "T", Content: "C", Target: model.TargetAll})
	require.NoError(t, err)
	a.True(res.Message.IsSuccess)
	a.Equal("酒店BUG", res.Message.MessageGroup)
	require.Len(t, res.Report.Results, 1)
	a.True(res.Report.Results[0].Success)

	f.add(t, "badbadbadbad", "Broken", "")

	res, err = f.disp.Send(ctx, Request{Title: "T", Content: "C", Target: model.TargetAll})
	require.NoError(t, err)
	a.False(res.Message.IsSuccess)
	a.Contains(res.Message.ErrorMessage, "Broken")
	a.Contains(res.Message.ErrorMessage, "HTTP error: status 500")
	a.NotContains(res.Message.ErrorMessage, "Phone")
	a.True(res.Report.Results[0].Success)
	a.False(res.Report.Results[1].Success)
	a.Len(f.disp.History(), 2)
}
