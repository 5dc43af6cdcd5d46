package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nimblewire/fixture/pkg/fixture/events"
	"github.com/nimblewire/fixture/pkg/fixture/handler"
	"github.com/nimblewire/fixture/pkg/fixture/httpmsg"
)

func mustParse(t *testing.T, raw string) *httpmsg.Request {
	t.Helper()
	req, err := httpmsg.Parse([]byte(raw))
	require.NoError(t, err)
	return req
}

func TestDispatchMalformedRequestReturnsBadRequest(t *testing.T) {
	r := New("fixtureserver/1")
	resp, err := r.Dispatch(context.Background(), "conn-1", nil)
	require.NoError(t, err)
	require.Equal(t, 400, resp.Status())
}

func TestDispatchUnknownPathReturnsNotFound(t *testing.T) {
	r := New("fixtureserver/1")
	req := mustParse(t, "GET /missing HTTP/1.1\r\nHost: localhost\r\n\r\n")
	resp, err := r.Dispatch(context.Background(), "conn-1", req)
	require.NoError(t, err)
	require.Equal(t, 404, resp.Status())
}

func TestDispatchWrongMethodReturnsMethodNotAllowedWithSortedAllow(t *testing.T) {
	r := New("fixtureserver/1")
	r.Register("/thing", httpmsg.MethodPOST, handler.NewResource([]byte("posted")))
	r.Register("/thing", httpmsg.MethodDELETE, handler.NewResource([]byte("deleted")))

	req := mustParse(t, "GET /thing HTTP/1.1\r\nHost: localhost\r\n\r\n")
	resp, err := r.Dispatch(context.Background(), "conn-1", req)
	require.NoError(t, err)
	require.Equal(t, 405, resp.Status())
	require.Equal(t, "DELETE, POST", resp.Header().Get("Allow"))
}

func TestDispatchRegisteredHandlerAnswers(t *testing.T) {
	r := New("fixtureserver/1")
	r.RegisterGET("/hello", handler.NewResource([]byte("hi")))

	req := mustParse(t, "GET /hello HTTP/1.1\r\nHost: localhost\r\n\r\n")
	resp, err := r.Dispatch(context.Background(), "conn-1", req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.Status())
	require.Equal(t, "hi", string(resp.Body()))
}

func TestDispatchWebSocketUpgradeReturns101RegardlessOfRegistration(t *testing.T) {
	r := New("fixtureserver/1")
	req := mustParse(t, "GET /ws HTTP/1.1\r\nHost: localhost\r\nConnection: Upgrade\r\nUpgrade: websocket\r\nSec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n\r\n")
	resp, err := r.Dispatch(context.Background(), "conn-1", req)
	require.NoError(t, err)
	require.Equal(t, 101, resp.Status())
	require.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", resp.Header().Get("Sec-WebSocket-Accept"))
}

func TestDispatchFiresRequestHandlingEvents(t *testing.T) {
	r := New("fixtureserver/1")
	r.RegisterGET("/hello", handler.NewResource([]byte("hi")))

	var handling, handled bool
	_, err := r.OnRequestHandling().AddObserver(func(_ context.Context, ev RequestEvent) error {
		handling = true
		require.Equal(t, "conn-1", ev.ConnID)
		require.Nil(t, ev.Response)
		return nil
	}, events.ObserverOptions{}, "handling observer")
	require.NoError(t, err)

	_, err = r.OnRequestHandled().AddObserver(func(_ context.Context, ev RequestEvent) error {
		handled = true
		require.Equal(t, 200, ev.Response.Status())
		return nil
	}, events.ObserverOptions{}, "handled observer")
	require.NoError(t, err)

	req := mustParse(t, "GET /hello HTTP/1.1\r\nHost: localhost\r\n\r\n")
	r.Dispatch(context.Background(), "conn-1", req)

	require.True(t, handling)
	require.True(t, handled)
}

func TestDispatchAbortsWhenSyncObserverErrors(t *testing.T) {
	r := New("fixtureserver/1")
	r.RegisterGET("/hello", handler.NewResource([]byte("hi")))

	boom := errors.New("boom")
	_, err := r.OnRequestHandling().AddObserver(func(_ context.Context, _ RequestEvent) error {
		return boom
	}, events.ObserverOptions{}, "failing observer")
	require.NoError(t, err)

	req := mustParse(t, "GET /hello HTTP/1.1\r\nHost: localhost\r\n\r\n")
	resp, dispatchErr := r.Dispatch(context.Background(), "conn-1", req)
	require.ErrorIs(t, dispatchErr, boom)
	require.Nil(t, resp)
}
