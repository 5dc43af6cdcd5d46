// Command fixturedemo wires up a fixture server with a handful of routes
// and runs it until interrupted, printing every log line and observed
// data event to stdout. It exists to exercise the server package as a real
// binary, the way a harness embedding it would.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nimblewire/fixture/pkg/fixture/conn"
	"github.com/nimblewire/fixture/pkg/fixture/events"
	"github.com/nimblewire/fixture/pkg/fixture/handler"
	"github.com/nimblewire/fixture/pkg/fixture/httpmsg"
	"github.com/nimblewire/fixture/pkg/fixture/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	s := server.New(0)

	s.RegisterHandler("/", handler.NewResource([]byte("<html><body>fixture up</body></html>")))
	s.RegisterHandler("/redirect", handler.NewRedirect("/"))
	s.RegisterHandlerMethod("/thing", httpmsg.MethodPOST, handler.NewResource([]byte("posted")))
	s.RegisterHandlerMethod("/thing", httpmsg.MethodDELETE, handler.NewResource([]byte("deleted")))
	s.RegisterHandler("/secret", handler.NewAuthenticatedResource(
		handler.NewResource([]byte("classified")),
		handler.NewBasicAuthenticator("myUser", "myPassword"),
	))

	_, _ = s.OnLogMessage().AddObserver(func(_ context.Context, line string) error {
		fmt.Println("log:", line)
		return nil
	}, events.ObserverOptions{}, "stdout")

	_, _ = s.OnDataReceived().AddObserver(func(_ context.Context, ev conn.DataEvent) error {
		fmt.Printf("recv[%s]: %q\n", ev.ConnID, ev.Data)
		return nil
	}, events.ObserverOptions{}, "stdout")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Start(ctx); err != nil {
		return err
	}
	fmt.Printf("fixture server listening on 127.0.0.1:%d\n", s.Port())

	<-ctx.Done()
	_ = s.Stop()
	s.Wait()
	return nil
}
