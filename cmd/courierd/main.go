package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/courierbots/courier.go/pkg/env"
	fx "github.com/courierbots/courier.go/pkg/framework"
	"github.com/courierbots/courier.go/pkg/hal"
	halfirmata "github.com/courierbots/courier.go/pkg/hal/firmata"
	"github.com/courierbots/courier.go/pkg/node"
	"github.com/courierbots/courier.go/pkg/transport/serialline"
	"github.com/courierbots/courier.go/pkg/transport/wsline"
	"github.com/courierbots/courier.go/pkg/uplink/mqtt"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()
	conf := env.NewConfig()

	board, err := newBoard(conf)
	if err != nil {
		glog.Exitf("board init: %v", err)
	}

	loop := fx.NewLoop()
	uplink := &switchWriter{w: io.Discard}
	writers := []io.Writer{uplink}

	if conf.MQTTBrokerURL != "" {
		bridge, err := mqtt.NewBridge(conf.MQTTBrokerURL, conf.NodeID, loop)
		if err != nil {
			glog.Exitf("broker bridge: %v", err)
		}
		writers = append(writers, bridge.MirrorWriter())
		loop.AddRunnable(bridge)
	}

	n := node.New(board, io.MultiWriter(writers...), time.Now())
	n.AddToLoop(loop)

	switch {
	case conf.Listen != "":
		loop.AddRunnable(&wsServer{addr: conf.Listen, loop: loop, out: uplink})
	case conf.Device == "-":
		uplink.Set(os.Stdout)
		loop.AddRunnable(node.NewLineReader(os.Stdin, loop))
	default:
		port, err := serialline.Open(conf.Device, conf.Baud)
		if err != nil {
			glog.Exitf("open %s: %v", conf.Device, err)
		}
		uplink.Set(port)
		reader := node.NewLineReader(port, loop)
		reader.Closer = port
		loop.AddRunnable(reader)
	}

	glog.Infof("node %s online", conf.NodeID)
	runner := fx.NewRunner().HandleSignals()
	runner.Go(loop)
	if err := runner.Wait(); err != nil {
		glog.Exitln(err)
	}
}

func newBoard(conf *env.Config) (hal.Board, error) {
	if conf.Board == "firmata" {
		return halfirmata.New(conf.BoardDevice)
	}
	glog.Info("using simulated board")
	return hal.NewSimBoard(), nil
}

// switchWriter lets the uplink target be (re)attached while the node
// keeps running, e.g. per websocket connection.
type switchWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *switchWriter) Set(w io.Writer) {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	w := s.w
	s.mu.Unlock()
	return w.Write(p)
}

// wsServer serves the line protocol over websocket, one brain
// connection at a time.
type wsServer struct {
	addr string
	loop *fx.Loop
	out  *switchWriter

	mu sync.Mutex
}

// Name implements framework.Named.
func (s *wsServer) Name() string {
	return "ws-uplink"
}

// Run implements framework.Runnable.
func (s *wsServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr: s.addr,
		Handler: wsline.Handler(func(conn io.ReadWriteCloser) {
			s.mu.Lock()
			defer s.mu.Unlock()
			glog.Info("brain attached")
			s.out.Set(conn)
			reader := node.NewLineReader(conn, s.loop)
			if err := reader.Run(ctx); err != nil && err != context.Canceled {
				glog.Warningf("brain connection: %v", err)
			}
			s.out.Set(io.Discard)
			glog.Info("brain detached")
		}),
	}
	return fx.RunWithContextCancel(ctx, func() { srv.Close() }, func() error {
		err := srv.ListenAndServe()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	})
}
