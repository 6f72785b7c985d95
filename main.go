package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dhakan/snake-client/client"
)

// snake-client 入口：连接服务端，订阅生命周期事件，从 stdin 读取动作（up/down/left/right/inverse）
func main() {
	cfg, err := client.LoadConfig()
	if err != nil {
		panic(err)
	}
	flag.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "server websocket url, e.g. ws://localhost:8080/ws")
	flag.StringVar(&cfg.PlayerID, "player", cfg.PlayerID, "player id sent to the server")
	flag.DurationVar(&cfg.HandshakeTimeout, "handshake-timeout", cfg.HandshakeTimeout, "close if no handshake arrives in time (0 disables)")
	flag.StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file path; empty logs to stderr")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flag.StringVar(&cfg.DebugAddr, "debug-addr", cfg.DebugAddr, "serve /state and /metrics on this address, e.g. :6060")
	flag.Parse()

	if err := client.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		panic(err)
	}
	defer client.SyncLogger()
	log := client.Log

	sess := client.NewSession(cfg, nil)
	subscribe(sess)

	if cfg.DebugAddr != "" {
		srv := &http.Server{Addr: cfg.DebugAddr, Handler: client.NewDebugMux(sess)}
		go func() {
			log.Infof("debug endpoints on http://localhost%v/state", cfg.DebugAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("debug listen: %v", err)
			}
		}()
		defer srv.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sess.Connect(ctx); err != nil {
		log.Errorf("connect: %v", err)
		return
	}
	go readActions(sess)

	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
		_ = sess.Close()
		<-sess.Done()
	case <-sess.Done():
	}
}

// subscribe 无界面的消费者：加载完成即通知服务端，其余事件写日志
func subscribe(sess *client.Session) {
	log := client.Log
	bus := sess.Bus()

	client.On(bus, func(ev client.Connected) {
		log.Infow("connected", "player", sess.ID(), "gridSize", ev.Handshake.GridSize)
		if err := sess.AnnounceReady(); err != nil {
			log.Errorf("announce ready: %v", err)
		}
	})
	client.On(bus, func(ev client.RoomState) {
		log.Infow("room state", "players", len(ev.Players), "walls", len(ev.Course.Walls),
			"world", ev.Course.Settings.World)
		if me, ok := sess.Self(); ok {
			log.Infow("you", "color", me.Color, "x", me.Position.X, "y", me.Position.Y)
		}
	})
	client.On(bus, func(ev client.GameRoundCountdown) {
		log.Infow("countdown", "value", ev.Value)
	})
	client.On(bus, func(ev client.GameState) {
		log.Debugw("game state", "players", len(ev.Players), "fruits", len(ev.Fruits))
	})
	client.On(bus, func(client.FruitCollected) { log.Info("fruit collected") })
	client.On(bus, func(client.PlayerDied) { log.Info("player died") })
	client.On(bus, func(client.PlayerReduction) { log.Info("player reduction") })
	client.On(bus, func(ev client.DecodeFailed) {
		log.Warnw("bad message", "error", ev.Err)
	})
	client.On(bus, func(ev client.Disconnected) {
		if ev.Err != nil {
			log.Errorf("disconnected: %v", ev.Err)
		}
	})
}

func readActions(sess *client.Session) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		a, err := client.ParseAction(sc.Text())
		if err != nil {
			client.Log.Warnf("%v", err)
			continue
		}
		if err := sess.SendAction(a); err != nil {
			client.Log.Warnf("send %s: %v", a, err)
		}
	}
}
