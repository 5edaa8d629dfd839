package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"etf-market-maker/config"
	"etf-market-maker/exchange"
	"etf-market-maker/infrastructure/logger"
	"etf-market-maker/monitor"
	"etf-market-maker/rate"
	"etf-market-maker/trader"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	watchConfig := flag.Bool("watchConfig", true, "监听配置变更并热更可热更参数")
	flag.Parse()

	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	lg, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer lg.Close()

	mon := monitor.New(monitor.DefaultConfig())
	if cfg.MetricsAddr != "" {
		go serveMetrics(lg, mon, cfg.MetricsAddr)
	}

	tracker := rate.NewTracker(cfg.Trader.NumClones)
	client := exchange.NewWSClient(cfg.Exchange.Endpoint, cfg.Exchange.TeamName, cfg.Exchange.Secret, lg.Named("ws").Logger)
	dispatcher := exchange.NewDispatcher(client, tracker)
	bot := trader.New(lg.Named("trader").Logger, dispatcher, tracker, trader.Params{
		NumClones: cfg.Trader.NumClones,
		CrossArb:  cfg.Trader.CrossArb,
	}, mon)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		lg.Info("signal received, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	if *watchConfig {
		watcher := config.Watcher{Path: *cfgPath}
		go func() {
			err := watcher.Start(ctx, func(next config.AppConfig) {
				bot.SetCrossArb(next.Trader.CrossArb)
				if next.Trader.NumClones != cfg.Trader.NumClones {
					lg.Warn("numClones changed, restart required to apply",
						zap.Int("current", cfg.Trader.NumClones),
						zap.Int("new", next.Trader.NumClones))
				}
				lg.Info("config reloaded", zap.Bool("crossArb", next.Trader.CrossArb))
			})
			if err != nil && ctx.Err() == nil {
				lg.Error("config watcher stopped", zap.Error(err))
			}
		}()
	}

	// 周期性上报消息窗口占用
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				mon.UpdateMessageWindow(float64(tracker.WindowCount()))
			}
		}
	}()

	if err := client.Run(ctx, bot); err != nil && ctx.Err() == nil {
		lg.Error("execution client exited", zap.Error(err))
		os.Exit(1)
	}
}

func serveMetrics(lg *logger.Logger, mon *monitor.Monitor, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", mon.Handler())
	lg.Info("metrics server listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		lg.Error("metrics server stopped", zap.Error(err))
	}
}
