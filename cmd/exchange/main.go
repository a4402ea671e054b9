package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appconfig "github.com/tradekit/exchange-core/config"
	"github.com/tradekit/exchange-core/pkg/account"
	"github.com/tradekit/exchange-core/pkg/exchange"
	"github.com/tradekit/exchange-core/pkg/logging"
	"github.com/tradekit/exchange-core/pkg/orderbook"
)

func main() {
	configFile := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, logLevel := exchangeConfig(*configFile)

	log := logging.NewLogger(logLevel)
	defer log.Sync() // nolint

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	ex := exchange.New(log, cfg)
	ex.RegisterTradeNotifier(func(trade *orderbook.Trade) {
		log.Info("trade",
			zap.String("ticker", trade.Ticker),
			zap.Int64("buy_order_id", trade.BuyOrderID),
			zap.Int64("sell_order_id", trade.SellOrderID),
			zap.Int64("qty", trade.Quantity),
			zap.String("price", trade.Price.String()))
	})
	ex.Start(ctx)

	accounts := account.NewRegistry()
	if _, err := accounts.Open("ACC-1", decimal.NewFromInt(10_000)); err != nil {
		log.Error("open account", zap.Error(err))
		os.Exit(1)
	}

	for _, ticker := range []string{"APL", "GGL", "AMZ"} {
		if err := ex.RegisterInstrument(ticker, decimal.NewFromInt(100)); err != nil {
			log.Error("register instrument", zap.Error(err))
			os.Exit(1)
		}
	}

	orders := []exchange.PlaceOrderRequest{
		{Ticker: "APL", Side: orderbook.BUY, Price: decimal.NewFromInt(99), Quantity: 10},
		{Ticker: "APL", Side: orderbook.SELL, Price: decimal.NewFromInt(99), Quantity: 9},
		{Ticker: "GGL", Side: orderbook.BUY, Price: decimal.NewFromInt(52), Quantity: 20},
	}
	for _, req := range orders {
		order, err := ex.PlaceOrder(req)
		if err != nil {
			log.Warn("order rejected", zap.Error(err))
			continue
		}
		log.Info("order accepted", zap.Int64("order_id", order.ID))
	}

	fmt.Println("Exchange started. Press Ctrl+C to exit.")
	<-sigs
	fmt.Println("Shutting down...")

	ex.Shutdown()

	if apl, ok := ex.Instrument("APL"); ok {
		fmt.Printf("APL last traded price: %s\n", apl.LastTradedPrice)
	}
	fmt.Println("Exited cleanly.")
}

func exchangeConfig(configFile string) (*exchange.Config, logging.LogLevel) {
	cfg := &exchange.Config{}
	if configFile == "" {
		return cfg, logging.INFO
	}

	appCfg, err := appconfig.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	cfg.PollInterval = time.Duration(appCfg.Queue.PollIntervalMS) * time.Millisecond
	if len(appCfg.PriceBands) > 0 {
		cfg.PriceBands = make(map[string]exchange.PriceBand, len(appCfg.PriceBands))
		for ticker, band := range appCfg.PriceBands {
			floor, err := decimal.NewFromString(band.Floor)
			if err != nil {
				fmt.Fprintf(os.Stderr, "price band floor for %s: %v\n", ticker, err)
				os.Exit(1)
			}
			ceil, err := decimal.NewFromString(band.Ceil)
			if err != nil {
				fmt.Fprintf(os.Stderr, "price band ceil for %s: %v\n", ticker, err)
				os.Exit(1)
			}
			cfg.PriceBands[ticker] = exchange.PriceBand{Floor: floor, Ceil: ceil}
		}
	}

	return cfg, logging.ParseLevel(appCfg.LogLevel)
}
