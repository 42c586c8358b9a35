package main

import (
	"context"
	"encoding/json"
	"flag"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/minebridge/cryptonote-pool/src/addressing"
	"github.com/minebridge/cryptonote-pool/src/common"
	"github.com/minebridge/cryptonote-pool/src/ledger"
	"github.com/minebridge/cryptonote-pool/src/payments"
	"github.com/minebridge/cryptonote-pool/src/postgres"
	"github.com/minebridge/cryptonote-pool/src/walletapi"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

func main() {
	pwd, _ := os.Getwd()
	fullPath := path.Join(pwd, "config.yaml")
	log.Printf("loading config @ `%s`", fullPath)
	rawCfg, err := ioutil.ReadFile(fullPath)
	if err != nil {
		log.Printf("config file not found: %s", err)
		os.Exit(1)
	}
	cfg := payments.Config{}
	if err := yaml.Unmarshal(rawCfg, &cfg); err != nil {
		log.Printf("failed parsing config file: %s", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.RedisAddress, "redis", cfg.RedisAddress, "address of the redis ledger, default `localhost:6379`")
	flag.StringVar(&cfg.PromPort, "prom", cfg.PromPort, "address to serve prom stats, default `:2112`")
	flag.StringVar(&cfg.HealthCheckPort, "hcp", cfg.HealthCheckPort, `(rarely used) if defined will expose a health check on /readyz, default ""`)
	flag.StringVar(&cfg.PoolAddress, "pool", cfg.PoolAddress, `pool receiving address, all payouts originate from its wallet"`)
	flag.StringVar(&cfg.PostgresConfig, "pg", cfg.PostgresConfig, `config string for the optional postgres payment archive"`)
	flag.Int64Var(&cfg.Interval, "interval", cfg.Interval, `seconds between settlement cycles"`)

	flag.Parse()

	log.Println("----------------------------------")
	log.Printf("initializing payment processor")
	log.Printf("\tcoin:          %s", cfg.Coin)
	log.Printf("\tredis:         %s", cfg.RedisAddress)
	log.Printf("\twallet:        %s:%d", cfg.Wallet.Host, cfg.Wallet.Port)
	log.Printf("\tprom:          %s", cfg.PromPort)
	log.Printf("\thealth check:  %s", cfg.HealthCheckPort)
	log.Printf("\tpool address:  %s", cfg.PoolAddress)
	log.Printf("\tmock:  		 %t", cfg.UseMockWallet)
	log.Printf("\tinterval:      %ds", cfg.Interval)
	log.Println("----------------------------------")

	logger := common.ConfigureZap(zap.InfoLevel)

	decoder := addressing.NewBase58Decoder(cfg.AddressPrefix)
	if _, err := decoder.Decode(cfg.PoolAddress); err != nil {
		// the pool cannot operate without a valid receiving identity
		logger.Error("pool server address is invalid", zap.String("address", cfg.PoolAddress), zap.Error(err))
		os.Exit(1)
	}

	rd, err := ledger.Connect(cfg.RedisAddress)
	if err != nil {
		logger.Error("failed connecting to redis", zap.Error(err))
		os.Exit(1)
	}
	store := ledger.NewRedisStore(rd, cfg.Coin)

	if cfg.PostgresConfig != "" {
		postgres.ConfigurePostgres(cfg.PostgresConfig)
	}

	var wallet walletapi.WalletClient
	if cfg.UseMockWallet {
		wallet = walletapi.NewMockWalletClient()
	} else {
		wallet = walletapi.NewRestWalletClient(cfg.Wallet.Host, cfg.Wallet.Port, cfg.Wallet.Password, logger)
	}

	if cfg.PromPort != "" {
		payments.StartPromServer(logger, cfg.PromPort)
	}
	if cfg.HealthCheckPort != "" {
		logger.Info("enabling health check on port " + cfg.HealthCheckPort)
		beginReadyzHandler(cfg, store)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	processor := payments.NewProcessor(cfg, store, wallet, decoder, logger)
	processor.Start(ctx)
}

func beginReadyzHandler(cfg payments.Config, store *ledger.RedisStore) {
	http.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(err.Error()))
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	http.HandleFunc("/payments/recent", func(w http.ResponseWriter, r *http.Request) {
		since := time.Now().Add(-24 * time.Hour).Unix()
		entries, err := store.PaymentsSince(r.Context(), since, 100)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(err.Error()))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	})
	go http.ListenAndServe(cfg.HealthCheckPort, nil)
}
