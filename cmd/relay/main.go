// Command relay serves the trading API and executes copy trades from the
// bot backend event feed.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/AlexZinkM/trade-relay/docs"
	"github.com/AlexZinkM/trade-relay/internal/api"
	"github.com/AlexZinkM/trade-relay/internal/client"
	"github.com/AlexZinkM/trade-relay/internal/config"
	"github.com/AlexZinkM/trade-relay/internal/feed"
	"github.com/AlexZinkM/trade-relay/internal/handler"
	"github.com/AlexZinkM/trade-relay/internal/logger"
	"github.com/AlexZinkM/trade-relay/internal/signer"
	"github.com/AlexZinkM/trade-relay/internal/store"
	"github.com/AlexZinkM/trade-relay/internal/submit"
	"github.com/AlexZinkM/trade-relay/internal/turnkey"
	"github.com/AlexZinkM/trade-relay/solana"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := config.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := config.Get()

	log, err := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := config.PromptForPassphrase(); err != nil {
		log.WithError(err).Fatal("store passphrase required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("relay stopped")
	}
	log.Info("relay stopped")
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	passphrase, err := config.GetStorePassphraseBytes()
	if err != nil {
		return err
	}
	st, err := store.New(ctx, store.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, passphrase, log)
	clear(passphrase)
	if err != nil {
		return err
	}
	defer st.Close()

	policy, err := retryPolicy(cfg)
	if err != nil {
		return err
	}

	chain := client.NewSolanaClient(config.GetSolanaRPCURL(), client.SolanaOptions{
		Commitment:     rpc.CommitmentType(cfg.SolanaCommitment),
		PollInterval:   cfg.ConfirmPollInterval,
		ConfirmTimeout: cfg.ConfirmTimeout,
		HTTPTimeout:    cfg.HTTPTimeout,
	}, log)
	submitter, err := submit.New(chain, policy, log)
	if err != nil {
		return err
	}
	custodian := turnkey.NewClient(cfg.TurnkeyAPIURL, cfg.HTTPTimeout, log)

	svc := solana.NewService(solana.Deps{
		Chain:     chain,
		Prices:    client.NewCoinGeckoClient(cfg.CoinGeckoAPIURL),
		Router:    client.NewJupiterClient(cfg.JupiterAPIURL, cfg.HTTPTimeout),
		Backend:   client.NewBackendClient(cfg.BotBackendURL, cfg.HTTPTimeout),
		Keys:      custodian,
		Users:     st,
		Signer:    signer.New(custodian, log),
		Submitter: submitter,
	}, log)

	server := &http.Server{
		Addr:              ":" + config.GetPort(),
		Handler:           api.SetupRouter(handler.NewSolanaHandler(svc, log)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithFields(logrus.Fields{
			"addr":     server.Addr,
			"attempts": policy.MaxAttempts,
			"delay":    policy.Delay,
			"backoff":  policy.Strategy,
		}).Info("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if url := config.GetEventFeedURL(); url != "" {
		consumer := feed.NewConsumer(feed.Options{
			URL:               url,
			ReconnectDelay:    cfg.FeedReconnectDelay,
			MaxReconnectDelay: cfg.FeedMaxReconnectDelay,
		}, svc.HandleCopyTrade, log)
		g.Go(func() error {
			return consumer.Run(ctx)
		})
	} else {
		log.Warn("EVENT_FEED_URL not set, copy trade feed disabled")
	}

	return g.Wait()
}

func retryPolicy(cfg *config.Config) (submit.Policy, error) {
	strategy, err := submit.ParseStrategy(cfg.RetryBackoff)
	if err != nil {
		return submit.Policy{}, err
	}
	policy := submit.Policy{
		MaxAttempts: cfg.RetryMaxAttempts,
		Delay:       cfg.RetryDelay,
		Strategy:    strategy,
	}
	return policy, policy.Validate()
}
