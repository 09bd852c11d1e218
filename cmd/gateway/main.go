package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/upb/llm-gateway/config"
	"github.com/upb/llm-gateway/internal/observability"
	"github.com/upb/llm-gateway/services/autorepair"
	"github.com/upb/llm-gateway/services/gear"
	"github.com/upb/llm-gateway/services/providers"
	"github.com/upb/llm-gateway/services/providers/primary"
	"github.com/upb/llm-gateway/services/providers/secondary"
	"github.com/upb/llm-gateway/services/routing"
	"github.com/upb/llm-gateway/services/tokens"
)

func main() {
	var (
		system     = flag.String("system", "", "optional system prompt")
		multimodal = flag.Bool("multimodal", false, "mark the request as multimodal")
		imageURL   = flag.String("image-url", "", "image to attach to the last user message")
		forced     = flag.String("provider", "", "force a provider (primary or secondary)")
		timeout    = flag.Duration("timeout", 2*time.Minute, "overall request timeout")
	)
	flag.Parse()

	cfg := config.New()

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	registry := providers.NewRegistry()

	if cfg.PrimaryConfigured() {
		adapter, err := primary.New(cfg.Primary, logger)
		if err != nil {
			logger.Fatal("failed to build primary provider", zap.Error(err))
		}
		if err := registry.Register(adapter); err != nil {
			logger.Fatal("failed to register primary provider", zap.Error(err))
		}
	} else {
		logger.Warn("primary provider not configured")
	}

	if cfg.SecondaryConfigured() {
		adapter, err := secondary.New(cfg.Secondary, logger)
		if err != nil {
			logger.Fatal("failed to build secondary provider", zap.Error(err))
		}
		if err := registry.Register(adapter); err != nil {
			logger.Fatal("failed to register secondary provider", zap.Error(err))
		}
	} else {
		logger.Warn("secondary provider not configured")
	}

	var repair autorepair.Dispatcher = autorepair.NopDispatcher{}
	var async *autorepair.AsyncDispatcher
	if cfg.AutoRepair.Endpoint != "" {
		httpDispatcher, err := autorepair.NewHTTPDispatcher(cfg.AutoRepair, logger)
		if err != nil {
			logger.Fatal("failed to build auto-repair dispatcher", zap.Error(err))
		}
		async = autorepair.NewAsyncDispatcher(httpDispatcher, cfg.AutoRepair, logger)
		if err := async.Start(); err != nil {
			logger.Fatal("failed to start auto-repair dispatcher", zap.Error(err))
		}
		repair = async
	}

	gears := gear.NewController(cfg.Primary.HighGearModel, cfg.Primary.LowGearModel, logger)
	selector := routing.NewSelector(registry, tokens.Heuristic{}, logger)
	coordinator := routing.NewCoordinator(registry, selector, gears, repair, logger)

	prompt := strings.Join(flag.Args(), " ")
	if prompt == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			logger.Fatal("failed to read prompt from stdin", zap.Error(err))
		}
		prompt = strings.TrimSpace(string(data))
	}
	if prompt == "" {
		fmt.Fprintln(os.Stderr, "usage: gateway [flags] <prompt> (or pipe the prompt on stdin)")
		os.Exit(2)
	}

	var messages []providers.Message
	if *system != "" {
		messages = append(messages, providers.Message{Role: "system", Content: *system})
	}
	userMsg := providers.Message{Role: "user", Content: prompt}
	if *imageURL != "" {
		userMsg.ImageURL = *imageURL
	}
	messages = append(messages, userMsg)

	req := providers.NewRequest(messages)
	req.Multimodal = *multimodal || *imageURL != ""
	if *forced != "" {
		identity := providers.Identity(*forced)
		req.ForcedProvider = &identity
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	resp, err := coordinator.Complete(ctx, req)
	if err != nil {
		logger.Error("completion failed", zap.String("request_id", req.ID), zap.Error(err))
		if async != nil {
			_ = async.Stop(5 * time.Second)
		}
		os.Exit(1)
	}

	logger.Info("completion served",
		zap.String("request_id", req.ID),
		zap.String("provider", resp.Provider.String()),
		zap.String("model", resp.Model),
		zap.String("gear", resp.Gear),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	fmt.Println(resp.Content)

	if async != nil {
		_ = async.Stop(5 * time.Second)
	}
}
