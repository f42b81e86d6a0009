package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/sarathfrancis90/livekit-pharmacy-agent/internal/metrics"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/llm/tokenizer"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/pharmacy"
)

// =============================================================================
// ⌨️ console 命令
// =============================================================================

// runConsole 在终端里跑一次完整会话：stdin 为用户话语，stdout 为坐席回复。
// 语音链路（STT/TTS/房间）被跳过，其余部分与线上一致。
func runConsole(args []string) {
	fs := flag.NewFlagSet("console", flag.ExitOnError)
	cfg, _ := loadConfig(fs, args)

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	collector := metrics.NewCollector("pharmacy_agent", logger)

	st, err := buildStore(cfg.Store, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	provider, err := buildProvider(cfg, collector, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build provider: %v\n", err)
		os.Exit(1)
	}

	pharmacyCfg := pharmacy.Config{
		Provider:     provider,
		Store:        st,
		Model:        cfg.Agent.Model,
		Temperature:  float32(cfg.Agent.Temperature),
		MaxToolSteps: cfg.Agent.MaxToolSteps,
		Metrics:      collector,
		Logger:       logger,
	}
	if cfg.Agent.TokenBudget > 0 {
		tokenizer.RegisterDefaultTokenizers()
		pharmacyCfg.TokenBudget = cfg.Agent.TokenBudget
		pharmacyCfg.TokenCounter = tokenizer.GetTokenizerOrEstimator(cfg.Agent.Model)
	}

	session, _, err := pharmacy.NewSession(pharmacyCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build session: %v\n", err)
		os.Exit(1)
	}
	defer session.Close()

	ctx := context.Background()
	greeting, err := session.Start(ctx, cfg.Agent.InitialAgent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start session: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[%s] %s\n", greeting.Agent, greeting.Reply)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		utterance := strings.TrimSpace(scanner.Text())
		if utterance == "" {
			continue
		}
		if utterance == "/quit" || utterance == "/exit" {
			break
		}

		result, err := session.ProcessTurn(ctx, utterance)
		if err != nil {
			fmt.Fprintf(os.Stderr, "turn failed: %v\n", err)
			continue
		}
		if result.Transferred {
			logger.Info("handoff committed",
				zap.String("agent", result.Agent),
				zap.String("message", result.TransferMessage),
			)
		}
		fmt.Printf("[%s] %s\n", result.Agent, result.Reply)
	}

	fmt.Println("Goodbye.")
}
