// Command quizcli is a terminal host for the quiz widgets. It connects to
// the MCP server, calls a display tool and renders the widget its result
// selects.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-widget/internal/auth/jwt"
	"github.com/gokatarajesh/quiz-widget/internal/config"
	"github.com/gokatarajesh/quiz-widget/internal/logging"
	"github.com/gokatarajesh/quiz-widget/internal/quizlist"
	"github.com/gokatarajesh/quiz-widget/internal/toolclient"
	"github.com/gokatarajesh/quiz-widget/internal/widget"
)

func main() {
	var (
		tool     = flag.String("tool", toolclient.ToolQuizList, "display tool to call: quiz-list or quiz-generator")
		quizFile = flag.String("quiz", "", "JSON file with the generated quiz (quiz-generator only)")
		devUser  = flag.String("dev-user", "", "mint a development token for this user id using JWT_SECRET")
	)
	flag.Parse()

	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load("configs/.env")
	}

	cfg, err := config.LoadClient()
	if err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("failed to load config")
	}
	logger := logging.NewWithWriter(os.Stderr, "quizcli", cfg.Env).Level(zerolog.WarnLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	token := cfg.Token
	if *devUser != "" {
		token, err = devToken(cfg, *devUser)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to mint development token")
		}
	}

	args, err := toolArgs(*tool, *quizFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid tool arguments")
	}

	client, err := toolclient.Dial(ctx, toolclient.Config{
		Endpoint: cfg.MCPEndpoint,
		Token:    token,
		Timeout:  cfg.CallTimeout,
		Name:     "quizcli",
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("endpoint", cfg.MCPEndpoint).Msg("failed to connect")
	}
	defer client.Close()

	res, err := client.CallTool(ctx, *tool, args)
	if err != nil {
		logger.Fatal().Err(err).Str("tool", *tool).Msg("tool call failed")
	}
	if res.IsError {
		logger.Fatal().Str("tool", *tool).Str("detail", res.Text).Msg("tool returned an error")
	}

	props, err := widget.DecodeProps(res)
	if err != nil {
		logger.Fatal().Err(err).Msg("unexpected tool result")
	}

	w := widget.DefaultRegistry().Resolve(ctx, props, widget.Env{
		Caller: client,
		Logger: logger,
		List: quizlist.Options{
			FrontendPageSize: cfg.FrontendPageSize,
			BackendPageSize:  cfg.BackendPageSize,
		},
		Wisebase: cfg.Wisebase,
	})
	if err := widget.Run(ctx, w, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		logger.Error().Err(err).Msg("widget stopped")
	}
}

func toolArgs(tool, quizFile string) (any, error) {
	if tool != toolclient.ToolQuizGenerator {
		return map[string]any{}, nil
	}
	raw, err := os.ReadFile(quizFile)
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%s is not valid JSON", quizFile)
	}
	return json.RawMessage(raw), nil
}

func devToken(cfg *config.Client, user string) (string, error) {
	if cfg.JWTSecret == "" {
		return "", fmt.Errorf("JWT_SECRET is required for -dev-user")
	}
	id, err := uuid.Parse(user)
	if err != nil {
		return "", err
	}
	tokens := jwt.NewManager(jwt.TokenConfig{Secret: []byte(cfg.JWTSecret), Issuer: cfg.Issuer})
	return tokens.Generate(jwt.User{ID: id})
}
