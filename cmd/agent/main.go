package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"taskagent/internal/di"
	"taskagent/internal/domain/entity"
	"taskagent/internal/infrastructure/env"
	"taskagent/internal/infrastructure/logger"
)

func main() {
	envService := env.NewEnvService()

	fmt.Println("\nEnter a task for the agent:")
	reader := bufio.NewReader(os.Stdin)
	task, err := reader.ReadString('\n')
	if err != nil {
		log.Fatal("failed to read input: ", err)
	}
	task = strings.TrimSpace(task)
	if task == "" {
		log.Fatal("task instructions are empty")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	logCfg := logger.DefaultConfig()
	logCfg.Level = envService.GetDefault("LOG_LEVEL", "info")
	logCfg.LogFile = envService.Get("LOG_FILE")

	container, err := di.NewContainer(ctx, di.Config{
		Logger:        logCfg,
		DatabaseURL:   envService.Get("DATABASE_URL"),
		ScreenshotDir: envService.Get("SCREENSHOT_DIR"),
		Workers:       1,
	})
	if err != nil {
		log.Fatalf("initialization failed: %v", err)
	}
	defer container.Close()

	browserCfg := entity.DefaultBrowserConfig()
	browserCfg.Headless = envService.GetBool("BROWSER_HEADLESS", true)
	browserCfg.MaxSteps = envService.GetInt("MAX_STEPS", browserCfg.MaxSteps)
	browserCfg.UseVision = envService.GetBool("USE_VISION", browserCfg.UseVision)

	inv := entity.TaskInvocation{
		Instructions: task,
		LLM: entity.LLMConfig{
			Provider: envService.GetDefault("LLM_PROVIDER", "openai"),
			Model:    envService.MustGet("LLM_MODEL"),
			APIKey:   envService.Get("LLM_API_KEY"),
			Endpoint: envService.Get("LLM_ENDPOINT"),
		},
		Browser: browserCfg,
	}

	container.Logger.Info("task started", "instructions", task)
	fmt.Println("\nAgent is working...")

	result, err := container.TaskRunner.Run(ctx, inv)
	if err != nil {
		container.Logger.Error("task rejected", "error", err)
		fmt.Printf("\nTask rejected: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode result: %v", err)
	}
	fmt.Println("\nRESULT:")
	fmt.Println(string(out))

	if result.Status == entity.TaskStatusFailed {
		os.Exit(1)
	}
}
