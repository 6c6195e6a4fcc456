package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/KirkDiggler/mafia/internal/app"
	"github.com/KirkDiggler/mafia/internal/config"
	"github.com/KirkDiggler/mafia/internal/handlers/discord"
	"k8s.io/klog/v2"
)

var (
	flagEnvFile    = flag.String("env", ".env", "Env file loaded before the environment")
	flagConfigFile = flag.String("config", "", "Optional config file (yaml, json or toml)")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	cfg, err := config.Load(&config.LoadInput{
		EnvFile:    *flagEnvFile,
		ConfigFile: *flagConfigFile,
	})
	if err != nil {
		klog.Fatalf("Failed to load config: %v", err)
	}

	if cfg.DiscordToken == "" {
		klog.Fatal("MAFIA_DISCORD_TOKEN is required")
	}

	services, err := app.New(context.Background(), cfg)
	if err != nil {
		klog.Fatalf("Failed to start services: %v", err)
	}
	defer services.Close()

	bot, err := discord.New(&discord.Config{
		Token:         cfg.DiscordToken,
		ApplicationID: cfg.ApplicationID,
		GuildID:       cfg.GuildID,
		GameService:   services.Game,
		Scheduler:     services.Scheduler,
		Messaging:     services.Messaging,
	})
	if err != nil {
		klog.Fatalf("Failed to create Discord bot: %v", err)
	}

	if err := bot.Start(); err != nil {
		klog.Fatalf("Failed to start Discord bot: %v", err)
	}

	// Wait for interrupt signal to gracefully shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	if err := bot.Stop(); err != nil {
		klog.Errorf("Error stopping bot: %v", err)
	}

	klog.Info("Bot has been shut down")
}
