package bot

import (
	"context"
	"corp-bot/utils"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// GuildLister lists the guilds the bot is connected to.
type GuildLister interface {
	UserGuilds(limit int, beforeID, afterID string, withCounts bool, options ...discordgo.RequestOption) ([]*discordgo.UserGuild, error)
}

// CheckGuild fails unless the bot is connected to exactly the configured guild.
func CheckGuild(s GuildLister, guildID string) error {
	guilds, err := s.UserGuilds(100, "", "", false)
	if err != nil {
		return fmt.Errorf("could not fetch guilds: %w", err)
	}
	if len(guilds) > 1 {
		return fmt.Errorf("bot is connected to %d guilds, expected only %s", len(guilds), guildID)
	}
	for _, g := range guilds {
		if g.ID == guildID {
			return nil
		}
	}
	return fmt.Errorf("bot is not connected to guild %s", guildID)
}

// Run connects to discord, starts the scheduler and blocks until the
// process is interrupted.
func (b *Bot) Run() error {
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	if err := CheckGuild(b.Session, b.config.GuildID); err != nil {
		return err
	}
	b.StartedAt = time.Now()
	if err := b.Session.UpdateGameStatus(0, b.config.CommandPrefix+"help"); err != nil {
		log.Printf("Failed to set status: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := b.Scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Scheduler exited: %v", err)
		}
	}()

	var metrics *http.Server
	if addr := b.config.MetricsAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metrics = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			log.Printf("Serving metrics on %s", addr)
			if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Metrics listener failed: %v", err)
			}
		}()
	}

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	if err := utils.LogInfo(b.Session, b.config.Channels.Log, "System", "Startup", "Bot has started successfully."); err != nil {
		log.Printf("Failed to send startup log: %v", err)
	}
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	cancel()
	<-done
	if metrics != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := metrics.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error stopping metrics listener: %v", err)
		}
	}
	return nil
}
