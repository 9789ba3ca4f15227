package main

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/artur/relay-bot/internal/bot"
	"github.com/artur/relay-bot/internal/config"
	"github.com/artur/relay-bot/internal/database"
	"github.com/artur/relay-bot/internal/database/repository"
	"github.com/artur/relay-bot/internal/handler"
	"github.com/artur/relay-bot/internal/logger"
	"github.com/artur/relay-bot/internal/translator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("relay-bot", false)
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Init("relay-bot", cfg.Debug)

	db, err := database.New(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	userRepo := repository.NewUserRepository(db.DB)
	mappingRepo := repository.NewMappingRepository(db.DB)
	statsRepo := repository.NewStatsRepository(db.DB)

	tr := translator.New(cfg.Translator.APIKey, cfg.Translator.BaseURL, cfg.Translator.Model)

	b, err := bot.New(cfg.Telegram.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}

	langs := config.SupportedLanguages()
	adminID := cfg.Telegram.AdminChatID

	// Order encodes routing precedence: admin traffic first, then
	// onboarding, then the relay catch-all for guest messages.
	b.RegisterHandler(handler.NewAdminCommandHandler(userRepo, mappingRepo, statsRepo, adminID))
	b.RegisterHandler(handler.NewAdminReplyHandler(mappingRepo, adminID))
	b.RegisterHandler(handler.NewOnboardingHandler(userRepo, langs, adminID))
	b.RegisterHandler(handler.NewRelayHandler(userRepo, mappingRepo, tr, langs, adminID, cfg.AdminLang()))

	if cfg.MappingRetentionDays > 0 {
		go pruneMappings(mappingRepo, cfg.MappingRetentionDays)
	}

	b.NotifyStartup(adminID)
	b.Run()
}

// pruneMappings deletes reply correlations older than the retention window,
// once a day. It runs for the life of the process; the bot has no graceful
// shutdown path beyond being killed. Replies to pruned messages surface the
// not-found notice.
func pruneMappings(mappings *repository.MappingRepository, retentionDays int) {
	retention := time.Duration(retentionDays) * 24 * time.Hour

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		cutoff := time.Now().Add(-retention)
		deleted, err := mappings.DeleteOlderThan(cutoff)
		if err != nil {
			log.Error().Err(err).Msg("failed to prune mappings")
		} else if deleted > 0 {
			log.Info().Int64("deleted", deleted).Msg("pruned old mappings")
		}
		<-ticker.C
	}
}
