package domain

import (
	"github.com/frag7/intake-api/config"
	"github.com/frag7/intake-api/domain/monitoring"
	"github.com/frag7/intake-api/domain/signal"
	"github.com/frag7/intake-api/domain/status"
	"github.com/frag7/intake-api/pkg/discord"
	"github.com/frag7/intake-api/pkg/turnstile"
)

func SetupCoreDomain(appConfig *config.ApplicationConfig) {
	verifier := turnstile.NewClient(config.GetValueFromEnvironmentVariable("TURNSTILE_SECRET_KEY", ""))
	webhook := discord.NewClient(config.GetValueFromEnvironmentVariable("DISCORD_WEBHOOK_URL", ""))
	notifier := signal.NewDiscordNotifier(appConfig.Logger, webhook)

	appConfig.RouterService.MountController(monitoring.NewMonitoringController(appConfig.DB, appConfig.Logger, appConfig.Cache))
	appConfig.RouterService.MountController(signal.NewSignalController(appConfig.DB, appConfig.Logger, verifier, notifier))
	appConfig.RouterService.MountController(status.NewStatusController(appConfig.DB, appConfig.Logger))
}
