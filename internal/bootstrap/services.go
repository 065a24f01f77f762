package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/osse101/IdleCultivation_Go/internal/config"
	"github.com/osse101/IdleCultivation_Go/internal/cultivation"
	"github.com/osse101/IdleCultivation_Go/internal/event"
	"github.com/osse101/IdleCultivation_Go/internal/eventlog"
	"github.com/osse101/IdleCultivation_Go/internal/game"
	"github.com/osse101/IdleCultivation_Go/internal/luck"
	"github.com/osse101/IdleCultivation_Go/internal/metrics"
	"github.com/osse101/IdleCultivation_Go/internal/production"
	"github.com/osse101/IdleCultivation_Go/internal/session"
	"github.com/osse101/IdleCultivation_Go/internal/utils"
)

// Services holds every wired application service
type Services struct {
	Luck             luck.Service
	Cultivation      cultivation.Service
	Production       production.Service
	ProductionEngine *production.Engine
	Sessions         *session.Manager
	Game             game.Service
	EventLog         eventlog.Service
}

// LoadGameConfig reads the gameplay tunables and applies the environment
// overrides for session reaping.
func LoadGameConfig(cfg *config.Config) (config.GameConfig, error) {
	gameCfg, err := config.LoadGameConfig(cfg.GameConfigPath)
	if err != nil {
		return config.GameConfig{}, fmt.Errorf("%s: %w", ErrMsgFailedLoadGameConfig, err)
	}
	if cfg.SessionIdleTimeout > 0 {
		gameCfg.Session.IdleTimeoutMinutes = int(cfg.SessionIdleTimeout.Minutes())
	}
	if cfg.SessionReapSchedule != "" {
		gameCfg.Session.ReapSchedule = cfg.SessionReapSchedule
	}

	slog.Info(LogMsgGameConfigLoaded,
		"path", cfg.GameConfigPath,
		"tick_interval_seconds", gameCfg.Session.TickIntervalSeconds,
		"offline_cultivation", gameCfg.Session.OfflineCultivationEnabled,
		"idle_timeout_minutes", gameCfg.Session.IdleTimeoutMinutes)
	return gameCfg, nil
}

// BuildServices wires the engines, domain services, session manager and game
// facade over the selected storage. The online-session gauge is registered on
// reg when it is non-nil.
func BuildServices(cfg *config.Config, gameCfg config.GameConfig, storage *Storage, publisher event.Publisher, reg prometheus.Registerer) (*Services, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	rng := utils.NewSecureSeededRNG()

	luckEngine := luck.NewEngine(gameCfg.Luck)
	luckService, err := luck.NewService(storage.Characters, luckEngine, rng, publisher, cfg.SignInResetCron, loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedCreateLuck, err)
	}

	cultivationService := cultivation.NewService(
		storage.Characters,
		cultivation.NewEngine(gameCfg.Cultivation, luckEngine),
		rng,
		publisher,
	)

	productionEngine := production.NewEngine(gameCfg.Production)
	productionService := production.NewService(storage.Characters, storage.Production, productionEngine, rng, publisher)

	sessions := session.NewManager(
		gameCfg.Session,
		session.NewMemoryStore(),
		storage.Characters,
		cultivationService,
		productionService,
		publisher,
	)

	if reg != nil {
		if err := metrics.RegisterOnlineSessions(reg, sessions.OnlineCount); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedRegisterMetrics, err)
		}
	}

	gameService := game.NewService(
		storage.Characters,
		sessions,
		cultivationService,
		luckService,
		productionService,
		publisher,
		rng,
	)

	return &Services{
		Luck:             luckService,
		Cultivation:      cultivationService,
		Production:       productionService,
		ProductionEngine: productionEngine,
		Sessions:         sessions,
		Game:             gameService,
		EventLog:         eventlog.NewService(storage.GameLog),
	}, nil
}
