package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/omnity-hq/omnity-cli/internal/adapters/querycache"
	"github.com/omnity-hq/omnity-cli/internal/adapters/realtime"
	statusadapter "github.com/omnity-hq/omnity-cli/internal/adapters/render/status"
	"github.com/omnity-hq/omnity-cli/internal/adapters/session"
	"github.com/omnity-hq/omnity-cli/internal/adapters/transport"
	"github.com/omnity-hq/omnity-cli/internal/application"
	"github.com/omnity-hq/omnity-cli/internal/domain"
	"github.com/omnity-hq/omnity-cli/internal/ports"
)

type app struct {
	cfg              config
	sessions         *session.Store
	cache            *querycache.Cache
	auth             *application.AuthService
	projects         *application.ProjectService
	tasks            *application.TaskService
	requirements     *application.RequirementService
	notifications    *application.NotificationCenter
	overviewRenderer func(statusadapter.Overview, statusadapter.RenderOptions) (string, error)
	newChannel       func(onEvent func(domain.Event)) (*realtime.Channel, error)
	now              func() time.Time
}

func wireApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	clock := ports.SystemClock{}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	repo := session.NewRepository(cfg.DataDir)
	sessions, err := session.NewStore(repo, clock, cfg.APIURL, httpClient)
	if err != nil {
		return nil, fmt.Errorf("wire session store: %w", err)
	}

	client, err := transport.NewClient(transport.Config{BaseURL: cfg.APIURL, Timeout: cfg.Timeout}, sessions)
	if err != nil {
		return nil, fmt.Errorf("wire transport client: %w", err)
	}

	cache := querycache.New(querycache.Options{}, clock)
	notifications := application.NewNotificationCenter(0)

	return &app{
		cfg:              cfg,
		sessions:         sessions,
		cache:            cache,
		auth:             application.NewAuthService(client, sessions, cache),
		projects:         application.NewProjectService(client, cache),
		tasks:            application.NewTaskService(client, cache),
		requirements:     application.NewRequirementService(client, cache),
		notifications:    notifications,
		overviewRenderer: statusadapter.Render,
		newChannel: func(onEvent func(domain.Event)) (*realtime.Channel, error) {
			return realtime.NewChannel(realtime.Options{
				URL:     cfg.WSURL,
				OnEvent: onEvent,
			}, sessions, cache, notifications, clock)
		},
		now: time.Now,
	}, nil
}
