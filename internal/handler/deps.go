package handler

import (
	"pairchat/internal/app/ai"
	"pairchat/internal/app/message"
	"pairchat/internal/app/notify"
	"pairchat/internal/app/presence"
	"pairchat/internal/app/relation"
	"pairchat/internal/app/storage"
	"pairchat/internal/app/user"
	"pairchat/internal/configs"
)

type AppDeps struct {
	Config         *configs.AppConfig
	Users          *user.Store
	Messages       *message.Service
	Relations      *relation.Service
	Notifications  *notify.Store
	Registry       *presence.Registry
	StorageService storage.Service

	// AI is nil when no provider is configured.
	AI *ai.Provider
}
