package handler

import (
	"roomchat/internal/app/chat"
	"roomchat/internal/configs"
)

type AppDeps struct {
	Coordinator *chat.Coordinator
	Config      *configs.AppConfig
}
