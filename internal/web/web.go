package web

import (
	"github.com/opencreds/boostnet/internal/config"
	"github.com/opencreds/boostnet/internal/service"
)

type Handler struct {
	Config  *config.Configuration
	service service.Service
}

func New(config *config.Configuration, service service.Service) Handler {
	return Handler{
		Config:  config,
		service: service,
	}
}
