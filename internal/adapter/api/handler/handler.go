package handler

import (
	"github.com/Elmalamb/vdm/internal/usecase"
)

var (
	authHandler       *AuthHandler
	adHandler         *AdHandler
	moderationHandler *ModerationHandler
	threadHandler     *ThreadHandler
	functionHandler   *FunctionHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	adUseCase *usecase.AdUseCase,
	threadUseCase *usecase.ThreadUseCase,
	relayUseCase *usecase.RelayUseCase,
) {
	authHandler = NewAuthHandler(authUseCase)
	adHandler = NewAdHandler(adUseCase)
	moderationHandler = NewModerationHandler(adUseCase)
	threadHandler = NewThreadHandler(threadUseCase)
	functionHandler = NewFunctionHandler(adUseCase, relayUseCase)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetAdHandler() *AdHandler {
	return adHandler
}

func GetModerationHandler() *ModerationHandler {
	return moderationHandler
}

func GetThreadHandler() *ThreadHandler {
	return threadHandler
}

func GetFunctionHandler() *FunctionHandler {
	return functionHandler
}
