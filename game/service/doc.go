// Package service provides the business logic layer for Num Dash.
//
// The service package implements:
//   - Multi-session game management
//   - Level catalogue loading
//   - Move processing by direction or destination cell
//   - Level transitions and high scores
//   - Event history tracking
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages catalogue loading and validation.
// Game is a running game; the session package's Controller implements it.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and the
// game itself. Each session owns its own Game with an independent board, glitch
// timer and event history. Invalid moves are not errors: they come back with an
// "ignored" or "blocked" outcome and an unchanged snapshot.
//
// Usage:
//
//	sessionMgr := session.NewManager(session.WithRecorder(recorder))
//	configMgr := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, store)
//
//	info, err := gameService.CreateSession(ctx, service.CreateSessionOptions{ConfigName: "classic"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "right")
package service
