// Package logger provides a singleton Zap logger with context-based scoping.
//
// # Design Decisions
//
//   - Singleton: Una sola instancia global inicializada con Init().
//   - Context Scoping: Cada request puede tener su propio logger "scoped" con campos
//     adicionales (request_id, workspace_id, username) sin crear un nuevo core.
//   - Environments: "dev" usa consola con colores, "prod" usa JSON.
//   - Levels: debug, info, warn, error (configurable via LOG_LEVEL).
//
// # Usage
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{
//	    Env:   cfg.App.Env,   // "dev" o "prod"
//	    Level: cfg.Log.Level, // "debug", "info", "warn", "error"
//	})
//	defer logger.Sync()
//
// En services/flows (con contexto):
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Login"))
//	log.Info("login ok", logger.Username(name))
//
// Sin contexto (fallback a singleton):
//
//	logger.L().Info("console started")
package logger
