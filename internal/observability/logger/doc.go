// Package logger provee un logger zap singleton con constructores de campos
// tipados para mantener nombres consistentes en todo el servicio.
//
// Uso típico:
//
//	logger.Init(logger.Config{Env: "prod", Level: "info", ServiceName: "ledgerconnect"})
//	defer logger.Sync()
//
//	log := logger.Named("broadcast")
//	log.Info("lote reenviado", logger.Identity(user), logger.Count(len(ops)))
package logger
