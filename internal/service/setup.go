package service

import (
	"bot-swatter/internal/logger"
	"bot-swatter/internal/storage"
)

var actionRepository *storage.ActionRepository

// InitRepositories initializes the repositories if database is enabled
func InitRepositories() {
	if storage.DB != nil {
		actionRepository = storage.NewActionRepository(storage.DB)
		if err := actionRepository.MigrateTable(); err != nil {
			logger.Warningf("Error migrating ActionRecord table: %v", err)
		}
	}
}
