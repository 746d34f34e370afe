package service

import (
	"strings"

	"bot-swatter/internal/logger"
	"bot-swatter/internal/models"
)

// RecordAction stores an enforcement action in the audit trail, if the
// database is enabled.
func RecordAction(subreddit, username, action, reason string, commentCount int, signals []string) {
	if actionRepository == nil {
		return
	}
	record := &models.ActionRecord{
		Subreddit:    subreddit,
		Username:     username,
		Action:       action,
		Reason:       reason,
		CommentCount: commentCount,
		Signals:      strings.Join(signals, ","),
	}
	if err := actionRepository.Create(record); err != nil {
		logger.Warningf("Error creating action record: %v", err)
	}
}

// GetActionsByUser retrieves the recorded actions against a user
func GetActionsByUser(username string) ([]*models.ActionRecord, error) {
	if actionRepository == nil {
		return nil, nil
	}
	return actionRepository.GetByUser(username)
}
