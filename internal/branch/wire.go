package branch

import (
	"database/sql"

	"go.uber.org/zap"
)

func NewModule(db *sql.DB, perms Permissions, logger *zap.Logger) *Controller {
	svc := NewService(NewSQLRepository(db), perms, logger)
	return NewController(svc, logger)
}
