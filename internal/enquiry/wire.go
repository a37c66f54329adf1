package enquiry

import (
	"database/sql"

	"go.uber.org/zap"
)

func NewModule(db *sql.DB, perms Permissions, logger *zap.Logger) *Controller {
	return NewController(NewService(NewSQLRepository(db), perms, logger), logger)
}
