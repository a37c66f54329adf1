package order

import (
	"database/sql"

	"go.uber.org/zap"

	userrepo "haulage/internal/account/repository"
	"haulage/internal/branch"
	"haulage/internal/config"
	"haulage/internal/lifecycle"
	"haulage/internal/order/controller"
	orderrepo "haulage/internal/order/repository"
	"haulage/internal/order/service"
	"haulage/internal/order/usecase"
)

func NewModule(db *sql.DB, policy *lifecycle.Policy, cfg *config.Config, logger *zap.Logger) *controller.OrderController {
	orderRepo := orderrepo.NewSQLOrderRepository(db)
	branchRepo := branch.NewSQLRepository(db)

	orderSvc := service.NewOrderService(orderRepo, branchRepo, policy, logger)
	updateUC := usecase.NewUpdateOrderUseCase(
		orderRepo,
		branchRepo,
		userrepo.NewSQLUserRepository(db),
		policy,
		logger,
		cfg.Order.MaxRetryAttempts,
	)

	return controller.NewOrderController(orderSvc, updateUC, logger)
}
