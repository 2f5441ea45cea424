package app

import (
	"fmt"

	authHTTP "github.com/estifie/Expense-Tracker-API/internal/auth/http"
	authUsecase "github.com/estifie/Expense-Tracker-API/internal/auth/usecase"
	expenseHTTP "github.com/estifie/Expense-Tracker-API/internal/expense/http"
	expenseRepository "github.com/estifie/Expense-Tracker-API/internal/expense/repository"
	expenseUsecase "github.com/estifie/Expense-Tracker-API/internal/expense/usecase"
	"github.com/estifie/Expense-Tracker-API/internal/http"
	subscriptionHTTP "github.com/estifie/Expense-Tracker-API/internal/subscription/http"
	subscriptionRepository "github.com/estifie/Expense-Tracker-API/internal/subscription/repository"
	subscriptionUsecase "github.com/estifie/Expense-Tracker-API/internal/subscription/usecase"
	"github.com/estifie/Expense-Tracker-API/internal/subscription/worker"
	tagHTTP "github.com/estifie/Expense-Tracker-API/internal/tag/http"
	tagRepository "github.com/estifie/Expense-Tracker-API/internal/tag/repository"
	tagUsecase "github.com/estifie/Expense-Tracker-API/internal/tag/usecase"
	userHTTP "github.com/estifie/Expense-Tracker-API/internal/user/http"
	userRepository "github.com/estifie/Expense-Tracker-API/internal/user/repository"
	userUsecase "github.com/estifie/Expense-Tracker-API/internal/user/usecase"
)

// UserRepository returns the user repository based on database driver.
func (c *Container) UserRepository() (userUsecase.UserRepository, error) {
	var err error
	c.userRepoInit.Do(func() {
		c.userRepo, err = c.initUserRepository()
		if err != nil {
			c.initErrors["userRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userRepo"]; exists {
		return nil, storedErr
	}
	return c.userRepo, nil
}

// TagRepository returns the tag repository based on database driver.
func (c *Container) TagRepository() (tagUsecase.TagRepository, error) {
	var err error
	c.tagRepoInit.Do(func() {
		c.tagRepo, err = c.initTagRepository()
		if err != nil {
			c.initErrors["tagRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tagRepo"]; exists {
		return nil, storedErr
	}
	return c.tagRepo, nil
}

// ExpenseRepository returns the expense repository based on database driver.
func (c *Container) ExpenseRepository() (expenseUsecase.ExpenseRepository, error) {
	var err error
	c.expenseRepoInit.Do(func() {
		c.expenseRepo, err = c.initExpenseRepository()
		if err != nil {
			c.initErrors["expenseRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["expenseRepo"]; exists {
		return nil, storedErr
	}
	return c.expenseRepo, nil
}

// SubscriptionRepository returns the subscription repository based on database driver.
func (c *Container) SubscriptionRepository() (subscriptionUsecase.SubscriptionRepository, error) {
	var err error
	c.subscriptionRepoInit.Do(func() {
		c.subscriptionRepo, err = c.initSubscriptionRepository()
		if err != nil {
			c.initErrors["subscriptionRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["subscriptionRepo"]; exists {
		return nil, storedErr
	}
	return c.subscriptionRepo, nil
}

// AuthUseCase returns the authentication use case.
func (c *Container) AuthUseCase() (authUsecase.AuthUseCase, error) {
	var err error
	c.authUseCaseInit.Do(func() {
		c.authUseCase, err = c.initAuthUseCase()
		if err != nil {
			c.initErrors["authUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authUseCase"]; exists {
		return nil, storedErr
	}
	return c.authUseCase, nil
}

// UserUseCase returns the user use case.
func (c *Container) UserUseCase() (userUsecase.UseCase, error) {
	var err error
	c.userUseCaseInit.Do(func() {
		c.userUseCase, err = c.initUserUseCase()
		if err != nil {
			c.initErrors["userUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userUseCase"]; exists {
		return nil, storedErr
	}
	return c.userUseCase, nil
}

// TagUseCase returns the tag use case.
func (c *Container) TagUseCase() (tagUsecase.UseCase, error) {
	var err error
	c.tagUseCaseInit.Do(func() {
		c.tagUseCase, err = c.initTagUseCase()
		if err != nil {
			c.initErrors["tagUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tagUseCase"]; exists {
		return nil, storedErr
	}
	return c.tagUseCase, nil
}

// ExpenseUseCase returns the expense use case.
func (c *Container) ExpenseUseCase() (expenseUsecase.UseCase, error) {
	var err error
	c.expenseUseCaseInit.Do(func() {
		c.expenseUseCase, err = c.initExpenseUseCase()
		if err != nil {
			c.initErrors["expenseUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["expenseUseCase"]; exists {
		return nil, storedErr
	}
	return c.expenseUseCase, nil
}

// SubscriptionUseCase returns the subscription use case.
func (c *Container) SubscriptionUseCase() (subscriptionUsecase.UseCase, error) {
	var err error
	c.subscriptionUseCaseInit.Do(func() {
		c.subscriptionUseCase, err = c.initSubscriptionUseCase()
		if err != nil {
			c.initErrors["subscriptionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["subscriptionUseCase"]; exists {
		return nil, storedErr
	}
	return c.subscriptionUseCase, nil
}

// HTTPServer returns the API HTTP server with the full route table.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the Prometheus metrics server, or nil when metrics
// are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		provider, providerErr := c.MetricsProvider()
		if providerErr != nil {
			c.initErrors["metricsServer"] = providerErr
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// BillingWorker returns the recurring billing worker, or nil when billing is
// disabled.
func (c *Container) BillingWorker() (*worker.BillingWorker, error) {
	var err error
	c.billingWorkerInit.Do(func() {
		if !c.config.BillingEnabled {
			return
		}

		subscriptionUseCase, useCaseErr := c.SubscriptionUseCase()
		if useCaseErr != nil {
			c.initErrors["billingWorker"] = useCaseErr
			return
		}

		c.billingWorker = worker.NewBillingWorker(subscriptionUseCase, c.config.BillingCronSpec, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["billingWorker"]; exists {
		return nil, storedErr
	}
	return c.billingWorker, nil
}

// initUserRepository creates the user repository instance.
func (c *Container) initUserRepository() (userUsecase.UserRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for user repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return userRepository.NewMySQLUserRepository(db), nil
	case "postgres":
		return userRepository.NewPostgreSQLUserRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initTagRepository creates the tag repository instance.
func (c *Container) initTagRepository() (tagUsecase.TagRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tag repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return tagRepository.NewMySQLTagRepository(db), nil
	case "postgres":
		return tagRepository.NewPostgreSQLTagRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initExpenseRepository creates the expense repository instance.
func (c *Container) initExpenseRepository() (expenseUsecase.ExpenseRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for expense repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return expenseRepository.NewMySQLExpenseRepository(db), nil
	case "postgres":
		return expenseRepository.NewPostgreSQLExpenseRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initSubscriptionRepository creates the subscription repository instance.
func (c *Container) initSubscriptionRepository() (subscriptionUsecase.SubscriptionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for subscription repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return subscriptionRepository.NewMySQLSubscriptionRepository(db), nil
	case "postgres":
		return subscriptionRepository.NewPostgreSQLSubscriptionRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuthUseCase creates the authentication use case with all its dependencies.
func (c *Container) initAuthUseCase() (authUsecase.AuthUseCase, error) {
	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for auth use case: %w", err)
	}

	tokenService, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for auth use case: %w", err)
	}

	useCase, err := authUsecase.NewAuthUseCase(userRepo, tokenService)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth use case: %w", err)
	}

	return useCase, nil
}

// initUserUseCase creates the user use case with all its dependencies.
func (c *Container) initUserUseCase() (userUsecase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for user use case: %w", err)
	}

	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for user use case: %w", err)
	}

	return userUsecase.NewUserUseCase(txManager, userRepo), nil
}

// initTagUseCase creates the tag use case with all its dependencies.
func (c *Container) initTagUseCase() (tagUsecase.UseCase, error) {
	tagRepo, err := c.TagRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get tag repository for tag use case: %w", err)
	}

	return tagUsecase.NewTagUseCase(tagRepo), nil
}

// initExpenseUseCase creates the expense use case with all its dependencies.
func (c *Container) initExpenseUseCase() (expenseUsecase.UseCase, error) {
	expenseRepo, err := c.ExpenseRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get expense repository for expense use case: %w", err)
	}

	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for expense use case: %w", err)
	}

	tagRepo, err := c.TagRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get tag repository for expense use case: %w", err)
	}

	return expenseUsecase.NewExpenseUseCase(expenseRepo, userRepo, tagRepo), nil
}

// initSubscriptionUseCase creates the subscription use case with all its dependencies.
func (c *Container) initSubscriptionUseCase() (subscriptionUsecase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for subscription use case: %w", err)
	}

	subscriptionRepo, err := c.SubscriptionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription repository for subscription use case: %w", err)
	}

	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for subscription use case: %w", err)
	}

	expenseUseCase, err := c.ExpenseUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get expense use case for subscription use case: %w", err)
	}

	return subscriptionUsecase.NewSubscriptionUseCase(txManager, subscriptionRepo, userRepo, expenseUseCase), nil
}

// initHTTPServer creates the API HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	authUseCase, err := c.AuthUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth use case for http server: %w", err)
	}

	userUseCase, err := c.UserUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user use case for http server: %w", err)
	}

	tagUseCase, err := c.TagUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get tag use case for http server: %w", err)
	}

	expenseUseCase, err := c.ExpenseUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get expense use case for http server: %w", err)
	}

	subscriptionUseCase, err := c.SubscriptionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription use case for http server: %w", err)
	}

	recorder, err := c.AuthzRecorder()
	if err != nil {
		return nil, fmt.Errorf("failed to get authz recorder for http server: %w", err)
	}

	handlers := http.Handlers{
		Auth:         authHTTP.NewAuthHandler(authUseCase, logger),
		User:         userHTTP.NewUserHandler(userUseCase, logger),
		Expense:      expenseHTTP.NewExpenseHandler(expenseUseCase, c.CurrencyService(), logger),
		Tag:          tagHTTP.NewTagHandler(tagUseCase, logger),
		Subscription: subscriptionHTTP.NewSubscriptionHandler(subscriptionUseCase, logger),
		AuthUseCase:  authUseCase,
	}

	if recorder != nil {
		handlers.Recorder = recorder
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}
	if provider != nil {
		handlers.MeterProvider = provider.MeterProvider()
	}

	return http.NewServer(c.config, db, logger, handlers), nil
}
