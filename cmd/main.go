package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pokernight-labs/pokernight-backend/internal/buyin"
	"github.com/pokernight-labs/pokernight-backend/internal/cleanup"
	"github.com/pokernight-labs/pokernight-backend/internal/game"
	"github.com/pokernight-labs/pokernight-backend/internal/keymgmt"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/escrow"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/firebase"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/ledger"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/middleware"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/model"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/notify"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/pubsub"
	"github.com/pokernight-labs/pokernight-backend/internal/profile"
	"github.com/pokernight-labs/pokernight-backend/internal/registration"
	"github.com/pokernight-labs/pokernight-backend/internal/settlement"
	"github.com/pokernight-labs/pokernight-backend/internal/ws"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	setupViper()
	setupZerolog()
	pubsub.InitPubSub()
	db := setupDb()
	apiRouter := setupApiRouter(db)

	defer func() { pubsub.CloseClient() }()

	firebase.InitFirebaseSdk()

	port := viper.Get("PORT").(string)
	server := &http.Server{
		Addr:         port,
		Handler:      apiRouter,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	server.ListenAndServe()
}

func setupDb() *gorm.DB {
	dbUrl := viper.Get("DB_URL").(string)

	// TranslateError maps postgres unique violations to
	// gorm.ErrDuplicatedKey, which the ledger store relies on for the
	// concurrent-join guard.
	db, err := gorm.Open(postgres.Open(dbUrl), &gorm.Config{TranslateError: true})

	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}

	migrateErr := db.AutoMigrate(
		&model.Game{},
		&model.Player{},
		&model.Transaction{},
		&model.User{},
		&model.CustodialWallet{},
	)
	if migrateErr != nil {
		log.Fatal().Err(migrateErr).Msg("Failed to migrate database schema")
	}

	sqlDb, _ := db.DB()

	sqlDb.SetMaxOpenConns(50)
	sqlDb.SetConnMaxLifetime(time.Minute * 10)

	return db
}

func setupApiRouter(db *gorm.DB) *gin.Engine {
	apiRouter := gin.Default()
	routerGroup := apiRouter.Group("/pokernight-api")

	middleware.RegisterGlobalMiddleware(apiRouter)

	store := ledger.NewGormStore(db)
	signers := keymgmt.NewCustodialSignerProvider(store)
	escrowClient := setupEscrowClient()
	hub := notify.NewHub()

	coordinator := &buyin.Coordinator{
		Store:   store,
		Escrow:  escrowClient,
		Signers: signers,
		Hub:     hub,
		Events:  buyin.PubsubPublisher{},
	}
	engine := &settlement.Engine{
		Store:   store,
		Escrow:  escrowClient,
		Signers: signers,
		Hub:     hub,
		Events:  settlement.PubsubPublisher{},
	}

	ws.RegisterRoutes(routerGroup, hub)
	registration.RegisterRoutes(routerGroup, store)
	profile.RegisterRoutes(routerGroup)
	game.RegisterRoutes(routerGroup, store, escrowClient, signers)
	buyin.RegisterRoutes(routerGroup, coordinator)
	settlement.RegisterRoutes(routerGroup, engine)
	cleanup.RegisterRoutes(routerGroup, store)

	return apiRouter
}

func setupEscrowClient() escrow.Client {
	client, err := escrow.NewEthClient(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize escrow client")
	}
	return client
}

func setupViper() {
	viper.AutomaticEnv()
	viper.SetConfigFile("./.env")
}

func setupZerolog() {
	zerolog.LevelFieldName = "severity"
	zerolog.TimestampFieldName = "time"
	zerolog.TimeFieldFormat = time.RFC3339Nano
}
