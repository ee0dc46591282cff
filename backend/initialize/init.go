package initialize

import (
	"fmt"
	"net/http"
	"structura/backend/app/controllers"
	cryptoutil "structura/backend/app/crypto"
	"structura/backend/app/db"
	jwtutil "structura/backend/app/jwt"
	"structura/backend/app/middleware"
	"structura/backend/app/models"
	"structura/backend/app/repo"
	"structura/backend/app/services"
	"structura/backend/config"
	"structura/backend/global"
	"structura/backend/router"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	Cfg     config.Config
	DB      *gorm.DB
	Router  http.Handler
	Watcher *services.StorageWatcher
	Backups *services.BackupService
	Users   *services.UserService
}

func Build(configPath string) (*App, error) {
	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	global.Config = *cfg

	// Connect DB
	gdb, err := db.Connect(db.Config{Host: cfg.DB.Host, Port: cfg.DB.Port, User: cfg.DB.User, Password: cfg.DB.Pass, DBName: cfg.DB.Name})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	global.Mdb = gdb

	// Optional redis, used only for restore advisory locks
	if cfg.Redis.Addr != "" {
		global.Rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Pass})
	}

	// Migrate
	if err := gdb.AutoMigrate(
		&models.User{}, &models.Workspace{},
		&models.Structure{}, &models.Element{}, &models.Record{}, &models.StructureMap{},
		&models.Backup{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	// Cipher material comes from config (or ENCRYPTION_KEY / IV env vars)
	cipher, err := cryptoutil.New(cfg.Backup.EncryptionKey, cfg.Backup.IV)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	// Repositories
	userRepo := repo.NewUserRepository(gdb)
	workspaceRepo := repo.NewWorkspaceRepository(gdb)
	structureRepo := repo.NewStructureRepository(gdb)
	elementRepo := repo.NewElementRepository(gdb)
	recordRepo := repo.NewRecordRepository(gdb)
	backupRepo := repo.NewBackupRepository(gdb)

	// Services
	userSvc := services.NewUserService(userRepo, workspaceRepo)
	structureSvc := services.NewStructureService(structureRepo, elementRepo, recordRepo, workspaceRepo)
	backupSvc, err := services.NewBackupService(cfg.Backup, cipher, userRepo, structureRepo, backupRepo)
	if err != nil {
		return nil, fmt.Errorf("init backup service: %w", err)
	}
	restoreSvc := services.NewRestoreService(gdb, global.Rdb, cipher)
	if err := userSvc.EnsureAdmin("admin", "admin123"); err != nil {
		global.Logger.Warn().Err(err).Msg("ensure admin failed")
	}

	// Storage watcher keeps the registry aligned with the archive dir
	watcher, err := services.NewStorageWatcher(cfg.Backup.StoragePath, backupRepo)
	if err != nil {
		return nil, fmt.Errorf("init storage watcher: %w", err)
	}
	watcher.Start()

	// Controllers
	httpCtrl := controllers.NewHTTPController()
	signer := &jwtutil.Signer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, ExpMin: cfg.JWT.ExpMin}
	authCtrl := controllers.NewAuthController(userSvc, signer)
	adminCtrl := controllers.NewAdminController(userSvc)
	structCtrl := controllers.NewStructureController(structureSvc)
	backupCtrl := controllers.NewBackupController(backupSvc, restoreSvc)
	mw := &middleware.Auth{Signer: signer}

	// Router
	h := router.NewRouter(httpCtrl, authCtrl, adminCtrl, structCtrl, backupCtrl, mw, cfg.Backup.StoragePath)
	h = middleware.Logging(h)

	return &App{Cfg: *cfg, DB: gdb, Router: h, Watcher: watcher, Backups: backupSvc, Users: userSvc}, nil
}
