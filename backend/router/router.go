package router

import (
	"net/http"
	"structura/backend/app/controllers"
	"structura/backend/app/middleware"
)

func NewRouter(httpCtrl *controllers.HTTPController, authCtrl *controllers.AuthController, adminCtrl *controllers.AdminController, structCtrl *controllers.StructureController, backupCtrl *controllers.BackupController, mw *middleware.Auth, storagePath string) http.Handler {
	mux := http.NewServeMux()
	// public
	mux.HandleFunc("/ping", httpCtrl.Ping)
	mux.HandleFunc("/login", authCtrl.Login)

	// archive downloads; URLs produced by the backup builder point here
	fs := http.FileServer(http.Dir(storagePath))
	mux.Handle("/public/backups/", http.StripPrefix("/public/backups/", fs))

	// admin-only endpoints
	mux.Handle("/admin/users", mw.RequireAdmin(http.HandlerFunc(adminCtrl.CreateUser)))

	// structures
	mux.Handle("/structures", mw.RequireAuth(http.HandlerFunc(structCtrl.List)))
	mux.Handle("/structures/create", mw.RequireAuth(http.HandlerFunc(structCtrl.Create)))
	mux.Handle("/structures/elements", mw.RequireAuth(http.HandlerFunc(structCtrl.AddElement)))
	mux.Handle("/structures/delete", mw.RequireAuth(http.HandlerFunc(structCtrl.Delete)))

	// backup lifecycle
	mux.Handle("/backups", mw.RequireAuth(http.HandlerFunc(backupCtrl.List)))
	mux.Handle("/backups/create", mw.RequireAuth(http.HandlerFunc(backupCtrl.Create)))
	mux.Handle("/backups/full", mw.RequireAuth(http.HandlerFunc(backupCtrl.CreateFull)))
	mux.Handle("/backups/restore", mw.RequireAuth(http.HandlerFunc(backupCtrl.Restore)))
	mux.Handle("/backups/restore/full", mw.RequireAuth(http.HandlerFunc(backupCtrl.RestoreFull)))
	mux.Handle("/backups/get", mw.RequireAuth(http.HandlerFunc(backupCtrl.Get)))
	mux.Handle("/backups/delete", mw.RequireAuth(http.HandlerFunc(backupCtrl.Delete)))

	return mux
}
