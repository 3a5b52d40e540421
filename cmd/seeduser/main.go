// cmd/seeduser/main.go: crea o re-acredita la cuenta super_admin.
// Uso: SUPERADMIN_USERNAME=root SUPERADMIN_EMAIL=root@example.com SUPERADMIN_PASSWORD=... go run ./cmd/seeduser
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"betadmin/internal/apierror"
	"betadmin/internal/config"
	"betadmin/internal/infra"
	"betadmin/internal/model"
	"betadmin/internal/repository"
	"betadmin/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.SuperAdminUsername == "" || cfg.SuperAdminEmail == "" || cfg.SuperAdminPassword == "" {
		log.Fatal().Msg("SUPERADMIN_USERNAME, SUPERADMIN_EMAIL y SUPERADMIN_PASSWORD son requeridos")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	roleDefaults := repository.NewRoleDefaultsRepository(db)

	existing, err := users.FindByUsername(ctx, cfg.SuperAdminUsername)
	switch {
	case errors.Is(err, apierror.ErrNotFound):
		svc := service.NewUserService(users, repository.NewBettingCenterRepository(db), roleDefaults, nil, cfg)
		if _, err := svc.Create(ctx, cfg.SuperAdminUsername, cfg.SuperAdminEmail, cfg.SuperAdminPassword, model.RoleSuperAdmin); err != nil {
			log.Fatal().Err(err).Msg("create super admin")
		}
		fmt.Printf("Usuario '%s' creado como super_admin\n", cfg.SuperAdminUsername)
	case err != nil:
		log.Fatal().Err(err).Msg("lookup super admin")
	default:
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SuperAdminPassword), cfg.BcryptCost)
		if err != nil {
			log.Fatal().Err(err).Msg("bcrypt")
		}
		if err := users.UpdatePassword(ctx, existing.ID, string(hash)); err != nil {
			log.Fatal().Err(err).Msg("update password")
		}
		if existing.Role != model.RoleSuperAdmin {
			perms, err := roleDefaults.Get(ctx, model.RoleSuperAdmin)
			if err != nil {
				log.Fatal().Err(err).Msg("load role defaults")
			}
			if err := users.ChangeRole(ctx, existing.ID, model.RoleSuperAdmin, perms); err != nil {
				log.Fatal().Err(err).Msg("change role")
			}
		}
		fmt.Printf("Usuario '%s' actualizado\n", cfg.SuperAdminUsername)
	}
}
