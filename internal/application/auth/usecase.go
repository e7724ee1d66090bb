package auth

import (
	"context"
	"errors"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/GiancarloGO/master-color-api/internal/domain"
	"github.com/GiancarloGO/master-color-api/internal/domain/repository"
	"github.com/GiancarloGO/master-color-api/pkg/jwt"
	"github.com/GiancarloGO/master-color-api/pkg/logger"
)

// RoleClient es el rol que viaja en el token de un cliente de la tienda, en
// contraste con los roles del back office (admin, vendedor, almacenero).
const RoleClient = "client"

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase autentica operadores del back office y clientes de la tienda
// contra sus tablas respectivas y emite el JWT con el rol correspondiente.
type AuthUseCase struct {
	users   repository.UserRepository
	clients repository.ClientRepository
	jwtCfg  JWTConfig
	log     *logger.Logger
}

func NewAuthUseCase(users repository.UserRepository, clients repository.ClientRepository, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{users: users, clients: clients, jwtCfg: jwtCfg, log: log}
}

// Session es el resultado de un login exitoso.
type Session struct {
	Token string
	ID    int64
	Name  string
	Email string
	Role  string
}

// Login verifica email/password. Primero busca un usuario del back office;
// si el email no existe ahí, intenta como cliente. Credenciales malas y
// cuentas inexistentes responden lo mismo para no filtrar qué emails existen.
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}

	user, err := uc.users.GetByEmail(email)
	switch {
	case err == nil:
		if !user.Active {
			return nil, domain.ErrForbidden
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
			return nil, domain.ErrUnauthorized
		}
		token, err := jwt.Generate(uc.jwtCfg.Secret, strconv.FormatInt(user.ID, 10), user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
		if err != nil {
			return nil, err
		}
		uc.log.Info().Int64("user_id", user.ID).Str("role", user.Role).Msg("login de operador")
		return &Session{Token: token, ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}, nil
	case errors.Is(err, domain.ErrNotFound):
		// Puede ser un cliente.
	default:
		return nil, err
	}

	client, err := uc.clients.GetByEmail(email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(client.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, strconv.FormatInt(client.ID, 10), RoleClient, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("client_id", client.ID).Msg("login de cliente")
	return &Session{Token: token, ID: client.ID, Name: client.Name, Email: client.Email, Role: RoleClient}, nil
}
