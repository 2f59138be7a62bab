package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"task-manager/internal/domain"
	"task-manager/internal/email"
	"task-manager/internal/repository"
)

// UserService coordina reglas de negocio para cuentas de usuario.
type UserService struct {
	logger       *zap.Logger
	users        repository.UserRepository
	emailSender  email.Sender
	avatars      *AvatarProcessor
	loginLimiter LoginRateLimiter
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, emailSender email.Sender, loginLimiter LoginRateLimiter) *UserService {
	return &UserService{
		logger:       logger,
		users:        users,
		emailSender:  emailSender,
		avatars:      NewAvatarProcessor(),
		loginLimiter: loginLimiter,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Age      int
	Password string
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidName        = errors.New("invalid name")
	ErrInvalidAge         = errors.New("invalid age")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidUpdate      = errors.New("invalid update")
	ErrNoAvatar           = errors.New("no avatar")
	ErrRateLimited        = errors.New("rate limited")
)

// allowedUpdates es la allow-list exacta de campos mutables del perfil.
var allowedUpdates = map[string]bool{
	"name":     true,
	"email":    true,
	"password": true,
	"age":      true,
}

// Register crea la cuenta, hashea el password antes de persistir y dispara
// el correo de bienvenida de manera asincrona.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	emailAddr := normalizeEmail(input.Email)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.User{}, ErrInvalidName
	}
	if input.Age < 0 {
		return domain.User{}, ErrInvalidAge
	}
	if err := validatePassword(input.Password); err != nil {
		return domain.User{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        emailAddr,
		Age:          input.Age,
		PasswordHash: string(hashBytes),
		Tokens:       []string{},
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	s.notify(func(ctx context.Context) error {
		return s.emailSender.SendWelcome(ctx, user.Email, user.Name)
	})

	return user, nil
}

// Authenticate falla con el mismo error para email inexistente y password
// incorrecto, asi la respuesta no delata si la cuenta existe.
func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	if s.loginLimiter != nil && !s.loginLimiter.Allow(emailAddr) {
		return domain.User{}, ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID resuelve el usuario para el middleware de autenticacion.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// PersistToken agrega un token recien emitido a la lista activa del usuario.
func (s *UserService) PersistToken(ctx context.Context, userID, token string) error {
	return s.users.AppendToken(ctx, userID, token)
}

// Logout revoca exactamente el token de la sesion actual.
func (s *UserService) Logout(ctx context.Context, userID, token string) error {
	return s.users.RemoveToken(ctx, userID, token)
}

// LogoutAll revoca todas las sesiones vaciando la lista de tokens.
func (s *UserService) LogoutAll(ctx context.Context, userID string) error {
	return s.users.ClearTokens(ctx, userID)
}

// Update aplica la allow-list {name, email, password, age}. Cualquier otra
// clave rechaza el request completo antes de mutar nada.
func (s *UserService) Update(ctx context.Context, user domain.User, updates map[string]any) (domain.User, error) {
	if len(updates) == 0 {
		return domain.User{}, ErrInvalidUpdate
	}
	for key := range updates {
		if !allowedUpdates[key] {
			return domain.User{}, ErrInvalidUpdate
		}
	}

	if raw, ok := updates["name"]; ok {
		name, ok := raw.(string)
		if !ok || strings.TrimSpace(name) == "" {
			return domain.User{}, ErrInvalidName
		}
		user.Name = strings.TrimSpace(name)
	}
	if raw, ok := updates["email"]; ok {
		addr, ok := raw.(string)
		if !ok {
			return domain.User{}, ErrInvalidEmail
		}
		addr = normalizeEmail(addr)
		if addr == "" || !strings.Contains(addr, "@") {
			return domain.User{}, ErrInvalidEmail
		}
		user.Email = addr
	}
	if raw, ok := updates["age"]; ok {
		age, ok := toInt(raw)
		if !ok || age < 0 {
			return domain.User{}, ErrInvalidAge
		}
		user.Age = age
	}
	if raw, ok := updates["password"]; ok {
		password, ok := raw.(string)
		if !ok {
			return domain.User{}, ErrWeakPassword
		}
		if err := validatePassword(password); err != nil {
			return domain.User{}, err
		}
		hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return domain.User{}, err
		}
		user.PasswordHash = string(hashBytes)
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}
	return user, nil
}

// Delete elimina la cuenta (las tareas caen en cascada) y dispara el correo
// de cancelacion de manera asincrona.
func (s *UserService) Delete(ctx context.Context, user domain.User) error {
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}
	s.notify(func(ctx context.Context) error {
		return s.emailSender.SendCancellation(ctx, user.Email, user.Name)
	})
	return nil
}

// SetAvatar normaliza la imagen subida a PNG 250x250 y la persiste.
func (s *UserService) SetAvatar(ctx context.Context, userID, filename string, data []byte) error {
	normalized, err := s.avatars.Normalize(filename, data)
	if err != nil {
		return err
	}
	return s.users.UpdateAvatar(ctx, userID, normalized)
}

// DeleteAvatar limpia el avatar; falla si el usuario no tiene uno.
func (s *UserService) DeleteAvatar(ctx context.Context, user domain.User) error {
	if len(user.Avatar) == 0 {
		return ErrNoAvatar
	}
	return s.users.UpdateAvatar(ctx, user.ID, nil)
}

// GetAvatar devuelve el PNG almacenado de cualquier usuario por id.
func (s *UserService) GetAvatar(ctx context.Context, userID string) ([]byte, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if len(user.Avatar) == 0 {
		return nil, ErrNoAvatar
	}
	return user.Avatar, nil
}

// notify ejecuta el envio de correo sin bloquear la operacion principal.
// Las fallas solo se loguean.
func (s *UserService) notify(send func(ctx context.Context) error) {
	if s.emailSender == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := send(ctx); err != nil && s.logger != nil {
			s.logger.Warn("account email failed", zap.Error(err))
		}
	}()
}

func validatePassword(password string) error {
	password = strings.TrimSpace(password)
	if len(password) < 7 {
		return ErrWeakPassword
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return ErrWeakPassword
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func toInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}
