package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
	"github.com/jhoicas/inventario-sync/internal/domain/repository"
	"github.com/jhoicas/inventario-sync/pkg/jwt"
)

// Authenticator parte del gateway que usa el Session Store.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*entity.LoginResult, error)
	Revoke(ctx context.Context, token string) error
	GetWarehouse(ctx context.Context, id int64) (*entity.Warehouse, error)
}

// WarningFunc canal lateral para avisos que no son errores de la operación
// (p. ej. no se pudo persistir la sesión).
type WarningFunc func(err error)

// Option configura el Store.
type Option func(*Store)

// WithWarningFunc registra el receptor de avisos de persistencia.
func WithWarningFunc(fn WarningFunc) Option {
	return func(s *Store) { s.onWarning = fn }
}

// WithRevoke activa el aviso de revocación (best effort) al hacer logout.
func WithRevoke(enabled bool) Option {
	return func(s *Store) { s.revoke = enabled }
}

// WithClock reemplaza el reloj (tests de expiración).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store dueño exclusivo de la sesión: token, usuario y bodega activa.
// Cada cambio en memoria se escribe en el almacenamiento durable dentro de la misma sección crítica.
type Store struct {
	auth      Authenticator
	storage   repository.SessionStorage
	log       zerolog.Logger
	onWarning WarningFunc
	revoke    bool
	now       func() time.Time

	mu      sync.RWMutex
	current entity.Session
}

var _ repository.TokenSource = (*Store)(nil)

// NewStore construye el Session Store. La sesión arranca vacía hasta llamar Restore o Login.
func NewStore(auth Authenticator, storage repository.SessionStorage, log zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		auth:    auth,
		storage: storage,
		log:     log.With().Str("component", "session").Logger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token implementa repository.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// Current copia de la sesión actual.
func (s *Store) Current() entity.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// CurrentWarehouse bodega activa; ok=false si la sesión no está limitada a una bodega.
func (s *Store) CurrentWarehouse() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.current.Authenticated() || !s.current.HasWarehouse() {
		return 0, false
	}
	return s.current.WarehouseID, true
}

// Login autentica contra el servicio de catálogo. Si falla, la sesión previa queda intacta
// y se devuelve *domain.AuthError. Un fallo al persistir no es error: se avisa por WarningFunc.
func (s *Store) Login(ctx context.Context, username, password string) (entity.Session, error) {
	if username == "" || password == "" {
		return entity.Session{}, &domain.AuthError{Reason: "usuario y contraseña requeridos"}
	}
	res, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return entity.Session{}, &domain.AuthError{Reason: loginFailureReason(err), Cause: err}
	}
	if res == nil || res.Token == "" {
		return entity.Session{}, &domain.AuthError{Reason: "respuesta de login sin token"}
	}
	user := res.User
	if user.Username == "" {
		user.Username = username
	}
	next := entity.Session{
		Token:         res.Token,
		User:          &user,
		WarehouseID:   res.WarehouseID,
		WarehouseName: res.WarehouseName,
	}

	s.mu.Lock()
	s.current = next
	persistErr := s.persistLocked(ctx, next)
	s.mu.Unlock()

	if persistErr != nil {
		s.warn(fmt.Errorf("persistir sesión: %w", persistErr))
	}
	s.log.Info().
		Str("username", user.Username).
		Int64("warehouse_id", next.WarehouseID).
		Msg("sesión iniciada")
	return next.Clone(), nil
}

// Logout limpia memoria y almacenamiento. Idempotente. Si está activado, envía un aviso de
// revocación al servicio cuyo resultado solo se registra.
func (s *Store) Logout(ctx context.Context) {
	token := s.clear(ctx)
	if token == "" || !s.revoke {
		return
	}
	if err := s.auth.Revoke(ctx, token); err != nil {
		s.log.Debug().Err(err).Msg("aviso de revocación fallido (ignorado)")
	}
}

// Invalidate destruye la sesión tras un Unauthorized del servicio; no contacta al servicio.
func (s *Store) Invalidate(ctx context.Context) {
	if token := s.clear(ctx); token != "" {
		s.log.Warn().Msg("sesión invalidada por el servicio de catálogo")
	}
}

func (s *Store) clear(ctx context.Context) string {
	s.mu.Lock()
	token := s.current.Token
	s.current = entity.Session{}
	var errs []error
	for _, key := range repository.SessionKeys {
		if err := s.storage.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	s.mu.Unlock()

	if len(errs) > 0 {
		s.warn(fmt.Errorf("borrar sesión persistida: %w", errors.Join(errs...)))
	}
	return token
}

// Restore reconstruye la sesión desde el almacenamiento durable, sin red.
// Sin token guardado (o con datos corruptos o un JWT expirado) la sesión queda sin autenticar.
func (s *Store) Restore(ctx context.Context) entity.Session {
	restored, err := s.load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("no se pudo restaurar la sesión; se continúa sin autenticar")
		restored = entity.Session{}
	}
	if restored.Authenticated() && jwt.Expired(restored.Token, s.now()) {
		s.log.Info().Msg("token guardado expirado; se descarta")
		s.clear(ctx)
		restored = entity.Session{}
	}

	s.mu.Lock()
	s.current = restored
	s.mu.Unlock()
	return restored.Clone()
}

func (s *Store) load(ctx context.Context) (entity.Session, error) {
	token, ok, err := s.storage.Get(ctx, repository.KeyToken)
	if err != nil {
		return entity.Session{}, fmt.Errorf("leer token: %w", err)
	}
	if !ok || token == "" {
		return entity.Session{}, nil
	}
	rawUser, ok, err := s.storage.Get(ctx, repository.KeyUser)
	if err != nil {
		return entity.Session{}, fmt.Errorf("leer usuario: %w", err)
	}
	if !ok || rawUser == "" {
		// token sin usuario rompe el invariante; se trata como sesión ausente
		return entity.Session{}, nil
	}
	var user entity.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return entity.Session{}, fmt.Errorf("decodificar usuario: %w", err)
	}
	sess := entity.Session{Token: token, User: &user}

	if raw, ok, err := s.storage.Get(ctx, repository.KeyWarehouseID); err != nil {
		return entity.Session{}, fmt.Errorf("leer bodega: %w", err)
	} else if ok && raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return entity.Session{}, fmt.Errorf("bodega inválida %q: %w", raw, err)
		}
		sess.WarehouseID = id
	}
	if name, ok, err := s.storage.Get(ctx, repository.KeyWarehouseName); err != nil {
		return entity.Session{}, fmt.Errorf("leer nombre de bodega: %w", err)
	} else if ok {
		sess.WarehouseName = name
	}
	return sess, nil
}

// SwitchWarehouse cambia la bodega activa tras consultarla en el servicio.
// El Inventory Repository detecta el cambio y vacía su caché.
func (s *Store) SwitchWarehouse(ctx context.Context, warehouseID int64) (entity.Session, error) {
	if warehouseID <= 0 {
		return entity.Session{}, domain.Invalid("warehouse_id", "debe ser un entero positivo")
	}
	token := s.Token()
	if token == "" {
		return entity.Session{}, domain.ErrUnauthenticated
	}
	wh, err := s.auth.GetWarehouse(ctx, warehouseID)
	if err != nil {
		return entity.Session{}, err
	}

	s.mu.Lock()
	if s.current.Token != token {
		// logout o relogin mientras la consulta estaba en vuelo
		s.mu.Unlock()
		return entity.Session{}, domain.ErrUnauthenticated
	}
	s.current.WarehouseID = wh.ID
	s.current.WarehouseName = wh.Name
	next := s.current.Clone()
	persistErr := s.persistLocked(ctx, next)
	s.mu.Unlock()

	if persistErr != nil {
		s.warn(fmt.Errorf("persistir bodega: %w", persistErr))
	}
	s.log.Info().Int64("warehouse_id", wh.ID).Str("warehouse", wh.Name).Msg("bodega activa cambiada")
	return next, nil
}

// persistLocked escribe todos los campos; requiere s.mu tomado.
// El token se retira primero y se escribe al final: una escritura parcial se restaura
// como sesión ausente, nunca como token nuevo con usuario o bodega anteriores.
func (s *Store) persistLocked(ctx context.Context, sess entity.Session) error {
	rawUser, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("serializar usuario: %w", err)
	}
	if err := s.storage.Delete(ctx, repository.KeyToken); err != nil {
		return fmt.Errorf("%s: %w", repository.KeyToken, err)
	}
	var errs []error
	set := func(key, value string) {
		if err := s.storage.Set(ctx, key, value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	del := func(key string) {
		if err := s.storage.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}

	set(repository.KeyUser, string(rawUser))
	if sess.HasWarehouse() {
		set(repository.KeyWarehouseID, strconv.FormatInt(sess.WarehouseID, 10))
		set(repository.KeyWarehouseName, sess.WarehouseName)
	} else {
		del(repository.KeyWarehouseID)
		del(repository.KeyWarehouseName)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	set(repository.KeyToken, sess.Token)
	return errors.Join(errs...)
}

func (s *Store) warn(err error) {
	s.log.Warn().Err(err).Msg("aviso de sesión")
	if s.onWarning != nil {
		s.onWarning(err)
	}
}

func loginFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnreachable):
		return "servicio de catálogo inalcanzable"
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrRejected):
		return "credenciales inválidas"
	default:
		return "error inesperado"
	}
}
