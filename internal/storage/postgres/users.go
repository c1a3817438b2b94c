package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"invoicehub/internal/logger"
	"invoicehub/internal/models"
	"invoicehub/internal/storage"
	"invoicehub/internal/transport/dto"

	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const usersTable = "users"

var userColumns = []string{
	"id", "email", "password_hash", "first_name", "last_name", "address", "created_at", "updated_at",
}

// UserRepo implements storage.UserRepository on PostgreSQL.
type UserRepo struct {
	db Querier
}

func NewUserRepo(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) WithTx(tx pgx.Tx) storage.UserRepository {
	return &UserRepo{db: tx}
}

var _ storage.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) queryOne(ctx context.Context, query string, args []any, op string) (*models.User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, op)
	}
	user, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[models.User])
	if err != nil {
		return nil, mapError(err, op)
	}
	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, req *dto.GetUserByIdRequest) (*models.User, error) {
	query, args := builder().Select(userColumns...).
		From(sql.Table(usersTable)).
		Where(sql.EQ("id", req.ID)).
		Query()
	return r.queryOne(ctx, query, args, "get user")
}

// GetByEmail matches case-insensitively.
func (r *UserRepo) GetByEmail(ctx context.Context, req *dto.GetUserByEmailRequest) (*models.User, error) {
	query, args := builder().Select(userColumns...).
		From(sql.Table(usersTable)).
		Where(sql.EQ("LOWER(email)", strings.ToLower(strings.TrimSpace(req.Email)))).
		Query()
	return r.queryOne(ctx, query, args, "get user by email")
}

func (r *UserRepo) Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	now := time.Now().UTC()
	query, args := builder().Insert(usersTable).
		Columns("id", "email", "password_hash", "created_at", "updated_at").
		Values(uuid.New(), strings.TrimSpace(req.Email), req.PasswordHash, now, now).
		Returning(userColumns...).
		Query()

	user, err := r.queryOne(ctx, query, args, "create user")
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, storage.ErrDuplicateEmail
		}
		return nil, err
	}
	log := logger.WithComponent("user-repo")
	log.Info().Str("user_id", user.ID.String()).Msg("User created")
	return user, nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, req *dto.OnboardRequest) (*models.User, error) {
	query, args := builder().Update(usersTable).
		Set("first_name", strings.TrimSpace(req.FirstName)).
		Set("last_name", strings.TrimSpace(req.LastName)).
		Set("address", strings.TrimSpace(req.Address)).
		Set("updated_at", time.Now().UTC()).
		Where(sql.EQ("id", req.UserId)).
		Returning(userColumns...).
		Query()
	return r.queryOne(ctx, query, args, "update user profile")
}
