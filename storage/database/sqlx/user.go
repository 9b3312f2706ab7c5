package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kistconnect/portal/core/user"
)

const userColumns = "id, identity_id, name, email, image_url, role, created_at, updated_at"

type userRow struct {
	ID         string `db:"id"`
	IdentityID string `db:"identity_id"`
	Name       string `db:"name"`
	Email      string `db:"email"`
	ImageURL   string `db:"image_url"`
	Role       string `db:"role"`
	CreatedAt  int64  `db:"created_at"`
	UpdatedAt  int64  `db:"updated_at"`
}

func (r userRow) user() user.User {
	return user.User{
		ID:         r.ID,
		IdentityID: r.IdentityID,
		Name:       r.Name,
		Email:      r.Email,
		ImageURL:   r.ImageURL,
		Role:       r.Role,
		CreatedAt:  fromNanos(r.CreatedAt),
		UpdatedAt:  fromNanos(r.UpdatedAt),
	}
}

type userRepository struct {
	exec sqlx.ExtContext
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec sqlx.ExtContext) *userRepository {
	return &userRepository{exec: exec}
}

func (repo userRepository) getUser(ctx context.Context, where string, arg interface{}) (user.User, error) {
	var row userRow
	q := repo.exec.Rebind("SELECT " + userColumns + " FROM users WHERE " + where + " = ?")
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, arg); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, wrapErr(err, "selecting user")
	}
	return row.user(), nil
}

func (repo userRepository) GetUserByIdentityID(ctx context.Context, identityID string) (user.User, error) {
	return repo.getUser(ctx, "identity_id", identityID)
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getUser(ctx, "id", id)
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	q := repo.exec.Rebind(`INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.exec.ExecContext(
		ctx, q,
		usr.ID, usr.IdentityID, usr.Name, usr.Email, usr.ImageURL, usr.Role,
		toNanos(usr.CreatedAt), toNanos(usr.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrIdentityExists
		}
		return user.User{}, wrapErr(err, "inserting user")
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := repo.exec.Rebind(`
		UPDATE users SET name = ?, email = ?, image_url = ?, role = ?, updated_at = ?
		WHERE id = ?`)
	res, err := repo.exec.ExecContext(
		ctx, q, usr.Name, usr.Email, usr.ImageURL, usr.Role, toNanos(usr.UpdatedAt), usr.ID,
	)
	if err != nil {
		return user.User{}, wrapErr(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}
