package account

import (
	"context"
	"strings"

	"gym-panel/internal/backend"
	"gym-panel/internal/models"
	"gym-panel/internal/repository"
)

type accountRepository struct {
	db backend.Client
}

func NewAccountRepository(db backend.Client) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	row := backend.Row{
		"email":         strings.ToLower(account.Email),
		"password_hash": account.PasswordHash,
		"role":          account.Role,
		"coach_id":      account.CoachID,
	}
	return r.db.Insert(ctx, repository.TableAccounts, row, account)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := r.db.Get(ctx, repository.TableAccounts, &account, backend.Eq("email", strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	if err := r.db.Get(ctx, repository.TableAccounts, &account, backend.Eq("id", id)); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) HasAny(ctx context.Context) (bool, error) {
	var accounts []models.Account
	if err := r.db.Select(ctx, repository.TableAccounts, &accounts, backend.Limit(1)); err != nil {
		return false, err
	}
	return len(accounts) > 0, nil
}
