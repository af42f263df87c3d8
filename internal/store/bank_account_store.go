package store

import (
	"context"

	"splitcircle/internal/models"
)

type BankAccountStore struct {
	db DB
}

func NewBankAccountStore(db DB) *BankAccountStore {
	return &BankAccountStore{db: db}
}

type BankAccountInput struct {
	ID                string
	UserID            string
	Institution       string
	AccountName       string
	AccountType       string
	Mask              string
	AccessToken       string
	ExternalItemID    string
	ExternalAccountID string
}

func (s *BankAccountStore) Create(ctx context.Context, tx Execer, input BankAccountInput) error {
	query := `
		INSERT INTO bank_accounts (id, user_id, institution, account_name, account_type, mask, access_token, external_item_id, external_account_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.UserID, input.Institution, input.AccountName, input.AccountType,
		input.Mask, input.AccessToken, input.ExternalItemID, input.ExternalAccountID,
	)
	return err
}

func (s *BankAccountStore) GetByID(ctx context.Context, accountID string) (models.BankAccount, error) {
	var row models.BankAccount
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, institution, account_name, account_type, mask,
		       access_token, external_item_id, external_account_id, created_at
		FROM bank_accounts
		WHERE id = $1
	`, accountID)
	return row, err
}

func (s *BankAccountStore) ListByUser(ctx context.Context, userID string) ([]models.BankAccount, error) {
	var rows []models.BankAccount
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, institution, account_name, account_type, mask,
		       access_token, external_item_id, external_account_id, created_at
		FROM bank_accounts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *BankAccountStore) Delete(ctx context.Context, tx Execer, accountID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM bank_accounts WHERE id = $1`, accountID)
	return err
}

func (s *BankAccountStore) DeleteByUser(ctx context.Context, tx Execer, userID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM bank_accounts WHERE user_id = $1`, userID)
	return err
}
