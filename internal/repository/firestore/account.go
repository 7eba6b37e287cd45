package firestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"liftlog/internal/models"
	"liftlog/internal/repository"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type accountRepository struct {
	client *firestore.Client
}

// NewAccountRepository creates a Firestore-backed account repository.
// Email uniqueness is kept by an accountEmails/{email} index document
// written in the same transaction as the account.
func NewAccountRepository(client *firestore.Client) repository.AccountRepository {
	return &accountRepository{client: client}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	now := time.Now()
	account.CreatedAt, account.UpdatedAt = now, now

	accountRef := r.client.Collection(accountsCollection).Doc(account.ID)
	emailRef := r.client.Collection(accountEmailsCollection).Doc(account.Email)

	return r.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(emailRef)
		if err == nil {
			return repository.ErrDuplicate
		}
		if status.Code(err) != codes.NotFound {
			return err
		}
		if err := tx.Create(accountRef, account); err != nil {
			return err
		}
		return tx.Create(emailRef, map[string]interface{}{"accountId": account.ID})
	})
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	doc, err := r.client.Collection(accountEmailsCollection).Doc(email).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	id, ok := doc.Data()["accountId"].(string)
	if !ok {
		return nil, fmt.Errorf("email index %s has no accountId", email)
	}
	return r.GetByID(ctx, id)
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	doc, err := r.client.Collection(accountsCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var account models.Account
	if err := doc.DataTo(&account); err != nil {
		return nil, fmt.Errorf("decode account %s: %w", id, err)
	}
	account.ID = doc.Ref.ID
	return &account, nil
}

func (r *accountRepository) UpdateDisplayName(ctx context.Context, id, name string) error {
	_, err := r.client.Collection(accountsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "displayName", Value: name},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if status.Code(err) == codes.NotFound {
		return repository.ErrNotFound
	}
	return err
}
