package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/snapgram/backend/internal/models"
	"gorm.io/gorm"
)

// AccountRepository defines the interface for account and session operations
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	GetAccountByFirebaseUID(ctx context.Context, firebaseUID string) (*models.Account, error)
	UpdateAccount(ctx context.Context, account *models.Account) error
	DeleteAccount(ctx context.Context, id string) error
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// PostgresAccountRepository implements AccountRepository for PostgreSQL
type PostgresAccountRepository struct {
	db *gorm.DB
}

// NewPostgresAccountRepository creates a new PostgresAccountRepository
func NewPostgresAccountRepository(db *gorm.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

// Migrate creates or updates the account and session tables
func (r *PostgresAccountRepository) Migrate() error {
	return r.db.AutoMigrate(&models.Account{}, &models.Session{})
}

func (r *PostgresAccountRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	return translate(r.db.WithContext(ctx).Create(account).Error)
}

func (r *PostgresAccountRepository) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (r *PostgresAccountRepository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&account).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (r *PostgresAccountRepository) GetAccountByFirebaseUID(ctx context.Context, firebaseUID string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("firebase_uid = ?", firebaseUID).First(&account).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (r *PostgresAccountRepository) UpdateAccount(ctx context.Context, account *models.Account) error {
	return translate(r.db.WithContext(ctx).Save(account).Error)
}

// DeleteAccount removes an account together with its sessions
func (r *PostgresAccountRepository) DeleteAccount(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", id).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Account{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *PostgresAccountRepository) CreateSession(ctx context.Context, session *models.Session) error {
	return translate(r.db.WithContext(ctx).Create(session).Error)
}

func (r *PostgresAccountRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

func (r *PostgresAccountRepository) DeleteSession(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// translate maps GORM errors to the package sentinels. The connection must
// be opened with TranslateError for duplicate keys to be recognised.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
