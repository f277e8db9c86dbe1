package allocation

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dompet/models"
)

// Store is the persistence layer for accounts, allocations and budgets.
// It is constructed around either the root *gorm.DB or a transaction handle,
// so every coordinator operation runs the whole store against one transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AccountsByUser returns the user's accounts ordered by creation time with id
// as tie-breaker. This ordering decides "Bank A" vs "Bank B".
func (s *Store) AccountsByUser(userID uint) ([]models.Account, error) {
	var accounts []models.Account
	err := s.db.Where("user_id = ?", userID).Order("created_at, id").Find(&accounts).Error
	return accounts, err
}

// AccountByID loads an account or reports ErrValidation when it is unknown.
func (s *Store) AccountByID(id uint) (*models.Account, error) {
	var acct models.Account
	if err := s.db.First(&acct, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: account %d not found", ErrValidation, id)
		}
		return nil, err
	}
	return &acct, nil
}

// AllocationByID loads an allocation or reports ErrValidation when unknown.
func (s *Store) AllocationByID(id uint) (*models.AccountAllocation, error) {
	var alloc models.AccountAllocation
	if err := s.db.First(&alloc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: allocation %d not found", ErrValidation, id)
		}
		return nil, err
	}
	return &alloc, nil
}

// BankByID loads a bank-catalog row or reports ErrValidation when unknown.
func (s *Store) BankByID(id uint) (*models.Bank, error) {
	var bank models.Bank
	if err := s.db.First(&bank, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: bank %d not found", ErrValidation, id)
		}
		return nil, err
	}
	return &bank, nil
}

// AllocationsByAccount lists the allocations of one account.
func (s *Store) AllocationsByAccount(accountID uint) ([]models.AccountAllocation, error) {
	var allocs []models.AccountAllocation
	err := s.db.Where("account_id = ?", accountID).Order("id").Find(&allocs).Error
	return allocs, err
}

// AllocationsByUser lists all allocations across the user's accounts.
func (s *Store) AllocationsByUser(userID uint) ([]models.AccountAllocation, error) {
	var allocs []models.AccountAllocation
	err := s.db.
		Joins("JOIN accounts ON accounts.id = account_allocations.account_id").
		Where("accounts.user_id = ?", userID).
		Order("account_allocations.id").
		Find(&allocs).Error
	return allocs, err
}

// UserAllocationByType finds the user's allocation holding the given bucket,
// optionally excluding one row (the swap target). Returns nil when absent.
func (s *Store) UserAllocationByType(userID uint, t models.AllocationType, excludeID uint) (*models.AccountAllocation, error) {
	var alloc models.AccountAllocation
	q := s.db.
		Joins("JOIN accounts ON accounts.id = account_allocations.account_id").
		Where("accounts.user_id = ? AND account_allocations.type = ?", userID, t)
	if excludeID != 0 {
		q = q.Where("account_allocations.id <> ?", excludeID)
	}
	err := q.Order("account_allocations.id").First(&alloc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &alloc, nil
}

// AccountAllocationByType finds one account's bucket row. Returns nil when absent.
func (s *Store) AccountAllocationByType(accountID uint, t models.AllocationType) (*models.AccountAllocation, error) {
	var alloc models.AccountAllocation
	err := s.db.Where("account_id = ? AND type = ?", accountID, t).First(&alloc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &alloc, nil
}

func (s *Store) CreateAccount(acct *models.Account) error {
	if err := s.db.Create(acct).Error; err != nil {
		return fmt.Errorf("%w: create account: %v", ErrConsistency, err)
	}
	return nil
}

func (s *Store) CreateAllocation(alloc *models.AccountAllocation) error {
	if err := s.db.Create(alloc).Error; err != nil {
		return fmt.Errorf("%w: create allocation: %v", ErrConsistency, err)
	}
	return nil
}

func (s *Store) SaveAllocation(alloc *models.AccountAllocation) error {
	if err := s.db.Save(alloc).Error; err != nil {
		return fmt.Errorf("%w: save allocation: %v", ErrConsistency, err)
	}
	return nil
}

// DeleteAllocationsByType removes the given buckets from one account.
func (s *Store) DeleteAllocationsByType(accountID uint, types []models.AllocationType) error {
	if len(types) == 0 {
		return nil
	}
	err := s.db.
		Where("account_id = ? AND type IN ?", accountID, types).
		Delete(&models.AccountAllocation{}).Error
	if err != nil {
		return fmt.Errorf("%w: delete allocations: %v", ErrConsistency, err)
	}
	return nil
}

// SetAccountBalance persists a recomputed aggregate balance.
func (s *Store) SetAccountBalance(accountID uint, balance decimal.Decimal) error {
	err := s.db.Model(&models.Account{}).Where("id = ?", accountID).
		Update("current_balance", balance).Error
	if err != nil {
		return fmt.Errorf("%w: update account balance: %v", ErrConsistency, err)
	}
	return nil
}

// BudgetForDay returns the budget row created on the given calendar day, nil
// when the day has none.
func (s *Store) BudgetForDay(userID, accountID uint, day time.Time) (*models.Budget, error) {
	start := startOfDay(day)
	end := start.AddDate(0, 0, 1)
	var b models.Budget
	err := s.db.
		Where("user_id = ? AND account_id = ? AND created_at >= ? AND created_at < ?", userID, accountID, start, end).
		Order("id desc").First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) CreateBudget(b *models.Budget) error {
	return s.db.Create(b).Error
}

func (s *Store) SaveBudget(b *models.Budget) error {
	return s.db.Save(b).Error
}

// ExpenseSumForDay sums the expenses recorded for one account on one day.
func (s *Store) ExpenseSumForDay(userID, accountID uint, day time.Time) (decimal.Decimal, error) {
	start := startOfDay(day)
	end := start.AddDate(0, 0, 1)
	var total decimal.NullDecimal
	err := s.db.Raw(
		`SELECT COALESCE(SUM(amount),0) FROM expenses WHERE user_id = ? AND account_id = ? AND date >= ? AND date < ?`,
		userID, accountID, start, end,
	).Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// MonthlyExpenseTotal sums the user's fixed monthly obligations. The total
// reduces the daily-budget base before the per-day division.
func (s *Store) MonthlyExpenseTotal(userID uint) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := s.db.Raw(
		`SELECT COALESCE(SUM(amount),0) FROM monthly_expenses WHERE user_id = ?`,
		userID,
	).Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
