package allocation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dompet/models"
)

// Coordinator is the public operation surface of the rebalancing engine.
// Every mutating operation runs inside a single database transaction spanning
// allocation reads/writes, account balance writes and (conditionally) budget
// writes, so a failure at any step leaves the tables untouched.
type Coordinator struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCoordinator(db *gorm.DB) *Coordinator {
	return &Coordinator{db: db, now: time.Now}
}

// AccountView pairs an account with its allocations for response payloads.
type AccountView struct {
	Account     models.Account             `json:"account"`
	Allocations []models.AccountAllocation `json:"allocations"`
}

type AddAccountInput struct {
	UserID  uint
	BankID  uint
	Type    models.AllocationType
	Balance decimal.Decimal
}

type AddAccountResult struct {
	Account       AccountView     `json:"new_account"`
	TotalAccounts int             `json:"total_accounts"`
	Message       string          `json:"message"`
	Accounts      []AccountView   `json:"accounts_summary"`
	Budget        *BudgetSnapshot `json:"budget_tracking"`
}

// AddAccount attaches a new bank account to the user and redistributes the
// budget buckets according to the account-count transition rules.
func (c *Coordinator) AddAccount(in AddAccountInput) (*AddAccountResult, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown allocation type %q", ErrValidation, in.Type)
	}
	if in.Balance.IsNegative() {
		return nil, fmt.Errorf("%w: balance_per_type must be >= 0", ErrValidation)
	}

	var result *AddAccountResult
	err := c.db.Transaction(func(tx *gorm.DB) error {
		store := NewStore(tx)

		if _, err := store.BankByID(in.BankID); err != nil {
			return err
		}

		existing, err := store.AccountsByUser(in.UserID)
		if err != nil {
			return err
		}
		plan, err := PlanAccountAddition(len(existing), in.Type, in.Balance)
		if err != nil {
			return err
		}

		initial := decimal.Zero
		for _, na := range plan.NewAllocs {
			initial = initial.Add(na.Balance)
		}
		acct := models.Account{
			UserID:         in.UserID,
			BankID:         in.BankID,
			InitialBalance: initial,
			CurrentBalance: decimal.Zero,
		}
		if err := store.CreateAccount(&acct); err != nil {
			return err
		}

		if plan.StripOrdinal >= 0 {
			if plan.StripOrdinal >= len(existing) {
				return fmt.Errorf("%w: expected account at position %d", ErrConsistency, plan.StripOrdinal)
			}
			if err := store.DeleteAllocationsByType(existing[plan.StripOrdinal].ID, plan.StripTypes); err != nil {
				return err
			}
		}

		now := c.now()
		kebutuhanTouched := false
		kebutuhanBalance := decimal.Zero
		for _, na := range plan.NewAllocs {
			alloc := models.AccountAllocation{
				AccountID:      acct.ID,
				Type:           na.Type,
				BalancePerType: na.Balance,
				AllocationDate: now,
			}
			if err := store.CreateAllocation(&alloc); err != nil {
				return err
			}
			// A Kebutuhan bucket created at zero (initial account setup) does
			// not start budget tracking; balances arrive via later updates.
			if na.Type == models.TypeKebutuhan && na.Balance.IsPositive() {
				kebutuhanTouched = true
				kebutuhanBalance = na.Balance
			}
		}

		// The account count changed, so every account's aggregate follows a
		// new rule and all of them are recomputed.
		ordered, err := store.AccountsByUser(in.UserID)
		if err != nil {
			return err
		}
		if err := recomputeCountSensitive(store, ordered); err != nil {
			return err
		}

		var budget *BudgetSnapshot
		if kebutuhanTouched {
			snap := RecalcDailyBudget(tx, in.UserID, acct.ID, kebutuhanBalance, now)
			budget = &snap
		}

		views, err := accountViews(store, in.UserID)
		if err != nil {
			return err
		}
		var newView AccountView
		for _, v := range views {
			if v.Account.ID == acct.ID {
				newView = v
			}
		}
		result = &AddAccountResult{
			Account:       newView,
			TotalAccounts: len(views),
			Message:       plan.Message,
			Accounts:      views,
			Budget:        budget,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type UpdateAllocationInput struct {
	UserID       uint
	AllocationID uint
	NewType      *models.AllocationType
	NewBalance   *decimal.Decimal
}

type UpdateAllocationResult struct {
	NoOp          bool                     `json:"no_op"`
	Swapped       bool                     `json:"swapped"`
	CounterpartID uint                     `json:"counterpart_id,omitempty"`
	Allocation    models.AccountAllocation `json:"allocation"`
	Accounts      []AccountView            `json:"updated_accounts"`
	Budget        *BudgetSnapshot          `json:"budget_tracking"`
}

// UpdateAllocation reassigns an allocation's bucket type and/or overwrites its
// balance. A type change swaps type, balance and owning account with the
// allocation currently holding the requested bucket when one exists anywhere
// in the user's accounts, otherwise the target is simply relabelled. After a
// swap or relabel every account balance is recomputed as the plain sum of its
// own allocations; a balance overwrite recomputes the owning account with the
// count-sensitive rule.
func (c *Coordinator) UpdateAllocation(in UpdateAllocationInput) (*UpdateAllocationResult, error) {
	if in.NewType == nil && in.NewBalance == nil {
		return nil, fmt.Errorf("%w: at least one of new_type or new_balance is required", ErrValidation)
	}
	if in.NewType != nil && !in.NewType.Valid() {
		return nil, fmt.Errorf("%w: unknown allocation type %q", ErrValidation, *in.NewType)
	}
	if in.NewBalance != nil && in.NewBalance.IsNegative() {
		return nil, fmt.Errorf("%w: new_balance must be >= 0", ErrValidation)
	}

	var result *UpdateAllocationResult
	err := c.db.Transaction(func(tx *gorm.DB) error {
		store := NewStore(tx)

		alloc, err := store.AllocationByID(in.AllocationID)
		if err != nil {
			return err
		}
		owner, err := store.AccountByID(alloc.AccountID)
		if err != nil {
			return err
		}
		if owner.UserID != in.UserID {
			return fmt.Errorf("%w: allocation %d", ErrUnauthorized, in.AllocationID)
		}

		typeChanged := in.NewType != nil && *in.NewType != alloc.Type
		balanceChanged := in.NewBalance != nil && !in.NewBalance.Equal(alloc.BalancePerType)
		if !typeChanged && !balanceChanged {
			result = &UpdateAllocationResult{NoOp: true, Allocation: *alloc}
			return nil
		}

		kebutuhanTouched := alloc.Type == models.TypeKebutuhan
		swapped := false
		var counterpartID uint

		if typeChanged {
			if *in.NewType == models.TypeKebutuhan {
				kebutuhanTouched = true
			}
			counterpart, err := store.UserAllocationByType(in.UserID, *in.NewType, alloc.ID)
			if err != nil {
				return err
			}
			if counterpart != nil {
				if counterpart.Type == models.TypeKebutuhan {
					kebutuhanTouched = true
				}
				SwapAllocations(alloc, counterpart)
				if err := store.SaveAllocation(counterpart); err != nil {
					return err
				}
				swapped = true
				counterpartID = counterpart.ID
			} else {
				alloc.Type = *in.NewType
			}
			if err := store.SaveAllocation(alloc); err != nil {
				return err
			}

			// Observed behavior: after a manual swap or relabel every account
			// is the plain sum of its own allocations, without the 1/2-bank
			// exclusion rule.
			accounts, err := store.AccountsByUser(in.UserID)
			if err != nil {
				return err
			}
			for _, acct := range accounts {
				allocs, err := store.AllocationsByAccount(acct.ID)
				if err != nil {
					return err
				}
				if err := store.SetAccountBalance(acct.ID, PlainSum(allocs)); err != nil {
					return err
				}
			}
		}

		if balanceChanged {
			if alloc.Type == models.TypeKebutuhan {
				kebutuhanTouched = true
			}
			alloc.BalancePerType = *in.NewBalance
			if err := store.SaveAllocation(alloc); err != nil {
				return err
			}
			ordered, err := store.AccountsByUser(in.UserID)
			if err != nil {
				return err
			}
			allocs, err := store.AllocationsByAccount(alloc.AccountID)
			if err != nil {
				return err
			}
			balance := ComputeBalance(alloc.AccountID, ordered, allocs)
			if err := store.SetAccountBalance(alloc.AccountID, balance); err != nil {
				return err
			}
		}

		var budget *BudgetSnapshot
		if kebutuhanTouched {
			budget, err = c.recalcForKebutuhan(tx, store, in.UserID)
			if err != nil {
				return err
			}
		}

		views, err := accountViews(store, in.UserID)
		if err != nil {
			return err
		}
		result = &UpdateAllocationResult{
			Swapped:       swapped,
			CounterpartID: counterpartID,
			Allocation:    *alloc,
			Accounts:      views,
			Budget:        budget,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type UpdateAccountBalanceInput struct {
	UserID    uint
	AccountID uint
	Type      models.AllocationType
	Balance   decimal.Decimal
}

type UpdateAccountBalanceResult struct {
	Allocation models.AccountAllocation `json:"allocation_update"`
	Account    models.Account           `json:"account_balance"`
	Budget     *BudgetSnapshot          `json:"budget_tracking"`
}

// UpdateAccountBalance upserts the bucket row for (account, type) and
// recomputes that account's aggregate with the count-sensitive rule.
func (c *Coordinator) UpdateAccountBalance(in UpdateAccountBalanceInput) (*UpdateAccountBalanceResult, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown allocation type %q", ErrValidation, in.Type)
	}
	if in.Balance.IsNegative() {
		return nil, fmt.Errorf("%w: balance_per_type must be >= 0", ErrValidation)
	}

	var result *UpdateAccountBalanceResult
	err := c.db.Transaction(func(tx *gorm.DB) error {
		store := NewStore(tx)

		acct, err := store.AccountByID(in.AccountID)
		if err != nil {
			return err
		}
		if acct.UserID != in.UserID {
			return fmt.Errorf("%w: account %d", ErrUnauthorized, in.AccountID)
		}

		alloc, err := store.AccountAllocationByType(in.AccountID, in.Type)
		if err != nil {
			return err
		}
		now := c.now()
		if alloc == nil {
			alloc = &models.AccountAllocation{
				AccountID:      in.AccountID,
				Type:           in.Type,
				BalancePerType: in.Balance,
				AllocationDate: now,
			}
			if err := store.CreateAllocation(alloc); err != nil {
				return err
			}
		} else {
			alloc.BalancePerType = in.Balance
			if err := store.SaveAllocation(alloc); err != nil {
				return err
			}
		}

		ordered, err := store.AccountsByUser(in.UserID)
		if err != nil {
			return err
		}
		allocs, err := store.AllocationsByAccount(in.AccountID)
		if err != nil {
			return err
		}
		balance := ComputeBalance(in.AccountID, ordered, allocs)
		if err := store.SetAccountBalance(in.AccountID, balance); err != nil {
			return err
		}
		acct.CurrentBalance = balance

		var budget *BudgetSnapshot
		if in.Type == models.TypeKebutuhan {
			snap := RecalcDailyBudget(tx, in.UserID, in.AccountID, in.Balance, now)
			budget = &snap
		}

		result = &UpdateAccountBalanceResult{Allocation: *alloc, Account: *acct, Budget: budget}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AccountsSnapshot returns the user's accounts with allocations, ordered by
// creation. Read-only, used by listing and dashboard endpoints.
func (c *Coordinator) AccountsSnapshot(userID uint) ([]AccountView, error) {
	return accountViews(NewStore(c.db), userID)
}

// recalcForKebutuhan finds the user's current Kebutuhan bucket and refreshes
// the daily budget against it. No Kebutuhan bucket means nothing to refresh.
func (c *Coordinator) recalcForKebutuhan(tx *gorm.DB, store *Store, userID uint) (*BudgetSnapshot, error) {
	keb, err := store.UserAllocationByType(userID, models.TypeKebutuhan, 0)
	if err != nil {
		return nil, err
	}
	if keb == nil {
		return nil, nil
	}
	snap := RecalcDailyBudget(tx, userID, keb.AccountID, keb.BalancePerType, c.now())
	return &snap, nil
}

// recomputeCountSensitive refreshes every account's aggregate using the
// count-sensitive rule against the current ordering.
func recomputeCountSensitive(store *Store, ordered []models.Account) error {
	for _, acct := range ordered {
		allocs, err := store.AllocationsByAccount(acct.ID)
		if err != nil {
			return err
		}
		if err := store.SetAccountBalance(acct.ID, ComputeBalance(acct.ID, ordered, allocs)); err != nil {
			return err
		}
	}
	return nil
}

// accountViews loads the user's accounts with allocations for responses.
func accountViews(store *Store, userID uint) ([]AccountView, error) {
	accounts, err := store.AccountsByUser(userID)
	if err != nil {
		return nil, err
	}
	views := make([]AccountView, 0, len(accounts))
	for _, acct := range accounts {
		allocs, err := store.AllocationsByAccount(acct.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, AccountView{Account: acct, Allocations: allocs})
	}
	return views, nil
}
