// internal/domain/category.go
package domain

// IncomeCategory identifies why money entered an account.
type IncomeCategory string

const (
	IncomeSalary    IncomeCategory = "salary"
	IncomeGift      IncomeCategory = "gift"
	IncomeInterest  IncomeCategory = "interest"
	IncomeUndefined IncomeCategory = "undefined"
)

// ExpenseCategory identifies why money left an account.
type ExpenseCategory string

const (
	ExpenseFood      ExpenseCategory = "food"
	ExpenseRent      ExpenseCategory = "rent"
	ExpenseGift      ExpenseCategory = "gift"
	ExpenseSaving    ExpenseCategory = "saving"
	ExpenseTrip      ExpenseCategory = "trip"
	ExpenseUndefined ExpenseCategory = "undefined"
)

// IncomeCategories lists every valid income category.
func IncomeCategories() []IncomeCategory {
	return []IncomeCategory{IncomeSalary, IncomeGift, IncomeInterest, IncomeUndefined}
}

// ExpenseCategories lists every valid expense category.
func ExpenseCategories() []ExpenseCategory {
	return []ExpenseCategory{ExpenseFood, ExpenseRent, ExpenseGift, ExpenseSaving, ExpenseTrip, ExpenseUndefined}
}

// IsValid reports whether c is a member of the closed income set. Values
// arriving from the wire must pass this before they reach a ledger.
func (c IncomeCategory) IsValid() bool {
	for _, known := range IncomeCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// IsValid reports whether c is a member of the closed expense set.
func (c ExpenseCategory) IsValid() bool {
	for _, known := range ExpenseCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// OperationType is the tag of the OperationKind union. It alone determines
// the sign of an operation's contribution to a balance.
type OperationType string

const (
	OperationTypeIncome  OperationType = "INCOME"
	OperationTypeExpense OperationType = "EXPENSE"
)

// OperationKind is a tagged union: either an income with an income category
// or an expense with an expense category. Only the field matching Type is
// meaningful.
type OperationKind struct {
	Type    OperationType   `json:"type"`
	Income  IncomeCategory  `json:"income_category,omitempty"`
	Expense ExpenseCategory `json:"expense_category,omitempty"`
}

// IncomeKind builds an income OperationKind.
func IncomeKind(c IncomeCategory) OperationKind {
	return OperationKind{Type: OperationTypeIncome, Income: c}
}

// ExpenseKind builds an expense OperationKind.
func ExpenseKind(c ExpenseCategory) OperationKind {
	return OperationKind{Type: OperationTypeExpense, Expense: c}
}

// Category returns the category name carried by the union, whichever arm is set.
func (k OperationKind) Category() string {
	switch k.Type {
	case OperationTypeIncome:
		return string(k.Income)
	case OperationTypeExpense:
		return string(k.Expense)
	}
	return ""
}

// Label returns a display label for the kind's category.
// Presentation metadata; not ledger-relevant.
func (k OperationKind) Label() string {
	switch k.Type {
	case OperationTypeIncome:
		switch k.Income {
		case IncomeSalary:
			return "Salary"
		case IncomeGift:
			return "Gift"
		case IncomeInterest:
			return "Interest"
		default:
			return "Other income"
		}
	case OperationTypeExpense:
		switch k.Expense {
		case ExpenseFood:
			return "Food"
		case ExpenseRent:
			return "Rent"
		case ExpenseGift:
			return "Gift"
		case ExpenseSaving:
			return "Saving"
		case ExpenseTrip:
			return "Trip"
		default:
			return "Other expense"
		}
	}
	return ""
}

// Icon returns a symbolic icon name for the kind's category.
func (k OperationKind) Icon() string {
	switch k.Type {
	case OperationTypeIncome:
		return "arrow.down.circle"
	case OperationTypeExpense:
		switch k.Expense {
		case ExpenseFood:
			return "fork.knife"
		case ExpenseRent:
			return "house"
		case ExpenseGift:
			return "gift"
		case ExpenseSaving:
			return "banknote"
		case ExpenseTrip:
			return "airplane"
		default:
			return "arrow.up.circle"
		}
	}
	return "questionmark.circle"
}
