package expense

import "errors"

var (
	ErrCategoryNotFound   = errors.New("category not found")
	ErrCategoryNameTaken  = errors.New("category name already exists")
	ErrCategoryInUse      = errors.New("category has assigned expenses")
	ErrCategoryNotInScope = errors.New("category does not belong to the selected scope")
	ErrExpenseNotFound    = errors.New("expense not found")
)
